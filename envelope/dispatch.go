package envelope

import "github.com/hedisam/goenvelope/response"

// Handler computes a result for msg on behalf of act. The result may be an
// immediate value (Reply) or a computation driven by the context (Defer). A nil
// result means no reply: the caller observes response.ErrDropped.
type Handler[A, C, M, R any] func(act A, msg M, ctx C) Result[R]

// SyncHandler is a handler for contexts that only support immediate results.
type SyncHandler[A, C, M, R any] func(act A, msg M, ctx C) R

// New packs msg for the handler h. tx may be nil for fire-and-forget sends.
// When tx reports its receiver closed at invocation, msg is discarded along with
// it and h is never called, not even by a later invocation.
func New[A any, C Scheduler, M, R any](h Handler[A, C, M, R], msg M, tx *response.Sender[R]) Envelope[A, C] {
	return WithProxy[A, C](newDispatch(msg, tx, func(act A, msg M, ctx C, tx *response.Sender[R]) {
		res := h(act, msg, ctx)
		if res == nil {
			tx.Close()
			return
		}
		res.Deliver(ctx, tx)
	}))
}

// NewSync packs msg for the immediate-result handler h. A canceled receiver is
// handled as in New.
func NewSync[A, C, M, R any](h SyncHandler[A, C, M, R], msg M, tx *response.Sender[R]) Envelope[A, C] {
	return WithProxy[A, C](newDispatch(msg, tx, func(act A, msg M, ctx C, tx *response.Sender[R]) {
		tx.Send(h(act, msg, ctx))
	}))
}

// dispatch binds one message of type M to actors of type A. The message and
// the sender are each taken at most once.
type dispatch[A, C, M, R any] struct {
	msg     M
	pending bool
	tx      *response.Sender[R]
	call    func(act A, msg M, ctx C, tx *response.Sender[R])
}

func newDispatch[A, C, M, R any](msg M, tx *response.Sender[R], call func(A, M, C, *response.Sender[R])) *dispatch[A, C, M, R] {
	return &dispatch[A, C, M, R]{
		msg:     msg,
		pending: true,
		tx:      tx,
		call:    call,
	}
}

func (d *dispatch[A, C, M, R]) Handle(act A, ctx C) {
	tx := d.tx
	d.tx = nil
	if tx.IsCanceled() {
		// nobody will observe the result; skip the handler
		d.clear()
		return
	}

	msg, ok := d.take()
	if !ok {
		return
	}

	returned := false
	defer func() {
		// the handler panicked: release the caller instead of leaving it waiting
		if !returned {
			tx.Close()
		}
	}()
	d.call(act, msg, ctx, tx)
	returned = true
}

func (d *dispatch[A, C, M, R]) Drop() {
	d.clear()
	tx := d.tx
	d.tx = nil
	tx.Close()
}

func (d *dispatch[A, C, M, R]) take() (M, bool) {
	msg, ok := d.msg, d.pending
	d.clear()
	return msg, ok
}

func (d *dispatch[A, C, M, R]) clear() {
	var zero M
	d.msg = zero
	d.pending = false
}
