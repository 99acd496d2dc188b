package actor

import (
	"context"

	"github.com/hedisam/goenvelope/envelope"
	"github.com/hedisam/goenvelope/response"
)

// Handle binds a handler to actors run by the asynchronous Context. The handler
// may return an immediate result (envelope.Reply) or a deferred one
// (envelope.Defer).
func Handle[A, M, R any](h func(act A, msg M, ctx *Context[A]) envelope.Result[R]) envelope.Converter[A, *Context[A], M, R] {
	return envelope.Async[A, *Context[A], M, R](h)
}

// HandleSync binds an immediate-result handler to actors run by a SyncContext.
func HandleSync[A, M, R any](h func(act A, msg M, ctx *SyncContext[A]) R) envelope.Converter[A, *SyncContext[A], M, R] {
	return envelope.Sync[A, *SyncContext[A], M, R](h)
}

// Tell sends msg without waiting for a result.
func Tell[A, C, M, R any](addr *Address[A, C], conv envelope.Converter[A, C, M, R], msg M) error {
	return addr.Deliver(conv.Pack(msg, nil))
}

// Ask sends msg and returns the receiver its result will arrive on. Closing the
// receiver before the actor gets to msg makes the actor skip it.
func Ask[A, C, M, R any](addr *Address[A, C], conv envelope.Converter[A, C, M, R], msg M) (*response.Receiver[R], error) {
	tx, rx := response.New[R]()
	if err := addr.Deliver(conv.Pack(msg, tx)); err != nil {
		return nil, err
	}
	return rx, nil
}

// AskWait sends msg and waits for its result. When ctx is done first the
// receiver is closed, so a msg still queued is skipped.
func AskWait[A, C, M, R any](ctx context.Context, addr *Address[A, C], conv envelope.Converter[A, C, M, R], msg M) (R, error) {
	var zero R
	rx, err := Ask(addr, conv, msg)
	if err != nil {
		return zero, err
	}

	v, err := rx.Recv(ctx)
	if err != nil {
		rx.Close()
		return zero, err
	}
	return v, nil
}
