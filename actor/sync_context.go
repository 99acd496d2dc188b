package actor

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// SyncContext is an execution context driven by its caller: envelopes run on
// whichever goroutine calls Run or Drain. It has no scheduler, so it only
// accepts handlers producing immediate results (see HandleSync).
//
// Only one goroutine can drive a SyncContext at a time; a second concurrent Run
// or Drain fails with ErrBusy.
type SyncContext[A any] struct {
	cell    *cell[A, *SyncContext[A]]
	addr    *Address[A, *SyncContext[A]]
	ctx     context.Context
	cancel  context.CancelFunc
	owner   atomic.Bool
	stopped chan struct{}
	once    atomic.Bool
}

// NewSync creates a synchronous execution context for act. Nothing runs until
// Run or Drain is called.
func NewSync[A any](act A, opts ...Option) *SyncContext[A] {
	o := newOptions(opts)
	ctx, cancel := context.WithCancel(o.parent)
	c := &SyncContext[A]{
		cell:    newCell[A, *SyncContext[A]](act, o),
		ctx:     ctx,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
	c.addr = newAddress[A, *SyncContext[A]](c.cell, c.stopped, c.Stop, o.tracing)
	return c
}

// ID returns the context's unique id.
func (c *SyncContext[A]) ID() string {
	return c.cell.id
}

// Address returns the address senders deliver envelopes to.
func (c *SyncContext[A]) Address() *Address[A, *SyncContext[A]] {
	return c.addr
}

// Logger returns the logger annotated with the actor's id.
func (c *SyncContext[A]) Logger() *slog.Logger {
	return c.cell.logger
}

// Run invokes envelopes on the calling goroutine until ctx is done or the
// context is stopped.
func (c *SyncContext[A]) Run(ctx context.Context) error {
	if !c.owner.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer c.release()
	if c.ctx.Err() != nil {
		return ErrStopped
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(c.ctx, cancel)
	defer stop()

	c.cell.rx.Receive(runCtx, func(message interface{}) (loop bool) {
		c.cell.invoke(message, c)
		return c.ctx.Err() == nil
	})
	return ctx.Err()
}

// Drain invokes the envelopes queued right now and returns how many it took.
func (c *SyncContext[A]) Drain() (int, error) {
	if !c.owner.CompareAndSwap(false, true) {
		return 0, ErrBusy
	}
	defer c.release()
	if c.ctx.Err() != nil {
		return 0, ErrStopped
	}

	return c.cell.rx.Drain(func(message interface{}) (loop bool) {
		c.cell.invoke(message, c)
		return c.ctx.Err() == nil
	}), nil
}

// Stop stops the context. Envelopes still queued are dropped by whichever
// goroutine owns the mailbox at that point.
func (c *SyncContext[A]) Stop() {
	c.cancel()
	if c.owner.CompareAndSwap(false, true) {
		c.release()
	}
}

// Stopped returns a channel closed once the context has stopped and its
// mailbox has been disposed. A context stopped through WithParent is only
// disposed by the next Run, Drain or Stop call.
func (c *SyncContext[A]) Stopped() <-chan struct{} {
	return c.stopped
}

// release gives up mailbox ownership, disposing it first when the context has
// been stopped.
func (c *SyncContext[A]) release() {
	for {
		if c.ctx.Err() != nil && c.once.CompareAndSwap(false, true) {
			c.cell.dispose()
			close(c.stopped)
			c.cell.logger.Debug("actor stopped")
		}
		c.owner.Store(false)

		// Stop may have canceled between the check and the store while
		// failing to take ownership itself
		if c.ctx.Err() == nil || c.once.Load() || !c.owner.CompareAndSwap(false, true) {
			return
		}
	}
}
