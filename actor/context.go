package actor

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Context is the asynchronous execution context of an actor. It owns a
// goroutine that takes envelopes from the actor's mailbox and invokes them one
// at a time, and it drives deferred handler results on goroutines of its own.
type Context[A any] struct {
	cell   *cell[A, *Context[A]]
	addr   *Address[A, *Context[A]]
	ctx    context.Context
	cancel context.CancelFunc
	group  errgroup.Group
	done   chan struct{}
}

// Spawn starts an execution context for act and returns it. act must only be
// accessed by handlers from then on.
func Spawn[A any](act A, opts ...Option) *Context[A] {
	o := newOptions(opts)
	ctx, cancel := context.WithCancel(o.parent)
	c := &Context[A]{
		cell:   newCell[A, *Context[A]](act, o),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	c.addr = newAddress[A, *Context[A]](c.cell, c.done, c.Stop, o.tracing)

	go c.run()
	return c
}

func (c *Context[A]) run() {
	defer close(c.done)
	c.cell.logger.Debug("actor started")

	c.cell.rx.Receive(c.ctx, func(message interface{}) (loop bool) {
		c.cell.invoke(message, c)
		return c.ctx.Err() == nil
	})

	c.cancel()
	c.cell.dispose()
	_ = c.group.Wait()
	c.cell.logger.Debug("actor stopped")
}

// ID returns the context's unique id.
func (c *Context[A]) ID() string {
	return c.cell.id
}

// Address returns the address senders deliver envelopes to.
func (c *Context[A]) Address() *Address[A, *Context[A]] {
	return c.addr
}

// Go runs fn outside the message loop. ctx is canceled when the context stops,
// and the context does not finish stopping before fn returns. fn must not touch
// actor state.
func (c *Context[A]) Go(fn func(ctx context.Context)) {
	c.group.Go(func() error {
		fn(c.ctx)
		return nil
	})
}

// Context returns a context.Context canceled when the actor stops.
func (c *Context[A]) Context() context.Context {
	return c.ctx
}

// Logger returns the logger annotated with the actor's id.
func (c *Context[A]) Logger() *slog.Logger {
	return c.cell.logger
}

// Stop stops the actor after the envelope being invoked, if any. Envelopes
// still queued are dropped. Use Address().Stop to stop after them instead.
func (c *Context[A]) Stop() {
	c.cancel()
}

// Done returns a channel closed once the actor has stopped and every goroutine
// started with Go has returned.
func (c *Context[A]) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until Done is closed.
func (c *Context[A]) Wait() {
	<-c.done
}
