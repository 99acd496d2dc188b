package envelope

import (
	"context"

	"github.com/hedisam/goenvelope/response"
)

// Scheduler is the hook an execution context exposes so deferred results can
// complete without blocking the actor's message loop.
type Scheduler interface {
	// Go runs fn outside the message loop. ctx is canceled when the
	// execution context stops.
	Go(fn func(ctx context.Context))
}

// Result is what a Handler returns. Deliver arranges for the value to reach
// tx once it is available; tx is nil for fire-and-forget sends.
type Result[R any] interface {
	Deliver(s Scheduler, tx *response.Sender[R])
}

type reply[R any] struct {
	v R
}

// Reply returns a result that is available immediately.
func Reply[R any](v R) Result[R] {
	return reply[R]{v: v}
}

func (r reply[R]) Deliver(_ Scheduler, tx *response.Sender[R]) {
	tx.Send(r.v)
}

type deferred[R any] struct {
	fn func(ctx context.Context) R
}

// Defer returns a result computed by fn on the context's scheduler. fn must
// not touch actor state; it runs concurrently with the message loop.
func Defer[R any](fn func(ctx context.Context) R) Result[R] {
	return deferred[R]{fn: fn}
}

func (d deferred[R]) Deliver(s Scheduler, tx *response.Sender[R]) {
	s.Go(func(ctx context.Context) {
		// a canceled receiver makes Send drop the value
		tx.Send(d.fn(ctx))
	})
}
