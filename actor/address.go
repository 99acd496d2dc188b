package actor

import (
	"fmt"

	"github.com/hedisam/goenvelope/envelope"
)

// Address is the sending side of an execution context. It is safe for use by
// any number of goroutines.
type Address[A, C any] struct {
	cell    *cell[A, C]
	done    <-chan struct{}
	stop    func()
	tracing bool
}

func newAddress[A, C any](c *cell[A, C], done <-chan struct{}, stop func(), tracing bool) *Address[A, C] {
	return &Address[A, C]{
		cell:    c,
		done:    done,
		stop:    stop,
		tracing: tracing,
	}
}

// ID returns the id of the execution context behind the address.
func (a *Address[A, C]) ID() string {
	return a.cell.id
}

// Deliver hands env over to the actor's mailbox. env must not be used by the
// caller afterwards. When the actor has stopped env is dropped and ErrStopped
// returned.
func (a *Address[A, C]) Deliver(env envelope.Envelope[A, C]) error {
	select {
	case <-a.done:
		env.Drop()
		return ErrStopped
	default:
	}

	if a.tracing {
		env = envelope.Traced(env, a.cell.logger)
	}
	if err := a.cell.tx.Push(env); err != nil {
		env.Drop()
		return fmt.Errorf("%w: %v", ErrStopped, err)
	}
	return nil
}

// Stop asks the actor to stop once every envelope delivered before this call
// has been invoked.
func (a *Address[A, C]) Stop() error {
	return a.Deliver(envelope.Func(func(_ A, _ C) {
		a.stop()
	}))
}
