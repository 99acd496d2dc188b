// Package envelope is the type-erasure layer between typed message sends and
// an actor's single inbound queue.
//
// An Envelope holds one pending unit of work for an actor of type A running
// under an execution context of type C. Whatever the message type, every
// envelope for the same actor has the same Go type, so one mailbox can carry
// them all; invoking an envelope routes its message to the handler it was
// packed with and completes the optional response channel.
//
// Envelopes carry no locks. They may be built on one goroutine and invoked on
// another because delivery goes through a mailbox whose consumer half is owned
// by exactly one goroutine: the actor's execution context. An envelope is
// handed over, never shared.
package envelope

// Proxy is the dispatch capability held by an Envelope.
type Proxy[A, C any] interface {
	Handle(act A, ctx C)
}

// Dropper is implemented by proxies that own resources which must be released
// when the envelope is discarded without being invoked.
type Dropper interface {
	Drop()
}

// Envelope carries one pending message for an actor. It is valid for at most
// one invocation; later calls to Handle are no-ops. The zero value is an empty
// envelope.
type Envelope[A, C any] struct {
	proxy Proxy[A, C]
}

// WithProxy wraps an already built dispatch capability. It lets other layers
// supply their own dispatch strategies without the Envelope knowing about them.
func WithProxy[A, C any](p Proxy[A, C]) Envelope[A, C] {
	return Envelope[A, C]{proxy: p}
}

// Handle invokes the envelope against the live actor and its context.
func (e Envelope[A, C]) Handle(act A, ctx C) {
	if e.proxy == nil {
		return
	}
	e.proxy.Handle(act, ctx)
}

// Drop releases an envelope that will never be invoked, closing any response
// sender it holds so the waiting caller is not left hanging.
func (e Envelope[A, C]) Drop() {
	if d, ok := e.proxy.(Dropper); ok {
		d.Drop()
	}
}

// Empty reports whether the envelope holds no proxy at all.
func (e Envelope[A, C]) Empty() bool {
	return e.proxy == nil
}
