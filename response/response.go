// Package response implements the one-shot channel an actor uses to hand a
// handler's result back to the caller that asked for it.
//
// A channel has exactly one Sender (owned by the envelope carrying the
// request) and one Receiver (owned by the caller). The sender can ask whether
// anybody is still listening without consuming itself, which lets the
// dispatching side skip work nobody will observe.
package response

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrDropped is returned by the receiver when the sender went away without sending.
	ErrDropped = errors.New("response: sender dropped without a value")
	// ErrTimeout is returned by RecvWithTimeout when no value arrived in time.
	ErrTimeout = errors.New("response: timeout")
	// ErrClosed is returned when receiving from a receiver that was already closed or drained.
	ErrClosed = errors.New("response: receiver closed")
)

type channel[T any] struct {
	value    chan T
	dropped  chan struct{}
	canceled atomic.Bool
	used     atomic.Bool
	dropOnce sync.Once
}

// Sender is the producing half of a response channel.
// The zero value is not usable; a nil *Sender is a valid fire-and-forget sender
// on which every method is a no-op.
type Sender[T any] struct {
	ch *channel[T]
}

// Receiver is the consuming half of a response channel. It belongs to a single
// caller and is not safe for concurrent use.
type Receiver[T any] struct {
	ch     *channel[T]
	closed bool
}

// New returns the two halves of a fresh one-shot channel.
func New[T any]() (*Sender[T], *Receiver[T]) {
	ch := &channel[T]{
		value:   make(chan T, 1),
		dropped: make(chan struct{}),
	}
	return &Sender[T]{ch: ch}, &Receiver[T]{ch: ch}
}

// Send delivers v and consumes the sender. It reports false when the sender was
// already used or the receiver is gone, in which case v is dropped.
func (s *Sender[T]) Send(v T) bool {
	if s == nil {
		return false
	}
	// used makes Send and Close mutually exclusive
	if s.ch.used.Swap(true) {
		return false
	}
	if s.ch.canceled.Load() {
		return false
	}
	// capacity 1 and a single send: never blocks
	s.ch.value <- v
	return true
}

// IsCanceled reports whether the receiver has been closed.
// It does not consume the sender and may be called any number of times.
func (s *Sender[T]) IsCanceled() bool {
	if s == nil {
		return false
	}
	return s.ch.canceled.Load()
}

// Close drops the sender without sending. A receiver waiting on the channel
// observes ErrDropped. Close after Send is a no-op.
func (s *Sender[T]) Close() {
	if s == nil {
		return
	}
	if s.ch.used.Swap(true) {
		return
	}
	s.ch.dropOnce.Do(func() { close(s.ch.dropped) })
}

// Recv blocks until a value arrives, the sender is dropped, or ctx is done.
func (r *Receiver[T]) Recv(ctx context.Context) (T, error) {
	var zero T
	if r.closed {
		return zero, ErrClosed
	}
	select {
	case v := <-r.ch.value:
		r.closed = true
		return v, nil
	case <-r.ch.dropped:
		return zero, ErrDropped
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// RecvWithTimeout is Recv bounded by d. A non-positive d waits forever.
func (r *Receiver[T]) RecvWithTimeout(d time.Duration) (T, error) {
	if d <= 0 {
		return r.Recv(context.Background())
	}
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	v, err := r.Recv(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		return v, ErrTimeout
	}
	return v, err
}

// TryRecv returns the value if it is already available. ok is false while the
// sender is still pending; err is set once the channel can never yield a value.
func (r *Receiver[T]) TryRecv() (v T, ok bool, err error) {
	if r.closed {
		return v, false, ErrClosed
	}
	select {
	case v = <-r.ch.value:
		r.closed = true
		return v, true, nil
	case <-r.ch.dropped:
		return v, false, ErrDropped
	default:
		return v, false, nil
	}
}

// Close tells the sender nobody is listening any more. Pending or later values
// are discarded and IsCanceled on the sender starts reporting true.
func (r *Receiver[T]) Close() {
	r.closed = true
	r.ch.canceled.Store(true)
}
