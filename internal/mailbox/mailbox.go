// Package mailbox provides the single-consumer queues execution contexts use
// to receive envelopes.
//
// New returns a mailbox split in two halves. The Producer may be shared by any
// number of goroutines. There is exactly one Consumer and it must only be used
// by the goroutine that owns the actor; that ownership is what makes it safe to
// hand unsynchronized envelopes from senders to the actor.
package mailbox

import (
	"context"
	"fmt"
	"sync"
)

var ErrDisposed = fmt.Errorf("mailbox is disposed")

// DefaultCapacity is the capacity of bounded mailboxes created with a
// capacity below 1.
const DefaultCapacity = 100

// Kind selects the queue backing a mailbox.
type Kind int32

const (
	// RingBuffer is a bounded lock-free ring buffer. Push blocks while it is full.
	RingBuffer Kind = iota
	// MPSC is an unbounded multi-producer single-consumer linked queue.
	MPSC
	// Channel is a buffered Go channel. Push blocks while it is full.
	Channel
)

func (k Kind) String() string {
	switch k {
	case RingBuffer:
		return "ring_buffer"
	case MPSC:
		return "mpsc"
	case Channel:
		return "channel"
	default:
		return fmt.Sprintf("kind(%d)", int32(k))
	}
}

type MessageHandler func(message interface{}) (loop bool)

// Producer is the sending half of a mailbox.
type Producer interface {
	Push(message interface{}) error
}

// Consumer is the receiving half of a mailbox. It is not safe for concurrent use.
type Consumer interface {
	// Receive runs the consumer loop until ctx is done, the mailbox is
	// disposed, or handler returns false.
	Receive(ctx context.Context, handler MessageHandler)
	// Drain hands every message queued right now to handler without
	// waiting for more, and returns how many it handled.
	Drain(handler MessageHandler) int
	Len() int
	// Dispose rejects further pushes and returns the messages still queued.
	Dispose() []interface{}
}

// store is the storage behind a mailbox. put may be called concurrently, the
// other methods only from the consumer. put must return once done is closed.
type store interface {
	put(message interface{}, done <-chan struct{}) error
	get() (interface{}, bool)
	len() int
	dispose()
}

type mailbox struct {
	q      store
	signal chan struct{}
	done   chan struct{}
	// pushes hold mu shared; Dispose holds it exclusively so no put lands
	// after the leftovers were collected
	mu      sync.RWMutex
	dispose sync.Once
}

// New creates a mailbox of the given kind. capacity only applies to bounded
// kinds; values below 1 select the default.
func New(kind Kind, capacity int) (Producer, Consumer) {
	if capacity < 1 {
		capacity = DefaultCapacity
	}

	var q store
	switch kind {
	case MPSC:
		q = newMPSCQueue()
	case Channel:
		q = newChannelQueue(capacity)
	default:
		q = newRingBufferQueue(capacity)
	}

	m := &mailbox{
		q:      q,
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	return &producer{m: m}, &consumer{m: m}
}

type producer struct {
	m *mailbox
}

func (p *producer) Push(message interface{}) error {
	p.m.mu.RLock()
	defer p.m.mu.RUnlock()

	select {
	case <-p.m.done:
		return ErrDisposed
	default:
	}

	if err := p.m.q.put(message, p.m.done); err != nil {
		return err
	}

	// wake the consumer; a pending signal already covers this message
	select {
	case p.m.signal <- struct{}{}:
	default:
	}
	return nil
}

type consumer struct {
	m *mailbox
}

func (c *consumer) Receive(ctx context.Context, handler MessageHandler) {
listen:
	if _, keepOn := c.drain(handler); !keepOn {
		return
	}
	select {
	case <-ctx.Done():
		return
	case <-c.m.done:
		return
	case <-c.m.signal:
		goto listen
	}
}

func (c *consumer) Drain(handler MessageHandler) int {
	n, _ := c.drain(handler)
	return n
}

func (c *consumer) drain(handler MessageHandler) (n int, keepOn bool) {
	for c.m.q.len() != 0 {
		msg, ok := c.m.q.get()
		if !ok {
			break
		}
		n++
		if !handler(msg) {
			return n, false
		}
	}
	return n, true
}

func (c *consumer) Len() int {
	return c.m.q.len()
}

func (c *consumer) Dispose() []interface{} {
	var leftovers []interface{}
	c.m.dispose.Do(func() {
		// closing done first releases pushes blocked on a full store
		close(c.m.done)
		c.m.mu.Lock()
		defer c.m.mu.Unlock()

		for c.m.q.len() != 0 {
			msg, ok := c.m.q.get()
			if !ok {
				break
			}
			leftovers = append(leftovers, msg)
		}
		c.m.q.dispose()
	})
	return leftovers
}
