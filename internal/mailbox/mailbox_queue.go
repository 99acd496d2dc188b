package mailbox

import (
	"errors"
	"runtime"

	wqueue "github.com/Workiva/go-datastructures/queue"
)

// minRingCap is the smallest usable ring: a single-node ring overwrites its
// only slot instead of reporting it full.
const minRingCap = 2

type ringBufferQueue struct {
	rb *wqueue.RingBuffer
}

func newRingBufferQueue(capacity int) *ringBufferQueue {
	if capacity < minRingCap {
		capacity = minRingCap
	}
	return &ringBufferQueue{rb: wqueue.NewRingBuffer(uint64(capacity))}
}

func (q *ringBufferQueue) put(message interface{}, done <-chan struct{}) error {
	for {
		ok, err := q.rb.Offer(message)
		if errors.Is(err, wqueue.ErrDisposed) {
			return ErrDisposed
		}
		if err != nil {
			return err
		}
		if ok {
			return nil
		}

		// full
		select {
		case <-done:
			return ErrDisposed
		default:
		}
		runtime.Gosched()
	}
}

func (q *ringBufferQueue) get() (interface{}, bool) {
	msg, err := q.rb.Get()
	if err != nil {
		return nil, false
	}
	return msg, true
}

func (q *ringBufferQueue) len() int {
	return int(q.rb.Len())
}

func (q *ringBufferQueue) dispose() {
	q.rb.Dispose()
}
