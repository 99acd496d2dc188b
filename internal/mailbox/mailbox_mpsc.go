package mailbox

import (
	"runtime"

	mpsc "github.com/t3rm1n4l/go-mpscqueue"
)

type mpscQueue struct {
	q *mpsc.MPSCQueue
}

func newMPSCQueue() *mpscQueue {
	return &mpscQueue{q: mpsc.New()}
}

func (q *mpscQueue) put(message interface{}, _ <-chan struct{}) error {
	q.q.Push(message)
	return nil
}

func (q *mpscQueue) get() (interface{}, bool) {
	for q.q.Size() != 0 {
		// a producer may have counted its node before linking it
		if msg := q.q.Pop(); msg != nil {
			return msg, true
		}
		runtime.Gosched()
	}
	return nil, false
}

func (q *mpscQueue) len() int {
	return int(q.q.Size())
}

func (q *mpscQueue) dispose() {}
