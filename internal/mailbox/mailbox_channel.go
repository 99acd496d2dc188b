package mailbox

type channelQueue struct {
	ch chan interface{}
}

func newChannelQueue(capacity int) *channelQueue {
	return &channelQueue{ch: make(chan interface{}, capacity)}
}

func (q *channelQueue) put(message interface{}, done <-chan struct{}) error {
	select {
	case <-done:
		return ErrDisposed
	case q.ch <- message:
		return nil
	}
}

func (q *channelQueue) get() (interface{}, bool) {
	select {
	case msg := <-q.ch:
		return msg, true
	default:
		return nil, false
	}
}

func (q *channelQueue) len() int {
	return len(q.ch)
}

// the channel is never closed: a producer may still be racing on put
func (q *channelQueue) dispose() {}
