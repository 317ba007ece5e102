package hci

import (
	"github.com/pkg/errors"
)

// packetQueue is a bounded FIFO of independently owned frames. It decouples the
// transport's delivery context from the processing context.
type packetQueue struct {
	name string
	ch   chan []byte
	done <-chan struct{}
}

func newPacketQueue(name string, size int, done <-chan struct{}) *packetQueue {
	return &packetQueue{
		name: name,
		ch:   make(chan []byte, size),
		done: done,
	}
}

// Enqueue copies b onto the queue. It blocks while the queue is full and fails
// only when the owner is closed.
func (q *packetQueue) Enqueue(b []byte) error {
	if len(b) == 0 {
		return errors.Errorf("%s: empty frame", q.name)
	}
	p := make([]byte, len(b))
	copy(p, b)

	select {
	case <-q.done:
		return errors.Wrap(ErrClosed, q.name)
	default:
	}

	select {
	case q.ch <- p:
		return nil
	case <-q.done:
		return errors.Wrap(ErrClosed, q.name)
	}
}

// TryDequeue returns the oldest frame, if any, without blocking.
func (q *packetQueue) TryDequeue() ([]byte, bool) {
	select {
	case p := <-q.ch:
		return p, true
	default:
		return nil, false
	}
}

// Len returns the number of queued frames.
func (q *packetQueue) Len() int {
	return len(q.ch)
}
