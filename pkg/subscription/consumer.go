package subscription

import (
	"github.com/e4-protocol/e4-go/pkg/wire"
)

// Consumer receives data samples for a subscribed stream.
type Consumer interface {
	// Consume is called for each sample, in arrival order.
	// It runs on the connection's dispatch goroutine: a slow consumer
	// stalls delivery to every other consumer, and session methods
	// that wait on a server reply must not be called from here.
	Consume(sample wire.Sample)
}

// ConsumerFunc adapts a function to the Consumer interface.
type ConsumerFunc func(sample wire.Sample)

// Consume calls f(sample).
func (f ConsumerFunc) Consume(sample wire.Sample) {
	f(sample)
}

// DefaultQueueSize is the default buffer size for a Queue.
const DefaultQueueSize = 256

// Queue is a channel-backed consumer for applications that want to
// receive samples in their own goroutine. When the buffer is full,
// new samples are dropped rather than stalling dispatch.
type Queue struct {
	ch      chan wire.Sample
	dropped func(wire.Sample)
}

// NewQueue creates a queue with the default buffer size.
func NewQueue() *Queue {
	return NewQueueSize(DefaultQueueSize)
}

// NewQueueSize creates a queue with the given buffer size.
func NewQueueSize(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{ch: make(chan wire.Sample, size)}
}

// OnDrop installs a callback invoked for each sample dropped because
// the buffer was full. Must be set before the queue is registered.
func (q *Queue) OnDrop(fn func(wire.Sample)) {
	q.dropped = fn
}

// Consume enqueues the sample, dropping it if the buffer is full.
func (q *Queue) Consume(sample wire.Sample) {
	select {
	case q.ch <- sample:
	default:
		if q.dropped != nil {
			q.dropped(sample)
		}
	}
}

// Samples returns the receive side of the queue.
func (q *Queue) Samples() <-chan wire.Sample {
	return q.ch
}

// Compile-time interface satisfaction checks.
var (
	_ Consumer = ConsumerFunc(nil)
	_ Consumer = (*Queue)(nil)
)
