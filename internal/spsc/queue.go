// Package spsc implements a lock-free single-producer single-consumer
// ring buffer. Every cross-thread control channel in this module —
// graph edits, per-effect parameter updates — is one of these: the
// control thread holds the Producer, the audio thread holds the
// Consumer, and neither side ever blocks or allocates once the queue
// is constructed.
package spsc

import "sync/atomic"

type ring[T any] struct {
	buf  []T
	cap  uint64
	head atomic.Uint64 // next slot to read; owned by the consumer
	tail atomic.Uint64 // next slot to write; owned by the producer
}

// Producer is the write-only handle to a Queue.
type Producer[T any] struct {
	r *ring[T]
}

// Consumer is the read-only handle to a Queue.
type Consumer[T any] struct {
	r *ring[T]
}

// New creates an SPSC ring of the given capacity and splits it into
// its producer and consumer halves. Construction always happens on
// the control side; the consumer half is hidden from the audio thread
// until the owning node or graph is exposed to it.
func New[T any](capacity int) (*Producer[T], *Consumer[T]) {
	if capacity <= 0 {
		capacity = 1
	}
	r := &ring[T]{buf: make([]T, capacity), cap: uint64(capacity)}
	return &Producer[T]{r}, &Consumer[T]{r}
}

// TryPush appends v. It returns false without blocking if the queue is full.
func (p *Producer[T]) TryPush(v T) bool {
	tail := p.r.tail.Load()
	head := p.r.head.Load()
	if tail-head >= p.r.cap {
		return false
	}
	p.r.buf[tail%p.r.cap] = v
	p.r.tail.Store(tail + 1)
	return true
}

// TryPop removes and returns the oldest pending value. It returns
// false without blocking if the queue is empty.
func (c *Consumer[T]) TryPop() (T, bool) {
	head := c.r.head.Load()
	tail := c.r.tail.Load()
	if head == tail {
		var zero T
		return zero, false
	}
	v := c.r.buf[head%c.r.cap]
	c.r.head.Store(head + 1)
	return v, true
}

// Len reports the number of values currently pending. It is advisory —
// useful for diagnostics, not for synchronization.
func (c *Consumer[T]) Len() int {
	return int(c.r.tail.Load() - c.r.head.Load())
}
