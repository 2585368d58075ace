// Package fifo implements the SPSC sample ring buffer that absorbs
// jitter between the capture clock (input device callback) and the
// playback clock (output device callback).
package fifo

import "sync/atomic"

type ring struct {
	buf      []float32
	capacity uint64
	head     atomic.Uint64 // consumer-owned
	tail     atomic.Uint64 // producer-owned
	overflow atomic.Uint64
}

// Producer is the capture-side handle: bulk push only.
type Producer struct{ r *ring }

// Consumer is the playback-side handle: bulk pop only.
type Consumer struct{ r *ring }

// New builds a SampleFIFO of capacity 2*latencySamples, pre-filled
// with latencySamples zeros so the very first consumer pop never
// starves.
func New(latencySamples int) (*Producer, *Consumer) {
	if latencySamples < 0 {
		latencySamples = 0
	}
	capacity := 2 * latencySamples
	if capacity == 0 {
		capacity = 1
	}
	r := &ring{buf: make([]float32, capacity), capacity: uint64(capacity)}
	r.tail.Store(uint64(latencySamples)) // buf is already zeroed
	return &Producer{r}, &Consumer{r}
}

// Push bulk-copies data into the ring. If there is not enough room for
// all of data, the tail of the slice is dropped and the overflow
// counter advances by the dropped count — the oldest unread data is
// never evicted to make room.
func (p *Producer) Push(data []float32) (accepted int) {
	tail := p.r.tail.Load()
	head := p.r.head.Load()
	free := p.r.capacity - (tail - head)

	n := uint64(len(data))
	if n > free {
		dropped := n - free
		p.r.overflow.Add(dropped)
		n = free
	}
	for i := uint64(0); i < n; i++ {
		p.r.buf[(tail+i)%p.r.capacity] = data[i]
	}
	p.r.tail.Store(tail + n)
	return int(n)
}

// OverflowCount returns the cumulative number of samples dropped
// because the ring had no room for them.
func (p *Producer) OverflowCount() uint64 {
	return p.r.overflow.Load()
}

// Pop bulk-copies up to len(buf) pending samples into buf, returning
// the number actually copied.
func (c *Consumer) Pop(buf []float32) (n int) {
	tail := c.r.tail.Load()
	head := c.r.head.Load()
	avail := tail - head

	want := uint64(len(buf))
	if want > avail {
		want = avail
	}
	for i := uint64(0); i < want; i++ {
		buf[i] = c.r.buf[(head+i)%c.r.capacity]
	}
	c.r.head.Store(head + want)
	return int(want)
}

// Len reports the number of samples currently queued. Advisory only.
func (c *Consumer) Len() int {
	return int(c.r.tail.Load() - c.r.head.Load())
}
