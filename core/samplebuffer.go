package core

import "pkt.systems/echowave/schema"

// sampleBuffer is a bounded, order-preserving sequence of samples
// with FIFO eviction from the front.
type sampleBuffer struct {
	samples  []schema.Sample
	capacity int
}

func newSampleBuffer(capacity int) *sampleBuffer {
	if capacity <= 0 {
		capacity = schema.DefaultMaxPoints
	}
	return &sampleBuffer{capacity: capacity}
}

// Append adds a sample, evicting the oldest entries when capacity is
// exceeded.
func (b *sampleBuffer) Append(sample schema.Sample) {
	b.samples = append(b.samples, sample)
	if len(b.samples) > b.capacity {
		trim := len(b.samples) - b.capacity
		b.samples = b.samples[trim:]
	}
}

// SetCapacity applies a new capacity, trimming from the front when
// shrunk. Past samples are never re-derived.
func (b *sampleBuffer) SetCapacity(capacity int) {
	if capacity <= 0 {
		return
	}
	b.capacity = capacity
	if len(b.samples) > capacity {
		trim := len(b.samples) - capacity
		b.samples = b.samples[trim:]
	}
}

// Snapshot returns a copy of the buffered samples in order.
func (b *sampleBuffer) Snapshot() []schema.Sample {
	out := make([]schema.Sample, len(b.samples))
	copy(out, b.samples)
	return out
}

// Len returns the number of buffered samples.
func (b *sampleBuffer) Len() int {
	return len(b.samples)
}
