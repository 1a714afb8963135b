package stats

import "github.com/salmatx/bmsnode/internal/sample"

// StagingCapacity is the slow path's scratch buffer size: enough to hold
// 5 seconds of samples at 20Hz, well above the 20-sample chunk the
// aggregator consumes per call.
const StagingCapacity = 100

// StagingRing is the slow path's private scratch buffer. Only the slow
// path goroutine ever touches it; it needs no locking.
type StagingRing struct {
	samples [StagingCapacity]sample.Sample
	head    int
	count   int
}

// NewStagingRing allocates an empty staging ring. The state machine calls
// this on entry to PROCESSING and discards the ring on exit.
func NewStagingRing() *StagingRing {
	return &StagingRing{}
}

// Push appends one sample drained from the inter-core queue. Returns false
// if the ring is already full; the caller should stop draining for this
// iteration and let the aggregator catch up first.
func (r *StagingRing) Push(s sample.Sample) bool {
	if r.count == StagingCapacity {
		return false
	}
	idx := (r.head + r.count) % StagingCapacity
	r.samples[idx] = s
	r.count++
	return true
}

// Count returns the number of staged samples awaiting aggregation.
func (r *StagingRing) Count() int {
	return r.count
}

// peekChunk copies the first n staged samples (in FIFO order) without
// removing them.
func (r *StagingRing) peekChunk(n int) []sample.Sample {
	out := make([]sample.Sample, n)
	for i := 0; i < n; i++ {
		out[i] = r.samples[(r.head+i)%StagingCapacity]
	}
	return out
}

// zeroAndAdvance scrubs the first n staged samples in place, then advances
// head and decrements count. Order matters: zeroing happens before the
// head moves past those slots, matching the firmware's documented
// zero-then-advance sequence.
func (r *StagingRing) zeroAndAdvance(n int) {
	for i := 0; i < n; i++ {
		r.samples[(r.head+i)%StagingCapacity].Zero()
	}
	r.head = (r.head + n) % StagingCapacity
	r.count -= n
}
