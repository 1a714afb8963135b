// Package queue implements the bounded single-producer/single-consumer
// inter-core sample queue.
//
// The cached-index ring buffer shape follows Lamport's classic SPSC ring
// buffer, with each side caching the other's index to cut cross-core cache
// traffic. Capacity here is fixed at 600 slots, so indices wrap with a
// modulo instead of a power-of-two bitmask.
package queue

import (
	"sync/atomic"

	"github.com/salmatx/bmsnode/internal/sample"
)

// Capacity is 30 seconds of sampling at 20Hz, the firmware's fixed budget
// for how far the slow path is allowed to fall behind the fast path.
const Capacity = 600

// Queue is a bounded FIFO of samples. Push is called only from the fast
// path goroutine and Pop only from the slow path goroutine; FreeSlots and
// ItemsWaiting are atomic snapshots safe to call from either side (the
// fast path checks FreeSlots, the slow path ItemsWaiting). No operation
// ever blocks or sleeps.
type Queue struct {
	_          [64]byte
	head       atomic.Uint64 // consumer position
	_          [56]byte
	cachedTail uint64 // consumer's cached view of tail, single-writer
	_          [56]byte
	tail       atomic.Uint64 // producer position
	_          [56]byte
	cachedHead uint64 // producer's cached view of head, single-writer
	_          [56]byte
	buffer     [Capacity]sample.Sample
}

// New returns an empty queue.
func New() *Queue {
	return &Queue{}
}

// Push enqueues s. Returns false without blocking if the queue is full.
// Producer-only.
func (q *Queue) Push(s *sample.Sample) bool {
	tail := q.tail.Load()
	if tail-q.cachedHead >= Capacity {
		q.cachedHead = q.head.Load()
		if tail-q.cachedHead >= Capacity {
			return false
		}
	}
	q.buffer[tail%Capacity] = *s
	q.tail.Store(tail + 1)
	return true
}

// Pop dequeues into out. Returns false without blocking if the queue is
// empty. Consumer-only.
func (q *Queue) Pop(out *sample.Sample) bool {
	head := q.head.Load()
	if head >= q.cachedTail {
		q.cachedTail = q.tail.Load()
		if head >= q.cachedTail {
			return false
		}
	}
	*out = q.buffer[head%Capacity]
	q.buffer[head%Capacity].Zero()
	q.head.Store(head + 1)
	return true
}

// FreeSlots returns a snapshot of how many pushes could currently succeed.
func (q *Queue) FreeSlots() int {
	return Capacity - q.ItemsWaiting()
}

// ItemsWaiting returns a snapshot of the number of samples pending pop.
func (q *Queue) ItemsWaiting() int {
	n := int(q.tail.Load() - q.head.Load())
	if n < 0 {
		return 0
	}
	return n
}
