// Package history implements the bounded FIFO-with-overwrite ring the
// dashboard's /bms/stats/data endpoint replays from.
package history

import (
	"fmt"
	"io"
	"sync"
)

// Capacity is 60 seconds of history at 4 windows/s. Fault mode emits 5
// windows/s, so a ring of fault-mode windows spans 48 seconds.
const Capacity = 240

// MaxPayload is the per-entry size ceiling the serializer must respect.
const MaxPayload = 512

// entry is one serialized stats window, value-copied into the ring.
type entry struct {
	payload [MaxPayload]byte
	length  int
	seq     uint64
}

// Ring is a bounded, mutex-protected FIFO of serialized stats payloads.
// Push is called by the slow path; Render is called concurrently by HTTP
// handlers.
type Ring struct {
	mu      sync.Mutex
	entries [Capacity]entry
	head    int
	count   int
	nextSeq uint64
}

// New returns an empty history ring.
func New() *Ring {
	return &Ring{}
}

// Push value-copies payload into the next slot, overwriting the oldest
// entry once the ring is full. Returns an error if payload is MaxPayload
// bytes or longer; the entry is dropped in that case rather than truncated
// silently.
func (r *Ring) Push(payload []byte) error {
	_, err := r.PushSeq(payload)
	return err
}

// PushSeq behaves like Push but also returns the monotonically increasing
// sequence number assigned to this entry, mirroring the sequence counter
// the firmware's stats history kept alongside each retained sample so a
// dashboard client can detect gaps caused by overwrite.
func (r *Ring) PushSeq(payload []byte) (uint64, error) {
	if len(payload) >= MaxPayload {
		return 0, fmt.Errorf("history: payload length %d is not below max %d", len(payload), MaxPayload)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var idx int
	if r.count < Capacity {
		idx = (r.head + r.count) % Capacity
		r.count++
	} else {
		idx = r.head
		r.head = (r.head + 1) % Capacity
	}

	var e entry
	copy(e.payload[:], payload)
	e.length = len(payload)
	e.seq = r.nextSeq
	r.nextSeq++
	r.entries[idx] = e
	return e.seq, nil
}

// Len returns the current number of retained entries.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// RenderJSONArray streams the ring's contents as a JSON array, oldest
// first, to w.
//
// It snapshots (head, count) under lock, then releases the lock around
// each per-entry write, re-acquiring only to copy that one entry's bytes.
// This keeps the critical section brief at the cost that a concurrent
// Push may overwrite an entry between the snapshot and the read of it;
// the output is always a well-formed JSON array, but a slow reader can
// observe entries that were already stale by the time they render. This
// is the documented trade-off, not a bug.
func (r *Ring) RenderJSONArray(w io.Writer) error {
	r.mu.Lock()
	head, count := r.head, r.count
	r.mu.Unlock()

	if _, err := io.WriteString(w, "["); err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		if i > 0 {
			if _, err := io.WriteString(w, ","); err != nil {
				return err
			}
		}

		r.mu.Lock()
		idx := (head + i) % Capacity
		e := r.entries[idx]
		r.mu.Unlock()

		if _, err := w.Write(e.payload[:e.length]); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "]")
	return err
}
