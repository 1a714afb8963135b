package watchdog

import (
	"context"
	"sync/atomic"
	"time"
)

// AllowFeeding is a one-way latch: once any task sets it false, the next
// feeder cycle skips, the hardware watchdog goes stale, and the process is
// considered down. It is never reset except by starting a fresh process
// (a fresh AllowFeeding value).
type AllowFeeding struct {
	v atomic.Bool
}

// NewAllowFeeding returns a latch starting in the allowed state.
func NewAllowFeeding() *AllowFeeding {
	a := &AllowFeeding{}
	a.v.Store(true)
	return a
}

// Allowed reports the current state.
func (a *AllowFeeding) Allowed() bool { return a.v.Load() }

// Trip sets the latch to false. Idempotent; never re-enables.
func (a *AllowFeeding) Trip() { a.v.Store(false) }

// Feeder periodically feeds the hardware watchdog on behalf of task, but
// only while allow is in the allowed state. It registers itself on Run
// and unregisters before returning.
type Feeder struct {
	hw    *Hardware
	task  string
	allow *AllowFeeding
}

// NewFeeder builds a feeder for task, gated by allow.
func NewFeeder(hw *Hardware, task string, allow *AllowFeeding) *Feeder {
	return &Feeder{hw: hw, task: task, allow: allow}
}

// Run registers with hw and feeds every FeedPeriod while allow is true,
// until ctx is cancelled. On return it unregisters from hw.
func (f *Feeder) Run(ctx context.Context) {
	f.hw.Register(f.task)
	defer f.hw.Unregister(f.task)

	ticker := time.NewTicker(FeedPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if f.allow.Allowed() {
				f.hw.Feed(f.task)
			}
			// else: deliberate no-op. The hardware watchdog will expire
			// on its own schedule; this feeder does not try to recover.
		}
	}
}
