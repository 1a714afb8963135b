package node

import (
	"context"
	"time"

	"github.com/salmatx/bmsnode/internal/sample"
	"github.com/salmatx/bmsnode/internal/watchdog"
)

// SamplePeriod is the fast path's fixed sampling rate: 20Hz.
const SamplePeriod = 50 * time.Millisecond

// RunFastPath is the fast CPU's sampler loop: read one sample, push it onto
// the inter-core queue, repeat every SamplePeriod. It owns no synchronized
// state other than the queue and the shared watchdog latch.
//
// Two conditions trip the watchdog latch and stop this loop from feeding:
// the queue being observed full at the top of a cycle (resource
// exhaustion), and one iteration's own wall-clock time exceeding
// SamplePeriod (deadline miss). Both are "disable feeding, let the
// hardware watchdog reset" per the documented error policy, modeled here
// as tripping the latch and returning rather than invoking os.Exit
// directly; the hardware watchdog's expiry then ends the process.
func RunFastPath(ctx context.Context, c *Core) {
	ticker := time.NewTicker(SamplePeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if c.ExitRequested() {
			return
		}

		if c.Queue().FreeSlots() == 0 {
			log.Error("inter-core queue full, tripping watchdog latch")
			c.AllowFeeding().Trip()
			return
		}

		start := time.Now()

		var s sample.Sample
		if err := c.Adapter().ReadSample(&s); err != nil {
			log.Warn("adapter read failed", "err", err)
			continue
		}
		c.Queue().Push(&s)

		if elapsed := time.Since(start); elapsed > SamplePeriod {
			log.Error("fast path deadline miss", "elapsed", elapsed)
			c.AllowFeeding().Trip()
			return
		}
	}
}

// RunFastFeeder is the fast CPU's watchdog feeder task, registered and run
// for the lifetime of PROCESSING. Like RunFastPath it observes the
// cooperative exit flag, returning (and unregistering) within one
// FeedPeriod of RequestExit.
func RunFastFeeder(ctx context.Context, c *Core) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		ticker := time.NewTicker(watchdog.FeedPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if c.ExitRequested() {
					cancel()
					return
				}
			}
		}
	}()
	watchdog.NewFeeder(c.HardwareWatchdog(), "fast", c.AllowFeeding()).Run(ctx)
}
