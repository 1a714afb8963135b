package node

import (
	"context"

	"github.com/salmatx/bmsnode/internal/stats"
	"github.com/salmatx/bmsnode/internal/watchdog"
)

// emitWindow serializes one aggregated window, fires it at the broker
// (fire-and-forget; failures are logged and otherwise ignored) and pushes
// it into the history ring regardless of publish outcome.
func emitWindow(c *Core, w stats.StatsWindow) {
	payload, err := w.MarshalJSON()
	if err != nil {
		log.Error("window serialize failed", "err", err)
		return
	}

	if err := c.Publisher().Publish("bms/esp32/stats", payload); err != nil {
		log.Warn("broker publish failed", "err", err)
	}

	if _, err := c.History().PushSeq(payload); err != nil {
		log.Error("history push failed", "err", err)
	}
}

// RunSlowFeeder is the slow CPU's watchdog feeder, started on INIT's exit
// and torn down externally when the machine leaves PROCESSING into CONFIG.
func RunSlowFeeder(ctx context.Context, c *Core) {
	watchdog.NewFeeder(c.HardwareWatchdog(), "slow", c.AllowFeeding()).Run(ctx)
}
