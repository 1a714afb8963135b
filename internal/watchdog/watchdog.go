// Package watchdog implements the two-layer watchdog discipline: a
// hardware-style periodic deadline with per-task registration and
// feeding, gated by a software allow-feeding latch that the fast and
// slow paths trip when they detect resource exhaustion or a deadline
// miss.
//
// Modeled on the ESP-IDF task watchdog timer this firmware targets: one
// timer, many registered tasks, any one going stale trips expiry.
package watchdog

import (
	"context"
	"sync"
	"time"
)

// DefaultTimeout is the hardware watchdog's fixed deadline.
const DefaultTimeout = 80 * time.Millisecond

// FeedPeriod is how often a healthy feeder resets its registration.
const FeedPeriod = 20 * time.Millisecond

// Hardware simulates the device's hardware watchdog timer. Real firmware
// cannot catch its own expiry; this implementation calls OnExpire exactly
// once instead of resetting the MCU, so callers can observe the failure
// in tests.
type Hardware struct {
	mu        sync.Mutex
	timeout   time.Duration
	lastFed   map[string]time.Time
	onExpire  func()
	expired   bool
	stopCh    chan struct{}
	stopped   bool
}

// NewHardware builds a hardware watchdog with the given timeout. onExpire
// is invoked from the watchdog's own goroutine the first time any
// registered task goes stale.
func NewHardware(timeout time.Duration, onExpire func()) *Hardware {
	return &Hardware{
		timeout:  timeout,
		lastFed:  make(map[string]time.Time),
		onExpire: onExpire,
		stopCh:   make(chan struct{}),
	}
}

// Register enrolls a task by name. Registration itself counts as an
// initial feed.
func (h *Hardware) Register(task string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastFed[task] = time.Now()
}

// Unregister removes a task from supervision, used when a feeder
// self-deletes during a cooperative shutdown.
func (h *Hardware) Unregister(task string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.lastFed, task)
}

// Feed resets task's deadline.
func (h *Hardware) Feed(task string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.lastFed[task]; ok {
		h.lastFed[task] = time.Now()
	}
}

// Run polls for stale registrants until ctx is done or Deinit is called.
// Intended to run in its own goroutine for the process lifetime between
// INIT and the CONFIG state's watchdog deinitialization.
func (h *Hardware) Run(ctx context.Context) {
	ticker := time.NewTicker(h.timeout / 4)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-h.stopCh:
			return
		case <-ticker.C:
			if h.checkExpired() {
				return
			}
		}
	}
}

func (h *Hardware) checkExpired() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.expired || h.stopped {
		return h.expired
	}
	now := time.Now()
	for _, last := range h.lastFed {
		if now.Sub(last) > h.timeout {
			h.expired = true
			if h.onExpire != nil {
				go h.onExpire()
			}
			return true
		}
	}
	return false
}

// Deinit stops the watchdog's own polling loop without tripping expiry.
// Called from the CONFIG state's entry actions.
func (h *Hardware) Deinit() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.stopped = true
	h.mu.Unlock()
	close(h.stopCh)
}
