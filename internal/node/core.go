// Package node wires the adapter, queue, aggregator, history ring, broker
// and watchdog into the running BMS telemetry core: the fast path (CPU A),
// the slow path (CPU B) and the state machine governing both.
//
// Go gives neither thread pinning nor OS priority classes, so the two
// "CPUs" are modeled as two goroutines whose relative urgency is expressed
// through the shared watchdog latch and cooperative exit flags rather than
// scheduler priority, per the documented two-CPU-parallelism design note.
package node

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/salmatx/bmsnode/internal/adapter"
	"github.com/salmatx/bmsnode/internal/broker"
	"github.com/salmatx/bmsnode/internal/config"
	"github.com/salmatx/bmsnode/internal/history"
	"github.com/salmatx/bmsnode/internal/kv"
	"github.com/salmatx/bmsnode/internal/logging"
	"github.com/salmatx/bmsnode/internal/queue"
	"github.com/salmatx/bmsnode/internal/watchdog"
)

var log = logging.For("node")

// Core threads every piece of mutable state the state machine and both
// paths share, in place of package-level globals the target language
// forbids encapsulating any other way.
type Core struct {
	mu        sync.RWMutex
	cfg       config.Configuration
	adapter   adapter.Adapter
	queue     *queue.Queue
	history   *history.Ring
	publisher broker.Publisher
	kv        *kv.Store
	hw        *watchdog.Hardware
	allow     *watchdog.AllowFeeding

	shouldExit atomic.Bool
}

// NewCore assembles a Core from already-constructed collaborators. INIT's
// body then initializes the adapter and replaces the publisher with a
// dialed broker, failing over to CONFIG if either step errors.
func NewCore(cfg config.Configuration, a adapter.Adapter, pub broker.Publisher, kvStore *kv.Store) *Core {
	return &Core{
		cfg:       cfg,
		adapter:   a,
		queue:     queue.New(),
		history:   history.New(),
		publisher: pub,
		kv:        kvStore,
		allow:     watchdog.NewAllowFeeding(),
	}
}

// Config returns a snapshot of the current configuration singleton.
func (c *Core) Config() config.Configuration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg
}

// SetConfig replaces the configuration singleton. Called only from the
// CONFIG path's save handler.
func (c *Core) SetConfig(cfg config.Configuration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg = cfg
}

// Queue returns the inter-core sample queue.
func (c *Core) Queue() *queue.Queue { return c.queue }

// History returns the stats history ring HTTP handlers replay from.
func (c *Core) History() *history.Ring { return c.history }

// Publisher returns the broker publisher the slow path fires windows at.
func (c *Core) Publisher() broker.Publisher {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.publisher
}

// SetPublisher replaces the broker publisher. Called from INIT's body once
// a configured broker URI dials successfully.
func (c *Core) SetPublisher(pub broker.Publisher) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.publisher = pub
}

// KV returns the persistent store backing the enter-config flag.
func (c *Core) KV() *kv.Store { return c.kv }

// Adapter returns the sample source the fast path reads from.
func (c *Core) Adapter() adapter.Adapter { return c.adapter }

// AllowFeeding returns the shared watchdog latch both paths trip on
// resource exhaustion or deadline miss.
func (c *Core) AllowFeeding() *watchdog.AllowFeeding { return c.allow }

// AttachHardwareWatchdog installs the hardware watchdog instance created
// during INIT. Exposed separately from NewCore because the watchdog's
// onExpire callback typically closes over the Core itself.
func (c *Core) AttachHardwareWatchdog(hw *watchdog.Hardware) { c.hw = hw }

// HardwareWatchdog returns the attached hardware watchdog, or nil if INIT
// has not attached one yet.
func (c *Core) HardwareWatchdog() *watchdog.Hardware { return c.hw }

// RequestExit sets the cooperative exit flag the fast path's loops check
// at the top of every iteration.
func (c *Core) RequestExit() { c.shouldExit.Store(true) }

// ResetExit clears the cooperative exit flag, used when re-entering
// PROCESSING after a fresh process start following CONFIG.
func (c *Core) ResetExit() { c.shouldExit.Store(false) }

// ExitRequested reports the cooperative exit flag's current value.
func (c *Core) ExitRequested() bool { return c.shouldExit.Load() }

// ctxKey avoids an import cycle between node and any future middleware
// package that might want to pull a Core out of a context.Context.
type ctxKey struct{}

// WithCore attaches c to ctx.
func WithCore(ctx context.Context, c *Core) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromContext retrieves the Core attached by WithCore, if any.
func FromContext(ctx context.Context) (*Core, bool) {
	c, ok := ctx.Value(ctxKey{}).(*Core)
	return c, ok
}
