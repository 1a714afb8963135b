package node

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/salmatx/bmsnode/internal/broker"
	"github.com/salmatx/bmsnode/internal/config"
	"github.com/salmatx/bmsnode/internal/netstation"
	"github.com/salmatx/bmsnode/internal/sample"
	"github.com/salmatx/bmsnode/internal/stats"
	"github.com/salmatx/bmsnode/internal/watchdog"
)

// State is one of the three lifecycle states the slow path's step function
// cycles through.
type State int

const (
	StateInit State = iota
	StateProcessing
	StateConfig
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateProcessing:
		return "PROCESSING"
	case StateConfig:
		return "CONFIG"
	default:
		return "UNKNOWN"
	}
}

// StrobePeriod is the fixed inter-step sleep of the slow-path task.
const StrobePeriod = time.Second

// SlowDeadline is the soft per-cycle budget for one PROCESSING body call.
const SlowDeadline = 30 * time.Second

// ConfigPath is the on-disk location of the persisted configuration file.
const ConfigPath = "/etc/bmsnode/config.json"

// Machine runs the INIT/PROCESSING/CONFIG state machine against a Core. It
// owns the resources each state allocates on entry and frees on exit: the
// fast-path goroutines, their feeders, and the PROCESSING staging ring.
type Machine struct {
	core      *Core
	prev, cur State

	fastCtx    context.Context
	fastCancel context.CancelFunc
	fastWG     sync.WaitGroup

	slowFeederCancel context.CancelFunc

	staging *stats.StagingRing

	wifiDial   netstation.Dialer
	dialBroker broker.Dialer
}

// NewMachine returns a machine starting in INIT, wired to the production
// Wi-Fi and broker collaborators.
func NewMachine(core *Core) *Machine {
	return NewMachineWithDialers(core, defaultWifiDialer, defaultBrokerDialer)
}

// NewMachineWithDialers returns a machine starting in INIT with the given
// Wi-Fi and broker collaborators, for tests that must not touch the network.
func NewMachineWithDialers(core *Core, wifiDial netstation.Dialer, dialBroker broker.Dialer) *Machine {
	return &Machine{core: core, prev: StateInit, cur: StateInit, wifiDial: wifiDial, dialBroker: dialBroker}
}

// defaultWifiDialer is the production Wi-Fi collaborator. This host has no
// station driver to associate through, so the one real precondition it can
// check is that a station SSID is actually configured.
func defaultWifiDialer(cfg config.Wifi) error {
	if cfg.SSID == "" {
		return fmt.Errorf("wifi: no SSID configured")
	}
	return nil
}

// defaultBrokerDialer is the production broker collaborator.
func defaultBrokerDialer(uri string) (broker.Publisher, error) {
	return broker.DialMQTT(uri)
}

// Step runs exactly one state-machine step: entry actions if prev != cur,
// the state's body, exit actions if next != cur, then the prev/cur shift.
// Returns the state that was just executed, for logging and tests.
func (m *Machine) Step(ctx context.Context) State {
	if m.prev != m.cur {
		m.runEntry(ctx, m.cur)
	}

	next := m.runBody(ctx, m.cur)

	if next != m.cur {
		m.runExit(ctx, m.cur)
	}

	executed := m.cur
	m.prev, m.cur = m.cur, next
	return executed
}

// Current returns the state the machine is currently in.
func (m *Machine) Current() State { return m.cur }

// Run drives Step in a loop, sleeping StrobePeriod between steps, until ctx
// is cancelled.
func (m *Machine) Run(ctx context.Context) {
	for {
		m.Step(ctx)
		select {
		case <-ctx.Done():
			return
		case <-time.After(StrobePeriod):
		}
	}
}

func (m *Machine) runEntry(ctx context.Context, s State) {
	switch s {
	case StateInit:
		// No entry action beyond construction; INIT's body does the work.
	case StateProcessing:
		m.staging = stats.NewStagingRing()
		m.fastCtx, m.fastCancel = context.WithCancel(ctx)
		m.core.ResetExit()

		m.fastWG.Add(2)
		go func() {
			defer m.fastWG.Done()
			RunFastPath(m.fastCtx, m.core)
		}()
		go func() {
			defer m.fastWG.Done()
			RunFastFeeder(m.fastCtx, m.core)
		}()
	case StateConfig:
		// Fast-path teardown happens in PROCESSING's exit actions, which
		// already ran (or were skipped for an INIT->CONFIG failure path
		// where nothing was started). Here we tear down what only ever
		// runs across state transitions: the slow feeder and the
		// hardware watchdog itself.
		if m.slowFeederCancel != nil {
			m.slowFeederCancel()
			m.slowFeederCancel = nil
		}
		if hw := m.core.HardwareWatchdog(); hw != nil {
			hw.Deinit()
		}
	}
}

func (m *Machine) runBody(ctx context.Context, s State) State {
	switch s {
	case StateInit:
		return m.bodyInit(ctx)
	case StateProcessing:
		return m.bodyProcessing(ctx)
	case StateConfig:
		// Per-step sleep is the strobe period Run() already applies
		// between steps; the body itself has nothing left to do once
		// teardown has happened, since exit from CONFIG is via process
		// restart, not a transition this machine drives.
		return StateConfig
	default:
		return StateConfig
	}
}

func (m *Machine) runExit(ctx context.Context, s State) {
	switch s {
	case StateInit:
		hw := watchdog.NewHardware(watchdog.DefaultTimeout, func() {
			log.Error("hardware watchdog expired, resetting")
			os.Exit(1)
		})
		m.core.AttachHardwareWatchdog(hw)
		go hw.Run(ctx)

		slowCtx, slowCancel := context.WithCancel(ctx)
		m.slowFeederCancel = slowCancel
		go RunSlowFeeder(slowCtx, m.core)
	case StateProcessing:
		m.core.RequestExit()

		done := make(chan struct{})
		go func() {
			m.fastWG.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(10 * SamplePeriod):
			log.Warn("fast path did not exit in time, forcing cancellation")
			m.fastCancel()
			<-done
		}
		m.fastCancel()
		m.staging = nil
	case StateConfig:
		// CONFIG is only ever left by process restart; nothing to free here.
	}
}

func (m *Machine) bodyInit(ctx context.Context) State {
	cfg, err := config.Load(ConfigPath)
	if err != nil {
		log.Warn("config load failed, using defaults", "err", err)
	}
	m.core.SetConfig(cfg)

	if err := netstation.ConnectWithRetry(cfg.Wifi, m.wifiDial); err != nil {
		log.Error("wifi bring-up failed", "err", err)
		return StateConfig
	}

	if cfg.Broker.URI != "" {
		pub, err := m.dialBroker(cfg.Broker.URI)
		if err != nil {
			log.Error("broker dial failed", "err", err)
			return StateConfig
		}
		m.core.SetPublisher(pub)
	}

	if err := m.core.Adapter().Init(); err != nil {
		log.Error("adapter init failed", "err", err)
		return StateConfig
	}

	mode, err := m.core.KV().ConfigMode()
	if err != nil {
		log.Warn("kv read failed", "err", err)
	}
	if mode == 1 {
		return StateConfig
	}
	return StateProcessing
}

func (m *Machine) bodyProcessing(ctx context.Context) State {
	start := time.Now()
	defer func() {
		if elapsed := time.Since(start); elapsed > SlowDeadline {
			log.Error("slow path deadline miss", "elapsed", elapsed)
			m.core.AllowFeeding().Trip()
		}
	}()

	drainQueue(m.core, m.staging)

	lim := m.core.Config().ToLimits()
	for {
		batch, ok := stats.Compute(m.staging, lim)
		if !ok {
			break
		}
		for i := 0; i < batch.Count; i++ {
			emitWindow(m.core, batch.Windows[i])
		}
	}

	mode, err := m.core.KV().ConfigMode()
	if err != nil {
		log.Warn("kv read failed", "err", err)
	}
	if mode == 1 {
		if err := m.core.KV().ClearConfigMode(); err != nil {
			log.Warn("kv clear failed", "err", err)
		}
		return StateConfig
	}
	return StateProcessing
}

// drainQueue pops every sample currently waiting on the inter-core queue
// into the staging ring, stopping early if the ring fills first.
func drainQueue(c *Core, staging *stats.StagingRing) {
	var s sample.Sample
	for c.Queue().ItemsWaiting() > 0 && staging.Count() < stats.StagingCapacity {
		if !c.Queue().Pop(&s) {
			break
		}
		staging.Push(s)
	}
}
