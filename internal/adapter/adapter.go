// Package adapter defines the polymorphic sample source the fast path reads
// from, and a demo implementation that synthesizes plausible BMS readings
// for development and test without real LTC6804 hardware attached.
package adapter

import (
	"fmt"

	"github.com/salmatx/bmsnode/internal/limits"
	"github.com/salmatx/bmsnode/internal/sample"
)

// Adapter is the contract the fast path's sampler task consumes. A real
// hardware adapter would talk to an LTC6804 daisy chain over SPI; the demo
// adapter below is the only implementation this core ships.
type Adapter interface {
	Init() error
	ReadSample(out *sample.Sample) error
}

// fallbackSeed is used when the platform's entropy source yields zero,
// matching the firmware's documented xorshift32 seeding behavior.
const fallbackSeed uint32 = 0x12345678

// DemoAdapter synthesizes samples with a deterministic xorshift32 PRNG,
// occasionally injecting a single-cell under- or over-voltage fault.
type DemoAdapter struct {
	lim   limits.Battery
	state uint32
	clock func() uint64
}

// NewDemoAdapter builds a demo adapter seeded from seed (or the platform
// fallback if seed is zero) using clock for sample timestamps.
func NewDemoAdapter(lim limits.Battery, seed uint32, clock func() uint64) *DemoAdapter {
	if seed == 0 {
		seed = fallbackSeed
	}
	return &DemoAdapter{lim: lim, state: seed, clock: clock}
}

// Init is a no-op for the demo adapter; it carries no hardware state.
func (a *DemoAdapter) Init() error { return nil }

// next advances the xorshift32 generator and returns the new state.
func (a *DemoAdapter) next() uint32 {
	x := a.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	a.state = x
	return x
}

// unit returns a pseudo-random float64 in [0, 1).
func (a *DemoAdapter) unit() float64 {
	return float64(a.next()) / (1 << 32)
}

// ReadSample fills out with a synthesized reading. With probability 0.02 a
// single cell is pushed 0.1-0.3V under CellVMin; with probability 0.02
// (independently) a single cell is pushed 0.1-0.3V over CellVMax.
func (a *DemoAdapter) ReadSample(out *sample.Sample) error {
	if a.lim.CellVMax <= a.lim.CellVMin {
		return fmt.Errorf("adapter: invalid cell voltage limits [%v, %v]", a.lim.CellVMin, a.lim.CellVMax)
	}

	span := a.lim.CellVMax - a.lim.CellVMin
	var packV float32
	for i := 0; i < sample.NCells; i++ {
		v := a.lim.CellVMin + float32(a.unit())*span
		out.CellV[i] = v
		packV += v
	}

	if a.unit() < 0.02 {
		cell := int(a.next() % sample.NCells)
		drop := 0.1 + a.unit()*0.2
		delta := float32(drop)
		out.CellV[cell] -= delta
		packV -= delta
	}
	if a.unit() < 0.02 {
		cell := int(a.next() % sample.NCells)
		bump := 0.1 + a.unit()*0.2
		delta := float32(bump)
		out.CellV[cell] += delta
		packV += delta
	}

	out.PackV = packV
	// Preserved as-is: asymmetric around zero rather than
	// CurrentMin + r*(CurrentMax-CurrentMin). See DESIGN.md.
	out.PackI = a.lim.CurrentMin + float32(a.unit())*a.lim.CurrentMax*2
	out.Timestamp = a.clock()
	return nil
}
