package adapter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/salmatx/bmsnode/internal/limits"
	"github.com/salmatx/bmsnode/internal/sample"
)

func testLimits() limits.Battery {
	return limits.Battery{
		CellVMin:   3.0,
		CellVMax:   4.2,
		PackVMin:   15.0,
		PackVMax:   21.0,
		CurrentMin: -20.0,
		CurrentMax: 20.0,
	}
}

func TestNewDemoAdapterZeroSeedUsesFallback(t *testing.T) {
	a := NewDemoAdapter(testLimits(), 0, func() uint64 { return 1 })
	require.Equal(t, fallbackSeed, a.state)
}

func TestNewDemoAdapterNonZeroSeedIsUsedDirectly(t *testing.T) {
	a := NewDemoAdapter(testLimits(), 0xdeadbeef, func() uint64 { return 1 })
	require.EqualValues(t, 0xdeadbeef, a.state)
}

func TestReadSampleIsDeterministicForFixedSeed(t *testing.T) {
	clock := func() uint64 { return 42 }
	a1 := NewDemoAdapter(testLimits(), 7, clock)
	a2 := NewDemoAdapter(testLimits(), 7, clock)

	var s1, s2 sample.Sample
	for i := 0; i < 50; i++ {
		require.NoError(t, a1.ReadSample(&s1))
		require.NoError(t, a2.ReadSample(&s2))
		require.Equal(t, s1, s2)
	}
}

func TestReadSampleCellsWithinLimitsAbsentFaultInjection(t *testing.T) {
	lim := testLimits()
	a := NewDemoAdapter(lim, 99, func() uint64 { return 1 })

	var s sample.Sample
	const faultMargin = 0.31 // widest possible fault excursion (0.1 + 1.0*0.2 + slack)
	for i := 0; i < 2000; i++ {
		require.NoError(t, a.ReadSample(&s))
		for _, v := range s.CellV {
			require.GreaterOrEqual(t, v, lim.CellVMin-float32(faultMargin))
			require.LessOrEqual(t, v, lim.CellVMax+float32(faultMargin))
		}
	}
}

func TestReadSampleRejectsInvertedCellLimits(t *testing.T) {
	lim := testLimits()
	lim.CellVMax = lim.CellVMin
	a := NewDemoAdapter(lim, 1, func() uint64 { return 1 })

	var s sample.Sample
	require.Error(t, a.ReadSample(&s))
}

func TestReadSampleUsesProvidedClockForTimestamp(t *testing.T) {
	tick := uint64(100)
	clock := func() uint64 {
		tick++
		return tick
	}
	a := NewDemoAdapter(testLimits(), 1, clock)

	var s sample.Sample
	require.NoError(t, a.ReadSample(&s))
	require.EqualValues(t, 101, s.Timestamp)
	require.NoError(t, a.ReadSample(&s))
	require.EqualValues(t, 102, s.Timestamp)
}

func TestInitIsNoop(t *testing.T) {
	a := NewDemoAdapter(testLimits(), 1, func() uint64 { return 1 })
	require.NoError(t, a.Init())
}
