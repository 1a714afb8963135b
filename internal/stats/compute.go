// Package stats implements the statistics aggregator: a pure function over
// a staging ring that turns raw samples into one or more windows of
// averages, extremes, and a fault bitmap.
//
// The fixed battery limits are evaluated inline against each window's
// samples rather than through a configurable threshold registry, since
// the resulting bit layout is fixed by the wire format.
package stats

import (
	"github.com/salmatx/bmsnode/internal/limits"
	"github.com/salmatx/bmsnode/internal/sample"
)

// chunkSize is the number of samples the aggregator consumes per call: a
// full 1-second chunk at 20Hz.
const chunkSize = 20

// nominalWindowSamples and faultWindowCount/faultWindowSamples describe the
// two windowing modes.
const (
	nominalWindowSamples = 20
	faultWindowCount     = 5
	faultWindowSamples   = 4
)

// Error bitmap layout of StatsWindow.Errors. The exported values are bit
// masks; the two per-cell base values are bit indices.
const (
	BitValid            = 1 << 0
	bitUndervoltBase    = 1 // bits 1,3,5,7,9 -> cell 0..4 undervoltage
	bitOvervoltBase     = 2 // bits 2,4,6,8,10 -> cell 0..4 overvoltage
	BitPackUnderCurrent = 1 << 11
	BitPackOverCurrent  = 1 << 12
)

// cellUndervoltBit returns the bitmask for cell i's undervoltage bit.
func cellUndervoltBit(i int) uint16 { return 1 << uint(bitUndervoltBase+2*i) }

// cellOvervoltBit returns the bitmask for cell i's overvoltage bit.
func cellOvervoltBit(i int) uint16 { return 1 << uint(bitOvervoltBase+2*i) }

// StatsWindow is one aggregation window: 1s in nominal mode, 0.2s in fault
// mode.
type StatsWindow struct {
	Timestamp   uint64
	SampleCount int
	CellVAvg    [sample.NCells]float32
	CellVMin    [sample.NCells]float32
	CellVMax    [sample.NCells]float32
	PackVAvg    float32
	PackVMin    float32
	PackVMax    float32
	PackIAvg    float32
	PackIMin    float32
	PackIMax    float32
	Errors      uint16
}

// StatsBatch is up to 5 windows produced by one Compute call.
type StatsBatch struct {
	Windows [faultWindowCount]StatsWindow
	Count   int
}

// Compute consumes exactly one 20-sample chunk from ring and returns the
// windows it produces. Returns (zero, false) if fewer than 20 samples are
// staged; the ring is left unchanged in that case.
//
// Mode selection is a single scan over the 20 samples: any cell or pack
// current outside lim switches the call into fault mode (5 windows of 4
// samples), otherwise nominal mode (1 window of 20 samples).
func Compute(ring *StagingRing, lim limits.Battery) (StatsBatch, bool) {
	if ring.Count() < chunkSize {
		return StatsBatch{}, false
	}

	chunk := ring.peekChunk(chunkSize)

	fault := false
	for i := range chunk {
		if violatesLimits(&chunk[i], lim) {
			fault = true
			break
		}
	}

	var batch StatsBatch
	if fault {
		for w := 0; w < faultWindowCount; w++ {
			start := w * faultWindowSamples
			batch.Windows[w] = aggregateWindow(chunk[start:start+faultWindowSamples], lim)
		}
		batch.Count = faultWindowCount
	} else {
		batch.Windows[0] = aggregateWindow(chunk[:nominalWindowSamples], lim)
		batch.Count = 1
	}

	ring.zeroAndAdvance(chunkSize)
	return batch, true
}

// violatesLimits reports whether s has any cell or pack-current value
// outside lim.
func violatesLimits(s *sample.Sample, lim limits.Battery) bool {
	for _, v := range s.CellV {
		if v < lim.CellVMin || v > lim.CellVMax {
			return true
		}
	}
	return s.PackI < lim.CurrentMin || s.PackI > lim.CurrentMax
}

// aggregateWindow reduces a slice of samples (always non-empty by
// construction) into one StatsWindow.
func aggregateWindow(samples []sample.Sample, lim limits.Battery) StatsWindow {
	if len(samples) == 0 {
		// Defensive only: the aggregator never calls this with an empty
		// slice, but a stray division by zero here would be worse than a
		// zeroed window.
		return StatsWindow{Errors: BitValid}
	}
	w := StatsWindow{
		Timestamp:   samples[0].Timestamp,
		SampleCount: len(samples),
		Errors:      BitValid,
	}

	for i := range w.CellVMin {
		w.CellVMin[i] = samples[0].CellV[i]
		w.CellVMax[i] = samples[0].CellV[i]
	}
	w.PackVMin, w.PackVMax = samples[0].PackV, samples[0].PackV
	w.PackIMin, w.PackIMax = samples[0].PackI, samples[0].PackI

	var cellSum [sample.NCells]float32
	var packVSum, packISum float32

	for _, s := range samples {
		for i, v := range s.CellV {
			cellSum[i] += v
			if v < w.CellVMin[i] {
				w.CellVMin[i] = v
			}
			if v > w.CellVMax[i] {
				w.CellVMax[i] = v
			}
			if v < lim.CellVMin {
				w.Errors |= cellUndervoltBit(i)
			}
			if v > lim.CellVMax {
				w.Errors |= cellOvervoltBit(i)
			}
		}

		packVSum += s.PackV
		packISum += s.PackI
		if s.PackV < w.PackVMin {
			w.PackVMin = s.PackV
		}
		if s.PackV > w.PackVMax {
			w.PackVMax = s.PackV
		}
		if s.PackI < w.PackIMin {
			w.PackIMin = s.PackI
		}
		if s.PackI > w.PackIMax {
			w.PackIMax = s.PackI
		}
		if s.PackI < lim.CurrentMin {
			w.Errors |= BitPackUnderCurrent
		}
		if s.PackI > lim.CurrentMax {
			w.Errors |= BitPackOverCurrent
		}
	}

	n := float32(len(samples))
	for i := range cellSum {
		w.CellVAvg[i] = cellSum[i] / n
	}
	w.PackVAvg = packVSum / n
	w.PackIAvg = packISum / n

	return w
}
