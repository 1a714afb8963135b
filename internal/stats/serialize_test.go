package stats

import (
	"encoding/json"
	"testing"

	"github.com/salmatx/bmsnode/internal/sample"
	"github.com/stretchr/testify/require"
)

func TestMarshalJSONFieldsAndPrecision(t *testing.T) {
	w := StatsWindow{
		Timestamp:   42,
		SampleCount: 20,
		Errors:      BitValid,
		PackVAvg:    17.5001,
		PackVMin:    17.0,
		PackVMax:    18.0,
		PackIAvg:    1.23456,
		PackIMin:    1.0,
		PackIMax:    1.5,
	}
	for i := range w.CellVAvg {
		w.CellVAvg[i] = 3.7001
		w.CellVMin[i] = 3.7
		w.CellVMax[i] = 3.71
	}

	raw, err := json.Marshal(w)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	require.EqualValues(t, 42, got["timestamp"])
	require.EqualValues(t, 20, got["sample_count"])
	require.EqualValues(t, 1, got["cell_errors"])
	require.Len(t, got["cell_v_avg"], sample.NCells)
	require.InDelta(t, 17.500, got["pack_v_avg"].(float64), 1e-6)
	require.InDelta(t, 1.235, got["pack_i_avg"].(float64), 1e-6)
	require.LessOrEqual(t, len(raw), 512)
}
