package stats

import (
	"bytes"
	"fmt"
)

// MarshalJSON renders w in the exact field order and 3-decimal float
// precision the dashboard and broker payload both expect. Written by hand
// rather than via encoding/json struct tags because the wire format fixes
// decimal precision, which encoding/json has no portable way to express.
func (w StatsWindow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	fmt.Fprintf(&buf, `"timestamp":%d,`, w.Timestamp)
	fmt.Fprintf(&buf, `"sample_count":%d,`, w.SampleCount)
	fmt.Fprintf(&buf, `"cell_errors":%d,`, w.Errors)

	writeFloatArray(&buf, "cell_v_avg", w.CellVAvg[:])
	buf.WriteByte(',')
	writeFloatArray(&buf, "cell_v_min", w.CellVMin[:])
	buf.WriteByte(',')
	writeFloatArray(&buf, "cell_v_max", w.CellVMax[:])
	buf.WriteByte(',')

	fmt.Fprintf(&buf, `"pack_v_avg":%.3f,`, w.PackVAvg)
	fmt.Fprintf(&buf, `"pack_v_min":%.3f,`, w.PackVMin)
	fmt.Fprintf(&buf, `"pack_v_max":%.3f,`, w.PackVMax)
	fmt.Fprintf(&buf, `"pack_i_avg":%.3f,`, w.PackIAvg)
	fmt.Fprintf(&buf, `"pack_i_min":%.3f,`, w.PackIMin)
	fmt.Fprintf(&buf, `"pack_i_max":%.3f`, w.PackIMax)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeFloatArray(buf *bytes.Buffer, name string, vals []float32) {
	fmt.Fprintf(buf, `"%s":[`, name)
	for i, v := range vals {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(buf, "%.3f", v)
	}
	buf.WriteByte(']')
}
