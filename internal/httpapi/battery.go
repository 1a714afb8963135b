package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/salmatx/bmsnode/internal/config"
)

// batteryFields maps each form field name to the Battery member it feeds,
// in the fixed order the save handler validates them.
var batteryFields = []struct {
	key string
	set func(b *config.Battery, v float32)
}{
	{"cell_v_min", func(b *config.Battery, v float32) { b.CellVMin = v }},
	{"cell_v_max", func(b *config.Battery, v float32) { b.CellVMax = v }},
	{"pack_v_min", func(b *config.Battery, v float32) { b.PackVMin = v }},
	{"pack_v_max", func(b *config.Battery, v float32) { b.PackVMax = v }},
	{"current_min", func(b *config.Battery, v float32) { b.CurrentMin = v }},
	{"current_max", func(b *config.Battery, v float32) { b.CurrentMax = v }},
}

// parseBattery reads each battery field from the form, falling back to the
// corresponding value in current when the field is absent from the body.
// A present-but-unparseable field is reported as an error rather than
// silently falling back, since that would mask a typo as a no-op save.
func parseBattery(r *http.Request, current config.Battery) (config.Battery, error) {
	out := current
	for _, f := range batteryFields {
		raw := r.FormValue(f.key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 32)
		if err != nil {
			return current, fmt.Errorf("%s is not a valid number", f.key)
		}
		f.set(&out, float32(v))
	}
	return out, nil
}
