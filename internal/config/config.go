// Package config loads and persists the node's runtime configuration: the
// Wi-Fi credentials, broker URI and battery limits that the INIT state
// reads once and the CONFIG state's HTTP handlers mutate.
//
// Missing keys in a loaded file keep the compiled-in defaults, matching the
// firmware's documented config store contract.
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/salmatx/bmsnode/internal/limits"
	"gopkg.in/yaml.v3"
)

// Wifi holds the station credentials and optional static addressing.
type Wifi struct {
	SSID     string `json:"ssid" yaml:"ssid"`
	Pass     string `json:"pass" yaml:"pass"`
	StaticIP string `json:"static_ip,omitempty" yaml:"static_ip,omitempty"`
	Gateway  string `json:"gateway,omitempty" yaml:"gateway,omitempty"`
	Netmask  string `json:"netmask,omitempty" yaml:"netmask,omitempty"`
}

// Broker holds the MQTT connection string.
type Broker struct {
	URI string `json:"uri" yaml:"uri"`
}

// Battery mirrors limits.Battery with serialization tags; Configuration's
// ToLimits converts it so the rest of the core never imports encoding
// details.
type Battery struct {
	CellVMin   float32 `json:"cell_v_min" yaml:"cell_v_min"`
	CellVMax   float32 `json:"cell_v_max" yaml:"cell_v_max"`
	PackVMin   float32 `json:"pack_v_min" yaml:"pack_v_min"`
	PackVMax   float32 `json:"pack_v_max" yaml:"pack_v_max"`
	CurrentMin float32 `json:"current_min" yaml:"current_min"`
	CurrentMax float32 `json:"current_max" yaml:"current_max"`
}

// Configuration is the process-wide singleton: loaded once at INIT, mutated
// only from the CONFIG path's save handler.
type Configuration struct {
	Wifi    Wifi    `json:"wifi" yaml:"wifi"`
	Broker  Broker  `json:"mqtt" yaml:"mqtt"`
	Battery Battery `json:"battery" yaml:"battery"`
}

// ToLimits projects the battery section into the type the aggregator and
// demo adapter consume.
func (c Configuration) ToLimits() limits.Battery {
	return limits.Battery{
		CellVMin:   c.Battery.CellVMin,
		CellVMax:   c.Battery.CellVMax,
		PackVMin:   c.Battery.PackVMin,
		PackVMax:   c.Battery.PackVMax,
		CurrentMin: c.Battery.CurrentMin,
		CurrentMax: c.Battery.CurrentMax,
	}
}

// Default returns the compiled-in configuration used when no file is
// present or the file fails to parse.
func Default() Configuration {
	return Configuration{
		Wifi:   Wifi{SSID: "bms-node", Pass: "changeme"},
		Broker: Broker{URI: "mqtt://localhost:1883"},
		Battery: Battery{
			CellVMin: 3.0, CellVMax: 4.2,
			PackVMin: 15.0, PackVMax: 21.0,
			CurrentMin: -20.0, CurrentMax: 20.0,
		},
	}
}

// Load reads path and overlays present keys onto the default configuration.
// A missing file yields the pure default with no error; a file that cannot
// be read or parsed yields the pure default together with the error. This
// matches the "recoverable configuration" error class, where INIT logs the
// error and proceeds with defaults rather than abort.
func Load(path string) (Configuration, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Default(), fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadAny reads path as YAML when it carries a .yaml/.yml extension and as
// JSON otherwise. The on-device config store only ever produces JSON; YAML
// is offered for operators who want to hand-author a config file on a
// development host.
func LoadAny(path string) (Configuration, error) {
	if !isYAMLPath(path) {
		return Load(path)
	}

	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Default(), fmt.Errorf("config: parse yaml %s: %w", path, err)
	}
	return cfg, nil
}

func isYAMLPath(path string) bool {
	n := len(path)
	return n >= 5 && path[n-5:] == ".yaml" || n >= 4 && path[n-4:] == ".yml"
}

// Save writes cfg to path as JSON, rounding every battery field to two
// decimal places first, matching the save handler's documented rounding
// step.
func Save(path string, cfg Configuration) error {
	cfg.Battery = roundBattery(cfg.Battery)

	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

func roundBattery(b Battery) Battery {
	return Battery{
		CellVMin:   round2(b.CellVMin),
		CellVMax:   round2(b.CellVMax),
		PackVMin:   round2(b.PackVMin),
		PackVMax:   round2(b.PackVMax),
		CurrentMin: round2(b.CurrentMin),
		CurrentMax: round2(b.CurrentMax),
	}
}

func round2(v float32) float32 {
	return float32(math.Round(float64(v)*100) / 100)
}
