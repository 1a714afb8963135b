package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadMissingKeysKeepDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"wifi":{"ssid":"lab-net"}}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "lab-net", cfg.Wifi.SSID)
	require.Equal(t, Default().Wifi.Pass, cfg.Wifi.Pass)
	require.Equal(t, Default().Battery, cfg.Battery)
}

func TestSaveRoundsBatteryToTwoDecimals(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := Default()
	cfg.Battery.CellVMin = 3.00123
	cfg.Battery.CellVMax = 4.19876

	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	require.InDelta(t, 3.00, got.Battery.CellVMin, 1e-6)
	require.InDelta(t, 4.20, got.Battery.CellVMax, 1e-6)
}

func TestLoadAnyParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "wifi:\n  ssid: yaml-net\n  pass: secret\nbattery:\n  cell_v_min: 3.1\n  cell_v_max: 4.1\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadAny(path)
	require.NoError(t, err)
	require.Equal(t, "yaml-net", cfg.Wifi.SSID)
	require.InDelta(t, 3.1, cfg.Battery.CellVMin, 1e-6)
}

func TestToLimitsProjection(t *testing.T) {
	cfg := Default()
	lim := cfg.ToLimits()
	require.Equal(t, cfg.Battery.CellVMin, lim.CellVMin)
	require.Equal(t, cfg.Battery.CurrentMax, lim.CurrentMax)
}
