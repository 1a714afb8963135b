package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/salmatx/bmsnode/internal/config"
	"github.com/salmatx/bmsnode/internal/netstation"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = dashboardPage.Execute(w, nil)
}

func (s *Server) handleStatsPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = statsPage.Execute(w, nil)
}

// handleConfigPage serves the config form and, as a side effect, sets the
// persistent enter-config flag so the next PROCESSING step tears down the
// fast path and transitions to CONFIG.
func (s *Server) handleConfigPage(w http.ResponseWriter, r *http.Request) {
	if err := s.core.KV().SetConfigMode(1); err != nil {
		log.Error("failed to set enter-config flag", "err", err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = configPage.Execute(w, s.core.Config())
}

// handleStatsData streams the history ring as a JSON array, oldest first.
func (s *Server) handleStatsData(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := s.core.History().RenderJSONArray(w); err != nil {
		log.Error("render stats history failed", "err", err)
	}
}

// handleConfigData returns the current configuration singleton as JSON.
func (s *Server) handleConfigData(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(s.core.Config()); err != nil {
		log.Error("encode config failed", "err", err)
	}
}

// handleConfigSave parses the URL-encoded body, validates IP-format
// fields with a strict IPv4 parser, rounds battery floats to two decimals
// (delegated to config.Save), persists, clears the enter-config flag, and
// schedules a restart in 3s. Any validation failure leaves the
// configuration singleton and the enter-config flag untouched and returns
// the HTML error modal.
func (s *Server) handleConfigSave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		sendErrorModal(w, "Malformed Request", "The submitted form could not be parsed.")
		return
	}

	cfg := s.core.Config()

	newWifi := config.Wifi{
		SSID:     r.FormValue("wifi_ssid"),
		Pass:     formValueOrDefault(r, "wifi_pass", cfg.Wifi.Pass),
		StaticIP: r.FormValue("wifi_static_ip"),
		Gateway:  r.FormValue("wifi_gateway"),
		Netmask:  r.FormValue("wifi_netmask"),
	}

	if !netstation.ValidateStaticIP(newWifi.StaticIP) {
		sendErrorModal(w, "Invalid Static IP Address", "The static IP address is not a valid IPv4 address.")
		return
	}
	if !netstation.ValidateStaticIP(newWifi.Gateway) {
		sendErrorModal(w, "Invalid Gateway Address", "The gateway address is not a valid IPv4 address.")
		return
	}
	if !netstation.ValidateStaticIP(newWifi.Netmask) {
		sendErrorModal(w, "Invalid Netmask", "The netmask is not a valid IPv4 address.")
		return
	}

	battery, err := parseBattery(r, cfg.Battery)
	if err != nil {
		sendErrorModal(w, "Invalid Battery Limits", err.Error())
		return
	}

	cfg.Wifi = newWifi
	cfg.Broker = config.Broker{URI: formValueOrDefault(r, "broker_uri", cfg.Broker.URI)}
	cfg.Battery = battery

	if err := config.Save(s.configPath, cfg); err != nil {
		log.Error("config save failed", "err", err)
		sendErrorModal(w, "Save Failed", "The configuration could not be written to storage.")
		return
	}
	s.core.SetConfig(cfg)

	if err := s.core.KV().ClearConfigMode(); err != nil {
		log.Error("failed to clear enter-config flag", "err", err)
	}

	scheduleRestart(s.restart, 3*time.Second)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte("<html><body>Configuration saved. Restarting...</body></html>"))
}

// handleConfigCancel clears the enter-config flag without touching the
// configuration singleton and schedules a restart in 2s.
func (s *Server) handleConfigCancel(w http.ResponseWriter, r *http.Request) {
	if err := s.core.KV().ClearConfigMode(); err != nil {
		log.Error("failed to clear enter-config flag", "err", err)
	}
	scheduleRestart(s.restart, 2*time.Second)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte("<html><body>Configuration cancelled. Restarting...</body></html>"))
}

func scheduleRestart(restart RestartFunc, delay time.Duration) {
	if restart == nil {
		return
	}
	time.AfterFunc(delay, restart)
}

func formValueOrDefault(r *http.Request, key, fallback string) string {
	if v := r.FormValue(key); v != "" {
		return v
	}
	return fallback
}
