// Package httpapi serves the dashboard and configuration surface described
// in the fixed handler table: a dashboard and stats page, a config page
// and its JSON/save/cancel endpoints, two static assets, and a history
// replay endpoint.
package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/salmatx/bmsnode/internal/logging"
	"github.com/salmatx/bmsnode/internal/node"
)

var log = logging.For("httpapi")

// RestartFunc is invoked after a config save or cancel, on a delay the
// caller schedules, to restart the process. Production wiring sets this to
// a callback that cancels the run's root context, ending the process; tests
// substitute a no-op stub since
// CONFIG's exit is documented as "exit is via reboot" and this core does
// not implement its own supervisor restart loop.
type RestartFunc func()

// Server bundles the core and a restart hook behind the route table.
type Server struct {
	core       *node.Core
	restart    RestartFunc
	configPath string
}

// NewRouter builds the fixed route table against core, calling restart
// (after the scheduled delay) from the save and cancel handlers, and
// persisting saved configuration to configPath.
func NewRouter(core *node.Core, restart RestartFunc, configPath string) http.Handler {
	s := &Server{core: core, restart: restart, configPath: configPath}

	r := mux.NewRouter()
	r.HandleFunc("/", s.handleRootRedirect).Methods(http.MethodGet)
	r.HandleFunc("/bms", s.handleDashboard).Methods(http.MethodGet)
	r.HandleFunc("/bms/stats", s.handleStatsPage).Methods(http.MethodGet)
	r.HandleFunc("/bms/config", s.handleConfigPage).Methods(http.MethodGet)
	r.HandleFunc("/bms/stats/data", s.handleStatsData).Methods(http.MethodGet)
	r.HandleFunc("/bms/config/data", s.handleConfigData).Methods(http.MethodGet)
	r.HandleFunc("/bms/config/save", s.handleConfigSave).Methods(http.MethodPost)
	r.HandleFunc("/bms/config/cancel", s.handleConfigCancel).Methods(http.MethodPost)
	r.HandleFunc("/bms/css/style.css", s.handleStaticAsset(cssContentType, styleCSS)).Methods(http.MethodGet)
	r.HandleFunc("/bms/js/charts.js", s.handleStaticAsset(jsContentType, chartsJS)).Methods(http.MethodGet)
	return r
}

func (s *Server) handleRootRedirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/bms", http.StatusFound)
}

const (
	cssContentType = "text/css; charset=utf-8"
	jsContentType  = "application/javascript; charset=utf-8"
)

func (s *Server) handleStaticAsset(contentType, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write([]byte(body))
	}
}
