package httpapi

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/salmatx/bmsnode/internal/broker"
	"github.com/salmatx/bmsnode/internal/config"
	"github.com/salmatx/bmsnode/internal/kv"
	"github.com/salmatx/bmsnode/internal/node"
	"github.com/salmatx/bmsnode/internal/sample"
	"github.com/stretchr/testify/require"
)

type stubAdapter struct{}

func (stubAdapter) Init() error                        { return nil }
func (stubAdapter) ReadSample(out *sample.Sample) error { return nil }

func newTestServer(t *testing.T) (http.Handler, *node.Core, string) {
	t.Helper()
	store, err := kv.Open(filepath.Join(t.TempDir(), "nvs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	core := node.NewCore(config.Default(), stubAdapter{}, broker.NewRecording(), store)
	configPath := filepath.Join(t.TempDir(), "config.json")

	router := NewRouter(core, func() {}, configPath)
	return router, core, configPath
}

func TestRootRedirectsToDashboard(t *testing.T) {
	router, _, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/bms", rec.Header().Get("Location"))
}

func TestConfigPageSetsEnterConfigFlag(t *testing.T) {
	router, core, _ := newTestServer(t)
	mode, err := core.KV().ConfigMode()
	require.NoError(t, err)
	require.Equal(t, uint8(0), mode)

	req := httptest.NewRequest(http.MethodGet, "/bms/config", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	mode, err = core.KV().ConfigMode()
	require.NoError(t, err)
	require.Equal(t, uint8(1), mode)
}

func TestConfigDataReturnsJSON(t *testing.T) {
	router, _, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/bms/config/data", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"ssid"`)
}

// Scenario F: invalid static IP returns the HTML error modal, leaves the
// configuration singleton and config_mode untouched.
func TestConfigSaveRejectsInvalidStaticIP(t *testing.T) {
	router, core, _ := newTestServer(t)
	before := core.Config()

	form := url.Values{}
	form.Set("wifi_ssid", "lab-net")
	form.Set("wifi_static_ip", "999.1.1.1")

	req := httptest.NewRequest(http.MethodPost, "/bms/config/save", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "Invalid Static IP Address")
	require.Equal(t, before, core.Config())

	mode, err := core.KV().ConfigMode()
	require.NoError(t, err)
	require.Equal(t, uint8(0), mode)
}

func TestConfigSaveAcceptsValidIPAndPersists(t *testing.T) {
	router, core, configPath := newTestServer(t)
	require.NoError(t, core.KV().SetConfigMode(1))

	form := url.Values{}
	form.Set("wifi_ssid", "lab-net")
	form.Set("wifi_static_ip", "192.168.1.50")
	form.Set("cell_v_min", "3.1")

	req := httptest.NewRequest(http.MethodPost, "/bms/config/save", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "lab-net", core.Config().Wifi.SSID)
	require.InDelta(t, 3.1, core.Config().Battery.CellVMin, 1e-4)

	mode, err := core.KV().ConfigMode()
	require.NoError(t, err)
	require.Equal(t, uint8(0), mode)

	onDisk, err := config.Load(configPath)
	require.NoError(t, err)
	require.Equal(t, "lab-net", onDisk.Wifi.SSID)
}

func TestConfigCancelClearsFlagWithoutChangingConfig(t *testing.T) {
	router, core, _ := newTestServer(t)
	require.NoError(t, core.KV().SetConfigMode(1))
	before := core.Config()

	req := httptest.NewRequest(http.MethodPost, "/bms/config/cancel", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, before, core.Config())

	mode, err := core.KV().ConfigMode()
	require.NoError(t, err)
	require.Equal(t, uint8(0), mode)
}

func TestStaticAssetsServed(t *testing.T) {
	router, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/bms/css/style.css", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "modal.error")

	req = httptest.NewRequest(http.MethodGet, "/bms/js/charts.js", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "stats/data")
}

// Scenario E: history replay, exercised through the HTTP layer.
func TestStatsDataReplaysHistoryRing(t *testing.T) {
	router, core, _ := newTestServer(t)
	for i := 1; i <= 300; i++ {
		require.NoError(t, core.History().Push([]byte(`{"timestamp":`+strconv.Itoa(i)+`}`)))
	}

	req := httptest.NewRequest(http.MethodGet, "/bms/stats/data", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.HasPrefix(rec.Body.String(), `[{"timestamp":61}`))
	require.True(t, strings.HasSuffix(strings.TrimSpace(rec.Body.String()), `{"timestamp":300}]`))
}
