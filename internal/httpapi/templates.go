package httpapi

import (
	"bytes"
	"html/template"
	"net/http"
)

// errorModal mirrors the firmware's two-placeholder HTML template,
// {{TITLE}} and {{MESSAGE}}, used for every input-validation failure.
var errorModal = template.Must(template.New("error-modal").Parse(`<!DOCTYPE html>
<html>
<head><title>{{.Title}}</title></head>
<body>
  <div class="modal error">
    <h2>{{.Title}}</h2>
    <p>{{.Message}}</p>
    <a href="/bms/config">Back to configuration</a>
  </div>
</body>
</html>`))

func sendErrorModal(w http.ResponseWriter, title, message string) {
	var buf bytes.Buffer
	_ = errorModal.Execute(&buf, struct{ Title, Message string }{title, message})
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusBadRequest)
	_, _ = buf.WriteTo(w)
}

var dashboardPage = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html>
<head><title>BMS Node</title></head>
<body>
  <h1>Battery Management Node</h1>
  <nav>
    <a href="/bms/stats">Stats</a>
    <a href="/bms/config">Configuration</a>
  </nav>
</body>
</html>`))

var statsPage = template.Must(template.New("stats").Parse(`<!DOCTYPE html>
<html>
<head><title>BMS Stats</title><script src="/bms/js/charts.js"></script></head>
<body>
  <h1>Live Statistics</h1>
  <div id="charts"></div>
</body>
</html>`))

var configPage = template.Must(template.New("config").Parse(`<!DOCTYPE html>
<html>
<head><title>BMS Configuration</title></head>
<body>
  <h1>Configuration</h1>
  <form method="POST" action="/bms/config/save">
    <input name="wifi_ssid" value="{{.Wifi.SSID}}">
    <input name="wifi_pass" type="password">
    <input name="wifi_static_ip" value="{{.Wifi.StaticIP}}">
    <input name="wifi_gateway" value="{{.Wifi.Gateway}}">
    <input name="wifi_netmask" value="{{.Wifi.Netmask}}">
    <input name="broker_uri" value="{{.Broker.URI}}">
    <input name="cell_v_min" value="{{.Battery.CellVMin}}">
    <input name="cell_v_max" value="{{.Battery.CellVMax}}">
    <input name="pack_v_min" value="{{.Battery.PackVMin}}">
    <input name="pack_v_max" value="{{.Battery.PackVMax}}">
    <input name="current_min" value="{{.Battery.CurrentMin}}">
    <input name="current_max" value="{{.Battery.CurrentMax}}">
    <button type="submit">Save</button>
  </form>
  <form method="POST" action="/bms/config/cancel">
    <button type="submit">Cancel</button>
  </form>
</body>
</html>`))
