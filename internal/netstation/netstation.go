// Package netstation brings up the Wi-Fi station link INIT depends on
// before the HTTP server and broker client can be reached. Wi-Fi bring-up
// itself is treated as an external collaborator; this package provides the
// one piece of behavior the core's INIT sequencing actually depends on: a
// bounded, retried connect with a 10s timeout.
package netstation

import (
	"fmt"
	"net"
	"time"

	"github.com/salmatx/bmsnode/internal/config"
	"github.com/salmatx/bmsnode/internal/logging"
)

var log = logging.For("netstation")

// Dialer is the connectivity check this package retries. Production
// wiring supplies a real one (DNS lookup, ping, whatever the platform
// offers); tests supply a fake.
type Dialer func(cfg config.Wifi) error

// ConnectTimeout is the documented ceiling INIT waits before treating
// Wi-Fi bring-up as failed.
const ConnectTimeout = 10 * time.Second

// retryInterval is how often ConnectWithRetry re-attempts dial within the
// timeout window.
const retryInterval = 250 * time.Millisecond

// ConnectWithRetry calls dial repeatedly until it succeeds or
// ConnectTimeout elapses, returning the last error on timeout.
func ConnectWithRetry(cfg config.Wifi, dial Dialer) error {
	deadline := time.Now().Add(ConnectTimeout)
	var lastErr error
	for {
		if err := dial(cfg); err == nil {
			return nil
		} else {
			lastErr = err
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("netstation: connect to %q timed out after %s: %w", cfg.SSID, ConnectTimeout, lastErr)
		}
		time.Sleep(retryInterval)
	}
}

// ValidateStaticIP reports whether the given IP-format field is a strict,
// well-formed IPv4 address; an empty field is accepted. Used by the
// config-save HTTP handler and the validate-config command.
func ValidateStaticIP(s string) bool {
	if s == "" {
		return true
	}
	ip := net.ParseIP(s)
	if ip == nil {
		return false
	}
	return ip.To4() != nil
}
