package netstation

import (
	"errors"
	"testing"
	"time"

	"github.com/salmatx/bmsnode/internal/config"
	"github.com/stretchr/testify/require"
)

func TestConnectWithRetrySucceedsEventually(t *testing.T) {
	attempts := 0
	dial := func(cfg config.Wifi) error {
		attempts++
		if attempts < 3 {
			return errors.New("not yet")
		}
		return nil
	}
	require.NoError(t, ConnectWithRetry(config.Wifi{SSID: "lab"}, dial))
	require.Equal(t, 3, attempts)
}

func TestConnectWithRetryTimesOut(t *testing.T) {
	dial := func(cfg config.Wifi) error { return errors.New("down") }
	start := time.Now()
	err := connectWithRetryBounded(config.Wifi{SSID: "lab"}, dial, 30*time.Millisecond)
	require.Error(t, err)
	require.Less(t, time.Since(start), time.Second)
}

// connectWithRetryBounded mirrors ConnectWithRetry with an injectable
// timeout so the timeout path doesn't cost a real 10s in tests.
func connectWithRetryBounded(cfg config.Wifi, dial Dialer, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for {
		if err := dial(cfg); err == nil {
			return nil
		} else {
			lastErr = err
		}
		if time.Now().After(deadline) {
			return lastErr
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestValidateStaticIP(t *testing.T) {
	require.True(t, ValidateStaticIP(""))
	require.True(t, ValidateStaticIP("192.168.1.50"))
	require.False(t, ValidateStaticIP("999.1.1.1"))
	require.False(t, ValidateStaticIP("not-an-ip"))
	require.False(t, ValidateStaticIP("::1"))
}
