package kv

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nvs.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestConfigModeDefaultsToZero(t *testing.T) {
	s := openTestStore(t)
	v, err := s.ConfigMode()
	require.NoError(t, err)
	require.Equal(t, uint8(0), v)
}

func TestSetAndClearConfigMode(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.SetConfigMode(1))
	v, err := s.ConfigMode()
	require.NoError(t, err)
	require.Equal(t, uint8(1), v)

	require.NoError(t, s.ClearConfigMode())
	v, err = s.ConfigMode()
	require.NoError(t, err)
	require.Equal(t, uint8(0), v)
}

func TestConfigModeSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nvs.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.SetConfigMode(1))
	require.NoError(t, s.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()
	v, err := s2.ConfigMode()
	require.NoError(t, err)
	require.Equal(t, uint8(1), v)
}
