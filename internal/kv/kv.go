// Package kv persists the one byte of state that must survive a restart:
// the "enter-config" flag. It stands in for the flash-backed NVS partition
// the real firmware keeps this flag in, using go.etcd.io/bbolt as an
// embedded, file-backed key-value store.
package kv

import (
	"fmt"

	"go.etcd.io/bbolt"
)

// Namespace is the single bucket this store uses, matching the firmware's
// documented NVS namespace "storage".
const Namespace = "storage"

// ConfigModeKey is the persisted flag's key. A value of 1 means the user
// wants CONFIG on the next PROCESSING check; 0 means proceed normally.
const ConfigModeKey = "config_mode"

// Store wraps a bbolt database restricted to the single namespace this
// core needs.
type Store struct {
	db *bbolt.DB
}

// Open opens (creating if absent) the bbolt file at path and ensures the
// storage bucket exists.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("kv: open %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(Namespace))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kv: init bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying file handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// ConfigMode reports the current enter-config flag. Absence reads as 0.
func (s *Store) ConfigMode() (uint8, error) {
	var v uint8
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(Namespace)).Get([]byte(ConfigModeKey))
		if len(b) == 1 {
			v = b[0]
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("kv: read %s: %w", ConfigModeKey, err)
	}
	return v, nil
}

// SetConfigMode persists the enter-config flag.
func (s *Store) SetConfigMode(v uint8) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(Namespace)).Put([]byte(ConfigModeKey), []byte{v})
	})
	if err != nil {
		return fmt.Errorf("kv: write %s: %w", ConfigModeKey, err)
	}
	return nil
}

// ClearConfigMode is a readability alias for SetConfigMode(0), used by the
// PROCESSING step once it has consumed the flag and by the config-save and
// config-cancel HTTP handlers.
func (s *Store) ClearConfigMode() error {
	return s.SetConfigMode(0)
}
