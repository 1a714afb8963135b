// Package logging provides the structured logger shared by every subsystem.
//
// Each subsystem gets a child logger tagged the way the firmware's own
// per-subsystem log tags worked (LOG_TAG_BMS, LOG_TAG_WIFI, ...): a single
// slog.Logger with a "subsystem" attribute, so every line can be filtered
// or routed by source without callers needing to know about handlers.
package logging

import (
	"log/slog"
	"os"
	"sync"
)

var (
	mu   sync.Mutex
	root = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
)

// SetLevel adjusts the root handler's minimum level. Intended for the CLI's
// --verbose flag.
func SetLevel(level slog.Level) {
	mu.Lock()
	defer mu.Unlock()
	root = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// For returns a logger tagged with the given subsystem name.
func For(subsystem string) *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return root.With("subsystem", subsystem)
}
