package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"luxtrail/internal/config"
	"luxtrail/internal/geocode"
	"luxtrail/internal/logging"
	"luxtrail/internal/store"
)

// loadConfig reads path, or returns the defaults when path is empty.
func loadConfig(path, schema string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path, schema)
}

// newLogger writes to the configured log file, to nothing when the TUI owns
// the terminal, and to STDERR otherwise.
func newLogger(cfg *config.Config, tui bool) (*slog.Logger, func(), error) {
	var w io.Writer = os.Stderr
	cleanup := func() {}
	switch {
	case cfg.Logging.File != "":
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		cleanup = func() { f.Close() }
	case tui:
		return logging.Discard(), cleanup, nil
	}
	return logging.NewWithOptions(w, cfg.Logging.Format, cfg.Logging.Level), cleanup, nil
}

// newStore connects to Redis when REDIS_ADDR is set and falls back to memory.
func newStore(log *slog.Logger) (store.Store, func()) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return store.NewMemory(), func() {}
	}
	r, err := store.NewRedis(addr, os.Getenv("REDIS_PASSWORD"), "luxtrail")
	if err != nil {
		log.Warn("redis unavailable, using in-memory store", "addr", addr, "err", err)
		return store.NewMemory(), func() {}
	}
	return r, func() { r.Close() }
}

// newGeocoder builds the configured geocoder. It returns nil when lookups are
// disabled.
func newGeocoder(cfg config.GeocoderConfig, st store.Store) (geocode.Geocoder, error) {
	switch cfg.Provider {
	case "none":
		return nil, nil
	case "static":
		return geocode.Static(cfg.StaticName), nil
	case "nominatim":
		g := geocode.NewNominatim(cfg.Endpoint, cfg.UserAgent, cfg.Language)
		if st == nil {
			return g, nil
		}
		return geocode.NewCached(g, st, cfg.CacheTTL()), nil
	default:
		return nil, fmt.Errorf("unknown geocoder provider %q", cfg.Provider)
	}
}
