// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bunny

import (
	"errors"
	"log/slog"

	"github.com/bureau-foundation/bunny/lib/clock"
)

// Config holds the facilities a Loader drives.
type Config struct {
	// Fetcher downloads bundles. Required.
	Fetcher Fetcher

	// Parser turns downloaded bytes into bundles. Required.
	Parser Parser

	// Registry exposes bundles already resident in the host. Nil
	// disables adoption; every bundle is fetched.
	Registry Registry

	// Clock times downloads for logging. Defaults to the real clock.
	Clock clock.Clock

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Loader is the cache plus download coordinator for one host runtime.
// It is not safe for concurrent use.
type Loader struct {
	cache       *Cache
	coordinator *Coordinator
	logger      *slog.Logger
}

// NewLoader creates a loader with an empty cache.
func NewLoader(config Config) (*Loader, error) {
	if config.Fetcher == nil {
		return nil, errors.New("bunny: Fetcher is required")
	}
	if config.Parser == nil {
		return nil, errors.New("bunny: Parser is required")
	}
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	cache := NewCache()
	return &Loader{
		cache:       cache,
		coordinator: newCoordinator(cache, config),
		logger:      config.Logger,
	}, nil
}

// Cache returns the loader's asset cache.
func (l *Loader) Cache() *Cache {
	return l.cache
}

// Coordinator returns the loader's download coordinator.
func (l *Loader) Coordinator() *Coordinator {
	return l.coordinator
}

// Reset empties the cache and tears down every download, releasing
// their fetches. Requests still waiting on a torn-down download
// resolve with ErrReset. Calling Reset on an idle, empty loader does
// nothing.
func (l *Loader) Reset() {
	bundles, inFlight := l.cache.Len(), l.coordinator.InFlight()
	l.cache.Clear()
	l.coordinator.Teardown()
	if bundles > 0 || inFlight > 0 {
		l.logger.Info("loader reset", "cached_bundles", bundles, "in_flight", inFlight)
	}
}
