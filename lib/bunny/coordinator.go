// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bunny

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/bureau-foundation/bunny/lib/clock"
)

// DownloadState is the stage a Download has reached.
type DownloadState int

const (
	// StateFetching waits for the network fetch.
	StateFetching DownloadState = iota
	// StateParsing interprets the fetched bytes. A download passes
	// through it within a single poll.
	StateParsing
	// StateDecoding waits for the decode-all pass.
	StateDecoding
	// StateComplete means the assets are in the cache.
	StateComplete
	// StateFailed means the download ended with an error.
	StateFailed
)

func (s DownloadState) String() string {
	switch s {
	case StateFetching:
		return "fetching"
	case StateParsing:
		return "parsing"
	case StateDecoding:
		return "decoding"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("DownloadState(%d)", int(s))
	}
}

// Status is the result of Coordinator.Poll.
type Status int

const (
	// StatusIdle means no download exists and the bundle is not cached.
	StatusIdle Status = iota
	// StatusPending means the download is still running.
	StatusPending
	// StatusReady means the bundle is in the cache.
	StatusReady
	// StatusFailed means the download failed; Poll also returns the
	// error.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPending:
		return "pending"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Download is the shared state of one bundle being fetched and
// decoded. The coordinator owns it; waiting requests hold a pointer
// and read its outcome.
type Download struct {
	bundle string
	key    string
	url    string
	state  DownloadState

	fetch  FetchOperation
	parsed Bundle
	decode DecodeOperation

	// assets holds the folded decode result once complete.
	assets map[string]any
	err    error

	hijacked bool
	started  time.Time
}

// Bundle returns the bundle name as first requested.
func (d *Download) Bundle() string { return d.bundle }

// URL returns the fetch URL. Empty for a hijacked download.
func (d *Download) URL() string { return d.url }

// State returns the current stage.
func (d *Download) State() DownloadState { return d.state }

// Done reports whether the download is terminal.
func (d *Download) Done() bool {
	return d.state == StateComplete || d.state == StateFailed
}

// Err returns the terminal error, nil unless the state is StateFailed.
func (d *Download) Err() error { return d.err }

// Hijacked reports whether the download adopted a resident bundle
// instead of fetching.
func (d *Download) Hijacked() bool { return d.hijacked }

// Coordinator tracks at most one Download per bundle name.
type Coordinator struct {
	cache    *Cache
	fetcher  Fetcher
	parser   Parser
	registry Registry
	clock    clock.Clock
	logger   *slog.Logger

	downloads map[string]*Download
}

func newCoordinator(cache *Cache, config Config) *Coordinator {
	return &Coordinator{
		cache:     cache,
		fetcher:   config.Fetcher,
		parser:    config.Parser,
		registry:  config.Registry,
		clock:     config.Clock,
		logger:    config.Logger,
		downloads: make(map[string]*Download),
	}
}

// TryBegin returns the download for bundle, starting one if none is
// registered. began reports whether this call created it.
//
// A bundle already resident in the registry is adopted: the download
// starts in StateDecoding with no fetch to release.
func (c *Coordinator) TryBegin(url, bundle string) (download *Download, began bool) {
	key := fold(bundle)
	if existing, ok := c.downloads[key]; ok {
		return existing, false
	}

	download = &Download{
		bundle:  bundle,
		key:     key,
		started: c.clock.Now(),
	}

	if c.registry != nil {
		if resident, ok := c.registry.Lookup(bundle); ok && resident != nil {
			c.logger.Info("adopting resident bundle", "bundle", bundle)
			download.hijacked = true
			download.parsed = resident
			download.decode = resident.DecodeAll()
			download.state = StateDecoding
			c.downloads[key] = download
			return download, true
		}
	}

	c.logger.Info("fetching bundle", "bundle", bundle, "url", url)
	download.url = url
	download.fetch = c.fetcher.Fetch(url)
	download.state = StateFetching
	c.downloads[key] = download
	return download, true
}

// Lookup returns the registered download for bundle.
func (c *Coordinator) Lookup(bundle string) (*Download, bool) {
	download, ok := c.downloads[fold(bundle)]
	return download, ok
}

// Poll advances the download for bundle by one step and reports its
// status. A failed download is removed by the poll that observes it.
func (c *Coordinator) Poll(bundle string) (Status, error) {
	download, ok := c.downloads[fold(bundle)]
	if !ok {
		if c.cache.HasBundle(bundle) {
			return StatusReady, nil
		}
		return StatusIdle, nil
	}
	if download.state == StateFailed {
		c.retire(download)
		return StatusFailed, download.err
	}
	c.advance(download)
	if download.state == StateComplete {
		return StatusReady, nil
	}
	return StatusPending, nil
}

// InFlight returns the number of registered downloads.
func (c *Coordinator) InFlight() int {
	return len(c.downloads)
}

// Teardown releases every fetch and forgets every download. Downloads
// that had not finished fail with ErrReset so their waiters resolve.
func (c *Coordinator) Teardown() {
	for key, download := range c.downloads {
		if !download.Done() {
			download.err = ErrReset
			download.state = StateFailed
		}
		c.release(download)
		delete(c.downloads, key)
	}
}

// advance performs at most one transition. Fetching hands straight to
// Parsing, which always leaves in the same step.
func (c *Coordinator) advance(download *Download) {
	switch download.state {
	case StateFetching:
		if !download.fetch.Done() {
			return
		}
		download.state = StateParsing
		c.parse(download)
	case StateParsing:
		c.parse(download)
	case StateDecoding:
		if !download.decode.Done() {
			return
		}
		c.complete(download)
	}
}

func (c *Coordinator) parse(download *Download) {
	data, err := download.fetch.Result()
	if err != nil {
		c.fail(download, &NetworkError{
			Bundle:  download.bundle,
			URL:     download.url,
			Message: err.Error(),
		})
		return
	}

	parsed, err := c.parser.Parse(download.bundle, data)
	if err != nil || parsed == nil {
		c.fail(download, &ParseError{Bundle: download.bundle, Cause: err})
		return
	}

	download.parsed = parsed
	download.decode = parsed.DecodeAll()
	download.state = StateDecoding
}

// complete populates the cache and retires the download in one step.
// Later duplicates of an asset name overwrite earlier ones.
func (c *Coordinator) complete(download *Download) {
	decoded := download.decode.Assets()
	assets := make(map[string]any, len(decoded))
	for _, asset := range decoded {
		assets[fold(asset.Name)] = asset.Value
	}

	c.cache.Populate(download.bundle, assets)
	download.assets = assets
	download.state = StateComplete
	c.release(download)
	c.retire(download)

	c.logger.Info("bundle loaded",
		"bundle", download.bundle,
		"assets", len(assets),
		"hijacked", download.hijacked,
		"duration", clock.Since(c.clock, download.started),
	)
}

func (c *Coordinator) fail(download *Download, err error) {
	download.err = err
	download.state = StateFailed
	c.release(download)

	attributes := []any{"bundle", download.bundle, "url", download.url, "error", err}
	if parseErr, ok := err.(*ParseError); ok && parseErr.Cause != nil {
		attributes = append(attributes, "cause", parseErr.Cause)
	}
	c.logger.Warn("bundle load failed", attributes...)
}

// retire removes download from the map if it is still the registered
// download for its bundle.
func (c *Coordinator) retire(download *Download) {
	if c.downloads[download.key] == download {
		delete(c.downloads, download.key)
	}
}

func (c *Coordinator) release(download *Download) {
	if download.fetch != nil {
		download.fetch.Release()
		download.fetch = nil
	}
}
