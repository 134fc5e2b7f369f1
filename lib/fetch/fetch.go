// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package fetch downloads bundles over HTTP(S) or from the local file
// system. Each fetch runs on its own goroutine and reports completion
// through a non-blocking Done check, as the loader expects.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/bureau-foundation/bunny/lib/bunny"
	"github.com/bureau-foundation/bunny/lib/clock"
	"github.com/bureau-foundation/bunny/lib/netutil"
	"github.com/bureau-foundation/bunny/lib/version"
)

// Config holds configuration for a Fetcher.
type Config struct {
	// HTTPClient is used for http and https URLs. Defaults to a
	// client with Timeout.
	HTTPClient *http.Client

	// Timeout bounds each download when HTTPClient is nil. Zero
	// means no timeout.
	Timeout time.Duration

	// UserAgent defaults to "bunny/<version>".
	UserAgent string

	// MaxBodySize bounds each bundle. Defaults to
	// netutil.DefaultMaxBodySize.
	MaxBodySize int64

	// Clock provides time operations. Defaults to clock.Real().
	Clock clock.Clock

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Fetcher implements bunny.Fetcher.
type Fetcher struct {
	httpClient  *http.Client
	userAgent   string
	maxBodySize int64
	clock       clock.Clock
	logger      *slog.Logger
}

// New creates a Fetcher.
func New(config Config) *Fetcher {
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}
	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = version.UserAgent()
	}
	maxBodySize := config.MaxBodySize
	if maxBodySize <= 0 {
		maxBodySize = netutil.DefaultMaxBodySize
	}
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		httpClient:  httpClient,
		userAgent:   userAgent,
		maxBodySize: maxBodySize,
		clock:       clk,
		logger:      logger,
	}
}

// StatusError is a non-2xx HTTP response. Its message is the one
// surfaced to every request waiting on the bundle.
type StatusError struct {
	URL        string
	StatusCode int

	// Body is the start of the response body, for logs.
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == code
}

// Operation is one download. It implements bunny.FetchOperation.
type Operation struct {
	url    string
	done   chan struct{}
	cancel context.CancelFunc

	// Written by the download goroutine before done is closed.
	data []byte
	err  error
}

// Fetch implements bunny.Fetcher.
func (f *Fetcher) Fetch(url string) bunny.FetchOperation {
	return f.Start(url)
}

// Start begins downloading url and returns the concrete operation.
func (f *Fetcher) Start(url string) *Operation {
	ctx, cancel := context.WithCancel(context.Background())
	operation := &Operation{
		url:    url,
		done:   make(chan struct{}),
		cancel: cancel,
	}
	go func() {
		defer close(operation.done)
		started := f.clock.Now()
		operation.data, operation.err = f.download(ctx, url)
		if operation.err != nil {
			f.logger.Debug("fetch failed", "url", url, "error", operation.err)
			return
		}
		f.logger.Debug("fetch complete",
			"url", url,
			"bytes", len(operation.data),
			"duration", clock.Since(f.clock, started),
		)
	}()
	return operation
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	switch {
	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
		return f.downloadHTTP(ctx, url)
	default:
		return f.readFile(strings.TrimPrefix(url, "file://"))
	}
}

func (f *Fetcher) downloadHTTP(ctx context.Context, url string) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	request.Header.Set("User-Agent", f.userAgent)

	response, err := f.httpClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, &StatusError{
			URL:        url,
			StatusCode: response.StatusCode,
			Body:       netutil.ErrorBody(response.Body),
		}
	}
	if response.ContentLength > f.maxBodySize {
		return nil, fmt.Errorf("%w (%d bytes announced, limit %d)",
			netutil.ErrBodyTooLarge, response.ContentLength, f.maxBodySize)
	}
	return netutil.ReadBody(response.Body, f.maxBodySize)
}

func (f *Fetcher) readFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return netutil.ReadBody(file, f.maxBodySize)
}

// URL returns the requested URL.
func (o *Operation) URL() string { return o.url }

// Done implements bunny.FetchOperation.
func (o *Operation) Done() bool {
	select {
	case <-o.done:
		return true
	default:
		return false
	}
}

// Result implements bunny.FetchOperation. Before Done it reports an
// error rather than blocking.
func (o *Operation) Result() ([]byte, error) {
	if !o.Done() {
		return nil, errors.New("fetch still in progress")
	}
	return o.data, o.err
}

// Release aborts a running download and drops a finished one's data.
func (o *Operation) Release() {
	o.cancel()
	if o.Done() {
		o.data = nil
	}
}

// Wait blocks until the download finishes or ctx ends.
func (o *Operation) Wait(ctx context.Context) ([]byte, error) {
	select {
	case <-o.done:
		return o.data, o.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
