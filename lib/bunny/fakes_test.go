// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bunny

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
)

// fakeFetcher records every fetch; tests finish them by hand.
type fakeFetcher struct {
	fetches []*fakeFetch
}

func (f *fakeFetcher) Fetch(url string) FetchOperation {
	operation := &fakeFetch{url: url}
	f.fetches = append(f.fetches, operation)
	return operation
}

// last returns the most recent fetch.
func (f *fakeFetcher) last(t *testing.T) *fakeFetch {
	t.Helper()
	if len(f.fetches) == 0 {
		t.Fatal("no fetch was started")
	}
	return f.fetches[len(f.fetches)-1]
}

type fakeFetch struct {
	url      string
	done     bool
	data     []byte
	err      error
	released int
}

func (o *fakeFetch) succeed(data string) {
	o.done, o.data = true, []byte(data)
}

func (o *fakeFetch) failWith(message string) {
	o.done, o.err = true, errors.New(message)
}

func (o *fakeFetch) Done() bool              { return o.done }
func (o *fakeFetch) Result() ([]byte, error) { return o.data, o.err }
func (o *fakeFetch) Release()                { o.released++ }

// fakeParser maps fetched payloads to bundles: the payload text names
// an entry in bundles.
type fakeParser struct {
	bundles map[string]*fakeBundle
	parses  int
}

func (p *fakeParser) Parse(name string, data []byte) (Bundle, error) {
	p.parses++
	switch content := string(data); content {
	case "nil-bundle":
		return nil, nil
	default:
		parsed, ok := p.bundles[content]
		if !ok {
			return nil, errors.New("bad magic")
		}
		return parsed, nil
	}
}

type fakeBundle struct {
	name   string
	assets []NamedAsset
	// holdDecode keeps decode operations pending until finishDecodes.
	holdDecode bool
	decodes    []*fakeDecode
}

func (b *fakeBundle) Name() string { return b.name }

func (b *fakeBundle) DecodeAll() DecodeOperation {
	operation := &fakeDecode{done: !b.holdDecode, assets: b.assets}
	b.decodes = append(b.decodes, operation)
	return operation
}

func (b *fakeBundle) finishDecodes() {
	for _, operation := range b.decodes {
		operation.done = true
	}
}

type fakeDecode struct {
	done   bool
	assets []NamedAsset
}

func (o *fakeDecode) Done() bool           { return o.done }
func (o *fakeDecode) Assets() []NamedAsset { return o.assets }

type fakeRegistry map[string]Bundle

func (r fakeRegistry) Lookup(name string) (Bundle, bool) {
	resident, ok := r[strings.ToLower(name)]
	return resident, ok
}

// clip stands in for a decoded audio clip.
type clip struct{ name string }

type harness struct {
	loader  *Loader
	fetcher *fakeFetcher
	parser  *fakeParser
}

func newHarness(t *testing.T, registry Registry, bundles ...*fakeBundle) *harness {
	t.Helper()
	fetcher := &fakeFetcher{}
	parser := &fakeParser{bundles: make(map[string]*fakeBundle)}
	for _, b := range bundles {
		parser.bundles[b.name] = b
	}
	loader, err := NewLoader(Config{
		Fetcher:  fetcher,
		Parser:   parser,
		Registry: registry,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	return &harness{loader: loader, fetcher: fetcher, parser: parser}
}

// pollable is the part of LoadRequest the drive helper needs.
type pollable interface {
	Poll() bool
}

// drive polls every request once per round, the way a frame loop
// would, until none is pending.
func drive(t *testing.T, requests ...pollable) int {
	t.Helper()
	for round := 1; round <= 100; round++ {
		pending := false
		for _, request := range requests {
			if request.Poll() {
				pending = true
			}
		}
		if !pending {
			return round
		}
	}
	t.Fatal("requests still pending after 100 rounds")
	return 0
}

func sfxBundle() *fakeBundle {
	return &fakeBundle{
		name: "sfx",
		assets: []NamedAsset{
			{Name: "Explosion", Value: &clip{name: "Explosion"}},
			{Name: "Laser", Value: &clip{name: "Laser"}},
		},
	}
}
