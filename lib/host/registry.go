// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package host

import (
	"sort"
	"sync"

	"golang.org/x/text/cases"

	"github.com/bureau-foundation/bunny/lib/bunny"
)

// Registry holds resident bundles by case-insensitive name. It is safe
// for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	bundles map[string]*Bundle
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{bundles: make(map[string]*Bundle)}
}

func foldName(name string) string {
	return cases.Fold().String(name)
}

// Register makes b resident, replacing any bundle of the same name.
func (r *Registry) Register(b *Bundle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bundles[foldName(b.name)] = b
}

// Get returns the resident bundle called name.
func (r *Registry) Get(name string) (*Bundle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bundles[foldName(name)]
	return b, ok
}

// Lookup implements bunny.Registry.
func (r *Registry) Lookup(name string) (bunny.Bundle, bool) {
	b, ok := r.Get(name)
	if !ok {
		return nil, false
	}
	return b, true
}

// Unload drops the bundle called name and reports whether it was
// resident.
func (r *Registry) Unload(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := foldName(name)
	_, ok := r.bundles[key]
	delete(r.bundles, key)
	return ok
}

// Names returns the resident bundle names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.bundles))
	for _, b := range r.bundles {
		names = append(names, b.name)
	}
	sort.Strings(names)
	return names
}
