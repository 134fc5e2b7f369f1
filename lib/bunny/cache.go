// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bunny

import "sort"

// Cache holds decoded assets by bundle and asset name, both compared
// ignoring case. A bundle is either absent or fully populated.
type Cache struct {
	bundles map[string]map[string]any
	// names keeps the spelling each bundle was populated under.
	names map[string]string
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{
		bundles: make(map[string]map[string]any),
		names:   make(map[string]string),
	}
}

// TryGet returns the cached object for the asset. It has no side
// effects.
func (c *Cache) TryGet(bundle, asset string) (any, bool) {
	assets, ok := c.bundles[fold(bundle)]
	if !ok {
		return nil, false
	}
	value, ok := assets[fold(asset)]
	return value, ok
}

// HasBundle reports whether bundle has been populated.
func (c *Cache) HasBundle(bundle string) bool {
	_, ok := c.bundles[fold(bundle)]
	return ok
}

// Populate stores every asset of bundle at once, replacing any earlier
// population of the same bundle. Asset names in assets must already be
// distinct ignoring case.
func (c *Cache) Populate(bundle string, assets map[string]any) {
	folded := make(map[string]any, len(assets))
	for name, value := range assets {
		folded[fold(name)] = value
	}
	key := fold(bundle)
	c.bundles[key] = folded
	c.names[key] = bundle
}

// Clear empties the cache.
func (c *Cache) Clear() {
	clear(c.bundles)
	clear(c.names)
}

// Len returns the number of cached bundles.
func (c *Cache) Len() int {
	return len(c.bundles)
}

// Bundles returns the cached bundle names, sorted.
func (c *Cache) Bundles() []string {
	names := make([]string, 0, len(c.names))
	for _, name := range c.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AssetCount returns the number of assets cached for bundle.
func (c *Cache) AssetCount(bundle string) int {
	return len(c.bundles[fold(bundle)])
}
