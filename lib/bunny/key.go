// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bunny

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// fold returns the case-folded form of name used as a map key.
// A Caser carries state, so each call builds its own.
func fold(name string) string {
	return cases.Fold().String(name)
}

// AssetKey identifies an asset by bundle and asset name. Two keys are
// equal when both names match ignoring case.
type AssetKey struct {
	Bundle string
	Asset  string
}

// Equal reports whether k and other name the same asset.
func (k AssetKey) Equal(other AssetKey) bool {
	return k.Key() == other.Key()
}

// Key returns the folded form of k, suitable as a map key.
func (k AssetKey) Key() string {
	return fold(k.Bundle) + "\x00" + fold(k.Asset)
}

// IsZero reports whether both names are empty.
func (k AssetKey) IsZero() bool {
	return k.Bundle == "" && k.Asset == ""
}

func (k AssetKey) String() string {
	return k.Bundle + "/" + k.Asset
}

// Reference is a typed pointer to an asset, as stored in game data and
// config files. T is the type the asset is expected to decode to.
type Reference[T any] struct {
	Bundle string `yaml:"bundle" json:"bundle"`
	Asset  string `yaml:"asset" json:"asset"`
}

// Ref returns a reference to asset inside bundle.
func Ref[T any](bundle, asset string) Reference[T] {
	return Reference[T]{Bundle: bundle, Asset: asset}
}

// None returns the empty reference.
func None[T any]() Reference[T] {
	return Reference[T]{}
}

// Key returns the reference's untyped key.
func (r Reference[T]) Key() AssetKey {
	return AssetKey{Bundle: r.Bundle, Asset: r.Asset}
}

// IsZero reports whether r is unassigned.
func (r Reference[T]) IsZero() bool {
	return r.Key().IsZero()
}

// Equal compares ignoring case.
func (r Reference[T]) Equal(other Reference[T]) bool {
	return r.Key().Equal(other.Key())
}

func (r Reference[T]) String() string {
	if r.IsZero() {
		return "(none)"
	}
	return r.Key().String()
}

// MarshalText encodes r as "bundle/asset"; the empty reference encodes
// as the empty string.
func (r Reference[T]) MarshalText() ([]byte, error) {
	if r.IsZero() {
		return []byte{}, nil
	}
	return []byte(r.Bundle + "/" + r.Asset), nil
}

// UnmarshalText parses "bundle/asset". The bundle part may itself
// contain slashes; the asset is everything after the last one.
func (r *Reference[T]) UnmarshalText(text []byte) error {
	value := string(text)
	if value == "" {
		*r = Reference[T]{}
		return nil
	}
	separator := strings.LastIndexByte(value, '/')
	if separator <= 0 || separator == len(value)-1 {
		return fmt.Errorf("invalid asset reference %q: want bundle/asset", value)
	}
	*r = Reference[T]{Bundle: value[:separator], Asset: value[separator+1:]}
	return nil
}
