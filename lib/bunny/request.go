// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bunny

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/bureau-foundation/bunny/lib/clock"
)

// LoadRequest is one caller's request for one asset. Drive it with
// Poll until Poll returns false, then read Asset and Err.
type LoadRequest[T any] struct {
	loader   *Loader
	key      AssetKey
	download *Download

	asset      T
	err        error
	done       bool
	mismatched bool
}

// LoadAssetAsync requests the asset ref names. The bundle is fetched
// from JoinBundlePath(basePath, ref.Bundle) unless it is cached,
// already downloading, or resident in the host registry.
func LoadAssetAsync[T any](loader *Loader, ref Reference[T], basePath string) *LoadRequest[T] {
	return NewLoadRequest[T](loader, JoinBundlePath(basePath, ref.Bundle), ref.Bundle, ref.Asset)
}

// NewLoadRequest requests asset from bundle, fetching from url if
// needed. A request against a cached bundle resolves before it
// returns, either with the asset or with AssetNotFoundError.
func NewLoadRequest[T any](loader *Loader, url, bundle, asset string) *LoadRequest[T] {
	request := &LoadRequest[T]{
		loader: loader,
		key:    AssetKey{Bundle: bundle, Asset: asset},
	}
	if bundle == "" {
		request.fail(ErrEmptyReference)
		return request
	}
	if request.checkCache() {
		return request
	}
	if loader.cache.HasBundle(bundle) {
		request.fail(&AssetNotFoundError{Bundle: bundle, Asset: asset})
		return request
	}
	request.download, _ = loader.coordinator.TryBegin(url, bundle)
	return request
}

// Poll advances the request and reports whether it is still pending.
func (r *LoadRequest[T]) Poll() bool {
	if r.done {
		return false
	}
	if r.checkCache() {
		return false
	}

	download := r.download
	if download.Done() {
		r.loader.coordinator.retire(download)
		switch {
		case download.err != nil:
			r.fail(download.err)
		default:
			if value, ok := download.assets[fold(r.key.Asset)]; ok {
				r.resolve(value)
			} else {
				r.fail(&AssetNotFoundError{Bundle: r.key.Bundle, Asset: r.key.Asset})
			}
		}
		return false
	}

	r.loader.coordinator.advance(download)
	return true
}

// Wait polls on a ticker until the request resolves or ctx ends. It is
// for command-line tools; hosts with a frame loop call Poll instead.
func (r *LoadRequest[T]) Wait(ctx context.Context, clk clock.Clock, interval time.Duration) (T, error) {
	if !r.Poll() {
		return r.asset, r.err
	}
	ticker := clk.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		case <-ticker.C:
			if !r.Poll() {
				return r.asset, r.err
			}
		}
	}
}

// Asset returns the resolved asset, or the zero value if the request
// failed, is pending, or the cached object was not a T.
func (r *LoadRequest[T]) Asset() T { return r.asset }

// Err returns the failure, nil on success or while pending.
func (r *LoadRequest[T]) Err() error { return r.err }

// Done reports whether the request has resolved.
func (r *LoadRequest[T]) Done() bool { return r.done }

// Key returns the requested asset's key.
func (r *LoadRequest[T]) Key() AssetKey { return r.key }

// Mismatched reports whether the asset was found but was not a T. Such
// a request resolves with the zero value and no error.
func (r *LoadRequest[T]) Mismatched() bool { return r.mismatched }

func (r *LoadRequest[T]) checkCache() bool {
	value, ok := r.loader.cache.TryGet(r.key.Bundle, r.key.Asset)
	if !ok {
		return false
	}
	r.resolve(value)
	return true
}

func (r *LoadRequest[T]) resolve(value any) {
	r.done = true
	if value == nil {
		return
	}
	typed, ok := value.(T)
	if !ok {
		r.mismatched = true
		r.loader.logger.Debug("cached asset has a different type",
			"asset", r.key.String(),
			"cached", fmt.Sprintf("%T", value),
			"requested", reflect.TypeFor[T]().String(),
		)
		return
	}
	r.asset = typed
}

func (r *LoadRequest[T]) fail(err error) {
	r.done = true
	r.err = err
}
