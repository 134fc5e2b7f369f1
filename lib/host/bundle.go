// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package host

import (
	"log/slog"

	"github.com/bureau-foundation/bunny/lib/asset"
	"github.com/bureau-foundation/bunny/lib/bundle"
	"github.com/bureau-foundation/bunny/lib/bunny"
)

// Bundle is a parsed archive held in memory.
type Bundle struct {
	name    string
	archive *bundle.Archive
	logger  *slog.Logger
}

// Name implements bunny.Bundle.
func (b *Bundle) Name() string { return b.name }

// Archive returns the underlying archive.
func (b *Bundle) Archive() *bundle.Archive { return b.archive }

// DecodeAll implements bunny.Bundle. Decoding runs on a new goroutine;
// assets that fail to decode are logged and left out.
func (b *Bundle) DecodeAll() bunny.DecodeOperation {
	operation := &decodeOperation{done: make(chan struct{})}
	go func() {
		defer close(operation.done)
		decoded, errs := asset.DecodeArchive(b.archive)
		for _, err := range errs {
			b.logger.Warn("skipping asset", "bundle", b.name, "error", err)
		}
		operation.assets = make([]bunny.NamedAsset, len(decoded))
		for i, d := range decoded {
			operation.assets[i] = bunny.NamedAsset{Name: d.Name, Value: d.Value}
		}
	}()
	return operation
}

type decodeOperation struct {
	done   chan struct{}
	assets []bunny.NamedAsset
}

func (o *decodeOperation) Done() bool {
	select {
	case <-o.done:
		return true
	default:
		return false
	}
}

// Assets is only read after Done reports true; the close of done
// orders the write before it.
func (o *decodeOperation) Assets() []bunny.NamedAsset {
	if !o.Done() {
		return nil
	}
	return o.assets
}
