// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bunny

// Fetcher starts bundle downloads.
type Fetcher interface {
	// Fetch begins downloading url and returns immediately.
	Fetch(url string) FetchOperation
}

// FetchOperation is one download in progress.
type FetchOperation interface {
	// Done reports whether the download has finished, successfully
	// or not. It never blocks.
	Done() bool

	// Result returns the downloaded bytes, or the transport error
	// whose message is surfaced to callers verbatim ("HTTP 404").
	// Only valid once Done reports true.
	Result() ([]byte, error)

	// Release frees the operation's resources and aborts it if it is
	// still running. Safe to call more than once.
	Release()
}

// Parser interprets downloaded bytes as a bundle.
type Parser interface {
	// Parse returns the bundle held in data. A nil bundle with a nil
	// error is treated as a parse failure.
	Parse(name string, data []byte) (Bundle, error)
}

// Bundle is a parsed bundle whose assets have not been decoded.
type Bundle interface {
	Name() string

	// DecodeAll starts decoding every asset and returns immediately.
	DecodeAll() DecodeOperation
}

// DecodeOperation is a decode-all pass in progress.
type DecodeOperation interface {
	// Done reports whether decoding has finished. It never blocks.
	Done() bool

	// Assets returns the decoded assets in bundle order. Only valid
	// once Done reports true.
	Assets() []NamedAsset
}

// NamedAsset is one decoded asset.
type NamedAsset struct {
	Name  string
	Value any
}

// Registry exposes bundles the host already holds in memory. A
// request for a resident bundle decodes it in place instead of
// fetching it again.
type Registry interface {
	// Lookup finds a resident bundle by name, ignoring case.
	Lookup(name string) (Bundle, bool)
}
