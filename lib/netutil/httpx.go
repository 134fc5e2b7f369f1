// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil provides bounded body reads for bundle downloads.
//
// A bundle is read into memory in full before it is parsed, so every
// read is capped: a misconfigured CDN or a hostile server must not be
// able to make the loader allocate without limit. Unlike a plain
// io.LimitReader, [ReadBody] reports an oversized body as an error
// instead of returning a silently truncated bundle that would then
// fail to parse with a misleading message.
package netutil

import (
	"errors"
	"fmt"
	"io"
)

// DefaultMaxBodySize bounds a single bundle download: 512 MiB.
const DefaultMaxBodySize int64 = 512 << 20

// maxErrorBodySize bounds how much of an error response is kept for
// diagnostics.
const maxErrorBodySize = 4 << 10

// ErrBodyTooLarge is returned by ReadBody when the body exceeds the
// limit.
var ErrBodyTooLarge = errors.New("response body exceeds size limit")

// ReadBody reads body in full, failing with ErrBodyTooLarge if it is
// longer than limit bytes. A non-positive limit selects
// DefaultMaxBodySize.
func ReadBody(body io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = DefaultMaxBodySize
	}
	data, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w (%d bytes)", ErrBodyTooLarge, limit)
	}
	return data, nil
}

// ErrorBody returns the first few KiB of an error response for log
// messages. Read errors are ignored; a partial body is still useful.
func ErrorBody(body io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(body, maxErrorBodySize))
	return string(data)
}
