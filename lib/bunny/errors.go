// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bunny

import (
	"errors"
	"fmt"
)

// parseFailureMessage is the message every waiter sees when downloaded
// bytes are not a bundle.
const parseFailureMessage = "Bundle downloaded, but could not be parsed."

// ErrReset is reported to requests whose download was torn down by
// [Loader.Reset] before it finished.
var ErrReset = errors.New("bundle download abandoned by loader reset")

// ErrEmptyReference is reported by requests for the empty reference.
var ErrEmptyReference = errors.New("asset reference is empty")

// NetworkError is a failed bundle fetch. The message comes from the
// fetcher unchanged.
type NetworkError struct {
	Bundle  string
	URL     string
	Message string
}

func (e *NetworkError) Error() string {
	return e.Message
}

// ParseError reports downloaded bytes that could not be interpreted as
// a bundle. Cause is the parser's error, nil when the parser returned
// no bundle and no error.
type ParseError struct {
	Bundle string
	Cause  error
}

func (e *ParseError) Error() string {
	return parseFailureMessage
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// AssetNotFoundError reports a bundle that loaded without the
// requested asset. It is built per request, never stored on a shared
// download.
type AssetNotFoundError struct {
	Bundle string
	Asset  string
}

func (e *AssetNotFoundError) Error() string {
	return fmt.Sprintf("Asset '%s' could not be found inside the bundle '%s'.", e.Asset, e.Bundle)
}

// IsNotFound returns true if err is or wraps an AssetNotFoundError.
func IsNotFound(err error) bool {
	var notFound *AssetNotFoundError
	return errors.As(err, &notFound)
}

// IsNetwork returns true if err is or wraps a NetworkError.
func IsNetwork(err error) bool {
	var networkErr *NetworkError
	return errors.As(err, &networkErr)
}

// IsParse returns true if err is or wraps a ParseError.
func IsParse(err error) bool {
	var parseErr *ParseError
	return errors.As(err, &parseErr)
}
