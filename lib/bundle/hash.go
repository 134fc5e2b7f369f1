// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Hash is a 32-byte BLAKE3 digest.
type Hash [32]byte

// Domain keys for BLAKE3 keyed mode: ASCII domain names, zero padded.
// Changing either invalidates every published bundle.
var (
	assetDomainKey = [32]byte{
		'b', 'u', 'n', 'n', 'y', '.', 'b', 'u', 'n', 'd', 'l', 'e', '.',
		'a', 's', 's', 'e', 't',
	}
	indexDomainKey = [32]byte{
		'b', 'u', 'n', 'n', 'y', '.', 'b', 'u', 'n', 'd', 'l', 'e', '.',
		'i', 'n', 'd', 'e', 'x',
	}
)

// HashAsset is the digest stored for an uncompressed asset payload.
func HashAsset(data []byte) Hash {
	return keyedHash(assetDomainKey, data)
}

// hashIndex is the archive digest: the keyed hash of the encoded index.
func hashIndex(encodedIndex []byte) Hash {
	return keyedHash(indexDomainKey, encodedIndex)
}

func keyedHash(key [32]byte, data []byte) Hash {
	hasher, err := blake3.NewKeyed(key[:])
	if err != nil {
		panic("bundle: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var result Hash
	copy(result[:], hasher.Sum(nil))
	return result
}

// String returns the lowercase hex digest.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Short returns the first 12 hex characters, used in logs and
// `bunny inspect` output.
func (h Hash) Short() string {
	return h.String()[:12]
}

// ParseHash parses a 64-character hex digest.
func ParseHash(text string) (Hash, error) {
	var h Hash
	decoded, err := hex.DecodeString(text)
	if err != nil {
		return h, fmt.Errorf("parsing digest: %w", err)
	}
	if len(decoded) != len(h) {
		return h, fmt.Errorf("digest is %d bytes, want %d", len(decoded), len(h))
	}
	copy(h[:], decoded)
	return h, nil
}
