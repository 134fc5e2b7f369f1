// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/cases"

	"github.com/bureau-foundation/bunny/lib/codec"
)

// Version is the container format version written into the magic.
const Version = 1

// headerSize is the magic plus the index length.
const headerSize = 12

// maxIndexSize bounds the CBOR index of an untrusted archive.
const maxIndexSize = 4 << 20

// MaxAssetSize bounds the decompressed size of one asset. Read rejects
// larger entries before anything is allocated for them.
const MaxAssetSize = 512 << 20

// maxLZ4Ratio is the most an LZ4 block can expand.
const maxLZ4Ratio = 255

var magicPrefix = [6]byte{'B', 'U', 'N', 'N', 'Y', 'B'}

// Index is the CBOR table of contents stored after the header.
type Index struct {
	Name   string  `cbor:"name"`
	Assets []Entry `cbor:"assets"`
}

// Entry describes one asset payload.
type Entry struct {
	Name             string         `cbor:"name"`
	Kind             string         `cbor:"kind"`
	Compression      CompressionTag `cbor:"compression"`
	CompressedSize   uint32         `cbor:"compressed_size"`
	UncompressedSize uint32         `cbor:"uncompressed_size"`
	Digest           Hash           `cbor:"digest"`
}

// Archive is a parsed bundle. Payloads are decompressed lazily by
// Extract; Read only validates the header and index.
type Archive struct {
	// Name is the bundle name recorded at pack time. The loader keys
	// bundles by the requested name, not this one.
	Name string

	// Entries lists assets in container order.
	Entries []Entry

	// Digest commits to the whole archive.
	Digest Hash

	data    []byte
	offsets []int
}

// IsArchive reports whether data starts with the bundle magic.
func IsArchive(data []byte) bool {
	return len(data) >= len(magicPrefix) && bytes.Equal(data[:len(magicPrefix)], magicPrefix[:])
}

// Read parses an encoded bundle. The returned archive aliases data.
func Read(data []byte) (*Archive, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("bundle is %d bytes, shorter than the %d byte header", len(data), headerSize)
	}
	if !IsArchive(data) {
		return nil, errors.New("not a bunny bundle (bad magic)")
	}
	if data[6] != Version {
		return nil, fmt.Errorf("unsupported bundle version %d (want %d)", data[6], Version)
	}
	if data[7] != 0 {
		return nil, fmt.Errorf("reserved header byte is %#x, want 0", data[7])
	}

	indexLength := int(binary.LittleEndian.Uint32(data[8:12]))
	if indexLength > maxIndexSize {
		return nil, fmt.Errorf("index is %d bytes, exceeds maximum %d", indexLength, maxIndexSize)
	}
	if headerSize+indexLength > len(data) {
		return nil, fmt.Errorf("index length %d overruns %d byte bundle", indexLength, len(data))
	}
	encodedIndex := data[headerSize : headerSize+indexLength]

	var index Index
	if err := codec.Unmarshal(encodedIndex, &index); err != nil {
		return nil, fmt.Errorf("decoding bundle index: %w", err)
	}

	payloads := data[headerSize+indexLength:]
	offsets := make([]int, len(index.Assets))
	offset := 0
	for i, entry := range index.Assets {
		if entry.Name == "" {
			return nil, fmt.Errorf("asset %d has an empty name", i)
		}
		if !entry.Compression.valid() {
			return nil, fmt.Errorf("asset %q: unsupported compression tag %d", entry.Name, entry.Compression)
		}
		if entry.Compression == CompressionNone && entry.CompressedSize != entry.UncompressedSize {
			return nil, fmt.Errorf("asset %q: uncompressed payload sizes differ (%d != %d)",
				entry.Name, entry.CompressedSize, entry.UncompressedSize)
		}
		if entry.UncompressedSize > MaxAssetSize {
			return nil, fmt.Errorf("asset %q: %d bytes uncompressed, exceeds maximum %d",
				entry.Name, entry.UncompressedSize, MaxAssetSize)
		}
		if entry.Compression == CompressionLZ4 &&
			uint64(entry.UncompressedSize) > maxLZ4Ratio*uint64(entry.CompressedSize) {
			return nil, fmt.Errorf("asset %q: %d lz4 bytes cannot expand to %d",
				entry.Name, entry.CompressedSize, entry.UncompressedSize)
		}
		offsets[i] = offset
		offset += int(entry.CompressedSize)
		if offset > len(payloads) {
			return nil, fmt.Errorf("asset %q overruns the data section", entry.Name)
		}
	}
	if offset != len(payloads) {
		return nil, fmt.Errorf("data section is %d bytes, index accounts for %d", len(payloads), offset)
	}

	return &Archive{
		Name:    index.Name,
		Entries: index.Assets,
		Digest:  hashIndex(encodedIndex),
		data:    payloads,
		offsets: offsets,
	}, nil
}

// Len returns the number of assets.
func (a *Archive) Len() int {
	return len(a.Entries)
}

// Extract decompresses asset i and verifies its digest.
func (a *Archive) Extract(i int) ([]byte, error) {
	if i < 0 || i >= len(a.Entries) {
		return nil, fmt.Errorf("asset index %d out of range [0, %d)", i, len(a.Entries))
	}
	entry := a.Entries[i]
	payload := a.data[a.offsets[i] : a.offsets[i]+int(entry.CompressedSize)]

	content, err := decompress(payload, entry.Compression, int(entry.UncompressedSize))
	if err != nil {
		return nil, fmt.Errorf("asset %q: %w", entry.Name, err)
	}
	if digest := HashAsset(content); digest != entry.Digest {
		return nil, fmt.Errorf("asset %q: digest mismatch (got %s, index says %s)",
			entry.Name, digest.Short(), entry.Digest.Short())
	}
	return content, nil
}

// Find returns the index of the last entry whose name matches name
// under full Unicode case folding, matching the loader's
// last-write-wins rule.
func (a *Archive) Find(name string) (int, bool) {
	fold := cases.Fold()
	target := fold.String(name)
	for i := len(a.Entries) - 1; i >= 0; i-- {
		if fold.String(a.Entries[i].Name) == target {
			return i, true
		}
	}
	return -1, false
}

// Builder assembles a bundle in memory.
type Builder struct {
	name     string
	entries  []Entry
	payloads [][]byte
}

// NewBuilder returns an empty builder for a bundle called name.
func NewBuilder(name string) *Builder {
	return &Builder{name: name}
}

// Add appends an asset. The payload is compressed with tag, falling
// back to CompressionNone when the codec would not shrink it.
func (b *Builder) Add(name, kind string, content []byte, tag CompressionTag) error {
	if name == "" {
		return errors.New("asset name is empty")
	}
	if len(content) > MaxAssetSize {
		return fmt.Errorf("asset %q is %d bytes, exceeds maximum %d", name, len(content), MaxAssetSize)
	}

	payload, err := compress(content, tag)
	if errors.Is(err, errIncompressible) {
		payload, tag = content, CompressionNone
	} else if err != nil {
		return fmt.Errorf("asset %q: %w", name, err)
	}

	b.entries = append(b.entries, Entry{
		Name:             name,
		Kind:             kind,
		Compression:      tag,
		CompressedSize:   uint32(len(payload)),
		UncompressedSize: uint32(len(content)),
		Digest:           HashAsset(content),
	})
	b.payloads = append(b.payloads, payload)
	return nil
}

// Len returns the number of assets added so far.
func (b *Builder) Len() int {
	return len(b.entries)
}

// Entries returns the index entries added so far.
func (b *Builder) Entries() []Entry {
	return b.entries
}

// WriteTo writes the encoded bundle to w.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	entries := b.entries
	if entries == nil {
		entries = []Entry{}
	}
	encodedIndex, err := codec.Marshal(Index{Name: b.name, Assets: entries})
	if err != nil {
		return 0, fmt.Errorf("encoding bundle index: %w", err)
	}
	if len(encodedIndex) > maxIndexSize {
		return 0, fmt.Errorf("index is %d bytes, exceeds maximum %d", len(encodedIndex), maxIndexSize)
	}

	var header [headerSize]byte
	copy(header[:], magicPrefix[:])
	header[6] = Version
	binary.LittleEndian.PutUint32(header[8:], uint32(len(encodedIndex)))

	var total int64
	for _, chunk := range append([][]byte{header[:], encodedIndex}, b.payloads...) {
		written, err := w.Write(chunk)
		total += int64(written)
		if err != nil {
			return total, fmt.Errorf("writing bundle: %w", err)
		}
	}
	return total, nil
}

// Bytes returns the encoded bundle.
func (b *Builder) Bytes() ([]byte, error) {
	var buffer bytes.Buffer
	if _, err := b.WriteTo(&buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
