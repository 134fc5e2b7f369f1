// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/bureau-foundation/bunny/lib/codec"
)

func buildArchive(t *testing.T, tag CompressionTag) ([]byte, map[string][]byte) {
	t.Helper()
	contents := map[string][]byte{
		"Explosion": bytes.Repeat([]byte("boom "), 400),
		"Laser":     bytes.Repeat([]byte{0x10, 0x20, 0x30, 0x40}, 256),
		"Credits":   []byte("x"),
	}
	builder := NewBuilder("sfx")
	for _, name := range []string{"Explosion", "Laser", "Credits"} {
		if err := builder.Add(name, "raw", contents[name], tag); err != nil {
			t.Fatalf("Add(%s): %v", name, err)
		}
	}
	encoded, err := builder.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	return encoded, contents
}

func TestArchiveRoundtrip(t *testing.T) {
	for _, tag := range []CompressionTag{CompressionNone, CompressionLZ4, CompressionZstd} {
		t.Run(tag.String(), func(t *testing.T) {
			encoded, contents := buildArchive(t, tag)
			if !IsArchive(encoded) {
				t.Fatal("IsArchive = false for a built bundle")
			}

			archive, err := Read(encoded)
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if archive.Name != "sfx" {
				t.Errorf("Name = %q, want sfx", archive.Name)
			}
			if archive.Len() != 3 {
				t.Fatalf("Len = %d, want 3", archive.Len())
			}
			for i, entry := range archive.Entries {
				content, err := archive.Extract(i)
				if err != nil {
					t.Fatalf("Extract(%d): %v", i, err)
				}
				if !bytes.Equal(content, contents[entry.Name]) {
					t.Errorf("asset %s content mismatch", entry.Name)
				}
			}
		})
	}
}

func TestBuilderFallsBackForIncompressible(t *testing.T) {
	builder := NewBuilder("tiny")
	if err := builder.Add("one", "raw", []byte("x"), CompressionZstd); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if got := builder.Entries()[0].Compression; got != CompressionNone {
		t.Errorf("Compression = %s, want none", got)
	}
}

func TestArchiveDigestIgnoresCompression(t *testing.T) {
	plain, _ := buildArchive(t, CompressionNone)
	compressed, _ := buildArchive(t, CompressionLZ4)
	first, err := Read(plain)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	second, err := Read(compressed)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	for i := range first.Entries {
		if first.Entries[i].Digest != second.Entries[i].Digest {
			t.Errorf("asset %s digest differs across codecs", first.Entries[i].Name)
		}
	}
	if first.Digest == second.Digest {
		t.Error("archive digest should change when the index changes")
	}
}

func TestArchiveFind(t *testing.T) {
	builder := NewBuilder("dup")
	for _, add := range []struct{ name, content string }{
		{"Laser", "first"},
		{"Explosion", "boom"},
		{"LASER", "second"},
	} {
		if err := builder.Add(add.name, "raw", []byte(add.content), CompressionNone); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	encoded, err := builder.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	archive, err := Read(encoded)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	index, ok := archive.Find("laser")
	if !ok {
		t.Fatal("Find(laser) missed")
	}
	content, err := archive.Extract(index)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if string(content) != "second" {
		t.Errorf("Find(laser) resolved %q, want the last duplicate", content)
	}
	if _, ok := archive.Find("Missing"); ok {
		t.Error("Find(Missing) hit")
	}
}

func TestArchiveFindFullCaseFolding(t *testing.T) {
	builder := NewBuilder("signs")
	if err := builder.Add("Straße", "text", []byte("street"), CompressionNone); err != nil {
		t.Fatalf("Add: %v", err)
	}
	encoded, err := builder.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	archive, err := Read(encoded)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	for _, name := range []string{"STRASSE", "strasse", "straße"} {
		if index, ok := archive.Find(name); !ok || index != 0 {
			t.Errorf("Find(%q) = %d, %v; want 0, true", name, index, ok)
		}
	}
}

// encodeRaw assembles a bundle from a hand-written index, bypassing the
// builder's checks.
func encodeRaw(t *testing.T, index Index, payloads []byte) []byte {
	t.Helper()
	encodedIndex, err := codec.Marshal(index)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	header := make([]byte, headerSize)
	copy(header, magicPrefix[:])
	header[6] = Version
	binary.LittleEndian.PutUint32(header[8:12], uint32(len(encodedIndex)))
	return append(append(header, encodedIndex...), payloads...)
}

func TestReadRejectsOversizedEntries(t *testing.T) {
	tests := []struct {
		name    string
		entry   Entry
		wantErr string
	}{
		{
			name:    "lz4 gigabyte from two bytes",
			entry:   Entry{Name: "bomb", Kind: "raw", Compression: CompressionLZ4, CompressedSize: 2, UncompressedSize: 1 << 30},
			wantErr: "exceeds maximum",
		},
		{
			name:    "lz4 expansion beyond block limit",
			entry:   Entry{Name: "bomb", Kind: "raw", Compression: CompressionLZ4, CompressedSize: 2, UncompressedSize: 1 << 20},
			wantErr: "cannot expand",
		},
		{
			name:    "zstd over asset limit",
			entry:   Entry{Name: "bomb", Kind: "raw", Compression: CompressionZstd, CompressedSize: 2, UncompressedSize: MaxAssetSize + 1},
			wantErr: "exceeds maximum",
		},
		{
			name:    "lz4 over asset limit",
			entry:   Entry{Name: "bomb", Kind: "raw", Compression: CompressionLZ4, CompressedSize: 4 << 20, UncompressedSize: MaxAssetSize + 1},
			wantErr: "exceeds maximum",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			data := encodeRaw(t, Index{Name: "bomb", Assets: []Entry{test.entry}},
				make([]byte, test.entry.CompressedSize))
			_, err := Read(data)
			if err == nil {
				t.Fatal("Read accepted an entry that would allocate past the limit")
			}
			if !strings.Contains(err.Error(), test.wantErr) {
				t.Errorf("error = %q, want it to mention %q", err, test.wantErr)
			}
		})
	}
}

func TestDecompressBoundsAllocation(t *testing.T) {
	if _, err := decompress([]byte{0, 0}, CompressionLZ4, 1<<30); err == nil {
		t.Error("lz4 decompress accepted an impossible expansion")
	}
	if _, err := decompress([]byte{0, 0}, CompressionZstd, MaxAssetSize+1); err == nil {
		t.Error("zstd decompress accepted a size past the asset limit")
	}
}

func TestReadRejectsMalformed(t *testing.T) {
	valid, _ := buildArchive(t, CompressionLZ4)

	corrupt := func(mutate func([]byte) []byte) []byte {
		copied := append([]byte(nil), valid...)
		return mutate(copied)
	}

	tests := []struct {
		name    string
		data    []byte
		wantErr string
	}{
		{"empty", nil, "shorter than"},
		{"bad magic", corrupt(func(b []byte) []byte { b[0] = 'X'; return b }), "bad magic"},
		{"future version", corrupt(func(b []byte) []byte { b[6] = 9; return b }), "unsupported bundle version"},
		{"reserved byte", corrupt(func(b []byte) []byte { b[7] = 1; return b }), "reserved header byte"},
		{"index overrun", corrupt(func(b []byte) []byte {
			binary.LittleEndian.PutUint32(b[8:12], uint32(len(b)))
			return b
		}), "overruns"},
		{"truncated data", corrupt(func(b []byte) []byte { return b[:len(b)-1] }), "overruns"},
		{"trailing data", corrupt(func(b []byte) []byte { return append(b, 0) }), "index accounts for"},
		{"plain text", []byte("<html>404 Not Found</html>"), "bad magic"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Read(test.data)
			if err == nil {
				t.Fatal("Read succeeded")
			}
			if !strings.Contains(err.Error(), test.wantErr) {
				t.Errorf("error = %q, want it to mention %q", err, test.wantErr)
			}
		})
	}
}

func TestExtractDetectsTampering(t *testing.T) {
	builder := NewBuilder("tamper")
	if err := builder.Add("note", "text", []byte("hello bunny"), CompressionNone); err != nil {
		t.Fatalf("Add: %v", err)
	}
	encoded, err := builder.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	encoded[len(encoded)-1] ^= 0xff

	archive, err := Read(encoded)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if _, err := archive.Extract(0); err == nil || !strings.Contains(err.Error(), "digest mismatch") {
		t.Fatalf("Extract error = %v, want digest mismatch", err)
	}
	if _, err := archive.Extract(5); err == nil {
		t.Fatal("Extract out of range succeeded")
	}
}

func TestCompressionTagParsing(t *testing.T) {
	for _, tag := range []CompressionTag{CompressionNone, CompressionLZ4, CompressionZstd} {
		parsed, err := ParseCompressionTag(tag.String())
		if err != nil || parsed != tag {
			t.Errorf("ParseCompressionTag(%q) = %v, %v", tag.String(), parsed, err)
		}
	}
	if tag, err := ParseCompressionTag(""); err != nil || tag != CompressionLZ4 {
		t.Errorf("empty compression = %v, %v; want lz4", tag, err)
	}
	if _, err := ParseCompressionTag("gzip"); err == nil {
		t.Error("ParseCompressionTag(gzip) succeeded")
	}
	if got := CompressionTag(7).String(); got != "unknown(7)" {
		t.Errorf("String = %q", got)
	}
}

func TestHashParsing(t *testing.T) {
	digest := HashAsset([]byte("laser"))
	parsed, err := ParseHash(digest.String())
	if err != nil {
		t.Fatalf("ParseHash: %v", err)
	}
	if parsed != digest {
		t.Error("ParseHash did not round trip")
	}
	if len(digest.Short()) != 12 {
		t.Errorf("Short = %q", digest.Short())
	}
	if _, err := ParseHash("abcd"); err == nil {
		t.Error("ParseHash accepted a short digest")
	}
}
