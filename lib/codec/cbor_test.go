// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"strings"
	"testing"
)

type sampleEntry struct {
	Name   string `cbor:"name"`
	Kind   string `cbor:"kind,omitempty"`
	Size   uint32 `cbor:"size"`
	Digest []byte `cbor:"digest"`
}

type sampleGroup struct {
	Clips  []string   `json:"clips"`
	Volume [2]float64 `json:"volume"`
}

func TestMarshalDeterministic(t *testing.T) {
	value := map[string]any{"laser": 1, "explosion": 2, "theme": 3}

	first, err := Marshal(value)
	if err != nil {
		t.Fatalf("first Marshal: %v", err)
	}
	for range 10 {
		again, err := Marshal(value)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("encoding not deterministic: %x != %x", first, again)
		}
	}
}

func TestUnmarshalIntoStruct(t *testing.T) {
	original := sampleEntry{Name: "Laser", Kind: "clip", Size: 4410, Digest: []byte{1, 2, 3}}
	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded sampleEntry
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Name != original.Name || decoded.Size != original.Size || !bytes.Equal(decoded.Digest, original.Digest) {
		t.Errorf("decoded %+v, want %+v", decoded, original)
	}
}

func TestJSONTagFallback(t *testing.T) {
	data, err := Marshal(sampleGroup{Clips: []string{"a", "b"}, Volume: [2]float64{0.5, 1}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var generic map[string]any
	if err := Unmarshal(data, &generic); err != nil {
		t.Fatalf("Unmarshal into map: %v", err)
	}
	if _, ok := generic["clips"]; !ok {
		t.Errorf("json tag name not used as CBOR key: %v", generic)
	}
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	var entry sampleEntry
	if err := Unmarshal([]byte{0xff, 0x00, 0x13}, &entry); err == nil {
		t.Fatal("expected error decoding invalid CBOR")
	}
}

func TestDiagnose(t *testing.T) {
	data, err := Marshal(map[string]any{"bundle": "sfx"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	notation, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if !strings.Contains(notation, `"bundle"`) || !strings.Contains(notation, `"sfx"`) {
		t.Errorf("notation %q missing expected keys", notation)
	}
}
