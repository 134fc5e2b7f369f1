// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package asset

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
	"golang.org/x/text/cases"

	"github.com/bureau-foundation/bunny/lib/bundle"
	"github.com/bureau-foundation/bunny/lib/codec"
)

// Decoded is one decoded asset.
type Decoded struct {
	Name  string
	Kind  string
	Value any
}

// DecodeArchive decodes every asset in archive, in archive order.
// Assets that fail to decode are left out and reported in errs; the
// rest of the bundle still loads.
func DecodeArchive(archive *bundle.Archive) (assets []Decoded, errs []error) {
	entries := archive.Entries
	slots := make([]*Decoded, len(entries))
	clips := make(map[string]*Clip)
	caser := cases.Fold()

	// Leaf assets first so groups can resolve clips regardless of
	// where they sit in the archive.
	for i, entry := range entries {
		if isGroup(entry.Kind) {
			continue
		}
		value, err := decodeLeaf(archive, i)
		if err != nil {
			errs = append(errs, fmt.Errorf("asset %q (%s): %w", entry.Name, entry.Kind, err))
			continue
		}
		if clip, ok := value.(*Clip); ok {
			clips[caser.String(entry.Name)] = clip
		}
		slots[i] = &Decoded{Name: entry.Name, Kind: entry.Kind, Value: value}
	}

	for i, entry := range entries {
		if !isGroup(entry.Kind) {
			continue
		}
		value, err := decodeGroup(archive, i, func(name string) (*Clip, bool) {
			clip, ok := clips[caser.String(name)]
			return clip, ok
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("asset %q (%s): %w", entry.Name, entry.Kind, err))
			continue
		}
		slots[i] = &Decoded{Name: entry.Name, Kind: entry.Kind, Value: value}
	}

	assets = make([]Decoded, 0, len(entries))
	for _, slot := range slots {
		if slot != nil {
			assets = append(assets, *slot)
		}
	}
	return assets, errs
}

func isGroup(kind string) bool {
	return kind == KindSfx || kind == KindLoop || kind == KindMusic
}

func decodeLeaf(archive *bundle.Archive, index int) (any, error) {
	entry := archive.Entries[index]
	data, err := archive.Extract(index)
	if err != nil {
		return nil, err
	}
	switch entry.Kind {
	case KindClip:
		return decodeClip(entry.Name, data)
	case KindText:
		if !utf8.Valid(data) {
			return nil, errors.New("text is not valid UTF-8")
		}
		return &Text{Name: entry.Name, Body: string(data)}, nil
	case KindRaw, "":
		return &Blob{Name: entry.Name, Data: data}, nil
	default:
		return nil, fmt.Errorf("unknown asset kind %q", entry.Kind)
	}
}

func decodeGroup(archive *bundle.Archive, index int, lookup func(string) (*Clip, bool)) (any, error) {
	entry := archive.Entries[index]
	data, err := archive.Extract(index)
	if err != nil {
		return nil, err
	}
	var definition groupDefinition
	if err := codec.Unmarshal(data, &definition); err != nil {
		return nil, fmt.Errorf("decoding group definition: %w", err)
	}
	if err := definition.validate(entry.Kind); err != nil {
		return nil, err
	}

	clips := make([]*Clip, 0, len(definition.Clips))
	for _, name := range definition.Clips {
		clip, ok := lookup(name)
		if !ok {
			return nil, fmt.Errorf("clip %q is not in the bundle", name)
		}
		clips = append(clips, clip)
	}

	volume := rangeOr(definition.Volume, Range{Min: 1, Max: 1})
	pitch := rangeOr(definition.Pitch, Range{Min: 1, Max: 1})

	switch entry.Kind {
	case KindSfx:
		return &SfxGroup{
			Name:     entry.Name,
			Clips:    clips,
			Volume:   volume,
			Pitch:    pitch,
			Priority: definition.Priority,
		}, nil
	case KindLoop:
		return &LoopGroup{
			Name:     entry.Name,
			Clip:     clips[0],
			Volume:   volume,
			Pitch:    pitch,
			Priority: definition.Priority,
		}, nil
	default:
		return &MusicGroup{Name: entry.Name, Tracks: clips, Volume: volume.Min}, nil
	}
}

func rangeOr(r *Range, fallback Range) Range {
	if r == nil {
		return fallback
	}
	return *r
}

func decodeClip(name string, data []byte) (*Clip, error) {
	streamer, format, err := wav.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding wav: %w", err)
	}
	defer streamer.Close()

	buffer := beep.NewBuffer(format)
	buffer.Append(streamer)
	if err := streamer.Err(); err != nil {
		return nil, fmt.Errorf("reading wav samples: %w", err)
	}
	return &Clip{Name: name, Format: format, Buffer: buffer}, nil
}
