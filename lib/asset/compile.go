// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package asset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/tidwall/jsonc"

	"github.com/bureau-foundation/bunny/lib/codec"
)

// groupDefinition is the authored and stored form of sfx, loop and
// music groups.
//
//	{
//	  // Clip names in the same bundle.
//	  "clips": ["Laser1", "Laser2"],
//	  "volume": {"min": 0.8, "max": 1.0},
//	  "pitch": {"min": 0.95, "max": 1.05},
//	  "priority": 128,
//	}
type groupDefinition struct {
	Clips    []string `json:"clips" cbor:"clips"`
	Volume   *Range   `json:"volume,omitempty" cbor:"volume,omitempty"`
	Pitch    *Range   `json:"pitch,omitempty" cbor:"pitch,omitempty"`
	Priority int      `json:"priority,omitempty" cbor:"priority,omitempty"`
}

func (d *groupDefinition) validate(kind string) error {
	var errs []error
	if len(d.Clips) == 0 {
		errs = append(errs, errors.New("clips must name at least one clip"))
	}
	if kind == KindLoop && len(d.Clips) > 1 {
		errs = append(errs, fmt.Errorf("a loop group plays one clip, got %d", len(d.Clips)))
	}
	for i, name := range d.Clips {
		if name == "" {
			errs = append(errs, fmt.Errorf("clips[%d] is empty", i))
		}
	}
	for label, r := range map[string]*Range{"volume": d.Volume, "pitch": d.Pitch} {
		if r == nil {
			continue
		}
		if r.Min < 0 || r.Max < r.Min {
			errs = append(errs, fmt.Errorf("%s range [%g, %g] is invalid", label, r.Min, r.Max))
		}
	}
	if d.Pitch != nil && d.Pitch.Min == 0 {
		errs = append(errs, errors.New("pitch minimum must be positive"))
	}
	return errors.Join(errs...)
}

// Compile converts an authored source file into the payload stored in
// a bundle for kind. Clips are checked to decode; groups are converted
// from JSONC to CBOR.
func Compile(kind string, source []byte) ([]byte, error) {
	switch kind {
	case KindClip:
		if _, err := decodeClip("", source); err != nil {
			return nil, err
		}
		return source, nil
	case KindSfx, KindLoop, KindMusic:
		var definition groupDefinition
		decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(source)))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&definition); err != nil {
			return nil, fmt.Errorf("parsing %s group: %w", kind, err)
		}
		if err := definition.validate(kind); err != nil {
			return nil, fmt.Errorf("invalid %s group: %w", kind, err)
		}
		return codec.Marshal(definition)
	case KindText:
		if !utf8.Valid(source) {
			return nil, errors.New("text asset is not valid UTF-8")
		}
		return source, nil
	case KindRaw:
		return source, nil
	default:
		return nil, fmt.Errorf("unknown asset kind %q", kind)
	}
}
