// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/bunny/lib/sealed"
)

// Manifest describes a bundle to build from files on disk:
//
//	name: sfx
//	compression: lz4
//	seal_to: [age1...]
//	assets:
//	  - name: Laser
//	    kind: clip
//	    path: laser.wav
//	  - name: LaserGroup
//	    kind: sfx
//	    path: laser.jsonc
//	    compression: zstd
type Manifest struct {
	Name string `yaml:"name"`

	// Compression is the default for assets that do not set their own.
	Compression CompressionTag `yaml:"compression"`

	// SealTo lists age recipients. When non-empty the finished bundle
	// is encrypted and only hosts holding a matching identity can
	// parse it.
	SealTo []string `yaml:"seal_to,omitempty"`

	Assets []ManifestAsset `yaml:"assets"`
}

// ManifestAsset is one source file.
type ManifestAsset struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`

	// Path is relative to the manifest's directory.
	Path string `yaml:"path"`

	Compression *CompressionTag `yaml:"compression,omitempty"`
}

// CompileFunc turns a source file into the payload stored for kind.
// lib/asset.Compile is the production implementation.
type CompileFunc func(kind string, source []byte) ([]byte, error)

// LoadManifest reads and validates a YAML manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	manifest := &Manifest{Compression: CompressionLZ4}
	if err := yaml.Unmarshal(data, manifest); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	if err := manifest.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", path, err)
	}
	return manifest, nil
}

// Validate checks the manifest for errors.
func (m *Manifest) Validate() error {
	var errs []error
	if m.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if len(m.Assets) == 0 {
		errs = append(errs, errors.New("at least one asset is required"))
	}
	seen := make(map[string]string, len(m.Assets))
	for i, asset := range m.Assets {
		if asset.Name == "" {
			errs = append(errs, fmt.Errorf("assets[%d]: name is required", i))
			continue
		}
		if asset.Path == "" {
			errs = append(errs, fmt.Errorf("asset %q: path is required", asset.Name))
		}
		if asset.Kind == "" {
			errs = append(errs, fmt.Errorf("asset %q: kind is required", asset.Name))
		}
		folded := strings.ToLower(asset.Name)
		if previous, ok := seen[folded]; ok {
			errs = append(errs, fmt.Errorf("asset %q duplicates %q (names are case-insensitive)", asset.Name, previous))
		}
		seen[folded] = asset.Name
	}
	for _, recipient := range m.SealTo {
		if err := sealed.ParsePublicKey(recipient); err != nil {
			errs = append(errs, fmt.Errorf("seal_to: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Build reads every asset relative to dir, compiles it, and returns
// the encoded bundle, sealed when SealTo is set.
func (m *Manifest) Build(dir string, compile CompileFunc) ([]byte, error) {
	builder := NewBuilder(m.Name)
	for _, asset := range m.Assets {
		source, err := os.ReadFile(filepath.Join(dir, asset.Path))
		if err != nil {
			return nil, fmt.Errorf("asset %q: %w", asset.Name, err)
		}
		content := source
		if compile != nil {
			content, err = compile(asset.Kind, source)
			if err != nil {
				return nil, fmt.Errorf("compiling asset %q: %w", asset.Name, err)
			}
		}
		tag := m.Compression
		if asset.Compression != nil {
			tag = *asset.Compression
		}
		if err := builder.Add(asset.Name, asset.Kind, content, tag); err != nil {
			return nil, err
		}
	}

	encoded, err := builder.Bytes()
	if err != nil {
		return nil, err
	}
	if len(m.SealTo) == 0 {
		return encoded, nil
	}
	ciphertext, err := sealed.Seal(encoded, m.SealTo)
	if err != nil {
		return nil, fmt.Errorf("sealing bundle %q: %w", m.Name, err)
	}
	return ciphertext, nil
}
