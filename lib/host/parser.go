// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package host

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bureau-foundation/bunny/lib/bundle"
	"github.com/bureau-foundation/bunny/lib/bunny"
	"github.com/bureau-foundation/bunny/lib/sealed"
	"github.com/bureau-foundation/bunny/lib/secret"
)

// ErrNoIdentity is returned for a sealed bundle when the parser has no
// identity to open it with.
var ErrNoIdentity = errors.New("bundle is sealed and no identity is configured")

// ParserConfig configures a Parser.
type ParserConfig struct {
	// Registry receives every parsed bundle. Nil skips registration.
	Registry *Registry

	// Identity is the age identity for sealed bundles. Nil means
	// sealed bundles fail to parse. The parser does not take
	// ownership; the caller closes it.
	Identity *secret.Buffer

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Parser implements bunny.Parser over the bunny container format.
type Parser struct {
	registry *Registry
	identity *secret.Buffer
	logger   *slog.Logger
}

// NewParser creates a parser.
func NewParser(config ParserConfig) *Parser {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Parser{
		registry: config.Registry,
		identity: config.Identity,
		logger:   config.Logger,
	}
}

// Parse implements bunny.Parser.
func (p *Parser) Parse(name string, data []byte) (bunny.Bundle, error) {
	parsed, err := p.parse(name, data)
	if err != nil {
		return nil, err
	}
	return parsed, nil
}

func (p *Parser) parse(name string, data []byte) (*Bundle, error) {
	if sealed.IsSealed(data) {
		if p.identity == nil {
			return nil, ErrNoIdentity
		}
		plaintext, err := sealed.Unseal(data, p.identity)
		if err != nil {
			return nil, fmt.Errorf("unsealing bundle %q: %w", name, err)
		}
		data = plaintext
	}

	archive, err := bundle.Read(data)
	if err != nil {
		return nil, err
	}

	parsed := &Bundle{name: name, archive: archive, logger: p.logger}
	if p.registry != nil {
		p.registry.Register(parsed)
	}
	p.logger.Debug("bundle parsed",
		"bundle", name,
		"assets", archive.Len(),
		"digest", archive.Digest.Short(),
	)
	return parsed, nil
}

// LoadResident parses the bundle file at path and registers it under
// its file name without extension.
func (p *Parser) LoadResident(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading resident bundle: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	parsed, err := p.parse(name, data)
	if err != nil {
		return nil, fmt.Errorf("parsing resident bundle %s: %w", path, err)
	}
	return parsed, nil
}
