// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/bunny/lib/bunny"
	"github.com/bureau-foundation/bunny/lib/config"
	"github.com/bureau-foundation/bunny/lib/fetch"
	"github.com/bureau-foundation/bunny/lib/host"
	"github.com/bureau-foundation/bunny/lib/secret"
	"github.com/bureau-foundation/bunny/lib/tick"
)

// stack is a complete loader wired from configuration: HTTP and file
// fetching, the bundle parser and registry, and a tick scheduler.
type stack struct {
	basePath  string
	registry  *host.Registry
	parser    *host.Parser
	loader    *bunny.Loader
	scheduler *tick.Scheduler
	identity  *secret.Buffer
}

func newStack(cfg *config.Config, basePath string, logger *slog.Logger) (*stack, error) {
	if basePath == "" {
		basePath = cfg.Bundles.BasePath
	}

	var identity *secret.Buffer
	if cfg.Keys.IdentityFile != "" {
		var err error
		identity, err = secret.ReadFromPath(cfg.Keys.IdentityFile)
		if err != nil {
			return nil, fmt.Errorf("reading identity: %w", err)
		}
	}

	registry := host.NewRegistry()
	parser := host.NewParser(host.ParserConfig{
		Registry: registry,
		Identity: identity,
		Logger:   logger,
	})
	for _, path := range cfg.Bundles.Resident {
		if _, err := parser.LoadResident(path); err != nil {
			closeIdentity(identity)
			return nil, fmt.Errorf("loading resident bundle: %w", err)
		}
	}

	loader, err := bunny.NewLoader(bunny.Config{
		Fetcher: fetch.New(fetch.Config{
			Timeout:     cfg.FetchTimeout(),
			UserAgent:   cfg.Fetch.UserAgent,
			MaxBodySize: cfg.Fetch.MaxBundleSize,
			Logger:      logger,
		}),
		Parser:   parser,
		Registry: registry,
		Logger:   logger,
	})
	if err != nil {
		closeIdentity(identity)
		return nil, err
	}

	return &stack{
		basePath:  basePath,
		registry:  registry,
		parser:    parser,
		loader:    loader,
		scheduler: tick.New(logger),
		identity:  identity,
	}, nil
}

// Close tears down in-flight loads and releases the identity.
func (s *stack) Close() error {
	s.loader.Reset()
	return closeIdentity(s.identity)
}

func closeIdentity(identity *secret.Buffer) error {
	if identity == nil {
		return nil
	}
	return identity.Close()
}

// parseReferences parses "bundle/asset" arguments.
func parseReferences(args []string) ([]bunny.Reference[any], error) {
	if len(args) == 0 {
		return nil, errors.New("at least one bundle/asset reference is required")
	}
	references := make([]bunny.Reference[any], len(args))
	for i, arg := range args {
		if err := references[i].UnmarshalText([]byte(arg)); err != nil {
			return nil, fmt.Errorf("reference %q: %w", arg, err)
		}
	}
	return references, nil
}
