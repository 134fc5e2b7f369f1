// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for bunny hosts
// and the bunny CLI.
//
// Configuration is loaded from a single file named by either the
// BUNNY_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There is no discovery and no search path. A host
// that runs without a file uses [Default].
//
// The file may carry environment-specific sections (development,
// staging, production) that override base values when
// [Config].Environment matches. Production defaults log JSON at info
// level and never skip sealed-bundle identity checks.
//
// ${VAR} and ${VAR:-default} patterns are expanded in path fields
// after loading. ${BUNNY_ROOT} refers to the configured root
// directory. No environment variable overrides a config value.
//
// Durations are strings in time.ParseDuration form ("16ms", "30s");
// [Config.Validate] rejects ones that do not parse.
//
// This package depends on no other bunny packages.
package config
