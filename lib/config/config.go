// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local iteration against `bunny serve`.
	Development Environment = "development"
	// Staging is for testing against the staging CDN.
	Staging Environment = "staging"
	// Production is for shipped builds.
	Production Environment = "production"
)

// Config is the master configuration for a bunny host.
type Config struct {
	// Environment identifies the deployment type.
	Environment Environment `yaml:"environment"`

	// Root is the base directory for bunny data. Other paths may
	// refer to it as ${BUNNY_ROOT}.
	Root string `yaml:"root"`

	Bundles   BundlesConfig   `yaml:"bundles"`
	Fetch     FetchConfig     `yaml:"fetch"`
	Keys      KeysConfig      `yaml:"keys"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Audio     AudioConfig     `yaml:"audio"`
	Serve     ServeConfig     `yaml:"serve"`
	Log       LogConfig       `yaml:"log"`

	// Per-environment overrides, applied after the base config is
	// loaded.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains the sections that can be overridden per
// environment.
type ConfigOverrides struct {
	Bundles *BundlesConfig `yaml:"bundles,omitempty"`
	Fetch   *FetchConfig   `yaml:"fetch,omitempty"`
	Log     *LogConfig     `yaml:"log,omitempty"`
	Audio   *AudioConfig   `yaml:"audio,omitempty"`
}

// BundlesConfig locates bundles.
type BundlesConfig struct {
	// BasePath is joined with a bundle name to form its fetch URL.
	// Either an http(s) URL or a local directory.
	BasePath string `yaml:"base_path"`

	// Resident lists bundle files loaded into the host registry at
	// startup. Requests for them decode in place without a fetch.
	Resident []string `yaml:"resident,omitempty"`
}

// FetchConfig configures the HTTP fetcher.
type FetchConfig struct {
	// Timeout bounds a whole bundle download. Default: 60s.
	Timeout string `yaml:"timeout"`

	// MaxBundleSize is the largest response body accepted, in bytes.
	// Default: 512 MiB.
	MaxBundleSize int64 `yaml:"max_bundle_size"`

	// UserAgent overrides the default "bunny/<version>".
	UserAgent string `yaml:"user_agent"`
}

// KeysConfig configures sealed bundle decryption.
type KeysConfig struct {
	// IdentityFile holds the age identity (AGE-SECRET-KEY-1...) used
	// to unseal bundles. Empty means sealed bundles fail to parse.
	IdentityFile string `yaml:"identity_file"`
}

// SchedulerConfig configures the cooperative tick loop.
type SchedulerConfig struct {
	// TickRate is the interval between polls. Default: 16ms.
	TickRate string `yaml:"tick_rate"`
}

// AudioConfig configures the audio helpers.
type AudioConfig struct {
	// Disabled turns every play helper into a no-op.
	Disabled bool `yaml:"disabled"`

	// SampleRate of the output mixer. Default: 44100.
	SampleRate int `yaml:"sample_rate"`
}

// ServeConfig configures `bunny serve`.
type ServeConfig struct {
	// Listen is the TCP address. Default: 127.0.0.1:8765.
	Listen string `yaml:"listen"`

	// Directory is the bundle directory to serve.
	Directory string `yaml:"directory"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`

	// Format is auto, text or json. Auto picks text on a terminal.
	Format string `yaml:"format"`
}

// Default returns the default configuration, used as the base before
// a config file is merged over it.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultRoot := filepath.Join(homeDir, ".cache", "bunny")

	return &Config{
		Environment: Development,
		Root:        defaultRoot,
		Bundles: BundlesConfig{
			BasePath: "http://127.0.0.1:8765/bundles",
		},
		Fetch: FetchConfig{
			Timeout:       "60s",
			MaxBundleSize: 512 << 20,
		},
		Scheduler: SchedulerConfig{
			TickRate: "16ms",
		},
		Audio: AudioConfig{
			SampleRate: 44100,
		},
		Serve: ServeConfig{
			Listen:    "127.0.0.1:8765",
			Directory: filepath.Join(defaultRoot, "bundles"),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Load loads configuration from the file named by BUNNY_CONFIG.
func Load() (*Config, error) {
	configPath := os.Getenv("BUNNY_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("BUNNY_CONFIG environment variable not set; " +
			"set it to the path of your bunny.yaml config file, or use --config flag")
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()

	return cfg, nil
}

func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
		if overrides == nil {
			overrides = &ConfigOverrides{
				Log: &LogConfig{Level: "info", Format: "json"},
			}
		}
	}

	if overrides == nil {
		return
	}

	if overrides.Bundles != nil {
		if overrides.Bundles.BasePath != "" {
			c.Bundles.BasePath = overrides.Bundles.BasePath
		}
		if len(overrides.Bundles.Resident) > 0 {
			c.Bundles.Resident = overrides.Bundles.Resident
		}
	}

	if overrides.Fetch != nil {
		if overrides.Fetch.Timeout != "" {
			c.Fetch.Timeout = overrides.Fetch.Timeout
		}
		if overrides.Fetch.MaxBundleSize != 0 {
			c.Fetch.MaxBundleSize = overrides.Fetch.MaxBundleSize
		}
		if overrides.Fetch.UserAgent != "" {
			c.Fetch.UserAgent = overrides.Fetch.UserAgent
		}
	}

	if overrides.Log != nil {
		if overrides.Log.Level != "" {
			c.Log.Level = overrides.Log.Level
		}
		if overrides.Log.Format != "" {
			c.Log.Format = overrides.Log.Format
		}
	}

	if overrides.Audio != nil {
		// Disabled is a bool, so an audio override always applies it.
		c.Audio.Disabled = overrides.Audio.Disabled
		if overrides.Audio.SampleRate != 0 {
			c.Audio.SampleRate = overrides.Audio.SampleRate
		}
	}
}

func (c *Config) expandVariables() {
	vars := map[string]string{
		"BUNNY_ROOT": c.Root,
		"HOME":       os.Getenv("HOME"),
	}

	c.Root = expandVars(c.Root, vars)
	vars["BUNNY_ROOT"] = c.Root

	c.Bundles.BasePath = expandVars(c.Bundles.BasePath, vars)
	for i, path := range c.Bundles.Resident {
		c.Bundles.Resident[i] = expandVars(path, vars)
	}
	c.Keys.IdentityFile = expandVars(c.Keys.IdentityFile, vars)
	c.Serve.Directory = expandVars(c.Serve.Directory, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default}, preferring vars over
// the process environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}
	if c.Bundles.BasePath == "" {
		errs = append(errs, errors.New("bundles.base_path is required"))
	}
	if _, err := parsePositiveDuration(c.Fetch.Timeout); err != nil {
		errs = append(errs, fmt.Errorf("fetch.timeout: %w", err))
	}
	if c.Fetch.MaxBundleSize <= 0 {
		errs = append(errs, fmt.Errorf("fetch.max_bundle_size must be positive, got %d", c.Fetch.MaxBundleSize))
	}
	if _, err := parsePositiveDuration(c.Scheduler.TickRate); err != nil {
		errs = append(errs, fmt.Errorf("scheduler.tick_rate: %w", err))
	}
	if c.Audio.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("audio.sample_rate must be positive, got %d", c.Audio.SampleRate))
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	formats := []string{"auto", "text", "json"}
	if !contains(formats, c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format must be one of: %v", formats))
	}

	return errors.Join(errs...)
}

// FetchTimeout returns fetch.timeout parsed. Call after Validate.
func (c *Config) FetchTimeout() time.Duration {
	duration, _ := parsePositiveDuration(c.Fetch.Timeout)
	return duration
}

// TickRate returns scheduler.tick_rate parsed. Call after Validate.
func (c *Config) TickRate() time.Duration {
	duration, _ := parsePositiveDuration(c.Scheduler.TickRate)
	return duration
}

// LogLevel returns log.level as an slog level. Call after Validate.
func (c *Config) LogLevel() slog.Level {
	level, _ := parseLevel(c.Log.Level)
	return level
}

func parsePositiveDuration(text string) (time.Duration, error) {
	duration, err := time.ParseDuration(text)
	if err != nil {
		return 0, err
	}
	if duration <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", text)
	}
	return duration, nil
}

func parseLevel(text string) (slog.Level, error) {
	switch strings.ToLower(text) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown level %q (want debug, info, warn or error)", text)
	}
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
