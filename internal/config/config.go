// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package config layers holokit settings: flag defaults, then the YAML config
// file, then flags set on the command line.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/holomush/holokit/internal/errs"
	"github.com/holomush/holokit/internal/logging"
	"github.com/holomush/holokit/internal/store"
	"github.com/holomush/holokit/internal/xdg"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StorePostgres = "postgres"
)

// DatabaseURLEnv names the environment variable holding the postgres DSN.
const DatabaseURLEnv = "DATABASE_URL"

const (
	defaultLogFormat   = "json"
	defaultLogLevel    = "info"
	defaultMetricsAddr = "127.0.0.1:9110"
)

// Config holds the resolved settings.
type Config struct {
	LogFormat   string `koanf:"log-format"`
	LogLevel    string `koanf:"log-level"`
	Content     string `koanf:"content"`
	Profile     string `koanf:"profile"`
	Store       string `koanf:"store"`
	DataDir     string `koanf:"data-dir"`
	MetricsAddr string `koanf:"metrics-addr"`
	DatabaseURL string `koanf:"database-url"`
}

// RegisterFlags adds the config flags to fs. Their defaults are the lowest
// configuration layer.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("log-format", defaultLogFormat, "log format (json or text)")
	fs.String("log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	fs.String("content", "", "content pack YAML file")
	fs.String("profile", "", "profile ULID (default: new profile)")
	fs.String("store", "", "save store: memory, file or postgres (default: postgres when "+DatabaseURLEnv+" is set, else file)")
	fs.String("data-dir", "", "data directory (default: XDG_DATA_HOME/holokit)")
	fs.String("metrics-addr", defaultMetricsAddr, "metrics/health HTTP address (empty = disabled)")
	fs.String("database-url", "", "postgres connection string (default: $"+DatabaseURLEnv+")")
}

// Load resolves the configuration. path may be empty, in which case the
// default XDG config file is read if it exists. An explicit path must exist.
func Load(flags *pflag.FlagSet, path string) (*Config, error) {
	k := koanf.New(".")

	explicit := path != ""
	if !explicit {
		path = xdg.ConfigFile()
	}
	_, statErr := os.Stat(path)
	switch {
	case errors.Is(statErr, fs.ErrNotExist) && !explicit:
	case statErr != nil:
		return nil, oops.Code(errs.CodeInvalidArgument).With("path", path).Wrapf(statErr, "load config file")
	default:
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code(errs.CodeInvalidArgument).With("path", path).Wrapf(err, "load config file")
		}
	}

	// Unchanged flags only fill keys the file left unset.
	if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
		return nil, oops.Code(errs.CodeInvalidArgument).Wrapf(err, "load flags")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code(errs.CodeInvalidArgument).Wrapf(err, "decode config")
	}
	cfg.resolve()
	return &cfg, nil
}

func (c *Config) resolve() {
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv(DatabaseURLEnv)
	}
	if c.Store == "" {
		c.Store = StoreFile
		if c.DatabaseURL != "" {
			c.Store = StorePostgres
		}
	}
	if c.DataDir == "" {
		c.DataDir = xdg.DataDir()
	}
}

// SavesDir is where the file store keeps save games.
func (c *Config) SavesDir() string {
	return filepath.Join(c.DataDir, "saves")
}

// Validate checks the resolved configuration.
func (c *Config) Validate() error {
	if !slices.Contains([]string{"json", "text"}, c.LogFormat) {
		return errs.InvalidArgument("log-format", c.LogFormat, "log format must be json or text")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.Store {
	case StoreMemory, StoreFile:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errs.InvalidArgument("database-url", "", "postgres store requires --database-url or $%s", DatabaseURLEnv)
		}
	default:
		return errs.InvalidArgument("store", c.Store, "unknown store %q", c.Store)
	}
	if c.Profile != "" {
		if _, err := store.ParseProfileID(c.Profile); err != nil {
			return err
		}
	}
	return nil
}
