// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/holokit/internal/errs"
	"github.com/holomush/holokit/internal/store"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", "/xdg/data")
	t.Setenv(DatabaseURLEnv, "")
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(newFlags(t), "")
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, StoreFile, cfg.Store)
	assert.Equal(t, "/xdg/data/holokit", cfg.DataDir)
	assert.Equal(t, "/xdg/data/holokit/saves", cfg.SavesDir())
	assert.Equal(t, defaultMetricsAddr, cfg.MetricsAddr)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "log-format: text\ncontent: pack.yaml\nstore: memory\n")

	cfg, err := Load(newFlags(t), path)
	require.NoError(t, err)

	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "pack.yaml", cfg.Content)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, "info", cfg.LogLevel, "unset keys keep flag defaults")
}

func TestLoad_FlagsOverrideFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "log-format: text\nstore: memory\n")

	cfg, err := Load(newFlags(t, "--log-format=json", "--log-level=debug"), path)
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, StoreMemory, cfg.Store)
}

func TestLoad_DefaultConfigFile(t *testing.T) {
	isolate(t)
	dir := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "holokit")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log-level: warn\n"), 0o600))

	cfg, err := Load(newFlags(t), "")
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	isolate(t)

	_, err := Load(newFlags(t), filepath.Join(t.TempDir(), "missing.yaml"))

	errs.AssertCode(t, err, errs.CodeInvalidArgument)
}

func TestLoad_MalformedFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "log-format: [unclosed\n")

	_, err := Load(newFlags(t), path)

	errs.AssertCode(t, err, errs.CodeInvalidArgument)
}

func TestLoad_DatabaseURLSelectsPostgres(t *testing.T) {
	isolate(t)
	t.Setenv(DatabaseURLEnv, "postgres://localhost/holokit")

	cfg, err := Load(newFlags(t), "")
	require.NoError(t, err)

	assert.Equal(t, StorePostgres, cfg.Store)
	assert.Equal(t, "postgres://localhost/holokit", cfg.DatabaseURL)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_ExplicitStoreWinsOverDatabaseURL(t *testing.T) {
	isolate(t)
	t.Setenv(DatabaseURLEnv, "postgres://localhost/holokit")

	cfg, err := Load(newFlags(t, "--store=memory"), "")
	require.NoError(t, err)

	assert.Equal(t, StoreMemory, cfg.Store)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{LogFormat: "json", LogLevel: "info", Store: StoreMemory}
	}

	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, "log-format"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log-level"},
		{"unknown store", func(c *Config) { c.Store = "redis" }, "store"},
		{"postgres without url", func(c *Config) { c.Store = StorePostgres }, "database-url"},
		{"bad profile", func(c *Config) { c.Profile = "nope" }, "profile_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()

			errs.AssertCode(t, err, errs.CodeInvalidArgument)
			errs.AssertContext(t, err, "field", tt.wantField)
		})
	}

	cfg := valid()
	cfg.Profile = store.NewProfileID().String()
	assert.NoError(t, cfg.Validate())
}
