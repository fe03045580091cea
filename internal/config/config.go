// Copyright (c) 2025-2026, the WikiPrism contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package config loads wikiprism's TOML configuration via viper, with
// environment variable overrides and optional hot-reload on file change.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/giancosta86/wikiprism/pkg/debounce"
)

// EnvPrefix is the prefix every environment variable override uses, with
// "__" separating nested keys, e.g. WIKIPRISM__LOGLEVEL overrides
// logLevel and WIKIPRISM__HTTPMONITOR__APIKEY overrides httpMonitor.apiKey.
const EnvPrefix = "WIKIPRISM"

// Config holds every setting a wikiprism run or server needs.
type Config struct {
	v          *viper.Viper
	configPath string

	onChange func(*Config)
	debounce *debounce.Debouncer
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("databasePath", "")
	v.SetDefault("batchSize", 32)
	v.SetDefault("workerCount", 0) // 0 means GOMAXPROCS
	v.SetDefault("wikiSourcePath", "")

	v.SetDefault("logLevel", "INFO")
	v.SetDefault("logPath", "")
	v.SetDefault("logMaxSize", 50)
	v.SetDefault("logMaxBackups", 3)

	v.SetDefault("httpMonitor.enabled", false)
	v.SetDefault("httpMonitor.address", "127.0.0.1:8899")
	v.SetDefault("httpMonitor.apiKey", "")
}

// New loads configuration from configPath, applying WIKIPRISM__-prefixed
// environment variable overrides on top of it.
func New(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	// viper joins prefix and key with a single "_", so the extra "_" here
	// yields the WIKIPRISM__ prefix.
	v.SetEnvPrefix(EnvPrefix + "_")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", configPath, err)
	}

	return &Config{v: v, configPath: configPath}, nil
}

// GetDatabasePath returns the configured dictionary database path,
// defaulting to wikiprism.db next to the config file when unset, so
// existing configs that predate databasePath keep working unchanged.
func (c *Config) GetDatabasePath() string {
	if path := c.v.GetString("databasePath"); path != "" {
		return path
	}
	return filepath.Join(filepath.Dir(c.configPath), "wikiprism.db")
}

// GetBatchSize returns the configured batchSize. The pipeline orchestrator
// does not read it: it batches pages by pipeline.DefaultBatchSize.
func (c *Config) GetBatchSize() int {
	return c.v.GetInt("batchSize")
}

// GetWorkerCount returns the configured worker pool size; 0 means the
// caller should default to runtime.GOMAXPROCS.
func (c *Config) GetWorkerCount() int {
	return c.v.GetInt("workerCount")
}

// GetWikiSourcePath returns the configured path to the wiki dump to
// extract from.
func (c *Config) GetWikiSourcePath() string {
	return c.v.GetString("wikiSourcePath")
}

// GetLogLevel returns the configured zerolog level name.
func (c *Config) GetLogLevel() string {
	return c.v.GetString("logLevel")
}

// GetLogPath returns the configured log file path, empty meaning stdout.
func (c *Config) GetLogPath() string {
	return c.v.GetString("logPath")
}

// GetLogMaxSize returns the configured max log file size in megabytes
// before lumberjack rotates it.
func (c *Config) GetLogMaxSize() int {
	return c.v.GetInt("logMaxSize")
}

// GetLogMaxBackups returns how many rotated log files lumberjack retains.
func (c *Config) GetLogMaxBackups() int {
	return c.v.GetInt("logMaxBackups")
}

// HTTPMonitorEnabled reports whether the optional HTTP progress/query
// monitor should be started.
func (c *Config) HTTPMonitorEnabled() bool {
	return c.v.GetBool("httpMonitor.enabled")
}

// GetHTTPMonitorAddress returns the address the HTTP monitor listens on.
func (c *Config) GetHTTPMonitorAddress() string {
	return c.v.GetString("httpMonitor.address")
}

// GetHTTPMonitorAPIKey returns the bearer key the HTTP monitor requires.
func (c *Config) GetHTTPMonitorAPIKey() string {
	return c.v.GetString("httpMonitor.apiKey")
}

// SetLogSettings rewrites the logLevel, logPath, logMaxSize and
// logMaxBackups keys in the config file on disk, in place, preserving
// every other key, comment and the surrounding section ordering. It is
// the persistence half of the `wikiprism config set-log` command: the
// file is what WatchAndReload (and the next process start) will read
// back, so this is the only supported way to change logging settings
// without hand-editing the TOML. A key that appears nowhere in the file,
// not even commented out, is not added to it.
func (c *Config) SetLogSettings(logLevel string, logPath string, maxSize int, maxBackups int) error {
	content, err := os.ReadFile(c.configPath)
	if err != nil {
		return fmt.Errorf("config: reading %s: %w", c.configPath, err)
	}

	updated := updateLogSettingsInTOML(string(content), logLevel, logPath, maxSize, maxBackups)

	if err := os.WriteFile(c.configPath, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("config: writing %s: %w", c.configPath, err)
	}

	c.v.Set("logLevel", logLevel)
	c.v.Set("logPath", logPath)
	c.v.Set("logMaxSize", maxSize)
	c.v.Set("logMaxBackups", maxBackups)

	return nil
}

// WatchAndReload starts watching the config file for changes, debouncing
// rapid successive writes (editors often write a file more than once per
// save) before calling onChange with the reloaded Config. It returns a
// stop function.
func (c *Config) WatchAndReload(onChange func(*Config)) (stop func(), err error) {
	c.onChange = onChange
	c.debounce = debounce.New(300 * time.Millisecond)

	c.v.OnConfigChange(func(fsnotify.Event) {
		c.debounce.Do(func() {
			reloaded, err := New(c.configPath)
			if err != nil {
				return
			}
			c.onChange(reloaded)
		})
	})
	c.v.WatchConfig()

	return func() { c.debounce.Stop() }, nil
}
