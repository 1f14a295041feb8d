/*
	Copyright 2025 Google Inc.
	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at
		https://www.apache.org/licenses/LICENSE-2.0
	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

// Package config holds the server configuration of barviz, read from a YAML
// file and overridden by command-line flags.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config configures a barviz server.
type Config struct {
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`
	// DatasetRoot is the directory CSV datasets are served from.
	DatasetRoot string `yaml:"dataset_root"`
	// ResourceRoot is the directory client resources are served from, if any.
	ResourceRoot string `yaml:"resource_root"`
	// CacheSize is how many parsed datasets are kept in memory.
	CacheSize int `yaml:"cache_size"`
	// SQLitePath is the database visual properties are persisted to.  If
	// empty, they are kept in memory.
	SQLitePath string `yaml:"sqlite_path"`
	// SessionTTL is how long an idle session lives.
	SessionTTL time.Duration `yaml:"session_ttl"`
	// SettingsFile holds the default visual settings, as YAML.
	SettingsFile string `yaml:"settings_file"`
	LogLevel     string `yaml:"log_level"`
	// LogJSON selects JSON log output over text.
	LogJSON bool `yaml:"log_json"`
}

// Default returns the default Config.
func Default() *Config {
	return &Config{
		Address:     "localhost",
		Port:        7410,
		DatasetRoot: ".",
		CacheSize:   10,
		SessionTTL:  30 * time.Minute,
		LogLevel:    "info",
	}
}

// Load reads YAML configuration from r over the defaults.
func Load(r io.Reader) (*Config, error) {
	c := Default()
	if err := yaml.NewDecoder(r).Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return c, nil
}

// LoadFile reads YAML configuration from the file at path over the defaults.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// registerFlags binds the receiver's fields to flags in fs, with the current
// values as defaults.
func (c *Config) registerFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.Address, "address", "a", c.Address, "Server address to bind")
	fs.IntVarP(&c.Port, "port", "p", c.Port, "Server port to bind")
	fs.StringVarP(&c.DatasetRoot, "dataset-root", "d", c.DatasetRoot, "The root path for visualizable CSV datasets")
	fs.StringVar(&c.ResourceRoot, "resource-root", c.ResourceRoot, "The path to the client resources")
	fs.IntVar(&c.CacheSize, "cache-size", c.CacheSize, "How many parsed datasets to keep in memory")
	fs.StringVar(&c.SQLitePath, "sqlite-path", c.SQLitePath, "SQLite database for visual properties; in-memory if empty")
	fs.DurationVar(&c.SessionTTL, "session-ttl", c.SessionTTL, "How long an idle session lives")
	fs.StringVar(&c.SettingsFile, "settings-file", c.SettingsFile, "YAML file of default visual settings")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Minimum log level: debug, info, warn or error")
	fs.BoolVar(&c.LogJSON, "log-json", c.LogJSON, "Log as JSON")
}

// Parse builds a Config from command-line arguments.  If --config names a
// YAML file, it is read first; flags set in args override it.
func Parse(name string, args []string) (*Config, error) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	configPath := fs.StringP("config", "c", "", "YAML configuration file")
	c := Default()
	c.registerFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *configPath != "" {
		loaded, err := LoadFile(*configPath)
		if err != nil {
			return nil, err
		}
		overrides := pflag.NewFlagSet(name, pflag.ContinueOnError)
		loaded.registerFlags(overrides)
		var setErr error
		fs.Visit(func(f *pflag.Flag) {
			if f.Name == "config" || setErr != nil {
				return
			}
			setErr = overrides.Set(f.Name, f.Value.String())
		})
		if setErr != nil {
			return nil, setErr
		}
		c = loaded
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks that the receiver's values are usable.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d is out of range", c.Port)
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("cache size must be positive, got %d", c.CacheSize)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session TTL must be positive, got %s", c.SessionTTL)
	}
	if _, err := c.level(); err != nil {
		return err
	}
	return nil
}

// Addr returns the address to listen on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Address, c.Port)
}

func (c *Config) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return level, fmt.Errorf("bad log level '%s': %w", c.LogLevel, err)
	}
	return level, nil
}

// NewLogger returns a logger writing to w at the receiver's level.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := c.level()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
