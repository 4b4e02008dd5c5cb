// Package config resolves explorer configuration from a TOML file,
// environment variables and defaults. Precedence, lowest to highest:
// defaults, config file, environment. Command-line flags are applied on
// top by the CLI.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config holds the full explorer configuration.
type Config struct {
	Host      string `toml:"host"`
	Port      int    `toml:"port"`
	DataDir   string `toml:"data_dir"`
	StaticDir string `toml:"static_dir"`

	LogLevel  string `toml:"log_level"`
	LogPretty bool   `toml:"log_pretty"`

	// SearchLimit caps the number of hits returned by /api/search.
	SearchLimit int `toml:"search_limit"`

	// Watch enables the data directory watcher; DebounceMS is the quiet
	// period before a change triggers a reload.
	Watch      bool `toml:"watch"`
	DebounceMS int  `toml:"debounce_ms"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Host:        "127.0.0.1",
		Port:        8888,
		DataDir:     "data",
		StaticDir:   "",
		LogLevel:    "info",
		LogPretty:   false,
		SearchLimit: 100,
		Watch:       true,
		DebounceMS:  500,
	}
}

// Load resolves configuration. When path is empty no file is read; a
// missing file at an explicit path is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("config file %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overlays CHAT_EXPLORER_* environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv("CHAT_EXPLORER_HOST"); v != "" {
		c.Host = v
	}
	if v := os.Getenv("CHAT_EXPLORER_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Port = n
		}
	}
	if v := os.Getenv("CHAT_EXPLORER_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("CHAT_EXPLORER_STATIC_DIR"); v != "" {
		c.StaticDir = v
	}
	if v := os.Getenv("CHAT_EXPLORER_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Validate checks ranges that would otherwise surface as obscure runtime
// failures.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	if c.SearchLimit <= 0 {
		return fmt.Errorf("search_limit must be positive: %d", c.SearchLimit)
	}
	if c.DebounceMS < 0 {
		return fmt.Errorf("debounce_ms must not be negative: %d", c.DebounceMS)
	}
	return nil
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
