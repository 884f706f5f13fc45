// Package config reads the feedq TOML configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the whole feedq configuration.
type Config struct {
	Database    DatabaseConfig    `toml:"database"`
	Feed        FeedConfig        `toml:"feed"`
	Preferences PreferencesConfig `toml:"preferences"`
	Log         LogConfig         `toml:"log"`
}

// DatabaseConfig selects the feed database.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type string `toml:"type"`           // "sqlite" (default) or "postgres"
	Path string `toml:"path,omitempty"` // only used for type=sqlite; ":memory:" is allowed
	DSN  string `toml:"dsn,omitempty"`  // only used for type=postgres
}

// FeedConfig bounds page sizes.
type FeedConfig struct {
	DefaultLimit int `toml:"default_limit"`
	MaxLimit     int `toml:"max_limit"`
}

// PreferencesConfig selects where hidden preferences are memoized.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type PreferencesConfig struct {
	Type      string   `toml:"type"`                 // "memory" (default), "redis" or "none"
	Size      int      `toml:"size,omitempty"`       // only used for type=memory
	RedisAddr string   `toml:"redis_addr,omitempty"` // only used for type=redis
	TTL       Duration `toml:"ttl"`
}

// LogConfig sets the log threshold.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn or error
}

// Duration is a time.Duration written as a string such as "5m".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Database:    DatabaseConfig{Type: "sqlite", Path: "feedq.db"},
		Feed:        FeedConfig{DefaultLimit: 50, MaxLimit: 200},
		Preferences: PreferencesConfig{Type: "memory", Size: 1024, TTL: Duration{5 * time.Minute}},
		Log:         LogConfig{Level: "info"},
	}
}

// Read decodes a Config from r on top of the defaults and validates it.
func Read(r io.Reader) (*Config, error) {
	cfg := Default()
	if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Write encodes cfg to w.
func Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from path. A missing file yields the defaults.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	cfg, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the tagged unions carry the fields their type needs.
func (c *Config) Validate() error {
	switch c.Database.Type {
	case "sqlite":
		if c.Database.Path == "" {
			return errors.New("database.path is required for type sqlite")
		}
	case "postgres":
		if c.Database.DSN == "" {
			return errors.New("database.dsn is required for type postgres")
		}
	default:
		return fmt.Errorf("unknown database type %q", c.Database.Type)
	}

	if c.Feed.DefaultLimit <= 0 || c.Feed.MaxLimit <= 0 {
		return errors.New("feed limits must be positive")
	}
	if c.Feed.DefaultLimit > c.Feed.MaxLimit {
		return fmt.Errorf("feed.default_limit %d exceeds feed.max_limit %d", c.Feed.DefaultLimit, c.Feed.MaxLimit)
	}

	switch c.Preferences.Type {
	case "none":
	case "memory":
		if c.Preferences.Size <= 0 {
			return errors.New("preferences.size must be positive for type memory")
		}
	case "redis":
		if c.Preferences.RedisAddr == "" {
			return errors.New("preferences.redis_addr is required for type redis")
		}
	default:
		return fmt.Errorf("unknown preferences type %q", c.Preferences.Type)
	}
	if c.Preferences.TTL.Duration < 0 {
		return errors.New("preferences.ttl must not be negative")
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses the configured level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
