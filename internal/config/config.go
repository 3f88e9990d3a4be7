// Package config loads Think Spaces settings: defaults, then a TOML file,
// then THINKSPACES_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/thinkspaces/thinkspaces/observer"
	"github.com/thinkspaces/thinkspaces/provider/resolve"
)

// DefaultPath is read when no explicit path or THINKSPACES_CONFIG is given.
const DefaultPath = "thinkspaces.toml"

type Config struct {
	Server    ServerConfig                `toml:"server"`
	Database  DatabaseConfig              `toml:"database"`
	Executor  ExecutorConfig              `toml:"executor"`
	Providers map[string]resolve.Settings `toml:"providers"`
	Log       LogConfig                   `toml:"log"`
	Observer  ObserverConfig              `toml:"observer"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type DatabaseConfig struct {
	Driver string `toml:"driver"` // "sqlite" or "postgres"
	Path   string `toml:"path"`
	DSN    string `toml:"dsn"`
}

// ExecutorConfig bounds each provider call made by the interaction
// executor, on top of the provider's own HTTP timeout. Zero disables it.
type ExecutorConfig struct {
	Timeout time.Duration `toml:"timeout"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "console" or "json"
}

type ObserverConfig struct {
	Enabled bool                             `toml:"enabled"`
	Pricing map[string]observer.ModelPricing `toml:"pricing"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Server:    ServerConfig{Addr: ":8000"},
		Database:  DatabaseConfig{Driver: "sqlite", Path: "thinkspaces.db"},
		Executor:  ExecutorConfig{Timeout: 60 * time.Second},
		Providers: map[string]resolve.Settings{},
		Log:       LogConfig{Level: "info", Format: "console"},
	}
}

// Load reads config: defaults -> TOML file -> env vars (env wins).
// A missing file is not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("THINKSPACES_CONFIG")
	}
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}
	if cfg.Providers == nil {
		cfg.Providers = map[string]resolve.Settings{}
	}

	if v := os.Getenv("THINKSPACES_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("THINKSPACES_DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("THINKSPACES_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("THINKSPACES_DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("THINKSPACES_EXECUTOR_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("THINKSPACES_EXECUTOR_TIMEOUT: %w", err)
		}
		cfg.Executor.Timeout = d
	}
	if v := os.Getenv("THINKSPACES_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("THINKSPACES_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("THINKSPACES_OBSERVER_ENABLED"); v == "true" || v == "1" {
		cfg.Observer.Enabled = true
	}

	cfg.Database.Driver = strings.ToLower(cfg.Database.Driver)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings that cannot be started with.
func (c Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return errors.New("config: database.path is required for sqlite")
		}
	case "postgres":
		if c.Database.DSN == "" {
			return errors.New("config: database.dsn is required for postgres")
		}
	default:
		return fmt.Errorf("config: unknown database driver %q", c.Database.Driver)
	}
	if c.Executor.Timeout < 0 {
		return errors.New("config: executor.timeout must not be negative")
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	return nil
}
