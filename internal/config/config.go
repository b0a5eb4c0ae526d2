// Package config resolves service configuration from config.toml, an optional
// environment overlay, and BESTIARY_* environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/bestiary/pkg/cache"
	"github.com/JaimeStill/bestiary/pkg/database"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvBestiaryEnv             = "BESTIARY_ENV"
	EnvBestiaryAutoMigrate     = "BESTIARY_AUTO_MIGRATE"
	EnvBestiaryShutdownTimeout = "BESTIARY_SHUTDOWN_TIMEOUT"
	EnvBestiaryVersion         = "BESTIARY_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "BESTIARY_DB_HOST",
	Port:            "BESTIARY_DB_PORT",
	Name:            "BESTIARY_DB_NAME",
	User:            "BESTIARY_DB_USER",
	Password:        "BESTIARY_DB_PASSWORD",
	SSLMode:         "BESTIARY_DB_SSL_MODE",
	MaxOpenConns:    "BESTIARY_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "BESTIARY_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "BESTIARY_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "BESTIARY_DB_CONN_TIMEOUT",
	PingAttempts:    "BESTIARY_DB_PING_ATTEMPTS",
	PingDelay:       "BESTIARY_DB_PING_DELAY",
}

var cacheEnv = &cache.Env{
	Enabled:  "BESTIARY_CACHE_ENABLED",
	Addr:     "BESTIARY_CACHE_ADDR",
	Password: "BESTIARY_CACHE_PASSWORD",
	DB:       "BESTIARY_CACHE_DB",
	Prefix:   "BESTIARY_CACHE_PREFIX",
	TTL:      "BESTIARY_CACHE_TTL",
}

// Config is the root configuration for the Bestiary service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Cache           cache.Config    `toml:"cache"`
	API             APIConfig       `toml:"api"`
	AutoMigrate     bool            `toml:"auto_migrate"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the BESTIARY_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvBestiaryEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
// An overlay can enable auto_migrate but never disable it.
func (c *Config) Merge(overlay *Config) {
	if overlay.AutoMigrate {
		c.AutoMigrate = true
	}
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Cache.Merge(&overlay.Cache)
	c.API.Merge(&overlay.API)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Cache.Finalize(cacheEnv); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvBestiaryAutoMigrate); v != "" {
		if migrate, err := strconv.ParseBool(v); err == nil {
			c.AutoMigrate = migrate
		}
	}
	if v := os.Getenv(EnvBestiaryShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvBestiaryVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvBestiaryEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
