package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type ServerConfig struct {
	Port int    `toml:"port"`
	Env  string `toml:"env"` // "development" or "production"
}

type StorageConfig struct {
	Driver         string `toml:"driver"` // "bolt", "file" or "redis"
	DataDir        string `toml:"data_dir"`
	SettingsPrefix string `toml:"settings_prefix"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type SessionConfig struct {
	Expiration   Duration `toml:"expiration"`
	CookieSecure bool     `toml:"cookie_secure"` // Set to true in production with HTTPS
}

type JWTConfig struct {
	Secret string   `toml:"secret"` // For JWT signing
	TTL    Duration `toml:"ttl"`
}

type SecurityConfig struct {
	CSRF       bool     `toml:"csrf"`
	RateLimit  int      `toml:"rate_limit"`  // requests per window and IP
	RateWindow Duration `toml:"rate_window"` // window length
}

type LogConfig struct {
	Level string `toml:"level"`
}

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Storage  StorageConfig  `toml:"storage"`
	Redis    RedisConfig    `toml:"redis"`
	Session  SessionConfig  `toml:"session"`
	JWT      JWTConfig      `toml:"jwt"`
	Security SecurityConfig `toml:"security"`
	Log      LogConfig      `toml:"log"`
}

// Duration lets TOML files write durations as "24h" or "90s"
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

const devJWTSecret = "klar-development-secret"

// Default returns the configuration used when no file overrides it
func Default() *Config {
	var config Config

	config.Server.Port = 3000
	config.Server.Env = "development"

	config.Storage.Driver = "bolt"
	config.Storage.DataDir = "./data"
	config.Storage.SettingsPrefix = "klar_settings_"

	config.Redis.Addr = "localhost:6379"

	config.Session.Expiration = Duration{24 * time.Hour}

	config.JWT.Secret = devJWTSecret
	config.JWT.TTL = Duration{24 * time.Hour}

	config.Security.CSRF = true
	config.Security.RateLimit = 100
	config.Security.RateWindow = Duration{time.Minute}

	config.Log.Level = "info"

	return &config
}

// LoadConfig decodes filepath over the defaults. A missing file is not an
// error: the defaults are returned as they are.
func LoadConfig(filepath string) (*Config, error) {
	config := Default()

	// Load config file
	if _, err := toml.DecodeFile(filepath, config); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to decode %s: %w", filepath, err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Validate checks the values a server cannot start without
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "bolt", "file", "redis":
	default:
		return fmt.Errorf("unsupported storage driver %q", c.Storage.Driver)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt secret is required")
	}
	if c.IsProduction() && c.JWT.Secret == devJWTSecret {
		return fmt.Errorf("jwt secret must be changed in production")
	}

	if c.Security.RateLimit <= 0 || c.Security.RateWindow.Duration <= 0 {
		return fmt.Errorf("rate limit and window must be positive")
	}

	return nil
}
