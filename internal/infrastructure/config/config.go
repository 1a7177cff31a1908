package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// AppName names the data directory below the XDG data home
const AppName = "widget-shell"

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Widgets   WidgetConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port        string   `envconfig:"PORT" default:"8300"`
	Host        string   `envconfig:"HOST" default:"127.0.0.1"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS"`
}

// StoreConfig holds durable store configuration
type StoreConfig struct {
	Path            string        `envconfig:"STORE_PATH"`
	Timeout         time.Duration `envconfig:"STORE_TIMEOUT" default:"5s"`
	BreakerFailures uint32        `envconfig:"STORE_BREAKER_FAILURES" default:"5"`
	Ephemeral       bool          `envconfig:"STORE_EPHEMERAL" default:"false"`
}

// WidgetConfig holds widget discovery and boot configuration
type WidgetConfig struct {
	BasePath  string `envconfig:"WIDGET_BASE_PATH"`
	Autostart bool   `envconfig:"WIDGET_AUTOSTART" default:"true"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"50"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"100"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// LoadWithFile loads the environment and overlays the TOML file at path.
// Keys present in the file win over the environment.
func LoadWithFile(path string) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return cfg, nil
	}
	if err := cfg.overlayFile(path); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8300",
			Host: "127.0.0.1",
		},
		Store: StoreConfig{
			Path:            DefaultStorePath(),
			Timeout:         5 * time.Second,
			BreakerFailures: 5,
		},
		Widgets: WidgetConfig{
			Autostart: true,
		},
		Logging: LogConfig{
			Level: "info",
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 50,
			Burst:             100,
			Enabled:           true,
		},
	}
}

// DefaultStorePath returns $XDG_DATA_HOME/widget-shell/store.json
func DefaultStorePath() string {
	return filepath.Join(xdg.DataHome, AppName, "store.json")
}

// Addr returns host:port
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

func (c *Config) applyDefaults() {
	if c.Store.Path == "" {
		c.Store.Path = DefaultStorePath()
	}
}

// fileConfig mirrors Config for TOML. Pointers tell absent keys apart
// from zero values.
type fileConfig struct {
	Server struct {
		Port        *string  `toml:"port"`
		Host        *string  `toml:"host"`
		CORSOrigins []string `toml:"cors_origins"`
	} `toml:"server"`
	Store struct {
		Path            *string `toml:"path"`
		Timeout         *string `toml:"timeout"`
		BreakerFailures *uint32 `toml:"breaker_failures"`
		Ephemeral       *bool   `toml:"ephemeral"`
	} `toml:"store"`
	Widgets struct {
		BasePath  *string `toml:"base_path"`
		Autostart *bool   `toml:"autostart"`
	} `toml:"widgets"`
	Logging struct {
		Level       *string `toml:"level"`
		Development *bool   `toml:"development"`
	} `toml:"logging"`
	RateLimit struct {
		RequestsPerSecond *int  `toml:"rps"`
		Burst             *int  `toml:"burst"`
		Enabled           *bool `toml:"enabled"`
	} `toml:"rate_limit"`
}

func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	setString(&c.Server.Port, fc.Server.Port)
	setString(&c.Server.Host, fc.Server.Host)
	if fc.Server.CORSOrigins != nil {
		c.Server.CORSOrigins = fc.Server.CORSOrigins
	}

	setString(&c.Store.Path, fc.Store.Path)
	if fc.Store.Timeout != nil {
		d, err := time.ParseDuration(*fc.Store.Timeout)
		if err != nil {
			return fmt.Errorf("invalid store.timeout: %w", err)
		}
		c.Store.Timeout = d
	}
	if fc.Store.BreakerFailures != nil {
		c.Store.BreakerFailures = *fc.Store.BreakerFailures
	}
	setBool(&c.Store.Ephemeral, fc.Store.Ephemeral)

	setString(&c.Widgets.BasePath, fc.Widgets.BasePath)
	setBool(&c.Widgets.Autostart, fc.Widgets.Autostart)

	setString(&c.Logging.Level, fc.Logging.Level)
	setBool(&c.Logging.Development, fc.Logging.Development)

	if fc.RateLimit.RequestsPerSecond != nil {
		c.RateLimit.RequestsPerSecond = *fc.RateLimit.RequestsPerSecond
	}
	if fc.RateLimit.Burst != nil {
		c.RateLimit.Burst = *fc.RateLimit.Burst
	}
	setBool(&c.RateLimit.Enabled, fc.RateLimit.Enabled)
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
