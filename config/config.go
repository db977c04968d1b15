package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// envPrefix is prepended to every variable, e.g. PAGEGRAB_SERVER_PORT.
const envPrefix = "PAGEGRAB"

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Browser BrowserConfig
	Extract ExtractConfig
	CORS    CORSConfig
	Log     LogConfig
	Metrics MetricsConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string `default:"0.0.0.0"`
	Port int    `default:"8080"`
	Mode string `default:"release"` // "debug", "release", "test"

	// ShutdownTimeout bounds graceful draining of in-flight requests.
	ShutdownTimeout time.Duration `split_words:"true" default:"10s"`
}

// BrowserConfig is handed to the session manager at construction. Every
// request launches its own browser from these settings.
type BrowserConfig struct {
	// Bin overrides the Chromium binary path. Empty means rod's lookup
	// (and download, if nothing is installed).
	Bin string

	Headless bool `default:"true"`

	// LaunchTimeout bounds process start and CDP connect.
	LaunchTimeout time.Duration `split_words:"true" default:"30s"`

	// Stealth injects go-rod/stealth evasions before navigation.
	Stealth bool `default:"false"`

	// BlockedResourceTypes lists CDP resource types to fail, e.g. "Image,Font".
	BlockedResourceTypes []string `split_words:"true"`
}

// ExtractConfig controls the fetch-and-extract pipeline.
type ExtractConfig struct {
	// NavigationTimeout bounds navigation up to the load event.
	NavigationTimeout time.Duration `split_words:"true" default:"120s"`

	// DOMReadTimeout bounds each individual DOM read after load.
	DOMReadTimeout time.Duration `split_words:"true" default:"15s"`
}

// CORSConfig controls cross-origin access to the HTTP API.
type CORSConfig struct {
	AllowOrigins []string      `split_words:"true" default:"*"`
	AllowMethods []string      `split_words:"true" default:"GET,POST,OPTIONS"`
	AllowHeaders []string      `split_words:"true" default:"Origin,Content-Type,Accept,X-Request-ID"`
	MaxAge       time.Duration `split_words:"true" default:"12h"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `default:"info"`
	Format string `default:"json"` // "json" or "text"
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `default:"true"`
	Path    string `default:"/metrics"`
}

// Load reads configuration from PAGEGRAB_* environment variables, applying
// the defaults declared in the struct tags.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration Load produces with an empty environment.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Mode:            "release",
			ShutdownTimeout: 10 * time.Second,
		},
		Browser: BrowserConfig{
			Headless:      true,
			LaunchTimeout: 30 * time.Second,
		},
		Extract: ExtractConfig{
			NavigationTimeout: 120 * time.Second,
			DOMReadTimeout:    15 * time.Second,
		},
		CORS: CORSConfig{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
			MaxAge:       12 * time.Hour,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

func (c *Config) validate() error {
	switch {
	case c.Server.Port <= 0 || c.Server.Port > 65535:
		return fmt.Errorf("config: invalid server port %d", c.Server.Port)
	case c.Browser.LaunchTimeout <= 0:
		return fmt.Errorf("config: browser launch timeout must be positive")
	case c.Extract.NavigationTimeout <= 0:
		return fmt.Errorf("config: navigation timeout must be positive")
	case c.Extract.DOMReadTimeout <= 0:
		return fmt.Errorf("config: DOM read timeout must be positive")
	}
	return nil
}
