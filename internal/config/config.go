// Package config loads server configuration from the environment and
// an optional YAML file. Environment variables (prefix INVESTPATH)
// take precedence over the file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config is the full server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Store     StoreConfig     `yaml:"store" envconfig:"STORE"`
	Providers ProvidersConfig `yaml:"providers" envconfig:"PROVIDERS"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	// StepTimeout bounds one step execution end to end; individual
	// provider calls carry their own shorter timeouts.
	StepTimeout time.Duration `yaml:"step_timeout" envconfig:"STEP_TIMEOUT"`
}

// LoggingConfig contains logging configuration. Output is always JSON.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// SecurityConfig contains the HTTP surface's protective settings.
type SecurityConfig struct {
	RateLimit RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig throttles inbound requests, separate from the
// per-provider outbound limiters.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// StoreConfig selects the session store backend.
type StoreConfig struct {
	Driver string `yaml:"driver" envconfig:"DRIVER"` // sqlite or memory
	Path   string `yaml:"path" envconfig:"PATH"`
}

// ProvidersConfig holds the per-provider credentials. An empty key
// leaves that adapter unconfigured; its fallback chains degrade to the
// remaining candidates.
type ProvidersConfig struct {
	FinnhubKey      string `yaml:"finnhub_key" envconfig:"FINNHUB_API_KEY"`
	AlphaVantageKey string `yaml:"alphavantage_key" envconfig:"ALPHAVANTAGE_API_KEY"`
	FMPKey          string `yaml:"fmp_key" envconfig:"FMP_API_KEY"`
	PolygonKey      string `yaml:"polygon_key" envconfig:"POLYGON_API_KEY"`
	TiingoKey       string `yaml:"tiingo_key" envconfig:"TIINGO_API_KEY"`
	FREDKey         string `yaml:"fred_key" envconfig:"FRED_API_KEY"`
	BenzingaKey     string `yaml:"benzinga_key" envconfig:"BENZINGA_API_KEY"`
	TipranksKey     string `yaml:"tipranks_key" envconfig:"TIPRANKS_API_KEY"`
	EODHDKey        string `yaml:"eodhd_key" envconfig:"EODHD_API_KEY"`
	MarketstackKey  string `yaml:"marketstack_key" envconfig:"MARKETSTACK_API_KEY"`
	NasdaqDataKey   string `yaml:"nasdaqdata_key" envconfig:"NASDAQ_DATA_API_KEY"`
	// SEC EDGAR requires a descriptive User-Agent instead of a key.
	SECUserAgent string `yaml:"sec_user_agent" envconfig:"SEC_USER_AGENT"`
}

// envPrefix namespaces all environment variables.
const envPrefix = "INVESTPATH"

// Load reads configuration from the environment, merging in the YAML
// file at path when it exists. Pass "" to use config.yaml.
func Load(path string) (*Config, error) {
	if path == "" {
		path = "config.yaml"
	}

	var cfg Config
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	// Environment wins over the file.
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("loading config from env: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return &cfg, nil
}

// applyDefaults fills in anything neither the file nor the environment
// set. Rate limiting defaults to enabled; set
// INVESTPATH_SECURITY_RATE_LIMIT_RPS=0 with Enabled=false to turn it
// off explicitly.
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 120 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 30 * time.Second
	}
	if c.Server.StepTimeout == 0 {
		c.Server.StepTimeout = 2 * time.Minute
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "console"
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/investpath.log"
	}
	if c.Security.RateLimit.RPS == 0 && c.Security.RateLimit.Burst == 0 {
		c.Security.RateLimit = RateLimitConfig{Enabled: true, RPS: 50, Burst: 25}
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "sqlite"
	}
	if c.Store.Driver == "sqlite" && c.Store.Path == "" {
		c.Store.Path = "data/sessions.db"
	}
	if c.Providers.SECUserAgent == "" {
		c.Providers.SECUserAgent = "investpath research agent admin@investpath.dev"
	}
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	switch c.Store.Driver {
	case "sqlite", "memory":
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Store.Driver == "sqlite" && c.Store.Path == "" {
		return fmt.Errorf("sqlite store requires a path")
	}
	if c.Security.RateLimit.Enabled && c.Security.RateLimit.RPS <= 0 {
		return fmt.Errorf("rate limit rps must be positive when enabled")
	}
	return nil
}
