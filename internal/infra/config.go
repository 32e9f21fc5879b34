package infra

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gold_price/internal/domain"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultUserAgent is a browser-like user agent string to avoid bot detection
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// DefaultQuoteURL is the Yahoo Finance chart endpoint; the symbol is appended as a path segment
	DefaultQuoteURL = "https://query1.finance.yahoo.com/v8/finance/chart"

	// DefaultConfigPath is used unless GOLD_CONFIG points elsewhere
	DefaultConfigPath = "configs/config.yaml"
)

// Config holds every setting of the service.
// Values come from DefaultConfig, then the YAML file, then environment variables.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Server struct {
		Addr               string   `yaml:"addr"`
		ShutdownTimeoutSec int      `yaml:"shutdown_timeout_sec"`
		AllowedOrigins     []string `yaml:"allowed_origins"`
	} `yaml:"server"`

	Upstream struct {
		URL        string `yaml:"url"`
		Symbol     string `yaml:"symbol"`
		TimeoutSec int    `yaml:"timeout_sec"`
		UserAgent  string `yaml:"user_agent"`
	} `yaml:"upstream"`

	Refresh struct {
		IntervalSec int `yaml:"interval_sec"`
	} `yaml:"refresh"`

	Logging struct {
		Level string `yaml:"level"`
		Dir   string `yaml:"dir"`
	} `yaml:"logging"`
}

// DefaultConfig returns the settings of the reference deployment
func DefaultConfig() *Config {
	var cfg Config
	cfg.App.Name = "Gold Price Backend"
	cfg.App.Version = "1.0.0"
	cfg.Server.Addr = ":3000"
	cfg.Server.ShutdownTimeoutSec = 5
	cfg.Server.AllowedOrigins = []string{"*"}
	cfg.Upstream.URL = DefaultQuoteURL
	cfg.Upstream.Symbol = domain.GoldFuturesSymbol
	cfg.Upstream.TimeoutSec = 10
	cfg.Upstream.UserAgent = DefaultUserAgent
	cfg.Refresh.IntervalSec = 300
	cfg.Logging.Level = "info"
	cfg.Logging.Dir = "logs"
	return &cfg
}

// ConfigPath returns the config file location, honouring GOLD_CONFIG
func ConfigPath() string {
	if p := os.Getenv("GOLD_CONFIG"); p != "" {
		return p
	}
	return DefaultConfigPath
}

// LoadConfig reads and parses the config file on top of DefaultConfig.
// A missing file yields an error wrapping domain.ErrConfigNotFound together with
// the defaults (env overrides applied), so callers may choose to continue.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if eerr := overrideWithEnv(cfg); eerr != nil {
			return nil, fmt.Errorf("invalid configuration: %w", eerr)
		}
		if verr := cfg.Validate(); verr != nil {
			return nil, fmt.Errorf("invalid configuration: %w", verr)
		}
		return cfg, fmt.Errorf("%w: %s", domain.ErrConfigNotFound, path)
	}
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := overrideWithEnv(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return &domain.ConfigError{Field: "server.addr", Err: errors.New("listen address is required")}
	}
	if !strings.HasPrefix(c.Upstream.URL, "http://") && !strings.HasPrefix(c.Upstream.URL, "https://") {
		return &domain.ConfigError{Field: "upstream.url", Err: fmt.Errorf("invalid URL: %q", c.Upstream.URL)}
	}
	if c.Upstream.Symbol == "" {
		return &domain.ConfigError{Field: "upstream.symbol", Err: errors.New("symbol is required")}
	}
	if c.Upstream.TimeoutSec <= 0 {
		return &domain.ConfigError{Field: "upstream.timeout_sec", Err: errors.New("timeout must be positive")}
	}
	if c.Refresh.IntervalSec <= 0 {
		return &domain.ConfigError{Field: "refresh.interval_sec", Err: errors.New("interval must be positive")}
	}
	return nil
}

// RefreshInterval is the scheduler cadence
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Refresh.IntervalSec) * time.Second
}

// UpstreamTimeout bounds a single upstream round trip
func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.Upstream.TimeoutSec) * time.Second
}

// ShutdownTimeout bounds graceful HTTP shutdown
func (c *Config) ShutdownTimeout() time.Duration {
	if c.Server.ShutdownTimeoutSec <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.Server.ShutdownTimeoutSec) * time.Second
}

// overrideWithEnv overwrites values with environment variables when present.
func overrideWithEnv(cfg *Config) error {
	if addr := os.Getenv("GOLD_HTTP_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if url := os.Getenv("GOLD_UPSTREAM_URL"); url != "" {
		cfg.Upstream.URL = url
	}
	if sec := os.Getenv("GOLD_REFRESH_INTERVAL_SEC"); sec != "" {
		n, err := strconv.Atoi(sec)
		if err != nil {
			return &domain.ConfigError{Field: "refresh.interval_sec", Err: fmt.Errorf("invalid GOLD_REFRESH_INTERVAL_SEC %q: %w", sec, err)}
		}
		cfg.Refresh.IntervalSec = n
	}
	if level := os.Getenv("GOLD_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	return nil
}
