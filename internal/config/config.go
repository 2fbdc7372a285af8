package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	pkgconfig "github.com/alper4283/intern-project-product-review/pkg/config"
)

// Config holds all configuration for the client and CLI.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Backend
	BaseURL            string `env:"REVIEW_BASE_URL" envDefault:"http://localhost:8080"`
	RequestTimeoutSecs int    `env:"REVIEW_REQUEST_TIMEOUT_SECONDS" envDefault:"30"`
	PageSize           int    `env:"REVIEW_PAGE_SIZE" envDefault:"20"`

	// Token persistence; defaults to ~/.config/reviewctl/token when empty.
	TokenFile string `env:"REVIEW_TOKEN_FILE"`

	// Circuit breaker (opt-in)
	BreakerEnabled bool `env:"REVIEW_CB_ENABLED" envDefault:"false"`

	// OpenTelemetry
	OTELEnabled  bool   `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load client config: %w", err)
	}

	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("REVIEW_BASE_URL must be an absolute URL, got %q", cfg.BaseURL)
	}
	if cfg.RequestTimeoutSecs < 1 {
		return nil, fmt.Errorf("REVIEW_REQUEST_TIMEOUT_SECONDS must be positive, got %d", cfg.RequestTimeoutSecs)
	}
	if cfg.PageSize < 1 || cfg.PageSize > 100 {
		return nil, fmt.Errorf("REVIEW_PAGE_SIZE must be between 1 and 100, got %d", cfg.PageSize)
	}

	if cfg.TokenFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir for token file: %w", err)
		}
		cfg.TokenFile = filepath.Join(home, ".config", "reviewctl", "token")
	}

	return cfg, nil
}

// RequestTimeout returns the configured request timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSecs) * time.Second
}
