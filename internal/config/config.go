// Package config loads application configuration from environment
// variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/netip"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
type Config struct {
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8000"`

	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
	RedisURL    string `env:"REDIS_URL,required,notEmpty"`

	// Hosts that serve the tenant directory and company registration.
	CentralDomains []string `env:"CENTRAL_DOMAINS" envSeparator:"," envDefault:"localhost,127.0.0.1"`
	// Registered subdomains are created under this domain.
	TenantBaseDomain string `env:"TENANT_BASE_DOMAIN" envDefault:"localhost"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`
	MaxRequestBodySize int64    `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`

	// TokenTTL of 0 issues tokens that never expire.
	TokenTTL time.Duration `env:"TOKEN_TTL" envDefault:"0s"`

	// Peers (IPs or CIDRs) whose forwarding headers are believed. Empty
	// means client addresses always come from the socket.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	LoginRateLimitEnabled bool `env:"LOGIN_RATE_LIMIT_ENABLED" envDefault:"true"`
	LoginRatePerMinute    int  `env:"LOGIN_RATE_PER_MINUTE" envDefault:"10"`
	LoginRateBurst        int  `env:"LOGIN_RATE_BURST" envDefault:"5"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Validate checks values env tags cannot express.
func (c *Config) Validate() error {
	var errs []error
	if c.AppPort <= 0 || c.AppPort > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT out of range: %d", c.AppPort))
	}
	if len(c.CentralDomains) == 0 {
		errs = append(errs, errors.New("CENTRAL_DOMAINS must list at least one host"))
	}
	if strings.Trim(c.TenantBaseDomain, ". ") == "" {
		errs = append(errs, errors.New("TENANT_BASE_DOMAIN must not be empty"))
	}
	if c.TokenTTL < 0 {
		errs = append(errs, errors.New("TOKEN_TTL must not be negative"))
	}
	if c.MaxRequestBodySize <= 0 {
		errs = append(errs, errors.New("MAX_REQUEST_BODY_SIZE must be positive"))
	}
	if c.LoginRateLimitEnabled && (c.LoginRatePerMinute <= 0 || c.LoginRateBurst <= 0) {
		errs = append(errs, errors.New("LOGIN_RATE_PER_MINUTE and LOGIN_RATE_BURST must be positive"))
	}
	if _, err := c.TrustedProxyPrefixes(); err != nil {
		errs = append(errs, err)
	}
	for _, origin := range c.CORSAllowedOrigins {
		if origin == "*" {
			errs = append(errs, errors.New(`CORS_ALLOWED_ORIGINS cannot contain "*" with credentials`))
		}
	}
	return errors.Join(errs...)
}

// TrustedProxyPrefixes parses TRUSTED_PROXIES. A bare IP is a single-host
// prefix.
func (c *Config) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(c.TrustedProxies))
	for _, v := range c.TrustedProxies {
		if p, err := netip.ParsePrefix(v); err == nil {
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(v)
		if err != nil {
			return nil, fmt.Errorf("TRUSTED_PROXIES: invalid address %q", v)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// SlogLevel converts LOG_LEVEL to a slog.Level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load parses environment variables and returns a validated Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.CentralDomains = compact(cfg.CentralDomains)
	cfg.CORSAllowedOrigins = compact(cfg.CORSAllowedOrigins)
	cfg.TrustedProxies = compact(cfg.TrustedProxies)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
