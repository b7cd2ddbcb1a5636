// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Once loaded, configuration is read-only and passed to components through
their constructors.
*/
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// SupportedAlgorithm is the only token signing algorithm accepted.
const SupportedAlgorithm = "HS256"

// # Configuration Schema

// Config holds all runtime configuration for the Memberdesk server and CLI.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./migrations"`

	// Key-Value Store (Redis) backing sessions and the revocation list
	RedisURL string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`

	// Token signing
	SecretKey                string `env:"SECRET_KEY,required,notEmpty"`
	Algorithm                string `env:"ALGORITHM"                   envDefault:"HS256"`
	AccessTokenExpireMinutes int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES" envDefault:"15"`
	RefreshTokenExpireDays   int    `env:"REFRESH_TOKEN_EXPIRE_DAYS"   envDefault:"7"`
	TokenRevocationEnabled   bool   `env:"TOKEN_REVOCATION_ENABLED"    envDefault:"false"`

	// Sessions
	SessionExpireMinutes int    `env:"SESSION_EXPIRE_MINUTES" envDefault:"60"`
	SessionCookieName    string `env:"SESSION_COOKIE_NAME"    envDefault:"session"`
	CookieSecure         bool   `env:"COOKIE_SECURE"          envDefault:"false"`

	// Default role linked to every self-registered principal
	DefaultUserRole string `env:"DEFAULT_USER_ROLE" envDefault:"member"`

	// Cross-Origin Resource Sharing, comma separated
	AllowedOrigins string `env:"ALLOWED_ORIGINS"`

	// Tracing. Empty disables the OTLP exporter.
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct and validates it.
func Load() (*Config, error) {
	cfg := &Config{}

	// Fails if any field marked 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the cross-field rules env tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.SecretKey) == "" {
		errs = append(errs, errors.New("SECRET_KEY must not be empty"))
	}
	if c.Algorithm != SupportedAlgorithm {
		errs = append(errs, fmt.Errorf("ALGORITHM %q is not supported, use %s", c.Algorithm, SupportedAlgorithm))
	}
	if c.AccessTokenExpireMinutes <= 0 {
		errs = append(errs, errors.New("ACCESS_TOKEN_EXPIRE_MINUTES must be positive"))
	}
	if c.RefreshTokenExpireDays <= 0 {
		errs = append(errs, errors.New("REFRESH_TOKEN_EXPIRE_DAYS must be positive"))
	}
	if c.SessionExpireMinutes <= 0 {
		errs = append(errs, errors.New("SESSION_EXPIRE_MINUTES must be positive"))
	}
	if strings.TrimSpace(c.DefaultUserRole) == "" {
		errs = append(errs, errors.New("DEFAULT_USER_ROLE must not be empty"))
	}
	if c.IsProduction() && !c.CookieSecure {
		errs = append(errs, errors.New("COOKIE_SECURE must be true in production"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// # Derived Values

// AccessTokenTTL is the lifetime of access tokens.
func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenExpireMinutes) * time.Minute
}

// RefreshTokenTTL is the lifetime of refresh tokens.
func (c *Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshTokenExpireDays) * 24 * time.Hour
}

// SessionTTL is the idle lifetime of a server-side session record.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionExpireMinutes) * time.Minute
}

// Origins splits AllowedOrigins into a clean list.
func (c *Config) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
