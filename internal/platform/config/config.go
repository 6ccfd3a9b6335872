// Copyright (c) 2026 Vizion. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles client-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. A '.env' file in the
working directory, when present, is loaded first with 'joho/godotenv'; real
environment variables always win over it.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded (and overridden by CLI flags), configuration is read-only.
  - DI-Friendly: Passed to the composition root via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// # Configuration Schema

// Config holds all runtime configuration for the Vizion client.
type Config struct {

	// API endpoint
	APIURL string `env:"VIZION_API_URL" envDefault:"http://localhost:3000/api"`
	Debug  bool   `env:"VIZION_DEBUG"   envDefault:"false"`

	// Credential persistence. When RedisURL is set the cookie jar is kept in
	// Redis under Profile, otherwise in CredentialsFile.
	CredentialsFile string        `env:"VIZION_CREDENTIALS_FILE"`
	RedisURL        string        `env:"VIZION_REDIS_URL"`
	Profile         string        `env:"VIZION_CREDENTIALS_PROFILE" envDefault:"default"`
	CredentialsTTL  time.Duration `env:"VIZION_CREDENTIALS_TTL"     envDefault:"720h"`

	// Client-side throttle. Zero disables it.
	RateLimitRPS   float64 `env:"VIZION_RATE_LIMIT_RPS"   envDefault:"0"`
	RateLimitBurst int     `env:"VIZION_RATE_LIMIT_BURST" envDefault:"5"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// A missing .env is the normal case outside development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to read .env file: %w", err)
	}

	return Parse()
}

// Parse maps the current environment onto a [Config] without touching .env files.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if cfg.CredentialsFile == "" {
		cfg.CredentialsFile = DefaultCredentialsFile()
	}

	return cfg, nil
}

// DefaultCredentialsFile returns $HOME/.vizion/credentials.json, or a path
// relative to the working directory when no home directory is known.
func DefaultCredentialsFile() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".vizion", "credentials.json")
	}
	return filepath.Join(home, ".vizion", "credentials.json")
}

// UsesRedis reports whether credentials are persisted in Redis.
func (c *Config) UsesRedis() bool {
	return c.RedisURL != ""
}
