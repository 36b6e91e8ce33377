// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all configuration for the service.
type Config struct {
	// Port is the HTTP listen port.
	Port int `env:"PORT" envDefault:"8080"`

	// DBPath is the SQLite database file path.
	DBPath string `env:"DB_PATH" envDefault:"./data/splitplan.db"`

	// JWTSecret signs session tokens. Must be set in production.
	JWTSecret string `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`

	// TokenTTL is how long session tokens stay valid.
	TokenTTL time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	// RateAPIURL is the exchange-rate endpoint; the base currency code is
	// appended as the final path segment.
	RateAPIURL string `env:"RATE_API_URL" envDefault:"https://open.er-api.com/v6/latest"`

	// RateTimeout bounds each rate fetch.
	RateTimeout time.Duration `env:"RATE_TIMEOUT" envDefault:"10s"`

	// RateCacheTTL is how long a fetched rate table stays valid.
	RateCacheTTL time.Duration `env:"RATE_CACHE_TTL" envDefault:"6h"`

	// MaxVoteScore is the inclusive upper bound of the vote score domain
	// [0, MaxVoteScore].
	MaxVoteScore int `env:"MAX_VOTE_SCORE" envDefault:"5"`
}

// Load parses the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
