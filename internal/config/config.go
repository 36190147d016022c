// Package config loads runtime configuration from the environment, with an
// optional .env file layered underneath for local development.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Env  string `env:"ENV" envDefault:"development"`
	Port string `env:"PORT" envDefault:"8080"`

	PokeAPIBaseURL string        `env:"POKEAPI_BASE_URL" envDefault:"https://pokeapi.co/api/v2"`
	PokeAPITimeout time.Duration `env:"POKEAPI_TIMEOUT" envDefault:"30s"`
	PokeAPIRPS     float64       `env:"POKEAPI_RPS" envDefault:"20"`
	PokeAPIBurst   int           `env:"POKEAPI_BURST" envDefault:"20"`

	PageSize          int `env:"PAGE_SIZE" envDefault:"20"`
	BulkListLimit     int `env:"BULK_LIST_LIMIT" envDefault:"1500"`
	FanOutConcurrency int `env:"FANOUT_CONCURRENCY" envDefault:"16"`

	VeryRareMaxCaptureRate int `env:"RARITY_VERY_RARE_MAX" envDefault:"45"`
	RareMaxCaptureRate     int `env:"RARITY_RARE_MAX" envDefault:"90"`

	MaxSessions int           `env:"MAX_SESSIONS" envDefault:"1000"`
	SessionTTL  time.Duration `env:"SESSION_TTL" envDefault:"30m"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:4200,http://localhost:5173"`
	LogLevel           string   `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads envFile (if it exists) and then parses the environment.
// Variables already set in the process environment win over the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case c.PageSize <= 0:
		return fmt.Errorf("PAGE_SIZE must be positive, got %d", c.PageSize)
	case c.BulkListLimit <= 0:
		return fmt.Errorf("BULK_LIST_LIMIT must be positive, got %d", c.BulkListLimit)
	case c.FanOutConcurrency <= 0:
		return fmt.Errorf("FANOUT_CONCURRENCY must be positive, got %d", c.FanOutConcurrency)
	case c.VeryRareMaxCaptureRate > c.RareMaxCaptureRate:
		return fmt.Errorf("RARITY_VERY_RARE_MAX (%d) must not exceed RARITY_RARE_MAX (%d)",
			c.VeryRareMaxCaptureRate, c.RareMaxCaptureRate)
	case c.MaxSessions <= 0:
		return fmt.Errorf("MAX_SESSIONS must be positive, got %d", c.MaxSessions)
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}
