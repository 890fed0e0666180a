package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" default:"development"`
	Port        string `env:"PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`
	LogLevel    string `env:"LOG_LEVEL" default:"info"`
	LogFormat   string `env:"LOG_FORMAT" default:"text"`

	// Timezone is the single fixed zone all timestamps are interpreted in,
	// both when sessions are written and when weekly windows are computed.
	Timezone string `env:"TIMEZONE" default:"Asia/Seoul"`

	StatsCacheTTL time.Duration `env:"STATS_CACHE_TTL" default:"60s"`

	RateLimitPerSecond float64 `env:"RATE_LIMIT_PER_SECOND" default:"20"`
	RateLimitBurst     int     `env:"RATE_LIMIT_BURST" default:"40"`

	// Location is resolved from Timezone during Load.
	Location *time.Location
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	required := map[string]string{
		"DATABASE_URL": cfg.DatabaseURL,
		"REDIS_URL":    cfg.RedisURL,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("TIMEZONE must be a valid IANA zone name: %w", err)
	}
	cfg.Location = loc

	if cfg.StatsCacheTTL <= 0 {
		return fmt.Errorf("STATS_CACHE_TTL must be positive")
	}
	if cfg.RateLimitPerSecond <= 0 || cfg.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit settings must be positive")
	}

	return nil
}
