package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds all environment-sourced settings, read once at startup.
type Config struct {
	Port        int    `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	JWTSecret       string `env:"JWT_SECRET,required"`
	AccessTokenTTL  int    `env:"ACCESS_TOKEN_TTL_SECONDS" envDefault:"900"`
	RefreshTokenTTL int    `env:"REFRESH_TOKEN_TTL_SECONDS" envDefault:"604800"`

	TrialDays         int   `env:"TRIAL_DAYS" envDefault:"3"`
	BasePriceCents    int64 `env:"BASE_PRICE_CENTS" envDefault:"10000"`
	PricePerUserCents int64 `env:"PRICE_PER_USER_CENTS" envDefault:"1000"`

	StripeSecretKey string `env:"STRIPE_SECRET_KEY"`
	// Optional. When empty, webhook signature verification is skipped;
	// only acceptable for non-production setups.
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`
}

// Load parses the configuration from the process environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment config: %w", err)
	}
	return cfg, nil
}
