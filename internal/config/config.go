package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	// Stripe
	StripeSecretKey     string
	StripeWebhookSecret string

	// Supabase
	SupabaseURL            string
	SupabasePublishableKey string
	SupabaseJWTSecret      string
	SupabaseStorageBucket  string

	// Platform fee, applied to every reading request
	FeePercentBps int64 // percent in basis points (1000 = 10%)
	FeeFixed      int64 // flat amount in minor currency units

	// Operator token for the expiry sweep endpoint
	SweepToken string

	// Database
	DatabaseURL string

	// Server
	Port        string
	Environment string
	BaseURL     string
}

func Load() (*Config, error) {
	feeBps, err := getEnvInt64("FEE_PERCENT_BPS", 1000)
	if err != nil {
		return nil, fmt.Errorf("invalid FEE_PERCENT_BPS: %w", err)
	}
	feeFixed, err := getEnvInt64("FEE_FIXED", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid FEE_FIXED: %w", err)
	}

	cfg := &Config{
		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),

		SupabaseURL:            getEnv("SUPABASE_URL", ""),
		SupabasePublishableKey: getEnv("SUPABASE_PUBLISHABLE_KEY", ""),
		SupabaseJWTSecret:      getEnv("SUPABASE_JWT_SECRET", ""),
		SupabaseStorageBucket:  getEnv("SUPABASE_STORAGE_BUCKET", "reading-photos"),

		FeePercentBps: feeBps,
		FeeFixed:      feeFixed,

		SweepToken: getEnv("SWEEP_TOKEN", ""),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.StripeSecretKey == "" {
		return fmt.Errorf("STRIPE_SECRET_KEY is required")
	}
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.SupabasePublishableKey == "" {
		return fmt.Errorf("SUPABASE_PUBLISHABLE_KEY is required")
	}
	if c.SupabaseJWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	if c.FeePercentBps < 0 || c.FeePercentBps > 10000 {
		return fmt.Errorf("FEE_PERCENT_BPS must be between 0 and 10000")
	}
	if c.FeeFixed < 0 {
		return fmt.Errorf("FEE_FIXED must not be negative")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	return strconv.ParseInt(value, 10, 64)
}
