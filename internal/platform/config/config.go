package config

import (
	"fmt"
	"log"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Port         string
	IsProduction bool
	LogLevel     slog.Level
	// SupportedCurrencies restricts the currency selector; empty means all.
	SupportedCurrencies []string
	SessionTTL          time.Duration
	// RateLimit uses the ulule formatted rate syntax, e.g. "60-M".
	RateLimit          string
	CORSAllowedOrigins []string
	// DefaultTimezone is used for currency defaulting when the client does
	// not send one.
	DefaultTimezone string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SUPPORTED_CURRENCIES", "")
	v.SetDefault("SESSION_TTL", "30m")
	v.SetDefault("RATE_LIMIT", "60-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("DEFAULT_TIMEZONE", "")
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{}

	cfg.Port = v.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.IsProduction = v.GetBool("IS_PRODUCTION")

	levelStr := v.GetString("LOG_LEVEL")
	if err := cfg.LogLevel.UnmarshalText([]byte(levelStr)); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", levelStr, err)
	}

	cfg.SupportedCurrencies = splitList(v.GetString("SUPPORTED_CURRENCIES"))

	ttlStr := v.GetString("SESSION_TTL")
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil || ttl <= 0 {
		ttl = 30 * time.Minute
		if ttlStr != "" {
			log.Printf("Warning: Invalid value for SESSION_TTL ('%s'). Defaulting to %s.\n", ttlStr, ttl.String())
		}
	}
	cfg.SessionTTL = ttl

	cfg.RateLimit = v.GetString("RATE_LIMIT")
	cfg.CORSAllowedOrigins = splitList(v.GetString("CORS_ALLOWED_ORIGINS"))
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}
	cfg.DefaultTimezone = strings.TrimSpace(v.GetString("DEFAULT_TIMEZONE"))

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
