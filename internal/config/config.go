package config

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env            string
	Port           int
	SupabaseURL    string
	SupabaseSecret string
	StoreTimeout   time.Duration
	AllowedOrigins []string
	OTLPEndpoint   string
}

// Load reads configuration from the environment. The data-store address and
// service credential are required; a missing value is a startup failure, not
// something to discover on the first request.
func Load() (Config, error) {
	_ = godotenv.Load()

	url := strings.TrimRight(getEnv("SUPABASE_URL", ""), "/")
	if url == "" {
		return Config{}, errors.New("SUPABASE_URL is required")
	}

	secret := getEnv("SUPABASE_SECRET_KEY", "")
	if secret == "" {
		return Config{}, errors.New("SUPABASE_SECRET_KEY is required")
	}

	return Config{
		Env:            getEnv("APP_ENV", "dev"),
		Port:           getEnvInt("PORT", 8080),
		SupabaseURL:    url,
		SupabaseSecret: secret,
		StoreTimeout:   getEnvDuration("STORE_TIMEOUT", 120*time.Second),
		AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),
		OTLPEndpoint:   getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}, nil
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)
		if err != nil {
			return fallback
		}
		return num
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fallback
		}
		return d
	}
	return fallback
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}

	return out
}
