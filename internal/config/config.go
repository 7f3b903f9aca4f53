// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything the serve command needs.
type Config struct {
	ListenAddr string

	// Backend selects where scripts live: "memory" or "postgres".
	Backend     string
	DatabaseURL string

	// SessionBackend selects snapshot storage: "memory" or "redis".
	SessionBackend string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int

	// AutoLogoutHour/-Minute schedule the daily session sweep;
	// AutoLogoutHour -1 disables it.
	AutoLogoutHour   int
	AutoLogoutMinute int

	LogLevel string
}

// Load reads .env (when present) and the environment.
func Load() (*Config, error) {
	// A missing .env is fine; explicit environment always wins.
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr:       getEnv("ROTEIRO_LISTEN_ADDR", ":8080"),
		Backend:          getEnv("ROTEIRO_BACKEND", "memory"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		SessionBackend:   getEnv("ROTEIRO_SESSION_BACKEND", "memory"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		AutoLogoutHour:   -1,
		AutoLogoutMinute: 0,
		LogLevel:         getEnv("ROTEIRO_LOG_LEVEL", "info"),
	}

	var err error
	if cfg.RedisDB, err = getEnvInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.AutoLogoutHour, err = getEnvInt("ROTEIRO_AUTO_LOGOUT_HOUR", -1); err != nil {
		return nil, err
	}
	if cfg.AutoLogoutMinute, err = getEnvInt("ROTEIRO_AUTO_LOGOUT_MINUTE", 0); err != nil {
		return nil, err
	}

	if cfg.Backend == "postgres" && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when ROTEIRO_BACKEND=postgres")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
