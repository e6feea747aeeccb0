package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type APIConfig struct {
	Addr             string
	DatabaseURL      string
	DBMaxConns       int32
	DBMinConns       int32
	AuthSecret       string
	TokenTTL         time.Duration
	StartupMigrate   bool
	StartupSeedWorld bool
}

type AdminConfig struct {
	DatabaseURL string
}

// LoadAPIFromEnv reads the API configuration from the environment. A .env
// file in the working directory is merged in first; real environment
// variables win.
func LoadAPIFromEnv() (APIConfig, error) {
	_ = godotenv.Load()

	addr := os.Getenv("PORT")
	if addr != "" {
		if !strings.HasPrefix(addr, ":") {
			addr = ":" + addr
		}
	} else {
		addr = envDefault("TURMOIL_API_ADDR", ":8080")
	}

	cfg := APIConfig{
		Addr:             addr,
		DatabaseURL:      strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBMaxConns:       envInt32Default("TURMOIL_DB_MAX_CONNS", 16),
		DBMinConns:       envInt32Default("TURMOIL_DB_MIN_CONNS", 2),
		AuthSecret:       strings.TrimSpace(os.Getenv("TURMOIL_AUTH_SECRET")),
		TokenTTL:         envDurationDefault("TURMOIL_TOKEN_TTL", 24*time.Hour),
		StartupMigrate:   envBoolDefault("TURMOIL_STARTUP_MIGRATE", true),
		StartupSeedWorld: envBoolDefault("TURMOIL_STARTUP_SEED_WORLD", true),
	}
	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.AuthSecret == "" {
		return cfg, fmt.Errorf("TURMOIL_AUTH_SECRET is required")
	}
	return cfg, nil
}

func LoadAdminFromEnv() (AdminConfig, error) {
	_ = godotenv.Load()
	cfg := AdminConfig{
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
	}
	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL is required")
	}
	return cfg, nil
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envDurationDefault(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envInt32Default(key string, fallback int32) int32 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil || n <= 0 {
		return fallback
	}
	return int32(n)
}

func envBoolDefault(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
