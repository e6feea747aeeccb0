package config

import (
	"testing"
	"time"
)

func TestLoadAPIFromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/turmoil")
	t.Setenv("TURMOIL_AUTH_SECRET", "s3cret")
	t.Setenv("PORT", "")
	t.Setenv("TURMOIL_API_ADDR", "")
	t.Setenv("TURMOIL_TOKEN_TTL", "")

	cfg, err := LoadAPIFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("addr=%q", cfg.Addr)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Fatalf("ttl=%v", cfg.TokenTTL)
	}
	if !cfg.StartupMigrate || !cfg.StartupSeedWorld {
		t.Fatalf("startup flags should default on")
	}
	if cfg.DBMaxConns != 16 || cfg.DBMinConns != 2 {
		t.Fatalf("pool sizing defaults: max=%d min=%d", cfg.DBMaxConns, cfg.DBMinConns)
	}
}

func TestLoadAPIFromEnvPoolSizing(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/turmoil")
	t.Setenv("TURMOIL_AUTH_SECRET", "s3cret")
	t.Setenv("TURMOIL_DB_MAX_CONNS", "40")
	t.Setenv("TURMOIL_DB_MIN_CONNS", "5")

	cfg, err := LoadAPIFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DBMaxConns != 40 || cfg.DBMinConns != 5 {
		t.Fatalf("pool sizing: max=%d min=%d", cfg.DBMaxConns, cfg.DBMinConns)
	}

	// Garbage falls back to the default rather than failing startup.
	t.Setenv("TURMOIL_DB_MAX_CONNS", "lots")
	cfg, err = LoadAPIFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DBMaxConns != 16 {
		t.Fatalf("fallback: max=%d", cfg.DBMaxConns)
	}
}

func TestLoadAPIFromEnvPortNormalized(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/turmoil")
	t.Setenv("TURMOIL_AUTH_SECRET", "s3cret")
	t.Setenv("PORT", "9000")

	cfg, err := LoadAPIFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != ":9000" {
		t.Fatalf("addr=%q", cfg.Addr)
	}
}

func TestLoadAPIFromEnvRequiresDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("TURMOIL_AUTH_SECRET", "s3cret")
	if _, err := LoadAPIFromEnv(); err == nil {
		t.Fatalf("expected missing DATABASE_URL to fail")
	}
}

func TestLoadAPIFromEnvRequiresSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/turmoil")
	t.Setenv("TURMOIL_AUTH_SECRET", "")
	if _, err := LoadAPIFromEnv(); err == nil {
		t.Fatalf("expected missing TURMOIL_AUTH_SECRET to fail")
	}
}
