package db

import (
	"testing"
	"time"
)

func TestConfigWithDefaults(t *testing.T) {
	got := Config{URL: "postgres://x"}.withDefaults()
	if got.MaxConns != 16 || got.MinConns != 2 {
		t.Fatalf("conns: max=%d min=%d", got.MaxConns, got.MinConns)
	}
	if got.MaxConnLifetime != time.Hour || got.MaxConnIdleTime != 5*time.Minute {
		t.Fatalf("lifetimes: %v %v", got.MaxConnLifetime, got.MaxConnIdleTime)
	}
}

func TestConfigWithDefaultsKeepsExplicitValues(t *testing.T) {
	in := Config{
		URL:             "postgres://x",
		MaxConns:        64,
		MinConns:        8,
		MaxConnLifetime: 10 * time.Minute,
		MaxConnIdleTime: time.Minute,
	}
	if got := in.withDefaults(); got != in {
		t.Fatalf("explicit config was altered: %+v", got)
	}
}
