package config_test

import (
	"testing"
	"time"

	"github.com/nmesfin/mesob/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if cfg.HTTP.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.HTTP.Port)
	}
	if cfg.Mongo.URI != "mongodb://localhost:27017" {
		t.Errorf("unexpected mongo URI: %s", cfg.Mongo.URI)
	}
	if cfg.Mongo.Database != "mesob" {
		t.Errorf("unexpected mongo database: %s", cfg.Mongo.Database)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Errorf("expected 24h token TTL, got %s", cfg.Auth.TokenTTL)
	}
	if cfg.Redis.MenuTTL != 15*time.Minute {
		t.Errorf("expected 15m menu TTL, got %s", cfg.Redis.MenuTTL)
	}
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error when JWT_SECRET is missing")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("API_HTTP_PORT", "9090")
	t.Setenv("MONGO_DB_NAME", "mesob_test")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("AUTH_RATE_RPS", "20")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.HTTP.Port)
	}
	if cfg.Mongo.Database != "mesob_test" {
		t.Errorf("expected database mesob_test, got %s", cfg.Mongo.Database)
	}
	if cfg.Auth.TokenTTL != 2*time.Hour {
		t.Errorf("expected 2h token TTL, got %s", cfg.Auth.TokenTTL)
	}
	if cfg.Auth.RateRPS != 20 {
		t.Errorf("expected rate 20, got %d", cfg.Auth.RateRPS)
	}
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("API_HTTP_PORT", "not-a-port")

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}
