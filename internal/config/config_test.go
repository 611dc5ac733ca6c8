package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestLoad_LocalDefaults(t *testing.T) {
	// Очищаем env
	os.Clearenv()
	os.Setenv("APP_ENV", "local")
	os.Setenv("ACCESS_TOKEN_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.AppEnv != EnvLocal {
		t.Errorf("Expected AppEnv=local, got %s", cfg.AppEnv)
	}
	if cfg.HTTPAddr != "127.0.0.1:5000" {
		t.Errorf("Expected HTTPAddr=127.0.0.1:5000, got %s", cfg.HTTPAddr)
	}
	if cfg.MongoURI != "mongodb://127.0.0.1:27017" {
		t.Errorf("Expected MongoURI=mongodb://127.0.0.1:27017, got %s", cfg.MongoURI)
	}
	if cfg.MongoDB != "SmartStore" {
		t.Errorf("Expected MongoDB=SmartStore, got %s", cfg.MongoDB)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("Expected TokenTTL=24h, got %s", cfg.TokenTTL)
	}
	if cfg.CheckoutTimeout != 15*time.Second {
		t.Errorf("Expected CheckoutTimeout=15s, got %s", cfg.CheckoutTimeout)
	}
	if cfg.ReserveAttempts != 3 {
		t.Errorf("Expected ReserveAttempts=3, got %d", cfg.ReserveAttempts)
	}
}

func TestLoad_DockerDefaults(t *testing.T) {
	// Очищаем env
	os.Clearenv()
	os.Setenv("APP_ENV", "docker")
	os.Setenv("ACCESS_TOKEN_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.AppEnv != EnvDocker {
		t.Errorf("Expected AppEnv=docker, got %s", cfg.AppEnv)
	}
	if cfg.HTTPAddr != "0.0.0.0:5000" {
		t.Errorf("Expected HTTPAddr=0.0.0.0:5000, got %s", cfg.HTTPAddr)
	}
	if cfg.MongoURI != "mongodb://mongo:27017" {
		t.Errorf("Expected MongoURI=mongodb://mongo:27017, got %s", cfg.MongoURI)
	}
}

func TestLoad_InvalidEnv(t *testing.T) {
	os.Clearenv()
	os.Setenv("APP_ENV", "staging")

	if _, err := Load(); err == nil {
		t.Error("Expected error for invalid APP_ENV, got nil")
	}
}

func TestLoad_MissingTokenSecret(t *testing.T) {
	os.Clearenv()
	os.Setenv("APP_ENV", "local")

	if _, err := Load(); err == nil {
		t.Error("Expected error for missing ACCESS_TOKEN_SECRET, got nil")
	}
}

func TestLoad_ExplicitValuesWin(t *testing.T) {
	os.Clearenv()
	os.Setenv("APP_ENV", "local")
	os.Setenv("ACCESS_TOKEN_SECRET", "test-secret")
	os.Setenv("HTTP_ADDR", "127.0.0.1:9999")
	os.Setenv("MONGO_URI", "mongodb://db:27017")
	os.Setenv("RESERVE_MAX_ATTEMPTS", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.HTTPAddr != "127.0.0.1:9999" {
		t.Errorf("Expected HTTPAddr=127.0.0.1:9999, got %s", cfg.HTTPAddr)
	}
	if cfg.MongoURI != "mongodb://db:27017" {
		t.Errorf("Expected MongoURI=mongodb://db:27017, got %s", cfg.MongoURI)
	}
	if cfg.ReserveAttempts != 5 {
		t.Errorf("Expected ReserveAttempts=5, got %d", cfg.ReserveAttempts)
	}
}

func TestString_MasksSecrets(t *testing.T) {
	os.Clearenv()
	os.Setenv("APP_ENV", "local")
	os.Setenv("PAYMENT_SECRET_KEY", "sk_test_supersecret")
	os.Setenv("ACCESS_TOKEN_SECRET", "tokensecret")
	os.Setenv("MONGO_URI", "mongodb://user:password@db:27017")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	s := cfg.String()
	for _, secret := range []string{"supersecret", "tokensecret", "password"} {
		if strings.Contains(s, secret) {
			t.Errorf("String() leaked secret %q: %s", secret, s)
		}
	}
}
