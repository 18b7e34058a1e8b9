package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"community-grocery-go/pkg/logger"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "test-secret")
	for _, key := range []string{"HTTP_PORT", "STORAGE_BACKEND", "VERSION_RETRIES", "JWT_TTL", "KAFKA_BROKERS"} {
		unsetForTest(t, key)
	}

	cfg, err := Load(logger.Discard())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default port, got %q", cfg.HTTPPort)
	}
	if cfg.StorageBackend != StorageBackendPostgres {
		t.Fatalf("expected postgres backend, got %q", cfg.StorageBackend)
	}
	if cfg.Community.VersionRetries != 3 {
		t.Fatalf("expected 3 retries, got %d", cfg.Community.VersionRetries)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Fatalf("expected 24h token ttl, got %s", cfg.Auth.TokenTTL)
	}
	if len(cfg.Kafka.Brokers) != 0 {
		t.Fatalf("expected kafka disabled by default, got %v", cfg.Kafka.Brokers)
	}
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "nested")
	if err := os.Mkdir(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	contents := "JWT_SECRET=from-file\nHTTP_PORT=9090\nKAFKA_BROKERS=a:9092, b:9092\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(contents), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Chdir(nested)
	t.Setenv("HTTP_PORT", "7070")
	unsetForTest(t, "JWT_SECRET")
	unsetForTest(t, "KAFKA_BROKERS")

	cfg, err := Load(logger.Discard())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.HTTPPort != "7070" {
		t.Fatalf("expected env to win, got %q", cfg.HTTPPort)
	}
	if cfg.Auth.JWTSecret != "from-file" {
		t.Fatalf("expected secret from file, got %q", cfg.Auth.JWTSecret)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "b:9092" {
		t.Fatalf("expected two brokers, got %v", cfg.Kafka.Brokers)
	}
}

// unsetForTest clears key and restores its previous value when the test ends.
func unsetForTest(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("unset %s: %v", key, err)
	}
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	cfg := Config{
		StorageBackend: "mongo",
		Cache:          CacheConfig{Backend: CacheBackendNone},
		Auth:           AuthConfig{SkipAuth: true},
		Community:      CommunityConfig{VersionRetries: 1},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for unknown storage backend")
	}
}

func TestValidateRequiresSecret(t *testing.T) {
	cfg := Config{
		StorageBackend: StorageBackendMemory,
		Cache:          CacheConfig{Backend: CacheBackendNone},
		Community:      CommunityConfig{VersionRetries: 1},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error when JWT_SECRET missing")
	}
}

func TestGetDSNFromParts(t *testing.T) {
	cfg := DBConfig{Host: "db", User: "u", Password: "p", Name: "n", Port: "5432", SSLMode: "disable", TimeZone: "UTC"}
	want := "host=db user=u password=p dbname=n port=5432 sslmode=disable TimeZone=UTC"
	if got := cfg.GetDSN(); got != want {
		t.Fatalf("GetDSN() = %q, want %q", got, want)
	}
}
