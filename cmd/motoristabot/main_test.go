package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestRun_InvalidConfig verifies run fails with an invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	originalEnv := os.Getenv("MOTORISTA_CONFIG")
	defer os.Setenv("MOTORISTA_CONFIG", originalEnv)

	os.Setenv("MOTORISTA_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRun_MissingSecrets verifies run fails when required secrets are absent.
func TestRun_MissingSecrets(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")

	configContent := `
telegram:
  token: ""

auth:
  login_secret: ""
  report_secret: ""

database:
  path: "` + filepath.Join(tmpDir, "bot.db") + `"

logging:
  level: info
  format: json
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	originalEnv := os.Getenv("MOTORISTA_CONFIG")
	defer os.Setenv("MOTORISTA_CONFIG", originalEnv)
	os.Setenv("MOTORISTA_CONFIG", configPath)

	// Make sure ambient secrets do not rescue the empty config.
	for _, key := range []string{"MOTORISTA_TELEGRAM_TOKEN", "MOTORISTA_AUTH_LOGIN_SECRET", "MOTORISTA_AUTH_REPORT_SECRET"} {
		t.Setenv(key, "")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail without telegram token and secrets")
	}
}

func TestGetConfigPath(t *testing.T) {
	originalEnv := os.Getenv("MOTORISTA_CONFIG")
	defer os.Setenv("MOTORISTA_CONFIG", originalEnv)

	os.Setenv("MOTORISTA_CONFIG", "")
	if got := getConfigPath(); got != defaultConfigPath {
		t.Fatalf("getConfigPath() = %q, want %q", got, defaultConfigPath)
	}

	os.Setenv("MOTORISTA_CONFIG", "/etc/motorista/config.yaml")
	if got := getConfigPath(); got != "/etc/motorista/config.yaml" {
		t.Fatalf("getConfigPath() = %q", got)
	}
}
