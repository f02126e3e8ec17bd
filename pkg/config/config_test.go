package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  host: db.internal
  user: carbonquest
  password: secret
auth:
  jwt_secret: super-secret
ethereum:
  rpc_url: https://sepolia.example
  contract_address: "0x00000000000000000000000000000000000000c1"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("database.port = %d, want 5432", cfg.Database.Port)
	}
	if cfg.Auth.SessionTTL != 24*time.Hour {
		t.Errorf("auth.session_ttl = %s, want 24h", cfg.Auth.SessionTTL)
	}
	if cfg.Auth.AdminEmail != "admin@carbonquest.com" {
		t.Errorf("auth.admin_email = %q, want bootstrap default", cfg.Auth.AdminEmail)
	}
	if cfg.Ethereum.ChainID != 11155111 {
		t.Errorf("ethereum.chain_id = %d, want sepolia", cfg.Ethereum.ChainID)
	}
	if cfg.Ethereum.MintTimeout != 2*time.Minute {
		t.Errorf("ethereum.mint_timeout = %s, want 2m", cfg.Ethereum.MintTimeout)
	}
	if cfg.Leaderboard.Interval != 5*time.Minute {
		t.Errorf("leaderboard.interval = %s, want 5m", cfg.Leaderboard.Interval)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{"missing jwt secret", `
database:
  host: db.internal
ethereum:
  rpc_url: https://sepolia.example
  contract_address: "0xc1"
`},
		{"missing rpc url", `
database:
  host: db.internal
auth:
  jwt_secret: super-secret
ethereum:
  contract_address: "0xc1"
`},
		{"missing contract address", `
database:
  host: db.internal
auth:
  jwt_secret: super-secret
ethereum:
  rpc_url: https://sepolia.example
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.contents)); err == nil {
				t.Fatal("expected validation error, got nil")
			}
		})
	}
}

func TestLoadDemoModeNeedsOnlySecret(t *testing.T) {
	path := writeConfig(t, `
demo: true
auth:
  jwt_secret: super-secret
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if !cfg.Demo {
		t.Fatal("demo flag not set")
	}
}

func TestNewLogger(t *testing.T) {
	if _, err := NewLogger(LoggingConfig{Level: "loud"}); err == nil {
		t.Fatal("expected error for unknown log level")
	}

	logger, err := NewLogger(LoggingConfig{Level: "debug", Format: "json", OutputPath: "stdout"})
	if err != nil {
		t.Fatalf("NewLogger(json) failed: %v", err)
	}
	logger.Debug("configured")

	path := filepath.Join(t.TempDir(), "app.log")
	logger, err = NewLogger(LoggingConfig{Level: "info", Format: "console", OutputPath: path})
	if err != nil {
		t.Fatalf("NewLogger(file output) failed: %v", err)
	}
	logger.Info("written to file")
	_ = logger.Sync()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("log file not created: %v", err)
	}
}

func TestGetConnectionString(t *testing.T) {
	cfg := &DatabaseConfig{
		Host:     "db.internal",
		Port:     5432,
		User:     "carbonquest",
		Password: "secret",
		Database: "carbonquest",
		SSLMode:  "disable",
	}

	want := "host=db.internal port=5432 user=carbonquest password=secret dbname=carbonquest sslmode=disable"
	if got := cfg.GetConnectionString(); got != want {
		t.Fatalf("GetConnectionString() = %q, want %q", got, want)
	}
}
