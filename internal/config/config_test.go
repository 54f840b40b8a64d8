package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "4000"
jwt:
  secret: from-file
media:
  provider: local
`)
	t.Setenv("PORT", "5000")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("SCHEDULER_ENABLED", "true")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.Server.Port != "5000" {
		t.Errorf("port = %q, want env override 5000", cfg.Server.Port)
	}
	if cfg.JWT.Secret != "from-file" {
		t.Errorf("jwt secret = %q, want value from file", cfg.JWT.Secret)
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("allowed origins = %v", cfg.Server.AllowedOrigins)
	}
	if !cfg.Scheduler.Enabled {
		t.Errorf("scheduler should be enabled from env")
	}
	if cfg.Database.Driver != DriverMongo {
		t.Errorf("driver default = %q, want %q", cfg.Database.Driver, DriverMongo)
	}
}

func TestLoadConfig_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing jwt secret", "media:\n  provider: local\n"},
		{"unknown driver", "jwt:\n  secret: s\nmedia:\n  provider: local\ndatabase:\n  driver: sqlite\n"},
		{"cloudinary without credentials", "jwt:\n  secret: s\nmedia:\n  provider: cloudinary\n"},
		{"bad duration", "jwt:\n  secret: s\nmedia:\n  provider: local\ncache:\n  ttl: soon\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, tt.body)); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}

func TestLoadConfig_ProductionSecret(t *testing.T) {
	strong := strings.Repeat("k", minProductionSecretLen)
	tests := []struct {
		name    string
		mode    string
		secret  string
		wantErr bool
	}{
		{"placeholder in production", "production", "change-me", true},
		{"short secret in production", "production", "abc123", true},
		{"strong secret in production", "production", strong, false},
		{"placeholder in development", "development", "change-me", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SERVER_MODE", tt.mode)
			t.Setenv("JWT_SECRET", tt.secret)

			_, err := LoadConfig(writeConfig(t, "media:\n  provider: local\n"))
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadConfig error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig_ShippedFileFailsInProduction(t *testing.T) {
	t.Setenv("SERVER_MODE", "production")
	t.Setenv("CLOUDINARY_CLOUD_NAME", "demo")
	t.Setenv("CLOUDINARY_API_KEY", "key")
	t.Setenv("CLOUDINARY_API_SECRET", "secret")

	_, err := LoadConfig(filepath.Join("..", "..", "configs", "config.yaml"))
	if err == nil || !strings.Contains(err.Error(), "JWT secret") {
		t.Fatalf("expected the stock jwt secret to be rejected, got %v", err)
	}
}

func TestLoadFromEnv_RejectsBadInt(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)
	cfg.JWT.Secret = "s"
	t.Setenv("REDIS_DB", "not-a-number")

	if err := loadFromEnv(cfg); err == nil {
		t.Errorf("expected error for non-numeric REDIS_DB")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"SERVER_MAX_UPLOAD_MB": " 8 ",
		"SEED_USERS":           "a@example.com,,b@example.com",
		"REDIS_ADDR":           "",
		"DB_DRIVER":            DriverPostgres,
	}
	lookup := func(name string) (string, bool) {
		v, ok := env[name]
		return v, ok
	}

	cfg := &Config{}
	setDefaults(cfg)
	cfg.Cache.RedisAddr = "localhost:6379"

	if err := applyEnv(cfg, lookup); err != nil {
		t.Fatalf("applyEnv: %v", err)
	}
	if cfg.Server.MaxUploadMB != 8 {
		t.Errorf("max upload = %d, want 8", cfg.Server.MaxUploadMB)
	}
	if len(cfg.Seed.Users) != 2 || cfg.Seed.Users[1] != "b@example.com" {
		t.Errorf("seed users = %v", cfg.Seed.Users)
	}
	if cfg.Cache.RedisAddr != "" {
		t.Errorf("a set but empty variable should clear the value, got %q", cfg.Cache.RedisAddr)
	}
	if cfg.Database.Driver != DriverPostgres {
		t.Errorf("driver = %q", cfg.Database.Driver)
	}
	if cfg.Server.Port != "3001" {
		t.Errorf("unset variables must keep defaults, port = %q", cfg.Server.Port)
	}
}

func TestApplyEnv_RejectsNonPointer(t *testing.T) {
	if err := applyEnv(Config{}, func(string) (string, bool) { return "", false }); err == nil {
		t.Error("expected error for non-pointer target")
	}
}
