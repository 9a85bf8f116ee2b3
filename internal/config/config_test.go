package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"

	"github.com/amterp/qrcard/internal/version"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	def := Default()
	if cfg.Server.Port != def.Server.Port || cfg.QR.Size != def.QR.Size {
		t.Errorf("Expected defaults, got %+v", cfg)
	}
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
qrcard_schema = "config/1"
seed_file = "cards.toml"

[server]
port = 8080

[qr]
size = 512
recovery = "high"
cache_size = 16

[validation]
strict_urls = true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.QR.Size != 512 || cfg.QR.Recovery != "high" || cfg.QR.CacheSize != 16 {
		t.Errorf("Unexpected qr config: %+v", cfg.QR)
	}
	if !cfg.Validation.StrictURLs {
		t.Errorf("Expected strict URLs")
	}
	if cfg.SeedFile != "cards.toml" {
		t.Errorf("Expected seed file, got %q", cfg.SeedFile)
	}
	// Unset keys keep their defaults
	if cfg.Log.Level != "info" {
		t.Errorf("Expected default log level, got %q", cfg.Log.Level)
	}
}

func TestLoad_MissingSchema(t *testing.T) {
	path := writeConfig(t, "[server]\nport = 8080\n")

	_, err := Load(path)
	var sv *version.SchemaVersionError
	if !errors.As(err, &sv) {
		t.Fatalf("Expected schema version error, got %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("QRCARD_PORT", "9999")
	t.Setenv("QRCARD_LOG_LEVEL", "debug")
	t.Setenv("QRCARD_STRICT_URLS", "true")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("Expected port 9999, got %d", cfg.Server.Port)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Expected debug level, got %q", cfg.Log.Level)
	}
	if !cfg.Validation.StrictURLs {
		t.Errorf("Expected strict URLs from env")
	}
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("QRCARD_PORT", "abc")

	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Errorf("Expected error for invalid QRCARD_PORT")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port", func(c *Config) { c.Server.Port = 70000 }},
		{"qr size", func(c *Config) { c.QR.Size = 0 }},
		{"cache size", func(c *Config) { c.QR.CacheSize = -1 }},
		{"recovery", func(c *Config) { c.QR.Recovery = "max" }},
		{"log level", func(c *Config) { c.Log.Level = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("Expected validation error")
			}
		})
	}
}

func TestConfigureLogger(t *testing.T) {
	logger := log.New()

	if err := ConfigureLogger(logger, LogConfig{Level: "warn", Format: "json"}); err != nil {
		t.Fatalf("ConfigureLogger failed: %v", err)
	}
	if logger.GetLevel() != log.WarnLevel {
		t.Errorf("Expected warn level, got %v", logger.GetLevel())
	}
	if _, ok := logger.Formatter.(*log.JSONFormatter); !ok {
		t.Errorf("Expected JSON formatter, got %T", logger.Formatter)
	}
}
