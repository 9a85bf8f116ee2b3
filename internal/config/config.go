package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/amterp/qrcard/internal/version"
)

// Config is the user's qrcard configuration.
// Stored at ~/.config/qrcard/config.toml
// Schema changes require a version bump, see internal/version/version.go.
type Config struct {
	QrcardSchema string           `toml:"qrcard_schema"`
	SeedFile     string           `toml:"seed_file,omitempty"` // TOML fixture loaded at startup instead of the built-in seed
	Log          LogConfig        `toml:"log"`
	Server       ServerConfig     `toml:"server"`
	QR           QRConfig         `toml:"qr"`
	Validation   ValidationConfig `toml:"validation"`
}

// LogConfig controls logrus output.
type LogConfig struct {
	Level  string `toml:"level"`  // "debug", "info", "warn", "error"
	Format string `toml:"format"` // "text" or "json"
}

// ServerConfig controls `qrcard serve`.
type ServerConfig struct {
	Port           int      `toml:"port"`
	RateLimit      int      `toml:"rate_limit"` // Requests per minute per IP, 0 disables
	AllowedOrigins []string `toml:"allowed_origins,omitempty"`
	WatchSeed      bool     `toml:"watch_seed"` // Reload cards when seed_file changes on disk
}

// QRConfig controls QR rendering.
type QRConfig struct {
	Size      int    `toml:"size"`     // PNG edge length in pixels
	Recovery  string `toml:"recovery"` // "low", "medium", "high", "highest"
	CacheSize int    `toml:"cache_size"`
}

// ValidationConfig controls input checks done by the service layer.
type ValidationConfig struct {
	StrictURLs bool `toml:"strict_urls"` // Require absolute http(s) URLs on buttons
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		QrcardSchema: version.CurrentConfigSchema(),
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Port:           3000,
			RateLimit:      300,
			AllowedOrigins: []string{"http://localhost:*"},
		},
		QR: QRConfig{
			Size:      256,
			Recovery:  "medium",
			CacheSize: 128,
		},
	}
}

// Load reads the config file at path, falling back to the global config
// path when path is empty. A missing file yields defaults. A .env file in
// the working directory and QRCARD_* environment variables are applied on
// top.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = GlobalConfigPath()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
			// Strict version validation (only if file exists)
			if err := version.CheckConfigSchema(path, cfg.QrcardSchema); err != nil {
				return nil, err
			}
		case os.IsNotExist(err):
			// Defaults
		default:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if _, err := os.Stat(EnvFileName); err == nil {
		if err := godotenv.Load(EnvFileName); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", EnvFileName, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port: %d", c.Server.Port)
	}
	if c.QR.Size <= 0 {
		return fmt.Errorf("invalid qr.size: %d (must be > 0)", c.QR.Size)
	}
	if c.QR.CacheSize <= 0 {
		return fmt.Errorf("invalid qr.cache_size: %d (must be > 0)", c.QR.CacheSize)
	}
	switch strings.ToLower(c.QR.Recovery) {
	case "low", "medium", "high", "highest":
	default:
		return fmt.Errorf("invalid qr.recovery: %q", c.QR.Recovery)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log.level: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("QRCARD_SEED_FILE"); v != "" {
		c.SeedFile = v
	}
	if v := os.Getenv("QRCARD_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("QRCARD_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv("QRCARD_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid QRCARD_PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("QRCARD_QR_SIZE"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid QRCARD_QR_SIZE %q: %w", v, err)
		}
		c.QR.Size = size
	}
	if v := os.Getenv("QRCARD_STRICT_URLS"); v != "" {
		strict, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid QRCARD_STRICT_URLS %q: %w", v, err)
		}
		c.Validation.StrictURLs = strict
	}
	return nil
}

// ConfigureLogger applies level and formatter settings to a logrus logger.
func ConfigureLogger(logger *log.Logger, cfg LogConfig) error {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return err
	}
	logger.SetLevel(level)

	switch cfg.Format {
	case "json":
		logger.SetFormatter(&log.JSONFormatter{})
	default:
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}
