package config

import (
	"os"
	"path/filepath"
)

const (
	ConfigFileName  = "config.toml"
	EnvFileName     = ".env"
	GlobalConfigDir = ".config/qrcard"
)

// GlobalConfigPath returns the path to the global config file.
func GlobalConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, GlobalConfigDir, ConfigFileName)
}

// GlobalConfigDirPath returns the directory for global config.
func GlobalConfigDirPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, GlobalConfigDir)
}
