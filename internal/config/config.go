package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// FileName is the name of the per-user config file in the home directory.
const FileName = ".lookoutrc"

// Load reads configuration from standard locations with environment overrides.
// Search order: ~/.lookoutrc, $XDG_CONFIG_HOME/lookout/config.toml, ~/.config/lookout/config.toml
func Load() (*Config, error) {
	cfg := &Config{Journal: JournalConfig{Enabled: true}}

	path := findConfigFile()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)

	return cfg, nil
}

// LoadFrom reads configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{Journal: JournalConfig{Enabled: true}}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// DefaultPath returns the path used when creating a new config file.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return FileName
	}
	return filepath.Join(home, FileName)
}

// findConfigFile returns the first existing config file path.
func findConfigFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	paths := []string{
		filepath.Join(home, FileName),
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	paths = append(paths, filepath.Join(xdgConfig, "lookout", "config.toml"))

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// applyEnvOverrides applies environment variable overrides to the config.
// A .env file in the working directory is loaded first; variables already
// set in the environment win over it.
func applyEnvOverrides(cfg *Config) {
	_ = godotenv.Load()

	// Backend
	if v := os.Getenv("LOOKOUT_BACKEND_URL"); v != "" {
		cfg.Backend.URL = v
	}
	if v := os.Getenv("LOOKOUT_BACKEND_KEY"); v != "" {
		cfg.Backend.Key = v
	}
	if v := os.Getenv("LOOKOUT_BACKEND_BUCKET"); v != "" {
		cfg.Backend.Bucket = v
	}
	if v := os.Getenv("LOOKOUT_BACKEND_TIMEOUT"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Backend.Timeout = i
		}
	}

	// TUI
	if v := os.Getenv("LOOKOUT_TUI_THEME"); v != "" {
		cfg.TUI.Theme = v
	}
	if v := os.Getenv("LOOKOUT_TUI_STREAM_INTERVAL"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.TUI.StreamInterval = i
		}
	}

	// Journal
	if v := os.Getenv("LOOKOUT_JOURNAL_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Journal.Enabled = b
		}
	}
	if v := os.Getenv("LOOKOUT_JOURNAL_PATH"); v != "" {
		cfg.Journal.Path = v
	}

	// Server
	if v := os.Getenv("LOOKOUT_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("LOOKOUT_SERVER_ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = strings.Split(v, ",")
	}

	// Log
	if v := os.Getenv("LOOKOUT_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOOKOUT_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
}
