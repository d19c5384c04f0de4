package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables that override the config file.
const (
	EnvServerURL = "TCM_SERVER_URL"
	EnvConfig    = "TCM_CONFIG"
)

// Config holds application configuration.
type Config struct {
	ServerURL             string `json:"serverUrl"`
	DefaultFileName       string `json:"defaultFileName"`
	ConfirmDelete         bool   `json:"confirmDelete"`
	RequestTimeoutSeconds int    `json:"requestTimeoutSeconds"`
	LogFile               string `json:"logFile"`
	CacheFile             string `json:"cacheFile"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	dir, err := configDir()
	if err != nil {
		dir = "."
	}
	return Config{
		ServerURL:             "http://localhost:5001",
		DefaultFileName:       "test_cases.json",
		ConfirmDelete:         true,
		RequestTimeoutSeconds: 15,
		LogFile:               filepath.Join(dir, "tcm.log"),
		CacheFile:             filepath.Join(dir, "cache.db"),
	}
}

// RequestTimeout returns the per-request timeout.
func (c *Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// LoadConfig reads config from the JSON file.
// Creates the file with defaults if it doesn't exist.
// Missing fields keep their defaults; environment overrides apply last.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		// Non-fatal: defaults are usable even if the file can't be written
		_ = SaveConfig(path, &config)
	} else if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	config.applyEnv()

	defaults := DefaultConfig()
	if config.DefaultFileName == "" {
		config.DefaultFileName = defaults.DefaultFileName
	}
	if !strings.HasSuffix(config.DefaultFileName, ".json") {
		config.DefaultFileName += ".json"
	}
	if config.RequestTimeoutSeconds <= 0 {
		config.RequestTimeoutSeconds = defaults.RequestTimeoutSeconds
	}

	return &config, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvServerURL)); v != "" {
		c.ServerURL = v
	}
}

// SaveConfig writes config to the JSON file.
// Creates the directory if it doesn't exist.
func SaveConfig(path string, config *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// LoadEnv reads KEY=value pairs from the given .env files into the
// environment. Files that don't exist are skipped; variables already set win.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return err
		}
	}
	return nil
}

// ConfigFilePath returns $TCM_CONFIG when set, else the default path.
func ConfigFilePath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfig)); p != "" {
		return p, nil
	}
	return DefaultConfigFilePath()
}

// DefaultConfigFilePath returns the default config path: ~/.config/tcm/config.json
func DefaultConfigFilePath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

func configDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "tcm"), nil
}
