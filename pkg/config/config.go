// Package config loads and persists the client configuration.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const configFileName = "config.yaml"

// Defaults applied when a field is absent from the config file.
const (
	DefaultBaseURL       = "http://localhost:5000"
	DefaultMaxRetries    = 2
	DefaultTranscriptCap = 50
)

// Default durations applied when a field is absent from the config file.
const (
	DefaultRequestTimeout   = 45 * time.Second
	DefaultInactivityWindow = 30 * time.Minute
)

// AppConfig is the persisted client configuration.
type AppConfig struct {
	BaseURL          string   `yaml:"base_url"`
	RequestTimeout   Duration `yaml:"request_timeout"`
	MaxRetries       int      `yaml:"max_retries"`
	TranscriptCap    int      `yaml:"transcript_cap"`
	InactivityWindow Duration `yaml:"inactivity_window"`
	LogLevel         string   `yaml:"log_level"`
}

// GetConfigDir returns the directory holding the config and state files.
func GetConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "yonatan"), nil
}

// GetConfigPath returns the full path of the config file.
func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

func defaults() *AppConfig {
	return &AppConfig{
		BaseURL:          DefaultBaseURL,
		RequestTimeout:   Duration(DefaultRequestTimeout),
		MaxRetries:       DefaultMaxRetries,
		TranscriptCap:    DefaultTranscriptCap,
		InactivityWindow: Duration(DefaultInactivityWindow),
	}
}

// LoadAppConfig reads the config file, falling back to defaults when the file
// is missing, then applies environment overrides. A .env file in the working
// directory is honored the same way the backend's tooling does.
func LoadAppConfig() (*AppConfig, error) {
	_ = godotenv.Load()

	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	cfg := defaults()
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	applyDefaults(cfg)
	applyEnv(cfg)
	return cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = Duration(DefaultRequestTimeout)
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.TranscriptCap <= 0 {
		cfg.TranscriptCap = DefaultTranscriptCap
	}
	if cfg.InactivityWindow <= 0 {
		cfg.InactivityWindow = Duration(DefaultInactivityWindow)
	}
}

func applyEnv(cfg *AppConfig) {
	if v := os.Getenv("YONATAN_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("YONATAN_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("YONATAN_TRANSCRIPT_CAP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TranscriptCap = n
		}
	}
	if v := os.Getenv("YONATAN_REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.RequestTimeout = Duration(d)
		}
	}
}

// SaveAppConfig writes the config file, creating the directory if needed.
func SaveAppConfig(cfg *AppConfig) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
