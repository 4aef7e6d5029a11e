package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/averey/spyglass/internal/logger"
)

// Config holds all Spyglass configuration
type Config struct {
	Endpoint      string `json:"endpoint"`       // S3-compatible endpoint host[:port]
	DefaultRegion string `json:"default_region"` // Region used when none is given on the command line
	Secure        bool   `json:"secure"`         // Use TLS when talking to the endpoint
	PathStyle     bool   `json:"path_style"`     // Force path-style bucket addressing
	DownloadDir   string `json:"download_dir"`   // Where downloaded objects are written
	DateFormat    string `json:"date_format"`    // Go time layout for the list's modified column
	DateWidth     int    `json:"date_width"`     // Column width reserved for the date
	DefaultBucket string `json:"default_bucket"` // Bucket opened when none is given on the command line
	MaxVisited    int    `json:"max_visited"`    // Visited prefixes remembered for path suggestions
}

const (
	defaultDateFormat = "2006-01-02 15:04:05"
	defaultDateWidth  = 19
	defaultMaxVisited = 100
)

// Load reads config from ~/.config/spyglass/config.json
func Load() *Config {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		logger.Error("Failed to get home directory: %v", err)
		homeDir = "."
	}
	configDir := filepath.Join(homeDir, ".config", "spyglass")
	configPath := filepath.Join(configDir, "config.json")

	if err := os.MkdirAll(configDir, 0755); err != nil {
		logger.Error("Failed to create config directory %s: %v", configDir, err)
	}

	defaultConfig := Defaults(homeDir)

	data, err := os.ReadFile(configPath)
	if err != nil {
		if err := Save(defaultConfig); err != nil {
			logger.Warn("Failed to save default config: %v", err)
		}
		return defaultConfig
	}

	config := &Config{}
	if err := json.Unmarshal(data, config); err != nil {
		logger.Warn("Failed to parse config file %s: %v, using defaults", configPath, err)
		return defaultConfig
	}

	Validate(config, defaultConfig)
	return config
}

// Defaults returns the built-in configuration rooted at homeDir.
func Defaults(homeDir string) *Config {
	return &Config{
		Endpoint:      "s3.amazonaws.com",
		DefaultRegion: "us-east-1",
		Secure:        true,
		DownloadDir:   filepath.Join(homeDir, "Downloads"),
		DateFormat:    defaultDateFormat,
		DateWidth:     defaultDateWidth,
		MaxVisited:    defaultMaxVisited,
	}
}

// Validate fills empty fields from defaults and clamps out-of-range values.
func Validate(config, defaults *Config) {
	if config.Endpoint == "" {
		config.Endpoint = defaults.Endpoint
	}
	if config.DefaultRegion == "" {
		config.DefaultRegion = defaults.DefaultRegion
	}
	if config.DownloadDir == "" {
		config.DownloadDir = defaults.DownloadDir
	}
	if config.DateFormat == "" {
		config.DateFormat = defaults.DateFormat
	}
	if config.DateWidth <= 0 {
		config.DateWidth = defaults.DateWidth
	} else if config.DateWidth > 40 {
		logger.Warn("DateWidth too high (%d), using maximum of 40", config.DateWidth)
		config.DateWidth = 40
	}
	if config.MaxVisited <= 0 {
		config.MaxVisited = defaults.MaxVisited
	} else if config.MaxVisited > 10000 {
		logger.Warn("MaxVisited too high (%d), using maximum of 10000", config.MaxVisited)
		config.MaxVisited = 10000
	}
}

// Save writes config to ~/.config/spyglass/config.json
func Save(config *Config) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		logger.Error("Failed to get home directory: %v", err)
		return fmt.Errorf("cannot get home directory: %w", err)
	}
	configDir := filepath.Join(homeDir, ".config", "spyglass")
	configPath := filepath.Join(configDir, "config.json")

	if err := os.MkdirAll(configDir, 0755); err != nil {
		logger.Error("Failed to create config directory %s: %v", configDir, err)
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		logger.Error("Failed to marshal config: %v", err)
		return fmt.Errorf("cannot marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		logger.Error("Failed to write config file %s: %v", configPath, err)
		return fmt.Errorf("cannot write config file: %w", err)
	}

	return nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "spyglass", "config.json"), nil
}
