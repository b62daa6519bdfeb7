package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	DataDir      string `yaml:"data_dir"`
	PolicyPath   string `yaml:"policy_path"`
	LogLevel     string `yaml:"log_level"`
	UserID       int    `yaml:"user_id"`
	Manufacturer string `yaml:"manufacturer"`
	Product      string `yaml:"product"`
}

// Load loads configuration from multiple sources with precedence:
// 1. Environment variables
// 2. ./.env.local (dotenv) - walks up parent directories to find it
// 3. ~/.config/prefstore/config.yaml (YAML)
func Load() (*Config, error) {
	cfg := &Config{
		LogLevel: "info",
	}

	// Load .env.local if it exists (walking up parent directories)
	if envPath := findEnvLocal(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	// Load ~/.config/prefstore/config.yaml if it exists.
	// The YAML config is optional, so a missing file is not an error.
	_ = loadYAMLConfig(cfg)

	// Override with environment variables
	if dataDir := os.Getenv("PREFSTORE_DATA_DIR"); dataDir != "" {
		cfg.DataDir = dataDir
	}
	if policyPath := os.Getenv("PREFSTORE_POLICY"); policyPath != "" {
		cfg.PolicyPath = policyPath
	}
	if logLevel := os.Getenv("PREFSTORE_LOG_LEVEL"); logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if user := os.Getenv("PREFSTORE_USER"); user != "" {
		id, err := strconv.Atoi(user)
		if err != nil {
			return nil, fmt.Errorf("invalid PREFSTORE_USER %q: %w", user, err)
		}
		cfg.UserID = id
	}
	if manufacturer := os.Getenv("PREFSTORE_MANUFACTURER"); manufacturer != "" {
		cfg.Manufacturer = manufacturer
	}
	if product := os.Getenv("PREFSTORE_PRODUCT"); product != "" {
		cfg.Product = product
	}

	// Set defaults if not configured
	if cfg.DataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		cfg.DataDir = filepath.Join(homeDir, ".local", "share", "prefstore")
	}

	return cfg, nil
}

// loadYAMLConfig loads configuration from ~/.config/prefstore/config.yaml
func loadYAMLConfig(cfg *Config) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(homeDir, ".config", "prefstore", "config.yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// findEnvLocal searches for .env.local starting from cwd and walking up
// parent directories. Stops at the user's home directory.
// Returns the path to .env.local if found, empty string otherwise.
func findEnvLocal() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// If we can't get home dir, just check cwd
		if _, err := os.Stat(".env.local"); err == nil {
			return ".env.local"
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Clean paths for reliable comparison
	homeDir = filepath.Clean(homeDir)
	dir := filepath.Clean(cwd)

	for {
		envPath := filepath.Join(dir, ".env.local")
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}

		// Stop if we've reached home directory
		if dir == homeDir {
			break
		}

		// Get parent directory
		parent := filepath.Dir(dir)

		// Stop if we've reached the filesystem root
		if parent == dir {
			break
		}

		dir = parent
	}

	return ""
}
