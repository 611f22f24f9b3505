package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all environment-based configuration for floccus-sync.
type Config struct {
	// RemoteBaseURL is the base URL of the remote bookmark API.
	RemoteBaseURL string `env:"FLOCCUS_REMOTE_URL"`
	// RemoteBearerToken authenticates requests to the remote API.
	RemoteBearerToken string `env:"FLOCCUS_REMOTE_TOKEN"`

	// LocalVaultDir is the directory holding the local bookmark document
	// and its change-watch target.
	LocalVaultDir string `env:"FLOCCUS_LOCAL_DIR"`

	// MappingStorePath is where the bbolt-backed id mapping table lives.
	MappingStorePath string `env:"FLOCCUS_MAPPING_STORE" envDefault:"~/.floccus-sync/mapping.db"`

	// DeviceName identifies this client to the remote API. Defaults to
	// the system hostname.
	DeviceName string `env:"FLOCCUS_DEVICE_NAME"`

	// PollInterval is the base delay between sync runs; the CLI adds
	// jitter on top of it to avoid synchronized retries across devices.
	PollInterval time.Duration `env:"FLOCCUS_POLL_INTERVAL" envDefault:"5m"`

	// Environment controls log format: "production" emits JSON.
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
}

// warnInsecureEnvFile checks whether the .env file (if present) has
// overly permissive permissions. On Unix systems, group or world
// readable files risk exposing the bearer token to other users.
func warnInsecureEnvFile() {
	if runtime.GOOS == "windows" {
		return
	}

	info, err := os.Stat(".env")
	if err != nil {
		return // file does not exist, nothing to check
	}

	mode := info.Mode().Perm()
	if mode&0o077 != 0 {
		log.Printf("WARNING: .env file has insecure permissions %04o; recommended 0600", mode)
	}
}

// Load reads configuration from environment variables, first attempting
// to load a .env file if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	warnInsecureEnvFile()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.DeviceName == "" {
		hostname, err := os.Hostname()
		if err != nil || hostname == "" {
			hostname = "floccus-sync"
		}
		cfg.DeviceName = hostname
	}

	expanded, err := expandHome(cfg.MappingStorePath)
	if err != nil {
		return nil, fmt.Errorf("expanding FLOCCUS_MAPPING_STORE: %w", err)
	}
	cfg.MappingStorePath = expanded

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.RemoteBaseURL == "" {
		return fmt.Errorf("FLOCCUS_REMOTE_URL is required")
	}
	if c.RemoteBearerToken == "" {
		return fmt.Errorf("FLOCCUS_REMOTE_TOKEN is required")
	}
	if c.LocalVaultDir == "" {
		return fmt.Errorf("FLOCCUS_LOCAL_DIR is required")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("FLOCCUS_POLL_INTERVAL must be positive")
	}
	return nil
}

// expandHome resolves a leading "~" in path to the user's home
// directory; paths without one pass through unchanged.
func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// IsProduction returns true when the environment is set to production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
