package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// FilePermissions is the default permission mode for regular files
	FilePermissions = 0644
	// DirPermissions is the default permission mode for directories
	DirPermissions = 0755
)

var (
	// ConfigDir is the global configuration directory (~/.pgman)
	ConfigDir string

	// DatabasePath is the SQLite database file for restore history
	DatabasePath string
)

// Initialize sets up the configuration directory.
// It creates ~/.pgman/ if it doesn't exist.
func Initialize() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	ConfigDir = filepath.Join(homeDir, ".pgman")
	DatabasePath = filepath.Join(ConfigDir, "pgman.db")

	if err := os.MkdirAll(ConfigDir, DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", ConfigDir, err)
	}

	return nil
}

// EnvOr returns the value of the environment variable named by key,
// or fallback when the variable is unset or empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
