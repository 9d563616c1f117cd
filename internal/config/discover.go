package config

import (
	"os"
	"path/filepath"
)

const (
	configDirName  = ".flistflat"
	configFileName = "config.yaml"

	// ConfigEnvVar overrides config file discovery when set.
	ConfigEnvVar = "FLISTFLAT_CONFIG"
)

// FindConfigPath returns the config file to load, in priority order:
//  1. FLISTFLAT_CONFIG environment variable (if set)
//  2. the nearest .flistflat/config.yaml in startDir or one of its parents
//  3. .flistflat/config.yaml in startDir (may not exist; LoadConfig then
//     falls back to defaults)
func FindConfigPath(startDir string) string {
	if path := os.Getenv(ConfigEnvVar); path != "" {
		return path
	}

	current, err := filepath.Abs(startDir)
	if err != nil {
		current = startDir
	}
	fallback := filepath.Join(current, configDirName, configFileName)

	for {
		candidate := filepath.Join(current, configDirName, configFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}

		parent := filepath.Dir(current)
		if parent == current {
			// Reached filesystem root
			break
		}
		current = parent
	}

	return fallback
}
