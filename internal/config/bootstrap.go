package config

import (
	"errors"
	"os"
	"path/filepath"
)

// EnsureUserConfig returns the path of the user's config file, writing
// the defaults there on first run.
func EnsureUserConfig(dataDir string) (string, error) {
	userPath := filepath.Join(dataDir, "config.yml")

	_, err := os.Stat(userPath)
	if err == nil {
		return userPath, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	cfg, _ := NormalizeAndValidate(DefaultConfig())
	if err := SaveAtomic(userPath, cfg); err != nil {
		return "", err
	}
	return userPath, nil
}
