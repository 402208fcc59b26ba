package cli

import (
	"os"
	"path/filepath"
)

// cacheDir returns the default cache directory (~/.cache/depdrift).
func cacheDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
