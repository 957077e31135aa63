package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nix-mox/nuext/internal/pathutil"
)

// Dir returns the nuext configuration directory, $XDG_CONFIG_HOME/nuext or
// ~/.config/nuext.
func Dir() string {
	return pathutil.ConfigDir()
}

// EnsureDir creates the configuration directory with user-only permissions.
func EnsureDir() error {
	if err := os.MkdirAll(Dir(), 0o700); err != nil {
		return fmt.Errorf("ensure config dir: %w", err)
	}
	return nil
}

// DefaultPath returns the full path to the configuration file.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}
