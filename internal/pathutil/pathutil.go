// Package pathutil provides path helpers shared by the config, logging and
// command layers.
package pathutil

import (
	"os"
	"path/filepath"
	"strings"
)

// AppName is the directory name used under the XDG base directories.
const AppName = "nuext"

// ExpandHome replaces a leading ~ in path with the user's home directory.
// If the home directory cannot be determined, the path is returned unchanged.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

// ConfigDir returns $XDG_CONFIG_HOME/nuext, falling back to ~/.config/nuext.
func ConfigDir() string {
	return xdgDir("XDG_CONFIG_HOME", "~/.config")
}

// StateDir returns $XDG_STATE_HOME/nuext, falling back to ~/.local/state/nuext.
func StateDir() string {
	return xdgDir("XDG_STATE_HOME", "~/.local/state")
}

func xdgDir(env, fallback string) string {
	base := os.Getenv(env)
	if base == "" {
		base = fallback
	}
	return filepath.Join(ExpandHome(base), AppName)
}

// HasExtension reports whether path's final element carries the extension
// ext (given without the leading dot). The comparison is case-sensitive and
// a dotfile such as ".nu" has no extension.
func HasExtension(path, ext string) bool {
	if path == "" || ext == "" {
		return false
	}
	base := filepath.Base(path)
	idx := strings.LastIndex(base, ".")
	if idx <= 0 {
		return false
	}
	return base[idx+1:] == ext
}
