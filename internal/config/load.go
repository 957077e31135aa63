package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/nix-mox/nuext/internal/elog"
	"github.com/nix-mox/nuext/internal/pathutil"
)

// Load reads the configuration at path. An empty path means DefaultPath(),
// which is created from the commented template when missing; an explicit
// path that does not exist is an error. Unset fields take their defaults
// and paths containing ~ are expanded.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	elog.Debug("config: loading %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			elog.Debug("config: file not found, creating defaults")
			if _, writeErr := WriteDefault(path); writeErr != nil {
				elog.Warn("config: failed to create default config: %v", writeErr)
			}
			cfg := Default()
			expandPaths(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	applyDefaults(cfg)
	expandPaths(cfg)
	return cfg, nil
}

// expandPaths expands ~ in every path field.
func expandPaths(cfg *Config) {
	cfg.Interpreter = pathutil.ExpandHome(cfg.Interpreter)
	cfg.Project.Root = pathutil.ExpandHome(cfg.Project.Root)
	cfg.Metrics.Textfile = pathutil.ExpandHome(cfg.Metrics.Textfile)
	cfg.Log.File = pathutil.ExpandHome(cfg.Log.File)
	cfg.Log.AuditFile = pathutil.ExpandHome(cfg.Log.AuditFile)
}
