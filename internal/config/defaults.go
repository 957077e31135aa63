package config

import (
	"github.com/nix-mox/nuext/internal/metrics"
)

// boolPtr returns a pointer to a bool value.
func boolPtr(b bool) *bool {
	return &b
}

// Default returns a Config with all defaults populated. Script paths are
// left empty: the command table carries their defaults.
func Default() *Config {
	return &Config{
		Interpreter: "nu",
		Extension:   "nu",
		Exec: ExecConfig{
			Timeout: "0",
		},
		Metrics: MetricsConfig{
			Enabled:  boolPtr(true),
			Textfile: metrics.DefaultTextfile,
		},
		Watch: WatchConfig{
			SecurityValidation: boolPtr(true),
			Lint:               boolPtr(false),
			Debounce:           "300ms",
			Ignore:             []string{".git", "node_modules", "result", ".direnv"},
		},
		Doctor: DoctorConfig{
			MinVersion: "0.90.0",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// applyDefaults fills every unset field of cfg from Default.
func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Interpreter == "" {
		cfg.Interpreter = def.Interpreter
	}
	if cfg.Extension == "" {
		cfg.Extension = def.Extension
	}
	if cfg.Exec.Timeout == "" {
		cfg.Exec.Timeout = def.Exec.Timeout
	}
	if cfg.Metrics.Enabled == nil {
		cfg.Metrics.Enabled = def.Metrics.Enabled
	}
	if cfg.Metrics.Textfile == "" {
		cfg.Metrics.Textfile = def.Metrics.Textfile
	}
	if cfg.Watch.SecurityValidation == nil {
		cfg.Watch.SecurityValidation = def.Watch.SecurityValidation
	}
	if cfg.Watch.Lint == nil {
		cfg.Watch.Lint = def.Watch.Lint
	}
	if cfg.Watch.Debounce == "" {
		cfg.Watch.Debounce = def.Watch.Debounce
	}
	if cfg.Watch.Ignore == nil {
		cfg.Watch.Ignore = def.Watch.Ignore
	}
	if cfg.Doctor.MinVersion == "" {
		cfg.Doctor.MinVersion = def.Doctor.MinVersion
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
}

// defaultConfigTemplate is written on first run. Every setting is commented
// out so the file documents the defaults without pinning them.
const defaultConfigTemplate = `# nuext configuration
#
# Nushell executable used for every command and for the language server.
# interpreter: nu

# Extension that marks a file as a Nushell script.
# extension: nu

# project:
#   # Pin the automation project root. By default it is the git root of the
#   # active file, or of the working directory.
#   root: ~/src/nix-mox

# Automation scripts, relative to the project root.
# scripts:
#   test: scripts/tests/unit/comprehensive-config-tests.nu
#   validate_security: scripts/core/security-validation.nu
#   show_metrics: scripts/tools/size-dashboard.nu
#   generate_docs: scripts/tools/generate-docs.nu
#   setup_wizard: scripts/core/setup.nu

# exec:
#   # Kill the interpreter after this long. 0 waits forever.
#   timeout: 0
#   # Show only the last N bytes of stderr in error messages. 0 shows all.
#   max_error_bytes: 0
#   env:
#     NIX_MOX_PROFILE: dev

# metrics:
#   # Count invocations and set NIX_MOX_METRICS_ENABLED=true for scripts.
#   enabled: true
#   textfile: /tmp/nix-mox-metrics.prom

# watch:
#   security_validation: true
#   lint: false
#   debounce: 300ms
#   ignore: [.git, node_modules, result, .direnv]

# doctor:
#   min_version: 0.90.0

# log:
#   file: ~/.local/state/nuext/nuext.log
#   level: info
#   audit_file: ~/.local/state/nuext/audit.log
`
