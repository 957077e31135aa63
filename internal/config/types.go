// Package config provides the nuext configuration file: types, defaults,
// strict YAML parsing, validation and the XDG location it lives at.
package config

// Config is the top-level configuration, stored at
// ~/.config/nuext/config.yaml.
type Config struct {
	// Interpreter is the Nushell executable every command runs.
	Interpreter string `yaml:"interpreter,omitempty"`
	// Extension is the dialect file extension without the dot.
	Extension string        `yaml:"extension,omitempty" validate:"omitempty,alphanum"`
	Project   ProjectConfig `yaml:"project,omitempty"`
	Scripts   ScriptsConfig `yaml:"scripts,omitempty"`
	Exec      ExecConfig    `yaml:"exec,omitempty"`
	Metrics   MetricsConfig `yaml:"metrics,omitempty"`
	Watch     WatchConfig   `yaml:"watch,omitempty"`
	Doctor    DoctorConfig  `yaml:"doctor,omitempty"`
	Log       LogConfig     `yaml:"log,omitempty"`
}

// ProjectConfig locates the automation project.
type ProjectConfig struct {
	// Root pins the project root. Empty means detect it from git.
	Root string `yaml:"root,omitempty"`
}

// ScriptsConfig holds the automation scripts, relative to the project root.
type ScriptsConfig struct {
	Test             string `yaml:"test,omitempty"`
	ValidateSecurity string `yaml:"validate_security,omitempty"`
	ShowMetrics      string `yaml:"show_metrics,omitempty"`
	GenerateDocs     string `yaml:"generate_docs,omitempty"`
	SetupWizard      string `yaml:"setup_wizard,omitempty"`
}

// ByCommand returns the non-empty script paths keyed by command name.
func (s ScriptsConfig) ByCommand() map[string]string {
	m := make(map[string]string, 5)
	for name, path := range map[string]string{
		"test":              s.Test,
		"validate-security": s.ValidateSecurity,
		"show-metrics":      s.ShowMetrics,
		"generate-docs":     s.GenerateDocs,
		"setup-wizard":      s.SetupWizard,
	} {
		if path != "" {
			m[name] = path
		}
	}
	return m
}

// ExecConfig controls how the interpreter process is run.
type ExecConfig struct {
	// Timeout bounds each run, as a Go duration. Empty or "0" waits forever.
	Timeout string `yaml:"timeout,omitempty" validate:"omitempty,duration"`
	// MaxErrorBytes keeps only the tail of stderr in error messages.
	MaxErrorBytes int `yaml:"max_error_bytes,omitempty" validate:"gte=0"`
	// Env is added to the interpreter environment.
	Env map[string]string `yaml:"env,omitempty" validate:"dive,keys,required,endkeys"`
}

// MetricsConfig controls invocation metrics.
type MetricsConfig struct {
	// Enabled counts invocations and sets NIX_MOX_METRICS_ENABLED for
	// scripts. Unset means enabled.
	Enabled  *bool  `yaml:"enabled,omitempty"`
	Textfile string `yaml:"textfile,omitempty"`
}

// IsEnabled reports whether metrics are on.
func (m MetricsConfig) IsEnabled() bool {
	return m.Enabled == nil || *m.Enabled
}

// WatchConfig controls the watch command.
type WatchConfig struct {
	// SecurityValidation runs validate-security on every changed file.
	SecurityValidation *bool `yaml:"security_validation,omitempty"`
	// Lint reports diagnostics for every changed file.
	Lint *bool `yaml:"lint,omitempty"`
	// Debounce is the quiet period before a changed file is processed.
	Debounce string `yaml:"debounce,omitempty" validate:"omitempty,duration"`
	// Ignore lists directory names that are not watched.
	Ignore []string `yaml:"ignore,omitempty" validate:"dive,required"`
}

// DoctorConfig controls the doctor command.
type DoctorConfig struct {
	// MinVersion is the oldest supported interpreter version.
	MinVersion string `yaml:"min_version,omitempty" validate:"omitempty,semver"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	File      string `yaml:"file,omitempty"`
	Level     string `yaml:"level,omitempty" validate:"omitempty,loglevel"`
	AuditFile string `yaml:"audit_file,omitempty"`
}
