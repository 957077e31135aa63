package cmd

import (
	"fmt"
	"os"

	"github.com/nix-mox/nuext/internal/assets"
	"github.com/nix-mox/nuext/internal/audit"
	"github.com/nix-mox/nuext/internal/commands"
	"github.com/nix-mox/nuext/internal/config"
	"github.com/nix-mox/nuext/internal/elog"
	"github.com/nix-mox/nuext/internal/extension"
	"github.com/nix-mox/nuext/internal/host"
	"github.com/nix-mox/nuext/internal/metrics"
	"github.com/nix-mox/nuext/internal/process"
	"github.com/nix-mox/nuext/internal/project"
)

// newRunner creates the process runner. Tests replace it with a stub.
var newRunner = func() process.Runner {
	return process.NewExecRunner()
}

// app is an activated extension attached to the terminal host.
type app struct {
	cfg        *config.Config
	dispatcher *commands.Dispatcher
	ext        *extension.Extension
	host       *host.Terminal
	recorder   *metrics.Recorder
	auditFile  *os.File
}

// settingsFrom maps the configuration onto dispatcher settings.
func settingsFrom(cfg *config.Config) commands.Settings {
	return commands.Settings{
		Interpreter:    cfg.Interpreter,
		Extension:      cfg.Extension,
		Scripts:        cfg.Scripts.ByCommand(),
		Env:            cfg.Exec.Env,
		MetricsEnabled: cfg.Metrics.IsEnabled(),
		Timeout:        cfg.TimeoutDuration(),
		MaxErrorBytes:  cfg.Exec.MaxErrorBytes,
	}
}

// newApp builds the dispatcher and activates the extension against a fresh
// terminal host. The caller must call close.
func newApp(cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg}

	var auditLog *audit.Logger
	auditPath := cfg.Log.AuditFile
	if auditPath == "" {
		auditPath = audit.DefaultPath()
	}
	f, err := audit.OpenFile(auditPath)
	if err != nil {
		elog.Warn("audit log disabled: %v", err)
	} else {
		a.auditFile = f
		auditLog = audit.NewLogger(f)
	}

	opts := []commands.Option{
		commands.WithAudit(auditLog),
		commands.WithRootResolver(func(activePath string) string {
			return project.ResolveRoot(cfg.Project.Root, activePath)
		}),
	}
	if cfg.Metrics.IsEnabled() {
		a.recorder = metrics.NewRecorder()
		opts = append(opts, commands.WithRecorder(a.recorder))
	}
	a.dispatcher = commands.NewDispatcher(newRunner(), settingsFrom(cfg), opts...)

	bundle, err := assets.Load()
	if err != nil {
		a.close()
		return nil, fmt.Errorf("load extension assets: %w", err)
	}

	a.ext = extension.New(a.dispatcher, bundle, extension.WithAudit(auditLog))
	a.host = host.NewTerminal()
	if err := a.ext.Activate(a.host); err != nil {
		a.close()
		return nil, fmt.Errorf("activate extension: %w", err)
	}
	return a, nil
}

// flushMetrics rewrites the metrics textfile when metrics are enabled.
func (a *app) flushMetrics() {
	if a.recorder == nil {
		return
	}
	path := a.cfg.Metrics.Textfile
	if path == "" {
		path = metrics.DefaultTextfile
	}
	if err := a.recorder.WriteTextfile(path); err != nil {
		elog.Warn("write metrics: %v", err)
	}
}

// close deactivates the extension, writes metrics and closes the audit log.
func (a *app) close() {
	if a.ext != nil && a.ext.State() == extension.Active {
		_ = a.ext.Deactivate()
	}
	a.flushMetrics()
	if a.auditFile != nil {
		_ = a.auditFile.Close()
		a.auditFile = nil
	}
}
