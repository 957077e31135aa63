// Package commands implements the extension's command dispatcher: a static
// table of command definitions and one executor that turns an invocation
// into exactly one external process run and exactly one notification.
package commands

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/nix-mox/nuext/internal/audit"
	"github.com/nix-mox/nuext/internal/elog"
	"github.com/nix-mox/nuext/internal/host"
	"github.com/nix-mox/nuext/internal/pathutil"
	"github.com/nix-mox/nuext/internal/process"
)

// Precondition failures. Execute reports them as error notifications and
// never starts a process.
var (
	ErrNoActiveFile   = errors.New("no active file")
	ErrNotDialectFile = errors.New("not a Nushell script")
)

// User-visible precondition texts.
const (
	TextNoActiveFile   = "No active file"
	TextNotDialectFile = "Current file is not a Nushell script"
)

// MetricsEnvVar is set to "true" in the child environment when metrics
// collection is enabled.
const MetricsEnvVar = "NIX_MOX_METRICS_ENABLED"

// Severity classifies a notification.
type Severity int

const (
	Info Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "info"
}

// Notification is the single user-visible result of an invocation.
type Notification struct {
	Severity Severity
	Text     string
}

// Invocation is one dispatch of a command.
type Invocation struct {
	ID      string
	Command Kind
	Path    string
}

// Result labels passed to a Recorder.
const (
	ResultSuccess      = "success"
	ResultFailure      = "failure"
	ResultTimeout      = "timeout"
	ResultPrecondition = "precondition"
	ResultSpawnError   = "spawn_error"
)

// Recorder observes finished invocations.
type Recorder interface {
	Observe(command, result string, duration time.Duration)
}

// Settings are the user-configurable parts of command execution.
type Settings struct {
	// Interpreter is the executable every command runs.
	Interpreter string
	// Extension is the dialect file extension, without the dot.
	Extension string
	// Scripts overrides Definition.Script, keyed by command name.
	Scripts map[string]string
	// Dir is the working directory when no RootResolver is set.
	Dir string
	// Env is added to the child environment.
	Env map[string]string
	// MetricsEnabled sets MetricsEnvVar in the child environment.
	MetricsEnabled bool
	// Timeout bounds each process run. Zero waits forever.
	Timeout time.Duration
	// MaxErrorBytes keeps only the tail of stderr in failure notifications.
	// Zero shows stderr verbatim.
	MaxErrorBytes int
}

// DefaultSettings returns settings matching the stock extension.
func DefaultSettings() Settings {
	return Settings{
		Interpreter: "nu",
		Extension:   "nu",
	}
}

// RootResolver returns the working directory for an invocation given the
// active document path, which may be empty.
type RootResolver func(activePath string) string

// Dispatcher executes commands. It holds no per-invocation state and may be
// shared between goroutines.
type Dispatcher struct {
	runner   process.Runner
	settings Settings
	recorder Recorder
	audit    *audit.Logger
	root     RootResolver
	newID    func() string
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(d *Dispatcher) { d.recorder = r }
}

// WithAudit sets the audit logger.
func WithAudit(l *audit.Logger) Option {
	return func(d *Dispatcher) { d.audit = l }
}

// WithRootResolver sets how the working directory is chosen per invocation.
func WithRootResolver(fn RootResolver) Option {
	return func(d *Dispatcher) { d.root = fn }
}

// NewDispatcher creates a dispatcher that runs processes through runner.
func NewDispatcher(runner process.Runner, settings Settings, opts ...Option) *Dispatcher {
	if settings.Interpreter == "" {
		settings.Interpreter = "nu"
	}
	if settings.Extension == "" {
		settings.Extension = "nu"
	}
	d := &Dispatcher{
		runner:   runner,
		settings: settings,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Interpreter returns the configured interpreter executable.
func (d *Dispatcher) Interpreter() string {
	return d.settings.Interpreter
}

// ScriptPath returns the script a command runs, after overrides. It is empty
// for commands that run the active file.
func (d *Dispatcher) ScriptPath(def Definition) string {
	if s, ok := d.settings.Scripts[def.Name]; ok && s != "" {
		return s
	}
	return def.Script
}

// Check validates the preconditions of def against the active document.
// It returns ErrNoActiveFile or ErrNotDialectFile.
func (d *Dispatcher) Check(def Definition, path string, ok bool) error {
	if !def.RequiresFile {
		return nil
	}
	if !ok || path == "" {
		return ErrNoActiveFile
	}
	if !pathutil.HasExtension(path, d.settings.Extension) {
		return ErrNotDialectFile
	}
	return nil
}

// Spec builds the process spec for an invocation.
func (d *Dispatcher) Spec(def Definition, inv Invocation) process.Spec {
	script := d.ScriptPath(def)
	args := make([]string, 0, len(def.Args))
	for _, a := range def.Args {
		switch a {
		case placeholderFile:
			a = inv.Path
		case placeholderScript:
			a = script
		}
		args = append(args, a)
	}

	var env map[string]string
	if len(d.settings.Env) > 0 || d.settings.MetricsEnabled {
		env = maps.Clone(d.settings.Env)
		if env == nil {
			env = make(map[string]string, 1)
		}
		if d.settings.MetricsEnabled {
			env[MetricsEnvVar] = "true"
		}
	}

	dir := d.settings.Dir
	if d.root != nil {
		dir = d.root(inv.Path)
	}

	return process.Spec{
		Name:    d.settings.Interpreter,
		Args:    args,
		Dir:     dir,
		Env:     env,
		Timeout: d.settings.Timeout,
	}
}

// Execute runs the command kind against the workspace's active document.
// Preconditions and process failures are reported through the returned
// Notification with a nil error. A non-nil error means the interpreter could
// not be started (a *process.SpawnError) and no notification applies.
func (d *Dispatcher) Execute(ctx context.Context, kind Kind, ws host.Workspace) (Notification, error) {
	def, ok := Lookup(kind)
	if !ok {
		return Notification{}, fmt.Errorf("unknown command %s", kind)
	}

	path, hasPath := ws.ActiveDocumentPath()
	inv := Invocation{ID: d.newID(), Command: kind}
	if hasPath {
		inv.Path = path
	}

	if err := d.Check(def, inv.Path, hasPath); err != nil {
		elog.Debug("[%s] %s: precondition failed: %v", inv.ID, def.Name, err)
		_ = d.audit.LogPrecondition(inv.ID, def.Name, inv.Path, err.Error())
		d.observe(def, ResultPrecondition, 0)
		return Notification{Severity: Error, Text: preconditionText(err)}, nil
	}

	spec := d.Spec(def, inv)
	argv := spec.Argv()
	elog.Debug("[%s] %s: exec %s (dir=%q)", inv.ID, def.Name, strings.Join(argv, " "), spec.Dir)
	_ = d.audit.LogInvoke(inv.ID, def.Name, inv.Path, argv)

	out, err := d.runner.Run(ctx, spec)
	if err != nil {
		elog.Warn("[%s] %s: %v", inv.ID, def.Name, err)
		_ = d.audit.LogSpawnError(inv.ID, def.Name, inv.Path, err.Error())
		d.observe(def, ResultSpawnError, 0)
		return Notification{}, err
	}

	switch {
	case out.Success:
		elog.Debug("[%s] %s: exit 0 in %s", inv.ID, def.Name, out.Duration)
		_ = d.audit.LogComplete(inv.ID, def.Name, inv.Path, out.Duration)
		d.observe(def, ResultSuccess, out.Duration)
	case out.TimedOut:
		elog.Warn("[%s] %s: timed out after %s", inv.ID, def.Name, spec.Timeout)
		_ = d.audit.LogTimeout(inv.ID, def.Name, inv.Path, out.Duration)
		d.observe(def, ResultTimeout, out.Duration)
	default:
		elog.Debug("[%s] %s: exit %d in %s", inv.ID, def.Name, out.ExitCode, out.Duration)
		_ = d.audit.LogFail(inv.ID, def.Name, inv.Path, out.ExitCode, out.Duration)
		d.observe(def, ResultFailure, out.Duration)
	}

	return d.notification(def, spec, out), nil
}

// Handler adapts Execute to the host callback shape. It shows exactly one
// notification, or returns the spawn error to the host.
func (d *Dispatcher) Handler(kind Kind) host.Handler {
	return func(ctx context.Context, cx host.Context) error {
		n, err := d.Execute(ctx, kind, cx)
		if err != nil {
			return err
		}
		if n.Severity == Error {
			cx.ShowError(n.Text)
		} else {
			cx.ShowMessage(n.Text)
		}
		return nil
	}
}

func (d *Dispatcher) notification(def Definition, spec process.Spec, out process.Outcome) Notification {
	if out.Success {
		text := def.SuccessText
		if def.EmbedStdout {
			text += out.Stdout
		}
		return Notification{Severity: Info, Text: text}
	}

	text := def.FailurePrefix + tail(out.Stderr, d.settings.MaxErrorBytes)
	if out.TimedOut {
		if out.Stderr != "" && !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		text += fmt.Sprintf("process timed out after %s", spec.Timeout)
	}
	return Notification{Severity: Error, Text: text}
}

func (d *Dispatcher) observe(def Definition, result string, duration time.Duration) {
	if d.recorder == nil {
		return
	}
	d.recorder.Observe(def.Name, result, duration)
}

func preconditionText(err error) string {
	if errors.Is(err, ErrNotDialectFile) {
		return TextNotDialectFile
	}
	return TextNoActiveFile
}

// tail keeps the last n bytes of s, starting on a rune boundary.
func tail(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	i := len(s) - n
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return "…" + s[i:]
}
