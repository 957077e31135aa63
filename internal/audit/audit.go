// Package audit records command invocations and extension lifecycle events.
// Log entries follow a key=value format suitable for parsing and analysis.
package audit

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nix-mox/nuext/internal/pathutil"
)

// EventType represents the type of audit event.
type EventType string

// Event types for command invocations.
const (
	EventInvoke       EventType = "INVOKE"
	EventPrecondition EventType = "PRECONDITION"
	EventComplete     EventType = "COMPLETE"
	EventFail         EventType = "FAIL"
	EventTimeout      EventType = "TIMEOUT"
	EventSpawnError   EventType = "SPAWN_ERROR"
)

// Event types for extension lifecycle.
const (
	EventActivate     EventType = "ACTIVATE"
	EventDeactivate   EventType = "DEACTIVATE"
	EventRegisterFail EventType = "REGISTER_FAIL"
)

// Event represents a single audit log entry.
type Event struct {
	// Timestamp is when the event occurred.
	Timestamp time.Time

	// Type is the event type (INVOKE, COMPLETE, ACTIVATE, etc.)
	Type EventType

	// ID correlates all events of one invocation.
	ID string

	// Command is the command name (run-script, show-metrics, ...).
	Command string

	// File is the active document path, if any.
	File string

	// Argv is the process argument vector (for INVOKE events).
	Argv string

	// Extension is the extension name (for lifecycle events).
	Extension string

	// Reason explains precondition, spawn and registration failures.
	Reason string

	// ExitCode is the process exit code (for COMPLETE and FAIL events).
	ExitCode int

	// Duration is the execution time (for COMPLETE, FAIL and TIMEOUT events).
	Duration time.Duration
}

// Format returns the log entry as a formatted string.
// Format: 2026-01-15T14:32:05Z COMMAND INVOKE id=... command=run-script file="/tmp/x.nu" argv="nu /tmp/x.nu"
// Format: 2026-01-15T14:32:05Z EXTENSION ACTIVATE extension=nix-mox
func (e *Event) Format() string {
	var b strings.Builder

	b.WriteString(e.Timestamp.UTC().Format(time.RFC3339))

	if e.isLifecycleEvent() {
		b.WriteString(" EXTENSION ")
		b.WriteString(string(e.Type))
		b.WriteString(" extension=")
		b.WriteString(e.Extension)
		writeOptionalField(&b, "reason", e.Reason)
		return b.String()
	}

	b.WriteString(" COMMAND ")
	b.WriteString(string(e.Type))
	b.WriteString(" id=")
	b.WriteString(e.ID)
	b.WriteString(" command=")
	b.WriteString(e.Command)
	writeOptionalField(&b, "file", e.File)

	e.formatTypeSpecificFields(&b)

	return b.String()
}

func (e *Event) isLifecycleEvent() bool {
	return e.Type == EventActivate || e.Type == EventDeactivate || e.Type == EventRegisterFail
}

// formatTypeSpecificFields appends type-specific key=value pairs to the builder.
func (e *Event) formatTypeSpecificFields(b *strings.Builder) {
	switch e.Type {
	case EventInvoke:
		writeOptionalField(b, "argv", e.Argv)
	case EventPrecondition, EventSpawnError:
		writeOptionalField(b, "reason", e.Reason)
	case EventComplete, EventFail:
		b.WriteString(" exit=")
		b.WriteString(strconv.Itoa(e.ExitCode))
		b.WriteString(" duration=")
		b.WriteString(formatDuration(e.Duration))
	case EventTimeout:
		b.WriteString(" duration=")
		b.WriteString(formatDuration(e.Duration))
	}
}

// writeOptionalField appends " key=quoted_value" to the builder if value is non-empty.
func writeOptionalField(b *strings.Builder, key, value string) {
	if value == "" {
		return
	}
	b.WriteString(" ")
	b.WriteString(key)
	b.WriteString("=")
	b.WriteString(strconv.Quote(value))
}

// formatDuration formats a duration as a human-readable string (e.g., "2.3s", "1m30s").
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.1fms", float64(d)/float64(time.Millisecond))
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return d.Round(time.Second).String()
}

// Logger writes audit events to an io.Writer. A nil *Logger discards events.
type Logger struct {
	mu  sync.Mutex
	w   io.Writer
	now func() time.Time
}

// NewLogger creates a new audit logger that writes to the given writer.
func NewLogger(w io.Writer) *Logger {
	return &Logger{w: w, now: time.Now}
}

// Log writes an event to the audit log. A zero Timestamp is filled in.
func (l *Logger) Log(e *Event) error {
	if l == nil || l.w == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if e.Timestamp.IsZero() {
		e.Timestamp = l.now()
	}
	line := e.Format() + "\n"
	if _, err := l.w.Write([]byte(line)); err != nil {
		return fmt.Errorf("write audit event: %w", err)
	}
	return nil
}

// LogInvoke logs a COMMAND INVOKE event.
func (l *Logger) LogInvoke(id, command, file string, argv []string) error {
	return l.Log(&Event{Type: EventInvoke, ID: id, Command: command, File: file, Argv: strings.Join(argv, " ")})
}

// LogPrecondition logs a COMMAND PRECONDITION event; no process was started.
func (l *Logger) LogPrecondition(id, command, file, reason string) error {
	return l.Log(&Event{Type: EventPrecondition, ID: id, Command: command, File: file, Reason: reason})
}

// LogComplete logs a COMMAND COMPLETE event for a zero exit.
func (l *Logger) LogComplete(id, command, file string, duration time.Duration) error {
	return l.Log(&Event{Type: EventComplete, ID: id, Command: command, File: file, Duration: duration})
}

// LogFail logs a COMMAND FAIL event for a non-zero exit.
func (l *Logger) LogFail(id, command, file string, exitCode int, duration time.Duration) error {
	return l.Log(&Event{Type: EventFail, ID: id, Command: command, File: file, ExitCode: exitCode, Duration: duration})
}

// LogTimeout logs a COMMAND TIMEOUT event.
func (l *Logger) LogTimeout(id, command, file string, duration time.Duration) error {
	return l.Log(&Event{Type: EventTimeout, ID: id, Command: command, File: file, Duration: duration})
}

// LogSpawnError logs a COMMAND SPAWN_ERROR event.
func (l *Logger) LogSpawnError(id, command, file, reason string) error {
	return l.Log(&Event{Type: EventSpawnError, ID: id, Command: command, File: file, Reason: reason})
}

// LogActivate logs an EXTENSION ACTIVATE event.
func (l *Logger) LogActivate(extension string) error {
	return l.Log(&Event{Type: EventActivate, Extension: extension})
}

// LogDeactivate logs an EXTENSION DEACTIVATE event.
func (l *Logger) LogDeactivate(extension string) error {
	return l.Log(&Event{Type: EventDeactivate, Extension: extension})
}

// LogRegisterFail logs an EXTENSION REGISTER_FAIL event.
func (l *Logger) LogRegisterFail(extension, reason string) error {
	return l.Log(&Event{Type: EventRegisterFail, Extension: extension, Reason: reason})
}

// DefaultPath returns the default audit log location,
// $XDG_STATE_HOME/nuext/audit.log.
func DefaultPath() string {
	return filepath.Join(pathutil.StateDir(), "audit.log")
}

// OpenFile opens path for appending, creating parent directories as needed.
func OpenFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create audit directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	return f, nil
}
