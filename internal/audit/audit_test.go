package audit

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// Fixed timestamp for deterministic testing
var testTime = time.Date(2026, 1, 15, 14, 32, 5, 0, time.UTC)

func TestEventFormat(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		want  string
	}{
		{
			name: "invoke",
			event: Event{
				Type: EventInvoke, ID: "abc", Command: "run-script",
				File: "/tmp/x.nu", Argv: "nu /tmp/x.nu",
			},
			want: `2026-01-15T14:32:05Z COMMAND INVOKE id=abc command=run-script file="/tmp/x.nu" argv="nu /tmp/x.nu"`,
		},
		{
			name:  "invoke without file",
			event: Event{Type: EventInvoke, ID: "abc", Command: "show-metrics", Argv: "nu scripts/tools/size-dashboard.nu"},
			want:  `2026-01-15T14:32:05Z COMMAND INVOKE id=abc command=show-metrics argv="nu scripts/tools/size-dashboard.nu"`,
		},
		{
			name:  "precondition",
			event: Event{Type: EventPrecondition, ID: "abc", Command: "run-script", File: "/tmp/x.sh", Reason: "not a dialect file"},
			want:  `2026-01-15T14:32:05Z COMMAND PRECONDITION id=abc command=run-script file="/tmp/x.sh" reason="not a dialect file"`,
		},
		{
			name:  "complete",
			event: Event{Type: EventComplete, ID: "abc", Command: "generate-docs", Duration: 2300 * time.Millisecond},
			want:  `2026-01-15T14:32:05Z COMMAND COMPLETE id=abc command=generate-docs exit=0 duration=2.3s`,
		},
		{
			name:  "fail",
			event: Event{Type: EventFail, ID: "abc", Command: "test-script", ExitCode: 1, Duration: 500 * time.Millisecond},
			want:  `2026-01-15T14:32:05Z COMMAND FAIL id=abc command=test-script exit=1 duration=500.0ms`,
		},
		{
			name:  "timeout",
			event: Event{Type: EventTimeout, ID: "abc", Command: "setup-wizard", Duration: 90 * time.Second},
			want:  `2026-01-15T14:32:05Z COMMAND TIMEOUT id=abc command=setup-wizard duration=1m30s`,
		},
		{
			name:  "activate",
			event: Event{Type: EventActivate, Extension: "nix-mox"},
			want:  `2026-01-15T14:32:05Z EXTENSION ACTIVATE extension=nix-mox`,
		},
		{
			name:  "register fail",
			event: Event{Type: EventRegisterFail, Extension: "nix-mox", Reason: "theme nix-mox-dark: duplicate"},
			want:  `2026-01-15T14:32:05Z EXTENSION REGISTER_FAIL extension=nix-mox reason="theme nix-mox-dark: duplicate"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := tt.event
			e.Timestamp = testTime
			if got := e.Format(); got != tt.want {
				t.Errorf("Format() =\n  got:  %q\n  want: %q", got, tt.want)
			}
		})
	}
}

func TestLogger_WritesLines(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)
	l.now = func() time.Time { return testTime }

	if err := l.LogInvoke("id1", "run-script", "/tmp/x.nu", []string{"nu", "/tmp/x.nu"}); err != nil {
		t.Fatalf("LogInvoke() error = %v", err)
	}
	if err := l.LogComplete("id1", "run-script", "/tmp/x.nu", time.Second); err != nil {
		t.Fatalf("LogComplete() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "INVOKE id=id1") {
		t.Errorf("first line = %q", lines[0])
	}
	if !strings.Contains(lines[1], "COMPLETE id=id1") {
		t.Errorf("second line = %q", lines[1])
	}
}

func TestLogger_NilIsNoop(t *testing.T) {
	var l *Logger
	if err := l.LogActivate("nix-mox"); err != nil {
		t.Errorf("nil logger returned error: %v", err)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestLogger_WriteError(t *testing.T) {
	l := NewLogger(failingWriter{})
	err := l.LogDeactivate("nix-mox")
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("expected wrapped write error, got %v", err)
	}
}

func TestOpenFile_CreatesDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "audit.log")
	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("audit file not created: %v", err)
	}
}

func TestDefaultPath_XDG(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/tmp/state")
	if got, want := DefaultPath(), "/tmp/state/nuext/audit.log"; got != want {
		t.Errorf("DefaultPath() = %q, want %q", got, want)
	}
}
