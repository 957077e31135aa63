package elog

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGlobalFunctions(t *testing.T) {
	defer Reset()

	var buf bytes.Buffer
	ReplaceGlobal(TestLogger(&buf))

	Debug("debug %s", "msg")
	Info("info %s", "msg")
	Warn("warn %s", "msg")
	Error("error %s", "msg")

	output := buf.String()
	for _, want := range []string{"[DEBUG] debug msg", "[INFO] info msg", "[WARN] warn msg", "[ERROR] error msg"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got %q", want, output)
		}
	}
}

func TestConfigure(t *testing.T) {
	defer Reset()

	logPath := filepath.Join(t.TempDir(), "nuext.log")
	if err := Configure(logPath, LevelDebug, true); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	defer func() { _ = Close() }()

	Debug("dispatch run-script")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(content), "dispatch run-script") {
		t.Errorf("expected message in log file, got: %s", content)
	}
}

func TestConfigureEmptyPath(t *testing.T) {
	defer Reset()

	if err := Configure("", LevelInfo, false); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	Discard()
	Info("test")
}
