//go:build e2e

package e2e

import (
	"strings"
	"testing"
)

func TestRun(t *testing.T) {
	root := newProject(t)
	script := writeFile(t, root, "hello.nu", "print \"hello from nu\"\n")

	res := runNuext(t, root, "run", script)
	if res.ExitCode != 0 {
		t.Fatalf("exit %d, stderr %q", res.ExitCode, res.Stderr)
	}
	if !strings.Contains(res.Stdout, "Script executed successfully") {
		t.Errorf("stdout = %q", res.Stdout)
	}
}

func TestRun_ScriptError(t *testing.T) {
	root := newProject(t)
	script := writeFile(t, root, "broken.nu", "error make {msg: \"boom\"}\n")

	res := runNuext(t, root, "run", script)
	if res.ExitCode != 1 {
		t.Fatalf("exit %d, want 1", res.ExitCode)
	}
	if !strings.Contains(res.Stderr, "Script execution failed: ") || !strings.Contains(res.Stderr, "boom") {
		t.Errorf("stderr = %q", res.Stderr)
	}
}

func TestValidateSecurity(t *testing.T) {
	root := newProject(t)
	safe := writeFile(t, root, "safe.nu", "ls\n")
	unsafe := writeFile(t, root, "unsafe.nu", "rm -rf /\n")

	if res := runNuext(t, root, "validate-security", safe); res.ExitCode != 0 {
		t.Errorf("safe file: exit %d, stderr %q", res.ExitCode, res.Stderr)
	}

	res := runNuext(t, root, "validate-security", unsafe)
	if res.ExitCode != 1 {
		t.Fatalf("unsafe file: exit %d, want 1", res.ExitCode)
	}
	if !strings.Contains(res.Stderr, "dangerous command") {
		t.Errorf("stderr = %q", res.Stderr)
	}
}

func TestShowMetrics(t *testing.T) {
	root := newProject(t)
	res := runNuext(t, root, "show-metrics")
	if res.ExitCode != 0 {
		t.Fatalf("exit %d, stderr %q", res.ExitCode, res.Stderr)
	}
	if !strings.Contains(res.Stdout, "Metrics:\ncpu: 3%") {
		t.Errorf("stdout = %q", res.Stdout)
	}
}

func TestGenerateDocs_NonZeroExit(t *testing.T) {
	root := newProject(t)
	res := runNuext(t, root, "generate-docs")
	if res.ExitCode != 1 {
		t.Fatalf("exit %d, want 1", res.ExitCode)
	}
	if !strings.Contains(res.Stderr, "Failed to generate documentation: ") {
		t.Errorf("stderr = %q", res.Stderr)
	}
}

func TestWrongExtension(t *testing.T) {
	root := newProject(t)
	notes := writeFile(t, root, "notes.txt", "")
	res := runNuext(t, root, "run", notes)
	if res.ExitCode != 1 {
		t.Fatalf("exit %d, want 1", res.ExitCode)
	}
	if !strings.Contains(res.Stderr, "Current file is not a Nushell script") {
		t.Errorf("stderr = %q", res.Stderr)
	}
}

func TestDoctor(t *testing.T) {
	root := newProject(t)
	res := runNuext(t, root, "doctor")
	if res.ExitCode != 0 {
		t.Fatalf("exit %d\nstdout %s\nstderr %s", res.ExitCode, res.Stdout, res.Stderr)
	}
	if !strings.Contains(res.Stdout, "[ok]") || !strings.Contains(res.Stdout, "version") {
		t.Errorf("stdout = %q", res.Stdout)
	}
}
