package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/nix-mox/nuext/internal/commands"
	"github.com/nix-mox/nuext/internal/process"
)

func TestDispatchCommandsRegistered(t *testing.T) {
	for _, def := range commands.Definitions() {
		c, _, err := rootCmd.Find([]string{def.Name})
		if err != nil || c.Name() != def.Name {
			t.Errorf("command %q not registered (found %v, err %v)", def.Name, c, err)
		}
	}
}

func TestRun_Success(t *testing.T) {
	runner := setupCLI(t)
	script := filepath.Join(t.TempDir(), "x.nu")

	res := runCLI(t, "run", script)
	if res.err != nil {
		t.Fatalf("run returned error: %v (stderr %q)", res.err, res.stderr)
	}
	if !strings.Contains(res.stdout, "Script executed successfully") {
		t.Errorf("stdout = %q, want success notification", res.stdout)
	}

	calls := runner.calls()
	if len(calls) != 1 {
		t.Fatalf("runner called %d times, want 1", len(calls))
	}
	if got, want := calls[0].Argv(), []string{"nu", script}; !slices.Equal(got, want) {
		t.Errorf("argv = %v, want %v", got, want)
	}
}

// fakeTool writes an executable named name into bin that appends its name
// to $NUEXT_SPAWN_LOG.
func fakeTool(t *testing.T, bin, name string) {
	t.Helper()
	script := "#!/bin/sh\necho " + name + " >> \"$NUEXT_SPAWN_LOG\"\n"
	if err := os.WriteFile(filepath.Join(bin, name), []byte(script), 0o755); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestRun_SpawnsOneProcess(t *testing.T) {
	setupCLI(t)
	newRunner = func() process.Runner { return process.NewExecRunner() }

	bin := t.TempDir()
	fakeTool(t, bin, "nu")
	fakeTool(t, bin, "git")
	spawnLog := filepath.Join(t.TempDir(), "spawn.log")
	t.Setenv("PATH", bin)
	t.Setenv("NUEXT_SPAWN_LOG", spawnLog)

	tests := []struct {
		name string
		repo bool
	}{
		{"inside a repository", true},
		{"outside a repository", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_ = os.Remove(spawnLog)
			dir := t.TempDir()
			if tc.repo {
				if err := os.Mkdir(filepath.Join(dir, ".git"), 0o755); err != nil {
					t.Fatal(err)
				}
			}
			script := writeFile(t, dir, "scripts/x.nu", "")

			res := runCLI(t, "run", script)
			if res.err != nil {
				t.Fatalf("run returned error: %v (stderr %q)", res.err, res.stderr)
			}
			data, err := os.ReadFile(spawnLog)
			if err != nil {
				t.Fatalf("read spawn log: %v", err)
			}
			if got := strings.Fields(string(data)); !slices.Equal(got, []string{"nu"}) {
				t.Errorf("spawned = %q, want exactly one nu process", got)
			}
		})
	}
}

func TestRun_RelativePathMadeAbsolute(t *testing.T) {
	runner := setupCLI(t)
	dir := t.TempDir()
	t.Chdir(dir)

	res := runCLI(t, "run", "x.nu")
	if res.err != nil {
		t.Fatalf("run returned error: %v", res.err)
	}
	calls := runner.calls()
	if len(calls) != 1 {
		t.Fatalf("runner called %d times, want 1", len(calls))
	}
	if arg := calls[0].Args[0]; !filepath.IsAbs(arg) || filepath.Base(arg) != "x.nu" {
		t.Errorf("file argument = %q, want absolute path to x.nu", arg)
	}
}

func TestRun_Preconditions(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"wrong extension", []string{"run", "/tmp/notes.txt"}, "Current file is not a Nushell script"},
		{"no file", []string{"run"}, "No active file"},
		{"validate-security without file", []string{"validate-security"}, "No active file"},
		{"test with wrong extension", []string{"test", "/tmp/x.nix"}, "Current file is not a Nushell script"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			runner := setupCLI(t)
			res := runCLI(t, tc.args...)
			if res.exitCode() != 1 {
				t.Fatalf("exit code = %d (err %v), want 1", res.exitCode(), res.err)
			}
			if !strings.Contains(res.stderr, tc.want) {
				t.Errorf("stderr = %q, want %q", res.stderr, tc.want)
			}
			if n := len(runner.calls()); n != 0 {
				t.Errorf("runner called %d times, want 0", n)
			}
		})
	}
}

func TestShowMetrics_EmbedsStdout(t *testing.T) {
	runner := setupCLI(t)
	runner.outcome = process.Outcome{Success: true, Stdout: "cpu: 3%"}

	res := runCLI(t, "show-metrics")
	if res.err != nil {
		t.Fatalf("show-metrics returned error: %v", res.err)
	}
	if !strings.Contains(res.stdout, "Metrics:\ncpu: 3%") {
		t.Errorf("stdout = %q", res.stdout)
	}
}

func TestDispatch_FailureExitsOne(t *testing.T) {
	runner := setupCLI(t)
	runner.outcome = process.Outcome{ExitCode: 1, Stderr: "boom"}

	res := runCLI(t, "generate-docs")
	if res.exitCode() != 1 {
		t.Fatalf("exit code = %d (err %v), want 1", res.exitCode(), res.err)
	}
	if !strings.Contains(res.stderr, "Failed to generate documentation: boom") {
		t.Errorf("stderr = %q", res.stderr)
	}
	if strings.Contains(res.stdout, "boom") {
		t.Errorf("failure leaked to stdout: %q", res.stdout)
	}
}

func TestDispatch_SpawnError(t *testing.T) {
	runner := setupCLI(t)
	runner.err = &process.SpawnError{Name: "nu", Err: errors.New("executable file not found in $PATH")}

	res := runCLI(t, "setup-wizard")
	if res.err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(res.err, process.ErrSpawn) {
		t.Errorf("error %v does not match ErrSpawn", res.err)
	}
	if !strings.Contains(res.err.Error(), "nuext doctor") {
		t.Errorf("error %q lacks doctor hint", res.err)
	}
	if res.stdout != "" || res.stderr != "" {
		t.Errorf("spawn failure produced a notification: stdout %q stderr %q", res.stdout, res.stderr)
	}
}

func TestDispatch_Flags(t *testing.T) {
	t.Run("timeout", func(t *testing.T) {
		runner := setupCLI(t)
		if res := runCLI(t, "--timeout", "2s", "show-metrics"); res.err != nil {
			t.Fatalf("error: %v", res.err)
		}
		if got := runner.calls()[0].Timeout; got != 2*time.Second {
			t.Errorf("Timeout = %v, want 2s", got)
		}
	})

	t.Run("invalid timeout", func(t *testing.T) {
		runner := setupCLI(t)
		res := runCLI(t, "--timeout", "soon", "show-metrics")
		if res.err == nil || !strings.Contains(res.err.Error(), "invalid --timeout") {
			t.Fatalf("err = %v, want invalid --timeout", res.err)
		}
		if len(runner.calls()) != 0 {
			t.Error("runner should not be called")
		}
	})

	t.Run("project", func(t *testing.T) {
		runner := setupCLI(t)
		root := t.TempDir()
		if res := runCLI(t, "--project", root, "generate-docs"); res.err != nil {
			t.Fatalf("error: %v", res.err)
		}
		if got := runner.calls()[0].Dir; got != root {
			t.Errorf("Dir = %q, want %q", got, root)
		}
	})

	t.Run("silent", func(t *testing.T) {
		setupCLI(t)
		res := runCLI(t, "--silent", "generate-docs")
		if res.err != nil {
			t.Fatalf("error: %v", res.err)
		}
		if res.stdout != "" {
			t.Errorf("stdout = %q, want nothing in silent mode", res.stdout)
		}
	})
}

func TestDispatch_ConfigScriptsAndEnv(t *testing.T) {
	runner := setupCLI(t)
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", `interpreter: /opt/nu/bin/nu
scripts:
  validate_security: checks/security.nu
exec:
  env:
    NIX_MOX_PROFILE: ci
metrics:
  enabled: false
`)
	target := filepath.Join(dir, "x.nu")

	if res := runCLI(t, "--config", cfgPath, "validate-security", target); res.err != nil {
		t.Fatalf("error: %v", res.err)
	}
	spec := runner.calls()[0]
	if want := []string{"/opt/nu/bin/nu", "checks/security.nu", target}; !slices.Equal(spec.Argv(), want) {
		t.Errorf("argv = %v, want %v", spec.Argv(), want)
	}
	if spec.Env["NIX_MOX_PROFILE"] != "ci" {
		t.Errorf("Env = %v, want NIX_MOX_PROFILE=ci", spec.Env)
	}
	if _, ok := spec.Env[commands.MetricsEnvVar]; ok {
		t.Errorf("Env = %v, want no %s when metrics are disabled", spec.Env, commands.MetricsEnvVar)
	}
}

func TestDispatch_MetricsOnByDefault(t *testing.T) {
	runner := setupCLI(t)
	if res := runCLI(t, "generate-docs"); res.err != nil {
		t.Fatalf("error: %v", res.err)
	}
	if got := runner.calls()[0].Env[commands.MetricsEnvVar]; got != "true" {
		t.Errorf("%s = %q, want true", commands.MetricsEnvVar, got)
	}
	if _, err := os.Stat(filepath.Join(os.Getenv("XDG_STATE_HOME"), "metrics.prom")); err != nil {
		t.Errorf("metrics textfile not written: %v", err)
	}
}

func TestDispatch_MetricsTextfile(t *testing.T) {
	runner := setupCLI(t)
	dir := t.TempDir()
	textfile := filepath.Join(dir, "metrics", "nuext.prom")
	cfgPath := writeFile(t, dir, "config.yaml", "metrics:\n  enabled: true\n  textfile: "+textfile+"\n")

	if res := runCLI(t, "--config", cfgPath, "show-metrics"); res.err != nil {
		t.Fatalf("error: %v", res.err)
	}
	if got := runner.calls()[0].Env[commands.MetricsEnvVar]; got != "true" {
		t.Errorf("%s = %q, want true", commands.MetricsEnvVar, got)
	}

	data, err := os.ReadFile(textfile)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	if !strings.Contains(string(data), `nuext_command_invocations_total{command="show-metrics",result="success"} 1`) {
		t.Errorf("textfile missing invocation counter:\n%s", data)
	}
}

func TestDispatch_AuditLog(t *testing.T) {
	setupCLI(t)
	script := filepath.Join(t.TempDir(), "x.nu")
	if res := runCLI(t, "run", script); res.err != nil {
		t.Fatalf("error: %v", res.err)
	}

	data, err := os.ReadFile(filepath.Join(os.Getenv("XDG_STATE_HOME"), "nuext", "audit.log"))
	if err != nil {
		t.Fatalf("read audit log: %v", err)
	}
	log := string(data)
	for _, want := range []string{
		"EXTENSION ACTIVATE extension=nix-mox",
		"COMMAND INVOKE",
		"command=run",
		"COMMAND COMPLETE",
		"EXTENSION DEACTIVATE extension=nix-mox",
	} {
		if !strings.Contains(log, want) {
			t.Errorf("audit log missing %q:\n%s", want, log)
		}
	}
}

func TestDispatch_TooManyArgs(t *testing.T) {
	runner := setupCLI(t)
	res := runCLI(t, "run", "a.nu", "b.nu")
	if res.err == nil {
		t.Fatal("expected error for two files")
	}
	if len(runner.calls()) != 0 {
		t.Error("runner should not be called")
	}
}
