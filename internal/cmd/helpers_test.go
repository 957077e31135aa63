package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nix-mox/nuext/internal/elog"
	"github.com/nix-mox/nuext/internal/process"
	"github.com/nix-mox/nuext/internal/term"
)

// stubRunner records specs and returns a fixed outcome.
type stubRunner struct {
	mu      sync.Mutex
	specs   []process.Spec
	outcome process.Outcome
	err     error
}

func (r *stubRunner) Run(_ context.Context, spec process.Spec) (process.Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.specs = append(r.specs, spec)
	return r.outcome, r.err
}

func (r *stubRunner) calls() []process.Spec {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]process.Spec(nil), r.specs...)
}

// setupCLI isolates XDG directories, writes a config that keeps the metrics
// textfile inside them and installs a stub runner that succeeds with empty
// output.
func setupCLI(t *testing.T) *stubRunner {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	// Metrics are on by default; keep the textfile out of /tmp.
	writeFile(t, filepath.Join(dir, "config", "nuext"), "config.yaml",
		"metrics:\n  textfile: "+filepath.Join(dir, "state", "metrics.prom")+"\n")

	runner := &stubRunner{outcome: process.Outcome{Success: true}}
	old := newRunner
	newRunner = func() process.Runner { return runner }
	t.Cleanup(func() { newRunner = old })
	return runner
}

type cliResult struct {
	stdout string
	stderr string
	err    error
}

// exitCode returns the ExitCodeError code, 0 for success and -1 for any
// other error.
func (r cliResult) exitCode() int {
	if r.err == nil {
		return 0
	}
	var exitErr *ExitCodeError
	if errors.As(r.err, &exitErr) {
		return exitErr.Code
	}
	return -1
}

// runCLI executes the root command with args and captures its output.
func runCLI(t *testing.T, args ...string) cliResult {
	t.Helper()

	var stdout, stderr bytes.Buffer
	term.SetOutput(&stdout)
	term.SetErrOutput(&stderr)
	defer term.Reset()

	old := elog.ReplaceGlobal(elog.TestLogger(io.Discard))
	defer elog.ReplaceGlobal(old)

	resetFlags(rootCmd)
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	teardown()

	return cliResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// resetFlags restores every flag to its default, since cobra commands are
// package-level and keep flag values between executions.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// writeFile writes content to name inside dir and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
