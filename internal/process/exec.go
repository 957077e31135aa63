package process

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"time"

	"golang.org/x/text/encoding/unicode"
)

const waitDelay = 2 * time.Second

// ExecRunner runs processes with os/exec.
type ExecRunner struct{}

// NewExecRunner creates a new ExecRunner.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run starts spec, waits for it to exit and captures both output streams.
// A non-zero exit is reported through Outcome, not as an error; the only
// error returned is a *SpawnError when the process could not be started.
func (r *ExecRunner) Run(ctx context.Context, spec Spec) (Outcome, error) {
	if spec.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, spec.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, spec.Name, spec.Args...)
	if spec.Dir != "" {
		cmd.Dir = spec.Dir
	}
	if len(spec.Env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range spec.Env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
	}

	// Grandchildren holding the output pipes must not stall Wait past a kill.
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return Outcome{}, &SpawnError{Name: spec.Name, Err: err}
	}
	err := cmd.Wait()

	out := Outcome{
		Stdout:   DecodeLossy(stdout.Bytes()),
		Stderr:   DecodeLossy(stderr.Bytes()),
		Duration: time.Since(start),
	}

	if err == nil || (errors.Is(err, exec.ErrWaitDelay) && cmd.ProcessState.Success()) {
		out.Success = true
		return out, nil
	}

	if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) || errors.Is(ctxErr, context.Canceled) {
		out.TimedOut = errors.Is(ctxErr, context.DeadlineExceeded)
		out.ExitCode = -1
		return out, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
		return out, nil
	}

	// Wait failed without an exit status, e.g. an output copy error.
	out.ExitCode = -1
	return out, nil
}

// DecodeLossy converts process output to a string, replacing byte sequences
// that are not valid UTF-8 with U+FFFD. It never fails.
func DecodeLossy(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	decoded, err := unicode.UTF8.NewDecoder().Bytes(b)
	if err != nil {
		return string(bytes.ToValidUTF8(b, []byte("�")))
	}
	return string(decoded)
}
