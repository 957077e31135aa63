// Package process runs external programs to completion and reports their
// outcome. Every command in nuext goes through a Runner: one Spec in, one
// Outcome out.
package process

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Spec describes a single external process invocation.
type Spec struct {
	// Name is the executable, resolved through PATH when it has no separator.
	Name string
	// Args are passed to the executable in order.
	Args []string
	// Dir is the working directory; empty means inherit.
	Dir string
	// Env is merged over the parent environment.
	Env map[string]string
	// Timeout bounds the wait for the process. Zero waits forever.
	Timeout time.Duration
}

// Argv returns the full argument vector, executable first.
func (s Spec) Argv() []string {
	argv := make([]string, 0, len(s.Args)+1)
	argv = append(argv, s.Name)
	return append(argv, s.Args...)
}

// Outcome is the observed result of a process that ran to completion (or was
// stopped by its timeout). It is never produced for a process that failed to
// start; see SpawnError.
type Outcome struct {
	Success  bool
	ExitCode int
	Stdout   string
	Stderr   string
	TimedOut bool
	Duration time.Duration
}

// Runner executes a Spec and waits for it to exit.
type Runner interface {
	Run(ctx context.Context, spec Spec) (Outcome, error)
}

// ErrSpawn matches any SpawnError via errors.Is.
var ErrSpawn = errors.New("failed to start process")

// SpawnError reports that the executable could not be started at all, for
// example because the interpreter is not installed.
type SpawnError struct {
	Name string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("start %s: %v", e.Name, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrSpawn) match regardless of the underlying cause.
func (e *SpawnError) Is(target error) bool {
	return target == ErrSpawn
}
