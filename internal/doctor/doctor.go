// Package doctor checks that the interpreter and the automation project are
// usable before any command is run.
package doctor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/nix-mox/nuext/internal/process"
	"github.com/nix-mox/nuext/internal/project"
)

// Status of a single check.
type Status int

const (
	StatusOK Status = iota
	StatusWarn
	StatusFail
)

func (s Status) String() string {
	switch s {
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "ok"
	}
}

// Check is the result of one diagnostic step.
type Check struct {
	Name   string
	Status Status
	Detail string
}

// Report collects every check in the order it ran.
type Report struct {
	Checks []Check
}

// OK reports whether no check failed. Warnings do not fail a report.
func (r *Report) OK() bool {
	for _, c := range r.Checks {
		if c.Status == StatusFail {
			return false
		}
	}
	return true
}

func (r *Report) add(name string, status Status, format string, args ...any) {
	r.Checks = append(r.Checks, Check{Name: name, Status: status, Detail: fmt.Sprintf(format, args...)})
}

// Options describe what to check.
type Options struct {
	Interpreter string
	MinVersion  string
	ProjectRoot string
	// Scripts are paths relative to ProjectRoot.
	Scripts []string
	Runner  process.Runner
	// Repository describes the git checkout at ProjectRoot. Nil skips the
	// check.
	Repository func(root string) (*project.Info, error)
}

// versionTimeout bounds the interpreter version probe.
const versionTimeout = 10 * time.Second

// lookPath is overridden in tests.
var lookPath = exec.LookPath

// Run performs every check. Later checks still run after a failure where
// they do not depend on it.
func Run(ctx context.Context, opts Options) *Report {
	r := &Report{}

	path, err := lookPath(opts.Interpreter)
	if err != nil {
		r.add("interpreter", StatusFail, "%s not found: %v", opts.Interpreter, err)
	} else {
		r.add("interpreter", StatusOK, "%s", path)
		checkVersion(ctx, r, path, opts)
	}

	checkProject(r, opts)
	return r
}

func checkVersion(ctx context.Context, r *Report, path string, opts Options) {
	out, err := opts.Runner.Run(ctx, process.Spec{Name: path, Args: []string{"--version"}, Timeout: versionTimeout})
	if err != nil {
		r.add("version", StatusFail, "%v", err)
		return
	}
	if !out.Success {
		r.add("version", StatusFail, "%s --version exited %d: %s", path, out.ExitCode, strings.TrimSpace(out.Stderr))
		return
	}

	v, err := ParseVersion(out.Stdout)
	if err != nil {
		r.add("version", StatusWarn, "cannot parse %q: %v", strings.TrimSpace(out.Stdout), err)
		return
	}

	if opts.MinVersion == "" {
		r.add("version", StatusOK, "%s", v)
		return
	}
	ok, err := AtLeast(v, opts.MinVersion)
	if err != nil {
		r.add("version", StatusWarn, "%s (minimum %q: %v)", v, opts.MinVersion, err)
		return
	}
	if !ok {
		r.add("version", StatusFail, "%s is older than the minimum supported %s", v, opts.MinVersion)
		return
	}
	r.add("version", StatusOK, "%s (>= %s)", v, opts.MinVersion)
}

func checkProject(r *Report, opts Options) {
	info, err := os.Stat(opts.ProjectRoot)
	if err != nil || !info.IsDir() {
		r.add("project", StatusWarn, "%s is not a directory", opts.ProjectRoot)
		return
	}
	r.add("project", StatusOK, "%s", opts.ProjectRoot)
	checkRepository(r, opts)

	for _, script := range opts.Scripts {
		full := script
		if !filepath.IsAbs(full) {
			full = filepath.Join(opts.ProjectRoot, script)
		}
		if _, err := os.Stat(full); err != nil {
			r.add("script", StatusWarn, "%s missing", script)
			continue
		}
		r.add("script", StatusOK, "%s", script)
	}
}

func checkRepository(r *Report, opts Options) {
	if opts.Repository == nil {
		return
	}
	info, err := opts.Repository(opts.ProjectRoot)
	switch {
	case errors.Is(err, project.ErrNotGitRepo):
		r.add("git", StatusWarn, "%s is not a git repository", opts.ProjectRoot)
	case err != nil:
		r.add("git", StatusWarn, "%v", err)
	default:
		r.add("git", StatusOK, "%s on %s (%s)", info.Name, info.Branch, info.Root)
	}
}

// ParseVersion extracts a semantic version from interpreter --version
// output such as "0.98.0" or "nu 0.98.0-nightly.3". A leading "v" is allowed.
func ParseVersion(output string) (*semver.Version, error) {
	for _, field := range strings.Fields(output) {
		v, err := semver.NewVersion(strings.TrimPrefix(field, "v"))
		if err == nil {
			return v, nil
		}
	}
	return nil, fmt.Errorf("no version in output")
}

// AtLeast reports whether v satisfies ">= minimum". Prereleases of minimum
// count as satisfying it.
func AtLeast(v *semver.Version, minimum string) (bool, error) {
	c, err := semver.NewConstraint(">= " + strings.TrimPrefix(minimum, "v") + "-0")
	if err != nil {
		return false, fmt.Errorf("parsing minimum version: %w", err)
	}
	return c.Check(v), nil
}
