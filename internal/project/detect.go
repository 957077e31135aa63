// Package project locates the automation project a command runs against.
// The project root is the git work tree containing the active document, so
// relative script paths such as scripts/core/setup.nu resolve correctly.
package project

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/nix-mox/nuext/internal/elog"
	"github.com/nix-mox/nuext/internal/pathutil"
)

// ErrNotGitRepo indicates the path is not within a git repository.
var ErrNotGitRepo = errors.New("not a git repository")

// ErrGitNotInstalled indicates git is not installed or not in PATH.
var ErrGitNotInstalled = errors.New("git is not installed or not in PATH")

// GitError represents a failed git command with stderr output.
type GitError struct {
	Command string
	Args    []string
	Stderr  string
	Err     error
}

func (e *GitError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("git %s failed: %v\nstderr: %s", e.Command, e.Err, e.Stderr)
	}
	return fmt.Sprintf("git %s failed: %v", e.Command, e.Err)
}

func (e *GitError) Unwrap() error {
	return e.Err
}

// gitBinary is overridden in tests.
var gitBinary = "git"

// runGit executes a git command in dir and returns trimmed stdout.
// If dir is empty, uses the current working directory.
func runGit(dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(context.Background(), gitBinary, args...)
	if dir != "" {
		cmd.Dir = dir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return "", ErrGitNotInstalled
		}

		stderrStr := stderr.String()
		if strings.Contains(stderrStr, "not a git repository") {
			return "", ErrNotGitRepo
		}

		cmdName := ""
		if len(args) > 0 {
			cmdName = args[0]
		}
		return "", &GitError{
			Command: cmdName,
			Args:    args,
			Stderr:  stderrStr,
			Err:     err,
		}
	}

	return strings.TrimSpace(stdout.String()), nil
}

// DetectRoot returns the absolute git work tree root containing start.
// start may be a directory or a file; empty means the working directory.
func DetectRoot(start string) (string, error) {
	dir := start
	if dir != "" {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			dir = filepath.Dir(dir)
		}
	}

	out, err := runGit(dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}

	absPath, err := filepath.Abs(out)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	return filepath.Clean(absPath), nil
}

// FindRoot walks up from start looking for a .git entry and returns the
// directory holding it. It never runs git; a .git file (worktree or
// submodule) counts the same as a directory. start may be a file that does
// not exist yet.
func FindRoot(start string) (string, error) {
	dir := start
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		dir = wd
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		dir = filepath.Dir(dir)
	}

	for {
		if _, err := os.Lstat(filepath.Join(dir, ".git")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotGitRepo
		}
		dir = parent
	}
}

// ResolveRoot picks the directory commands run in. A configured root wins;
// otherwise the repository root of the active document, then that of the
// working directory, then the working directory itself. It is called once
// per command invocation and does not spawn processes.
func ResolveRoot(configured, activePath string) string {
	if configured != "" {
		root := pathutil.ExpandHome(configured)
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
		return root
	}

	if activePath != "" {
		root, err := FindRoot(activePath)
		if err == nil {
			return root
		}
		elog.Debug("project root for %s: %v", activePath, err)
	}

	root, err := FindRoot("")
	if err == nil {
		return root
	}
	elog.Debug("project root for working directory: %v", err)

	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}

// Info describes a detected project.
type Info struct {
	Name   string // directory name of the root
	Root   string // absolute path to the git root
	Branch string // current branch or short commit hash
}

// DetectBranch gets the current branch name of the repository at root.
// On a detached HEAD it returns the short commit hash instead.
func DetectBranch(root string) (string, error) {
	out, err := runGit(root, "symbolic-ref", "--short", "HEAD")
	if err == nil {
		return out, nil
	}

	var gitErr *GitError
	if errors.As(err, &gitErr) {
		return runGit(root, "rev-parse", "--short", "HEAD")
	}
	return "", err
}

// Detect returns project information for the repository containing start.
func Detect(start string) (*Info, error) {
	root, err := DetectRoot(start)
	if err != nil {
		return nil, err
	}

	branch, err := DetectBranch(root)
	if err != nil {
		return nil, fmt.Errorf("failed to detect branch: %w", err)
	}

	return &Info{
		Name:   filepath.Base(root),
		Root:   root,
		Branch: branch,
	}, nil
}
