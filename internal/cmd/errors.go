package cmd

import (
	"errors"
	"fmt"

	"github.com/nix-mox/nuext/internal/process"
	"github.com/nix-mox/nuext/internal/project"
)

// ExitCodeError reports a process exit status. The failure has already been
// shown to the user, so main exits with Code without printing anything.
type ExitCodeError struct {
	Code int
}

// NewExitCodeError returns an ExitCodeError for code.
func NewExitCodeError(code int) *ExitCodeError {
	return &ExitCodeError{Code: code}
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// spawnHint adds a pointer to the doctor command when the interpreter could
// not be started. Other errors are returned unchanged.
func spawnHint(err error) error {
	if errors.Is(err, process.ErrSpawn) {
		return fmt.Errorf("%w; run 'nuext doctor' to check the installation", err)
	}
	return err
}

// gitDetectionError handles common git detection errors with user-friendly messages.
// Returns nil if the error is not a git detection error.
func gitDetectionError(err error) error {
	if errors.Is(err, project.ErrNotGitRepo) {
		return fmt.Errorf("not in a git repository; pass --project or set project.root in the config")
	}
	if errors.Is(err, project.ErrGitNotInstalled) {
		return fmt.Errorf("git is not installed or not in PATH")
	}
	return nil
}
