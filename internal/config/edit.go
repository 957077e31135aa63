package config

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/nix-mox/nuext/internal/elog"
)

// Edit opens the configuration file at path in the user's editor, creating
// it from the template first if needed. The editor is $VISUAL, then $EDITOR,
// then vi. Validation problems after editing are logged, not returned; the
// user may want to fix the file later.
func Edit(ctx context.Context, path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if _, err := WriteDefault(path); err != nil {
		return fmt.Errorf("create default config: %w", err)
	}

	if err := openEditor(ctx, path); err != nil {
		return err
	}

	if _, err := Load(path); err != nil {
		elog.Warn("config has errors after edit: %v", err)
	}
	return nil
}

// editorCommand returns the editor argv, allowing values such as "code -w".
func editorCommand() []string {
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if fields := strings.Fields(os.Getenv(env)); len(fields) > 0 {
			return fields
		}
	}
	return []string{"vi"}
}

func openEditor(ctx context.Context, path string) error {
	argv := append(editorCommand(), path)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("editor %q failed: %w", argv[0], err)
	}
	return nil
}
