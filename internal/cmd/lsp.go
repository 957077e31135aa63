package cmd

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nix-mox/nuext/internal/elog"
	"github.com/nix-mox/nuext/internal/extension"
	"github.com/nix-mox/nuext/internal/process"
	"github.com/nix-mox/nuext/internal/project"
)

var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "Start the Nushell language server",
	Long: `Start the language server registered by the extension (nu --lsp) with
stdin and stdout attached, for editors that speak LSP over stdio.

Logs go to the log file only while the server runs.`,
	Args: cobra.NoArgs,
	RunE: runLSP,
}

func init() {
	rootCmd.AddCommand(lspCmd)
}

func runLSP(cmd *cobra.Command, _ []string) error {
	elog.SetBackground(true)
	defer elog.SetBackground(false)

	a, err := newApp(currentConfig)
	if err != nil {
		return err
	}
	defer a.close()

	ls, ok := a.host.LanguageServer(extension.LanguageServerID)
	if !ok {
		return fmt.Errorf("language server %q is not registered", extension.LanguageServerID)
	}

	c := exec.CommandContext(cmd.Context(), ls.Binary, ls.Args...)
	c.Dir = project.ResolveRoot(a.cfg.Project.Root, "")
	c.Stdin = cmd.InOrStdin()
	c.Stdout = cmd.OutOrStdout()
	c.Stderr = cmd.ErrOrStderr()

	elog.Info("lsp: starting %s %s in %s", ls.Binary, strings.Join(ls.Args, " "), c.Dir)
	if err := c.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code := exitErr.ExitCode()
			if code < 1 {
				code = 1
			}
			elog.Warn("lsp: %s exited: %v", ls.Binary, err)
			return NewExitCodeError(code)
		}
		return spawnHint(&process.SpawnError{Name: ls.Binary, Err: err})
	}
	elog.Info("lsp: %s exited", ls.Binary)
	return nil
}
