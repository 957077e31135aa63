package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nix-mox/nuext/internal/commands"
	"github.com/nix-mox/nuext/internal/elog"
	"github.com/nix-mox/nuext/internal/host"
)

func init() {
	for _, def := range commands.Definitions() {
		rootCmd.AddCommand(newDispatchCmd(def))
	}
}

// newDispatchCmd returns the CLI command for one extension command.
func newDispatchCmd(def commands.Definition) *cobra.Command {
	use := def.Name + " [file]"
	long := fmt.Sprintf(`%s.

Registered with the host as %s. The optional file argument is the active
document.`, def.Short, def.ID)
	if def.RequiresFile {
		use = def.Name + " <file>"
		long = fmt.Sprintf(`%s.

Registered with the host as %s. The file argument is the active document
and must be a Nushell script.`, def.Short, def.ID)
	}

	return &cobra.Command{
		Use:   use,
		Short: def.Short,
		Long:  long,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDispatch(cmd, def, args)
		},
	}
}

// runDispatch invokes def through the host with args[0] as the active
// document. An error notification maps to exit code 1.
func runDispatch(cmd *cobra.Command, def commands.Definition, args []string) error {
	var active string
	if len(args) == 1 {
		p, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("resolve %s: %w", args[0], err)
		}
		active = p
	}

	a, err := newApp(currentConfig)
	if err != nil {
		return err
	}
	defer a.close()

	msgs, err := a.host.Invoke(cmd.Context(), def.ID, active)
	if err != nil {
		return spawnHint(err)
	}
	if failed(msgs) {
		elog.Debug("%s: reported an error", def.Name)
		return NewExitCodeError(1)
	}
	return nil
}

// failed reports whether any notification was an error.
func failed(msgs []host.Message) bool {
	for _, m := range msgs {
		if m.Error {
			return true
		}
	}
	return false
}
