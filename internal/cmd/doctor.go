package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nix-mox/nuext/internal/commands"
	"github.com/nix-mox/nuext/internal/doctor"
	"github.com/nix-mox/nuext/internal/project"
	"github.com/nix-mox/nuext/internal/term"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the Nushell installation and project scripts",
	Long: `Check that the interpreter can be found, that its version is at least
doctor.min_version, and that the automation scripts every command runs exist
under the project root. The git branch of the project is reported when the
root is a repository.

Exits 1 if any check fails. Missing scripts are reported as warnings.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	cfg := currentConfig
	runner := newRunner()
	d := commands.NewDispatcher(runner, settingsFrom(cfg))

	var scripts []string
	for _, def := range commands.Definitions() {
		if s := d.ScriptPath(def); s != "" {
			scripts = append(scripts, s)
		}
	}

	report := doctor.Run(cmd.Context(), doctor.Options{
		Interpreter: d.Interpreter(),
		MinVersion:  cfg.Doctor.MinVersion,
		ProjectRoot: project.ResolveRoot(cfg.Project.Root, ""),
		Scripts:     scripts,
		Runner:      runner,
		Repository:  project.Detect,
	})

	w := tabwriter.NewWriter(term.Stdout(), 0, 0, 2, ' ', 0)
	for _, c := range report.Checks {
		_, _ = fmt.Fprintf(w, "[%s]\t%s\t%s\n", c.Status, c.Name, c.Detail)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if !report.OK() {
		term.Failure("nuext doctor found problems")
		return NewExitCodeError(1)
	}
	return nil
}
