package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nix-mox/nuext/internal/lint"
	"github.com/nix-mox/nuext/internal/term"
)

var (
	fmtCheck  bool
	fmtStdout bool
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [path...]",
	Short: "Format Nushell scripts",
	Long: `Format Nushell scripts in place: trailing whitespace is removed and each
leading tab becomes four spaces.

With --check nothing is written; files that need formatting are listed and
the command exits 1. With --stdout the formatted text is printed instead.`,
	RunE: runFmt,
}

func init() {
	fmtCmd.Flags().BoolVar(&fmtCheck, "check", false, "list files that need formatting and exit 1 if any")
	fmtCmd.Flags().BoolVar(&fmtStdout, "stdout", false, "print formatted output instead of writing files")
	fmtCmd.MarkFlagsMutuallyExclusive("check", "stdout")
	rootCmd.AddCommand(fmtCmd)
}

func runFmt(cmd *cobra.Command, args []string) error {
	cfg := currentConfig
	files, err := collectFiles(args, cfg.Extension, cfg.Watch.Ignore)
	if err != nil {
		return err
	}

	unformatted := 0
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			return err
		}
		src, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read %s: %w", file, err)
		}
		out := lint.Format(src)

		switch {
		case fmtStdout:
			if _, err := cmd.OutOrStdout().Write(out); err != nil {
				return err
			}
		case string(out) == string(src):
			continue
		case fmtCheck:
			unformatted++
			term.Println(file)
		default:
			if err := os.WriteFile(file, out, info.Mode().Perm()); err != nil {
				return fmt.Errorf("write %s: %w", file, err)
			}
			term.Printf("formatted %s\n", file)
		}
	}

	if unformatted > 0 {
		return NewExitCodeError(1)
	}
	return nil
}
