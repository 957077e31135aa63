package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nix-mox/nuext/internal/lint"
	"github.com/nix-mox/nuext/internal/term"
)

var (
	lintStrict bool
	lintFix    bool
)

var lintCmd = &cobra.Command{
	Use:   "lint [path...]",
	Short: "Report problems in Nushell scripts",
	Long: `Check Nushell scripts for common problems: trailing whitespace, dangerous
rm -rf commands, try blocks without catch, hardcoded home paths, and TODO or
FIXME comments.

Directories are searched recursively for files with the configured extension.
With --fix, try blocks in files that have no catch get a catch block that
prints the error, and the file is rewritten before it is checked.
Exits 1 if any error is found, or any warning with --strict.`,
	RunE: runLint,
}

func init() {
	lintCmd.Flags().BoolVar(&lintStrict, "strict", false, "treat warnings as errors")
	lintCmd.Flags().BoolVar(&lintFix, "fix", false, "add catch blocks to try blocks without error handling")
	rootCmd.AddCommand(lintCmd)
}

func runLint(_ *cobra.Command, args []string) error {
	cfg := currentConfig
	files, err := collectFiles(args, cfg.Extension, cfg.Watch.Ignore)
	if err != nil {
		return err
	}

	threshold := lint.SeverityError
	if lintStrict {
		threshold = lint.SeverityWarning
	}

	problems, failing := 0, false
	for _, file := range files {
		diags, err := lintFile(file, lintFix)
		if err != nil {
			return err
		}
		problems += len(diags)
		if s, ok := lint.MaxSeverity(diags); ok && s >= threshold {
			failing = true
		}
	}

	term.Printf("%d file(s) checked, %d problem(s)\n", len(files), problems)
	if failing {
		return NewExitCodeError(1)
	}
	return nil
}

// lintFile checks one file and prints its diagnostics. With fix, missing
// catch blocks are added and written back first.
func lintFile(file string, fix bool) ([]lint.Diagnostic, error) {
	src, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}
	if fix {
		if src, err = fixFile(file, src); err != nil {
			return nil, err
		}
	}
	diags := lint.Check(src)
	for _, d := range diags {
		term.Println(d.Format(file))
	}
	return diags, nil
}

func fixFile(file string, src []byte) ([]byte, error) {
	fixed, n := lint.FixMissingCatch(src)
	if n == 0 {
		return src, nil
	}
	info, err := os.Stat(file)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(file, fixed, info.Mode().Perm()); err != nil {
		return nil, fmt.Errorf("write %s: %w", file, err)
	}
	term.Printf("%s: added error handling to %d try block(s)\n", file, n)
	return fixed, nil
}
