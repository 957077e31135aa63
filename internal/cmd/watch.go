package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nix-mox/nuext/internal/commands"
	"github.com/nix-mox/nuext/internal/config"
	"github.com/nix-mox/nuext/internal/elog"
	"github.com/nix-mox/nuext/internal/lint"
	"github.com/nix-mox/nuext/internal/project"
	"github.com/nix-mox/nuext/internal/term"
	"github.com/nix-mox/nuext/internal/watch"
)

var (
	watchSecurity bool
	watchLint     bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Validate Nushell scripts as they change",
	Long: `Watch a directory tree and, whenever a Nushell script is created or saved,
run security validation with that script as the active document.

The directory defaults to the project root. Use --lint to also report lint
diagnostics for each changed file. Stop with Ctrl-C.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchSecurity, "security", true, "run validate-security on changed files")
	watchCmd.Flags().BoolVar(&watchLint, "lint", false, "lint changed files")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := currentConfig
	root, err := watchRoot(cfg, args)
	if err != nil {
		return err
	}

	security := enabled(cfg.Watch.SecurityValidation, true)
	if cmd.Flags().Changed("security") {
		security = watchSecurity
	}
	lintOn := enabled(cfg.Watch.Lint, false)
	if cmd.Flags().Changed("lint") {
		lintOn = watchLint
	}
	if !security && !lintOn {
		return fmt.Errorf("nothing to do: both security validation and lint are disabled")
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	validate, _ := commands.Lookup(commands.ValidateSecurity)
	handler := func(ctx context.Context, changes []watch.Change) {
		for _, c := range changes {
			term.Println(term.Muted(fmt.Sprintf("%s %s", c.Op, relTo(root, c.Path))))
			if lintOn {
				reportLint(c.Path)
			}
			if security {
				if _, err := a.host.Invoke(ctx, validate.ID, c.Path); err != nil {
					term.Error("%v", spawnHint(err))
				}
			}
		}
		a.flushMetrics()
	}

	opts := watch.Options{
		Debounce:  cfg.DebounceDuration(),
		Ignore:    cfg.Watch.Ignore,
		Extension: cfg.Extension,
	}
	w, err := watch.New(root, handler, opts)
	if err != nil {
		return err
	}

	elog.SetBackground(true)
	defer elog.SetBackground(false)
	term.Printf("Watching %s for *.%s changes (Ctrl-C to stop)\n", root, cfg.Extension)
	return w.Run(cmd.Context())
}

// watchRoot returns the directory to watch: the argument, the configured
// project root, or the git root of the working directory.
func watchRoot(cfg *config.Config, args []string) (string, error) {
	if len(args) == 1 {
		return filepath.Abs(args[0])
	}
	if cfg.Project.Root != "" {
		return filepath.Abs(cfg.Project.Root)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	root, err := project.DetectRoot(cwd)
	if err != nil {
		if gitErr := gitDetectionError(err); gitErr != nil {
			return "", gitErr
		}
		return "", err
	}
	return root, nil
}

// reportLint prints lint diagnostics for one changed file.
func reportLint(path string) {
	src, err := os.ReadFile(path)
	if err != nil {
		elog.Warn("watch: %v", err)
		return
	}
	for _, d := range lint.Check(src) {
		term.Println(d.Format(path))
	}
	if lint.NeedsFormat(src) {
		term.Println(term.Muted(path + ": needs formatting (nuext fmt)"))
	}
}

func enabled(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func relTo(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil {
		return rel
	}
	return path
}
