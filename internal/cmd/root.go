// Package cmd implements the CLI commands for nuext.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nix-mox/nuext/internal/config"
	"github.com/nix-mox/nuext/internal/elog"
	"github.com/nix-mox/nuext/internal/term"
	"github.com/nix-mox/nuext/internal/version"
)

// skipConfig marks commands that manage the config file itself. They run
// with defaults and never load the file, so a broken file can be repaired.
const skipConfig = "nuext/skip-config"

// Global flags.
var (
	configPath  string
	debugFlag   bool
	silentFlag  bool
	projectFlag string
	timeoutFlag string
)

// currentConfig is the effective configuration after flag overrides, set by
// setup before any subcommand runs.
var currentConfig *config.Config

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "nuext",
	Short: "nix-mox Nushell extension",
	Long: `nuext is the nix-mox Nushell editor extension, usable from a shell.

Each command runs one Nushell process against the nix-mox automation scripts
and reports a single notification. The file argument plays the role of the
editor's active document.

The extension also registers a Nushell language server, two color themes and
a snippet collection; use 'nuext describe' to list them.`,
	Version:           version.Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("nuext %s\n", version.Full()))

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/nuext/config.yaml)")
	flags.BoolVar(&debugFlag, "debug", false, "log at debug level")
	flags.BoolVarP(&silentFlag, "silent", "s", false, "suppress informational output")
	flags.StringVar(&projectFlag, "project", "", "automation project root (default: git root)")
	flags.StringVar(&timeoutFlag, "timeout", "", "bound each interpreter run, e.g. 5m (default: no limit)")
}

// Execute runs the root command and returns any error. Errors other than
// *ExitCodeError are printed; an ExitCodeError means the failure was already
// reported.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer teardown()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		var exitErr *ExitCodeError
		if !errors.As(err, &exitErr) {
			term.Error("%v", err)
		}
	}
	return err
}

// setup loads the configuration, applies flag overrides and configures
// logging and terminal output.
func setup(cmd *cobra.Command, _ []string) error {
	term.SetSilent(silentFlag)

	cfg := config.Default()
	if cmd.Annotations[skipConfig] == "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if err := applyFlags(cfg); err != nil {
		return err
	}
	currentConfig = cfg

	logPath := cfg.Log.File
	if logPath == "" {
		logPath = elog.DefaultLogPath()
	}
	level := elog.ParseLevel(cfg.Log.Level)
	if err := elog.Configure(logPath, level, false); err != nil {
		// Continue without a log file.
		term.Warn("log file disabled: %v", err)
	}
	elog.Debug("nuext %s: %s", version.Version, cmd.CommandPath())
	return nil
}

// applyFlags overrides configuration values with explicitly set flags.
func applyFlags(cfg *config.Config) error {
	if projectFlag != "" {
		cfg.Project.Root = projectFlag
	}
	if timeoutFlag != "" {
		d, err := time.ParseDuration(timeoutFlag)
		if err != nil || d < 0 {
			return fmt.Errorf("invalid --timeout %q: want a duration such as 30s or 5m", timeoutFlag)
		}
		cfg.Exec.Timeout = timeoutFlag
	}
	if debugFlag {
		cfg.Log.Level = "debug"
	}
	return nil
}

// teardown releases resources opened by setup.
func teardown() {
	_ = elog.Close()
	currentConfig = nil
}
