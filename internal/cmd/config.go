package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nix-mox/nuext/internal/config"
	"github.com/nix-mox/nuext/internal/term"
)

// fileCommand marks config subcommands that work on the file directly.
var fileCommand = map[string]string{skipConfig: "true"}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage nuext's configuration.

The configuration file is stored at ~/.config/nuext/config.yaml
(or $XDG_CONFIG_HOME/nuext/config.yaml if XDG_CONFIG_HOME is set),
unless --config names another file.

Use the subcommands to view, edit, or initialize the configuration.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective config",
	Long: `Print the effective configuration as YAML, after defaults and command-line
flags are applied.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit config in $EDITOR",
	Long: `Open the configuration file in your editor.

The editor is $VISUAL or $EDITOR, falling back to vi. If the configuration
file doesn't exist, a default one is created first.`,
	Args:        cobra.NoArgs,
	Annotations: fileCommand,
	RunE:        runConfigEdit,
}

var configPathCmd = &cobra.Command{
	Use:         "path",
	Short:       "Print config file path",
	Long:        `Print the path to the configuration file.`,
	Args:        cobra.NoArgs,
	Annotations: fileCommand,
	Run:         runConfigPath,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default config file",
	Long: `Create the default configuration file if it doesn't exist.

This creates a fully-commented configuration file with all default values.
If the file already exists, this command does nothing.`,
	Args:        cobra.NoArgs,
	Annotations: fileCommand,
	RunE:        runConfigInit,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
}

// configFile returns the config path in effect.
func configFile() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultPath()
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	data, err := config.Marshal(currentConfig)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	term.Print(string(data))
	return nil
}

func runConfigEdit(cmd *cobra.Command, _ []string) error {
	if err := config.Edit(cmd.Context(), configFile()); err != nil {
		return fmt.Errorf("failed to edit config: %w", err)
	}
	return nil
}

func runConfigPath(_ *cobra.Command, _ []string) {
	term.Println(configFile())
}

func runConfigInit(_ *cobra.Command, _ []string) error {
	path := configFile()
	created, err := config.WriteDefault(path)
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}
	if !created {
		term.Printf("Config already exists at: %s\n", path)
		return nil
	}
	term.Printf("Created default config at: %s\n", path)
	return nil
}
