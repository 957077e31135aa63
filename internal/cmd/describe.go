package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nix-mox/nuext/internal/commands"
	"github.com/nix-mox/nuext/internal/extension"
	"github.com/nix-mox/nuext/internal/host"
	"github.com/nix-mox/nuext/internal/term"
)

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "List what the extension registers",
	Long: `Activate the extension and list every registration it makes with the host,
in registration order: the language server, the commands, the themes and the
snippet collection.`,
	Args: cobra.NoArgs,
	RunE: runDescribe,
}

func init() {
	rootCmd.AddCommand(describeCmd)
}

func runDescribe(_ *cobra.Command, _ []string) error {
	a, err := newApp(currentConfig)
	if err != nil {
		return err
	}
	defer a.close()

	term.Printf("%s %s (%s)\n\n", extension.Name, extension.Version, a.ext.State())

	w := tabwriter.NewWriter(term.Stdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "KIND\tNAME\tDETAIL")
	for _, r := range a.host.Registrations() {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", r.Kind, r.Name, detail(a.host, r))
	}
	return w.Flush()
}

// detail describes a registration beyond its name.
func detail(t *host.Terminal, r host.Registration) string {
	switch r.Kind {
	case host.KindLanguageServer:
		if ls, ok := t.LanguageServer(r.Name); ok {
			return fmt.Sprintf("%s %v", ls.Binary, ls.Args)
		}
	case host.KindCommand:
		if def, ok := commands.ByID(r.Name); ok {
			return "nuext " + def.Name
		}
	case host.KindTheme:
		if data, ok := t.Theme(r.Name); ok {
			return fmt.Sprintf("%d bytes", len(data))
		}
	case host.KindSnippets:
		if data, ok := t.Snippets(r.Name); ok {
			return fmt.Sprintf("%d bytes", len(data))
		}
	}
	return ""
}
