package commands

import "fmt"

// Kind identifies one of the extension's commands.
type Kind int

// Commands in registration order.
const (
	Run Kind = iota
	Test
	ValidateSecurity
	ShowMetrics
	GenerateDocs
	SetupWizard
)

// Placeholders recognized in argument templates.
const (
	placeholderFile   = "{file}"
	placeholderScript = "{script}"
)

// Definition is the static description of a command. Execute is the only
// code path; everything that differs between commands lives here.
type Definition struct {
	Kind  Kind
	ID    string
	Name  string
	Short string

	// RequiresFile makes the command refuse to run unless the active
	// document is a dialect file.
	RequiresFile bool

	// Script is the default automation script path, relative to the
	// project root. Empty for commands that run the active file directly.
	Script string

	// Args is the interpreter argument template.
	Args []string

	SuccessText   string
	FailurePrefix string

	// EmbedStdout appends the process stdout to SuccessText.
	EmbedStdout bool
}

var definitions = []Definition{
	{
		Kind:          Run,
		ID:            "nix-mox:run-script",
		Name:          "run",
		Short:         "Run the active Nushell script",
		RequiresFile:  true,
		Args:          []string{placeholderFile},
		SuccessText:   "Script executed successfully",
		FailurePrefix: "Script execution failed: ",
	},
	{
		Kind:          Test,
		ID:            "nix-mox:test-script",
		Name:          "test",
		Short:         "Run the configuration test suite",
		RequiresFile:  true,
		Script:        "scripts/tests/unit/comprehensive-config-tests.nu",
		Args:          []string{placeholderScript},
		SuccessText:   "Tests passed successfully",
		FailurePrefix: "Tests failed: ",
	},
	{
		Kind:          ValidateSecurity,
		ID:            "nix-mox:validate-security",
		Name:          "validate-security",
		Short:         "Run security validation on the active script",
		RequiresFile:  true,
		Script:        "scripts/core/security-validation.nu",
		Args:          []string{placeholderScript, placeholderFile},
		SuccessText:   "Security validation passed",
		FailurePrefix: "Security validation failed: ",
	},
	{
		Kind:          ShowMetrics,
		ID:            "nix-mox:show-metrics",
		Name:          "show-metrics",
		Short:         "Show project size metrics",
		Script:        "scripts/tools/size-dashboard.nu",
		Args:          []string{placeholderScript},
		SuccessText:   "Metrics:\n",
		FailurePrefix: "Failed to get metrics: ",
		EmbedStdout:   true,
	},
	{
		Kind:          GenerateDocs,
		ID:            "nix-mox:generate-docs",
		Name:          "generate-docs",
		Short:         "Generate project documentation",
		Script:        "scripts/tools/generate-docs.nu",
		Args:          []string{placeholderScript},
		SuccessText:   "Documentation generated successfully",
		FailurePrefix: "Failed to generate documentation: ",
	},
	{
		Kind:          SetupWizard,
		ID:            "nix-mox:setup-wizard",
		Name:          "setup-wizard",
		Short:         "Run the interactive setup wizard",
		Script:        "scripts/core/setup.nu",
		Args:          []string{placeholderScript},
		SuccessText:   "Setup wizard completed successfully",
		FailurePrefix: "Setup wizard failed: ",
	},
}

// Definitions returns a copy of the command table.
func Definitions() []Definition {
	out := make([]Definition, len(definitions))
	for i, def := range definitions {
		def.Args = append([]string(nil), def.Args...)
		out[i] = def
	}
	return out
}

// Lookup returns the definition for kind.
func Lookup(kind Kind) (Definition, bool) {
	if kind < 0 || int(kind) >= len(definitions) {
		return Definition{}, false
	}
	return definitions[kind], true
}

// ByName returns the definition with the given CLI name.
func ByName(name string) (Definition, bool) {
	for _, def := range definitions {
		if def.Name == name {
			return def, true
		}
	}
	return Definition{}, false
}

// ByID returns the definition with the given host command ID.
func ByID(id string) (Definition, bool) {
	for _, def := range definitions {
		if def.ID == id {
			return def, true
		}
	}
	return Definition{}, false
}

func (k Kind) String() string {
	if def, ok := Lookup(k); ok {
		return def.Name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}
