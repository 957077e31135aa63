// Package host defines the capabilities an editor host offers to the
// extension: registration slots, a notification surface and access to the
// active document. Terminal is the in-process host used by the CLI.
package host

import "context"

// LanguageServer describes a language server the host launches on demand.
type LanguageServer struct {
	ID     string
	Name   string
	Binary string
	Args   []string
}

// Notifier is the host's user-visible message surface.
type Notifier interface {
	ShowMessage(text string)
	ShowError(text string)
}

// Workspace gives access to the editor state a command may depend on.
type Workspace interface {
	// ActiveDocumentPath returns the file system path of the active document.
	// ok is false when there is no active document or it has no path.
	ActiveDocumentPath() (path string, ok bool)
}

// Context is what a command handler receives from the host for one call.
type Context interface {
	Workspace
	Notifier
}

// Handler is a registered command callback. A returned error is a fatal
// failure the host reports through its own error surface.
type Handler func(ctx context.Context, cx Context) error

// Registrar is the registration half of the host API.
type Registrar interface {
	RegisterLanguageServer(ls LanguageServer) error
	RegisterCommand(id string, h Handler) error
	RegisterTheme(name string, data []byte) error
	RegisterSnippets(language string, data []byte) error
}

// Host is the full capability set.
type Host interface {
	Registrar
	Notifier
	Workspace
}

// Message is one notification as observed by the host.
type Message struct {
	Error bool
	Text  string
}
