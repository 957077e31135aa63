package host

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nix-mox/nuext/internal/term"
)

var (
	// ErrDuplicate is returned when an ID or name is registered twice.
	ErrDuplicate = errors.New("already registered")
	// ErrUnknownCommand is returned by Invoke for an unregistered command ID.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrInvalid is returned for empty IDs, names or nil handlers.
	ErrInvalid = errors.New("invalid registration")
)

// Kind names a registration slot.
type Kind string

// Registration slots.
const (
	KindLanguageServer Kind = "language-server"
	KindCommand        Kind = "command"
	KindTheme          Kind = "theme"
	KindSnippets       Kind = "snippets"
)

// Registration is one entry in the host's registry, in registration order.
type Registration struct {
	Kind Kind
	Name string
}

// Terminal is a Host that keeps registrations in memory and prints
// notifications to the terminal. It is safe for concurrent use.
type Terminal struct {
	mu       sync.Mutex
	order    []Registration
	servers  map[string]LanguageServer
	commands map[string]Handler
	themes   map[string][]byte
	snippets map[string][]byte
	display  func(Message)
}

// Option configures a Terminal.
type Option func(*Terminal)

// WithDisplay replaces the function that renders notifications.
func WithDisplay(fn func(Message)) Option {
	return func(t *Terminal) {
		t.display = fn
	}
}

// NewTerminal creates an empty Terminal host.
func NewTerminal(opts ...Option) *Terminal {
	t := &Terminal{
		servers:  make(map[string]LanguageServer),
		commands: make(map[string]Handler),
		themes:   make(map[string][]byte),
		snippets: make(map[string][]byte),
		display:  displayTerm,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func displayTerm(m Message) {
	if m.Error {
		term.Failure(m.Text)
		return
	}
	term.Notice(m.Text)
}

// RegisterLanguageServer implements Registrar.
func (t *Terminal) RegisterLanguageServer(ls LanguageServer) error {
	if ls.ID == "" || ls.Binary == "" {
		return fmt.Errorf("language server %q: %w", ls.ID, ErrInvalid)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.servers[ls.ID]; exists {
		return fmt.Errorf("language server %s: %w", ls.ID, ErrDuplicate)
	}
	ls.Args = append([]string(nil), ls.Args...)
	t.servers[ls.ID] = ls
	t.order = append(t.order, Registration{Kind: KindLanguageServer, Name: ls.ID})
	return nil
}

// RegisterCommand implements Registrar.
func (t *Terminal) RegisterCommand(id string, h Handler) error {
	if id == "" || h == nil {
		return fmt.Errorf("command %q: %w", id, ErrInvalid)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.commands[id]; exists {
		return fmt.Errorf("command %s: %w", id, ErrDuplicate)
	}
	t.commands[id] = h
	t.order = append(t.order, Registration{Kind: KindCommand, Name: id})
	return nil
}

// RegisterTheme implements Registrar.
func (t *Terminal) RegisterTheme(name string, data []byte) error {
	return t.registerBlob(KindTheme, t.themes, name, data)
}

// RegisterSnippets implements Registrar.
func (t *Terminal) RegisterSnippets(language string, data []byte) error {
	return t.registerBlob(KindSnippets, t.snippets, language, data)
}

func (t *Terminal) registerBlob(kind Kind, into map[string][]byte, name string, data []byte) error {
	if name == "" || len(data) == 0 {
		return fmt.Errorf("%s %q: %w", kind, name, ErrInvalid)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := into[name]; exists {
		return fmt.Errorf("%s %s: %w", kind, name, ErrDuplicate)
	}
	into[name] = append([]byte(nil), data...)
	t.order = append(t.order, Registration{Kind: kind, Name: name})
	return nil
}

// ShowMessage implements Notifier.
func (t *Terminal) ShowMessage(text string) {
	t.display(Message{Text: text})
}

// ShowError implements Notifier.
func (t *Terminal) ShowError(text string) {
	t.display(Message{Error: true, Text: text})
}

// ActiveDocumentPath implements Workspace. A terminal has no open editor,
// so there is never a host-wide document; Invoke supplies one per call.
func (t *Terminal) ActiveDocumentPath() (string, bool) {
	return "", false
}

// Invoke runs the command registered under id with activePath as the active
// document for this call only. It returns the notifications the handler
// produced, in order, and the handler's error.
func (t *Terminal) Invoke(ctx context.Context, id, activePath string) ([]Message, error) {
	t.mu.Lock()
	h, ok := t.commands[id]
	t.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrUnknownCommand)
	}

	cx := &invocation{path: activePath, display: t.display}
	err := h(ctx, cx)
	return cx.messages, err
}

// LanguageServer returns the registered language server with the given ID.
func (t *Terminal) LanguageServer(id string) (LanguageServer, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ls, ok := t.servers[id]
	return ls, ok
}

// Theme returns the registered theme data.
func (t *Terminal) Theme(name string) ([]byte, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	data, ok := t.themes[name]
	return data, ok
}

// Snippets returns the registered snippet data for a language.
func (t *Terminal) Snippets(language string) ([]byte, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	data, ok := t.snippets[language]
	return data, ok
}

// Registrations returns every registration in the order it was made.
func (t *Terminal) Registrations() []Registration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Registration(nil), t.order...)
}

// invocation is the per-call Context handed to a handler.
type invocation struct {
	path     string
	display  func(Message)
	messages []Message
}

func (c *invocation) ActiveDocumentPath() (string, bool) {
	return c.path, c.path != ""
}

func (c *invocation) ShowMessage(text string) {
	c.show(Message{Text: text})
}

func (c *invocation) ShowError(text string) {
	c.show(Message{Error: true, Text: text})
}

func (c *invocation) show(m Message) {
	c.messages = append(c.messages, m)
	c.display(m)
}

// Commands returns the registered command IDs in registration order.
func (t *Terminal) Commands() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var ids []string
	for _, r := range t.order {
		if r.Kind == KindCommand {
			ids = append(ids, r.Name)
		}
	}
	return ids
}
