// Package extension is the activation shell: it registers the language
// server, the commands, the themes and the snippets with a host and tracks
// whether the extension is active.
package extension

import (
	"errors"
	"fmt"
	"sync"

	"github.com/nix-mox/nuext/internal/assets"
	"github.com/nix-mox/nuext/internal/audit"
	"github.com/nix-mox/nuext/internal/commands"
	"github.com/nix-mox/nuext/internal/elog"
	"github.com/nix-mox/nuext/internal/host"
)

// Extension identity.
const (
	Name    = "nix-mox"
	Version = "1.0.0"
)

// LanguageServerID identifies the dialect language server.
const LanguageServerID = "nushell"

// State is the lifecycle state of an Extension.
type State int

const (
	Inactive State = iota
	Active
)

func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "inactive"
}

var (
	// ErrAlreadyActive is returned by Activate on an active extension.
	ErrAlreadyActive = errors.New("extension already active")
	// ErrNotActive is returned by Deactivate on an inactive extension.
	ErrNotActive = errors.New("extension not active")
)

// RegistrationError reports the registration that aborted Activate.
// Step is 1-based in registration order.
type RegistrationError struct {
	Step int
	Kind host.Kind
	Name string
	Err  error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("register %s %s (step %d): %v", e.Kind, e.Name, e.Step, e.Err)
}

func (e *RegistrationError) Unwrap() error {
	return e.Err
}

// Extension is the nix-mox editor extension.
type Extension struct {
	mu         sync.Mutex
	state      State
	dispatcher *commands.Dispatcher
	bundle     *assets.Bundle
	audit      *audit.Logger
}

// Option configures an Extension.
type Option func(*Extension)

// WithAudit records lifecycle events to l.
func WithAudit(l *audit.Logger) Option {
	return func(e *Extension) { e.audit = l }
}

// New creates an inactive extension.
func New(d *commands.Dispatcher, bundle *assets.Bundle, opts ...Option) *Extension {
	e := &Extension{dispatcher: d, bundle: bundle}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns the current lifecycle state.
func (e *Extension) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// LanguageServer returns the language server descriptor Activate registers.
func (e *Extension) LanguageServer() host.LanguageServer {
	return host.LanguageServer{
		ID:     LanguageServerID,
		Name:   LanguageServerID,
		Binary: e.dispatcher.Interpreter(),
		Args:   []string{"--lsp"},
	}
}

type registration struct {
	kind     host.Kind
	name     string
	register func(host.Registrar) error
}

// plan lists every registration in the order Activate performs them.
func (e *Extension) plan() []registration {
	ls := e.LanguageServer()
	steps := []registration{{
		kind:     host.KindLanguageServer,
		name:     ls.ID,
		register: func(r host.Registrar) error { return r.RegisterLanguageServer(ls) },
	}}

	for _, def := range commands.Definitions() {
		h := e.dispatcher.Handler(def.Kind)
		id := def.ID
		steps = append(steps, registration{
			kind:     host.KindCommand,
			name:     id,
			register: func(r host.Registrar) error { return r.RegisterCommand(id, h) },
		})
	}

	for _, theme := range e.bundle.Themes {
		steps = append(steps, registration{
			kind:     host.KindTheme,
			name:     theme.Name,
			register: func(r host.Registrar) error { return r.RegisterTheme(theme.Name, theme.Data) },
		})
	}

	snippets := e.bundle.Snippets
	return append(steps, registration{
		kind:     host.KindSnippets,
		name:     snippets.Name,
		register: func(r host.Registrar) error { return r.RegisterSnippets(snippets.Name, snippets.Data) },
	})
}

// Activate registers everything with r, in order, stopping at the first
// failure. On failure the extension stays inactive and the registrations
// already made are left with the host.
func (e *Extension) Activate(r host.Registrar) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == Active {
		return ErrAlreadyActive
	}

	for i, step := range e.plan() {
		if err := step.register(r); err != nil {
			regErr := &RegistrationError{Step: i + 1, Kind: step.kind, Name: step.name, Err: err}
			elog.Error("%s extension activation failed: %v", Name, regErr)
			_ = e.audit.LogRegisterFail(Name, regErr.Error())
			return regErr
		}
		elog.Debug("registered %s %s", step.kind, step.name)
	}

	e.state = Active
	elog.Info("%s extension activated", Name)
	_ = e.audit.LogActivate(Name)
	return nil
}

// Deactivate marks the extension inactive. Registrations are owned by the
// host and are not withdrawn.
func (e *Extension) Deactivate() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != Active {
		return ErrNotActive
	}

	elog.Info("%s extension deactivated", Name)
	_ = e.audit.LogDeactivate(Name)
	e.state = Inactive
	return nil
}
