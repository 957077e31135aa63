// Package assets holds the theme and snippet data the extension registers
// with its host. The data is embedded at build time and checked against
// embedded JSON schemas when loaded; beyond that it is opaque.
package assets

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"path"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed themes/*.json snippets/*.json schema/*.json
var files embed.FS

// Theme names in registration order.
const (
	DarkTheme  = "nix-mox-dark"
	LightTheme = "nix-mox-light"
)

// SnippetLanguage is the language the snippet collection is registered for.
const SnippetLanguage = "nushell"

const (
	themeSchema    = "theme.schema.json"
	snippetsSchema = "snippets.schema.json"
)

// Asset is one named blob of embedded data.
type Asset struct {
	Name string
	Data []byte
}

// Bundle is the validated set of assets.
type Bundle struct {
	Themes   []Asset
	Snippets Asset
}

// Theme returns the theme with the given name.
func (b *Bundle) Theme(name string) (Asset, bool) {
	for _, t := range b.Themes {
		if t.Name == name {
			return t, true
		}
	}
	return Asset{}, false
}

// ValidationError reports an asset that does not match its schema.
type ValidationError struct {
	File string
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("asset %s: %v", e.File, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

var (
	compileOnce sync.Once
	schemas     map[string]*jsonschema.Schema
	compileErr  error
)

func compileSchemas() (map[string]*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		c := jsonschema.NewCompiler()
		for _, name := range []string{themeSchema, snippetsSchema} {
			raw, err := files.ReadFile(path.Join("schema", name))
			if err != nil {
				compileErr = fmt.Errorf("reading schema %s: %w", name, err)
				return
			}
			doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
			if err != nil {
				compileErr = fmt.Errorf("unmarshaling schema %s: %w", name, err)
				return
			}
			if err := c.AddResource(name, doc); err != nil {
				compileErr = fmt.Errorf("adding schema resource %s: %w", name, err)
				return
			}
		}

		compiled := make(map[string]*jsonschema.Schema, 2)
		for _, name := range []string{themeSchema, snippetsSchema} {
			s, err := c.Compile(name)
			if err != nil {
				compileErr = fmt.Errorf("compiling schema %s: %w", name, err)
				return
			}
			compiled[name] = s
		}
		schemas = compiled
	})
	return schemas, compileErr
}

// Load reads and validates every embedded asset.
func Load() (*Bundle, error) {
	b := &Bundle{}
	for _, name := range []string{DarkTheme, LightTheme} {
		data, err := load(path.Join("themes", name+".json"), themeSchema)
		if err != nil {
			return nil, err
		}
		b.Themes = append(b.Themes, Asset{Name: name, Data: data})
	}

	data, err := load(path.Join("snippets", SnippetLanguage+".json"), snippetsSchema)
	if err != nil {
		return nil, err
	}
	b.Snippets = Asset{Name: SnippetLanguage, Data: data}
	return b, nil
}

func load(file, schema string) ([]byte, error) {
	data, err := files.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading asset: %w", err)
	}
	if err := Validate(schema, data); err != nil {
		return nil, &ValidationError{File: file, Err: err}
	}
	return data, nil
}

// ErrUnknownSchema is returned by Validate for a schema name it does not know.
var ErrUnknownSchema = errors.New("unknown schema")

// Validate checks data against one of the embedded schemas,
// "theme.schema.json" or "snippets.schema.json".
func Validate(schema string, data []byte) error {
	compiled, err := compileSchemas()
	if err != nil {
		return err
	}
	s, ok := compiled[schema]
	if !ok {
		return fmt.Errorf("%s: %w", schema, ErrUnknownSchema)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("parsing JSON: %w", err)
	}
	return s.Validate(inst)
}

// ValidateTheme checks theme data against the theme schema.
func ValidateTheme(data []byte) error {
	return Validate(themeSchema, data)
}

// ValidateSnippets checks snippet data against the snippets schema.
func ValidateSnippets(data []byte) error {
	return Validate(snippetsSchema, data)
}
