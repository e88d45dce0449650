// Package template renders commit messages for document writes and deletes.
package template

import (
	"fmt"

	"github.com/sophialabs/scenarioadmin/internal/infrastructure/ports"
)

// Default message templates, one per engine.
const (
	DefaultSaveJinja2   = "Save scenario {{ filename }}"
	DefaultDeleteJinja2 = "Delete scenario {{ filename }}"
	DefaultSaveExpr     = "Save scenario ${filename}"
	DefaultDeleteExpr   = "Delete scenario ${filename}"
)

// EngineCompiler compiles a template source string into a renderer.
type EngineCompiler interface {
	Compile(name, source string) (ports.CommitMessageRenderer, error)
}

// Registry maps engine names to their compilers.
type Registry struct {
	engines map[string]EngineCompiler
}

// NewRegistry creates a registry with the built-in engines (expr, jinja2).
func NewRegistry() *Registry {
	return &Registry{
		engines: map[string]EngineCompiler{
			"expr":   &ExprCompiler{},
			"jinja2": &Jinja2Compiler{},
		},
	}
}

// Compile resolves the engine by name and compiles the source.
func (r *Registry) Compile(engine, name, source string) (ports.CommitMessageRenderer, error) {
	ec, ok := r.engines[engine]
	if !ok {
		return nil, fmt.Errorf("unknown template engine: %q (supported: expr, jinja2)", engine)
	}
	return ec.Compile(name, source)
}

// Defaults returns the default save and delete templates for engine.
func Defaults(engine string) (save, del string) {
	if engine == "expr" {
		return DefaultSaveExpr, DefaultDeleteExpr
	}
	return DefaultSaveJinja2, DefaultDeleteJinja2
}
