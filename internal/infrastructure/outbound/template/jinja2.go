package template

import (
	"fmt"

	"github.com/flosch/pongo2/v6"

	"github.com/sophialabs/scenarioadmin/internal/infrastructure/ports"
)

// Jinja2Compiler compiles message templates using Pongo2 (Django/Jinja2-style).
type Jinja2Compiler struct{}

// Compile parses the source as a Pongo2 template.
func (c *Jinja2Compiler) Compile(name, source string) (ports.CommitMessageRenderer, error) {
	tpl, err := pongo2.FromString(source)
	if err != nil {
		return nil, fmt.Errorf("failed to compile jinja2 template %q: %w", name, err)
	}
	return &jinja2Renderer{name: name, tpl: tpl}, nil
}

type jinja2Renderer struct {
	name string
	tpl  *pongo2.Template
}

func (r *jinja2Renderer) Render(ctx ports.CommitContext) (string, error) {
	pongoCtx := pongo2.Context{
		"action":   ctx.Action,
		"filename": ctx.Filename,
		"name":     ctx.Name,
		"now":      formatNow(ctx.Now),

		// Helper functions.
		"stem": func() string { return stem(ctx.Filename) },
		"nowFormat": func(layout string) string {
			return ctx.Now.Format(layout)
		},
	}

	result, err := r.tpl.Execute(pongoCtx)
	if err != nil {
		return "", fmt.Errorf("jinja2 template %q render failed: %w", r.name, err)
	}
	return finish(r.name, result)
}
