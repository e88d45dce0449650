package template

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/sophialabs/scenarioadmin/internal/infrastructure/ports"
)

// ExprCompiler compiles message templates using the Expr language with ${ } interpolation.
type ExprCompiler struct{}

// Compile parses the source for ${ } delimiters and compiles each expression.
func (c *ExprCompiler) Compile(name, source string) (ports.CommitMessageRenderer, error) {
	segments, err := parseExprSegments(source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse expr template %q: %w", name, err)
	}

	// If no dynamic segments found, return a static renderer.
	hasDynamic := false
	for _, seg := range segments {
		if seg.program != nil {
			hasDynamic = true
			break
		}
	}
	if !hasDynamic {
		if _, err := finish(name, source); err != nil {
			return nil, err
		}
		return &staticRenderer{message: strings.TrimSpace(source)}, nil
	}

	return &exprRenderer{name: name, segments: segments}, nil
}

type exprSegment struct {
	static  string
	program *vm.Program
}

func parseExprSegments(source string) ([]exprSegment, error) {
	var segments []exprSegment
	remaining := source

	for {
		idx := strings.Index(remaining, "${")
		if idx < 0 {
			if remaining != "" {
				segments = append(segments, exprSegment{static: remaining})
			}
			break
		}

		// Add static part before ${.
		if idx > 0 {
			segments = append(segments, exprSegment{static: remaining[:idx]})
		}

		// Find closing }.
		rest := remaining[idx+2:]
		closeIdx := findClosingBrace(rest)
		if closeIdx < 0 {
			return nil, fmt.Errorf("unclosed ${ at position %d", idx)
		}

		expression := rest[:closeIdx]
		program, err := expr.Compile(expression, expr.Env(exprEnv{}))
		if err != nil {
			return nil, fmt.Errorf("failed to compile expression %q: %w", expression, err)
		}
		segments = append(segments, exprSegment{program: program})
		remaining = rest[closeIdx+1:]
	}

	return segments, nil
}

// findClosingBrace finds the matching } accounting for nested braces.
func findClosingBrace(s string) int {
	depth := 0
	inString := false
	var stringChar byte
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			if ch == '\\' && i+1 < len(s) {
				i++ // skip escaped char
				continue
			}
			if ch == stringChar {
				inString = false
			}
			continue
		}
		switch ch {
		case '\'', '"':
			inString = true
			stringChar = ch
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return -1
}

// exprEnv defines the environment available to Expr expressions.
type exprEnv struct {
	Action    string              `expr:"action"`
	Filename  string              `expr:"filename"`
	Name      string              `expr:"name"`
	Now       string              `expr:"now"`
	Stem      func() string       `expr:"stem"`
	NowFormat func(string) string `expr:"nowFormat"`
}

func buildExprEnv(ctx ports.CommitContext) exprEnv {
	return exprEnv{
		Action:   ctx.Action,
		Filename: ctx.Filename,
		Name:     ctx.Name,
		Now:      formatNow(ctx.Now),
		Stem:     func() string { return stem(ctx.Filename) },
		NowFormat: func(layout string) string {
			return ctx.Now.Format(layout)
		},
	}
}

type exprRenderer struct {
	name     string
	segments []exprSegment
}

func (r *exprRenderer) Render(ctx ports.CommitContext) (string, error) {
	env := buildExprEnv(ctx)

	var buf strings.Builder
	for _, seg := range r.segments {
		if seg.program == nil {
			buf.WriteString(seg.static)
			continue
		}
		result, err := expr.Run(seg.program, env)
		if err != nil {
			return "", fmt.Errorf("expression evaluation failed: %w", err)
		}
		fmt.Fprintf(&buf, "%v", result)
	}
	return finish(r.name, buf.String())
}

// staticRenderer returns a fixed message (used when no dynamic segments are found).
type staticRenderer struct {
	message string
}

func (r *staticRenderer) Render(ports.CommitContext) (string, error) {
	return r.message, nil
}
