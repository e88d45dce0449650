package template

import (
	"testing"

	"github.com/sophialabs/scenarioadmin/internal/infrastructure/ports"
)

func TestExprCompiler_DefaultMessages(t *testing.T) {
	c := &ExprCompiler{}
	renderer, err := c.Compile("default", DefaultSaveExpr)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	got, err := renderer.Render(saveContext())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if got != "Save scenario Late_delivery.json" {
		t.Errorf("got %q", got)
	}
}

func TestExprCompiler_Ternary(t *testing.T) {
	c := &ExprCompiler{}
	renderer, err := c.Compile("ternary", `${action == 'delete' ? 'Remove' : 'Update'} ${stem()}`)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	tests := []struct {
		action string
		want   string
	}{
		{"delete", "Remove Late_delivery"},
		{"save", "Update Late_delivery"},
	}
	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			ctx := saveContext()
			ctx.Action = tt.action
			got, err := renderer.Render(ctx)
			if err != nil {
				t.Fatalf("Render failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestExprCompiler_Functions(t *testing.T) {
	c := &ExprCompiler{}
	renderer, err := c.Compile("fn", `${upper(name)} ${nowFormat('2006')} ${now}`)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	got, err := renderer.Render(saveContext())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if got != "LATE DELIVERY 2026 2026-03-14T09:26:53Z" {
		t.Errorf("got %q", got)
	}
}

func TestExprCompiler_Static(t *testing.T) {
	renderer, err := (&ExprCompiler{}).Compile("static", "  Update scenarios \n")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	got, err := renderer.Render(ports.CommitContext{})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if got != "Update scenarios" {
		t.Errorf("got %q", got)
	}
}

func TestExprCompiler_Errors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"unclosed", `Save ${filename`},
		{"unknown variable", `Save ${branch}`},
		{"empty static", `   `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := (&ExprCompiler{}).Compile(tt.name, tt.source); err == nil {
				t.Errorf("expected compile error for %q", tt.source)
			}
		})
	}
}

func TestFindClosingBrace(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"abc}", 3},
		{"{a}b}", 4},
		{"'}'}", 3},
		{`"a\"}"}`, 6},
		{"no close", -1},
	}
	for _, tt := range tests {
		if got := findClosingBrace(tt.input); got != tt.want {
			t.Errorf("findClosingBrace(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}
