package editor_test

import (
	"reflect"
	"testing"

	"github.com/sophialabs/scenarioadmin/internal/domain/scenario"
	"github.com/sophialabs/scenarioadmin/internal/editor"
)

func TestQuery(t *testing.T) {
	doc := &scenario.Document{
		Version: scenario.SchemaVersion,
		Name:    "Refund",
		Messages: []scenario.Message{
			{Text: "Where is my money?", Replies: []string{"Soon", "Never"}, Correct: 0},
			{Text: "When?", Replies: []string{"Today"}, Correct: 0},
		},
	}

	tests := []struct {
		expr string
		want any
	}{
		{"$.name", "Refund"},
		{"$.messages[*].text", []any{"Where is my money?", "When?"}},
		{"$.messages[0].replies", []any{"Soon", "Never"}},
		{"$.messages[1].correct", float64(0)},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := editor.Query(doc, tt.expr)
			if err != nil {
				t.Fatalf("Query failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Query(%q) = %#v, want %#v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestQuery_Invalid(t *testing.T) {
	doc := &scenario.Document{Name: "x"}
	if _, err := editor.Query(doc, "$.missing"); err == nil {
		t.Error("expected error for unknown key")
	}
	if _, err := editor.Query(doc, "$[?(@.x"); err == nil {
		t.Error("expected error for a malformed expression")
	}
}
