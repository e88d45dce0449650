package scenario_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/sophialabs/scenarioadmin/internal/domain/scenario"
)

func TestError_IsMatchesByKind(t *testing.T) {
	err := scenario.Wrap(scenario.KindInternal, "put", "a.json", scenario.Errorf(scenario.KindConflict, "sha mismatch"))
	wrapped := fmt.Errorf("save failed: %w", err)

	if !errors.Is(wrapped, scenario.ErrConflict) {
		t.Error("expected wrapped error to match ErrConflict")
	}
	if errors.Is(wrapped, scenario.ErrNotFound) {
		t.Error("conflict must not match ErrNotFound")
	}
	if got := scenario.KindOf(wrapped); got != scenario.KindConflict {
		t.Errorf("KindOf = %v, want conflict", got)
	}
}

func TestWrap_UsesKindForUntaggedErrors(t *testing.T) {
	err := scenario.Wrap(scenario.KindUpstreamUnavailable, "list", "", errors.New("connection refused"))
	if !errors.Is(err, scenario.ErrUpstreamUnavailable) {
		t.Errorf("expected upstream unavailable, got %v", err)
	}
	if err.Error() != "list: connection refused" {
		t.Errorf("unexpected message: %q", err.Error())
	}
	if scenario.Wrap(scenario.KindInternal, "x", "", nil) != nil {
		t.Error("wrapping nil must return nil")
	}
}

func TestError_Message(t *testing.T) {
	err := &scenario.Error{Kind: scenario.KindNotFound, Op: "get", Key: "a.json"}
	if got := err.Error(); got != "get a.json: not_found" {
		t.Errorf("unexpected message: %q", got)
	}
}

func TestKindOf_Untagged(t *testing.T) {
	if got := scenario.KindOf(errors.New("boom")); got != scenario.KindInternal {
		t.Errorf("expected internal, got %v", got)
	}
}

func TestKind_CodesRoundTrip(t *testing.T) {
	seen := map[string]bool{}
	for _, k := range scenario.Kinds() {
		code := k.String()
		if seen[code] {
			t.Errorf("duplicate code %q", code)
		}
		seen[code] = true
		if got := scenario.ParseKind(code); got != k {
			t.Errorf("ParseKind(%q) = %v, want %v", code, got, k)
		}
	}
	if scenario.ParseKind("nonsense") != scenario.KindInternal {
		t.Error("unknown codes must parse as internal")
	}
}
