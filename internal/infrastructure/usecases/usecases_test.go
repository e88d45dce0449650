package usecases_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sophialabs/scenarioadmin/internal/domain/scenario"
	"github.com/sophialabs/scenarioadmin/internal/domain/trace"
	"github.com/sophialabs/scenarioadmin/internal/infrastructure/usecases"
	"github.com/sophialabs/scenarioadmin/internal/testutil"
)

// stubStore returns canned results and records calls.
type stubStore struct {
	keys []string
	doc  *scenario.Document
	err  error

	putKey    string
	putDoc    *scenario.Document
	deleteKey string
}

func (s *stubStore) List(context.Context) ([]string, error) { return s.keys, s.err }

func (s *stubStore) Get(context.Context, string) (*scenario.Document, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.doc, nil
}

func (s *stubStore) Put(_ context.Context, key string, doc *scenario.Document) error {
	s.putKey, s.putDoc = key, doc
	return s.err
}

func (s *stubStore) Delete(_ context.Context, key string) error {
	s.deleteKey = key
	return s.err
}

var testTime = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func newRecorder(buf *trace.RingBuffer) *usecases.Recorder {
	return usecases.NewRecorder(buf, &testutil.FixedClock{T: testTime}, &testutil.NoopLogger{})
}

func TestListScenarios_RecordsSuccess(t *testing.T) {
	buf := trace.NewRingBuffer(10)
	store := &stubStore{keys: []string{"a.json"}}
	uc := usecases.NewListScenariosUseCase(store, newRecorder(buf))

	keys, err := uc.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if len(keys) != 1 || keys[0] != "a.json" {
		t.Errorf("unexpected keys: %v", keys)
	}

	entries := buf.Last(10)
	if len(entries) != 1 {
		t.Fatalf("expected 1 trace entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Operation != "list" || e.Outcome != trace.OutcomeOK || !e.Timestamp.Equal(testTime) {
		t.Errorf("unexpected entry: %#v", e)
	}
	if _, err := uuid.Parse(e.ID); err != nil {
		t.Errorf("entry ID %q is not a UUID: %v", e.ID, err)
	}
}

func TestGetScenario_RecordsFailureKind(t *testing.T) {
	buf := trace.NewRingBuffer(10)
	store := &stubStore{err: scenario.Wrap(scenario.KindNotFound, "get", "x.json", scenario.ErrNotFound)}
	uc := usecases.NewGetScenarioUseCase(store, newRecorder(buf))

	_, err := uc.Execute(context.Background(), "x.json")
	if !errors.Is(err, scenario.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	failures := buf.LastFailures(10)
	if len(failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(failures))
	}
	if f := failures[0]; f.Outcome != "not_found" || f.Key != "x.json" || f.Operation != "get" || f.Message == "" {
		t.Errorf("unexpected failure entry: %#v", f)
	}
}

func TestSaveScenario_PassesThrough(t *testing.T) {
	store := &stubStore{}
	uc := usecases.NewSaveScenarioUseCase(store, newRecorder(trace.NewRingBuffer(10)))
	doc := &scenario.Document{Name: "a"}

	if err := uc.Execute(context.Background(), "a.json", doc); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if store.putKey != "a.json" || store.putDoc != doc {
		t.Errorf("store not called with the request: %q %#v", store.putKey, store.putDoc)
	}
}

func TestSaveScenario_UntaggedErrorRecordedAsInternal(t *testing.T) {
	buf := trace.NewRingBuffer(10)
	store := &stubStore{err: errors.New("boom")}
	uc := usecases.NewSaveScenarioUseCase(store, newRecorder(buf))

	if err := uc.Execute(context.Background(), "a.json", &scenario.Document{}); err == nil {
		t.Fatal("expected error")
	}
	if got := buf.Last(1)[0].Outcome; got != "internal" {
		t.Errorf("outcome = %q, want internal", got)
	}
}

func TestDeleteScenario_RecordsConflict(t *testing.T) {
	buf := trace.NewRingBuffer(10)
	store := &stubStore{err: scenario.Errorf(scenario.KindConflict, "stale")}
	uc := usecases.NewDeleteScenarioUseCase(store, newRecorder(buf))

	err := uc.Execute(context.Background(), "a.json")
	if !errors.Is(err, scenario.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if store.deleteKey != "a.json" {
		t.Errorf("deleted %q", store.deleteKey)
	}
	if got := buf.Last(1)[0].Outcome; got != "conflict" {
		t.Errorf("outcome = %q, want conflict", got)
	}
}

func TestRecorder_NilBuffer(t *testing.T) {
	uc := usecases.NewListScenariosUseCase(&stubStore{}, newRecorder(nil))
	if _, err := uc.Execute(context.Background()); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
}
