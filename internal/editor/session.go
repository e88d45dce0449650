// Package editor holds the Editor Session Controller, which moves one
// scenario between the catalog and an in-memory Draft, and an HTTP client
// for the catalog endpoint.
package editor

import (
	"context"
	"errors"
	"sync"

	"github.com/sophialabs/scenarioadmin/internal/domain/scenario"
)

// State is the editing surface state.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateEditing
	StateSaving
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateEditing:
		return "editing"
	case StateSaving:
		return "saving"
	default:
		return "unknown"
	}
}

// DeleteState is the delete confirmation state. It is independent of State.
type DeleteState int

const (
	DeleteIdle DeleteState = iota
	DeleteConfirming
	DeleteDeleting
)

func (s DeleteState) String() string {
	switch s {
	case DeleteIdle:
		return "idle"
	case DeleteConfirming:
		return "confirming"
	case DeleteDeleting:
		return "deleting"
	default:
		return "unknown"
	}
}

var (
	ErrBusy             = errors.New("editor: an operation is already in progress")
	ErrNotEditing       = errors.New("editor: no scenario is open for editing")
	ErrNoMessages       = errors.New("editor: a scenario must keep at least one message")
	ErrNameImmutable    = errors.New("editor: the name of a saved scenario cannot change")
	ErrDeletePending    = errors.New("editor: a delete is already pending")
	ErrNoPendingDelete  = errors.New("editor: no delete is awaiting confirmation")
	errMissingDeleteKey = errors.New("editor: a key is required to delete")
)

// Session drives one editing surface and one delete confirmation against a
// catalog. Catalog calls are made without holding the lock; the Loading,
// Saving and Deleting states mark them as in flight.
type Session struct {
	catalog   scenario.Store
	onRefresh func()

	mu    sync.Mutex
	state State
	draft *scenario.Draft
	// key is the persisted key of the open scenario, or "" for a new one.
	key string
	err error

	deleteState DeleteState
	deleteKey   string
	deleteErr   error
}

// NewSession creates a session. onRefresh is called after every save that
// succeeds and after every confirmed delete; it may be nil.
func NewSession(catalog scenario.Store, onRefresh func()) *Session {
	if onRefresh == nil {
		onRefresh = func() {}
	}
	return &Session{catalog: catalog, onRefresh: onRefresh}
}

// List returns the keys in the catalog.
func (s *Session) List(ctx context.Context) ([]string, error) {
	return s.catalog.List(ctx)
}

// OpenNew starts a new scenario with one empty message.
func (s *Session) OpenNew() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateLoading || s.state == StateSaving {
		return ErrBusy
	}
	s.draft = scenario.NewDraft()
	s.key = ""
	s.err = nil
	s.state = StateEditing
	return nil
}

// OpenEdit loads key into the draft. On failure the session returns to
// Idle with the error retained.
func (s *Session) OpenEdit(ctx context.Context, key string) error {
	s.mu.Lock()
	if s.state == StateLoading || s.state == StateSaving {
		s.mu.Unlock()
		return ErrBusy
	}
	s.state = StateLoading
	s.err = nil
	s.mu.Unlock()

	doc, err := s.catalog.Get(ctx, key)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateIdle
		s.draft = nil
		s.key = ""
		s.err = err
		return err
	}
	s.draft = scenario.DraftFrom(doc)
	s.key = key
	s.state = StateEditing
	return nil
}

// Edit applies fn to the open draft. The edit is rolled back if fn fails,
// if it leaves no messages, or if it renames a scenario that already exists.
func (s *Session) Edit(fn func(d *scenario.Draft) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateEditing {
		return ErrNotEditing
	}

	snapshot := s.draft.Clone()
	err := fn(s.draft)
	switch {
	case err != nil:
	case len(s.draft.Messages) == 0:
		err = ErrNoMessages
	case s.key != "" && s.draft.Name != snapshot.Name:
		err = ErrNameImmutable
	}
	if err != nil {
		s.draft = snapshot
		return err
	}
	return nil
}

// Save writes the draft. An existing scenario is written back under its
// persisted key; a new one gets a key derived from its name. On failure the
// session stays in Editing with the draft and the error kept, so the save
// can be retried.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateEditing {
		s.mu.Unlock()
		return ErrNotEditing
	}

	key := s.key
	doc := s.draft.Document()
	err := doc.Validate()
	if err == nil && key == "" {
		key, err = scenario.KeyFromName(doc.Name)
	}
	if err != nil {
		s.err = err
		s.mu.Unlock()
		return err
	}
	s.state = StateSaving
	s.err = nil
	s.mu.Unlock()

	err = s.catalog.Put(ctx, key, doc)

	s.mu.Lock()
	if err != nil {
		s.state = StateEditing
		s.err = err
		s.mu.Unlock()
		return err
	}
	s.state = StateIdle
	s.draft = nil
	s.key = ""
	s.mu.Unlock()

	s.onRefresh()
	return nil
}

// Close discards the open draft.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateLoading, StateSaving:
		return ErrBusy
	}
	s.state = StateIdle
	s.draft = nil
	s.key = ""
	s.err = nil
	return nil
}

// RequestDelete asks for confirmation before deleting key.
func (s *Session) RequestDelete(key string) error {
	if key == "" {
		return errMissingDeleteKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deleteState != DeleteIdle {
		return ErrDeletePending
	}
	s.deleteState = DeleteConfirming
	s.deleteKey = key
	s.deleteErr = nil
	return nil
}

// CancelDelete drops a pending confirmation.
func (s *Session) CancelDelete() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deleteState == DeleteConfirming {
		s.deleteState = DeleteIdle
		s.deleteKey = ""
	}
}

// ConfirmDelete deletes the pending key. Whatever the outcome, the
// confirmation is torn down and the list is refreshed.
func (s *Session) ConfirmDelete(ctx context.Context) error {
	s.mu.Lock()
	if s.deleteState != DeleteConfirming {
		s.mu.Unlock()
		return ErrNoPendingDelete
	}
	key := s.deleteKey
	s.deleteState = DeleteDeleting
	s.mu.Unlock()

	err := s.catalog.Delete(ctx, key)

	s.mu.Lock()
	s.deleteState = DeleteIdle
	s.deleteKey = ""
	s.deleteErr = err
	s.mu.Unlock()

	s.onRefresh()
	return err
}

// State returns the editing state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the error of the last failed open or save.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Key returns the persisted key of the open scenario, "" for a new one.
func (s *Session) Key() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key
}

// Draft returns a copy of the open draft, or nil.
func (s *Session) Draft() *scenario.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		return nil
	}
	return s.draft.Clone()
}

// DeleteState returns the delete confirmation state.
func (s *Session) DeleteState() DeleteState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteState
}

// PendingDelete returns the key awaiting confirmation.
func (s *Session) PendingDelete() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteKey
}

// DeleteErr returns the error of the last confirmed delete.
func (s *Session) DeleteErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteErr
}
