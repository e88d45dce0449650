// Package services holds the Scenario Document Store, which maps storage
// keys to documents in one directory of a ports.ContentAPI.
package services

import (
	"context"
	"errors"
	"path"

	"github.com/sophialabs/scenarioadmin/internal/domain/scenario"
	"github.com/sophialabs/scenarioadmin/internal/infrastructure/ports"
)

// DefaultDirectory is where scenario documents live in the repository.
const DefaultDirectory = "scenarios"

var _ scenario.Store = (*DocumentStore)(nil)

// DocumentStoreConfig configures a DocumentStore.
type DocumentStoreConfig struct {
	Content   ports.ContentAPI
	Directory string
	// SaveMessage and DeleteMessage render the commit message of each write.
	SaveMessage   ports.CommitMessageRenderer
	DeleteMessage ports.CommitMessageRenderer
	Clock         ports.Clock
	Logger        ports.Logger
}

// DocumentStore implements scenario.Store over a remote content API.
//
// Put and Delete read the current revision and then send it as the write
// precondition. The two calls are not atomic: a writer that slips in between
// makes the second call fail with a Conflict, which is returned as is.
type DocumentStore struct {
	content       ports.ContentAPI
	dir           string
	saveMessage   ports.CommitMessageRenderer
	deleteMessage ports.CommitMessageRenderer
	clock         ports.Clock
	logger        ports.Logger
}

// NewDocumentStore creates a store. An empty directory means DefaultDirectory.
func NewDocumentStore(cfg DocumentStoreConfig) *DocumentStore {
	dir := cfg.Directory
	if dir == "" {
		dir = DefaultDirectory
	}
	return &DocumentStore{
		content:       cfg.Content,
		dir:           dir,
		saveMessage:   cfg.SaveMessage,
		deleteMessage: cfg.DeleteMessage,
		clock:         cfg.Clock,
		logger:        cfg.Logger,
	}
}

// List returns the storage keys in the directory, in the order the content
// API reports them. A directory that does not exist yet lists as empty.
func (s *DocumentStore) List(ctx context.Context) ([]string, error) {
	entries, err := s.content.ListDirectory(ctx, s.dir)
	if errors.Is(err, scenario.ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, scenario.Wrap(scenario.KindUpstreamUnavailable, "list", "", err)
	}

	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type != "" && e.Type != "file" {
			continue
		}
		if scenario.IsKey(e.Name) {
			keys = append(keys, e.Name)
		}
	}
	return keys, nil
}

// Get fetches, decodes and migrates the document stored under key.
func (s *DocumentStore) Get(ctx context.Context, key string) (*scenario.Document, error) {
	if err := scenario.ValidateKey(key); err != nil {
		return nil, scenario.Wrap(scenario.KindInvalidRequest, "get", key, err)
	}

	file, err := s.content.ReadFile(ctx, s.path(key))
	if err != nil {
		return nil, scenario.Wrap(scenario.KindUpstreamUnavailable, "get", key, err)
	}

	doc, err := decodeDocument(file.Content)
	if err != nil {
		return nil, scenario.Wrap(scenario.KindMalformedDocument, "get", key, err)
	}
	if err := scenario.Migrate(doc); err != nil {
		return nil, scenario.Wrap(scenario.KindMalformedDocument, "get", key, err)
	}
	return doc, nil
}

// Put creates or replaces the document under key.
func (s *DocumentStore) Put(ctx context.Context, key string, doc *scenario.Document) error {
	if err := scenario.ValidateKey(key); err != nil {
		return scenario.Wrap(scenario.KindInvalidRequest, "put", key, err)
	}
	if doc == nil {
		return scenario.Wrap(scenario.KindInvalidRequest, "put", key, scenario.Errorf(scenario.KindInvalidRequest, "document is required"))
	}

	stored := doc.Clone()
	// Documents without a version are normalised; newer versions are refused
	// rather than downgraded.
	if err := scenario.Migrate(stored); err != nil {
		return scenario.Wrap(scenario.KindInvalidRequest, "put", key, scenario.Errorf(scenario.KindInvalidRequest, "%v", err))
	}

	// The write must finish even if the caller goes away.
	ctx = context.WithoutCancel(ctx)

	revision, err := s.currentRevision(ctx, key)
	if err != nil {
		return scenario.Wrap(scenario.KindUpstreamUnavailable, "put", key, err)
	}
	content, err := encodeDocument(stored)
	if err != nil {
		return scenario.Wrap(scenario.KindInternal, "put", key, err)
	}

	message, err := s.saveMessage.Render(s.commitContext("save", key, stored.Name))
	if err != nil {
		return scenario.Wrap(scenario.KindInternal, "put", key, err)
	}

	newRevision, err := s.content.WriteFile(ctx, ports.WriteRequest{
		Path:     s.path(key),
		Content:  content,
		Revision: revision,
		Message:  message,
	})
	if err != nil {
		return scenario.Wrap(scenario.KindUpstreamUnavailable, "put", key, err)
	}

	s.logger.Info("scenario saved", "key", key, "created", revision == "", "revision", newRevision)
	return nil
}

// Delete removes the document under key.
func (s *DocumentStore) Delete(ctx context.Context, key string) error {
	if err := scenario.ValidateKey(key); err != nil {
		return scenario.Wrap(scenario.KindInvalidRequest, "delete", key, err)
	}

	ctx = context.WithoutCancel(ctx)

	file, err := s.content.ReadFile(ctx, s.path(key))
	if err != nil {
		return scenario.Wrap(scenario.KindUpstreamUnavailable, "delete", key, err)
	}

	message, err := s.deleteMessage.Render(s.commitContext("delete", key, ""))
	if err != nil {
		return scenario.Wrap(scenario.KindInternal, "delete", key, err)
	}

	err = s.content.DeleteFile(ctx, ports.DeleteRequest{
		Path:     s.path(key),
		Revision: file.Revision,
		Message:  message,
	})
	if err != nil {
		return scenario.Wrap(scenario.KindUpstreamUnavailable, "delete", key, err)
	}

	s.logger.Info("scenario deleted", "key", key)
	return nil
}

// currentRevision returns the revision of key, or "" if it does not exist.
func (s *DocumentStore) currentRevision(ctx context.Context, key string) (string, error) {
	file, err := s.content.ReadFile(ctx, s.path(key))
	switch {
	case errors.Is(err, scenario.ErrNotFound):
		return "", nil
	case err != nil:
		return "", err
	}
	return file.Revision, nil
}

func (s *DocumentStore) commitContext(action, key, name string) ports.CommitContext {
	return ports.CommitContext{Action: action, Filename: key, Name: name, Now: s.clock.Now()}
}

func (s *DocumentStore) path(key string) string {
	return path.Join(s.dir, key)
}
