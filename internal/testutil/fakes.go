package testutil

import (
	"context"
	"encoding/base64"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sophialabs/scenarioadmin/internal/domain/scenario"
	"github.com/sophialabs/scenarioadmin/internal/infrastructure/ports"
)

var _ ports.Logger = (*NoopLogger)(nil)

// NoopLogger discards all log output.
type NoopLogger struct{}

func (l *NoopLogger) Info(string, ...any)  {}
func (l *NoopLogger) Warn(string, ...any)  {}
func (l *NoopLogger) Error(string, ...any) {}
func (l *NoopLogger) Debug(string, ...any) {}

var _ ports.Clock = (*FixedClock)(nil)

// FixedClock returns a fixed time.
type FixedClock struct {
	T time.Time
}

func (c *FixedClock) Now() time.Time                  { return c.T }
func (c *FixedClock) Since(time.Time) time.Duration { return 0 }

var _ ports.RateLimiter = (*StubRateLimiter)(nil)

// StubRateLimiter returns a configurable Allow result.
type StubRateLimiter struct {
	AllowAll bool
}

func (r *StubRateLimiter) Allow(context.Context, string, float64, int) bool {
	return r.AllowAll
}

var _ ports.TokenSource = StaticTokens("")

// StaticTokens is a fixed token source.
type StaticTokens string

func (t StaticTokens) Token() string { return string(t) }

var _ ports.CommitMessageRenderer = (*StubRenderer)(nil)

// StubRenderer renders "<action> <filename>" or returns Err.
type StubRenderer struct {
	Err error
}

func (r *StubRenderer) Render(ctx ports.CommitContext) (string, error) {
	if r.Err != nil {
		return "", r.Err
	}
	return ctx.Action + " " + ctx.Filename, nil
}

var _ ports.ContentAPI = (*MemoryContent)(nil)

// MemoryContent is an in-memory ports.ContentAPI with revision checks.
// Revisions are "r1", "r2", ... in write order.
type MemoryContent struct {
	mu    sync.Mutex
	files map[string]memFile
	seq   int

	// Fail, keyed by "list", "read", "write" or "delete", makes the
	// corresponding operation return the error.
	Fail map[string]error

	Writes  []ports.WriteRequest
	Deletes []ports.DeleteRequest
}

type memFile struct {
	content  string
	revision string
}

// NewMemoryContent returns an empty store.
func NewMemoryContent() *MemoryContent {
	return &MemoryContent{files: make(map[string]memFile), Fail: make(map[string]error)}
}

// WriteLog returns a copy of Writes. Use it when the store is driven from
// another goroutine, e.g. behind an HTTP server.
func (m *MemoryContent) WriteLog() []ports.WriteRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.WriteRequest(nil), m.Writes...)
}

// DeleteLog returns a copy of Deletes.
func (m *MemoryContent) DeleteLog() []ports.DeleteRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.DeleteRequest(nil), m.Deletes...)
}

// PutRaw stores raw bytes at p without a revision check and returns the
// new revision.
func (m *MemoryContent) PutRaw(p string, raw []byte) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	rev := m.nextRevision()
	m.files[p] = memFile{content: base64.StdEncoding.EncodeToString(raw), revision: rev}
	return rev
}

// Raw returns the decoded bytes stored at p.
func (m *MemoryContent) Raw(p string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[p]
	if !ok {
		return nil, false
	}
	raw, err := base64.StdEncoding.DecodeString(f.content)
	if err != nil {
		return nil, false
	}
	return raw, true
}

// Revision returns the current revision of p, or "" if it does not exist.
func (m *MemoryContent) Revision(p string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.files[p].revision
}

func (m *MemoryContent) nextRevision() string {
	m.seq++
	return fmt.Sprintf("r%d", m.seq)
}

func (m *MemoryContent) ListDirectory(_ context.Context, dir string) ([]ports.DirEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.Fail["list"]; err != nil {
		return nil, err
	}

	prefix := strings.Trim(dir, "/") + "/"
	seen := make(map[string]string)
	for p := range m.files {
		rest, ok := strings.CutPrefix(p, prefix)
		if !ok {
			continue
		}
		if name, _, nested := strings.Cut(rest, "/"); nested {
			seen[name] = "dir"
		} else {
			seen[rest] = "file"
		}
	}
	if len(seen) == 0 {
		return nil, scenario.Errorf(scenario.KindNotFound, "%s: no such directory", dir)
	}

	entries := make([]ports.DirEntry, 0, len(seen))
	for name, typ := range seen {
		entries = append(entries, ports.DirEntry{Name: name, Type: typ})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (m *MemoryContent) ReadFile(_ context.Context, p string) (*ports.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.Fail["read"]; err != nil {
		return nil, err
	}
	f, ok := m.files[p]
	if !ok {
		return nil, scenario.Errorf(scenario.KindNotFound, "%s: not found", p)
	}
	return &ports.File{Path: p, Content: f.content, Revision: f.revision}, nil
}

func (m *MemoryContent) WriteFile(_ context.Context, req ports.WriteRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.Fail["write"]; err != nil {
		return "", err
	}
	m.Writes = append(m.Writes, req)

	current, exists := m.files[req.Path]
	switch {
	case exists && req.Revision != current.revision:
		return "", scenario.Errorf(scenario.KindConflict, "%s does not match %s", path.Base(req.Path), req.Revision)
	case !exists && req.Revision != "":
		return "", scenario.Errorf(scenario.KindConflict, "%s no longer exists", path.Base(req.Path))
	}

	rev := m.nextRevision()
	m.files[req.Path] = memFile{content: req.Content, revision: rev}
	return rev, nil
}

func (m *MemoryContent) DeleteFile(_ context.Context, req ports.DeleteRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.Fail["delete"]; err != nil {
		return err
	}
	m.Deletes = append(m.Deletes, req)

	current, exists := m.files[req.Path]
	if !exists {
		return scenario.Errorf(scenario.KindNotFound, "%s: not found", req.Path)
	}
	if req.Revision != current.revision {
		return scenario.Errorf(scenario.KindConflict, "%s does not match %s", path.Base(req.Path), req.Revision)
	}
	delete(m.files, req.Path)
	return nil
}
