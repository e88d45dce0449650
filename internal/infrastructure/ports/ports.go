package ports

import (
	"context"
	"time"
)

// Clock provides the current time (for testing).
type Clock interface {
	Now() time.Time
	// Since returns the time elapsed since t.
	Since(t time.Time) time.Duration
}

// Logger provides structured logging.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Debug(msg string, args ...any)
}

// RateLimiter checks whether a request is allowed under rate limits.
type RateLimiter interface {
	// Allow checks if a request identified by key is within the rate limit.
	// rate is tokens per second, burst is the max burst size.
	Allow(ctx context.Context, key string, rate float64, burst int) bool
}

// TokenSource supplies the credential for the remote content API. An empty
// token means no credential is configured.
type TokenSource interface {
	Token() string
}

// DirEntry is one item of a remote directory listing.
type DirEntry struct {
	Name string
	// Type is "file", "dir", or whatever else the backend reports.
	Type string
}

// File is a remote file as the content API returns it.
type File struct {
	Path string
	// Content is the stored bytes in transport encoding (base64).
	Content string
	// Revision is the opaque identifier of this version of the file.
	Revision string
}

// WriteRequest creates or updates a file.
type WriteRequest struct {
	Path string
	// Content is base64-encoded.
	Content string
	// Revision must match the current revision of an existing file. Leave it
	// empty to create a file that does not exist yet.
	Revision string
	Message  string
}

// DeleteRequest removes a file.
type DeleteRequest struct {
	Path     string
	Revision string
	Message  string
}

// ContentAPI is the remote versioned content store. Implementations return
// scenario.Error values tagged NotFound, Conflict, Unauthorized,
// Configuration or UpstreamUnavailable.
type ContentAPI interface {
	ListDirectory(ctx context.Context, path string) ([]DirEntry, error)
	ReadFile(ctx context.Context, path string) (*File, error)
	// WriteFile returns the revision of the written file.
	WriteFile(ctx context.Context, req WriteRequest) (string, error)
	DeleteFile(ctx context.Context, req DeleteRequest) error
}

// CommitContext is the data available to commit message templates.
type CommitContext struct {
	Action   string // "save" or "delete"
	Filename string
	Name     string
	Now      time.Time
}

// CommitMessageRenderer renders the message attached to a write or delete.
type CommitMessageRenderer interface {
	Render(ctx CommitContext) (string, error)
}
