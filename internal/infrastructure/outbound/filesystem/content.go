// Package filesystem provides a local-directory stand-in for the remote
// content API, and a watched token file.
package filesystem

import (
	"context"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sophialabs/scenarioadmin/internal/domain/scenario"
	"github.com/sophialabs/scenarioadmin/internal/infrastructure/ports"
)

const tempPattern = ".scenarioadmin-*.tmp"

var _ ports.ContentAPI = (*ContentStore)(nil)

// ContentStore serves files under a root directory with git blob SHAs as
// revisions, so documents written here are revision-compatible with GitHub.
type ContentStore struct {
	rootDir string
	logger  ports.Logger

	// mu makes the revision check and the write a single step.
	mu sync.Mutex
}

// NewContentStore creates a store rooted at rootDir, creating it if needed.
func NewContentStore(rootDir string, logger ports.Logger) (*ContentStore, error) {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root directory: %w", err)
	}
	if err := os.MkdirAll(absRoot, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create root directory: %w", err)
	}
	return &ContentStore{rootDir: absRoot, logger: logger}, nil
}

// ListDirectory lists a directory relative to the root.
func (s *ContentStore) ListDirectory(_ context.Context, path string) ([]ports.DirEntry, error) {
	dir, err := s.resolve(path)
	if err != nil {
		return nil, err
	}

	items, err := os.ReadDir(dir)
	if err != nil {
		return nil, translate(path, err)
	}

	entries := make([]ports.DirEntry, 0, len(items))
	for _, item := range items {
		if isTempFile(item.Name()) {
			continue
		}
		typ := "file"
		if item.IsDir() {
			typ = "dir"
		}
		entries = append(entries, ports.DirEntry{Name: item.Name(), Type: typ})
	}
	return entries, nil
}

// ReadFile returns the base64 content and blob SHA of a file.
func (s *ContentStore) ReadFile(_ context.Context, path string) (*ports.File, error) {
	target, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := readRegular(path, target)
	if err != nil {
		return nil, err
	}
	return &ports.File{
		Path:     path,
		Content:  base64.StdEncoding.EncodeToString(data),
		Revision: BlobSHA(data),
	}, nil
}

// WriteFile creates or replaces a file. The revision must be empty for a
// new file and match the current blob SHA for an existing one.
func (s *ContentStore) WriteFile(_ context.Context, req ports.WriteRequest) (string, error) {
	target, err := s.resolve(req.Path)
	if err != nil {
		return "", err
	}
	data, err := base64.StdEncoding.DecodeString(req.Content)
	if err != nil {
		return "", scenario.Errorf(scenario.KindInvalidRequest, "%s: content is not valid base64: %w", req.Path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkRevision(req.Path, target, req.Revision, true); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := atomicWriteFile(target, data); err != nil {
		return "", err
	}

	rev := BlobSHA(data)
	s.logger.Debug("file written", "path", req.Path, "sha", rev, "message", req.Message)
	return rev, nil
}

// DeleteFile removes a file whose blob SHA matches the request revision.
func (s *ContentStore) DeleteFile(_ context.Context, req ports.DeleteRequest) error {
	target, err := s.resolve(req.Path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkRevision(req.Path, target, req.Revision, false); err != nil {
		return err
	}
	if err := os.Remove(target); err != nil {
		return translate(req.Path, err)
	}
	s.logger.Debug("file deleted", "path", req.Path, "message", req.Message)
	return nil
}

// checkRevision compares rev with the file on disk. allowCreate permits an
// empty rev when the file does not exist.
func (s *ContentStore) checkRevision(path, target, rev string, allowCreate bool) error {
	data, err := readRegular(path, target)
	switch {
	case errors.Is(err, scenario.ErrNotFound):
		if allowCreate && rev == "" {
			return nil
		}
		if allowCreate {
			return scenario.Errorf(scenario.KindConflict, "%s does not exist at revision %s", path, rev)
		}
		return err
	case err != nil:
		return err
	}

	current := BlobSHA(data)
	if rev == "" {
		return scenario.Errorf(scenario.KindConflict, "%s already exists; a revision is required", path)
	}
	if rev != current {
		return scenario.Errorf(scenario.KindConflict, "%s does not match %s", path, rev)
	}
	return nil
}

// resolve maps a slash-separated relative path to an absolute path under
// the root, rejecting anything that escapes it.
func (s *ContentStore) resolve(path string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(strings.Trim(path, "/")))
	if clean == "." || clean == "" {
		return s.rootDir, nil
	}
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", scenario.Errorf(scenario.KindInvalidRequest, "path traversal denied: %s", path)
	}
	return filepath.Join(s.rootDir, clean), nil
}

func readRegular(path, target string) ([]byte, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, translate(path, err)
	}
	if info.IsDir() {
		return nil, scenario.Errorf(scenario.KindMalformedDocument, "%s is a directory, not a file", path)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		return nil, translate(path, err)
	}
	return data, nil
}

func translate(path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return scenario.Errorf(scenario.KindNotFound, "%s: not found", path)
	case errors.Is(err, fs.ErrPermission):
		return scenario.Errorf(scenario.KindUnauthorized, "%s: %w", path, err)
	default:
		return fmt.Errorf("%s: %w", path, err)
	}
}

// BlobSHA returns the git blob object id of data.
func BlobSHA(data []byte) string {
	h := sha1.New()
	fmt.Fprintf(h, "blob %d\x00", len(data))
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// atomicWriteFile writes content to a temp file then renames it to the target path.
func atomicWriteFile(target string, content []byte) error {
	dir := filepath.Dir(target)
	tmp, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

func isTempFile(name string) bool {
	return strings.HasPrefix(name, ".scenarioadmin-") && strings.HasSuffix(name, ".tmp")
}
