package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sophialabs/scenarioadmin/internal/infrastructure/ports"
)

var _ ports.TokenSource = (*TokenFile)(nil)

// TokenFile is a token source backed by a file. The file is re-read when it
// changes, so a rotated credential takes effect without a restart. A missing
// or empty file yields an empty token.
type TokenFile struct {
	path     string
	debounce time.Duration
	logger   ports.Logger
	watcher  *fsnotify.Watcher
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once

	mu    sync.RWMutex
	token string
}

// NewTokenFile reads the token at path and prepares a watcher on its
// directory. Editors and secret mounts often replace the file by rename, so
// the directory is watched rather than the file itself.
func NewTokenFile(path string, debounce time.Duration, logger ports.Logger) (*TokenFile, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve token file: %w", err)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatcher.Add(filepath.Dir(absPath)); err != nil {
		_ = fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch token directory: %w", err)
	}

	t := &TokenFile{
		path:     absPath,
		debounce: debounce,
		logger:   logger,
		watcher:  fsWatcher,
		done:     make(chan struct{}),
	}
	if err := t.Reload(); err != nil {
		_ = fsWatcher.Close()
		return nil, err
	}
	return t, nil
}

// Token returns the most recently loaded token.
func (t *TokenFile) Token() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.token
}

// Reload re-reads the token file.
func (t *TokenFile) Reload() error {
	data, err := os.ReadFile(t.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read token file: %w", err)
	}
	token := strings.TrimSpace(string(data))

	t.mu.Lock()
	changed := token != t.token
	t.token = token
	t.mu.Unlock()

	switch {
	case token == "":
		t.logger.Warn("token file is missing or empty", "file", t.path)
	case changed:
		t.logger.Info("token loaded", "file", t.path)
	}
	return nil
}

// Start begins watching for file changes in a goroutine.
func (t *TokenFile) Start() {
	t.wg.Add(1)
	go t.loop()
}

// Stop terminates the watcher. It is safe to call more than once.
func (t *TokenFile) Stop() {
	t.stopOnce.Do(func() {
		close(t.done)
		_ = t.watcher.Close()
		t.wg.Wait()
	})
}

func (t *TokenFile) loop() {
	defer t.wg.Done()

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-t.done:
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-t.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != t.path {
				continue
			}

			t.logger.Debug("token file change detected", "file", event.Name, "op", event.Op.String())

			// Debounce: reset timer on each event.
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(t.debounce)
			timerC = timer.C

		case err, ok := <-t.watcher.Errors:
			if !ok {
				return
			}
			t.logger.Error("token watcher error", "error", err)

		case <-timerC:
			if err := t.Reload(); err != nil {
				t.logger.Error("token reload failed", "error", err)
			}
			timerC = nil
		}
	}
}
