//go:build e2e

package e2e_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sophialabs/scenarioadmin/internal/editor"
	"github.com/sophialabs/scenarioadmin/internal/infrastructure/wiring"
	"github.com/sophialabs/scenarioadmin/internal/testutil"
)

// setupE2E serves the full stack over a filesystem backend in a temporary
// directory and returns an editor client pointed at it plus the root dir.
func setupE2E(t *testing.T) (*editor.Client, string) {
	t.Helper()

	rootDir := t.TempDir()
	c, err := wiring.New(wiring.Params{
		Backend:        wiring.BackendFilesystem,
		RootDir:        rootDir,
		Directory:      "scenarios",
		CommitEngine:   "expr",
		TraceSize:      100,
		RateLimiterTTL: 10 * time.Minute,
		Logger:         &testutil.NoopLogger{},
	})
	if err != nil {
		t.Fatalf("failed to wire: %v", err)
	}
	srv := httptest.NewServer(c.Server())
	t.Cleanup(func() {
		srv.Close()
		c.Close()
	})
	return editor.NewClient(srv.URL, srv.Client()), rootDir
}
