package filesystem_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sophialabs/scenarioadmin/internal/infrastructure/outbound/filesystem"
	"github.com/sophialabs/scenarioadmin/internal/testutil"
)

func waitForToken(t *testing.T, tf *filesystem.TokenFile, want string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if tf.Token() == want {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("token = %q, want %q", tf.Token(), want)
}

func TestTokenFile_InitialLoadTrims(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("  ghp_initial\n"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	tf, err := filesystem.NewTokenFile(path, 50*time.Millisecond, &testutil.NoopLogger{})
	if err != nil {
		t.Fatalf("NewTokenFile failed: %v", err)
	}
	defer tf.Stop()

	if got := tf.Token(); got != "ghp_initial" {
		t.Errorf("Token() = %q", got)
	}
}

func TestTokenFile_MissingFileIsEmptyToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent")

	tf, err := filesystem.NewTokenFile(path, 50*time.Millisecond, &testutil.NoopLogger{})
	if err != nil {
		t.Fatalf("NewTokenFile failed: %v", err)
	}
	defer tf.Stop()

	if got := tf.Token(); got != "" {
		t.Errorf("expected empty token, got %q", got)
	}
}

func TestTokenFile_MissingDirectoryFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no", "such", "token")
	if _, err := filesystem.NewTokenFile(path, time.Millisecond, &testutil.NoopLogger{}); err == nil {
		t.Fatal("expected an error for a missing directory")
	}
}

func TestTokenFile_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "token")
	os.WriteFile(path, []byte("old"), 0o600)

	tf, err := filesystem.NewTokenFile(path, 50*time.Millisecond, &testutil.NoopLogger{})
	if err != nil {
		t.Fatalf("NewTokenFile failed: %v", err)
	}
	defer tf.Stop()
	tf.Start()

	os.WriteFile(path, []byte("new\n"), 0o600)
	waitForToken(t, tf, "new")
}

func TestTokenFile_ReloadsOnRenameReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "token")

	tf, err := filesystem.NewTokenFile(path, 50*time.Millisecond, &testutil.NoopLogger{})
	if err != nil {
		t.Fatalf("NewTokenFile failed: %v", err)
	}
	defer tf.Stop()
	tf.Start()

	staged := filepath.Join(dir, "token.staged")
	os.WriteFile(staged, []byte("rotated"), 0o600)
	if err := os.Rename(staged, path); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	waitForToken(t, tf, "rotated")
}

func TestTokenFile_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "token")
	os.WriteFile(path, []byte("keep"), 0o600)

	tf, err := filesystem.NewTokenFile(path, 50*time.Millisecond, &testutil.NoopLogger{})
	if err != nil {
		t.Fatalf("NewTokenFile failed: %v", err)
	}
	defer tf.Stop()
	tf.Start()

	os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("hello"), 0o600)
	time.Sleep(300 * time.Millisecond)

	if got := tf.Token(); got != "keep" {
		t.Errorf("Token() = %q", got)
	}
}

func TestTokenFile_StopIsIdempotent(t *testing.T) {
	tf, err := filesystem.NewTokenFile(filepath.Join(t.TempDir(), "token"), time.Millisecond, &testutil.NoopLogger{})
	if err != nil {
		t.Fatalf("NewTokenFile failed: %v", err)
	}
	tf.Start()
	tf.Stop()
	tf.Stop()
}
