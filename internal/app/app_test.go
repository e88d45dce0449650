package app_test

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/sophialabs/scenarioadmin/internal/app"
)

func filesystemConfig(t *testing.T) app.Config {
	t.Helper()
	cfg := app.DefaultConfig()
	cfg.Backend = "filesystem"
	cfg.RootDir = t.TempDir()
	cfg.LogLevel = "error"
	return cfg
}

func TestNew_Success(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "unknown"} {
		t.Run(level, func(t *testing.T) {
			cfg := filesystemConfig(t)
			cfg.LogLevel = level
			a, err := app.New(cfg)
			if err != nil {
				t.Fatalf("New failed for log level %q: %v", level, err)
			}
			a.Close()
		})
	}
}

func TestNew_GitHubWithoutToken(t *testing.T) {
	cfg := app.DefaultConfig()
	cfg.GitHub.Owner = "acme"
	cfg.GitHub.Repo = "panel"
	cfg.LogLevel = "error"

	a, err := app.New(cfg)
	if err != nil {
		t.Fatalf("a missing token must not prevent startup: %v", err)
	}
	a.Close()
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := app.DefaultConfig() // github backend without owner/repo
	if _, err := app.New(cfg); err == nil || !strings.Contains(err.Error(), "invalid configuration") {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestServe_StartsAndShutsDownGracefully(t *testing.T) {
	a, err := app.New(filesystemConfig(t))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	base := fmt.Sprintf("http://%s", ln.Addr())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Serve(ctx, ln)
	}()

	waitForServer(t, base+"/healthz", 3*time.Second)

	resp, err := http.Get(base + "/api/scenarios")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Serve returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after context cancellation")
	}
}

func TestRun_PortInUse(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	defer ln.Close()

	cfg := filesystemConfig(t)
	cfg.Port = ln.Addr().(*net.TCPAddr).Port
	a, err := app.New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.Run(ctx); err == nil {
		t.Error("expected error when the port is taken")
	}
}

func waitForServer(t *testing.T, url string, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("server not ready at %s after %v", url, timeout)
}
