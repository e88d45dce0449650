package wiring_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sophialabs/scenarioadmin/internal/infrastructure/wiring"
	"github.com/sophialabs/scenarioadmin/internal/testutil"
)

const sampleSave = `{"filename":"greeting.json","content":{"version":1,"name":"Greeting","messages":[{"text":"Hi","replies":["Hello"],"correct":0}]}}`

func githubParams(t *testing.T, fake *testutil.FakeGitHub) wiring.Params {
	t.Helper()
	srv := httptest.NewServer(fake.Handler())
	t.Cleanup(srv.Close)

	return wiring.Params{
		Backend: wiring.BackendGitHub,
		GitHub: wiring.GitHubParams{
			BaseURL: srv.URL,
			Owner:   fake.Owner,
			Repo:    fake.Repo,
			Token:   fake.Token,
			Timeout: 5 * time.Second,
		},
		Directory:      "scenarios",
		TraceSize:      50,
		RateLimiterTTL: 5 * time.Minute,
		Logger:         &testutil.NoopLogger{},
	}
}

func filesystemParams(t *testing.T) wiring.Params {
	t.Helper()
	return wiring.Params{
		Backend:        wiring.BackendFilesystem,
		RootDir:        t.TempDir(),
		Directory:      "scenarios",
		TraceSize:      50,
		RateLimiterTTL: 5 * time.Minute,
		Logger:         &testutil.NoopLogger{},
	}
}

func serve(t *testing.T, c *wiring.Container, method, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, "/api/scenarios", nil)
	} else {
		req = httptest.NewRequest(method, "/api/scenarios", bytes.NewBufferString(body))
	}
	rec := httptest.NewRecorder()
	c.Server().ServeHTTP(rec, req)
	return rec
}

func TestNew_Success(t *testing.T) {
	logger := &testutil.NoopLogger{}
	p := githubParams(t, testutil.NewFakeGitHub("acme", "panel", "secret"))
	p.Logger = logger

	c, err := wiring.New(p)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer c.Close()

	if c.Logger() != logger {
		t.Error("Logger() does not return the same logger instance passed in Params")
	}
	if c.Server() == nil || c.Store() == nil || c.RateLimiterStore() == nil || c.TraceBuf() == nil {
		t.Error("container has unset components")
	}
	if c.Tokens() == nil || c.Tokens().Token() != "secret" {
		t.Error("expected the static token source")
	}
}

func TestNew_GitHubBackendEndToEnd(t *testing.T) {
	fake := testutil.NewFakeGitHub("acme", "panel", "secret")
	c, err := wiring.New(githubParams(t, fake))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer c.Close()

	if rec := serve(t, c, http.MethodPost, sampleSave); rec.Code != http.StatusOK {
		t.Fatalf("save status = %d: %s", rec.Code, rec.Body)
	}
	if rec := serve(t, c, http.MethodGet, ""); !strings.Contains(rec.Body.String(), "greeting.json") {
		t.Errorf("list does not include the saved key: %s", rec.Body)
	}
	if len(fake.Content.WriteLog()) != 1 || fake.Content.WriteLog()[0].Message != "Save scenario greeting.json" {
		t.Errorf("unexpected commits: %+v", fake.Content.WriteLog())
	}
	if c.TraceBuf().Count() != 2 {
		t.Errorf("expected 2 trace entries, got %d", c.TraceBuf().Count())
	}
}

func TestNew_MissingTokenRejectsRequests(t *testing.T) {
	fake := testutil.NewFakeGitHub("acme", "panel", "secret")
	p := githubParams(t, fake)
	p.GitHub.Token = ""

	c, err := wiring.New(p)
	if err != nil {
		t.Fatalf("a missing token must not fail startup: %v", err)
	}
	defer c.Close()

	rec := serve(t, c, http.MethodGet, "")
	if rec.Code != http.StatusInternalServerError || !strings.Contains(rec.Body.String(), "configuration_error") {
		t.Errorf("expected 500 configuration_error, got %d: %s", rec.Code, rec.Body)
	}
}

func TestNew_TokenFile(t *testing.T) {
	fake := testutil.NewFakeGitHub("acme", "panel", "secret")
	p := githubParams(t, fake)
	p.GitHub.Token = ""
	p.GitHub.TokenFile = filepath.Join(t.TempDir(), "token")
	p.GitHub.TokenDebounce = 10 * time.Millisecond
	if err := os.WriteFile(p.GitHub.TokenFile, []byte("wrong\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	c, err := wiring.New(p)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer c.Close()

	if rec := serve(t, c, http.MethodGet, ""); rec.Code != http.StatusBadGateway {
		t.Errorf("expected 502 for bad credentials, got %d: %s", rec.Code, rec.Body)
	}

	if err := os.WriteFile(p.GitHub.TokenFile, []byte("secret\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for c.Tokens().Token() != "secret" {
		if time.Now().After(deadline) {
			t.Fatal("token file was not reloaded")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if rec := serve(t, c, http.MethodGet, ""); rec.Code != http.StatusOK {
		t.Errorf("expected 200 after reload, got %d: %s", rec.Code, rec.Body)
	}
}

func TestNew_FilesystemBackend(t *testing.T) {
	p := filesystemParams(t)
	p.CommitEngine = "expr"

	c, err := wiring.New(p)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer c.Close()

	if c.Tokens() != nil {
		t.Error("the filesystem backend needs no credential")
	}
	if rec := serve(t, c, http.MethodPost, sampleSave); rec.Code != http.StatusOK {
		t.Fatalf("save status = %d: %s", rec.Code, rec.Body)
	}

	raw, err := os.ReadFile(filepath.Join(p.RootDir, "scenarios", "greeting.json"))
	if err != nil {
		t.Fatalf("document not written: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil || doc["name"] != "Greeting" {
		t.Errorf("unexpected stored document %s (%v)", raw, err)
	}
}

func TestNew_RateLimit(t *testing.T) {
	p := filesystemParams(t)
	p.RateLimit = 0.001
	p.RateBurst = 1

	c, err := wiring.New(p)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer c.Close()

	if rec := serve(t, c, http.MethodGet, ""); rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d", rec.Code)
	}
	if rec := serve(t, c, http.MethodGet, ""); rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", rec.Code)
	}
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(p *wiring.Params)
	}{
		{"unknown backend", func(p *wiring.Params) { p.Backend = "s3" }},
		{"unknown engine", func(p *wiring.Params) { p.CommitEngine = "mustache" }},
		{"bad template", func(p *wiring.Params) { p.SaveMessage = "{{ filename" }},
		{"missing repo", func(p *wiring.Params) { p.GitHub.Repo = "" }},
		{"token dir missing", func(p *wiring.Params) { p.GitHub.TokenFile = "/nonexistent/dir/token" }},
		{"no logger", func(p *wiring.Params) { p.Logger = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := githubParams(t, testutil.NewFakeGitHub("acme", "panel", "secret"))
			tt.modify(&p)

			c, err := wiring.New(p)
			if err == nil {
				c.Close()
				t.Fatal("expected error")
			}
			if c != nil {
				t.Error("expected nil container on error")
			}
		})
	}
}

func TestClose_IsIdempotent(t *testing.T) {
	p := githubParams(t, testutil.NewFakeGitHub("acme", "panel", "secret"))
	p.GitHub.TokenFile = filepath.Join(t.TempDir(), "token")
	c, err := wiring.New(p)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// Double close must not panic.
	c.Close()
	c.Close()
}
