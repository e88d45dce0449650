// Package github implements ports.ContentAPI over the GitHub repository
// contents REST API. Files are addressed relative to the repository root;
// revisions are blob SHAs.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sophialabs/scenarioadmin/internal/domain/scenario"
	"github.com/sophialabs/scenarioadmin/internal/infrastructure/ports"
)

// apiVersion pins the REST API version header.
const apiVersion = "2022-11-28"

// DefaultBaseURL is the public GitHub API.
const DefaultBaseURL = "https://api.github.com"

const maxResponseSize = 10 << 20 // 10 MB

var _ ports.ContentAPI = (*Client)(nil)

// Config holds everything needed to talk to one repository.
type Config struct {
	BaseURL string
	Owner   string
	Repo    string
	// Branch is optional; the repository default branch is used when empty.
	Branch string

	Tokens     ports.TokenSource
	HTTPClient *http.Client
	Logger     ports.Logger
}

// Client is a GitHub contents API client bound to one repository.
type Client struct {
	baseURL    string
	owner      string
	repo       string
	branch     string
	tokens     ports.TokenSource
	httpClient *http.Client
	logger     ports.Logger
}

// NewClient validates cfg and builds a client. A token source that currently
// returns no token is accepted; requests then fail with a configuration error.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Owner == "" || cfg.Repo == "" {
		return nil, fmt.Errorf("github: owner and repo are required")
	}
	if cfg.Tokens == nil {
		return nil, fmt.Errorf("github: token source is required")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("github: logger is required")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    baseURL,
		owner:      cfg.Owner,
		repo:       cfg.Repo,
		branch:     cfg.Branch,
		tokens:     cfg.Tokens,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}, nil
}

// contentEntry is the wire shape of both file and directory-entry responses.
type contentEntry struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	SHA      string `json:"sha"`
	Type     string `json:"type"`
	Encoding string `json:"encoding"`
	Content  string `json:"content"`
}

// ListDirectory lists the entries of a repository directory.
func (c *Client) ListDirectory(ctx context.Context, path string) ([]ports.DirEntry, error) {
	body, err := c.do(ctx, http.MethodGet, c.readURL(path), nil)
	if err != nil {
		return nil, err
	}

	var entries []contentEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, scenario.Errorf(scenario.KindUpstreamUnavailable, "github: %s is not a directory listing: %w", path, err)
	}

	result := make([]ports.DirEntry, 0, len(entries))
	for _, e := range entries {
		result = append(result, ports.DirEntry{Name: e.Name, Type: e.Type})
	}
	return result, nil
}

// ReadFile fetches a file's base64 content and blob SHA.
func (c *Client) ReadFile(ctx context.Context, path string) (*ports.File, error) {
	body, err := c.do(ctx, http.MethodGet, c.readURL(path), nil)
	if err != nil {
		return nil, err
	}

	var entry contentEntry
	if err := json.Unmarshal(body, &entry); err != nil {
		return nil, scenario.Errorf(scenario.KindMalformedDocument, "github: %s is not a file: %w", path, err)
	}
	if entry.Type != "" && entry.Type != "file" {
		return nil, scenario.Errorf(scenario.KindMalformedDocument, "github: %s is a %s, not a file", path, entry.Type)
	}
	if entry.Encoding != "" && entry.Encoding != "base64" {
		return nil, scenario.Errorf(scenario.KindMalformedDocument, "github: %s has unsupported encoding %q", path, entry.Encoding)
	}

	return &ports.File{Path: path, Content: entry.Content, Revision: entry.SHA}, nil
}

// WriteFile creates or updates a file with a commit on the configured branch.
func (c *Client) WriteFile(ctx context.Context, req ports.WriteRequest) (string, error) {
	payload := struct {
		Message string `json:"message"`
		Content string `json:"content"`
		SHA     string `json:"sha,omitempty"`
		Branch  string `json:"branch,omitempty"`
	}{Message: req.Message, Content: req.Content, SHA: req.Revision, Branch: c.branch}

	body, err := c.do(ctx, http.MethodPut, c.contentsURL(req.Path), payload)
	if err != nil {
		return "", err
	}

	var result struct {
		Content contentEntry `json:"content"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", scenario.Errorf(scenario.KindUpstreamUnavailable, "github: decoding write response: %w", err)
	}
	c.logger.Debug("github file written", "path", req.Path, "sha", result.Content.SHA)
	return result.Content.SHA, nil
}

// DeleteFile removes a file with a commit on the configured branch.
func (c *Client) DeleteFile(ctx context.Context, req ports.DeleteRequest) error {
	payload := struct {
		Message string `json:"message"`
		SHA     string `json:"sha"`
		Branch  string `json:"branch,omitempty"`
	}{Message: req.Message, SHA: req.Revision, Branch: c.branch}

	if _, err := c.do(ctx, http.MethodDelete, c.contentsURL(req.Path), payload); err != nil {
		return err
	}
	c.logger.Debug("github file deleted", "path", req.Path)
	return nil
}

func (c *Client) contentsURL(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s",
		c.baseURL, url.PathEscape(c.owner), url.PathEscape(c.repo), strings.Join(segments, "/"))
}

func (c *Client) readURL(path string) string {
	u := c.contentsURL(path)
	if c.branch != "" {
		u += "?ref=" + url.QueryEscape(c.branch)
	}
	return u
}

// do executes one authenticated request and returns the response body.
// Non-2xx responses become tagged *APIError values.
func (c *Client) do(ctx context.Context, method, rawURL string, requestBody any) ([]byte, error) {
	token := c.tokens.Token()
	if token == "" {
		return nil, scenario.Errorf(scenario.KindConfiguration, "github: no API token configured")
	}

	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("github: encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("github: creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	if requestBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, scenario.Errorf(scenario.KindUpstreamUnavailable, "github: %s %s: %w", method, rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, scenario.Errorf(scenario.KindUpstreamUnavailable, "github: reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := parseAPIError(resp.StatusCode, body)
		c.logger.Debug("github request failed", "method", method, "url", rawURL, "status", resp.StatusCode, "message", apiErr.Message)
		return nil, &scenario.Error{Kind: apiErr.Kind(), Err: apiErr}
	}
	return body, nil
}
