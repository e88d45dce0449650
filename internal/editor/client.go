package editor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sophialabs/scenarioadmin/internal/domain/scenario"
)

const catalogPath = "/api/scenarios"

const maxResponseSize = 10 << 20 // 10 MB

var _ scenario.Store = (*Client)(nil)

// Client talks to a catalog endpoint over HTTP. Error responses become
// *scenario.Error values carrying the kind the server reported.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// List returns every key in the catalog.
func (c *Client) List(ctx context.Context) ([]string, error) {
	var out struct {
		Files []string `json:"files"`
	}
	if err := c.do(ctx, http.MethodGet, c.baseURL+catalogPath, nil, &out); err != nil {
		return nil, err
	}
	if out.Files == nil {
		out.Files = []string{}
	}
	return out.Files, nil
}

// Get fetches one document.
func (c *Client) Get(ctx context.Context, key string) (*scenario.Document, error) {
	var out struct {
		Content *scenario.Document `json:"content"`
	}
	target := c.baseURL + catalogPath + "?file=" + url.QueryEscape(key)
	if err := c.do(ctx, http.MethodGet, target, nil, &out); err != nil {
		return nil, err
	}
	if out.Content == nil {
		return nil, scenario.Errorf(scenario.KindMalformedDocument, "response for %s has no content", key)
	}
	return out.Content, nil
}

// Put creates or updates a document.
func (c *Client) Put(ctx context.Context, key string, doc *scenario.Document) error {
	body := struct {
		Filename string             `json:"filename"`
		Content  *scenario.Document `json:"content"`
	}{Filename: key, Content: doc}
	return c.do(ctx, http.MethodPost, c.baseURL+catalogPath, body, nil)
}

// Delete removes a document.
func (c *Client) Delete(ctx context.Context, key string) error {
	body := struct {
		Filename string `json:"filename"`
	}{Filename: key}
	return c.do(ctx, http.MethodDelete, c.baseURL+catalogPath, body, nil)
}

func (c *Client) do(ctx context.Context, method, target string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return scenario.Errorf(scenario.KindUpstreamUnavailable, "%s %s: %w", method, target, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return scenario.Errorf(scenario.KindUpstreamUnavailable, "reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseErrorResponse(resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return scenario.Errorf(scenario.KindMalformedDocument, "decoding response: %w", err)
	}
	return nil
}

func parseErrorResponse(status int, data []byte) error {
	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	_ = json.Unmarshal(data, &payload)

	message := payload.Error.Message
	if message == "" {
		message = strings.TrimSpace(string(data))
	}
	if message == "" {
		message = http.StatusText(status)
	}

	kind := scenario.ParseKind(payload.Error.Code)
	if kind == scenario.KindInternal && payload.Error.Code != scenario.KindInternal.String() {
		kind = kindForStatus(status)
	}
	return &scenario.Error{Kind: kind, Err: errors.New(message)}
}

// kindForStatus classifies responses whose code this client does not know.
func kindForStatus(status int) scenario.Kind {
	switch {
	case status == http.StatusBadRequest:
		return scenario.KindInvalidRequest
	case status == http.StatusNotFound:
		return scenario.KindNotFound
	case status == http.StatusMethodNotAllowed:
		return scenario.KindMethodNotAllowed
	case status == http.StatusConflict:
		return scenario.KindConflict
	case status == http.StatusTooManyRequests, status >= 500:
		return scenario.KindUpstreamUnavailable
	default:
		return scenario.KindInternal
	}
}
