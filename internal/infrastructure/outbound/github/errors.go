package github

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sophialabs/scenarioadmin/internal/domain/scenario"
)

// APIError is a non-2xx response from the GitHub REST API.
type APIError struct {
	StatusCode       int
	Message          string
	DocumentationURL string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github: HTTP %d: %s", e.StatusCode, e.Message)
}

// Kind classifies the response for callers above the content API.
func (e *APIError) Kind() scenario.Kind {
	switch {
	case e.StatusCode == http.StatusUnauthorized:
		return scenario.KindUnauthorized
	case e.StatusCode == http.StatusForbidden:
		if isRateLimitMessage(e.Message) {
			return scenario.KindUpstreamUnavailable
		}
		return scenario.KindUnauthorized
	case e.StatusCode == http.StatusNotFound:
		return scenario.KindNotFound
	case e.StatusCode == http.StatusConflict:
		return scenario.KindConflict
	case e.StatusCode == http.StatusUnprocessableEntity:
		// A missing or stale sha is reported as a validation failure.
		if strings.Contains(strings.ToLower(e.Message), "sha") {
			return scenario.KindConflict
		}
		return scenario.KindInvalidRequest
	default:
		return scenario.KindUpstreamUnavailable
	}
}

// parseAPIError decodes GitHub's JSON error body. Bodies that are not JSON
// fall back to the status text.
func parseAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}

	var parsed struct {
		Message          string `json:"message"`
		DocumentationURL string `json:"documentation_url"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		apiErr.Message = parsed.Message
		apiErr.DocumentationURL = parsed.DocumentationURL
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(body))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(statusCode)
	}
	return apiErr
}

// isRateLimitMessage distinguishes a rate-limit 403 from a permission 403.
func isRateLimitMessage(message string) bool {
	lower := strings.ToLower(message)
	return strings.Contains(lower, "rate limit") ||
		strings.Contains(lower, "abuse detection")
}
