package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/sophialabs/scenarioadmin/internal/domain/scenario"
)

// saveRequest is the POST body. Content stays raw so that a missing field
// and an explicit null can both be rejected.
type saveRequest struct {
	Filename string          `json:"filename"`
	Content  json.RawMessage `json:"content"`
}

type deleteRequest struct {
	Filename string `json:"filename"`
}

type successResponse struct {
	Success bool `json:"success"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug("catalog request", "method", r.Method, "query", r.URL.RawQuery, "request_id", middleware.GetReqID(r.Context()))

	switch r.Method {
	case http.MethodGet:
		if r.URL.Query().Has("file") {
			s.handleGet(w, r)
			return
		}
		s.handleList(w, r)
	case http.MethodPost:
		s.handleSave(w, r)
	case http.MethodDelete:
		s.handleDelete(w, r)
	default:
		w.Header().Set("Allow", "GET, POST, DELETE")
		writeError(w, scenario.Errorf(scenario.KindMethodNotAllowed, "method %s not allowed", r.Method))
	}
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	keys, err := s.listUC.Execute(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string][]string{"files": keys})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("file")
	if key == "" {
		writeError(w, scenario.Errorf(scenario.KindInvalidRequest, "file must not be empty"))
		return
	}

	doc, err := s.getUC.Execute(r.Context(), key)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]*scenario.Document{"content": doc})
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	content := bytes.TrimSpace(req.Content)
	if req.Filename == "" || len(content) == 0 || bytes.Equal(content, []byte("null")) {
		writeError(w, scenario.Errorf(scenario.KindInvalidRequest, "filename and content are required"))
		return
	}

	var doc scenario.Document
	if err := json.Unmarshal(content, &doc); err != nil {
		writeError(w, scenario.Errorf(scenario.KindInvalidRequest, "content is not a scenario document: %w", err))
		return
	}

	if err := s.saveUC.Execute(r.Context(), req.Filename, &doc); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, successResponse{Success: true})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Filename == "" {
		writeError(w, scenario.Errorf(scenario.KindInvalidRequest, "filename is required"))
		return
	}

	if err := s.deleteUC.Execute(r.Context(), req.Filename); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, successResponse{Success: true})
}

// decodeBody reads a JSON object body. An empty body decodes as the zero
// value so that the caller reports the missing fields.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	defer func() { _ = r.Body.Close() }()
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return scenario.Errorf(scenario.KindInvalidRequest, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return scenario.Errorf(scenario.KindInvalidRequest, "failed to read request body: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return scenario.Errorf(scenario.KindInvalidRequest, "request body is not valid JSON: %w", err)
	}
	return nil
}
