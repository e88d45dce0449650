package testutil

import (
	"encoding/json"
	"errors"
	"net/http"
	"path"

	"github.com/sophialabs/scenarioadmin/internal/domain/scenario"
	"github.com/sophialabs/scenarioadmin/internal/infrastructure/ports"
)

// FakeGitHub serves the subset of the GitHub contents API used by the
// github client, backed by a MemoryContent.
type FakeGitHub struct {
	Owner   string
	Repo    string
	Token   string
	Content *MemoryContent
}

// NewFakeGitHub creates a fake repository owner/repo that accepts token.
func NewFakeGitHub(owner, repo, token string) *FakeGitHub {
	return &FakeGitHub{Owner: owner, Repo: repo, Token: token, Content: NewMemoryContent()}
}

// Handler returns the HTTP handler for the fake API.
func (f *FakeGitHub) Handler() http.Handler {
	mux := http.NewServeMux()
	prefix := "/repos/" + f.Owner + "/" + f.Repo + "/contents/"
	mux.HandleFunc("GET "+prefix+"{path...}", f.authorized(f.handleGet))
	mux.HandleFunc("PUT "+prefix+"{path...}", f.authorized(f.handlePut))
	mux.HandleFunc("DELETE "+prefix+"{path...}", f.authorized(f.handleDelete))
	return mux
}

func (f *FakeGitHub) authorized(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+f.Token {
			writeGitHubError(w, http.StatusUnauthorized, "Bad credentials")
			return
		}
		next(w, r)
	}
}

type fakeEntry struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	SHA      string `json:"sha,omitempty"`
	Type     string `json:"type"`
	Encoding string `json:"encoding,omitempty"`
	Content  string `json:"content,omitempty"`
}

func (f *FakeGitHub) handleGet(w http.ResponseWriter, r *http.Request) {
	p := r.PathValue("path")
	file, err := f.Content.ReadFile(r.Context(), p)
	if err == nil {
		writeGitHubJSON(w, http.StatusOK, fakeEntry{
			Name: path.Base(p), Path: p, SHA: file.Revision,
			Type: "file", Encoding: "base64", Content: file.Content,
		})
		return
	}
	if !errors.Is(err, scenario.ErrNotFound) {
		writeContentError(w, err)
		return
	}

	entries, err := f.Content.ListDirectory(r.Context(), p)
	if err != nil {
		writeContentError(w, err)
		return
	}
	out := make([]fakeEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, fakeEntry{Name: e.Name, Path: path.Join(p, e.Name), Type: e.Type})
	}
	writeGitHubJSON(w, http.StatusOK, out)
}

func (f *FakeGitHub) handlePut(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Message string `json:"message"`
		Content string `json:"content"`
		SHA     string `json:"sha"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Message == "" {
		writeGitHubError(w, http.StatusUnprocessableEntity, "Invalid request.")
		return
	}
	p := r.PathValue("path")
	sha, err := f.Content.WriteFile(r.Context(), ports.WriteRequest{
		Path: p, Content: body.Content, Revision: body.SHA, Message: body.Message,
	})
	if err != nil {
		writeContentError(w, err)
		return
	}
	status := http.StatusOK
	if body.SHA == "" {
		status = http.StatusCreated
	}
	writeGitHubJSON(w, status, map[string]fakeEntry{
		"content": {Name: path.Base(p), Path: p, SHA: sha, Type: "file"},
	})
}

func (f *FakeGitHub) handleDelete(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Message string `json:"message"`
		SHA     string `json:"sha"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.SHA == "" {
		writeGitHubError(w, http.StatusUnprocessableEntity, "Invalid request.\n\n\"sha\" wasn't supplied.")
		return
	}
	err := f.Content.DeleteFile(r.Context(), ports.DeleteRequest{
		Path: r.PathValue("path"), Revision: body.SHA, Message: body.Message,
	})
	if err != nil {
		writeContentError(w, err)
		return
	}
	writeGitHubJSON(w, http.StatusOK, map[string]any{"content": nil})
}

func writeContentError(w http.ResponseWriter, err error) {
	switch scenario.KindOf(err) {
	case scenario.KindNotFound:
		writeGitHubError(w, http.StatusNotFound, "Not Found")
	case scenario.KindConflict:
		writeGitHubError(w, http.StatusConflict, err.Error())
	case scenario.KindInvalidRequest:
		writeGitHubError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeGitHubError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeGitHubError(w http.ResponseWriter, status int, message string) {
	writeGitHubJSON(w, status, map[string]string{
		"message":           message,
		"documentation_url": "https://docs.github.com/rest/repos/contents",
	})
}

func writeGitHubJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
