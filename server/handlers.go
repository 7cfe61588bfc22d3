package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/poiesic/sift/core"
	"github.com/poiesic/sift/search"
	"github.com/poiesic/sift/snapshot"
)

type statusResponse struct {
	Ready         bool   `json:"ready"`
	SnapshotID    string `json:"snapshot_id,omitempty"`
	Documents     int    `json:"documents"`
	Terms         int    `json:"terms"`
	Vectors       int    `json:"vectors"`
	Skipped       int    `json:"skipped"`
	EmbedFailures int    `json:"embed_failures"`
	BuiltAt       string `json:"built_at,omitempty"`
}

type snippetResponse struct {
	DocID   core.DocumentID `json:"doc_id"`
	Snippet string          `json:"snippet"`
}

func (s *Server) HandleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	q := r.URL.Query()
	query := q.Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter 'q'")
		return
	}
	page := intParam(q.Get("page"), 1)
	perPage := min(intParam(q.Get("per_page"), search.DefaultPerPage), s.maxPerPage)

	result, err := s.backend.SearchPage(r.Context(), query, page, perPage)
	if err != nil {
		s.fail(w, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) HandleSnippet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	q := r.URL.Query()
	doc := q.Get("doc")
	if doc == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter 'doc'")
		return
	}
	id := core.DocumentID(doc)
	writeJSON(w, http.StatusOK, snippetResponse{
		DocID:   id,
		Snippet: s.backend.GetSnippet(r.Context(), id, q.Get("q")),
	})
}

func (s *Server) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	m := s.backend.Manifest()
	if m == nil {
		writeJSON(w, http.StatusOK, statusResponse{})
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Ready:         true,
		SnapshotID:    m.SnapshotID,
		Documents:     m.Documents,
		Terms:         m.Terms,
		Vectors:       m.Vectors,
		Skipped:       m.Skipped,
		EmbedFailures: m.EmbedFailures,
		BuiltAt:       m.BuiltTime().Format(time.RFC3339),
	})
}

func (s *Server) HandleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := s.backend.Reload(r.Context()); err != nil {
		s.fail(w, "reload", err)
		return
	}
	snapshotID := ""
	if m := s.backend.Manifest(); m != nil {
		snapshotID = m.SnapshotID
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reloaded", "snapshot_id": snapshotID})
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, search.ErrNotReady) {
		writeError(w, http.StatusServiceUnavailable, "index not ready")
		return
	}
	if errors.Is(err, snapshot.ErrNoSnapshot) {
		writeError(w, http.StatusNotFound, "no snapshot has been built")
		return
	}
	s.logger.Error(op+" failed", "err", err)
	writeError(w, http.StatusInternalServerError, op+" failed")
}

// intParam parses a positive integer, falling back to def.
func intParam(raw string, def int) int {
	if n, err := strconv.Atoi(raw); err == nil && n > 0 {
		return n
	}
	return def
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
