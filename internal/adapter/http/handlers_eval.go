package adapthttp

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"paraeval/internal/app"
)

// respond writes v, or the error mapped to its status. Server-side failures
// are logged.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, v any, err error) {
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess := sessionFrom(r)
	writeJSON(w, http.StatusOK, map[string]any{
		"username": sess.Username,
		"model":    sess.Model,
		"cursor":   sess.Cursor,
	})
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"models":   s.eval.Models().Names(),
		"selected": sessionFrom(r).Model,
	})
}

func (s *Server) handleSelectModel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var body struct {
		Model string `json:"model"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sess := sessionFrom(r)
	err := s.eval.SelectModel(r.Context(), sess, body.Model)
	s.respond(w, r, map[string]any{"selected": sess.Model}, err)
}

func (s *Server) handleEntry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	entry, err := s.eval.Current(r.Context(), sessionFrom(r))
	s.respond(w, r, entry, err)
}

func (s *Server) handleEntryNext(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	entry, err := s.eval.Next(r.Context(), sessionFrom(r))
	s.respond(w, r, entry, err)
}

func (s *Server) handleEntryPrev(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	entry, err := s.eval.Prev(r.Context(), sessionFrom(r))
	s.respond(w, r, entry, err)
}

func (s *Server) handleEntryGoto(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var body struct {
		Index json.RawMessage `json:"index"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	entry, err := s.eval.Goto(r.Context(), sessionFrom(r), jumpInput(body.Index))
	s.respond(w, r, entry, err)
}

// jumpInput accepts the index as a JSON string or a bare number.
func jumpInput(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	items, err := s.progress.Progress(r.Context(), sessionFrom(r).Username)
	s.respond(w, r, map[string]any{"items": items}, err)
}

func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	switch r.Method {
	case http.MethodGet:
		items, err := s.scores.List(r.Context(), sess.Username, sess.Model)
		s.respond(w, r, map[string]any{"model": sess.Model, "items": items}, err)

	case http.MethodPost:
		var body app.Scores
		if err := parseJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		rec, err := s.scores.SaveCurrent(r.Context(), sess, body)
		s.respond(w, r, map[string]any{"ok": true, "model": sess.Model, "saved": rec}, err)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
