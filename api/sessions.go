package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ghostconf/codec"
	"ghostconf/session"
)

func (h *handler) listSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sessions.List())
}

// createSession starts a try-out shell. The shell settings come from, in
// order of preference, an explicit state, a config text, a preset id, or the
// defaults.
func (h *handler) createSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string          `json:"name"`
		PresetID string          `json:"presetId"`
		Config   string          `json:"config"`
		State    json.RawMessage `json:"state"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	var st codec.State
	switch {
	case len(req.State) > 0 && string(req.State) != "null":
		var err error
		if st, err = codec.DecodeState(h.schema, req.State); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	case req.Config != "":
		st = codec.Parse(req.Config, h.schema, nil)
	case req.PresetID != "":
		p, ok := h.presets.Get(req.PresetID)
		if !ok {
			http.Error(w, "preset not found", http.StatusNotFound)
			return
		}
		text, ok := h.presets.ResolveConfig(r.Context(), p)
		if !ok {
			http.Error(w, "preset config is not available", http.StatusBadGateway)
			return
		}
		st = codec.Parse(text, h.schema, nil)
	}

	s, err := h.sessions.Create(req.Name, req.PresetID, session.LaunchFromState(h.schema, st))
	if err != nil {
		if errors.Is(err, session.ErrNameTaken) {
			http.Error(w, "session name already in use", http.StatusConflict)
			return
		}
		http.Error(w, "failed to create session", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

func (h *handler) killSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.sessions.Kill(id); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to kill session", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
