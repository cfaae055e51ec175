package api

import (
	"encoding/json"
	"net/http"

	"ghostconf/codec"
)

func (h *handler) getSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.schema.Groups())
}

// parseConfig layers {text} over {previous} and returns the resulting state
// together with its canonical text.
func (h *handler) parseConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text     string          `json:"text"`
		Previous json.RawMessage `json:"previous"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	var previous codec.State
	if len(req.Previous) > 0 && string(req.Previous) != "null" {
		st, err := codec.DecodeState(h.schema, req.Previous)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		previous = st
	}

	st := codec.Parse(req.Text, h.schema, previous)
	writeJSON(w, http.StatusOK, map[string]any{
		"state": st,
		"text":  codec.Serialize(h.schema, st),
	})
}

func (h *handler) serializeConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		State json.RawMessage `json:"state"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	st := codec.State{}
	if len(req.State) > 0 && string(req.State) != "null" {
		var err error
		if st, err = codec.DecodeState(h.schema, req.State); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(codec.Serialize(h.schema, st)))
}
