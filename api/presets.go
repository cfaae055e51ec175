package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ghostconf/codec"
	"ghostconf/logging"
	"ghostconf/preset"
)

func (h *handler) listPresets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list := preset.Filter(h.presets.List(), q.Get("q"), q.Get("category"))
	writeJSON(w, http.StatusOK, list)
}

func (h *handler) listCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, preset.Categories(h.presets.List()))
}

func (h *handler) listRecent(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"recentlyUsed": h.presets.Recent()})
}

// getPreset returns the preset with its config resolved. A community preset
// whose remote config cannot be fetched is returned with an empty config.
func (h *handler) getPreset(w http.ResponseWriter, r *http.Request) {
	p, ok := h.presets.Get(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "preset not found", http.StatusNotFound)
		return
	}
	if text, ok := h.presets.ResolveConfig(r.Context(), p); ok {
		p.Config = text
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handler) createPreset(w http.ResponseWriter, r *http.Request) {
	var d preset.Draft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	p, err := h.presets.Create(d)
	if err != nil {
		writePresetError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *handler) updatePreset(w http.ResponseWriter, r *http.Request) {
	var d preset.Draft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	p, err := h.presets.Update(chi.URLParam(r, "id"), d)
	if err != nil {
		writePresetError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handler) deletePreset(w http.ResponseWriter, r *http.Request) {
	if err := h.presets.Delete(chi.URLParam(r, "id")); err != nil {
		writePresetError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) duplicatePreset(w http.ResponseWriter, r *http.Request) {
	src, ok := h.presets.Get(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "preset not found", http.StatusNotFound)
		return
	}
	text, ok := h.presets.ResolveConfig(r.Context(), src)
	if !ok {
		http.Error(w, "preset config is not available", http.StatusBadGateway)
		return
	}
	dup, err := h.presets.DuplicateFromCommunity(src, text)
	if err != nil {
		writePresetError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dup)
}

// applyPreset parses the preset's config into a state, optionally layered
// over {"previous": state}, and records the preset as recently applied.
func (h *handler) applyPreset(w http.ResponseWriter, r *http.Request) {
	p, ok := h.presets.Get(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "preset not found", http.StatusNotFound)
		return
	}
	var req struct {
		Previous json.RawMessage `json:"previous"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
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

	text, ok := h.presets.ResolveConfig(r.Context(), p)
	if !ok {
		http.Error(w, "preset config is not available", http.StatusBadGateway)
		return
	}
	st := codec.Parse(text, h.schema, previous)
	if err := h.presets.MarkApplied(p.ID); err != nil {
		logging.Warn("recording applied preset failed", "id", p.ID, "err", err)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":    p.ID,
		"state": st,
		"text":  codec.Serialize(h.schema, st),
	})
}

func (h *handler) downloadPreset(w http.ResponseWriter, r *http.Request) {
	p, ok := h.presets.Get(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "preset not found", http.StatusNotFound)
		return
	}
	text, _ := h.presets.ResolveConfig(r.Context(), p)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", preset.FileName(p)))
	_, _ = w.Write([]byte(text))
}

func (h *handler) refreshCatalog(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		http.Error(w, "no remote catalog configured", http.StatusNotFound)
		return
	}
	done := h.catalog.RefreshAsync(context.WithoutCancel(r.Context()))
	go func() {
		<-done
		h.events.broadcast(event{Type: "presets"})
	}()
	w.WriteHeader(http.StatusAccepted)
}

func writePresetError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, preset.ErrNotFound):
		http.Error(w, "preset not found", http.StatusNotFound)
	case errors.Is(err, preset.ErrReadOnly):
		http.Error(w, "community presets are read-only", http.StatusForbidden)
	case errors.Is(err, preset.ErrInvalidDraft):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		logging.Error("preset write failed", "err", err)
		http.Error(w, "failed to save presets", http.StatusInternalServerError)
	}
}
