package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"ghostconf/preset"
	"ghostconf/schema"
	"ghostconf/session"
)

// Refresher reloads the community catalog in the background.
type Refresher interface {
	RefreshAsync(ctx context.Context) <-chan struct{}
}

// Deps are the components the HTTP API serves. Catalog may be nil.
type Deps struct {
	Schema   *schema.Schema
	Presets  *preset.Manager
	Sessions *session.Manager
	Catalog  Refresher
}

func RegisterRoutes(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	// cross-site POSTs must not create presets or start shells
	r.Use(http.NewCrossOriginProtection().Handler)

	h := &handler{
		schema:   d.Schema,
		presets:  d.Presets,
		sessions: d.Sessions,
		catalog:  d.Catalog,
		events:   newHub(),
	}
	d.Presets.OnChange(func() { h.events.broadcast(event{Type: "presets"}) })

	// Schema and codec
	r.Get("/api/schema", h.getSchema)
	r.Post("/api/config/parse", h.parseConfig)
	r.Post("/api/config/serialize", h.serializeConfig)

	// Presets
	r.Get("/api/presets", h.listPresets)
	r.Post("/api/presets", h.createPreset)
	r.Get("/api/presets/categories", h.listCategories)
	r.Get("/api/presets/recent", h.listRecent)
	r.Get("/api/presets/{id}", h.getPreset)
	r.Put("/api/presets/{id}", h.updatePreset)
	r.Delete("/api/presets/{id}", h.deletePreset)
	r.Post("/api/presets/{id}/duplicate", h.duplicatePreset)
	r.Post("/api/presets/{id}/apply", h.applyPreset)
	r.Get("/api/presets/{id}/download", h.downloadPreset)
	r.Post("/api/catalog/refresh", h.refreshCatalog)

	// Change feed
	r.Get("/api/events", h.handleEvents)

	// Try-out shells
	r.Get("/api/sessions", h.listSessions)
	r.Post("/api/sessions", h.createSession)
	r.Delete("/api/sessions/{id}", h.killSession)
	r.Get("/api/sessions/{id}/ws", h.handleWS)

	return r
}

type handler struct {
	schema   *schema.Schema
	presets  *preset.Manager
	sessions *session.Manager
	catalog  Refresher
	events   *hub
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
