// Package catalog holds the read-only community presets: the list bundled
// into the binary, optionally replaced by a remote index, plus lazily
// fetched config text for entries that only carry a source URL.
package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"ghostconf/logging"
	"ghostconf/preset"
)

//go:embed bundled.yaml
var bundledYAML []byte

type entry struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Category    string `yaml:"category"`
	Description string `yaml:"description"`
	Config      string `yaml:"config"`
	SourceURL   string `yaml:"source_url"`
}

// Bundled decodes the catalog embedded in the binary.
func Bundled() ([]preset.Preset, error) {
	var doc struct {
		Presets []entry `yaml:"presets"`
	}
	if err := yaml.Unmarshal(bundledYAML, &doc); err != nil {
		return nil, fmt.Errorf("decoding bundled catalog: %w", err)
	}
	out := make([]preset.Preset, len(doc.Presets))
	for i, e := range doc.Presets {
		out[i] = preset.Preset{
			ID:          e.ID,
			Name:        e.Name,
			Category:    e.Category,
			Description: e.Description,
			Config:      e.Config,
			SourceURL:   e.SourceURL,
		}
	}
	return out, nil
}

// Catalog is the community side of the preset collection. It satisfies
// preset.Community.
type Catalog struct {
	mu       sync.RWMutex
	presets  []preset.Preset
	indexURL string
	fetcher  Fetcher

	// fetched config text by source URL
	cacheMu sync.Mutex
	configs map[string]string
}

// New returns a catalog seeded with the bundled presets. Refresh fetches
// indexURL through fetcher; an empty indexURL or nil fetcher keeps the
// bundled list for good.
func New(fetcher Fetcher, indexURL string) *Catalog {
	list, err := Bundled()
	if err != nil {
		// The embedded file is part of the build.
		panic(err)
	}
	return &Catalog{
		presets:  list,
		indexURL: indexURL,
		fetcher:  fetcher,
		configs:  make(map[string]string),
	}
}

// Presets returns a copy of the current catalog in catalog order.
func (c *Catalog) Presets() []preset.Preset {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]preset.Preset, len(c.presets))
	copy(out, c.presets)
	return out
}

var errNoPresets = errors.New(`index has no "presets" array`)

// Refresh fetches the remote index and, on success, replaces the whole
// catalog with it and drops the fetched configs. Any failure keeps the
// current catalog and cache; it is logged and never returned.
func (c *Catalog) Refresh(ctx context.Context) {
	if c.indexURL == "" || c.fetcher == nil {
		return
	}
	list, err := c.fetchIndex(ctx)
	if err != nil {
		logging.Warn("catalog refresh failed, keeping current catalog", "url", c.indexURL, "err", err)
		return
	}
	c.mu.Lock()
	c.presets = list
	c.mu.Unlock()

	c.cacheMu.Lock()
	c.configs = make(map[string]string)
	c.cacheMu.Unlock()
	logging.Debug("catalog refreshed", "url", c.indexURL, "presets", len(list))
}

// RefreshAsync runs Refresh in the background. The returned channel is
// closed when it finishes.
func (c *Catalog) RefreshAsync(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Refresh(ctx)
	}()
	return done
}

func (c *Catalog) fetchIndex(ctx context.Context) ([]preset.Preset, error) {
	data, err := c.fetcher.Fetch(ctx, c.indexURL)
	if err != nil {
		return nil, err
	}
	var doc struct {
		Presets []preset.Preset `json:"presets"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding index: %w", err)
	}
	if doc.Presets == nil {
		return nil, errNoPresets
	}
	for i := range doc.Presets {
		doc.Presets[i].Source = ""
	}
	return doc.Presets, nil
}

// Resolve returns the config text of p. Embedded text wins; otherwise
// p.SourceURL is fetched once and cached under that URL until the next
// successful Refresh. The merged id is not a cache key: it shifts as local
// presets come and go. A failed or empty fetch resolves to absent and is
// retried on the next call.
func (c *Catalog) Resolve(ctx context.Context, p preset.Preset) (string, bool) {
	if p.Config != "" {
		return p.Config, true
	}
	if p.SourceURL == "" || c.fetcher == nil {
		return "", false
	}

	c.cacheMu.Lock()
	text, ok := c.configs[p.SourceURL]
	c.cacheMu.Unlock()
	if ok {
		return text, true
	}

	data, err := c.fetcher.Fetch(ctx, p.SourceURL)
	if err != nil {
		logging.Debug("resolving preset config failed", "id", p.ID, "url", p.SourceURL, "err", err)
		return "", false
	}
	if len(data) == 0 {
		return "", false
	}
	text = string(data)

	c.cacheMu.Lock()
	c.configs[p.SourceURL] = text
	c.cacheMu.Unlock()
	return text, true
}
