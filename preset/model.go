package preset

import "errors"

// Source tells where a preset came from. It is assigned when the collection
// is read and never persisted.
type Source string

const (
	SourceLocal     Source = "local"
	SourceCommunity Source = "community"
)

// Preset is a named configuration snapshot. Config is the raw text and the
// source of truth; community presets may leave it empty and point at
// SourceURL instead.
type Preset struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Config      string `json:"config"`
	SourceURL   string `json:"sourceUrl,omitempty"`
	Source      Source `json:"source,omitempty"`
}

// ReadOnly reports whether the preset belongs to the community catalog.
func (p Preset) ReadOnly() bool {
	return p.Source == SourceCommunity
}

// Draft holds the user-editable fields of a local preset.
type Draft struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Config      string `json:"config"`
}

// record is the persisted shape of a local preset.
type record struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Config      string `json:"config"`
}

const (
	// StorageKey holds the local collection as a JSON array.
	StorageKey = "ghostty_config_store_v1"
	// RecentKey holds the recently applied ids, most recent first.
	RecentKey = "ghostty_config_recent_v1"

	DefaultCategory    = "Custom"
	DefaultDescription = "Local preset"
	CopyDescription    = "Saved from community"

	maxRecent = 10
)

var (
	ErrNotFound     = errors.New("preset not found")
	ErrReadOnly     = errors.New("preset is read-only")
	ErrInvalidDraft = errors.New("preset needs a name and a config")
)
