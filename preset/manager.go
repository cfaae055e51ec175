package preset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"ghostconf/kv"
	"ghostconf/logging"
)

// Community is the read-only side of the collection.
type Community interface {
	// Presets returns the current catalog in catalog order.
	Presets() []Preset
	// Resolve returns the config text of p, fetching it from p.SourceURL
	// when needed. It reports false when no text could be obtained.
	Resolve(ctx context.Context, p Preset) (string, bool)
}

// Manager owns the local preset collection and merges it with the community
// catalog on every read. Each mutation rewrites the whole collection under
// StorageKey in a single Put.
type Manager struct {
	mu        sync.RWMutex
	store     kv.Store
	community Community
	local     []Preset
	recent    []string
	listeners []func()
}

// NewManager loads the local collection from store. Missing or unreadable
// data is not an error: the manager starts with an empty collection.
// community may be nil.
func NewManager(store kv.Store, community Community) *Manager {
	m := &Manager{store: store, community: community}
	m.local = loadLocal(store)
	m.recent = loadRecent(store)
	return m
}

func loadLocal(store kv.Store) []Preset {
	data, err := store.Get(StorageKey)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			logging.Warn("reading local presets failed, starting empty", "err", err)
		}
		return []Preset{}
	}
	var recs []record
	if err := json.Unmarshal(data, &recs); err != nil {
		logging.Warn("local presets are corrupt, starting empty", "err", err)
		return []Preset{}
	}
	out := make([]Preset, 0, len(recs))
	for _, r := range recs {
		out = append(out, Preset{
			ID:          r.ID,
			Name:        r.Name,
			Category:    r.Category,
			Description: r.Description,
			Config:      r.Config,
			Source:      SourceLocal,
		})
	}
	return out
}

func loadRecent(store kv.Store) []string {
	data, err := store.Get(RecentKey)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			logging.Warn("reading recent presets failed", "err", err)
		}
		return []string{}
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		logging.Warn("recent presets are corrupt, starting empty", "err", err)
		return []string{}
	}
	if ids == nil {
		ids = []string{}
	}
	return ids
}

// OnChange registers fn to run after every successful mutation and reload.
func (m *Manager) OnChange(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

func (m *Manager) notify() {
	m.mu.RLock()
	fns := make([]func(), len(m.listeners))
	copy(fns, m.listeners)
	m.mu.RUnlock()
	for _, fn := range fns {
		fn()
	}
}

func (m *Manager) communityPresets() []Preset {
	if m.community == nil {
		return nil
	}
	return m.community.Presets()
}

// merged must be called with m.mu held.
func (m *Manager) merged() []Preset {
	return Merge(m.local, m.communityPresets())
}

// List returns local presets, most recently created first, followed by the
// community catalog.
func (m *Manager) List() []Preset {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.merged()
}

// Get looks id up in the merged collection.
func (m *Manager) Get(id string) (Preset, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.merged() {
		if p.ID == id {
			return p, true
		}
	}
	return Preset{}, false
}

// Create saves a new local preset at the front of the collection.
func (m *Manager) Create(d Draft) (Preset, error) {
	name, config := strings.TrimSpace(d.Name), strings.TrimSpace(d.Config)
	if name == "" || config == "" {
		return Preset{}, ErrInvalidDraft
	}

	m.mu.Lock()
	p := Preset{
		ID:          UniqueID(name, idSet(m.merged())),
		Name:        name,
		Category:    orDefault(d.Category, DefaultCategory),
		Description: orDefault(d.Description, DefaultDescription),
		Config:      config + "\n",
		Source:      SourceLocal,
	}
	err := m.insertFront(p)
	m.mu.Unlock()
	if err != nil {
		return Preset{}, err
	}
	m.notify()
	return p, nil
}

// Update replaces the editable fields of a local preset. The id and the
// position in the collection are kept.
func (m *Manager) Update(id string, d Draft) (Preset, error) {
	m.mu.Lock()
	i, err := m.localIndex(id)
	if err != nil {
		m.mu.Unlock()
		return Preset{}, err
	}
	name, config := strings.TrimSpace(d.Name), strings.TrimSpace(d.Config)
	if name == "" || config == "" {
		m.mu.Unlock()
		return Preset{}, ErrInvalidDraft
	}

	next := make([]Preset, len(m.local))
	copy(next, m.local)
	p := next[i]
	p.Name = name
	p.Category = orDefault(d.Category, DefaultCategory)
	p.Description = orDefault(d.Description, DefaultDescription)
	p.Config = config + "\n"
	next[i] = p

	if err := m.persist(next); err != nil {
		m.mu.Unlock()
		return Preset{}, err
	}
	m.local = next
	m.mu.Unlock()
	m.notify()
	return p, nil
}

// Delete removes a local preset. Clearing any selection that pointed at it
// is up to the caller.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	i, err := m.localIndex(id)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	next := make([]Preset, 0, len(m.local)-1)
	next = append(next, m.local[:i]...)
	next = append(next, m.local[i+1:]...)
	if err := m.persist(next); err != nil {
		m.mu.Unlock()
		return err
	}
	m.local = next
	m.mu.Unlock()
	m.notify()
	return nil
}

// DuplicateFromCommunity stores an independent local copy of p holding the
// full resolved config text.
func (m *Manager) DuplicateFromCommunity(p Preset, resolvedConfig string) (Preset, error) {
	config := strings.TrimSpace(resolvedConfig)
	if config == "" {
		return Preset{}, ErrInvalidDraft
	}
	name := "Custom preset"
	if p.Name != "" {
		name = p.Name + " (copy)"
	}

	m.mu.Lock()
	dup := Preset{
		ID:          UniqueID(name, idSet(m.merged())),
		Name:        name,
		Category:    orDefault(p.Category, DefaultCategory),
		Description: orDefault(p.Description, CopyDescription),
		Config:      config + "\n",
		Source:      SourceLocal,
	}
	err := m.insertFront(dup)
	m.mu.Unlock()
	if err != nil {
		return Preset{}, err
	}
	m.notify()
	return dup, nil
}

// ResolveConfig returns the config text of p: the embedded text when present,
// otherwise whatever the community catalog can resolve. The manager lock is
// not held while fetching.
func (m *Manager) ResolveConfig(ctx context.Context, p Preset) (string, bool) {
	if p.Config != "" {
		return p.Config, true
	}
	if m.community == nil {
		return "", false
	}
	return m.community.Resolve(ctx, p)
}

// MarkApplied moves id to the front of the recently applied list, dropping
// duplicates and ids that no longer exist and capping the list at ten
// entries. An unknown id is ignored.
func (m *Manager) MarkApplied(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	exists := idSet(m.merged())
	if !exists(id) {
		return nil
	}
	seen := map[string]bool{id: true}
	next := []string{id}
	for _, eid := range m.recent {
		if len(next) == maxRecent {
			break
		}
		if seen[eid] || !exists(eid) {
			continue
		}
		seen[eid] = true
		next = append(next, eid)
	}

	data, err := json.Marshal(next)
	if err != nil {
		return err
	}
	if err := m.store.Put(RecentKey, data); err != nil {
		return fmt.Errorf("saving recent presets: %w", err)
	}
	m.recent = next
	return nil
}

// Recent returns the recently applied ids that still exist, most recent
// first.
func (m *Manager) Recent() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	exists := idSet(m.merged())
	out := make([]string, 0, len(m.recent))
	for _, id := range m.recent {
		if exists(id) {
			out = append(out, id)
		}
	}
	return out
}

// Reload re-reads the collection from storage, picking up writes made by
// another process. The last write wins.
func (m *Manager) Reload() {
	local := loadLocal(m.store)
	recent := loadRecent(m.store)
	m.mu.Lock()
	m.local = local
	m.recent = recent
	m.mu.Unlock()
	m.notify()
}

// localIndex must be called with m.mu held.
func (m *Manager) localIndex(id string) (int, error) {
	for i, p := range m.merged() {
		if p.ID != id {
			continue
		}
		if p.ReadOnly() {
			return -1, fmt.Errorf("%s: %w", id, ErrReadOnly)
		}
		// local entries lead the merged list in collection order
		return i, nil
	}
	return -1, fmt.Errorf("%s: %w", id, ErrNotFound)
}

// insertFront must be called with m.mu held.
func (m *Manager) insertFront(p Preset) error {
	next := make([]Preset, 0, len(m.local)+1)
	next = append(next, p)
	next = append(next, m.local...)
	if err := m.persist(next); err != nil {
		return err
	}
	m.local = next
	return nil
}

// persist writes list as the whole local collection. The in-memory state is
// the caller's to update once this succeeds.
func (m *Manager) persist(list []Preset) error {
	recs := make([]record, len(list))
	for i, p := range list {
		recs[i] = record{
			ID:          p.ID,
			Name:        p.Name,
			Category:    p.Category,
			Description: p.Description,
			Config:      p.Config,
		}
	}
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return err
	}
	if err := m.store.Put(StorageKey, data); err != nil {
		return fmt.Errorf("saving presets: %w", err)
	}
	return nil
}

func idSet(list []Preset) func(string) bool {
	ids := make(map[string]bool, len(list))
	for _, p := range list {
		ids[p.ID] = true
	}
	return func(id string) bool { return ids[id] }
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}
