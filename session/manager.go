package session

import (
	"errors"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrNameTaken = errors.New("session name already in use")
var ErrNotFound = errors.New("session not found")

// SpawnFunc starts the process behind s and arranges for onExit(s.ID) to be
// called when it ends.
type SpawnFunc func(s *Session, onExit func(string)) error

type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	spawnFn  SpawnFunc // nil → use spawnPTY
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// NewManagerWithSpawnFn creates a Manager with a custom spawn function.
// Pass MockSpawnFn for a pipe-based in-process mock (no real PTY).
func NewManagerWithSpawnFn(fn SpawnFunc) *Manager {
	return &Manager{sessions: make(map[string]*Session), spawnFn: fn}
}

// MockSpawnFn is an os.Pipe-based spawn function for testing.
// Data written via WriteToPTY is echoed back as PTY output.
func MockSpawnFn(s *Session, onExit func(string)) error {
	r, w, err := os.Pipe()
	if err != nil {
		return err
	}
	s.ptmx = w
	go func() {
		defer r.Close()
		buf := make([]byte, 4096)
		for {
			n, readErr := r.Read(buf)
			if n > 0 {
				data := make([]byte, n)
				copy(data, buf[:n])
				s.deliver(data)
			}
			if readErr != nil {
				// EOF once the write end closes
				close(s.done)
				onExit(s.ID)
				return
			}
		}
	}()
	return nil
}

// Create starts a shell described by l. presetID records which preset the
// launch came from and may be empty.
func (m *Manager) Create(name, presetID string, l Launch) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.sessions {
		if s.Name == name {
			return nil, ErrNameTaken
		}
	}

	s := &Session{
		ID:         uuid.New().String(),
		Name:       name,
		PresetID:   presetID,
		Launch:     l,
		CreatedAt:  time.Now(),
		LastActive: time.Now(),
		scrollback: newScrollbackBuf(l.ScrollbackLines),
		done:       make(chan struct{}),
	}

	spawn := m.spawnFn
	if spawn == nil {
		spawn = spawnPTY
	}
	if err := spawn(s, m.remove); err != nil {
		return nil, err
	}

	m.sessions[s.ID] = s
	return s, nil
}

// List returns the sessions, oldest first.
func (m *Manager) List() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *Manager) Kill(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}

	if s.cmd != nil && s.cmd.Process != nil {
		s.cmd.Process.Kill()
	}
	if s.ptmx != nil {
		s.ptmx.Close()
	}
	delete(m.sessions, id)
	return nil
}

// KillAll stops every session. Used on server shutdown.
func (m *Manager) KillAll() {
	for _, s := range m.List() {
		m.Kill(s.ID)
	}
}

func (m *Manager) remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}
