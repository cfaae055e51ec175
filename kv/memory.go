package kv

import "sync"

// MemoryStore is an in-process Store. It copies on every read and write.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (s *MemoryStore) Put(key string, data []byte) error {
	v := make([]byte, len(data))
	copy(v, data)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = v
	return nil
}
