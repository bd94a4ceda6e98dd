// Package save persists small key/value records such as equipment choices
// and currency counters.
package save

import (
	"fmt"
	"log"
	"sort"
	"strconv"
	"sync"
)

// Store is an opaque key/value backend.
type Store interface {
	Load(key string) (string, bool)
	Save(key, value string) error
}

// MemoryStore keeps records in memory. The zero value is ready to use.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
	saves  int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string]string{}}
}

func (m *MemoryStore) Load(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *MemoryStore) Save(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = map[string]string{}
	}
	m.values[key] = value
	m.saves++
	return nil
}

// Saves returns how many writes the store received.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Keys returns the stored keys, sorted.
func (m *MemoryStore) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.values))
	for k := range m.values {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// LoadInt reads an integer record. Absent or malformed records yield def;
// malformed ones are logged.
func LoadInt(s Store, key string, def int) int {
	if s == nil {
		return def
	}
	raw, ok := s.Load(key)
	if !ok {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("save: %s = %q is not an integer, using %d", key, raw, def)
		return def
	}
	return v
}

// SaveInt writes an integer record.
func SaveInt(s Store, key string, v int) error {
	if s == nil {
		return fmt.Errorf("save: no store for %s", key)
	}
	if err := s.Save(key, strconv.Itoa(v)); err != nil {
		return fmt.Errorf("save: %s: %w", key, err)
	}
	return nil
}
