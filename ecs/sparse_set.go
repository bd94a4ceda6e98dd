package ecs

// Storage is a cache-friendly component store keyed by entity slot. Values
// are kept densely packed in insertion order, with removal swapping the last
// element into the hole.
type Storage[T any] struct {
	denseEntities []Entity
	denseValues   []T
	sparse        []int
}

// NewStorage creates an empty store.
func NewStorage[T any]() *Storage[T] {
	return &Storage[T]{}
}

// Has reports whether e (including its generation) is stored.
func (s *Storage[T]) Has(e Entity) bool {
	_, ok := s.index(e)
	return ok
}

func (s *Storage[T]) index(e Entity) (int, bool) {
	if s == nil || !e.Valid() {
		return 0, false
	}
	slot := int(e.id()) - 1
	if slot >= len(s.sparse) {
		return 0, false
	}
	idx := s.sparse[slot]
	if idx < 0 || idx >= len(s.denseEntities) || s.denseEntities[idx] != e {
		return 0, false
	}
	return idx, true
}

// Get returns the value stored for e.
func (s *Storage[T]) Get(e Entity) (T, bool) {
	var zero T
	idx, ok := s.index(e)
	if !ok {
		return zero, false
	}
	return s.denseValues[idx], true
}

// Set inserts or replaces the value for e. A stale handle for the same slot
// is overwritten.
func (s *Storage[T]) Set(e Entity, v T) {
	if s == nil || !e.Valid() {
		return
	}
	slot := int(e.id()) - 1
	for slot >= len(s.sparse) {
		s.sparse = append(s.sparse, -1)
	}
	if idx := s.sparse[slot]; idx >= 0 && idx < len(s.denseEntities) && s.denseEntities[idx].id() == e.id() {
		s.denseEntities[idx] = e
		s.denseValues[idx] = v
		return
	}
	s.denseEntities = append(s.denseEntities, e)
	s.denseValues = append(s.denseValues, v)
	s.sparse[slot] = len(s.denseEntities) - 1
}

// Remove deletes the value for e if present.
func (s *Storage[T]) Remove(e Entity) bool {
	idx, ok := s.index(e)
	if !ok {
		return false
	}
	last := len(s.denseEntities) - 1
	lastEnt := s.denseEntities[last]

	s.denseEntities[idx] = lastEnt
	s.denseValues[idx] = s.denseValues[last]
	s.sparse[int(lastEnt.id())-1] = idx

	var zero T
	s.denseValues[last] = zero
	s.denseEntities = s.denseEntities[:last]
	s.denseValues = s.denseValues[:last]
	s.sparse[int(e.id())-1] = -1
	return true
}

// Len returns the number of stored values.
func (s *Storage[T]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.denseEntities)
}

// Entities returns a copy of the dense entity list.
func (s *Storage[T]) Entities() []Entity {
	if s == nil {
		return nil
	}
	return append([]Entity(nil), s.denseEntities...)
}

// ForEach visits every stored value in dense order. The callback must not
// add or remove entries.
func (s *Storage[T]) ForEach(fn func(e Entity, v T)) {
	if s == nil || fn == nil {
		return
	}
	for i, e := range s.denseEntities {
		fn(e, s.denseValues[i])
	}
}
