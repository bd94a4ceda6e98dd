package tables

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"sync/atomic"
)

// Table is an ordered, immutable sequence of rows sharing one schema.
type Table struct {
	schema *Schema
	rows   []Row
}

func (t *Table) Name() string {
	if t == nil || t.schema == nil {
		return ""
	}
	return t.schema.name
}

func (t *Table) Schema() *Schema {
	if t == nil {
		return nil
	}
	return t.schema
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Row returns row i.
func (t *Table) Row(i int) (Row, bool) {
	if t == nil || i < 0 || i >= len(t.rows) {
		return Row{}, false
	}
	return t.rows[i], true
}

// Store maps table names to tables. Readers are lock-free and always see a
// complete table: SetTable publishes a fresh map that shares every other
// table with the previous one.
type Store struct {
	mu       sync.Mutex
	tables   atomic.Pointer[map[string]*Table]
	warnings Warnings
}

// NewStore creates an empty store.
func NewStore() *Store {
	s := &Store{}
	empty := map[string]*Table{}
	s.tables.Store(&empty)
	return s
}

func (s *Store) snapshot() map[string]*Table {
	if s == nil {
		return nil
	}
	m := s.tables.Load()
	if m == nil {
		return nil
	}
	return *m
}

// SetTable replaces the named table wholesale. Empty row sets and rows
// built from a different schema are rejected and logged; the previous table
// stays in place.
func (s *Store) SetTable(name string, rows []Row) bool {
	if s == nil {
		return false
	}
	if len(rows) == 0 {
		log.Printf("tables: refusing empty table %s", name)
		return false
	}
	schema := rows[0].schema
	if schema == nil || schema.name != name {
		log.Printf("tables: rows for %s were not built from its schema", name)
		return false
	}
	for i, r := range rows {
		if r.schema != schema {
			log.Printf("tables: %s row %d uses a different schema", name, i)
			return false
		}
	}

	t := &Table{schema: schema, rows: append([]Row(nil), rows...)}

	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.snapshot()
	next := make(map[string]*Table, len(prev)+1)
	for k, v := range prev {
		next[k] = v
	}
	next[name] = t
	s.tables.Store(&next)
	return true
}

// Table returns the named table.
func (s *Store) Table(name string) (*Table, error) {
	t, ok := s.snapshot()[name]
	if !ok {
		return nil, fmt.Errorf("%w: table %s", ErrNotFound, name)
	}
	return t, nil
}

// Has reports whether the named table is loaded.
func (s *Store) Has(name string) bool {
	_, ok := s.snapshot()[name]
	return ok
}

// Row returns row index of the named table.
func (s *Store) Row(name string, index int) (Row, error) {
	t, err := s.Table(name)
	if err != nil {
		return Row{}, err
	}
	r, ok := t.Row(index)
	if !ok {
		return Row{}, fmt.Errorf("%w: %s[%d] (len %d)", ErrNotFound, name, index, t.Len())
	}
	return r, nil
}

// Value returns the key cell of row index of the named table.
func (s *Store) Value(name string, index int, key string) (Cell, error) {
	r, err := s.Row(name, index)
	if err != nil {
		return Cell{}, err
	}
	c, err := r.Cell(key)
	if err != nil {
		return Cell{}, fmt.Errorf("%s[%d]: %w", name, index, err)
	}
	return c, nil
}

// Names returns the loaded table names, sorted.
func (s *Store) Names() []string {
	m := s.snapshot()
	out := make([]string, 0, len(m))
	for name := range m {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
