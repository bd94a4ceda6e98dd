package tables

import (
	"fmt"
	"sort"
)

// Column declares one typed column of a table.
type Column struct {
	Name string
	Kind Kind
}

// Schema is the fixed column set of a table. Every row built from a schema
// carries every column.
type Schema struct {
	name    string
	columns []Column
	index   map[string]int
}

// NewSchema builds a schema. Duplicate column names keep the first
// declaration.
func NewSchema(name string, columns ...Column) *Schema {
	s := &Schema{name: name, index: make(map[string]int, len(columns))}
	for _, c := range columns {
		if _, dup := s.index[c.Name]; dup {
			continue
		}
		s.index[c.Name] = len(s.columns)
		s.columns = append(s.columns, c)
	}
	return s
}

func (s *Schema) Name() string { return s.name }

// Columns returns a copy of the column list.
func (s *Schema) Columns() []Column {
	return append([]Column(nil), s.columns...)
}

// Lookup returns the position and kind of col.
func (s *Schema) Lookup(col string) (int, Kind, bool) {
	if s == nil {
		return 0, 0, false
	}
	i, ok := s.index[col]
	if !ok {
		return 0, 0, false
	}
	return i, s.columns[i].Kind, true
}

// NewRow parses raw cells into a row. Missing columns get zero values,
// unparsable cells are kept as invalid cells, and unknown columns are
// dropped. Every problem is returned; none of them prevent the row from
// being built.
func (s *Schema) NewRow(raw map[string]any) (Row, []error) {
	cells := make([]Cell, len(s.columns))
	var problems []error
	for i, c := range s.columns {
		v, present := raw[c.Name]
		if !present {
			cells[i] = ZeroCell(c.Kind)
			continue
		}
		cell, err := ParseCell(c.Kind, v)
		if err != nil {
			problems = append(problems, fmt.Errorf("%s.%s: %w", s.name, c.Name, err))
		}
		cells[i] = cell
	}

	var unknown []string
	for k := range raw {
		if _, ok := s.index[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	for _, k := range unknown {
		problems = append(problems, fmt.Errorf("%s.%s: %w", s.name, k, ErrUnknownColumn))
	}

	return Row{schema: s, cells: cells}, problems
}

// MustRow builds a row from already typed cells. Columns not given are zero.
// It panics on unknown columns or kind mismatches and is meant for tests and
// static fixtures.
func (s *Schema) MustRow(cells map[string]Cell) Row {
	out := make([]Cell, len(s.columns))
	for i, c := range s.columns {
		out[i] = ZeroCell(c.Kind)
	}
	for name, cell := range cells {
		i, kind, ok := s.Lookup(name)
		if !ok {
			panic(fmt.Sprintf("tables: %s has no column %q", s.name, name))
		}
		if cell.kind != kind {
			panic(fmt.Sprintf("tables: %s.%s is %s, got %s", s.name, name, kind, cell.kind))
		}
		out[i] = cell
	}
	return Row{schema: s, cells: out}
}

// Row is one immutable record of a table.
type Row struct {
	schema *Schema
	cells  []Cell
}

// Schema returns the schema the row was built from.
func (r Row) Schema() *Schema { return r.schema }

// Cell returns the cell for col, or ErrNotFound when the schema has no such
// column.
func (r Row) Cell(col string) (Cell, error) {
	i, _, ok := r.schema.Lookup(col)
	if !ok {
		return Cell{}, fmt.Errorf("%w: column %q", ErrNotFound, col)
	}
	return r.cells[i], nil
}

func (r Row) Int(col string) (int64, error) {
	c, err := r.Cell(col)
	if err != nil {
		return 0, err
	}
	return c.Int()
}

func (r Row) Float(col string) (float64, error) {
	c, err := r.Cell(col)
	if err != nil {
		return 0, err
	}
	return c.Float()
}

func (r Row) String(col string) (string, error) {
	c, err := r.Cell(col)
	if err != nil {
		return "", err
	}
	return c.Str()
}

func (r Row) Ints(col string) ([]int64, error) {
	c, err := r.Cell(col)
	if err != nil {
		return nil, err
	}
	return c.Ints()
}

func (r Row) Floats(col string) ([]float64, error) {
	c, err := r.Cell(col)
	if err != nil {
		return nil, err
	}
	return c.Floats()
}

// Registry maps table names to schemas.
type Registry struct {
	schemas map[string]*Schema
}

func NewRegistry(schemas ...*Schema) *Registry {
	r := &Registry{schemas: make(map[string]*Schema, len(schemas))}
	for _, s := range schemas {
		r.Register(s)
	}
	return r
}

// Register adds or replaces the schema for s.Name().
func (r *Registry) Register(s *Schema) {
	if r == nil || s == nil {
		return
	}
	r.schemas[s.name] = s
}

func (r *Registry) Schema(name string) (*Schema, bool) {
	if r == nil {
		return nil, false
	}
	s, ok := r.schemas[name]
	return s, ok
}

// Names returns the registered table names, sorted.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
