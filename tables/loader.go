package tables

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// sheetFile is the YAML layout of one exported sheet.
type sheetFile struct {
	Table string           `yaml:"table"`
	Rows  []map[string]any `yaml:"rows"`
}

// DecodeYAML parses a sheet file. Cell-level problems are returned in
// problems and never fail the decode.
func DecodeYAML(data []byte, schemas *Registry) (string, []Row, []error, error) {
	var sheet sheetFile
	if err := yaml.Unmarshal(data, &sheet); err != nil {
		return "", nil, nil, fmt.Errorf("tables: unmarshal sheet: %w", err)
	}
	name := strings.TrimSpace(sheet.Table)
	if name == "" {
		return "", nil, nil, errors.New("tables: sheet has no table name")
	}
	schema, ok := schemas.Schema(name)
	if !ok {
		return name, nil, nil, fmt.Errorf("%w: schema %s", ErrNotFound, name)
	}

	rows := make([]Row, 0, len(sheet.Rows))
	var problems []error
	for i, raw := range sheet.Rows {
		row, errs := schema.NewRow(raw)
		for _, err := range errs {
			problems = append(problems, fmt.Errorf("row %d: %w", i, err))
		}
		rows = append(rows, row)
	}
	return name, rows, problems, nil
}

// DecodeCSV parses a CSV export whose first record is the header. Array
// cells list their items separated by ',', ';' or '|'.
func DecodeCSV(schema *Schema, r io.Reader) ([]Row, []error, error) {
	if schema == nil {
		return nil, nil, errors.New("tables: nil schema")
	}
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("tables: read %s header: %w", schema.name, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []Row
	var problems []error
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			problems = append(problems, fmt.Errorf("%s line %d: %w", schema.name, line, err))
			continue
		}
		raw := make(map[string]any, len(header))
		for i, col := range header {
			if col == "" || i >= len(record) {
				continue
			}
			raw[col] = record[i]
		}
		row, errs := schema.NewRow(raw)
		for _, err := range errs {
			problems = append(problems, fmt.Errorf("line %d: %w", line, err))
		}
		rows = append(rows, row)
	}
	return rows, problems, nil
}

// Loader pushes decoded sheets into a Store. It is the only writer of the
// store and may run on a different goroutine than the readers.
type Loader struct {
	store   *Store
	schemas *Registry
}

func NewLoader(store *Store, schemas *Registry) *Loader {
	return &Loader{store: store, schemas: schemas}
}

// LoadYAML decodes a YAML sheet and replaces its table. It returns the
// table name.
func (l *Loader) LoadYAML(data []byte) (string, error) {
	name, rows, problems, err := DecodeYAML(data, l.schemas)
	if err != nil {
		return name, err
	}
	return name, l.publish(name, rows, problems)
}

// LoadCSV decodes a CSV sheet for the named table and replaces it.
func (l *Loader) LoadCSV(name string, r io.Reader) error {
	schema, ok := l.schemas.Schema(name)
	if !ok {
		return fmt.Errorf("%w: schema %s", ErrNotFound, name)
	}
	rows, problems, err := DecodeCSV(schema, r)
	if err != nil {
		return err
	}
	return l.publish(name, rows, problems)
}

// LoadFile loads a .yaml/.yml sheet, or a .csv sheet named after the file.
func (l *Loader) LoadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("tables: read %s: %w", path, err)
	}
	return l.LoadBytes(filepath.Base(path), data)
}

// LoadBytes dispatches on the file extension of name.
func (l *Loader) LoadBytes(name string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return l.LoadYAML(data)
	case ".csv":
		table := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
		return table, l.LoadCSV(table, bytes.NewReader(data))
	}
	return "", fmt.Errorf("tables: unsupported sheet %s", name)
}

func (l *Loader) publish(name string, rows []Row, problems []error) error {
	for _, p := range problems {
		log.Printf("tables: %v", p)
	}
	if !l.store.SetTable(name, rows) {
		return fmt.Errorf("%w: %s has no usable rows", ErrNotFound, name)
	}
	log.Printf("tables: loaded %s (%d rows, %d problems)", name, len(rows), len(problems))
	return nil
}
