package tables

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrNotFound       = errors.New("tables: not found")
	ErrInvalidNumeric = errors.New("tables: invalid numeric format")
	ErrKindMismatch   = errors.New("tables: cell kind mismatch")
	ErrUnknownColumn  = errors.New("tables: unknown column")
)

// Kind is the declared type of a column.
type Kind uint8

const (
	KindInt Kind = iota + 1
	KindFloat
	KindString
	KindIntArray
	KindFloatArray
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindIntArray:
		return "int[]"
	case KindFloatArray:
		return "float[]"
	default:
		return "unknown"
	}
}

// ParseKind maps a schema type name ("int", "float", "string", "int[]",
// "float[]") to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "int", "integer":
		return KindInt, nil
	case "float", "number":
		return KindFloat, nil
	case "string", "text":
		return KindString, nil
	case "int[]", "ints":
		return KindIntArray, nil
	case "float[]", "floats":
		return KindFloatArray, nil
	}
	return 0, fmt.Errorf("tables: unknown kind %q", s)
}

// Cell is one typed value of a row. A cell that failed to parse keeps its
// declared kind with a zero value and reports ErrInvalidNumeric on read.
type Cell struct {
	kind    Kind
	invalid bool

	i  int64
	f  float64
	s  string
	is []int64
	fs []float64
}

// ZeroCell returns the empty value of k.
func ZeroCell(k Kind) Cell { return Cell{kind: k} }

func IntCell(v int64) Cell { return Cell{kind: KindInt, i: v} }
func FloatCell(v float64) Cell { return Cell{kind: KindFloat, f: v} }
func StringCell(v string) Cell { return Cell{kind: KindString, s: v} }
func IntsCell(v ...int64) Cell { return Cell{kind: KindIntArray, is: append([]int64(nil), v...)} }
func FloatsCell(v ...float64) Cell { return Cell{kind: KindFloatArray, fs: append([]float64(nil), v...)} }
func invalidCell(k Kind) Cell { return Cell{kind: k, invalid: true} }

func (c Cell) Kind() Kind { return c.kind }

// Valid reports whether the cell parsed successfully.
func (c Cell) Valid() bool { return !c.invalid }

func (c Cell) check(want ...Kind) error {
	if c.invalid {
		return ErrInvalidNumeric
	}
	for _, k := range want {
		if c.kind == k {
			return nil
		}
	}
	return fmt.Errorf("%w: have %s", ErrKindMismatch, c.kind)
}

func (c Cell) Int() (int64, error) {
	if err := c.check(KindInt); err != nil {
		return 0, err
	}
	return c.i, nil
}

// Float reads float and int cells.
func (c Cell) Float() (float64, error) {
	if err := c.check(KindFloat, KindInt); err != nil {
		return 0, err
	}
	if c.kind == KindInt {
		return float64(c.i), nil
	}
	return c.f, nil
}

func (c Cell) Str() (string, error) {
	if err := c.check(KindString); err != nil {
		return "", err
	}
	return c.s, nil
}

func (c Cell) Ints() ([]int64, error) {
	if err := c.check(KindIntArray); err != nil {
		return nil, err
	}
	return append([]int64(nil), c.is...), nil
}

func (c Cell) Floats() ([]float64, error) {
	if err := c.check(KindFloatArray, KindIntArray); err != nil {
		return nil, err
	}
	if c.kind == KindIntArray {
		out := make([]float64, len(c.is))
		for i, v := range c.is {
			out[i] = float64(v)
		}
		return out, nil
	}
	return append([]float64(nil), c.fs...), nil
}

func (c Cell) String() string {
	if c.invalid {
		return "<invalid>"
	}
	switch c.kind {
	case KindInt:
		return strconv.FormatInt(c.i, 10)
	case KindFloat:
		return strconv.FormatFloat(c.f, 'g', -1, 64)
	case KindString:
		return c.s
	case KindIntArray:
		parts := make([]string, len(c.is))
		for i, v := range c.is {
			parts[i] = strconv.FormatInt(v, 10)
		}
		return "[" + strings.Join(parts, ",") + "]"
	case KindFloatArray:
		parts := make([]string, len(c.fs))
		for i, v := range c.fs {
			parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		return "[" + strings.Join(parts, ",") + "]"
	}
	return ""
}

// ParseCell converts a raw spreadsheet value into a cell of kind k. Raw
// values may be strings, YAML scalars or YAML sequences; nil and blank
// strings produce the zero value. On failure the returned cell is marked
// invalid and the error wraps ErrInvalidNumeric.
func ParseCell(k Kind, raw any) (Cell, error) {
	if raw == nil {
		return ZeroCell(k), nil
	}
	if s, ok := raw.(string); ok && strings.TrimSpace(s) == "" {
		return ZeroCell(k), nil
	}

	switch k {
	case KindInt:
		v, err := toInt(raw)
		if err != nil {
			return invalidCell(k), err
		}
		return IntCell(v), nil
	case KindFloat:
		v, err := toFloat(raw)
		if err != nil {
			return invalidCell(k), err
		}
		return FloatCell(v), nil
	case KindString:
		return StringCell(strings.TrimSpace(fmt.Sprint(raw))), nil
	case KindIntArray:
		items, err := toList(raw)
		if err != nil {
			return invalidCell(k), err
		}
		out := make([]int64, 0, len(items))
		for _, it := range items {
			v, err := toInt(it)
			if err != nil {
				return invalidCell(k), err
			}
			out = append(out, v)
		}
		return Cell{kind: k, is: out}, nil
	case KindFloatArray:
		items, err := toList(raw)
		if err != nil {
			return invalidCell(k), err
		}
		out := make([]float64, 0, len(items))
		for _, it := range items {
			v, err := toFloat(it)
			if err != nil {
				return invalidCell(k), err
			}
			out = append(out, v)
		}
		return Cell{kind: k, fs: out}, nil
	}
	return invalidCell(k), fmt.Errorf("%w: kind %d", ErrKindMismatch, k)
}

func toInt(raw any) (int64, error) {
	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case uint64:
		if v > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %d overflows", ErrInvalidNumeric, v)
		}
		return int64(v), nil
	case float64:
		if v != math.Trunc(v) || !(math.Abs(v) < 1<<62) {
			return 0, fmt.Errorf("%w: %v is not an integer", ErrInvalidNumeric, v)
		}
		return int64(v), nil
	case string:
		s := strings.TrimSpace(v)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}
		// spreadsheets like to export "3.0" for integer columns
		if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) && math.Abs(f) < 1<<62 {
			return int64(f), nil
		}
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumeric, v)
	}
	return 0, fmt.Errorf("%w: unsupported value %T", ErrInvalidNumeric, raw)
}

func toFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%w: %v", ErrInvalidNumeric, v)
		}
		return v, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("%w: %q", ErrInvalidNumeric, v)
		}
		return f, nil
	}
	return 0, fmt.Errorf("%w: unsupported value %T", ErrInvalidNumeric, raw)
}

func toList(raw any) ([]any, error) {
	switch v := raw.(type) {
	case []any:
		return v, nil
	case string:
		s := strings.TrimSpace(v)
		s = strings.TrimPrefix(s, "[")
		s = strings.TrimSuffix(s, "]")
		fields := strings.FieldsFunc(s, func(r rune) bool {
			return r == ',' || r == ';' || r == '|'
		})
		out := make([]any, 0, len(fields))
		for _, f := range fields {
			if f = strings.TrimSpace(f); f != "" {
				out = append(out, f)
			}
		}
		return out, nil
	case int, int64, uint64, float64:
		return []any{v}, nil
	}
	return nil, fmt.Errorf("%w: unsupported list %T", ErrInvalidNumeric, raw)
}
