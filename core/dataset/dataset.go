package dataset

import "fmt"

// Row maps column names to cell values. A cell value is one of:
// string, bool, int, int64, float64, or nil for a missing value.
type Row map[string]any

// Dataset is an ordered collection of rows sharing a column set.
// Column order is significant for display and export, not for comparison.
type Dataset struct {
	// Columns is the ordered list of column names.
	Columns []string `json:"columns"`

	// Rows holds the data. Every row maps a subset of Columns to values;
	// absent entries read as nil.
	Rows []Row `json:"rows"`
}

// New creates an empty dataset with the given column schema.
func New(columns ...string) *Dataset {
	return &Dataset{
		Columns: append([]string{}, columns...),
		Rows:    []Row{},
	}
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// HasColumn reports whether the dataset schema contains the named column.
func (d *Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// EnsureColumns appends any of the given columns that are not yet part of
// the schema, preserving the order in which they are first seen.
func (d *Dataset) EnsureColumns(names ...string) {
	for _, n := range names {
		if !d.HasColumn(n) {
			d.Columns = append(d.Columns, n)
		}
	}
}

// AppendRow adds a row to the dataset. Columns present in the row but not
// in the schema are added to the schema.
func (d *Dataset) AppendRow(row Row) {
	for _, c := range d.Columns {
		if _, ok := row[c]; !ok {
			row[c] = nil
		}
	}
	d.Rows = append(d.Rows, row)
}

// Clone returns a deep copy of the dataset. Row maps are copied; cell
// values are scalars and are copied by assignment.
func (d *Dataset) Clone() *Dataset {
	out := New(d.Columns...)
	out.Rows = make([]Row, 0, len(d.Rows))
	for _, row := range d.Rows {
		out.Rows = append(out.Rows, CloneRow(row))
	}
	return out
}

// CloneRow returns a shallow copy of a row map.
func CloneRow(row Row) Row {
	clone := make(Row, len(row))
	for k, v := range row {
		clone[k] = v
	}
	return clone
}

// Filter returns a new dataset with the same schema containing only the
// rows for which keep returns true.
func (d *Dataset) Filter(keep func(Row) bool) *Dataset {
	out := New(d.Columns...)
	for _, row := range d.Rows {
		if keep(row) {
			out.Rows = append(out.Rows, CloneRow(row))
		}
	}
	return out
}

// Select returns a new dataset restricted to the named columns, in the
// given order. Unknown columns produce an error.
func (d *Dataset) Select(columns []string) (*Dataset, error) {
	for _, c := range columns {
		if !d.HasColumn(c) {
			return nil, fmt.Errorf("column %q not found in dataset", c)
		}
	}
	out := New(columns...)
	for _, row := range d.Rows {
		selected := make(Row, len(columns))
		for _, c := range columns {
			selected[c] = row[c]
		}
		out.Rows = append(out.Rows, selected)
	}
	return out, nil
}

// IsNull reports whether a cell value counts as missing. Only nil is
// missing; an empty string is a present value.
func IsNull(v any) bool {
	return v == nil
}

// Equal compares two cell values with null-aware semantics: two nulls are
// equal, a null never equals a present value, and present values compare
// by identity after numeric normalization (so an int 3 equals a float64 3).
func Equal(a, b any) bool {
	if IsNull(a) && IsNull(b) {
		return true
	}
	if IsNull(a) || IsNull(b) {
		return false
	}
	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			return af == bf
		}
		return false
	}
	return a == b
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
