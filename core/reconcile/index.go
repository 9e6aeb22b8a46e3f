package reconcile

import (
	"fmt"
	"strings"

	"sheetflow/core/dataset"
	"sheetflow/core/utils"
)

// Index maps composite keys to a single row each, preserving the order in
// which keys were first encountered.
type Index struct {
	keys []string
	rows map[string]dataset.Row
}

// Keys returns the indexed keys in first-seen order.
func (ix *Index) Keys() []string {
	return ix.keys
}

// Row returns the row stored under key, if present.
func (ix *Index) Row(key string) (dataset.Row, bool) {
	row, ok := ix.rows[key]
	return row, ok
}

// Has reports whether key is present in the index.
func (ix *Index) Has(key string) bool {
	_, ok := ix.rows[key]
	return ok
}

// Len returns the number of distinct keys.
func (ix *Index) Len() int {
	return len(ix.keys)
}

// BuildIndex builds a composite-key index over the dataset. Every key
// column must exist in the dataset schema; a missing column is a fatal
// configuration error naming the column and the dataset role.
//
// Duplicate composite keys are a non-fatal data-shape condition resolved
// by the duplicate policy (last row in iteration order wins by default);
// each duplicate produces one warning.
func BuildIndex(ds *dataset.Dataset, keyColumns []string, role Role, policy DuplicatePolicy) (*Index, []string, error) {
	if err := checkKeyColumns(ds, keyColumns, role); err != nil {
		return nil, nil, err
	}

	ix := &Index{rows: make(map[string]dataset.Row, ds.Len())}
	var warnings []string

	for _, row := range ds.Rows {
		key := compositeKey(row, keyColumns)
		if _, seen := ix.rows[key]; seen {
			display := displayKey(row, keyColumns)
			if policy == DuplicateFail {
				return nil, warnings, &DuplicateKeyError{Key: display, Role: role}
			}
			warnings = append(warnings, fmt.Sprintf("duplicate key %s found in %s data", display, role))
			if policy == DuplicateFirstWins {
				continue
			}
			// last wins: overwrite in place, keep original key position
			ix.rows[key] = row
			continue
		}
		ix.keys = append(ix.keys, key)
		ix.rows[key] = row
	}

	return ix, warnings, nil
}

// checkKeyColumns verifies every key column exists in the dataset schema.
func checkKeyColumns(ds *dataset.Dataset, keyColumns []string, role Role) error {
	for _, col := range keyColumns {
		if !ds.HasColumn(col) {
			return &MissingKeyColumnError{Column: col, Role: role}
		}
	}
	return nil
}

// compositeKey encodes the key column values of a row into a single map
// key. Values are tagged by kind so that the string "1" and the number 1
// remain distinct, and a missing value never collides with an empty string.
func compositeKey(row dataset.Row, keyColumns []string) string {
	parts := make([]string, len(keyColumns))
	for i, col := range keyColumns {
		parts[i] = keyPart(row[col])
	}
	return strings.Join(parts, "\x1f")
}

func keyPart(v any) string {
	if dataset.IsNull(v) {
		return "\x00"
	}
	if f, ok := utils.ToFloat(v); ok {
		if _, isString := v.(string); !isString {
			return "n:" + utils.ToString(f)
		}
	}
	if b, ok := v.(bool); ok {
		return "b:" + utils.ToString(b)
	}
	return "s:" + utils.ToString(v)
}

// displayKey renders the key values of a row for warnings and errors.
func displayKey(row dataset.Row, keyColumns []string) string {
	parts := make([]string, len(keyColumns))
	for i, col := range keyColumns {
		parts[i] = utils.ToString(row[col])
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
