package reconcile

import (
	"fmt"

	"sheetflow/core/dataset"
)

// Classification is the four-way row status assigned to every key in the
// union of the two input datasets.
type Classification string

const (
	// StatusNew marks a key present only in the current dataset.
	StatusNew Classification = "NEW"
	// StatusChanged marks a key present in both datasets with at least one
	// compared column differing.
	StatusChanged Classification = "CHANGED"
	// StatusUnchanged marks a key present in both datasets with no
	// compared column differing.
	StatusUnchanged Classification = "UNCHANGED"
	// StatusDeleted marks a key present only in the reference dataset.
	StatusDeleted Classification = "DELETED"
)

// DeletedRowPolicy controls how reference-only rows appear in the output.
type DeletedRowPolicy string

const (
	// DeletedInclude keeps DELETED rows in the unified result.
	DeletedInclude DeletedRowPolicy = "include"
	// DeletedExclude drops reference-only keys from the output entirely.
	DeletedExclude DeletedRowPolicy = "exclude"
	// DeletedSeparateStage keeps DELETED rows in the unified result and in
	// a dedicated partition.
	DeletedSeparateStage DeletedRowPolicy = "separate_stage"
)

// DuplicatePolicy controls how duplicate composite keys within one input
// dataset are resolved.
type DuplicatePolicy string

const (
	// DuplicateLastWins keeps the last row encountered in iteration order.
	// This matches the historical behavior and is the default.
	DuplicateLastWins DuplicatePolicy = "last_wins"
	// DuplicateFirstWins keeps the first row encountered.
	DuplicateFirstWins DuplicatePolicy = "first_wins"
	// DuplicateFail aborts the reconciliation on the first duplicate key.
	DuplicateFail DuplicatePolicy = "fail"
)

// Metadata columns appended to every result row.
const (
	ColRowStatus         = "Row_Status"
	ColChangedFields     = "Changed_Fields"
	ColChangeCount       = "Change_Count"
	ColChangeDetails     = "Change_Details"
	ColChangeDetailsJSON = "Change_Details_JSON"
)

// Role identifies which side of the comparison a dataset is on. It is used
// in warnings and errors so the offending input can be named.
type Role string

const (
	// RoleReference is the baseline ("before") dataset.
	RoleReference Role = "reference"
	// RoleCurrent is the subject ("after") dataset.
	RoleCurrent Role = "current"
)

// Config controls a single reconciliation.
type Config struct {
	// KeyColumns is the ordered, non-empty list of columns forming a row's
	// identity. Required.
	KeyColumns []string

	// ExcludeColumns lists columns never compared for changes. Excluded
	// columns are still carried into the output rows. Key columns are
	// implicitly excluded.
	ExcludeColumns []string

	// DeletedRows selects the deleted-row policy. Defaults to DeletedInclude.
	DeletedRows DeletedRowPolicy

	// Duplicates selects the duplicate-key policy. Defaults to
	// DuplicateLastWins.
	Duplicates DuplicatePolicy

	// IncludeJSONDetails adds the Change_Details_JSON column containing a
	// string-coerced structured change mapping. The payload is a display
	// and audit aid, not a round-trippable representation.
	IncludeJSONDetails bool
}

// withDefaults returns a copy of the config with zero-valued policies
// replaced by their defaults.
func (c Config) withDefaults() Config {
	if c.DeletedRows == "" {
		c.DeletedRows = DeletedInclude
	}
	if c.Duplicates == "" {
		c.Duplicates = DuplicateLastWins
	}
	return c
}

// Validate checks the config before any row processing begins.
func (c Config) Validate() error {
	if len(c.KeyColumns) == 0 {
		return &InvalidConfigError{Field: "key_columns", Reason: "at least one key column is required"}
	}
	for _, k := range c.KeyColumns {
		if k == "" {
			return &InvalidConfigError{Field: "key_columns", Reason: "key column names must not be empty"}
		}
	}
	switch c.DeletedRows {
	case DeletedInclude, DeletedExclude, DeletedSeparateStage:
	default:
		return &InvalidConfigError{
			Field:  "handle_deleted_rows",
			Reason: fmt.Sprintf("must be one of include, exclude, separate_stage; got %q", c.DeletedRows),
		}
	}
	switch c.Duplicates {
	case DuplicateLastWins, DuplicateFirstWins, DuplicateFail:
	default:
		return &InvalidConfigError{
			Field:  "on_duplicate_keys",
			Reason: fmt.Sprintf("must be one of last_wins, first_wins, fail; got %q", c.Duplicates),
		}
	}
	return nil
}

// InvalidConfigError reports a configuration-class failure. It is raised
// before processing starts and names the offending field.
type InvalidConfigError struct {
	Field  string
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid reconcile config: %s: %s", e.Field, e.Reason)
}

// MissingKeyColumnError reports a key column absent from one of the input
// datasets.
type MissingKeyColumnError struct {
	Column string
	Role   Role
}

func (e *MissingKeyColumnError) Error() string {
	return fmt.Sprintf("key column %q not found in %s dataset", e.Column, e.Role)
}

// DuplicateKeyError reports a duplicate composite key when the duplicate
// policy is DuplicateFail.
type DuplicateKeyError struct {
	Key  string
	Role Role
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key %s in %s dataset", e.Key, e.Role)
}

// FieldChange records one column's old and new value, string-coerced.
// A nil pointer means the value was missing on that side.
type FieldChange struct {
	Old *string `json:"old"`
	New *string `json:"new"`
}

// ChangeRecord is the field-level comparison outcome for a key present in
// both datasets.
type ChangeRecord struct {
	// Fields lists the changed column names in column order.
	Fields []string

	// Details holds one human-readable entry per changed column, of the
	// form "col: 'old'→'new'".
	Details []string

	// JSON maps changed columns to their string-coerced old/new values.
	// Populated only when structured detail capture is enabled.
	JSON map[string]FieldChange
}

// HasChanges reports whether any compared column differed.
func (r ChangeRecord) HasChanges() bool {
	return len(r.Fields) > 0
}

// Summary provides aggregate counts for a reconciliation result.
type Summary struct {
	Total     int `json:"total"`
	New       int `json:"new"`
	Changed   int `json:"changed"`
	Unchanged int `json:"unchanged"`
	Deleted   int `json:"deleted"`
}

// Result is the outcome of one reconciliation.
type Result struct {
	// Dataset is the unified annotated output.
	Dataset *dataset.Dataset

	// Summary holds per-classification counts.
	Summary Summary

	// Warnings lists non-fatal data-shape conditions, currently duplicate
	// composite keys.
	Warnings []string
}

// Partition is one named subset of the reconciliation result, filtered to
// a single classification.
type Partition struct {
	// Name is the stage name the partition should be saved under.
	Name string

	// Status is the classification this partition holds.
	Status Classification

	// Description is a human-readable summary for the stage store.
	Description string

	// Data is the filtered dataset. May have zero rows.
	Data *dataset.Dataset
}
