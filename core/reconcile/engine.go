package reconcile

import (
	"sheetflow/core/dataset"
)

// Reconcile compares the current dataset against the reference dataset and
// returns the unified annotated result. Classification is a pure function
// of the inputs and config; two invocations with identical inputs produce
// identical results.
//
// Configuration errors (missing key columns, invalid policy values) are
// returned before any row processing begins. Duplicate keys are reported
// as warnings on the result, not errors, unless the duplicate policy is
// DuplicateFail.
func Reconcile(reference, current *dataset.Dataset, cfg Config) (*Result, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := checkKeyColumns(reference, cfg.KeyColumns, RoleReference); err != nil {
		return nil, err
	}
	if err := checkKeyColumns(current, cfg.KeyColumns, RoleCurrent); err != nil {
		return nil, err
	}

	refIndex, refWarnings, err := BuildIndex(reference, cfg.KeyColumns, RoleReference, cfg.Duplicates)
	if err != nil {
		return nil, err
	}
	curIndex, curWarnings, err := BuildIndex(current, cfg.KeyColumns, RoleCurrent, cfg.Duplicates)
	if err != nil {
		return nil, err
	}

	out := dataset.New(resultColumns(reference, current, cfg.IncludeJSONDetails)...)
	compared := comparisonColumns(current, cfg)

	var summary Summary

	// Current rows first, in input order: matched keys become CHANGED or
	// UNCHANGED, current-only keys become NEW.
	for _, key := range curIndex.Keys() {
		curRow, _ := curIndex.Row(key)
		refRow, inReference := refIndex.Row(key)
		if !inReference {
			out.AppendRow(annotateRow(curRow, StatusNew, ChangeRecord{}, cfg.IncludeJSONDetails))
			summary.New++
			continue
		}
		record := compareRows(refRow, curRow, compared, cfg.IncludeJSONDetails)
		if record.HasChanges() {
			out.AppendRow(annotateRow(curRow, StatusChanged, record, cfg.IncludeJSONDetails))
			summary.Changed++
		} else {
			out.AppendRow(annotateRow(curRow, StatusUnchanged, ChangeRecord{}, cfg.IncludeJSONDetails))
			summary.Unchanged++
		}
	}

	// Reference-only rows, in input order, subject to the deleted policy.
	for _, key := range refIndex.Keys() {
		if curIndex.Has(key) {
			continue
		}
		if cfg.DeletedRows == DeletedExclude {
			continue
		}
		refRow, _ := refIndex.Row(key)
		out.AppendRow(annotateRow(refRow, StatusDeleted, ChangeRecord{}, cfg.IncludeJSONDetails))
		summary.Deleted++
	}

	summary.Total = out.Len()

	warnings := make([]string, 0, len(refWarnings)+len(curWarnings))
	warnings = append(warnings, refWarnings...)
	warnings = append(warnings, curWarnings...)

	return &Result{Dataset: out, Summary: summary, Warnings: warnings}, nil
}

// resultColumns builds the output schema: the current dataset's columns,
// any reference-only columns, then the metadata columns. The schema is
// produced even when both inputs have zero rows.
func resultColumns(reference, current *dataset.Dataset, withJSON bool) []string {
	cols := append([]string{}, current.Columns...)
	seen := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		seen[c] = struct{}{}
	}
	for _, c := range reference.Columns {
		if _, ok := seen[c]; !ok {
			cols = append(cols, c)
			seen[c] = struct{}{}
		}
	}
	cols = append(cols, ColRowStatus, ColChangedFields, ColChangeCount, ColChangeDetails)
	if withJSON {
		cols = append(cols, ColChangeDetailsJSON)
	}
	return cols
}

// comparisonColumns returns the columns subject to change detection: the
// current dataset's columns minus key columns minus excluded columns, in
// column order.
func comparisonColumns(current *dataset.Dataset, cfg Config) []string {
	excluded := make(map[string]struct{}, len(cfg.KeyColumns)+len(cfg.ExcludeColumns))
	for _, c := range cfg.KeyColumns {
		excluded[c] = struct{}{}
	}
	for _, c := range cfg.ExcludeColumns {
		excluded[c] = struct{}{}
	}
	var cols []string
	for _, c := range current.Columns {
		if _, skip := excluded[c]; !skip {
			cols = append(cols, c)
		}
	}
	return cols
}
