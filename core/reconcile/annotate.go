package reconcile

import (
	"encoding/json"
	"fmt"
	"strings"

	"sheetflow/core/dataset"
	"sheetflow/core/utils"
)

// compareRows performs the field-level comparison for a key present in
// both datasets. Equality is null-aware: two missing values are equal, a
// missing value never equals a present one, and present values compare by
// identity.
func compareRows(refRow, curRow dataset.Row, columns []string, withJSON bool) ChangeRecord {
	var record ChangeRecord
	for _, col := range columns {
		oldVal := refRow[col]
		newVal := curRow[col]
		if dataset.Equal(oldVal, newVal) {
			continue
		}
		record.Fields = append(record.Fields, col)
		record.Details = append(record.Details, fmt.Sprintf("%s: '%s'→'%s'", col, utils.ToString(oldVal), utils.ToString(newVal)))
		if withJSON {
			if record.JSON == nil {
				record.JSON = make(map[string]FieldChange)
			}
			record.JSON[col] = FieldChange{
				Old: coerce(oldVal),
				New: coerce(newVal),
			}
		}
	}
	return record
}

// coerce string-coerces a cell value for the structured detail payload,
// keeping missing values as null.
func coerce(v any) *string {
	if dataset.IsNull(v) {
		return nil
	}
	s := utils.ToString(v)
	return &s
}

// annotateRow copies a source row and appends the change metadata columns.
// NEW and DELETED rows always carry empty change metadata.
func annotateRow(source dataset.Row, status Classification, record ChangeRecord, withJSON bool) dataset.Row {
	row := dataset.CloneRow(source)
	row[ColRowStatus] = string(status)
	row[ColChangedFields] = strings.Join(record.Fields, ", ")
	row[ColChangeCount] = len(record.Fields)
	row[ColChangeDetails] = strings.Join(record.Details, " | ")
	if withJSON {
		row[ColChangeDetailsJSON] = marshalDetails(record.JSON)
	}
	return row
}

func marshalDetails(changes map[string]FieldChange) string {
	if len(changes) == 0 {
		return ""
	}
	encoded, err := json.Marshal(changes)
	if err != nil {
		// map[string]FieldChange cannot fail to marshal
		return ""
	}
	return string(encoded)
}
