package reconcile

import (
	"strings"

	"sheetflow/core/dataset"
)

// partitionKind pairs a stage name fragment with its classification and
// store description.
type partitionKind struct {
	fragment    string
	status      Classification
	description string
}

var partitionKinds = []partitionKind{
	{"new_rows", StatusNew, "Rows that exist in current data but not in baseline"},
	{"changed_rows", StatusChanged, "Rows that exist in both datasets but have different values"},
	{"unchanged_rows", StatusUnchanged, "Rows that exist in both datasets with identical values"},
	{"deleted_rows", StatusDeleted, "Rows that exist in baseline but not in current data"},
}

// Partitions splits a reconciliation result into one named dataset per
// classification. Every applicable partition is produced even when it has
// zero rows; callers may rely on partition existence. The deleted-rows
// partition is only planned when the deleted-row policy is not exclude.
//
// Names derive from the prefix as "<prefix>_<kind>_subset"; a prefix
// already ending in an underscore is not doubled.
func Partitions(result *dataset.Dataset, prefix string, policy DeletedRowPolicy) []Partition {
	partitions := make([]Partition, 0, len(partitionKinds))
	for _, kind := range partitionKinds {
		if kind.status == StatusDeleted && policy == DeletedExclude {
			continue
		}
		subset := result.Filter(func(row dataset.Row) bool {
			status, _ := row[ColRowStatus].(string)
			return status == string(kind.status)
		})
		partitions = append(partitions, Partition{
			Name:        partitionName(prefix, kind.fragment),
			Status:      kind.status,
			Description: kind.description,
			Data:        subset,
		})
	}
	return partitions
}

func partitionName(prefix, fragment string) string {
	if strings.HasSuffix(prefix, "_") {
		return prefix + fragment + "_subset"
	}
	return prefix + "_" + fragment + "_subset"
}
