package reconcile

import (
	"testing"

	"sheetflow/core/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reconciledCustomers(t *testing.T, policy DeletedRowPolicy) *dataset.Dataset {
	t.Helper()
	reference, current := customers()
	result, err := Reconcile(reference, current, Config{
		KeyColumns:  []string{"customer_id"},
		DeletedRows: policy,
	})
	require.NoError(t, err)
	return result.Dataset
}

func TestPartitions_AllKinds(t *testing.T) {
	result := reconciledCustomers(t, DeletedInclude)

	partitions := Partitions(result, "diff", DeletedInclude)
	require.Len(t, partitions, 4)

	byName := make(map[string]Partition, len(partitions))
	for _, p := range partitions {
		byName[p.Name] = p
	}

	assert.Equal(t, 1, byName["diff_new_rows_subset"].Data.Len())
	assert.Equal(t, 1, byName["diff_changed_rows_subset"].Data.Len())
	assert.Equal(t, 1, byName["diff_unchanged_rows_subset"].Data.Len())
	assert.Equal(t, 1, byName["diff_deleted_rows_subset"].Data.Len())

	// Union of partition rows equals the reconciliation result.
	total := 0
	for _, p := range partitions {
		total += p.Data.Len()
	}
	assert.Equal(t, result.Len(), total)
}

func TestPartitions_ExcludePolicySkipsDeleted(t *testing.T) {
	result := reconciledCustomers(t, DeletedExclude)

	partitions := Partitions(result, "diff", DeletedExclude)
	require.Len(t, partitions, 3)
	for _, p := range partitions {
		assert.NotEqual(t, StatusDeleted, p.Status)
	}
}

func TestPartitions_EmptyPartitionsStillProduced(t *testing.T) {
	reference, _ := customers()

	result, err := Reconcile(reference, reference, Config{KeyColumns: []string{"customer_id"}})
	require.NoError(t, err)

	partitions := Partitions(result.Dataset, "stg_diff", DeletedInclude)
	require.Len(t, partitions, 4)
	for _, p := range partitions {
		if p.Status == StatusUnchanged {
			assert.Equal(t, 3, p.Data.Len())
		} else {
			assert.Equal(t, 0, p.Data.Len(), "empty partition %s must still exist", p.Name)
		}
		// Partitions keep the full result schema.
		assert.Equal(t, result.Dataset.Columns, p.Data.Columns)
	}
}

func TestPartitionName_PrefixUnderscore(t *testing.T) {
	assert.Equal(t, "stg_diff_new_rows_subset", partitionName("stg_diff", "new_rows"))
	assert.Equal(t, "stg_diff_new_rows_subset", partitionName("stg_diff_", "new_rows"))
}
