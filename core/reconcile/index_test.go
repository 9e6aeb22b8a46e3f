package reconcile

import (
	"testing"

	"sheetflow/core/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildIndex_KeyOrderAndLookup(t *testing.T) {
	ds := dataset.New("id", "name")
	ds.AppendRow(dataset.Row{"id": "b", "name": "second"})
	ds.AppendRow(dataset.Row{"id": "a", "name": "first"})
	ds.AppendRow(dataset.Row{"id": "c", "name": "third"})

	ix, warnings, err := BuildIndex(ds, []string{"id"}, RoleCurrent, DuplicateLastWins)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, 3, ix.Len())

	// Keys preserve input row order, not sorted order.
	require.Len(t, ix.Keys(), 3)
	row, ok := ix.Row(ix.Keys()[0])
	require.True(t, ok)
	assert.Equal(t, "second", row["name"])
}

func TestBuildIndex_MissingKeyColumn(t *testing.T) {
	ds := dataset.New("id")
	_, _, err := BuildIndex(ds, []string{"id", "region"}, RoleReference, DuplicateLastWins)

	var missing *MissingKeyColumnError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "region", missing.Column)
	assert.Equal(t, RoleReference, missing.Role)
	assert.Contains(t, err.Error(), `"region"`)
	assert.Contains(t, err.Error(), "reference")
}

func TestBuildIndex_DuplicatePolicies(t *testing.T) {
	build := func() *dataset.Dataset {
		ds := dataset.New("id", "name")
		ds.AppendRow(dataset.Row{"id": "1", "name": "first"})
		ds.AppendRow(dataset.Row{"id": "2", "name": "other"})
		ds.AppendRow(dataset.Row{"id": "1", "name": "last"})
		return ds
	}

	t.Run("last_wins keeps last row and key position", func(t *testing.T) {
		ix, warnings, err := BuildIndex(build(), []string{"id"}, RoleCurrent, DuplicateLastWins)
		require.NoError(t, err)
		require.Len(t, warnings, 1)
		assert.Contains(t, warnings[0], "duplicate key 1")
		assert.Equal(t, 2, ix.Len())

		row, _ := ix.Row(ix.Keys()[0])
		assert.Equal(t, "last", row["name"])
	})

	t.Run("first_wins keeps first row", func(t *testing.T) {
		ix, warnings, err := BuildIndex(build(), []string{"id"}, RoleCurrent, DuplicateFirstWins)
		require.NoError(t, err)
		require.Len(t, warnings, 1)

		row, _ := ix.Row(ix.Keys()[0])
		assert.Equal(t, "first", row["name"])
	})

	t.Run("fail rejects the dataset", func(t *testing.T) {
		_, _, err := BuildIndex(build(), []string{"id"}, RoleCurrent, DuplicateFail)
		var dup *DuplicateKeyError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "1", dup.Key)
	})
}

func TestCompositeKey_Distinctions(t *testing.T) {
	tests := []struct {
		name string
		a    dataset.Row
		b    dataset.Row
		same bool
	}{
		{
			name: "string vs number do not collide",
			a:    dataset.Row{"k": "1"},
			b:    dataset.Row{"k": float64(1)},
			same: false,
		},
		{
			name: "null vs empty string do not collide",
			a:    dataset.Row{"k": nil},
			b:    dataset.Row{"k": ""},
			same: false,
		},
		{
			name: "int and float normalize to the same key",
			a:    dataset.Row{"k": 7},
			b:    dataset.Row{"k": float64(7)},
			same: true,
		},
		{
			name: "identical strings collide",
			a:    dataset.Row{"k": "x"},
			b:    dataset.Row{"k": "x"},
			same: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keyA := compositeKey(tt.a, []string{"k"})
			keyB := compositeKey(tt.b, []string{"k"})
			if tt.same {
				assert.Equal(t, keyA, keyB)
			} else {
				assert.NotEqual(t, keyA, keyB)
			}
		})
	}
}

func TestDisplayKey(t *testing.T) {
	row := dataset.Row{"region": "EU", "product": "p1"}
	assert.Equal(t, "EU", displayKey(row, []string{"region"}))
	assert.Equal(t, "(EU, p1)", displayKey(row, []string{"region", "product"}))
}
