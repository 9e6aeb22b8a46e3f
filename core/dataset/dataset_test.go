package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendRow_FillsMissingColumns(t *testing.T) {
	ds := New("a", "b")
	ds.AppendRow(Row{"a": "1"})

	require.Equal(t, 1, ds.Len())
	val, ok := ds.Rows[0]["b"]
	assert.True(t, ok)
	assert.Nil(t, val)
}

func TestClone_IsIndependent(t *testing.T) {
	ds := New("a")
	ds.AppendRow(Row{"a": "original"})

	clone := ds.Clone()
	clone.Rows[0]["a"] = "mutated"
	clone.Columns = append(clone.Columns, "extra")

	assert.Equal(t, "original", ds.Rows[0]["a"])
	assert.Equal(t, []string{"a"}, ds.Columns)
}

func TestSelect(t *testing.T) {
	ds := New("a", "b", "c")
	ds.AppendRow(Row{"a": "1", "b": "2", "c": "3"})

	t.Run("reorders and restricts columns", func(t *testing.T) {
		out, err := ds.Select([]string{"c", "a"})
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "a"}, out.Columns)
		assert.Equal(t, Row{"c": "3", "a": "1"}, out.Rows[0])
	})

	t.Run("unknown column errors", func(t *testing.T) {
		_, err := ds.Select([]string{"nope"})
		assert.Error(t, err)
	})
}

func TestFilter_KeepsSchema(t *testing.T) {
	ds := New("n")
	ds.AppendRow(Row{"n": float64(1)})
	ds.AppendRow(Row{"n": float64(2)})

	out := ds.Filter(func(r Row) bool { return r["n"] == float64(2) })
	assert.Equal(t, []string{"n"}, out.Columns)
	assert.Equal(t, 1, out.Len())
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"both nil", nil, nil, true},
		{"nil vs present", nil, "", false},
		{"present vs nil", 0, nil, false},
		{"equal strings", "x", "x", true},
		{"different strings", "x", "y", false},
		{"int vs equal float", 3, float64(3), true},
		{"int vs different float", 3, 3.5, false},
		{"number vs numeric string", 3, "3", false},
		{"bools", true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
		})
	}
}
