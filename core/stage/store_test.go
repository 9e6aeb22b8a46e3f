package stage

import (
	"testing"

	"sheetflow/core/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *dataset.Dataset {
	ds := dataset.New("id", "name")
	ds.AppendRow(dataset.Row{"id": "1", "name": "one"})
	return ds
}

func TestStore_SaveAndLoad(t *testing.T) {
	store := NewStore()

	require.NoError(t, store.Save("raw", sample(), "imported data", false))

	loaded, err := store.Load("raw")
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Len())
	assert.Equal(t, "one", loaded.Rows[0]["name"])

	// Loads return copies; mutating a copy must not affect the stage.
	loaded.Rows[0]["name"] = "mutated"
	again, err := store.Load("raw")
	require.NoError(t, err)
	assert.Equal(t, "one", again.Rows[0]["name"])
}

func TestStore_LoadMissing(t *testing.T) {
	store := NewStore()

	_, err := store.Load("absent")
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "absent", notFound.Name)
}

func TestStore_OverwriteGuard(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Save("raw", sample(), "", false))

	err := store.Save("raw", sample(), "", false)
	var exists *ExistsError
	require.ErrorAs(t, err, &exists)

	assert.NoError(t, store.Save("raw", sample(), "", true))
}

func TestStore_ProtectedStages(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.SaveWithOptions("baseline", sample(), "protected baseline", false, SaveOptions{Protected: true}))

	var protected *ProtectedError
	require.ErrorAs(t, store.Save("baseline", sample(), "", true), &protected)
	require.ErrorAs(t, store.Delete("baseline"), &protected)
	assert.True(t, store.Has("baseline"))
}

func TestStore_UsageTracking(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Save("raw", sample(), "", false))

	_, err := store.Load("raw")
	require.NoError(t, err)
	_, err = store.Load("raw")
	require.NoError(t, err)

	infos := store.List()
	require.Len(t, infos, 1)
	assert.Equal(t, 2, infos[0].Metadata.UsageCount)
	assert.Equal(t, 1, infos[0].Metadata.Rows)
	assert.Equal(t, 2, infos[0].Metadata.Columns)
}

func TestStore_ListSorted(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Save("b", sample(), "", false))
	require.NoError(t, store.Save("a", sample(), "", false))

	infos := store.List()
	require.Len(t, infos, 2)
	assert.Equal(t, "a", infos[0].Name)
	assert.Equal(t, "b", infos[1].Name)
}

func TestStore_StageLimit(t *testing.T) {
	store := NewStoreWithLimit(1)
	require.NoError(t, store.Save("one", sample(), "", false))
	assert.Error(t, store.Save("two", sample(), "", false))
	// Overwriting an existing stage does not hit the limit.
	assert.NoError(t, store.Save("one", sample(), "", true))
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("stg_diff_new_rows_subset"))
	assert.NoError(t, ValidateName("My Stage.v2"))
	assert.Error(t, ValidateName(""))
	assert.Error(t, ValidateName(" leading space"))
	assert.Error(t, ValidateName("bad/slash"))
}
