package fileops

import (
	"path/filepath"
	"testing"

	"sheetflow/core/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExcelRoundtrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.xlsx")

	ds := dataset.New("id", "name", "score")
	ds.AppendRow(dataset.Row{"id": float64(1), "name": "Alice", "score": 98.5})
	ds.AppendRow(dataset.Row{"id": float64(2), "name": "Bob", "score": nil})

	require.NoError(t, WriteExcel(ds, path, ""))

	got, err := ReadExcel(path, "")
	require.NoError(t, err)
	assert.Equal(t, ds.Columns, got.Columns)
	require.Equal(t, 2, got.Len())
	assert.Equal(t, float64(1), got.Rows[0]["id"])
	assert.Equal(t, "Alice", got.Rows[0]["name"])
	assert.Equal(t, 98.5, got.Rows[0]["score"])
	assert.Nil(t, got.Rows[1]["score"])
}

func TestExcelNamedSheet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.xlsx")

	ds := dataset.New("id")
	ds.AppendRow(dataset.Row{"id": float64(7)})

	require.NoError(t, WriteExcel(ds, path, "Data"))

	got, err := ReadExcel(path, "Data")
	require.NoError(t, err)
	require.Equal(t, 1, got.Len())
	assert.Equal(t, float64(7), got.Rows[0]["id"])

	_, err = ReadExcel(path, "Missing")
	assert.Error(t, err)
}

func TestReadExcelMissingFile(t *testing.T) {
	_, err := ReadExcel(filepath.Join(t.TempDir(), "nope.xlsx"), "")
	assert.Error(t, err)
}
