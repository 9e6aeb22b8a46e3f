package transform

import (
	"context"
	"testing"

	"sheetflow/core/dataset"
	"sheetflow/core/recipe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runSplit(t *testing.T, ds *dataset.Dataset, opts map[string]any) *dataset.Dataset {
	t.Helper()
	env := testEnv(t)
	saveStage(t, env, "stg_in", ds)

	step, err := newSplitColumnStep(recipe.StepConfig{
		Type: "split_column", SourceStage: "stg_in", SaveToStage: "stg_out", Options: opts})
	require.NoError(t, err)
	require.NoError(t, step.Execute(context.Background(), env))

	out, err := env.Store.Load("stg_out")
	require.NoError(t, err)
	return out
}

func TestSplitColumn(t *testing.T) {
	ds := dataset.New("full_name")
	ds.AppendRow(dataset.Row{"full_name": "Alice Smith"})
	ds.AppendRow(dataset.Row{"full_name": "Bob"})
	ds.AppendRow(dataset.Row{"full_name": nil})

	out := runSplit(t, ds, map[string]any{
		"source_column": "full_name",
		"delimiter":     " ",
		"new_columns":   []any{"first", "last"},
	})

	assert.Equal(t, []string{"full_name", "first", "last"}, out.Columns)
	assert.Equal(t, "Alice", out.Rows[0]["first"])
	assert.Equal(t, "Smith", out.Rows[0]["last"])
	assert.Equal(t, "Bob", out.Rows[1]["first"])
	assert.Equal(t, "", out.Rows[1]["last"], "missing parts fill with the fill value")
	assert.Equal(t, "", out.Rows[2]["first"])
}

func TestSplitColumnExtraTextStaysInLastPart(t *testing.T) {
	ds := dataset.New("path")
	ds.AppendRow(dataset.Row{"path": "a/b/c/d"})

	out := runSplit(t, ds, map[string]any{
		"source_column": "path",
		"delimiter":     "/",
		"new_columns":   []any{"root", "rest"},
	})
	assert.Equal(t, "a", out.Rows[0]["root"])
	assert.Equal(t, "b/c/d", out.Rows[0]["rest"])
}

func TestSplitColumnRemoveOriginal(t *testing.T) {
	ds := dataset.New("code", "other")
	ds.AppendRow(dataset.Row{"code": "X-1", "other": "keep"})

	out := runSplit(t, ds, map[string]any{
		"source_column":   "code",
		"delimiter":       "-",
		"new_columns":     []any{"series", "number"},
		"remove_original": true,
		"fill_missing":    "?",
	})
	assert.Equal(t, []string{"other", "series", "number"}, out.Columns)
	assert.Equal(t, "X", out.Rows[0]["series"])
	assert.Equal(t, "1", out.Rows[0]["number"])
}

func TestSplitColumnValidation(t *testing.T) {
	_, err := newSplitColumnStep(recipe.StepConfig{
		Type: "split_column", SourceStage: "in", SaveToStage: "out",
		Options: map[string]any{"source_column": "v", "new_columns": []any{"a"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delimiter is required")
}

func TestSplitColumnExistingTarget(t *testing.T) {
	env := testEnv(t)
	ds := dataset.New("code", "series")
	ds.AppendRow(dataset.Row{"code": "X-1", "series": "taken"})
	saveStage(t, env, "stg_in", ds)

	step, err := newSplitColumnStep(recipe.StepConfig{
		Type: "split_column", SourceStage: "stg_in", SaveToStage: "stg_out",
		Options: map[string]any{
			"source_column": "code",
			"delimiter":     "-",
			"new_columns":   []any{"series", "number"},
		}})
	require.NoError(t, err)

	err = step.Execute(context.Background(), env)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}
