package transform

import (
	"context"
	"testing"
	"time"

	"sheetflow/core/dataset"
	"sheetflow/core/pipeline"
	"sheetflow/core/recipe"
	"sheetflow/core/stage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testEnv(t *testing.T) *pipeline.Env {
	t.Helper()
	return &pipeline.Env{
		Store:  stage.NewStore(),
		Logger: zap.NewNop(),
		Vars:   recipe.NewSubstitutor(time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC), nil, nil),
		Decls:  map[string]recipe.StageDecl{},
	}
}

func saveStage(t *testing.T, env *pipeline.Env, name string, ds *dataset.Dataset) {
	t.Helper()
	require.NoError(t, env.Store.Save(name, ds, "", false))
}

func customerData() *dataset.Dataset {
	ds := dataset.New("id", "name", "region", "score")
	ds.AppendRow(dataset.Row{"id": float64(1), "name": "Alice", "region": "West", "score": 98.5})
	ds.AppendRow(dataset.Row{"id": float64(2), "name": "Bob", "region": "East", "score": 87.0})
	ds.AppendRow(dataset.Row{"id": float64(3), "name": "Carol", "region": "west", "score": nil})
	ds.AppendRow(dataset.Row{"id": float64(4), "name": "Dave", "region": nil, "score": 72.0})
	return ds
}

func runFilter(t *testing.T, env *pipeline.Env, filters []map[string]any) *dataset.Dataset {
	t.Helper()
	step, err := newFilterStep(recipe.StepConfig{
		Type:        "filter_data",
		SourceStage: "stg_in",
		SaveToStage: "stg_out",
		Options:     map[string]any{"filters": anySlice(filters)},
	})
	require.NoError(t, err)
	require.NoError(t, step.Execute(context.Background(), env))

	ds, err := env.Store.Load("stg_out")
	require.NoError(t, err)
	return ds
}

func anySlice[T any](in []T) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

func names(ds *dataset.Dataset) []string {
	out := make([]string, 0, ds.Len())
	for _, row := range ds.Rows {
		out = append(out, row["name"].(string))
	}
	return out
}

func TestFilterConditions(t *testing.T) {
	tests := []struct {
		name    string
		filters []map[string]any
		want    []string
	}{
		{
			name:    "equals is case-insensitive by default",
			filters: []map[string]any{{"column": "region", "condition": "equals", "value": "west"}},
			want:    []string{"Alice", "Carol"},
		},
		{
			name: "equals case-sensitive",
			filters: []map[string]any{{
				"column": "region", "condition": "equals", "value": "west", "case_sensitive": true}},
			want: []string{"Carol"},
		},
		{
			name:    "not_equals",
			filters: []map[string]any{{"column": "name", "condition": "not_equals", "value": "Bob"}},
			want:    []string{"Alice", "Carol", "Dave"},
		},
		{
			name:    "contains",
			filters: []map[string]any{{"column": "name", "condition": "contains", "value": "a"}},
			want:    []string{"Alice", "Carol", "Dave"},
		},
		{
			name:    "contains excludes null cells",
			filters: []map[string]any{{"column": "region", "condition": "contains", "value": "es"}},
			want:    []string{"Alice", "Carol"},
		},
		{
			name:    "greater_than skips non-numeric cells",
			filters: []map[string]any{{"column": "score", "condition": "greater_than", "value": 80}},
			want:    []string{"Alice", "Bob"},
		},
		{
			name:    "less_than",
			filters: []map[string]any{{"column": "score", "condition": "less_than", "value": 80}},
			want:    []string{"Dave"},
		},
		{
			name:    "not_empty",
			filters: []map[string]any{{"column": "region", "condition": "not_empty"}},
			want:    []string{"Alice", "Bob", "Carol"},
		},
		{
			name:    "is_empty",
			filters: []map[string]any{{"column": "score", "condition": "is_empty"}},
			want:    []string{"Carol"},
		},
		{
			name: "in_list",
			filters: []map[string]any{{
				"column": "name", "condition": "in_list", "value": []any{"Alice", "Dave"}}},
			want: []string{"Alice", "Dave"},
		},
		{
			name: "multiple filters combine with AND",
			filters: []map[string]any{
				{"column": "region", "condition": "equals", "value": "West"},
				{"column": "score", "condition": "not_empty"},
			},
			want: []string{"Alice"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := testEnv(t)
			saveStage(t, env, "stg_in", customerData())
			got := runFilter(t, env, tt.filters)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestFilterStepValidation(t *testing.T) {
	tests := []struct {
		name string
		opts map[string]any
		want string
	}{
		{
			name: "no filters",
			opts: map[string]any{},
			want: "filters is required",
		},
		{
			name: "unknown condition",
			opts: map[string]any{"filters": []any{
				map[string]any{"column": "a", "condition": "almost_equals", "value": 1}}},
			want: "unknown condition",
		},
		{
			name: "missing value",
			opts: map[string]any{"filters": []any{
				map[string]any{"column": "a", "condition": "equals"}}},
			want: "requires a value",
		},
		{
			name: "in_list needs a list",
			opts: map[string]any{"filters": []any{
				map[string]any{"column": "a", "condition": "in_list", "value": "x"}}},
			want: "requires a list",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newFilterStep(recipe.StepConfig{
				Type: "filter_data", SourceStage: "in", SaveToStage: "out", Options: tt.opts})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestFilterStepUnknownColumn(t *testing.T) {
	env := testEnv(t)
	saveStage(t, env, "stg_in", customerData())

	step, err := newFilterStep(recipe.StepConfig{
		Type: "filter_data", SourceStage: "stg_in", SaveToStage: "stg_out",
		Options: map[string]any{"filters": []any{
			map[string]any{"column": "missing", "condition": "not_empty"}}},
	})
	require.NoError(t, err)

	err = step.Execute(context.Background(), env)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `column "missing" not found`)
}
