package transform

import (
	"context"
	"fmt"
	"strings"

	"sheetflow/core/dataset"
	"sheetflow/core/pipeline"
	"sheetflow/core/recipe"
	"sheetflow/core/utils"

	"go.uber.org/zap"
)

type lookupOptions struct {
	// LookupStage is the stage holding the lookup table.
	LookupStage string `mapstructure:"lookup_stage"`
	// MatchColumn is the key column in the main data.
	MatchColumn string `mapstructure:"match_column"`
	// LookupKeyColumn is the key column in the lookup data; defaults to
	// MatchColumn.
	LookupKeyColumn string `mapstructure:"lookup_key_column"`
	// LookupColumns are the columns pulled in from the lookup data.
	LookupColumns []string `mapstructure:"lookup_columns"`
	// DefaultValue fills pulled columns for rows without a match.
	DefaultValue any `mapstructure:"default_value"`
	// Prefix is prepended to the pulled column names.
	Prefix string `mapstructure:"prefix"`
	// NormalizeKeys matches keys case-insensitively after trimming.
	NormalizeKeys bool `mapstructure:"normalize_keys"`
}

type lookupStep struct {
	label  string
	source string
	saveTo string
	opts   lookupOptions
}

func newLookupStep(cfg recipe.StepConfig) (pipeline.Step, error) {
	var opts lookupOptions
	if err := pipeline.DecodeOptions(cfg, &opts); err != nil {
		return nil, err
	}
	if cfg.SourceStage == "" {
		return nil, fmt.Errorf("source_stage is required")
	}
	if cfg.SaveToStage == "" {
		return nil, fmt.Errorf("save_to_stage is required")
	}
	if opts.LookupStage == "" {
		return nil, fmt.Errorf("lookup_stage is required")
	}
	if opts.MatchColumn == "" {
		return nil, fmt.Errorf("match_column is required")
	}
	if len(opts.LookupColumns) == 0 {
		return nil, fmt.Errorf("lookup_columns is required and must not be empty")
	}
	if opts.LookupKeyColumn == "" {
		opts.LookupKeyColumn = opts.MatchColumn
	}
	return &lookupStep{label: cfg.Label(), source: cfg.SourceStage, saveTo: cfg.SaveToStage, opts: opts}, nil
}

func (s *lookupStep) Name() string { return "lookup_data" }

func (s *lookupStep) Execute(ctx context.Context, env *pipeline.Env) error {
	ds, err := env.Store.Load(s.source)
	if err != nil {
		return err
	}
	lookup, err := env.Store.Load(s.opts.LookupStage)
	if err != nil {
		return err
	}

	if !ds.HasColumn(s.opts.MatchColumn) {
		return fmt.Errorf("column %q not found in %q (available: %s)",
			s.opts.MatchColumn, s.source, strings.Join(ds.Columns, ", "))
	}
	if !lookup.HasColumn(s.opts.LookupKeyColumn) {
		return fmt.Errorf("column %q not found in %q (available: %s)",
			s.opts.LookupKeyColumn, s.opts.LookupStage, strings.Join(lookup.Columns, ", "))
	}
	for _, col := range s.opts.LookupColumns {
		if !lookup.HasColumn(col) {
			return fmt.Errorf("lookup column %q not found in %q (available: %s)",
				col, s.opts.LookupStage, strings.Join(lookup.Columns, ", "))
		}
	}

	// First match wins for duplicate lookup keys.
	table := make(map[string]dataset.Row, lookup.Len())
	for _, row := range lookup.Rows {
		key := s.lookupKey(row[s.opts.LookupKeyColumn])
		if _, exists := table[key]; !exists {
			table[key] = row
		}
	}

	pulled := make([]string, len(s.opts.LookupColumns))
	for i, col := range s.opts.LookupColumns {
		pulled[i] = s.opts.Prefix + col
		if ds.HasColumn(pulled[i]) {
			return fmt.Errorf("column %q already exists in %q", pulled[i], s.source)
		}
	}

	result := ds.Clone()
	result.EnsureColumns(pulled...)
	matched := 0
	for _, row := range result.Rows {
		src, ok := table[s.lookupKey(row[s.opts.MatchColumn])]
		if ok {
			matched++
		}
		for i, col := range s.opts.LookupColumns {
			if ok {
				row[pulled[i]] = src[col]
			} else {
				row[pulled[i]] = s.opts.DefaultValue
			}
		}
	}

	env.Logger.Info("looked up data",
		zap.String("stage", s.source),
		zap.String("lookup_stage", s.opts.LookupStage),
		zap.Int("rows", result.Len()),
		zap.Int("matched", matched),
	)
	return env.SaveStage(s.saveTo, result, "", s.label)
}

func (s *lookupStep) lookupKey(cell any) string {
	key := utils.ToString(cell)
	if s.opts.NormalizeKeys {
		key = strings.ToLower(strings.TrimSpace(key))
	}
	return key
}
