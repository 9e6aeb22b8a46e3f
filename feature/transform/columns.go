package transform

import (
	"context"
	"fmt"
	"strings"

	"sheetflow/core/dataset"
	"sheetflow/core/pipeline"
	"sheetflow/core/recipe"

	"go.uber.org/zap"
)

type selectColumnsOptions struct {
	// ColumnsToKeep projects the dataset to exactly these columns, in
	// this order. Mutually exclusive with ColumnsToDrop.
	ColumnsToKeep []string `mapstructure:"columns_to_keep"`
	// ColumnsToDrop removes these columns and keeps the rest.
	ColumnsToDrop []string `mapstructure:"columns_to_drop"`
}

type selectColumnsStep struct {
	label  string
	source string
	saveTo string
	opts   selectColumnsOptions
}

func newSelectColumnsStep(cfg recipe.StepConfig) (pipeline.Step, error) {
	var opts selectColumnsOptions
	if err := pipeline.DecodeOptions(cfg, &opts); err != nil {
		return nil, err
	}
	if cfg.SourceStage == "" {
		return nil, fmt.Errorf("source_stage is required")
	}
	if cfg.SaveToStage == "" {
		return nil, fmt.Errorf("save_to_stage is required")
	}
	keep, drop := len(opts.ColumnsToKeep) > 0, len(opts.ColumnsToDrop) > 0
	if keep == drop {
		return nil, fmt.Errorf("exactly one of columns_to_keep or columns_to_drop is required")
	}
	return &selectColumnsStep{label: cfg.Label(), source: cfg.SourceStage, saveTo: cfg.SaveToStage, opts: opts}, nil
}

func (s *selectColumnsStep) Name() string { return "select_columns" }

func (s *selectColumnsStep) Execute(ctx context.Context, env *pipeline.Env) error {
	ds, err := env.Store.Load(s.source)
	if err != nil {
		return err
	}

	var result *dataset.Dataset
	if len(s.opts.ColumnsToKeep) > 0 {
		result, err = ds.Select(s.opts.ColumnsToKeep)
		if err != nil {
			return err
		}
	} else {
		for _, col := range s.opts.ColumnsToDrop {
			if !ds.HasColumn(col) {
				return fmt.Errorf("column %q not found (available: %s)",
					col, strings.Join(ds.Columns, ", "))
			}
		}
		dropped := make(map[string]bool, len(s.opts.ColumnsToDrop))
		for _, col := range s.opts.ColumnsToDrop {
			dropped[col] = true
		}
		keep := make([]string, 0, len(ds.Columns))
		for _, col := range ds.Columns {
			if !dropped[col] {
				keep = append(keep, col)
			}
		}
		result, err = ds.Select(keep)
		if err != nil {
			return err
		}
	}

	env.Logger.Info("selected columns",
		zap.String("stage", s.source),
		zap.Int("before", len(ds.Columns)),
		zap.Int("after", len(result.Columns)),
	)
	return env.SaveStage(s.saveTo, result, "", s.label)
}

type renameColumnsOptions struct {
	// Mapping renames old column names to new ones.
	Mapping map[string]string `mapstructure:"mapping"`
	// AddPrefix prepends a string to every column name.
	AddPrefix string `mapstructure:"add_prefix"`
	// AddSuffix appends a string to every column name.
	AddSuffix string `mapstructure:"add_suffix"`
}

type renameColumnsStep struct {
	label  string
	source string
	saveTo string
	opts   renameColumnsOptions
}

func newRenameColumnsStep(cfg recipe.StepConfig) (pipeline.Step, error) {
	var opts renameColumnsOptions
	if err := pipeline.DecodeOptions(cfg, &opts); err != nil {
		return nil, err
	}
	if cfg.SourceStage == "" {
		return nil, fmt.Errorf("source_stage is required")
	}
	if cfg.SaveToStage == "" {
		return nil, fmt.Errorf("save_to_stage is required")
	}
	if len(opts.Mapping) == 0 && opts.AddPrefix == "" && opts.AddSuffix == "" {
		return nil, fmt.Errorf("one of mapping, add_prefix or add_suffix is required")
	}
	return &renameColumnsStep{label: cfg.Label(), source: cfg.SourceStage, saveTo: cfg.SaveToStage, opts: opts}, nil
}

func (s *renameColumnsStep) Name() string { return "rename_columns" }

func (s *renameColumnsStep) Execute(ctx context.Context, env *pipeline.Env) error {
	ds, err := env.Store.Load(s.source)
	if err != nil {
		return err
	}

	for old := range s.opts.Mapping {
		if !ds.HasColumn(old) {
			return fmt.Errorf("column %q not found (available: %s)",
				old, strings.Join(ds.Columns, ", "))
		}
	}

	renames := make(map[string]string, len(ds.Columns))
	for _, col := range ds.Columns {
		name := col
		if mapped, ok := s.opts.Mapping[col]; ok {
			name = mapped
		}
		renames[col] = s.opts.AddPrefix + name + s.opts.AddSuffix
	}

	seen := make(map[string]string, len(renames))
	for old, name := range renames {
		if prev, dup := seen[name]; dup {
			return fmt.Errorf("rename collision: %q and %q both become %q", prev, old, name)
		}
		seen[name] = old
	}

	result := dataset.New()
	for _, col := range ds.Columns {
		result.Columns = append(result.Columns, renames[col])
	}
	for _, row := range ds.Rows {
		renamed := make(dataset.Row, len(row))
		for _, col := range ds.Columns {
			renamed[renames[col]] = row[col]
		}
		result.Rows = append(result.Rows, renamed)
	}

	env.Logger.Info("renamed columns",
		zap.String("stage", s.source),
		zap.Int("columns", len(result.Columns)),
	)
	return env.SaveStage(s.saveTo, result, "", s.label)
}
