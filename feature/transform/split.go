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

type splitColumnOptions struct {
	// SourceColumn is the column whose cells are split.
	SourceColumn string `mapstructure:"source_column"`
	// Delimiter separates the parts.
	Delimiter string `mapstructure:"delimiter"`
	// NewColumns names the resulting columns; the part count is capped
	// at this length, extra text stays in the last part.
	NewColumns []string `mapstructure:"new_columns"`
	// RemoveOriginal drops the source column after splitting.
	RemoveOriginal bool `mapstructure:"remove_original"`
	// FillMissing is the cell value for absent parts.
	FillMissing string `mapstructure:"fill_missing"`
}

type splitColumnStep struct {
	label  string
	source string
	saveTo string
	opts   splitColumnOptions
}

func newSplitColumnStep(cfg recipe.StepConfig) (pipeline.Step, error) {
	var opts splitColumnOptions
	if err := pipeline.DecodeOptions(cfg, &opts); err != nil {
		return nil, err
	}
	if cfg.SourceStage == "" {
		return nil, fmt.Errorf("source_stage is required")
	}
	if cfg.SaveToStage == "" {
		return nil, fmt.Errorf("save_to_stage is required")
	}
	if opts.SourceColumn == "" {
		return nil, fmt.Errorf("source_column is required")
	}
	if opts.Delimiter == "" {
		return nil, fmt.Errorf("delimiter is required")
	}
	if len(opts.NewColumns) == 0 {
		return nil, fmt.Errorf("new_columns is required and must not be empty")
	}
	return &splitColumnStep{label: cfg.Label(), source: cfg.SourceStage, saveTo: cfg.SaveToStage, opts: opts}, nil
}

func (s *splitColumnStep) Name() string { return "split_column" }

func (s *splitColumnStep) Execute(ctx context.Context, env *pipeline.Env) error {
	ds, err := env.Store.Load(s.source)
	if err != nil {
		return err
	}
	if !ds.HasColumn(s.opts.SourceColumn) {
		return fmt.Errorf("column %q not found (available: %s)",
			s.opts.SourceColumn, strings.Join(ds.Columns, ", "))
	}
	for _, col := range s.opts.NewColumns {
		if ds.HasColumn(col) && col != s.opts.SourceColumn {
			return fmt.Errorf("new column %q already exists", col)
		}
	}

	result := ds.Clone()
	result.EnsureColumns(s.opts.NewColumns...)
	for _, row := range result.Rows {
		parts := splitCell(row[s.opts.SourceColumn], s.opts.Delimiter, len(s.opts.NewColumns))
		for i, col := range s.opts.NewColumns {
			if i < len(parts) {
				row[col] = parts[i]
			} else {
				row[col] = s.opts.FillMissing
			}
		}
	}
	if s.opts.RemoveOriginal {
		keep := make([]string, 0, len(result.Columns))
		for _, col := range result.Columns {
			if col != s.opts.SourceColumn {
				keep = append(keep, col)
			}
		}
		result, err = result.Select(keep)
		if err != nil {
			return err
		}
	}

	env.Logger.Info("split column",
		zap.String("stage", s.source),
		zap.String("column", s.opts.SourceColumn),
		zap.Strings("into", s.opts.NewColumns),
	)
	return env.SaveStage(s.saveTo, result, "", s.label)
}

func splitCell(cell any, delimiter string, max int) []string {
	if dataset.IsNull(cell) {
		return nil
	}
	return strings.SplitN(utils.ToString(cell), delimiter, max)
}
