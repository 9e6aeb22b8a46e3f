package transform

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"sheetflow/core/dataset"
	"sheetflow/core/pipeline"
	"sheetflow/core/recipe"
	"sheetflow/core/utils"

	"go.uber.org/zap"
)

type sortOptions struct {
	// Columns are the sort keys, highest priority first.
	Columns []string `mapstructure:"columns"`
	// Ascending holds one direction per column; empty means all
	// ascending, a single entry applies to every column.
	Ascending []bool `mapstructure:"ascending"`
	// NullsFirst places null cells before non-null ones.
	NullsFirst bool `mapstructure:"nulls_first"`
	// IgnoreCase compares strings case-insensitively.
	IgnoreCase bool `mapstructure:"ignore_case"`
}

type sortStep struct {
	label  string
	source string
	saveTo string
	opts   sortOptions
}

func newSortStep(cfg recipe.StepConfig) (pipeline.Step, error) {
	var opts sortOptions
	if err := pipeline.DecodeOptions(cfg, &opts); err != nil {
		return nil, err
	}
	if cfg.SourceStage == "" {
		return nil, fmt.Errorf("source_stage is required")
	}
	if cfg.SaveToStage == "" {
		return nil, fmt.Errorf("save_to_stage is required")
	}
	if len(opts.Columns) == 0 {
		return nil, fmt.Errorf("columns is required and must not be empty")
	}
	switch len(opts.Ascending) {
	case 0:
		opts.Ascending = make([]bool, len(opts.Columns))
		for i := range opts.Ascending {
			opts.Ascending[i] = true
		}
	case 1:
		direction := opts.Ascending[0]
		opts.Ascending = make([]bool, len(opts.Columns))
		for i := range opts.Ascending {
			opts.Ascending[i] = direction
		}
	case len(opts.Columns):
	default:
		return nil, fmt.Errorf("ascending must have one entry or one per column (%d columns, %d entries)",
			len(opts.Columns), len(opts.Ascending))
	}
	return &sortStep{label: cfg.Label(), source: cfg.SourceStage, saveTo: cfg.SaveToStage, opts: opts}, nil
}

func (s *sortStep) Name() string { return "sort_data" }

func (s *sortStep) Execute(ctx context.Context, env *pipeline.Env) error {
	ds, err := env.Store.Load(s.source)
	if err != nil {
		return err
	}
	for _, col := range s.opts.Columns {
		if !ds.HasColumn(col) {
			return fmt.Errorf("sort column %q not found (available: %s)",
				col, strings.Join(ds.Columns, ", "))
		}
	}

	sorted := ds.Clone()
	sort.SliceStable(sorted.Rows, func(i, j int) bool {
		for k, col := range s.opts.Columns {
			a, b := sorted.Rows[i][col], sorted.Rows[j][col]

			// Nulls group at the configured end regardless of direction.
			aNull, bNull := dataset.IsNull(a), dataset.IsNull(b)
			if aNull || bNull {
				if aNull && bNull {
					continue
				}
				return aNull == s.opts.NullsFirst
			}

			c := compareCells(a, b, s.opts.IgnoreCase)
			if c == 0 {
				continue
			}
			if s.opts.Ascending[k] {
				return c < 0
			}
			return c > 0
		}
		return false
	})

	env.Logger.Info("sorted rows",
		zap.String("stage", s.source),
		zap.Strings("columns", s.opts.Columns),
		zap.Int("rows", sorted.Len()),
	)
	return env.SaveStage(s.saveTo, sorted, "", s.label)
}

// compareCells orders two non-null cells: numbers numerically when both
// parse, otherwise by string.
func compareCells(a, b any, ignoreCase bool) int {
	if af, aok := utils.ToFloat(a); aok {
		if bf, bok := utils.ToFloat(b); bok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			}
			return 0
		}
	}

	as, bs := utils.ToString(a), utils.ToString(b)
	if ignoreCase {
		as, bs = strings.ToLower(as), strings.ToLower(bs)
	}
	return strings.Compare(as, bs)
}
