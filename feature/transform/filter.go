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

// FilterRule is one condition applied to a column. Rules combine with
// AND logic; a row must pass every rule to survive.
type FilterRule struct {
	Column        string `mapstructure:"column"`
	Condition     string `mapstructure:"condition"`
	Value         any    `mapstructure:"value"`
	CaseSensitive bool   `mapstructure:"case_sensitive"`
}

type filterOptions struct {
	Filters []FilterRule `mapstructure:"filters"`
}

type filterStep struct {
	label  string
	source string
	saveTo string
	opts   filterOptions
}

func newFilterStep(cfg recipe.StepConfig) (pipeline.Step, error) {
	var opts filterOptions
	if err := pipeline.DecodeOptions(cfg, &opts); err != nil {
		return nil, err
	}
	if cfg.SourceStage == "" {
		return nil, fmt.Errorf("source_stage is required")
	}
	if cfg.SaveToStage == "" {
		return nil, fmt.Errorf("save_to_stage is required")
	}
	if len(opts.Filters) == 0 {
		return nil, fmt.Errorf("filters is required and must not be empty")
	}
	for i, rule := range opts.Filters {
		if err := validateFilterRule(rule); err != nil {
			return nil, fmt.Errorf("filter %d: %w", i+1, err)
		}
	}
	return &filterStep{label: cfg.Label(), source: cfg.SourceStage, saveTo: cfg.SaveToStage, opts: opts}, nil
}

var valuelessConditions = map[string]bool{
	"not_empty": true,
	"is_empty":  true,
}

var listConditions = map[string]bool{
	"in_list":     true,
	"not_in_list": true,
}

var scalarConditions = map[string]bool{
	"equals":        true,
	"not_equals":    true,
	"contains":      true,
	"not_contains":  true,
	"starts_with":   true,
	"ends_with":     true,
	"greater_than":  true,
	"less_than":     true,
	"greater_equal": true,
	"less_equal":    true,
}

func validateFilterRule(rule FilterRule) error {
	if strings.TrimSpace(rule.Column) == "" {
		return fmt.Errorf("column is required")
	}
	switch {
	case valuelessConditions[rule.Condition]:
		return nil
	case listConditions[rule.Condition]:
		if _, ok := rule.Value.([]any); !ok {
			return fmt.Errorf("condition %q requires a list value", rule.Condition)
		}
	case scalarConditions[rule.Condition]:
		if rule.Value == nil {
			return fmt.Errorf("condition %q requires a value", rule.Condition)
		}
	default:
		return fmt.Errorf("unknown condition %q", rule.Condition)
	}
	return nil
}

func (s *filterStep) Name() string { return "filter_data" }

func (s *filterStep) Execute(ctx context.Context, env *pipeline.Env) error {
	ds, err := env.Store.Load(s.source)
	if err != nil {
		return err
	}

	for i, rule := range s.opts.Filters {
		if !ds.HasColumn(rule.Column) {
			return fmt.Errorf("filter %d: column %q not found (available: %s)",
				i+1, rule.Column, strings.Join(ds.Columns, ", "))
		}
	}

	before := ds.Len()
	filtered := ds.Filter(func(row dataset.Row) bool {
		for _, rule := range s.opts.Filters {
			if !matchRule(row[rule.Column], rule) {
				return false
			}
		}
		return true
	})

	env.Logger.Info("filtered rows",
		zap.String("stage", s.source),
		zap.Int("before", before),
		zap.Int("after", filtered.Len()),
	)
	return env.SaveStage(s.saveTo, filtered, "", s.label)
}

func matchRule(cell any, rule FilterRule) bool {
	switch rule.Condition {
	case "not_empty":
		return !isEmptyCell(cell)
	case "is_empty":
		return isEmptyCell(cell)
	case "in_list":
		return inList(cell, rule.Value.([]any), rule.CaseSensitive)
	case "not_in_list":
		return !inList(cell, rule.Value.([]any), rule.CaseSensitive)
	case "equals":
		return textEqual(cell, rule.Value, rule.CaseSensitive)
	case "not_equals":
		return !textEqual(cell, rule.Value, rule.CaseSensitive)
	case "contains":
		return textContains(cell, rule.Value, rule.CaseSensitive)
	case "not_contains":
		return !textContains(cell, rule.Value, rule.CaseSensitive)
	case "starts_with":
		return textAffix(cell, rule.Value, rule.CaseSensitive, strings.HasPrefix)
	case "ends_with":
		return textAffix(cell, rule.Value, rule.CaseSensitive, strings.HasSuffix)
	case "greater_than":
		return numericCompare(cell, rule.Value, func(a, b float64) bool { return a > b })
	case "less_than":
		return numericCompare(cell, rule.Value, func(a, b float64) bool { return a < b })
	case "greater_equal":
		return numericCompare(cell, rule.Value, func(a, b float64) bool { return a >= b })
	case "less_equal":
		return numericCompare(cell, rule.Value, func(a, b float64) bool { return a <= b })
	}
	return false
}

func isEmptyCell(cell any) bool {
	if dataset.IsNull(cell) {
		return true
	}
	return strings.TrimSpace(utils.ToString(cell)) == ""
}

func textEqual(cell, value any, caseSensitive bool) bool {
	a, b := utils.ToString(cell), utils.ToString(value)
	if caseSensitive {
		return a == b
	}
	return strings.EqualFold(a, b)
}

func textContains(cell, value any, caseSensitive bool) bool {
	if dataset.IsNull(cell) {
		return false
	}
	a, b := utils.ToString(cell), utils.ToString(value)
	if !caseSensitive {
		a, b = strings.ToLower(a), strings.ToLower(b)
	}
	return strings.Contains(a, b)
}

func textAffix(cell, value any, caseSensitive bool, match func(s, affix string) bool) bool {
	if dataset.IsNull(cell) {
		return false
	}
	a, b := utils.ToString(cell), utils.ToString(value)
	if !caseSensitive {
		a, b = strings.ToLower(a), strings.ToLower(b)
	}
	return match(a, b)
}

// numericCompare excludes cells that do not parse as numbers, matching
// spreadsheet expectations for threshold filters.
func numericCompare(cell, value any, cmp func(a, b float64) bool) bool {
	a, ok := utils.ToFloat(cell)
	if !ok {
		return false
	}
	b, ok := utils.ToFloat(value)
	if !ok {
		return false
	}
	return cmp(a, b)
}

func inList(cell any, values []any, caseSensitive bool) bool {
	for _, v := range values {
		if textEqual(cell, v, caseSensitive) {
			return true
		}
	}
	return false
}
