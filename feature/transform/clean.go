package transform

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"sheetflow/core/dataset"
	"sheetflow/core/pipeline"
	"sheetflow/core/recipe"
	"sheetflow/core/utils"

	"go.uber.org/zap"
)

// CleanRule applies one cleaning action to a set of columns.
type CleanRule struct {
	Columns []string `mapstructure:"columns"`
	Action  string   `mapstructure:"action"`
	// OldValue and NewValue configure the replace action.
	OldValue string `mapstructure:"old_value"`
	NewValue string `mapstructure:"new_value"`
	// FillValue configures the fill_empty action.
	FillValue any `mapstructure:"fill_value"`
}

type cleanOptions struct {
	Rules []CleanRule `mapstructure:"rules"`
}

type cleanStep struct {
	label  string
	source string
	saveTo string
	opts   cleanOptions
}

func newCleanStep(cfg recipe.StepConfig) (pipeline.Step, error) {
	var opts cleanOptions
	if err := pipeline.DecodeOptions(cfg, &opts); err != nil {
		return nil, err
	}
	if cfg.SourceStage == "" {
		return nil, fmt.Errorf("source_stage is required")
	}
	if cfg.SaveToStage == "" {
		return nil, fmt.Errorf("save_to_stage is required")
	}
	if len(opts.Rules) == 0 {
		return nil, fmt.Errorf("rules is required and must not be empty")
	}
	for i, rule := range opts.Rules {
		if len(rule.Columns) == 0 {
			return nil, fmt.Errorf("rule %d: columns is required", i+1)
		}
		switch rule.Action {
		case "trim", "uppercase", "lowercase", "title_case", "fix_numeric":
		case "replace":
			if rule.OldValue == "" {
				return nil, fmt.Errorf("rule %d: replace requires old_value", i+1)
			}
		case "fill_empty":
			if rule.FillValue == nil {
				return nil, fmt.Errorf("rule %d: fill_empty requires fill_value", i+1)
			}
		default:
			return nil, fmt.Errorf("rule %d: unknown action %q", i+1, rule.Action)
		}
	}
	return &cleanStep{label: cfg.Label(), source: cfg.SourceStage, saveTo: cfg.SaveToStage, opts: opts}, nil
}

func (s *cleanStep) Name() string { return "clean_data" }

func (s *cleanStep) Execute(ctx context.Context, env *pipeline.Env) error {
	ds, err := env.Store.Load(s.source)
	if err != nil {
		return err
	}

	for i, rule := range s.opts.Rules {
		for _, col := range rule.Columns {
			if !ds.HasColumn(col) {
				return fmt.Errorf("rule %d: column %q not found (available: %s)",
					i+1, col, strings.Join(ds.Columns, ", "))
			}
		}
	}

	cleaned := ds.Clone()
	for _, rule := range s.opts.Rules {
		for _, row := range cleaned.Rows {
			for _, col := range rule.Columns {
				row[col] = applyCleanAction(row[col], rule)
			}
		}
	}

	env.Logger.Info("cleaned data",
		zap.String("stage", s.source),
		zap.Int("rules", len(s.opts.Rules)),
		zap.Int("rows", cleaned.Len()),
	)
	return env.SaveStage(s.saveTo, cleaned, "", s.label)
}

func applyCleanAction(cell any, rule CleanRule) any {
	if rule.Action == "fill_empty" {
		if isEmptyCell(cell) {
			return rule.FillValue
		}
		return cell
	}
	if dataset.IsNull(cell) {
		return cell
	}

	switch rule.Action {
	case "trim":
		if s, ok := cell.(string); ok {
			return strings.TrimSpace(s)
		}
	case "uppercase":
		if s, ok := cell.(string); ok {
			return strings.ToUpper(s)
		}
	case "lowercase":
		if s, ok := cell.(string); ok {
			return strings.ToLower(s)
		}
	case "title_case":
		if s, ok := cell.(string); ok {
			return titleCase(s)
		}
	case "replace":
		if s, ok := cell.(string); ok {
			return strings.ReplaceAll(s, rule.OldValue, rule.NewValue)
		}
	case "fix_numeric":
		// Strips currency symbols and thousands separators so values
		// like "$1,234.50" compare and sort as numbers.
		if s, ok := cell.(string); ok {
			cleaned := strings.Map(func(r rune) rune {
				switch r {
				case '$', ',', ' ':
					return -1
				}
				return r
			}, s)
			if f, ok := utils.ToFloat(cleaned); ok {
				return f
			}
		}
	}
	return cell
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
