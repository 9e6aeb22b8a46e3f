package diff

import (
	"context"
	"fmt"

	"sheetflow/core/pipeline"
	"sheetflow/core/recipe"
	"sheetflow/core/reconcile"

	"go.uber.org/zap"
)

type stepOptions struct {
	// ReferenceStage holds the earlier snapshot rows are compared against.
	ReferenceStage string `mapstructure:"reference_stage"`
	// KeyColumns accepts a single column name or a list.
	KeyColumns any `mapstructure:"key_columns"`
	// ExcludeColumns are carried but never compared.
	ExcludeColumns []string `mapstructure:"exclude_columns"`
	// HandleDeletedRows is include, exclude or separate_stage.
	HandleDeletedRows string `mapstructure:"handle_deleted_rows"`
	// OnDuplicateKeys is last_wins, first_wins or fail.
	OnDuplicateKeys string `mapstructure:"on_duplicate_keys"`
	// IncludeJSONDetails adds the structured change column.
	IncludeJSONDetails bool `mapstructure:"include_json_details"`
	// CreateFilteredStages saves one stage per classification.
	CreateFilteredStages bool `mapstructure:"create_filtered_stages"`
	// FilteredStagePrefix names the per-classification stages.
	FilteredStagePrefix string `mapstructure:"filtered_stage_prefix"`
}

type diffStep struct {
	label     string
	source    string
	saveTo    string
	reference string
	cfg       reconcile.Config
	filtered  bool
	prefix    string
}

func newDiffStep(cfg recipe.StepConfig) (pipeline.Step, error) {
	var opts stepOptions
	if err := pipeline.DecodeOptions(cfg, &opts); err != nil {
		return nil, err
	}
	if cfg.SourceStage == "" {
		return nil, fmt.Errorf("source_stage is required")
	}
	if cfg.SaveToStage == "" {
		return nil, fmt.Errorf("save_to_stage is required")
	}
	if opts.ReferenceStage == "" {
		return nil, fmt.Errorf("reference_stage is required")
	}

	keys, err := normalizeKeyColumns(opts.KeyColumns)
	if err != nil {
		return nil, err
	}
	if opts.FilteredStagePrefix == "" {
		opts.FilteredStagePrefix = "stg_diff"
	}
	if opts.HandleDeletedRows == "" {
		opts.HandleDeletedRows = string(reconcile.DeletedInclude)
	}
	if opts.OnDuplicateKeys == "" {
		opts.OnDuplicateKeys = string(reconcile.DuplicateLastWins)
	}

	rc := reconcile.Config{
		KeyColumns:         keys,
		ExcludeColumns:     opts.ExcludeColumns,
		DeletedRows:        reconcile.DeletedRowPolicy(opts.HandleDeletedRows),
		Duplicates:         reconcile.DuplicatePolicy(opts.OnDuplicateKeys),
		IncludeJSONDetails: opts.IncludeJSONDetails,
	}
	if err := rc.Validate(); err != nil {
		return nil, err
	}

	return &diffStep{
		label:     cfg.Label(),
		source:    cfg.SourceStage,
		saveTo:    cfg.SaveToStage,
		reference: opts.ReferenceStage,
		cfg:       rc,
		filtered:  opts.CreateFilteredStages,
		prefix:    opts.FilteredStagePrefix,
	}, nil
}

// normalizeKeyColumns accepts the recipe shorthand of a single column
// name in place of a one-element list.
func normalizeKeyColumns(v any) ([]string, error) {
	switch t := v.(type) {
	case nil:
		return nil, fmt.Errorf("key_columns is required")
	case string:
		if t == "" {
			return nil, fmt.Errorf("key_columns is required")
		}
		return []string{t}, nil
	case []any:
		keys := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("key_columns entries must be strings, got %T", item)
			}
			keys = append(keys, s)
		}
		return keys, nil
	case []string:
		return t, nil
	default:
		return nil, fmt.Errorf("key_columns must be a string or a list of strings, got %T", v)
	}
}

func (s *diffStep) Name() string { return "diff_data" }

func (s *diffStep) Execute(ctx context.Context, env *pipeline.Env) error {
	reference, err := env.Store.Load(s.reference)
	if err != nil {
		return err
	}
	current, err := env.Store.Load(s.source)
	if err != nil {
		return err
	}

	result, err := reconcile.Reconcile(reference, current, s.cfg)
	if err != nil {
		return err
	}
	for _, warning := range result.Warnings {
		env.Logger.Warn(warning, zap.String("step", s.label))
	}

	description := fmt.Sprintf("Diff of %s against %s: %d new, %d changed, %d unchanged, %d deleted",
		s.source, s.reference,
		result.Summary.New, result.Summary.Changed, result.Summary.Unchanged, result.Summary.Deleted)
	if err := env.SaveStage(s.saveTo, result.Dataset, description, s.label); err != nil {
		return err
	}

	if s.filtered {
		for _, part := range reconcile.Partitions(result.Dataset, s.prefix, s.cfg.DeletedRows) {
			if err := env.SaveStage(part.Name, part.Data, part.Description, s.label); err != nil {
				return err
			}
		}
	}

	env.Logger.Info("diffed stages",
		zap.String("current", s.source),
		zap.String("reference", s.reference),
		zap.Int("total", result.Summary.Total),
		zap.Int("new", result.Summary.New),
		zap.Int("changed", result.Summary.Changed),
		zap.Int("unchanged", result.Summary.Unchanged),
		zap.Int("deleted", result.Summary.Deleted),
	)
	return nil
}
