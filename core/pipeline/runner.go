package pipeline

import (
	"context"
	"fmt"
	"time"

	"sheetflow/core/recipe"
	"sheetflow/core/stage"
	"sheetflow/core/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrorAction defines what happens when a step fails.
type ErrorAction string

const (
	// ActionHalt stops the run and reports the error. Default.
	ActionHalt ErrorAction = "halt"
	// ActionContinue records the error and moves to the next step.
	ActionContinue ErrorAction = "continue"
	// ActionSkipRemaining records the error and skips all later steps
	// without failing the run.
	ActionSkipRemaining ErrorAction = "skip_remaining"
)

func parseErrorAction(raw string, fallback ErrorAction) (ErrorAction, error) {
	switch ErrorAction(raw) {
	case "":
		return fallback, nil
	case ActionHalt, ActionContinue, ActionSkipRemaining:
		return ErrorAction(raw), nil
	default:
		return fallback, fmt.Errorf("unknown on_error action %q", raw)
	}
}

// StepResult records the outcome of one step.
type StepResult struct {
	Label    string        `json:"label"`
	Type     string        `json:"type"`
	Error    string        `json:"error,omitempty"`
	Skipped  bool          `json:"skipped,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Report summarizes a recipe run.
type Report struct {
	Steps    []StepResult `json:"steps"`
	Executed int          `json:"executed"`
	Failed   int          `json:"failed"`
	Skipped  int          `json:"skipped"`
}

// Runner executes recipes against a stage store.
type Runner struct {
	registry *Registry
	store    *stage.Store
	logger   *zap.Logger

	db      *gorm.DB
	storage storage.Client
	bucket  string
}

// NewRunner creates a runner over the given registry and store.
func NewRunner(registry *Registry, store *stage.Store, logger *zap.Logger) *Runner {
	return &Runner{registry: registry, store: store, logger: logger}
}

// SetDatabase wires the optional database connection for table imports.
func (r *Runner) SetDatabase(db *gorm.DB) {
	r.db = db
}

// SetStorage wires the optional object storage client for publish steps.
func (r *Runner) SetStorage(client storage.Client, bucket string) {
	r.storage = client
	r.bucket = bucket
}

// Run executes a recipe. All steps are constructed (and their
// configuration validated) before the first one executes, so a recipe
// with a broken step fails fast without partial output.
//
// overrides are caller-supplied variables that take precedence over
// recipe-defined ones.
func (r *Runner) Run(ctx context.Context, rec *recipe.Recipe, overrides map[string]string) (*Report, error) {
	globalAction, err := parseErrorAction(rec.Settings.OnError, ActionHalt)
	if err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}

	for _, name := range rec.UndeclaredStages() {
		r.logger.Warn("stage not declared in settings; it will be created dynamically",
			zap.String("stage", name))
	}

	// Build everything first: configuration errors abort before any step
	// touches a stage.
	steps := make([]Step, len(rec.Steps))
	actions := make([]ErrorAction, len(rec.Steps))
	for i, cfg := range rec.Steps {
		step, err := r.registry.Build(cfg)
		if err != nil {
			return nil, err
		}
		action, err := parseErrorAction(cfg.OnError, globalAction)
		if err != nil {
			return nil, fmt.Errorf("step %q: %w", cfg.Label(), err)
		}
		steps[i] = step
		actions[i] = action
	}

	env := &Env{
		Store:   r.store,
		Logger:  r.logger,
		Vars:    recipe.NewSubstitutor(time.Now(), rec.Settings.Variables, overrides),
		Decls:   rec.DeclaredStages(),
		DB:      r.db,
		Storage: r.storage,
		Bucket:  r.bucket,
	}

	report := &Report{Steps: make([]StepResult, 0, len(steps))}
	skipRemaining := false

	for i, step := range steps {
		cfg := rec.Steps[i]
		result := StepResult{Label: cfg.Label(), Type: cfg.Type}

		if skipRemaining {
			result.Skipped = true
			report.Skipped++
			report.Steps = append(report.Steps, result)
			continue
		}

		r.logger.Info("step started",
			zap.Int("step", i+1),
			zap.String("type", cfg.Type),
			zap.String("description", cfg.Label()),
		)

		start := time.Now()
		err := step.Execute(ctx, env)
		result.Duration = time.Since(start)

		if err != nil {
			result.Error = err.Error()
			report.Failed++
			report.Steps = append(report.Steps, result)

			r.logger.Error("step failed",
				zap.String("type", cfg.Type),
				zap.String("description", cfg.Label()),
				zap.Error(err),
			)

			switch actions[i] {
			case ActionContinue:
				continue
			case ActionSkipRemaining:
				skipRemaining = true
				continue
			default:
				return report, fmt.Errorf("step %q failed: %w", cfg.Label(), err)
			}
		}

		report.Executed++
		report.Steps = append(report.Steps, result)
		r.logger.Info("step completed",
			zap.String("type", cfg.Type),
			zap.Duration("duration", result.Duration),
		)
	}

	return report, nil
}
