package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"sheetflow/core/dataset"
	"sheetflow/core/recipe"
	"sheetflow/core/stage"
	"sheetflow/core/storage"

	"github.com/go-viper/mapstructure/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Env carries the shared collaborators a step may need. Optional
// collaborators (database, object storage) are nil unless wired at
// startup; steps that need them must check.
type Env struct {
	// Store is the named dataset store.
	Store *stage.Store

	// Logger is the run-scoped logger.
	Logger *zap.Logger

	// Vars resolves {variable} references.
	Vars *recipe.Substitutor

	// Decls holds the recipe's stage declarations by name.
	Decls map[string]recipe.StageDecl

	// DB is the optional database connection for table imports.
	DB *gorm.DB

	// Storage is the optional object storage client, with its bucket.
	Storage storage.Client
	Bucket  string
}

// SaveStage saves a dataset honoring the recipe's stage declarations:
// stages declared protected are created overwrite-proof.
func (e *Env) SaveStage(name string, ds *dataset.Dataset, description, stepName string) error {
	decl, declared := e.Decls[name]
	if declared && description == "" {
		description = decl.Description
	}
	return e.Store.SaveWithOptions(name, ds, description, true, stage.SaveOptions{
		StepName:  stepName,
		Protected: declared && decl.Protected,
	})
}

// Step is one executable pipeline step. Implementations are built by a
// Factory from a validated StepConfig and must be safe to execute once.
type Step interface {
	// Name returns the processor type, e.g. "filter_data".
	Name() string

	// Execute runs the step against the environment.
	Execute(ctx context.Context, env *Env) error
}

// Factory builds a Step from its recipe configuration. Factories must
// validate configuration and fail fast; Execute should not discover
// configuration errors.
type Factory func(cfg recipe.StepConfig) (Step, error)

// Registry maps processor types to step factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under the given processor type. Registering a
// duplicate type panics; step sets are wired once at startup.
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[name]; exists {
		panic(fmt.Sprintf("step type %q registered twice", name))
	}
	r.factories[name] = factory
}

// Build constructs the step for a config entry.
func (r *Registry) Build(cfg recipe.StepConfig) (Step, error) {
	r.mu.RLock()
	factory, ok := r.factories[cfg.Type]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown processor type %q (step %q)", cfg.Type, cfg.Label())
	}
	step, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("step %q: %w", cfg.Label(), err)
	}
	return step, nil
}

// Types returns the registered processor types, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.factories))
	for name := range r.factories {
		types = append(types, name)
	}
	sort.Strings(types)
	return types
}

// DecodeOptions decodes a step's option map into a typed options struct
// using mapstructure tags. Unknown keys are rejected so typos in recipes
// surface as configuration errors instead of silently ignored settings.
func DecodeOptions(cfg recipe.StepConfig, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		ErrorUnused: true,
		// YAML numbers arrive as int or float64 depending on formatting.
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(cfg.Options); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	return nil
}
