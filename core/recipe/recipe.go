package recipe

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// StageDecl declares a stage in the recipe settings, enabling validation
// and protection before any step runs.
type StageDecl struct {
	// StageName is the declared stage name. Required.
	StageName string `yaml:"stage_name"`

	// Description documents the stage's purpose.
	Description string `yaml:"description"`

	// Protected stages refuse overwrites once created.
	Protected bool `yaml:"protected"`
}

// Settings holds the recipe-level configuration.
type Settings struct {
	// Description documents the recipe.
	Description string `yaml:"description"`

	// OnError selects the global error action: halt (default), continue,
	// or skip_remaining. Steps may override it.
	OnError string `yaml:"on_error"`

	// Variables defines recipe-level substitution variables.
	Variables map[string]string `yaml:"variables"`

	// Stages declares the stages the recipe uses.
	Stages []StageDecl `yaml:"stages"`
}

// StepConfig is one step entry of the recipe. Fields every step shares
// are typed; everything else lands in Options and is decoded by the step
// factory.
type StepConfig struct {
	// Type is the registered processor type, e.g. "filter_data". Required.
	Type string `yaml:"processor_type"`

	// Description is the human-readable step label used in logs.
	Description string `yaml:"step_description"`

	// SourceStage names the stage the step reads, where applicable.
	SourceStage string `yaml:"source_stage"`

	// SaveToStage names the stage the step writes, where applicable.
	SaveToStage string `yaml:"save_to_stage"`

	// OnError overrides the recipe-level error action for this step.
	OnError string `yaml:"on_error"`

	// Options holds the step-specific configuration keys.
	Options map[string]any `yaml:",inline"`
}

// Label returns the step description, falling back to the processor type.
func (s StepConfig) Label() string {
	if s.Description != "" {
		return s.Description
	}
	return s.Type
}

// Recipe is a parsed recipe file.
type Recipe struct {
	Settings Settings     `yaml:"settings"`
	Steps    []StepConfig `yaml:"recipe"`
}

// Load reads and validates a recipe file.
func Load(path string) (*Recipe, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe %q: %w", path, err)
	}
	return Parse(raw)
}

// Parse parses recipe YAML and validates its structure.
func Parse(raw []byte) (*Recipe, error) {
	var rec Recipe
	if err := yaml.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse recipe: %w", err)
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Validate checks recipe structure before execution.
func (r *Recipe) Validate() error {
	if len(r.Steps) == 0 {
		return fmt.Errorf("recipe has no steps")
	}
	for i, step := range r.Steps {
		if step.Type == "" {
			return fmt.Errorf("step %d (%s): processor_type is required", i+1, step.Label())
		}
	}
	for _, decl := range r.Settings.Stages {
		if decl.StageName == "" {
			return fmt.Errorf("stage declaration missing stage_name")
		}
	}
	return nil
}

// DeclaredStages returns the declared stage names as a set.
func (r *Recipe) DeclaredStages() map[string]StageDecl {
	decls := make(map[string]StageDecl, len(r.Settings.Stages))
	for _, d := range r.Settings.Stages {
		decls[d.StageName] = d
	}
	return decls
}

// UndeclaredStages lists stage names steps reference but settings do not
// declare. These are warnings, not errors; undeclared stages are created
// dynamically.
func (r *Recipe) UndeclaredStages() []string {
	declared := r.DeclaredStages()
	seen := make(map[string]struct{})
	var missing []string
	note := func(name string) {
		if name == "" {
			return
		}
		if _, ok := declared[name]; ok {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		missing = append(missing, name)
	}
	for _, step := range r.Steps {
		note(step.SourceStage)
		note(step.SaveToStage)
	}
	return missing
}
