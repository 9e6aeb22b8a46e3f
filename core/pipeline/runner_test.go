package pipeline

import (
	"context"
	"fmt"
	"testing"

	"sheetflow/core/recipe"
	"sheetflow/core/stage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeStep records executions and optionally fails.
type fakeStep struct {
	name string
	fail bool
	log  *[]string
}

func (s *fakeStep) Name() string { return s.name }

func (s *fakeStep) Execute(ctx context.Context, env *Env) error {
	*s.log = append(*s.log, s.name)
	if s.fail {
		return fmt.Errorf("%s exploded", s.name)
	}
	return nil
}

func testRegistry(log *[]string, failing map[string]bool) *Registry {
	reg := NewRegistry()
	for _, name := range []string{"one", "two", "three"} {
		name := name
		reg.Register(name, func(cfg recipe.StepConfig) (Step, error) {
			return &fakeStep{name: name, fail: failing[name], log: log}, nil
		})
	}
	return reg
}

func steps(types ...string) []recipe.StepConfig {
	cfgs := make([]recipe.StepConfig, len(types))
	for i, t := range types {
		cfgs[i] = recipe.StepConfig{Type: t}
	}
	return cfgs
}

func TestRunner_AllStepsSucceed(t *testing.T) {
	var log []string
	runner := NewRunner(testRegistry(&log, nil), stage.NewStore(), zap.NewNop())

	report, err := runner.Run(context.Background(), &recipe.Recipe{Steps: steps("one", "two")}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, log)
	assert.Equal(t, 2, report.Executed)
	assert.Equal(t, 0, report.Failed)
}

func TestRunner_HaltByDefault(t *testing.T) {
	var log []string
	runner := NewRunner(testRegistry(&log, map[string]bool{"two": true}), stage.NewStore(), zap.NewNop())

	report, err := runner.Run(context.Background(), &recipe.Recipe{Steps: steps("one", "two", "three")}, nil)
	require.Error(t, err)
	assert.Equal(t, []string{"one", "two"}, log, "halt stops before step three")
	assert.Equal(t, 1, report.Executed)
	assert.Equal(t, 1, report.Failed)
}

func TestRunner_ContinueAction(t *testing.T) {
	var log []string
	runner := NewRunner(testRegistry(&log, map[string]bool{"two": true}), stage.NewStore(), zap.NewNop())

	rec := &recipe.Recipe{
		Settings: recipe.Settings{OnError: "continue"},
		Steps:    steps("one", "two", "three"),
	}
	report, err := runner.Run(context.Background(), rec, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "three"}, log)
	assert.Equal(t, 2, report.Executed)
	assert.Equal(t, 1, report.Failed)
}

func TestRunner_SkipRemainingAction(t *testing.T) {
	var log []string
	runner := NewRunner(testRegistry(&log, map[string]bool{"one": true}), stage.NewStore(), zap.NewNop())

	rec := &recipe.Recipe{
		Settings: recipe.Settings{OnError: "skip_remaining"},
		Steps:    steps("one", "two", "three"),
	}
	report, err := runner.Run(context.Background(), rec, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"one"}, log)
	assert.Equal(t, 2, report.Skipped)
	require.Len(t, report.Steps, 3)
	assert.True(t, report.Steps[2].Skipped)
}

func TestRunner_PerStepOverride(t *testing.T) {
	var log []string
	runner := NewRunner(testRegistry(&log, map[string]bool{"one": true}), stage.NewStore(), zap.NewNop())

	rec := &recipe.Recipe{
		Steps: []recipe.StepConfig{
			{Type: "one", OnError: "continue"},
			{Type: "two"},
		},
	}
	report, err := runner.Run(context.Background(), rec, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, log)
	assert.Equal(t, 1, report.Failed)
}

func TestRunner_FailsFastOnBadConfig(t *testing.T) {
	var log []string
	runner := NewRunner(testRegistry(&log, nil), stage.NewStore(), zap.NewNop())

	t.Run("unknown processor type", func(t *testing.T) {
		rec := &recipe.Recipe{Steps: steps("one", "nonexistent")}
		_, err := runner.Run(context.Background(), rec, nil)
		require.Error(t, err)
		assert.Empty(t, log, "nothing executes when any step is misconfigured")
	})

	t.Run("unknown error action", func(t *testing.T) {
		rec := &recipe.Recipe{
			Steps: []recipe.StepConfig{{Type: "one", OnError: "explode"}},
		}
		_, err := runner.Run(context.Background(), rec, nil)
		require.Error(t, err)
		assert.Empty(t, log)
	})
}

func TestRegistry_DuplicateRegistrationPanics(t *testing.T) {
	reg := NewRegistry()
	reg.Register("dup", func(cfg recipe.StepConfig) (Step, error) { return nil, nil })
	assert.Panics(t, func() {
		reg.Register("dup", func(cfg recipe.StepConfig) (Step, error) { return nil, nil })
	})
}

func TestDecodeOptions(t *testing.T) {
	type opts struct {
		InputFile string `mapstructure:"input_file"`
		MaxRows   int    `mapstructure:"max_rows"`
	}

	t.Run("decodes known keys", func(t *testing.T) {
		var o opts
		cfg := recipe.StepConfig{Options: map[string]any{"input_file": "a.csv", "max_rows": 10}}
		require.NoError(t, DecodeOptions(cfg, &o))
		assert.Equal(t, "a.csv", o.InputFile)
		assert.Equal(t, 10, o.MaxRows)
	})

	t.Run("rejects unknown keys", func(t *testing.T) {
		var o opts
		cfg := recipe.StepConfig{Options: map[string]any{"input_flie": "typo.csv"}}
		assert.Error(t, DecodeOptions(cfg, &o))
	})
}
