package cmd

import (
	"fmt"
	"strings"

	"sheetflow/core/config"
	"sheetflow/core/database"
	"sheetflow/core/logger"
	"sheetflow/core/pipeline"
	"sheetflow/core/recipe"
	"sheetflow/core/stage"
	"sheetflow/core/storage"
	"sheetflow/feature/diff"
	"sheetflow/feature/fileops"
	"sheetflow/feature/transform"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runVars []string

// newRegistry builds the step registry with every available processor.
func newRegistry() *pipeline.Registry {
	reg := pipeline.NewRegistry()
	fileops.RegisterSteps(reg)
	transform.RegisterSteps(reg)
	diff.RegisterSteps(reg)
	return reg
}

func parseVarFlags(flags []string) (map[string]string, error) {
	vars := make(map[string]string, len(flags))
	for _, flag := range flags {
		name, value, ok := strings.Cut(flag, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --var %q (expected name=value)", flag)
		}
		vars[name] = value
	}
	return vars, nil
}

// runCmd executes a recipe file.
var runCmd = &cobra.Command{
	Use:   "run <recipe.yaml>",
	Short: "Run a recipe",
	Long:  `Runs every step of a recipe file against a fresh stage store.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer logg.Sync()

		overrides, err := parseVarFlags(runVars)
		if err != nil {
			return err
		}

		rec, err := recipe.Load(args[0])
		if err != nil {
			return err
		}

		store := stage.NewStoreWithLimit(cfg.Pipeline.MaxStages)
		runner := pipeline.NewRunner(newRegistry(), store, logg)

		// The database and object storage are optional: recipes that
		// never touch them run without either being reachable.
		if db, err := database.Connect(cfg.Database); err != nil {
			logg.Warn("Optional database connection failed", zap.Error(err))
		} else {
			runner.SetDatabase(db)
		}
		if client, err := storage.NewClient(cfg.Storage); err != nil {
			logg.Warn("Optional storage client creation failed", zap.Error(err))
		} else {
			runner.SetStorage(client, cfg.Storage.Bucket)
		}

		report, err := runner.Run(cmd.Context(), rec, overrides)
		if err != nil {
			return err
		}

		logg.Info("Recipe finished",
			zap.String("recipe", args[0]),
			zap.Int("executed", report.Executed),
			zap.Int("failed", report.Failed),
			zap.Int("skipped", report.Skipped),
		)
		if report.Failed > 0 {
			for _, step := range report.Steps {
				if step.Error != "" {
					logg.Warn("Step failed",
						zap.String("step", step.Label),
						zap.String("type", step.Type),
						zap.String("error", step.Error),
					)
				}
			}
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringArrayVar(&runVars, "var", nil,
		"recipe variable override as name=value (repeatable)")
	RootCmd.AddCommand(runCmd)
}
