package fileops

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"sheetflow/core/dataset"
	"sheetflow/core/pipeline"
	"sheetflow/core/recipe"

	"go.uber.org/zap"
)

type importFileOptions struct {
	// InputFile is the path to read. Supports {variable} substitution.
	InputFile string `mapstructure:"input_file"`
	// Sheet selects the worksheet for .xlsx files; empty means first sheet.
	Sheet string `mapstructure:"sheet"`
}

type importFileStep struct {
	label  string
	saveTo string
	opts   importFileOptions
}

func newImportFileStep(cfg recipe.StepConfig) (pipeline.Step, error) {
	var opts importFileOptions
	if err := pipeline.DecodeOptions(cfg, &opts); err != nil {
		return nil, err
	}
	if opts.InputFile == "" {
		return nil, fmt.Errorf("input_file is required")
	}
	if cfg.SaveToStage == "" {
		return nil, fmt.Errorf("save_to_stage is required")
	}
	return &importFileStep{label: cfg.Label(), saveTo: cfg.SaveToStage, opts: opts}, nil
}

func (s *importFileStep) Name() string { return "import_file" }

func (s *importFileStep) Execute(ctx context.Context, env *pipeline.Env) error {
	path, err := env.Vars.Substitute(s.opts.InputFile)
	if err != nil {
		return err
	}

	ds, err := readFile(path, s.opts.Sheet)
	if err != nil {
		return err
	}

	env.Logger.Info("imported file",
		zap.String("path", path),
		zap.Int("rows", ds.Len()),
		zap.String("stage", s.saveTo),
	)
	return env.SaveStage(s.saveTo, ds, fmt.Sprintf("Imported from %s", path), s.label)
}

func readFile(path, sheet string) (*dataset.Dataset, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(path)
	case ".xlsx", ".xlsm":
		return ReadExcel(path, sheet)
	default:
		return nil, fmt.Errorf("unsupported file type %q (expected .csv or .xlsx)", filepath.Ext(path))
	}
}
