package fileops

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"sheetflow/core/pipeline"
	"sheetflow/core/recipe"

	"go.uber.org/zap"
)

type exportFileOptions struct {
	// OutputFile is the path to write. Supports {variable} substitution.
	OutputFile string `mapstructure:"output_file"`
	// Sheet names the worksheet for .xlsx output; empty means "Sheet1".
	Sheet string `mapstructure:"sheet"`
}

type exportFileStep struct {
	label  string
	source string
	opts   exportFileOptions
}

func newExportFileStep(cfg recipe.StepConfig) (pipeline.Step, error) {
	var opts exportFileOptions
	if err := pipeline.DecodeOptions(cfg, &opts); err != nil {
		return nil, err
	}
	if opts.OutputFile == "" {
		return nil, fmt.Errorf("output_file is required")
	}
	if cfg.SourceStage == "" {
		return nil, fmt.Errorf("source_stage is required")
	}
	return &exportFileStep{label: cfg.Label(), source: cfg.SourceStage, opts: opts}, nil
}

func (s *exportFileStep) Name() string { return "export_file" }

func (s *exportFileStep) Execute(ctx context.Context, env *pipeline.Env) error {
	ds, err := env.Store.Load(s.source)
	if err != nil {
		return err
	}

	path, err := env.Vars.Substitute(s.opts.OutputFile)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		err = WriteCSV(ds, path)
	case ".xlsx":
		err = WriteExcel(ds, path, s.opts.Sheet)
	default:
		return fmt.Errorf("unsupported file type %q (expected .csv or .xlsx)", filepath.Ext(path))
	}
	if err != nil {
		return err
	}

	env.Logger.Info("exported file",
		zap.String("stage", s.source),
		zap.String("path", path),
		zap.Int("rows", ds.Len()),
	)
	return nil
}
