package fileops

import (
	"context"
	"fmt"
	"regexp"

	"sheetflow/core/dataset"
	"sheetflow/core/pipeline"
	"sheetflow/core/recipe"

	"go.uber.org/zap"
)

var tableNameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

type importTableOptions struct {
	// TableName is the table to import. Required.
	TableName string `mapstructure:"table_name"`
	// MaxRows bounds the import; 0 means unbounded.
	MaxRows int `mapstructure:"max_rows"`
}

type importTableStep struct {
	label  string
	saveTo string
	opts   importTableOptions
}

func newImportTableStep(cfg recipe.StepConfig) (pipeline.Step, error) {
	var opts importTableOptions
	if err := pipeline.DecodeOptions(cfg, &opts); err != nil {
		return nil, err
	}
	if opts.TableName == "" {
		return nil, fmt.Errorf("table_name is required")
	}
	if !tableNameRe.MatchString(opts.TableName) {
		return nil, fmt.Errorf("invalid table_name %q", opts.TableName)
	}
	if opts.MaxRows < 0 {
		return nil, fmt.Errorf("max_rows must not be negative")
	}
	if cfg.SaveToStage == "" {
		return nil, fmt.Errorf("save_to_stage is required")
	}
	return &importTableStep{label: cfg.Label(), saveTo: cfg.SaveToStage, opts: opts}, nil
}

func (s *importTableStep) Name() string { return "import_table" }

func (s *importTableStep) Execute(ctx context.Context, env *pipeline.Env) error {
	if env.DB == nil {
		return fmt.Errorf("import_table requires a database connection; none is configured")
	}

	query := fmt.Sprintf("SELECT * FROM `%s`", s.opts.TableName)
	if s.opts.MaxRows > 0 {
		query = fmt.Sprintf("%s LIMIT %d", query, s.opts.MaxRows)
	}

	rows, err := env.DB.WithContext(ctx).Raw(query).Rows()
	if err != nil {
		return fmt.Errorf("failed to query table %q: %w", s.opts.TableName, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return err
	}

	ds := dataset.New(columns...)
	values := make([]any, len(columns))
	pointers := make([]any, len(columns))
	for i := range values {
		pointers[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(pointers...); err != nil {
			return fmt.Errorf("failed to scan row from %q: %w", s.opts.TableName, err)
		}
		row := make(dataset.Row, len(columns))
		for i, col := range columns {
			row[col] = normalizeDBValue(values[i])
		}
		ds.AppendRow(row)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	env.Logger.Info("imported table",
		zap.String("table", s.opts.TableName),
		zap.Int("rows", ds.Len()),
		zap.String("stage", s.saveTo),
	)
	return env.SaveStage(s.saveTo, ds, fmt.Sprintf("Imported from table %s", s.opts.TableName), s.label)
}

// normalizeDBValue maps driver values onto the dataset cell types. The
// mysql driver returns []byte for most text and numeric columns.
func normalizeDBValue(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(t)
	case int64, float64, bool, string:
		return t
	case int32:
		return int64(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
