package diff

import (
	"fmt"

	"sheetflow/core/dataset"
	"sheetflow/core/reconcile"

	"go.uber.org/zap"
)

// Service runs one-shot reconciliations for the HTTP API.
type Service struct {
	logger *zap.Logger
}

// NewService creates a new diff service.
func NewService(logger *zap.Logger) *Service {
	return &Service{logger: logger}
}

// Request is the JSON body of a diff request: two inline datasets plus
// the reconciliation settings.
type Request struct {
	Reference          DatasetPayload `json:"reference"`
	Current            DatasetPayload `json:"current"`
	KeyColumns         []string       `json:"key_columns"`
	ExcludeColumns     []string       `json:"exclude_columns,omitempty"`
	HandleDeletedRows  string         `json:"handle_deleted_rows,omitempty"`
	OnDuplicateKeys    string         `json:"on_duplicate_keys,omitempty"`
	IncludeJSONDetails bool           `json:"include_json_details,omitempty"`
}

// DatasetPayload is the wire form of a dataset: an explicit column order
// plus rows keyed by column name.
type DatasetPayload struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// Response carries the annotated rows and the classification counts.
type Response struct {
	Columns  []string          `json:"columns"`
	Rows     []map[string]any  `json:"rows"`
	Summary  reconcile.Summary `json:"summary"`
	Warnings []string          `json:"warnings,omitempty"`
}

// Diff reconciles the request's current dataset against its reference.
func (s *Service) Diff(req Request) (*Response, error) {
	reference, err := toDataset(req.Reference, "reference")
	if err != nil {
		return nil, err
	}
	current, err := toDataset(req.Current, "current")
	if err != nil {
		return nil, err
	}

	cfg := reconcile.Config{
		KeyColumns:         req.KeyColumns,
		ExcludeColumns:     req.ExcludeColumns,
		DeletedRows:        reconcile.DeletedRowPolicy(req.HandleDeletedRows),
		Duplicates:         reconcile.DuplicatePolicy(req.OnDuplicateKeys),
		IncludeJSONDetails: req.IncludeJSONDetails,
	}

	result, err := reconcile.Reconcile(reference, current, cfg)
	if err != nil {
		return nil, err
	}
	for _, warning := range result.Warnings {
		s.logger.Warn(warning)
	}

	rows := make([]map[string]any, result.Dataset.Len())
	for i, row := range result.Dataset.Rows {
		rows[i] = row
	}
	return &Response{
		Columns:  result.Dataset.Columns,
		Rows:     rows,
		Summary:  result.Summary,
		Warnings: result.Warnings,
	}, nil
}

func toDataset(payload DatasetPayload, name string) (*dataset.Dataset, error) {
	if len(payload.Columns) == 0 {
		return nil, fmt.Errorf("%s dataset must declare columns", name)
	}
	ds := dataset.New(payload.Columns...)
	for _, row := range payload.Rows {
		ds.AppendRow(row)
	}
	return ds, nil
}
