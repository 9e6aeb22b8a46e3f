package fileops

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"sheetflow/core/dataset"
	"sheetflow/core/utils"
)

// ReadCSV loads a CSV file into a dataset. The first record is the
// header; cells are type-inferred (numbers, booleans, empty as null).
func ReadCSV(path string) (*dataset.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", path, err)
	}
	defer f.Close()
	return parseCSV(f, path)
}

func parseCSV(r io.Reader, name string) (*dataset.Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%q is empty: a header row is required", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %q: %w", name, err)
	}

	ds := dataset.New(header...)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %q: %w", name, err)
		}
		row := make(dataset.Row, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = utils.InferCell(record[i])
			} else {
				row[col] = nil
			}
		}
		ds.AppendRow(row)
	}
	return ds, nil
}

// WriteCSV writes a dataset to a CSV file with a header row.
func WriteCSV(ds *dataset.Dataset, path string) error {
	rendered, err := RenderCSV(ds)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, rendered, 0o644); err != nil {
		return fmt.Errorf("failed to write %q: %w", path, err)
	}
	return nil
}

// RenderCSV renders a dataset as CSV bytes. Null cells render as empty
// fields.
func RenderCSV(ds *dataset.Dataset) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(ds.Columns); err != nil {
		return nil, err
	}
	record := make([]string, len(ds.Columns))
	for _, row := range ds.Rows {
		for i, col := range ds.Columns {
			record[i] = utils.ToString(row[col])
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
