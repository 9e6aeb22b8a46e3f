package fileops

import (
	"fmt"

	"sheetflow/core/dataset"
	"sheetflow/core/utils"

	"github.com/xuri/excelize/v2"
)

// ReadExcel loads one sheet of an .xlsx workbook into a dataset. An empty
// sheet name selects the workbook's first sheet. The first row is the
// header; cells are type-inferred like CSV cells.
func ReadExcel(path, sheet string) (*dataset.Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q of %q: %w", sheet, path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q of %q is empty: a header row is required", sheet, path)
	}

	header := rows[0]
	ds := dataset.New(header...)
	for _, record := range rows[1:] {
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

// WriteExcel writes a dataset to an .xlsx workbook as a single sheet.
// An empty sheet name writes "Sheet1".
func WriteExcel(ds *dataset.Dataset, path, sheet string) error {
	if sheet == "" {
		sheet = "Sheet1"
	}

	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	if defaultSheet != sheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			return err
		}
	}

	header := make([]any, len(ds.Columns))
	for i, col := range ds.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, row := range ds.Rows {
		record := make([]any, len(ds.Columns))
		for j, col := range ds.Columns {
			record[j] = row[col]
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &record); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write %q: %w", path, err)
	}
	return nil
}
