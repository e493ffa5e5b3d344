package preview

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/practica/practica-link/internal/models"
)

func parseSpreadsheet(src models.FileSource) (*Grid, error) {
	r, err := src.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", src.Name(), err)
	}
	defer r.Close()

	ext := strings.ToLower(filepath.Ext(src.Name()))
	if ext == ".csv" {
		return parseCSV(r)
	}
	// .xls workbooks are not understood by excelize and degrade to the
	// generic card through the error path.
	return parseWorkbook(r)
}

func parseCSV(r io.Reader) (*Grid, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	grid := &Grid{SheetName: "Sheet1"}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		grid.TotalRows++
		if len(grid.Rows) < MaxGridRows {
			grid.Rows = append(grid.Rows, capColumns(record, grid))
		}
	}
	grid.Truncated = grid.Truncated || grid.TotalRows > MaxGridRows
	return grid, nil
}

func parseWorkbook(r io.Reader) (*Grid, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()

	sheet := wb.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := wb.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}

	grid := &Grid{SheetName: sheet, TotalRows: len(rows)}
	for _, row := range rows {
		if len(grid.Rows) >= MaxGridRows {
			break
		}
		grid.Rows = append(grid.Rows, capColumns(row, grid))
	}
	grid.Truncated = grid.Truncated || grid.TotalRows > MaxGridRows
	return grid, nil
}

func capColumns(row []string, grid *Grid) []string {
	if len(row) > MaxGridCols {
		grid.Truncated = true
		row = row[:MaxGridCols]
	}
	out := make([]string, len(row))
	copy(out, row)
	return out
}
