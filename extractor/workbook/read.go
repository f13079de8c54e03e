package workbook

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/aqlanhadi/dsx/extractor/common"
	"github.com/xuri/excelize/v2"
)

var ErrUnsupportedFormat = errors.New("unsupported workbook format")

// IsWorkbook reports whether a file name has a spreadsheet extension.
func IsWorkbook(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".xlsx" || ext == ".xls"
}

// Read loads every sheet of an xlsx file. Legacy .xls files are rejected
// with ErrUnsupportedFormat.
func Read(path string) (common.Workbook, error) {
	if strings.EqualFold(filepath.Ext(path), ".xls") {
		return common.Workbook{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return common.Workbook{}, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	return readFile(f, filepath.Base(path))
}

func ReadFrom(r io.Reader, source string) (common.Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return common.Workbook{}, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	return readFile(f, source)
}

func readFile(f *excelize.File, source string) (common.Workbook, error) {
	wb := common.Workbook{Source: source, Sheets: []common.Sheet{}}
	for _, name := range f.GetSheetList() {
		sheet, err := readSheet(f, name)
		if err != nil {
			return common.Workbook{}, fmt.Errorf("sheet %s: %w", name, err)
		}
		wb.Sheets = append(wb.Sheets, sheet)
	}
	return wb, nil
}

// readSheet takes the first row as the header and pads every grid row to the
// widest row so the grid is rectangular. Rows are padded down to the sheet's
// declared dimension.
func readSheet(f *excelize.File, name string) (common.Sheet, error) {
	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return common.Sheet{}, err
	}

	sheet := common.Sheet{Name: name, Columns: []string{}, Cells: [][]common.Cell{}}
	if len(rows) == 0 {
		return sheet, nil
	}

	// GetRows stops at the last row holding a value
	if n := dimensionRows(f, name); n > len(rows) {
		rows = append(rows, make([][]string, n-len(rows))...)
	}

	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}

	sheet.Columns = make([]string, width)
	copy(sheet.Columns, rows[0])

	for r, row := range rows[1:] {
		cells := make([]common.Cell, width)
		for c, value := range row {
			cells[c].Value = value
			if value == "" {
				continue
			}
			axis, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return common.Sheet{}, err
			}
			typ, err := f.GetCellType(name, axis)
			if err != nil {
				continue
			}
			// numbers usually carry no type attribute at all
			cells[c].Numeric = typ == excelize.CellTypeNumber || typ == excelize.CellTypeUnset
		}
		sheet.Cells = append(sheet.Cells, cells)
	}

	return sheet, nil
}

// dimensionRows returns the last row of the sheet's dimension ref, or 0 when
// the sheet declares none.
func dimensionRows(f *excelize.File, name string) int {
	ref, err := f.GetSheetDimension(name)
	if err != nil || ref == "" {
		return 0
	}
	parts := strings.Split(ref, ":")
	_, row, err := excelize.CellNameToCoordinates(parts[len(parts)-1])
	if err != nil {
		return 0
	}
	return row
}

// Grid flattens a sheet back into plain strings.
func Grid(sheet common.Sheet) [][]string {
	grid := make([][]string, len(sheet.Cells))
	for r, row := range sheet.Cells {
		grid[r] = make([]string, len(row))
		for c, cell := range row {
			grid[r][c] = cell.Value
		}
	}
	return grid
}
