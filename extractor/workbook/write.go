// Package workbook persists extracted tables as xlsx sheets and reads them back.
//
// Sheets follow the layout of a data frame written without its index: the
// first row holds the column numbers, the table grid starts on row 2.
package workbook

import (
	"errors"
	"fmt"
	"io"

	"github.com/aqlanhadi/dsx/extractor/common"
	"github.com/xuri/excelize/v2"
)

var ErrNoTables = errors.New("no tables to write")

// SheetName is the name of the i-th (0-based) table's sheet.
func SheetName(i int) string {
	return fmt.Sprintf("Table_%d", i)
}

// Write saves one sheet per table to path, replacing any existing file.
func Write(tables []common.Table, path string) error {
	f, err := build(tables)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook %s: %w", path, err)
	}
	return nil
}

func WriteTo(tables []common.Table, w io.Writer) error {
	f, err := build(tables)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func build(tables []common.Table) (*excelize.File, error) {
	if len(tables) == 0 {
		return nil, ErrNoTables
	}

	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		f.Close()
		return nil, err
	}

	for i, table := range tables {
		name := SheetName(i)
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				f.Close()
				return nil, err
			}
		} else if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, err
		}

		if err := writeSheet(f, name, table, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("sheet %s: %w", name, err)
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

func writeSheet(f *excelize.File, name string, table common.Table, headerStyle int) error {
	width := table.Width()
	if width == 0 {
		return nil
	}

	header := make([]interface{}, width)
	for c := range header {
		header[c] = c
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(width, 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(name, "A1", last, headerStyle); err != nil {
		return err
	}

	for r, row := range table.Rows {
		values := make([]interface{}, width)
		for c := range values {
			values[c] = ""
			if c < len(row) {
				values[c] = row[c]
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &values); err != nil {
			return err
		}
	}

	// blank trailing rows hold no cells, the dimension keeps their count
	bottom, err := excelize.CoordinatesToCellName(width, len(table.Rows)+1)
	if err != nil {
		return err
	}
	return f.SetSheetDimension(name, "A1:"+bottom)
}
