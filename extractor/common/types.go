package common

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Table is one grid region detected on a PDF page.
type Table struct {
	Page   int        `json:"page"`
	Flavor string     `json:"flavor"`
	Rows   [][]string `json:"rows"`
}

// Width returns the widest row of the table.
func (t Table) Width() int {
	width := 0
	for _, row := range t.Rows {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}

type Cell struct {
	Value   string `json:"value"`
	Numeric bool   `json:"numeric,omitempty"`
}

// Empty reports whether the cell holds nothing. Empty cells are the NaN of a
// read-back sheet.
func (c Cell) Empty() bool {
	return c.Value == ""
}

// Truthy follows the "a or b or c" rule used for Service: empty cells and
// numeric zeroes are falsy, everything else is truthy.
func (c Cell) Truthy() bool {
	if c.Empty() {
		return false
	}
	if c.Numeric {
		if d, err := decimal.NewFromString(strings.TrimSpace(c.Value)); err == nil && d.IsZero() {
			return false
		}
	}
	return true
}

// Sheet is a workbook tab read back from disk. Columns holds the header row,
// Cells the grid below it.
type Sheet struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Cells   [][]Cell `json:"cells"`
}

func (s Sheet) NumRows() int {
	return len(s.Cells)
}

func (s Sheet) NumCols() int {
	cols := len(s.Columns)
	for _, row := range s.Cells {
		if len(row) > cols {
			cols = len(row)
		}
	}
	return cols
}

// At returns the cell at (row, col). Positions outside the grid report false.
func (s Sheet) At(row, col int) (Cell, bool) {
	if row < 0 || row >= len(s.Cells) || col < 0 || col >= s.NumCols() {
		return Cell{}, false
	}
	if col >= len(s.Cells[row]) {
		return Cell{}, true
	}
	return s.Cells[row][col], true
}

// ColumnLabel is the header value of a column, or its index when the header is blank.
func (s Sheet) ColumnLabel(col int) string {
	if col < len(s.Columns) && s.Columns[col] != "" {
		return s.Columns[col]
	}
	return strconv.Itoa(col)
}

type Workbook struct {
	Source string  `json:"source"`
	Sheets []Sheet `json:"sheets"`
}

type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// FieldResult is a named value scraped next to a marker cell. Value is nil
// when the marker was not found or no neighbour qualified. Number is only
// parsed for Effective Area.
type FieldResult struct {
	Name   string           `json:"name"`
	Sheet  string           `json:"sheet,omitempty"`
	Marker *Position        `json:"marker,omitempty"`
	Source *Position        `json:"source,omitempty"`
	Value  *string          `json:"value"`
	Number *decimal.Decimal `json:"number,omitempty"`
}

func (f FieldResult) Found() bool {
	return f.Marker != nil
}

func (f FieldResult) Present() bool {
	return f.Value != nil
}

// Window is the block of cells printed around the Heat Duty marker after
// all-empty rows and columns were dropped.
type Window struct {
	Sheet     string     `json:"sheet"`
	Marker    Position   `json:"marker"`
	RowLabels []int      `json:"row_labels"`
	ColLabels []string   `json:"col_labels"`
	Cells     [][]string `json:"cells"`
}

type Fields struct {
	Source        string      `json:"source"`
	Service       FieldResult `json:"service"`
	EffectiveArea FieldResult `json:"effective_area"`
	HeatDuty      *Window     `json:"heat_duty"`
}
