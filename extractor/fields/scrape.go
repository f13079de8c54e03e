// Package fields scrapes named values out of workbook sheets by locating a
// marker cell and reading its neighbours at fixed offsets.
package fields

import (
	"strings"

	"github.com/aqlanhadi/dsx/extractor/common"
	"github.com/spf13/viper"
)

const (
	FieldService       = "Service"
	FieldEffectiveArea = "Effective Area"
	FieldHeatDuty      = "Heat Duty"
)

// Service reads col+2 first, then col+1, then col+3.
var serviceOffsets = []int{2, 1, 3}

const (
	effectiveAreaReach = 9

	windowRowsAbove  = 2
	windowRowsBelow  = 1
	windowColsBefore = 1
	windowColsAfter  = 30
)

// Markers are the substrings looked for in non-numeric cells.
type Markers struct {
	Service       string
	EffectiveArea string
	HeatDuty      string
}

type Options struct {
	Markers Markers
	// AllSheets scans every sheet in order; otherwise only the first one.
	AllSheets bool
}

func DefaultOptions() Options {
	return Options{
		Markers: Markers{
			Service:       FieldService,
			EffectiveArea: FieldEffectiveArea,
			HeatDuty:      FieldHeatDuty,
		},
		AllSheets: true,
	}
}

func OptionsFromConfig() Options {
	opts := DefaultOptions()
	if v := viper.GetString("scrape.markers.service"); v != "" {
		opts.Markers.Service = v
	}
	if v := viper.GetString("scrape.markers.effective_area"); v != "" {
		opts.Markers.EffectiveArea = v
	}
	if v := viper.GetString("scrape.markers.heat_duty"); v != "" {
		opts.Markers.HeatDuty = v
	}
	if viper.IsSet("scrape.all_sheets") {
		opts.AllSheets = viper.GetBool("scrape.all_sheets")
	}
	return opts
}

// Scrape reads the three fields from one sheet using the default markers.
func Scrape(sheet common.Sheet) common.Fields {
	return ScrapeWith(sheet, DefaultOptions().Markers)
}

func ScrapeWith(sheet common.Sheet, markers Markers) common.Fields {
	return common.Fields{
		Service:       scrapeService(sheet, markers.Service),
		EffectiveArea: scrapeEffectiveArea(sheet, markers.EffectiveArea),
		HeatDuty:      scrapeHeatDuty(sheet, markers.HeatDuty),
	}
}

// ScrapeWorkbook scrapes the sheets in order. Each field comes from the first
// sheet in which its marker was found, even if no value was recovered there.
func ScrapeWorkbook(wb common.Workbook, opts Options) common.Fields {
	result := common.Fields{
		Source:        wb.Source,
		Service:       common.FieldResult{Name: FieldService},
		EffectiveArea: common.FieldResult{Name: FieldEffectiveArea},
	}

	sheets := wb.Sheets
	if !opts.AllSheets && len(sheets) > 1 {
		sheets = sheets[:1]
	}

	for _, sheet := range sheets {
		found := ScrapeWith(sheet, opts.Markers)
		if !result.Service.Found() && found.Service.Found() {
			result.Service = found.Service
		}
		if !result.EffectiveArea.Found() && found.EffectiveArea.Found() {
			result.EffectiveArea = found.EffectiveArea
		}
		if result.HeatDuty == nil {
			result.HeatDuty = found.HeatDuty
		}
	}

	return result
}

// findMarker scans row-major for the first non-numeric cell containing
// marker. lastCol is the column the scan stopped on.
func findMarker(sheet common.Sheet, marker string) (at common.Position, lastCol int, ok bool) {
	if marker == "" {
		return common.Position{}, 0, false
	}

	cols := sheet.NumCols()
	for r := 0; r < sheet.NumRows(); r++ {
		for c := 0; c < cols; c++ {
			lastCol = c
			cell, _ := sheet.At(r, c)
			if !cell.Numeric && strings.Contains(cell.Value, marker) {
				return common.Position{Row: r, Col: c}, lastCol, true
			}
		}
	}
	return common.Position{}, lastCol, false
}

func scrapeService(sheet common.Sheet, marker string) common.FieldResult {
	result := common.FieldResult{Name: FieldService}

	at, _, ok := findMarker(sheet, marker)
	if !ok {
		return result
	}
	result.Sheet = sheet.Name
	result.Marker = &at

	for _, offset := range serviceOffsets {
		cell, ok := sheet.At(at.Row, at.Col+offset)
		if ok && cell.Truthy() {
			setValue(&result, cell, common.Position{Row: at.Row, Col: at.Col + offset})
			break
		}
	}
	return result
}

func scrapeEffectiveArea(sheet common.Sheet, marker string) common.FieldResult {
	result := common.FieldResult{Name: FieldEffectiveArea}

	at, _, ok := findMarker(sheet, marker)
	if !ok {
		return result
	}
	result.Sheet = sheet.Name
	result.Marker = &at

	for offset := 1; offset <= effectiveAreaReach; offset++ {
		cell, ok := sheet.At(at.Row, at.Col+offset)
		if !ok {
			break
		}
		if !cell.Empty() {
			setValue(&result, cell, common.Position{Row: at.Row, Col: at.Col + offset})
			if number, ok := common.ParseDecimal(cell.Value); ok {
				result.Number = &number
			}
			break
		}
	}
	return result
}

func setValue(result *common.FieldResult, cell common.Cell, from common.Position) {
	value := cell.Value
	result.Value = &value
	result.Source = &from
}

// scrapeHeatDuty cuts the window around the marker: two rows above through
// the marker row, one column before the marker through 30 columns past the
// column the scan stopped on. Rows and columns with no value are dropped.
func scrapeHeatDuty(sheet common.Sheet, marker string) *common.Window {
	at, lastCol, ok := findMarker(sheet, marker)
	if !ok {
		return nil
	}

	rowStart := max(at.Row-windowRowsAbove, 0)
	rowEnd := min(at.Row+windowRowsBelow, sheet.NumRows())
	colStart := max(at.Col-windowColsBefore, 0)
	colEnd := min(lastCol+windowColsAfter, sheet.NumCols())

	var rows []int
	for r := rowStart; r < rowEnd; r++ {
		for c := colStart; c < colEnd; c++ {
			if cell, _ := sheet.At(r, c); !cell.Empty() {
				rows = append(rows, r)
				break
			}
		}
	}

	var cols []int
	for c := colStart; c < colEnd; c++ {
		for _, r := range rows {
			if cell, _ := sheet.At(r, c); !cell.Empty() {
				cols = append(cols, c)
				break
			}
		}
	}

	window := &common.Window{
		Sheet:     sheet.Name,
		Marker:    at,
		RowLabels: rows,
		ColLabels: make([]string, len(cols)),
		Cells:     make([][]string, len(rows)),
	}
	for i, c := range cols {
		window.ColLabels[i] = sheet.ColumnLabel(c)
	}
	for i, r := range rows {
		window.Cells[i] = make([]string, len(cols))
		for j, c := range cols {
			cell, _ := sheet.At(r, c)
			window.Cells[i][j] = cell.Value
		}
	}
	return window
}
