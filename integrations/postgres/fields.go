package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aqlanhadi/dsx/extractor/common"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const heatDutyField = "Heat Duty"

// fieldRecord is one field_results row. Nil pointers are stored as NULL.
type fieldRecord struct {
	Field     string
	Sheet     *string
	MarkerRow *int
	MarkerCol *int
	ValueRow  *int
	ValueCol  *int
	Value     *string
	Numeric   *decimal.Decimal
	Window    []byte
}

func recordFromResult(r common.FieldResult) fieldRecord {
	rec := fieldRecord{Field: r.Name, Value: r.Value, Numeric: r.Number}
	if r.Sheet != "" {
		sheet := r.Sheet
		rec.Sheet = &sheet
	}
	if r.Marker != nil {
		rec.MarkerRow, rec.MarkerCol = &r.Marker.Row, &r.Marker.Col
	}
	if r.Source != nil {
		rec.ValueRow, rec.ValueCol = &r.Source.Row, &r.Source.Col
	}
	return rec
}

// fieldRecords flattens scraped fields into rows. Every field gets a row so
// that "not found" is recorded too.
func fieldRecords(f common.Fields) ([]fieldRecord, error) {
	records := []fieldRecord{
		recordFromResult(f.Service),
		recordFromResult(f.EffectiveArea),
	}

	heat := fieldRecord{Field: heatDutyField}
	if w := f.HeatDuty; w != nil {
		window, err := json.Marshal(w)
		if err != nil {
			return nil, fmt.Errorf("failed to encode heat duty window: %w", err)
		}
		sheet := w.Sheet
		heat.Sheet = &sheet
		heat.MarkerRow, heat.MarkerCol = &w.Marker.Row, &w.Marker.Col
		heat.Window = window
	}
	records = append(records, heat)

	return records, nil
}

// CreateFieldResults inserts the scraped fields of a workbook in one batch
func (db *DB) CreateFieldResults(ctx context.Context, workbookID string, f common.Fields) error {
	records, err := fieldRecords(f)
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(`
			INSERT INTO field_results (
				workbook_id, field, sheet, marker_row, marker_col,
				value_row, value_col, value, numeric_value, heat_duty_window
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`,
			workbookID, rec.Field, rec.Sheet, rec.MarkerRow, rec.MarkerCol,
			rec.ValueRow, rec.ValueCol, rec.Value, rec.Numeric, rec.Window,
		)
	}

	br := db.Pool.SendBatch(ctx, batch)
	defer br.Close()

	for _, rec := range records {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to insert field %s: %w", rec.Field, err)
		}
	}

	return nil
}
