package postgres

import (
	"context"
	"fmt"
)

const ddl = `
-- One row per equipment tag (E-101, P-201A, ...)
CREATE TABLE IF NOT EXISTS equipment (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    tag VARCHAR(100) NOT NULL,
    name VARCHAR(255) DEFAULT NULL,
    created_at TIMESTAMPTZ DEFAULT NOW(),
    updated_at TIMESTAMPTZ DEFAULT NOW(),

    UNIQUE(tag)
);

-- Workbooks keyed by file name
CREATE TABLE IF NOT EXISTS workbooks (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    equipment_id UUID NOT NULL REFERENCES equipment(id) ON DELETE CASCADE,
    file_name VARCHAR(255) NOT NULL,
    sheet_count INTEGER NOT NULL DEFAULT 0,
    imported_at TIMESTAMPTZ DEFAULT NOW(),

    UNIQUE(file_name)
);

-- Scraped fields, one row per field and workbook
CREATE TABLE IF NOT EXISTS field_results (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    workbook_id UUID NOT NULL REFERENCES workbooks(id) ON DELETE CASCADE,
    field VARCHAR(50) NOT NULL,
    sheet VARCHAR(100),
    marker_row INTEGER,
    marker_col INTEGER,
    value_row INTEGER,
    value_col INTEGER,
    value TEXT,
    numeric_value NUMERIC,
    heat_duty_window JSONB,
    created_at TIMESTAMPTZ DEFAULT NOW(),

    UNIQUE(workbook_id, field)
);

-- Older schemas capped the precision
ALTER TABLE field_results ALTER COLUMN numeric_value TYPE NUMERIC;

CREATE INDEX IF NOT EXISTS idx_workbooks_equipment_id ON workbooks(equipment_id);
CREATE INDEX IF NOT EXISTS idx_field_results_workbook_id ON field_results(workbook_id);
CREATE INDEX IF NOT EXISTS idx_field_results_field ON field_results(field) WHERE value IS NOT NULL;
`

// EnsureSchema creates tables if they don't exist
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
