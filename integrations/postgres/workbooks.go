package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// WorkbookExists checks if a workbook was already imported under fileName
func (db *DB) WorkbookExists(ctx context.Context, fileName string) (bool, string, error) {
	var id string
	err := db.Pool.QueryRow(ctx, `
		SELECT id FROM workbooks WHERE file_name = $1
	`, fileName).Scan(&id)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, "", nil
		}
		return false, "", fmt.Errorf("failed to check workbook: %w", err)
	}

	return true, id, nil
}

func (db *DB) CreateWorkbook(ctx context.Context, equipmentID, fileName string, sheetCount int) (string, error) {
	var id string

	err := db.Pool.QueryRow(ctx, `
		INSERT INTO workbooks (equipment_id, file_name, sheet_count)
		VALUES ($1, $2, $3)
		RETURNING id
	`, equipmentID, fileName, sheetCount).Scan(&id)

	if err != nil {
		return "", fmt.Errorf("failed to create workbook: %w", err)
	}

	return id, nil
}

// DeleteWorkbook removes a workbook and its field results (cascade)
func (db *DB) DeleteWorkbook(ctx context.Context, workbookID string) error {
	_, err := db.Pool.Exec(ctx, `DELETE FROM workbooks WHERE id = $1`, workbookID)
	if err != nil {
		return fmt.Errorf("failed to delete workbook: %w", err)
	}
	return nil
}
