package postgres

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
)

var workbookSuffix = regexp.MustCompile(`(?i)(_Page_\d+)?_tables$`)

// EquipmentTag derives the equipment tag from a workbook file name:
// "E-101_tables.xlsx" and "E-101_Page_3_tables.xlsx" both give "E-101".
func EquipmentTag(fileName string) string {
	stem := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	return workbookSuffix.ReplaceAllString(stem, "")
}

// GetOrCreateEquipment finds equipment by tag or creates it. A non-empty name
// replaces the stored one; an empty name keeps it.
func (db *DB) GetOrCreateEquipment(ctx context.Context, tag, name string) (string, error) {
	var id string

	err := db.Pool.QueryRow(ctx, `
		SELECT id FROM equipment WHERE tag = $1
	`, tag).Scan(&id)

	if err == nil {
		_, err = db.Pool.Exec(ctx, `
			UPDATE equipment
			SET name = CASE WHEN $1::text != '' THEN $1 ELSE name END,
			    updated_at = NOW()
			WHERE id = $2
		`, name, id)
		if err != nil {
			return "", fmt.Errorf("failed to update equipment: %w", err)
		}
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("failed to look up equipment: %w", err)
	}

	err = db.Pool.QueryRow(ctx, `
		INSERT INTO equipment (tag, name)
		VALUES ($1, NULLIF($2, ''))
		RETURNING id
	`, tag, name).Scan(&id)

	if err != nil {
		return "", fmt.Errorf("failed to create equipment: %w", err)
	}

	return id, nil
}
