package postgres

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/aqlanhadi/dsx/extractor/fields"
	"github.com/aqlanhadi/dsx/extractor/workbook"
)

// ImportResult tracks the outcome of an import operation
type ImportResult struct {
	Processed int
	Skipped   int
	Failed    int
	Errors    []string
}

// ImportOptions configures the import behavior
type ImportOptions struct {
	Force   bool // Replace workbooks that were already imported
	Verbose bool
	Scrape  fields.Options
}

// ImportFile scrapes one workbook and stores its fields. It returns the
// outcome as one of processed, skipped or failed plus an error message.
func (db *DB) ImportFile(ctx context.Context, filePath string, opts ImportOptions) (processed, skipped, failed int, errors []string) {
	fileName := filepath.Base(filePath)

	wb, err := workbook.Read(filePath)
	if err != nil {
		return 0, 0, 1, []string{fmt.Sprintf("%s: %v", fileName, err)}
	}

	scraped := fields.ScrapeWorkbook(wb, opts.Scrape)

	exists, existingID, err := db.WorkbookExists(ctx, fileName)
	if err != nil {
		return 0, 0, 1, []string{fmt.Sprintf("%s: check error: %v", fileName, err)}
	}
	if exists && !opts.Force {
		if opts.Verbose {
			log.Printf("SKIP %s (already exists)", fileName)
		}
		return 0, 1, 0, nil
	}
	if exists {
		if err := db.DeleteWorkbook(ctx, existingID); err != nil {
			return 0, 0, 1, []string{fmt.Sprintf("%s: delete error: %v", fileName, err)}
		}
	}

	name := ""
	if scraped.Service.Present() {
		name = *scraped.Service.Value
	}
	tag := EquipmentTag(fileName)
	equipmentID, err := db.GetOrCreateEquipment(ctx, tag, name)
	if err != nil {
		return 0, 0, 1, []string{fmt.Sprintf("%s [%s]: equipment error: %v", fileName, tag, err)}
	}

	workbookID, err := db.CreateWorkbook(ctx, equipmentID, fileName, len(wb.Sheets))
	if err != nil {
		return 0, 0, 1, []string{fmt.Sprintf("%s [%s]: workbook error: %v", fileName, tag, err)}
	}

	if err := db.CreateFieldResults(ctx, workbookID, scraped); err != nil {
		// Rollback by deleting the workbook
		_ = db.DeleteWorkbook(ctx, workbookID)
		return 0, 0, 1, []string{fmt.Sprintf("%s [%s]: fields error: %v", fileName, tag, err)}
	}

	if opts.Verbose {
		log.Printf("OK   %s [%s] (%d sheets)", fileName, tag, len(wb.Sheets))
	}
	return 1, 0, 0, nil
}

// ImportDirectory imports every workbook in a directory
func (db *DB) ImportDirectory(ctx context.Context, dirPath string, opts ImportOptions) (*ImportResult, error) {
	result := &ImportResult{}

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var books []string
	for _, e := range entries {
		if !e.IsDir() && workbook.IsWorkbook(e.Name()) {
			books = append(books, filepath.Join(dirPath, e.Name()))
		}
	}

	log.Printf("Scanning: %s", dirPath)
	log.Printf("Found %d workbooks\n", len(books))

	for _, path := range books {
		processed, skipped, failed, errors := db.ImportFile(ctx, path, opts)

		result.Processed += processed
		result.Skipped += skipped
		result.Failed += failed
		result.Errors = append(result.Errors, errors...)

		if opts.Verbose && failed > 0 {
			for _, errMsg := range errors {
				log.Printf("FAIL %s", errMsg)
			}
		}
	}

	return result, nil
}

// Import handles both file and directory imports
func (db *DB) Import(ctx context.Context, path string, opts ImportOptions) (*ImportResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}

	if info.IsDir() {
		return db.ImportDirectory(ctx, path, opts)
	}

	result := &ImportResult{}
	result.Processed, result.Skipped, result.Failed, result.Errors = db.ImportFile(ctx, path, opts)
	return result, nil
}
