package tables

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aqlanhadi/dsx/extractor/common"
	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
)

var (
	licenseOnce sync.Once
	licenseErr  error
)

// applyLicense registers the UniDoc metered key once per process.
func applyLicense(key string) error {
	if key == "" {
		return nil
	}
	licenseOnce.Do(func() {
		licenseErr = license.SetMeteredKey(key)
	})
	return licenseErr
}

func extractStream(rs io.ReadSeeker, spec PageSpec, opts Options) ([]common.Table, error) {
	if err := applyLicense(opts.LicenseKey); err != nil {
		return nil, fmt.Errorf("unidoc license: %w", err)
	}

	pdfReader, err := model.NewPdfReader(rs)
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF reader: %w", err)
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return nil, fmt.Errorf("failed to get number of pages: %w", err)
	}

	pages, err := spec.Resolve(numPages)
	if err != nil {
		return nil, err
	}

	tables := []common.Table{}
	for _, no := range pages {
		page, err := pdfReader.GetPage(no)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", no, err)
		}

		ex, err := extractor.New(page)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", no, err)
		}

		pageText, _, _, err := ex.ExtractPageText()
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", no, err)
		}

		for _, t := range pageText.Tables() {
			tables = append(tables, common.Table{Page: no, Flavor: FlavorStream, Rows: streamRows(t, opts)})
		}
	}

	return tables, nil
}

func streamRows(t extractor.TextTable, opts Options) [][]string {
	rows := make([][]string, t.H)
	for y := range rows {
		rows[y] = make([]string, t.W)
		if y >= len(t.Cells) {
			continue
		}
		for x := 0; x < t.W && x < len(t.Cells[y]); x++ {
			rows[y][x] = strings.TrimSpace(common.StripChars(t.Cells[y][x].Text, opts.StripText))
		}
	}
	return rows
}
