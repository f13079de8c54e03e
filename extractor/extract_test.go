package extractor

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aqlanhadi/dsx/extractor/fields"
	"github.com/aqlanhadi/dsx/extractor/tables"
	"github.com/aqlanhadi/dsx/internal/pdftest"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func datasheet() []pdftest.Page {
	rects, texts := pdftest.Grid(50, 700, []float64{120, 80, 80}, 16, [][]string{
		{"Service of Unit", "", "Condenser"},
		{"Effective Area", "125.3", "m2"},
		{"Heat Duty", "1.2", "MW"},
	})
	return []pdftest.Page{
		{Texts: []pdftest.Text{{X: 72, Y: 700, S: "Datasheet E-101"}}},
		{Rects: rects, Texts: texts},
	}
}

func testConfig() Config {
	return Config{
		Phrases: []string{DefaultPhrase},
		Output:  OutputPerDocument,
		Tables:  tables.DefaultOptions(),
		Scrape:  fields.DefaultOptions(),
	}
}

func TestExtractDirectory_NoPDFs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	var out bytes.Buffer
	report, err := ExtractDirectory(dir, testConfig(), &out)
	require.NoError(t, err)

	assert.Equal(t, "No PDF files found in "+dir+".\n", out.String())
	assert.Equal(t, ExtractReport{}, *report)
}

func TestExtractDirectory_WritesWorkbook(t *testing.T) {
	dir := t.TempDir()
	pdftest.WriteFile(t, dir, "E-101.pdf", datasheet()...)
	pdftest.WriteFile(t, dir, "E-102.PDF", pdftest.Page{Texts: []pdftest.Text{{X: 72, Y: 700, S: "General notes"}}})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.pdf"), []byte("not a pdf"), 0o644))

	var out bytes.Buffer
	report, err := ExtractDirectory(dir, testConfig(), &out)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Errors, 1)
	assert.True(t, strings.HasPrefix(report.Errors[0], "broken.pdf: "))

	excelPath := filepath.Join(dir, "E-101_tables.xlsx")
	assert.FileExists(t, excelPath)

	text := out.String()
	assert.Contains(t, text, `The word "Effective Area" was found in "E-101.pdf" on the following pages: [2]`)
	assert.Contains(t, text, `Tables extracted from "E-101.pdf" and saved to "`+excelPath+`" successfully.`)
	assert.Contains(t, text, `The word "Effective Area" was not found in "E-102.PDF".`)
	assert.Contains(t, text, `Failed to process "broken.pdf"`)
}

func TestExtractDirectory_NoTablesOnMatchedPages(t *testing.T) {
	dir := t.TempDir()
	pdftest.WriteFile(t, dir, "memo.pdf", pdftest.Page{Texts: []pdftest.Text{{X: 72, Y: 700, S: "Effective Area to be confirmed"}}})

	var out bytes.Buffer
	report, err := ExtractDirectory(dir, testConfig(), &out)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Skipped)
	assert.Contains(t, out.String(), `No tables found in the specified pages of "memo.pdf".`)
	assert.NoFileExists(t, filepath.Join(dir, "memo_tables.xlsx"))
}

func TestExtractDirectory_PerPage(t *testing.T) {
	dir := t.TempDir()
	pdftest.WriteFile(t, dir, "E-101.pdf", datasheet()...)

	cfg := testConfig()
	cfg.Output = OutputPerPage

	var out bytes.Buffer
	report, err := ExtractDirectory(dir, cfg, &out)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Processed)
	assert.FileExists(t, filepath.Join(dir, "E-101_Page_2_tables.xlsx"))
	assert.NoFileExists(t, filepath.Join(dir, "E-101_tables.xlsx"))
}

func TestExtractDirectory_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Pages = "0-x"
	_, err := ExtractDirectory(t.TempDir(), cfg, &bytes.Buffer{})
	assert.ErrorIs(t, err, tables.ErrInvalidPageSpec)

	cfg = testConfig()
	cfg.Output = "per_table"
	_, err = ExtractDirectory(t.TempDir(), cfg, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestExtractDirectory_MissingFolder(t *testing.T) {
	_, err := ExtractDirectory(filepath.Join(t.TempDir(), "missing"), testConfig(), &bytes.Buffer{})
	assert.Error(t, err)
}

func TestScrapeDirectory_AfterExtraction(t *testing.T) {
	dir := t.TempDir()
	pdftest.WriteFile(t, dir, "E-101.pdf", datasheet()...)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "legacy.xls"), []byte("old"), 0o644))

	_, err := ExtractDirectory(dir, testConfig(), &bytes.Buffer{})
	require.NoError(t, err)

	var out bytes.Buffer
	result, err := ScrapeDirectory(dir, fields.DefaultOptions(), &out)
	require.NoError(t, err)

	require.Len(t, result, 1)
	got, ok := result["E-101_tables.xlsx"]
	require.True(t, ok)
	require.True(t, got.Service.Present())
	assert.Equal(t, "Condenser", *got.Service.Value)
	require.True(t, got.EffectiveArea.Present())
	assert.Equal(t, "125.3", *got.EffectiveArea.Value)
	require.NotNil(t, got.HeatDuty)

	text := out.String()
	assert.Contains(t, text, "Heat Exchanger Name: Condenser")
	assert.Contains(t, text, "Effective Area Value: 125.3")
	assert.Contains(t, text, `Failed to read "legacy.xls"`)
}

func TestScrapeDirectory_NoWorkbooks(t *testing.T) {
	var out bytes.Buffer
	result, err := ScrapeDirectory(t.TempDir(), fields.DefaultOptions(), &out)
	require.NoError(t, err)

	assert.Empty(t, result)
	assert.Equal(t, "No Excel files found in the folder.\n", out.String())
}

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	cfg := loadConfig()
	assert.Equal(t, []string{DefaultPhrase}, cfg.Phrases)
	assert.Equal(t, OutputPerDocument, cfg.Output)
	assert.Equal(t, tables.DefaultOptions(), cfg.Tables)
	assert.True(t, cfg.Scrape.AllSheets)
}

func TestLoadConfig_FromYAML(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	viper.SetConfigType("yaml")
	require.NoError(t, viper.ReadConfig(strings.NewReader(`
phrases:
  - Heat Duty
  - Service
extract:
  output: per_page
  validate: true
`)))

	cfg := loadConfig()
	assert.Equal(t, []string{"Heat Duty", "Service"}, cfg.Phrases)
	assert.Equal(t, OutputPerPage, cfg.Output)
	assert.True(t, cfg.Validate)
}
