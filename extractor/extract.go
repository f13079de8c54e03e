// Package extractor runs the folder-level pipeline: find the phrase pages in
// every PDF, extract their tables to workbooks, then scrape the workbooks.
package extractor

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/aqlanhadi/dsx/extractor/common"
	"github.com/aqlanhadi/dsx/extractor/fields"
	"github.com/aqlanhadi/dsx/extractor/scanner"
	"github.com/aqlanhadi/dsx/extractor/tables"
	"github.com/aqlanhadi/dsx/extractor/workbook"
	"github.com/spf13/viper"
)

const (
	OutputPerDocument = "per_document"
	OutputPerPage     = "per_page"

	DefaultPhrase = "Effective Area"
)

type Config struct {
	Phrases []string
	// Pages overrides the matched pages when set ("all", "1,3", "2-end").
	Pages    string
	Output   string
	Validate bool
	Tables   tables.Options
	Scrape   fields.Options
}

func loadConfig() Config {
	cfg := Config{
		Phrases:  viper.GetStringSlice("phrases"),
		Pages:    viper.GetString("extract.pages"),
		Output:   viper.GetString("extract.output"),
		Validate: viper.GetBool("extract.validate"),
		Tables:   tables.OptionsFromConfig(),
		Scrape:   fields.OptionsFromConfig(),
	}
	if len(cfg.Phrases) == 0 {
		cfg.Phrases = []string{DefaultPhrase}
	}
	if cfg.Output == "" {
		cfg.Output = OutputPerDocument
	}
	return cfg
}

// ExtractReport tallies one extraction run over a folder.
type ExtractReport struct {
	Processed int
	Skipped   int
	Failed    int
	Errors    []string
}

// Run extracts and then scrapes folder using the loaded configuration.
func Run(folder string) error {
	cfg := loadConfig()
	if _, err := ExtractDirectory(folder, cfg, os.Stdout); err != nil {
		return err
	}
	_, err := ScrapeDirectory(folder, cfg.Scrape, os.Stdout)
	return err
}

func ExecuteAgainstDirectory(folder string) (*ExtractReport, error) {
	return ExtractDirectory(folder, loadConfig(), os.Stdout)
}

// ExtractDirectory processes every PDF in folder in name order. A failing
// file is reported and counted; the rest of the folder is still processed.
func ExtractDirectory(folder string, cfg Config, out io.Writer) (*ExtractReport, error) {
	var override *tables.PageSpec
	if cfg.Pages != "" {
		spec, err := tables.ParsePageSpec(cfg.Pages)
		if err != nil {
			return nil, err
		}
		override = &spec
	}
	switch cfg.Output {
	case OutputPerDocument, OutputPerPage:
	default:
		return nil, fmt.Errorf("unknown output mode %q", cfg.Output)
	}

	pdfs, err := listFiles(folder, ".pdf")
	if err != nil {
		return nil, err
	}

	report := &ExtractReport{}
	if len(pdfs) == 0 {
		fmt.Fprintf(out, "No PDF files found in %s.\n", folder)
		return report, nil
	}

	log.Println("📂 Scanning", folder)
	for _, name := range pdfs {
		written, err := processPDF(folder, name, cfg, override, out)
		switch {
		case err != nil:
			report.Failed++
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", name, err))
			fmt.Fprintf(out, "Failed to process \"%s\": %v\n", name, err)
		case written:
			report.Processed++
		default:
			report.Skipped++
		}
	}
	return report, nil
}

// processPDF reports whether at least one workbook was written.
func processPDF(folder, name string, cfg Config, override *tables.PageSpec, out io.Writer) (bool, error) {
	path := filepath.Join(folder, name)
	log.Println("\t📄 Processing", path)

	if cfg.Validate {
		count, err := scanner.PageCount(path)
		if err != nil {
			return false, err
		}
		log.Printf("\t✅ %d pages", count)
	}

	matches, err := scanner.Scan(path, cfg.Phrases)
	if err != nil {
		return false, err
	}

	for _, m := range matches {
		if m.Found() {
			fmt.Fprintf(out, "The word \"%s\" was found in \"%s\" on the following pages: %s\n", m.Phrase, name, common.BracketList(m.Pages))
		} else {
			fmt.Fprintf(out, "The word \"%s\" was not found in \"%s\".\n", m.Phrase, name)
		}
	}

	found := scanner.UnionPages(matches)
	if len(found) == 0 {
		return false, nil
	}

	spec := tables.Pages(found...)
	if override != nil {
		spec = *override
	}

	stem := strings.TrimSuffix(name, filepath.Ext(name))

	if cfg.Output == OutputPerPage {
		return extractPerPage(path, folder, stem, name, spec, cfg, out)
	}

	extracted, err := tables.Extract(path, spec, cfg.Tables)
	if err != nil {
		return false, err
	}
	if len(extracted) == 0 {
		fmt.Fprintf(out, "No tables found in the specified pages of \"%s\".\n", name)
		return false, nil
	}

	excelPath := filepath.Join(folder, stem+"_tables.xlsx")
	if err := workbook.Write(extracted, excelPath); err != nil {
		return false, err
	}
	fmt.Fprintf(out, "Tables extracted from \"%s\" and saved to \"%s\" successfully.\n", name, excelPath)
	return true, nil
}

// extractPerPage writes one workbook per selected page that holds tables.
func extractPerPage(path, folder, stem, name string, spec tables.PageSpec, cfg Config, out io.Writer) (bool, error) {
	extracted, err := tables.Extract(path, spec, cfg.Tables)
	if err != nil {
		return false, err
	}
	if len(extracted) == 0 {
		fmt.Fprintf(out, "No tables found in the specified pages of \"%s\".\n", name)
		return false, nil
	}

	var pages []int
	byPage := map[int][]common.Table{}
	for _, t := range extracted {
		if _, ok := byPage[t.Page]; !ok {
			pages = append(pages, t.Page)
		}
		byPage[t.Page] = append(byPage[t.Page], t)
	}

	for _, page := range pages {
		excelPath := filepath.Join(folder, fmt.Sprintf("%s_Page_%d_tables.xlsx", stem, page))
		if err := workbook.Write(byPage[page], excelPath); err != nil {
			return false, err
		}
		fmt.Fprintf(out, "Tables extracted from page %d of \"%s\" and saved to \"%s\" successfully.\n", page, name, excelPath)
	}
	return true, nil
}

func ScrapeAgainstDirectory(folder string) (map[string]common.Fields, error) {
	return ScrapeDirectory(folder, loadConfig().Scrape, os.Stdout)
}

// ScrapeDirectory scrapes every workbook in folder and prints the fields of
// each. The result holds an entry for every workbook that could be read.
func ScrapeDirectory(folder string, opts fields.Options, out io.Writer) (map[string]common.Fields, error) {
	books, err := listFiles(folder, ".xlsx", ".xls")
	if err != nil {
		return nil, err
	}

	result := map[string]common.Fields{}
	if len(books) == 0 {
		fmt.Fprintln(out, "No Excel files found in the folder.")
		return result, nil
	}

	for _, name := range books {
		log.Println("\t📄 Scraping", name)
		wb, err := workbook.Read(filepath.Join(folder, name))
		if err != nil {
			fmt.Fprintf(out, "Failed to read \"%s\": %v\n", name, err)
			continue
		}

		found := fields.ScrapeWorkbook(wb, opts)
		result[name] = found

		fmt.Fprintf(out, "%s:\n", name)
		fields.Print(out, found)
	}
	return result, nil
}

// listFiles returns the names of regular files in folder whose extension
// matches one of exts, case-insensitively, in name order.
func listFiles(folder string, exts ...string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("reading folder: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		for _, want := range exts {
			if ext == want {
				names = append(names, e.Name())
				break
			}
		}
	}
	return names, nil
}
