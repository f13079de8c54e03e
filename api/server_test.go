package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aqlanhadi/dsx/extractor/common"
	"github.com/aqlanhadi/dsx/extractor/workbook"
	"github.com/aqlanhadi/dsx/internal/pdftest"
)

func datasheetPDF() []byte {
	rects, texts := pdftest.Grid(50, 700, []float64{120, 80, 80}, 16, [][]string{
		{"Service of Unit", "", "Condenser"},
		{"Effective Area", "125.3", "m2"},
	})
	return pdftest.Build(
		pdftest.Page{Texts: []pdftest.Text{{X: 72, Y: 700, S: "Cover"}}},
		pdftest.Page{Rects: rects, Texts: texts},
	)
}

// upload builds a POST request carrying data in the "file" field plus any
// extra form fields.
func upload(t *testing.T, path, filename string, data []byte, fields map[string][]string) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	part.Write(data)
	for key, values := range fields {
		for _, v := range values {
			writer.WriteField(key, v)
		}
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	New(DefaultConfig()).Handler().ServeHTTP(w, req)
	return w
}

func TestNew(t *testing.T) {
	server := New(DefaultConfig())

	if server == nil {
		t.Fatal("Expected server to be created")
	}
	if server.mux == nil {
		t.Fatal("Expected mux to be initialized")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Port != ":8080" {
		t.Errorf("Expected port ':8080', got '%s'", cfg.Port)
	}
	if cfg.DefaultPages != "all" {
		t.Errorf("Expected default pages 'all', got '%s'", cfg.DefaultPages)
	}
}

func TestHealthEndpoint(t *testing.T) {
	w := serve(httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response map[string]string
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response["status"] != "ok" {
		t.Errorf("Expected status 'ok', got '%s'", response["status"])
	}
}

func TestEndpoints_MethodNotAllowed(t *testing.T) {
	for _, path := range []string{"/scan", "/extract", "/scrape"} {
		w := serve(httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s: expected status 405, got %d", path, w.Code)
		}
	}
}

func TestEndpoints_NoFile(t *testing.T) {
	for _, path := range []string{"/scan", "/extract", "/scrape"} {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.Header.Set("Content-Type", "multipart/form-data")

		w := serve(req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected status 400, got %d", path, w.Code)
		}
	}
}

func TestScanEndpoint(t *testing.T) {
	req := upload(t, "/scan", "E-101.pdf", datasheetPDF(), map[string][]string{
		"phrase": {"effective area", "Heat Duty"},
	})

	w := serve(req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var response ScanResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.Filename != "E-101.pdf" {
		t.Errorf("Expected filename 'E-101.pdf', got '%s'", response.Filename)
	}
	if len(response.Matches) != 2 {
		t.Fatalf("Expected 2 matches, got %d", len(response.Matches))
	}
	if len(response.Matches[0].Pages) != 1 || response.Matches[0].Pages[0] != 2 {
		t.Errorf("Expected 'effective area' on page [2], got %v", response.Matches[0].Pages)
	}
	if len(response.Matches[1].Pages) != 0 {
		t.Errorf("Expected no pages for 'Heat Duty', got %v", response.Matches[1].Pages)
	}
}

func TestScanEndpoint_PhraseRequired(t *testing.T) {
	w := serve(upload(t, "/scan", "E-101.pdf", datasheetPDF(), nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestScanEndpoint_InvalidFile(t *testing.T) {
	req := upload(t, "/scan", "test.pdf", []byte("not a valid pdf"), map[string][]string{"phrase": {"Service"}})

	w := serve(req)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422, got %d", w.Code)
	}
}

func TestExtractEndpoint(t *testing.T) {
	req := upload(t, "/extract", "E-101.pdf", datasheetPDF(), map[string][]string{"pages": {"2"}})

	w := serve(req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("Expected xlsx content type, got '%s'", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); cd != `attachment; filename="E-101_tables.xlsx"` {
		t.Errorf("Unexpected Content-Disposition '%s'", cd)
	}

	wb, err := workbook.ReadFrom(w.Body, "E-101_tables.xlsx")
	if err != nil {
		t.Fatalf("Failed to read workbook: %v", err)
	}
	if len(wb.Sheets) != 1 || wb.Sheets[0].Name != "Table_0" {
		t.Fatalf("Expected a single Table_0 sheet, got %+v", wb.Sheets)
	}
	if cell, _ := wb.Sheets[0].At(0, 2); cell.Value != "Condenser" {
		t.Errorf("Expected 'Condenser' at (0,2), got '%s'", cell.Value)
	}
}

func TestExtractEndpoint_NoTables(t *testing.T) {
	req := upload(t, "/extract", "E-101.pdf", datasheetPDF(), map[string][]string{"pages": {"1"}})

	w := serve(req)
	if w.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", w.Code)
	}
}

func TestExtractEndpoint_BadPages(t *testing.T) {
	for _, pages := range []string{"x", "9"} {
		req := upload(t, "/extract", "E-101.pdf", datasheetPDF(), map[string][]string{"pages": {pages}})

		w := serve(req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("pages=%s: expected status 400, got %d", pages, w.Code)
		}
	}
}

func TestExtractEndpoint_InvalidFile(t *testing.T) {
	w := serve(upload(t, "/extract", "test.pdf", []byte("not a valid pdf"), nil))

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422, got %d", w.Code)
	}
}

func TestScrapeEndpoint(t *testing.T) {
	var buf bytes.Buffer
	err := workbook.WriteTo([]common.Table{{Rows: [][]string{
		{"Service", "", "Condenser"},
		{"Heat Duty", "1.2", "MW"},
	}}}, &buf)
	if err != nil {
		t.Fatalf("Failed to build workbook: %v", err)
	}

	w := serve(upload(t, "/scrape", "E-101_tables.xlsx", buf.Bytes(), nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var response common.Fields
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.Source != "E-101_tables.xlsx" {
		t.Errorf("Expected source 'E-101_tables.xlsx', got '%s'", response.Source)
	}
	if response.Service.Value == nil || *response.Service.Value != "Condenser" {
		t.Errorf("Expected service 'Condenser', got %v", response.Service.Value)
	}
	if response.EffectiveArea.Value != nil {
		t.Errorf("Expected no effective area, got '%s'", *response.EffectiveArea.Value)
	}
	if response.HeatDuty == nil {
		t.Error("Expected a heat duty window")
	}
}

func TestScrapeEndpoint_LegacyWorkbook(t *testing.T) {
	w := serve(upload(t, "/scrape", "old.xls", []byte("legacy"), nil))

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422, got %d", w.Code)
	}
}

func TestCoalesce(t *testing.T) {
	if got := coalesce("", "", "all"); got != "all" {
		t.Errorf("Expected 'all', got '%s'", got)
	}
	if got := coalesce(""); got != "" {
		t.Errorf("Expected empty string, got '%s'", got)
	}
}
