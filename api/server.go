// Package api serves the scanner, table extractor and field scraper over HTTP.
// Every endpoint takes a multipart upload in the "file" field.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/aqlanhadi/dsx/extractor/fields"
	"github.com/aqlanhadi/dsx/extractor/scanner"
	"github.com/aqlanhadi/dsx/extractor/tables"
	"github.com/aqlanhadi/dsx/extractor/workbook"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Config holds the API server configuration
type Config struct {
	Port      string
	LogPrefix string
	// DefaultPages is used by /extract when the request names no pages.
	DefaultPages string
	Tables       tables.Options
	Scrape       fields.Options
}

func DefaultConfig() Config {
	return Config{
		Port:         ":8080",
		LogPrefix:    "API: ",
		DefaultPages: "all",
		Tables:       tables.DefaultOptions(),
		Scrape:       fields.DefaultOptions(),
	}
}

type Server struct {
	config Config
	mux    *http.ServeMux
}

func New(cfg Config) *Server {
	s := &Server{
		config: cfg,
		mux:    http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/scan", s.handleScan)
	s.mux.HandleFunc("/extract", s.handleExtract)
	s.mux.HandleFunc("/scrape", s.handleScrape)
}

// Handler returns the http.Handler for the server
// This allows the server to be used with custom http.Server configurations
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start starts the HTTP server (blocking)
func (s *Server) Start() error {
	log.Printf("%sStarting server on %s", s.config.LogPrefix, s.config.Port)
	return http.ListenAndServe(s.config.Port, s.mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// ScanResponse is the body returned by /scan.
type ScanResponse struct {
	Filename string          `json:"filename"`
	Matches  []scanner.Match `json:"matches"`
	Pages    []int           `json:"pages"`
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	data, filename, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	phrases := formValues(r, "phrase")
	if len(phrases) == 0 {
		http.Error(w, "At least one phrase is required", http.StatusBadRequest)
		return
	}

	matches, err := scanner.ScanReader(bytes.NewReader(data), phrases)
	if err != nil {
		s.documentError(w, err)
		return
	}

	writeJSON(w, ScanResponse{
		Filename: filename,
		Matches:  matches,
		Pages:    scanner.UnionPages(matches),
	})
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	data, filename, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	spec, err := tables.ParsePageSpec(coalesce(formValue(r, "pages"), s.config.DefaultPages, "all"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	opts := s.config.Tables
	if flavor := formValue(r, "flavor"); flavor != "" {
		opts.Flavor = flavor
	}

	extracted, err := tables.ExtractReader(bytes.NewReader(data), spec, opts)
	if err != nil {
		s.documentError(w, err)
		return
	}
	if len(extracted) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var buf bytes.Buffer
	if err := workbook.WriteTo(extracted, &buf); err != nil {
		log.Printf("%sError writing workbook: %v", s.config.LogPrefix, err)
		http.Error(w, "Could not write workbook: "+err.Error(), http.StatusInternalServerError)
		return
	}

	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", stem+"_tables.xlsx"))
	w.Write(buf.Bytes())
}

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	data, filename, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	if strings.EqualFold(filepath.Ext(filename), ".xls") {
		s.documentError(w, workbook.ErrUnsupportedFormat)
		return
	}

	wb, err := workbook.ReadFrom(bytes.NewReader(data), filename)
	if err != nil {
		s.documentError(w, err)
		return
	}

	writeJSON(w, fields.ScrapeWorkbook(wb, s.config.Scrape))
}

// readUpload checks the method and returns the uploaded file's bytes. On
// failure the response has already been written.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	log.Printf("%sReceived %s %s from %s", s.config.LogPrefix, r.Method, r.URL.Path, r.RemoteAddr)

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return nil, "", false
	}

	// Parse multipart form with 32MB max memory
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		log.Printf("%sError parsing multipart form: %v", s.config.LogPrefix, err)
		http.Error(w, "Could not parse multipart form: "+err.Error(), http.StatusBadRequest)
		return nil, "", false
	}

	file, handler, err := r.FormFile("file")
	if err != nil {
		log.Printf("%sError getting file from form: %v", s.config.LogPrefix, err)
		http.Error(w, "Could not get uploaded file: "+err.Error(), http.StatusBadRequest)
		return nil, "", false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		log.Printf("%sError reading file bytes: %v", s.config.LogPrefix, err)
		http.Error(w, "Could not read file: "+err.Error(), http.StatusInternalServerError)
		return nil, "", false
	}
	return data, handler.Filename, true
}

// documentError maps request mistakes to 400 and unreadable documents to 422.
func (s *Server) documentError(w http.ResponseWriter, err error) {
	log.Printf("%sError processing document: %v", s.config.LogPrefix, err)

	switch {
	case errors.Is(err, scanner.ErrEmptyPhrase),
		errors.Is(err, tables.ErrInvalidPageSpec),
		errors.Is(err, tables.ErrUnknownFlavor):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "Could not process document: "+err.Error(), http.StatusUnprocessableEntity)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// formValues collects a repeatable field from the form and the query string.
func formValues(r *http.Request, key string) []string {
	var values []string
	if r.MultipartForm != nil {
		values = append(values, r.MultipartForm.Value[key]...)
	}
	values = append(values, r.URL.Query()[key]...)
	return values
}

func formValue(r *http.Request, key string) string {
	return coalesce(r.FormValue(key), r.URL.Query().Get(key))
}

// coalesce returns the first non-empty string
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
