// Package scanner finds the pages of a PDF whose text contains a phrase.
package scanner

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/aqlanhadi/dsx/extractor/common"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var ErrEmptyPhrase = errors.New("search phrase is empty")

// Match holds the pages on which one phrase was found.
type Match struct {
	Phrase string `json:"phrase"`
	Pages  []int  `json:"pages"`
}

func (m Match) Found() bool {
	return len(m.Pages) > 0
}

// FindPages returns the 1-based pages whose text contains phrase, ignoring
// case, in ascending order. No match is an empty slice, not an error.
func FindPages(path, phrase string) ([]int, error) {
	matches, err := Scan(path, []string{phrase})
	if err != nil {
		return nil, err
	}
	return matches[0].Pages, nil
}

func FindPagesReader(reader io.Reader, phrase string) ([]int, error) {
	matches, err := ScanReader(reader, []string{phrase})
	if err != nil {
		return nil, err
	}
	return matches[0].Pages, nil
}

// Scan reads the document once and searches every phrase in it.
func Scan(path string, phrases []string) ([]Match, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ScanReader(file, phrases)
}

func ScanReader(reader io.Reader, phrases []string) ([]Match, error) {
	for _, phrase := range phrases {
		if phrase == "" {
			return nil, ErrEmptyPhrase
		}
	}

	texts, err := common.ExtractPageTextsFromPDFReader(reader)
	if err != nil {
		return nil, fmt.Errorf("reading page text: %w", err)
	}

	return MatchPages(texts, phrases), nil
}

// MatchPages tests each page text against each phrase. texts[0] is page 1.
func MatchPages(texts []string, phrases []string) []Match {
	lowered := make([]string, len(texts))
	for i, text := range texts {
		lowered[i] = strings.ToLower(text)
	}

	matches := make([]Match, 0, len(phrases))
	for _, phrase := range phrases {
		needle := strings.ToLower(phrase)
		m := Match{Phrase: phrase, Pages: []int{}}
		for i, text := range lowered {
			if strings.Contains(text, needle) {
				m.Pages = append(m.Pages, i+1)
			}
		}
		matches = append(matches, m)
	}
	return matches
}

// UnionPages merges the pages of every match, ascending and without duplicates.
func UnionPages(matches []Match) []int {
	seen := map[int]bool{}
	var pages []int
	for _, m := range matches {
		for _, p := range m.Pages {
			if !seen[p] {
				seen[p] = true
				pages = append(pages, p)
			}
		}
	}
	slices.Sort(pages)
	return pages
}

// PageCount reads the document with pdfcpu in relaxed validation mode and
// returns its page count. A document pdfcpu cannot read is reported as malformed.
func PageCount(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()
	return PageCountReader(file)
}

func PageCountReader(rs io.ReadSeeker) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(rs, conf)
	if err != nil {
		return 0, fmt.Errorf("malformed pdf: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return 0, fmt.Errorf("malformed pdf: %w", err)
	}
	return ctx.PageCount, nil
}
