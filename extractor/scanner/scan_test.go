package scanner

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aqlanhadi/dsx/internal/pdftest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func datasheetPages() []pdftest.Page {
	return []pdftest.Page{
		{Texts: []pdftest.Text{{X: 72, Y: 700, S: "Shell and tube heat exchanger"}}},
		{Texts: []pdftest.Text{
			{X: 72, Y: 700, S: "Performance of one unit"},
			{X: 72, Y: 680, S: "EFFECTIVE AREA 125.3 m2"},
		}},
		{Texts: []pdftest.Text{{X: 72, Y: 700, S: "effective area per shell"}}},
	}
}

func TestFindPages_CaseInsensitive(t *testing.T) {
	path := pdftest.WriteFile(t, t.TempDir(), "E-101.pdf", datasheetPages()...)

	pages, err := FindPages(path, "Effective Area")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, pages)
}

func TestFindPages_AscendingWithinBounds(t *testing.T) {
	path := pdftest.WriteFile(t, t.TempDir(), "E-101.pdf", datasheetPages()...)

	pages, err := FindPages(path, "e")
	require.NoError(t, err)
	require.NotEmpty(t, pages)
	for i, p := range pages {
		assert.GreaterOrEqual(t, p, 1)
		assert.LessOrEqual(t, p, 3)
		if i > 0 {
			assert.Greater(t, p, pages[i-1], "pages must be strictly ascending")
		}
	}
}

func TestFindPages_NotFound(t *testing.T) {
	path := pdftest.WriteFile(t, t.TempDir(), "E-101.pdf", datasheetPages()...)

	pages, err := FindPages(path, "Heat Duty")
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestFindPages_EmptyPhrase(t *testing.T) {
	path := pdftest.WriteFile(t, t.TempDir(), "E-101.pdf", datasheetPages()...)

	_, err := FindPages(path, "")
	assert.True(t, errors.Is(err, ErrEmptyPhrase))
}

func TestFindPages_MalformedPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("this is not a pdf"), 0o644))

	_, err := FindPages(path, "Effective Area")
	assert.Error(t, err)
}

func TestFindPages_MissingFile(t *testing.T) {
	_, err := FindPages(filepath.Join(t.TempDir(), "missing.pdf"), "Effective Area")
	assert.Error(t, err)
}

func TestFindPagesReader(t *testing.T) {
	data := pdftest.Build(datasheetPages()...)

	pages, err := FindPagesReader(bytes.NewReader(data), "shell")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, pages)
}

func TestScan_MultiplePhrases(t *testing.T) {
	path := pdftest.WriteFile(t, t.TempDir(), "E-101.pdf", datasheetPages()...)

	matches, err := Scan(path, []string{"Effective Area", "Heat Duty", "unit"})
	require.NoError(t, err)
	require.Len(t, matches, 3)

	assert.True(t, matches[0].Found())
	assert.False(t, matches[1].Found())
	assert.Equal(t, []int{2}, matches[2].Pages)
	assert.Equal(t, []int{2, 3}, UnionPages(matches))
}

func TestMatchPages(t *testing.T) {
	texts := []string{"Service: Condenser", "", "SERVICE of unit"}

	matches := MatchPages(texts, []string{"service"})
	require.Len(t, matches, 1)
	assert.Equal(t, "service", matches[0].Phrase)
	assert.Equal(t, []int{1, 3}, matches[0].Pages)
}

func TestUnionPages(t *testing.T) {
	matches := []Match{
		{Phrase: "a", Pages: []int{4, 7}},
		{Phrase: "b", Pages: []int{1, 4}},
		{Phrase: "c", Pages: []int{}},
	}
	assert.Equal(t, []int{1, 4, 7}, UnionPages(matches))
	assert.Empty(t, UnionPages(nil))
}

func TestPageCount(t *testing.T) {
	path := pdftest.WriteFile(t, t.TempDir(), "E-101.pdf", datasheetPages()...)

	count, err := PageCount(path)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestPageCount_Malformed(t *testing.T) {
	_, err := PageCountReader(bytes.NewReader([]byte("%PDF-1.4\ngarbage")))
	assert.Error(t, err)
}
