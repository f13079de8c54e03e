package common

import (
	"bytes"
	"testing"

	"github.com/aqlanhadi/dsx/internal/pdftest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readLayout(t *testing.T, page pdftest.Page) PageLayout {
	t.Helper()
	data := pdftest.Build(page)
	r, err := OpenPDF(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	layout, err := ReadPageLayout(r.Page(1))
	require.NoError(t, err)
	return layout
}

func TestReadPageLayout_StrokedLines(t *testing.T) {
	layout := readLayout(t, pdftest.Page{Lines: []pdftest.Line{
		{X0: 50, Y0: 700, X1: 250, Y1: 700},
		{X0: 50, Y0: 700, X1: 50, Y1: 660},
	}})

	assert.Equal(t, []Segment{
		{X0: 50, Y0: 700, X1: 250, Y1: 700},
		{X0: 50, Y0: 660, X1: 50, Y1: 700},
	}, layout.Rects)
}

func TestReadPageLayout_FilledRect(t *testing.T) {
	layout := readLayout(t, pdftest.Page{Rects: []pdftest.Rect{{X: 50, Y: 600, W: 100, H: 20}}})

	assert.Equal(t, []Segment{{X0: 50, Y0: 600, X1: 150, Y1: 620}}, layout.Rects)
}

func TestReadPageLayout_AppliesCTM(t *testing.T) {
	layout := readLayout(t, pdftest.Page{
		Matrix: []float64{2, 0, 0, 2, 10, 20},
		Rects:  []pdftest.Rect{{X: 10, Y: 10, W: 50, H: 5}},
		Lines:  []pdftest.Line{{X0: 0, Y0: 0, X1: 0, Y1: 100}},
	})

	assert.Equal(t, []Segment{
		{X0: 30, Y0: 40, X1: 130, Y1: 50},
		{X0: 10, Y0: 20, X1: 10, Y1: 220},
	}, layout.Rects)
}

func TestReadPageLayout_NestedTransforms(t *testing.T) {
	layout := readLayout(t, pdftest.Page{Ops: "q 1 0 0 1 100 0 cm 2 0 0 2 0 0 cm 0 0 m 10 0 l S Q\n" +
		"0 0 m 0 10 l S\n"})

	assert.Equal(t, []Segment{
		{X0: 100, Y0: 0, X1: 120, Y1: 0},
		{X0: 0, Y0: 0, X1: 0, Y1: 10},
	}, layout.Rects)
}

func TestReadPageLayout_IgnoresUnpaintedAndSlantedPaths(t *testing.T) {
	layout := readLayout(t, pdftest.Page{Ops: "" +
		"0 0 612 792 re W n\n" + // clip only
		"10 10 m 200 300 l S\n" + // diagonal
		"10 50 m 20 60 30 60 40 50 c S\n" + // curve
		"100 100 m 300 100 l 300 200 l h S\n"}) // closed triangle, two straight edges

	assert.Equal(t, []Segment{
		{X0: 100, Y0: 100, X1: 300, Y1: 100},
		{X0: 300, Y0: 100, X1: 300, Y1: 200},
	}, layout.Rects)
}

func TestMatrix_Multiply(t *testing.T) {
	scale := Matrix{2, 0, 0, 2, 0, 0}
	shift := Matrix{1, 0, 0, 1, 100, 50}

	x, y := scale.Multiply(shift).Apply(10, 10)
	assert.Equal(t, 120.0, x)
	assert.Equal(t, 70.0, y)

	x, y = shift.Multiply(scale).Apply(10, 10)
	assert.Equal(t, 220.0, x)
	assert.Equal(t, 120.0, y)
}
