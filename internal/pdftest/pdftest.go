// Package pdftest builds small, valid PDF documents in memory for tests:
// Helvetica text runs, filled re rectangles and stroked lines, nothing else.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// GlyphWidth is the advance of every character, in 1/1000 text space units.
const GlyphWidth = 500

type Text struct {
	X, Y, Size float64
	S          string
}

type Rect struct {
	X, Y, W, H float64
}

// Line is stroked as a single m/l path.
type Line struct {
	X0, Y0, X1, Y1 float64
}

type Page struct {
	Width, Height float64
	Texts         []Text
	Rects         []Rect
	Lines         []Line
	// Matrix, when set, is concatenated with cm before the rectangles and
	// lines are drawn. Text is always drawn in default user space.
	Matrix []float64
	// Ops is appended to the content stream verbatim.
	Ops string
}

// Grid draws a ruled table whose top-left corner is (x, top). Cell text is
// placed 3pt right of the cell's left border and 4pt above its bottom border.
func Grid(x, top float64, colWidths []float64, rowHeight float64, cells [][]string) ([]Rect, []Text) {
	width := 0.0
	for _, w := range colWidths {
		width += w
	}
	height := rowHeight * float64(len(cells))

	var rects []Rect
	for i := 0; i <= len(cells); i++ {
		rects = append(rects, Rect{X: x, Y: top - float64(i)*rowHeight, W: width, H: 0.5})
	}
	cx := x
	for i := 0; i <= len(colWidths); i++ {
		rects = append(rects, Rect{X: cx, Y: top - height, W: 0.5, H: height})
		if i < len(colWidths) {
			cx += colWidths[i]
		}
	}

	var texts []Text
	for r, row := range cells {
		cx = x
		for c, s := range row {
			if s != "" {
				texts = append(texts, Text{X: cx + 3, Y: top - float64(r+1)*rowHeight + 4, Size: 8, S: s})
			}
			cx += colWidths[c]
		}
	}
	return rects, texts
}

// GridLines draws the same table as Grid with stroked lines instead of thin
// filled rectangles.
func GridLines(x, top float64, colWidths []float64, rowHeight float64, cells [][]string) ([]Line, []Text) {
	rects, texts := Grid(x, top, colWidths, rowHeight, cells)
	lines := make([]Line, 0, len(rects))
	for _, r := range rects {
		if r.H < r.W {
			lines = append(lines, Line{X0: r.X, Y0: r.Y, X1: r.X + r.W, Y1: r.Y})
		} else {
			lines = append(lines, Line{X0: r.X, Y0: r.Y, X1: r.X, Y1: r.Y + r.H})
		}
	}
	return lines, texts
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}

func (p Page) content() string {
	var b strings.Builder
	b.WriteString("q\n")
	if len(p.Matrix) == 6 {
		m := p.Matrix
		fmt.Fprintf(&b, "%.4f %.4f %.4f %.4f %.4f %.4f cm\n", m[0], m[1], m[2], m[3], m[4], m[5])
	}
	for _, r := range p.Rects {
		fmt.Fprintf(&b, "%.2f %.2f %.2f %.2f re f\n", r.X, r.Y, r.W, r.H)
	}
	if len(p.Lines) > 0 {
		b.WriteString("0.5 w\n")
	}
	for _, l := range p.Lines {
		fmt.Fprintf(&b, "%.2f %.2f m %.2f %.2f l S\n", l.X0, l.Y0, l.X1, l.Y1)
	}
	b.WriteString("Q\n")
	for _, t := range p.Texts {
		size := t.Size
		if size == 0 {
			size = 12
		}
		fmt.Fprintf(&b, "BT /F1 %.2f Tf %.2f %.2f Td (%s) Tj ET\n", size, t.X, t.Y, escape(t.S))
	}
	b.WriteString(p.Ops)
	return b.String()
}

// Build renders pages into a complete PDF file.
func Build(pages ...Page) []byte {
	var objects []string

	widths := make([]string, 0, 95)
	for i := 32; i <= 126; i++ {
		widths = append(widths, fmt.Sprint(GlyphWidth))
	}

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}

	objects = append(objects,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)),
		fmt.Sprintf("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding /FirstChar 32 /LastChar 126 /Widths [%s] >>", strings.Join(widths, " ")),
	)

	for i, p := range pages {
		w, h := p.Width, p.Height
		if w == 0 || h == 0 {
			w, h = 612, 792
		}
		stream := p.content()
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %.0f %.0f] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", w, h, 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream)+1, stream),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return buf.Bytes()
}

// WriteFile builds the pages and writes them to dir/name.
func WriteFile(t testing.TB, dir, name string, pages ...Page) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, Build(pages...), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}
