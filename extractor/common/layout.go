package common

import (
	"math"
	"sort"
	"strings"

	"github.com/dslipak/pdf"
)

const (
	defaultPageWidth  = 612.0
	defaultPageHeight = 792.0
)

// Glyph is one shown character with its baseline origin and advance width.
type Glyph struct {
	X, Y, W, Size float64
	S             string
}

func (g Glyph) blank() bool {
	return strings.TrimSpace(g.S) == ""
}

// Word is a run of glyphs on one baseline without a visible gap.
type Word struct {
	X0, X1, Y, Size float64
	Glyphs          []Glyph
	Text            string
}

// Segment is an axis-aligned box or line painted on the page, in page space.
type Segment struct {
	X0, Y0, X1, Y1 float64
}

func (s Segment) Width() float64  { return s.X1 - s.X0 }
func (s Segment) Height() float64 { return s.Y1 - s.Y0 }

// PageLayout is what the text search and the lattice detector need from a page.
type PageLayout struct {
	Width, Height float64
	Glyphs        []Glyph
	Rects         []Segment
}

// ReadPageLayout collects the glyphs, painted edges and media box size of a page.
func ReadPageLayout(page pdf.Page) (layout PageLayout, err error) {
	defer RecoverPDF(&err)

	layout.Width, layout.Height = mediaBox(page)

	content := page.Content()
	layout.Glyphs = make([]Glyph, 0, len(content.Text))
	for _, t := range content.Text {
		layout.Glyphs = append(layout.Glyphs, Glyph{X: t.X, Y: t.Y, W: t.W, Size: t.FontSize, S: t.S})
	}

	layout.Rects = pageSegments(page)

	return layout, nil
}

// mediaBox walks up the page tree since MediaBox is inheritable.
func mediaBox(page pdf.Page) (float64, float64) {
	for v := page.V; !v.IsNull(); v = v.Key("Parent") {
		box := v.Key("MediaBox")
		if box.Kind() == pdf.Array && box.Len() == 4 {
			w := box.Index(2).Float64() - box.Index(0).Float64()
			h := box.Index(3).Float64() - box.Index(1).Float64()
			if w > 0 && h > 0 {
				return w, h
			}
		}
	}
	return defaultPageWidth, defaultPageHeight
}

func lineTolerance(size float64) float64 {
	return math.Max(1, size*0.3)
}

// GroupLines clusters glyphs sharing a baseline, top line first, each line
// ordered left to right.
func GroupLines(glyphs []Glyph) [][]Glyph {
	sorted := make([]Glyph, len(glyphs))
	copy(sorted, glyphs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Y > sorted[j].Y
	})

	var lines [][]Glyph
	lineY := math.Inf(1)
	for _, g := range sorted {
		if len(lines) == 0 || math.Abs(lineY-g.Y) > lineTolerance(g.Size) {
			lines = append(lines, []Glyph{g})
			lineY = g.Y
			continue
		}
		lines[len(lines)-1] = append(lines[len(lines)-1], g)
	}

	for _, line := range lines {
		sort.SliceStable(line, func(i, j int) bool {
			return line[i].X < line[j].X
		})
	}
	return lines
}

// GroupWords splits one line of glyphs at whitespace glyphs and at gaps wider
// than a quarter of the font size.
func GroupWords(line []Glyph) []Word {
	var words []Word
	var current []Glyph
	end := 0.0

	flush := func() {
		if len(current) == 0 {
			return
		}
		var b strings.Builder
		for _, g := range current {
			b.WriteString(g.S)
		}
		last := current[len(current)-1]
		words = append(words, Word{
			X0:     current[0].X,
			X1:     last.X + last.W,
			Y:      current[0].Y,
			Size:   current[0].Size,
			Glyphs: current,
			Text:   b.String(),
		})
		current = nil
	}

	for _, g := range line {
		if g.blank() {
			flush()
			continue
		}
		if len(current) > 0 && g.X-end > g.Size*0.25 {
			flush()
		}
		current = append(current, g)
		end = g.X + g.W
	}
	flush()

	return words
}

// LinesText renders glyph lines as text: words joined by a space, lines by a newline.
func LinesText(lines [][]Glyph) string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		words := GroupWords(line)
		if len(words) == 0 {
			continue
		}
		parts := make([]string, len(words))
		for i, w := range words {
			parts[i] = w.Text
		}
		out = append(out, strings.Join(parts, " "))
	}
	return strings.Join(out, "\n")
}
