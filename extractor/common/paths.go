package common

import (
	"math"

	"github.com/dslipak/pdf"
)

// axisEpsilon is how far a path edge may lean and still count as horizontal
// or vertical, in points.
const axisEpsilon = 0.5

// Matrix is a PDF transformation [a b c d e f]: x' = a*x + c*y + e,
// y' = b*x + d*y + f.
type Matrix [6]float64

var identity = Matrix{1, 0, 0, 1, 0, 0}

// Multiply returns m applied first, then n.
func (m Matrix) Multiply(n Matrix) Matrix {
	return Matrix{
		m[0]*n[0] + m[1]*n[2],
		m[0]*n[1] + m[1]*n[3],
		m[2]*n[0] + m[3]*n[2],
		m[2]*n[1] + m[3]*n[3],
		m[4]*n[0] + m[5]*n[2] + n[4],
		m[4]*n[1] + m[5]*n[3] + n[5],
	}
}

func (m Matrix) Apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

type point struct{ x, y float64 }

type subpath struct {
	points []point
	closed bool
}

// pathBuilder follows the path construction and painting operators of a
// content stream and records every painted axis-aligned edge in page space.
type pathBuilder struct {
	ctm      Matrix
	stack    []Matrix
	subpaths []subpath
	segments []Segment
}

func (b *pathBuilder) current() *subpath {
	if len(b.subpaths) == 0 {
		return nil
	}
	return &b.subpaths[len(b.subpaths)-1]
}

func (b *pathBuilder) moveTo(x, y float64) {
	px, py := b.ctm.Apply(x, y)
	b.subpaths = append(b.subpaths, subpath{points: []point{{px, py}}})
}

func (b *pathBuilder) lineTo(x, y float64) {
	sp := b.current()
	if sp == nil {
		b.moveTo(x, y)
		return
	}
	px, py := b.ctm.Apply(x, y)
	sp.points = append(sp.points, point{px, py})
}

// curveTo only moves the current point; curves never form rulings.
func (b *pathBuilder) curveTo(x, y float64) {
	sp := b.current()
	if sp == nil {
		b.moveTo(x, y)
		return
	}
	px, py := b.ctm.Apply(x, y)
	sp.points = append(sp.points, point{math.NaN(), math.NaN()}, point{px, py})
}

func (b *pathBuilder) closePath() {
	if sp := b.current(); sp != nil {
		sp.closed = true
	}
}

func (b *pathBuilder) rectangle(x, y, w, h float64) {
	b.moveTo(x, y)
	b.lineTo(x+w, y)
	b.lineTo(x+w, y+h)
	b.lineTo(x, y+h)
	b.closePath()
}

// paint keeps the edges of the current path. A closed four-corner path whose
// edges are all axis-aligned is kept whole so filled bars stay one segment.
func (b *pathBuilder) paint(closeAll bool) {
	for _, sp := range b.subpaths {
		if closeAll {
			sp.closed = true
		}
		if box, ok := boxOf(sp); ok {
			b.segments = append(b.segments, box)
			continue
		}
		b.segments = append(b.segments, edgesOf(sp)...)
	}
	b.subpaths = nil
}

func (b *pathBuilder) discard() {
	b.subpaths = nil
}

func edgesOf(sp subpath) []Segment {
	pts := sp.points
	if sp.closed && len(pts) > 2 {
		pts = append(pts[:len(pts):len(pts)], pts[0])
	}

	var edges []Segment
	for i := 1; i < len(pts); i++ {
		a, c := pts[i-1], pts[i]
		if math.IsNaN(a.x) || math.IsNaN(c.x) {
			continue
		}
		if math.Abs(a.y-c.y) > axisEpsilon && math.Abs(a.x-c.x) > axisEpsilon {
			continue
		}
		edges = append(edges, Segment{
			X0: math.Min(a.x, c.x),
			Y0: math.Min(a.y, c.y),
			X1: math.Max(a.x, c.x),
			Y1: math.Max(a.y, c.y),
		})
	}
	return edges
}

func boxOf(sp subpath) (Segment, bool) {
	pts := sp.points
	if len(pts) == 5 && pts[4] == pts[0] {
		pts = pts[:4]
	}
	if !sp.closed || len(pts) != 4 {
		return Segment{}, false
	}
	for i := range pts {
		a, c := pts[i], pts[(i+1)%4]
		if math.IsNaN(a.x) || math.IsNaN(c.x) {
			return Segment{}, false
		}
		if math.Abs(a.y-c.y) > axisEpsilon && math.Abs(a.x-c.x) > axisEpsilon {
			return Segment{}, false
		}
	}
	box := Segment{X0: math.Inf(1), Y0: math.Inf(1), X1: math.Inf(-1), Y1: math.Inf(-1)}
	for _, p := range pts {
		box.X0, box.X1 = math.Min(box.X0, p.x), math.Max(box.X1, p.x)
		box.Y0, box.Y1 = math.Min(box.Y0, p.y), math.Max(box.Y1, p.y)
	}
	return box, true
}

func (b *pathBuilder) operator(args []pdf.Value, op string) {
	num := func(i int) float64 { return args[i].Float64() }

	switch op {
	case "q":
		b.stack = append(b.stack, b.ctm)
	case "Q":
		if n := len(b.stack) - 1; n >= 0 {
			b.ctm = b.stack[n]
			b.stack = b.stack[:n]
		}
	case "cm":
		if len(args) == 6 {
			m := Matrix{num(0), num(1), num(2), num(3), num(4), num(5)}
			b.ctm = m.Multiply(b.ctm)
		}
	case "m":
		if len(args) == 2 {
			b.moveTo(num(0), num(1))
		}
	case "l":
		if len(args) == 2 {
			b.lineTo(num(0), num(1))
		}
	case "c":
		if len(args) == 6 {
			b.curveTo(num(4), num(5))
		}
	case "v", "y":
		if len(args) == 4 {
			b.curveTo(num(2), num(3))
		}
	case "h":
		b.closePath()
	case "re":
		if len(args) == 4 {
			b.rectangle(num(0), num(1), num(2), num(3))
		}
	case "S", "B", "B*":
		b.paint(false)
	case "s", "f", "F", "f*", "b", "b*":
		b.paint(true)
	case "n":
		b.discard()
	}
}

// pageSegments interprets every content stream of the page in order and
// returns the painted axis-aligned edges with the CTM applied.
func pageSegments(page pdf.Page) []Segment {
	b := &pathBuilder{ctm: identity}
	walk := func(strm pdf.Value) {
		pdf.Interpret(strm, func(stk *pdf.Stack, op string) {
			n := stk.Len()
			args := make([]pdf.Value, n)
			for i := n - 1; i >= 0; i-- {
				args[i] = stk.Pop()
			}
			b.operator(args, op)
		})
	}

	contents := page.V.Key("Contents")
	if contents.Kind() == pdf.Array {
		for i := 0; i < contents.Len(); i++ {
			walk(contents.Index(i))
		}
	} else if !contents.IsNull() {
		walk(contents)
	}
	return b.segments
}
