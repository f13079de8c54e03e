package tables

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/aqlanhadi/dsx/extractor/common"
)

// ruling is a horizontal (pos = y, span in x) or vertical (pos = x, span in y) line.
type ruling struct {
	pos, from, to float64
}

func (r ruling) length() float64 {
	return r.to - r.from
}

// grid is one table region: vertical ruling positions ascending, horizontal
// positions descending (top of the page first).
type grid struct {
	xs, ys []float64
}

func (g grid) rows() int { return len(g.ys) - 1 }
func (g grid) cols() int { return len(g.xs) - 1 }

// cellAt locates the cell containing the point, tolerating points that sit
// right on the outer border.
func (g grid) cellAt(x, y, tol float64) (row, col int, ok bool) {
	col = -1
	for i := 0; i < g.cols(); i++ {
		if x >= g.xs[i]-tol && x < g.xs[i+1] {
			col = i
			break
		}
	}
	row = -1
	for j := 0; j < g.rows(); j++ {
		if y <= g.ys[j]+tol && y > g.ys[j+1] {
			row = j
			break
		}
	}
	return row, col, row >= 0 && col >= 0
}

func extractLattice(rs io.ReadSeeker, spec PageSpec, opts Options) (tables []common.Table, err error) {
	defer common.RecoverPDF(&err)

	rAt, size, err := common.ReaderAtFrom(rs)
	if err != nil {
		return nil, err
	}

	r, err := common.OpenPDF(rAt, size)
	if err != nil {
		return nil, err
	}

	pages, err := spec.Resolve(r.NumPage())
	if err != nil {
		return nil, err
	}

	tables = []common.Table{}
	for _, no := range pages {
		layout, err := common.ReadPageLayout(r.Page(no))
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", no, err)
		}
		for _, rows := range DetectLattice(layout, opts) {
			tables = append(tables, common.Table{Page: no, Flavor: FlavorLattice, Rows: rows})
		}
	}

	return tables, nil
}

// DetectLattice finds every ruled grid on the page and fills its cells with
// the glyphs drawn inside them. Grids are returned top to bottom.
func DetectLattice(layout common.PageLayout, opts Options) [][][]string {
	horizontal, vertical := collectRulings(layout, opts)
	grids := findGrids(horizontal, vertical, opts.Tolerance)

	result := make([][][]string, 0, len(grids))
	for _, g := range grids {
		result = append(result, fillGrid(g, layout.Glyphs, opts))
	}
	return result
}

// collectRulings turns rectangles into rulings: thin rectangles are lines,
// others contribute their four edges. Collinear pieces are joined before the
// line-scale length filter runs.
func collectRulings(layout common.PageLayout, opts Options) (horizontal, vertical []ruling) {
	tol := opts.Tolerance

	for _, rect := range layout.Rects {
		w, h := rect.Width(), rect.Height()
		switch {
		case h <= tol && w > tol:
			horizontal = append(horizontal, ruling{pos: (rect.Y0 + rect.Y1) / 2, from: rect.X0, to: rect.X1})
		case w <= tol && h > tol:
			vertical = append(vertical, ruling{pos: (rect.X0 + rect.X1) / 2, from: rect.Y0, to: rect.Y1})
		case w > tol && h > tol:
			horizontal = append(horizontal,
				ruling{pos: rect.Y0, from: rect.X0, to: rect.X1},
				ruling{pos: rect.Y1, from: rect.X0, to: rect.X1})
			vertical = append(vertical,
				ruling{pos: rect.X0, from: rect.Y0, to: rect.Y1},
				ruling{pos: rect.X1, from: rect.Y0, to: rect.Y1})
		}
	}

	horizontal = filterShort(mergeRulings(horizontal, tol), layout.Width/opts.LineScale)
	vertical = filterShort(mergeRulings(vertical, tol), layout.Height/opts.LineScale)
	return horizontal, vertical
}

// mergeRulings joins rulings lying on the same line whose spans touch or overlap.
func mergeRulings(rulings []ruling, tol float64) []ruling {
	if len(rulings) == 0 {
		return nil
	}

	sorted := make([]ruling, len(rulings))
	copy(sorted, rulings)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].pos < sorted[j].pos
	})

	var merged []ruling
	for start := 0; start < len(sorted); {
		end := start + 1
		for end < len(sorted) && sorted[end].pos-sorted[end-1].pos <= tol {
			end++
		}

		line := sorted[start:end]
		sort.Slice(line, func(i, j int) bool {
			return line[i].from < line[j].from
		})
		current := line[0]
		for _, r := range line[1:] {
			if r.from <= current.to+tol {
				current.to = math.Max(current.to, r.to)
				continue
			}
			merged = append(merged, current)
			current = r
		}
		merged = append(merged, current)

		start = end
	}
	return merged
}

func filterShort(rulings []ruling, minLength float64) []ruling {
	kept := rulings[:0]
	for _, r := range rulings {
		if r.length() >= minLength {
			kept = append(kept, r)
		}
	}
	return kept
}

func intersects(h, v ruling, tol float64) bool {
	return v.pos >= h.from-tol && v.pos <= h.to+tol &&
		h.pos >= v.from-tol && h.pos <= v.to+tol
}

// findGrids groups intersecting rulings into connected regions and keeps the
// regions with at least two rulings in each direction.
func findGrids(horizontal, vertical []ruling, tol float64) []grid {
	n := len(horizontal) + len(vertical)
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	find := func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}

	for i, h := range horizontal {
		for j, v := range vertical {
			if intersects(h, v, tol) {
				parent[find(i)] = find(len(horizontal) + j)
			}
		}
	}

	type region struct {
		hs, vs []float64
	}
	regions := map[int]*region{}
	var order []int
	for i := 0; i < n; i++ {
		root := find(i)
		reg, ok := regions[root]
		if !ok {
			reg = &region{}
			regions[root] = reg
			order = append(order, root)
		}
		if i < len(horizontal) {
			reg.hs = append(reg.hs, horizontal[i].pos)
		} else {
			reg.vs = append(reg.vs, vertical[i-len(horizontal)].pos)
		}
	}

	var grids []grid
	for _, root := range order {
		reg := regions[root]
		xs := clusterPositions(reg.vs, tol)
		ys := clusterPositions(reg.hs, tol)
		if len(xs) < 2 || len(ys) < 2 {
			continue
		}
		sort.Sort(sort.Reverse(sort.Float64Slice(ys)))
		grids = append(grids, grid{xs: xs, ys: ys})
	}

	sort.SliceStable(grids, func(i, j int) bool {
		if math.Abs(grids[i].ys[0]-grids[j].ys[0]) > tol {
			return grids[i].ys[0] > grids[j].ys[0]
		}
		return grids[i].xs[0] < grids[j].xs[0]
	})
	return grids
}

// clusterPositions sorts positions ascending and collapses runs closer than tol
// into their mean.
func clusterPositions(values []float64, tol float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var out []float64
	sum, count := sorted[0], 1
	for _, v := range sorted[1:] {
		if v-sum/float64(count) <= tol {
			sum += v
			count++
			continue
		}
		out = append(out, sum/float64(count))
		sum, count = v, 1
	}
	return append(out, sum/float64(count))
}

// fillGrid assigns glyphs to cells. With SplitText each glyph lands in the cell
// under it; otherwise a word goes whole into the cell of its first glyph.
func fillGrid(g grid, glyphs []common.Glyph, opts Options) [][]string {
	cells := make([][][]common.Glyph, g.rows())
	for i := range cells {
		cells[i] = make([][]common.Glyph, g.cols())
	}

	place := func(anchor common.Glyph, members []common.Glyph) {
		x := anchor.X + anchor.W/2
		y := anchor.Y + anchor.Size*0.3
		row, col, ok := g.cellAt(x, y, opts.Tolerance)
		if !ok {
			return
		}
		cells[row][col] = append(cells[row][col], members...)
	}

	if opts.SplitText {
		for _, glyph := range glyphs {
			place(glyph, []common.Glyph{glyph})
		}
	} else {
		for _, line := range common.GroupLines(glyphs) {
			for _, word := range common.GroupWords(line) {
				place(word.Glyphs[0], word.Glyphs)
			}
		}
	}

	rows := make([][]string, g.rows())
	for r := range rows {
		rows[r] = make([]string, g.cols())
		for c := range rows[r] {
			text := common.LinesText(common.GroupLines(cells[r][c]))
			rows[r][c] = strings.TrimSpace(common.StripChars(text, opts.StripText))
		}
	}
	return rows
}
