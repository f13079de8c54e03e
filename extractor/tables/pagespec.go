package tables

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

var ErrInvalidPageSpec = errors.New("invalid page specifier")

type pageRange struct {
	from, to int
	toEnd    bool
}

// PageSpec selects pages: every page, single pages, and ranges, written as
// "all", "1-end", "3", "1,3,5" or "2-4,7-end".
type PageSpec struct {
	all    bool
	ranges []pageRange
}

func AllPages() PageSpec {
	return PageSpec{all: true}
}

// Pages selects exactly the given 1-based pages.
func Pages(pages ...int) PageSpec {
	spec := PageSpec{}
	for _, p := range pages {
		spec.ranges = append(spec.ranges, pageRange{from: p, to: p})
	}
	return spec
}

func ParsePageSpec(s string) (PageSpec, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return PageSpec{}, fmt.Errorf("%w: empty", ErrInvalidPageSpec)
	}
	if s == "all" || s == "1-end" {
		return AllPages(), nil
	}

	spec := PageSpec{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		r, err := parseRange(part)
		if err != nil {
			return PageSpec{}, err
		}
		spec.ranges = append(spec.ranges, r)
	}
	return spec, nil
}

func parseRange(part string) (pageRange, error) {
	from, to, isRange := strings.Cut(part, "-")
	start, err := parsePage(from)
	if err != nil {
		return pageRange{}, fmt.Errorf("%w: %q", ErrInvalidPageSpec, part)
	}
	if !isRange {
		return pageRange{from: start, to: start}, nil
	}
	if strings.TrimSpace(to) == "end" {
		return pageRange{from: start, toEnd: true}, nil
	}
	end, err := parsePage(to)
	if err != nil || end < start {
		return pageRange{}, fmt.Errorf("%w: %q", ErrInvalidPageSpec, part)
	}
	return pageRange{from: start, to: end}, nil
}

func parsePage(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("page %d out of range", n)
	}
	return n, nil
}

// Resolve expands the spec against a document of count pages. Pages come back
// ascending and deduplicated; a page past the end is an error.
func (p PageSpec) Resolve(count int) ([]int, error) {
	if p.all {
		pages := make([]int, count)
		for i := range pages {
			pages[i] = i + 1
		}
		return pages, nil
	}

	var pages []int
	for _, r := range p.ranges {
		to := r.to
		if r.toEnd {
			to = count
		}
		if r.from > count || to > count {
			return nil, fmt.Errorf("%w: page %d beyond last page %d", ErrInvalidPageSpec, max(r.from, to), count)
		}
		for n := r.from; n <= to; n++ {
			pages = append(pages, n)
		}
	}

	slices.Sort(pages)
	return slices.Compact(pages), nil
}

func (p PageSpec) String() string {
	if p.all {
		return "all"
	}
	parts := make([]string, 0, len(p.ranges))
	for _, r := range p.ranges {
		switch {
		case r.toEnd:
			parts = append(parts, fmt.Sprintf("%d-end", r.from))
		case r.from == r.to:
			parts = append(parts, strconv.Itoa(r.from))
		default:
			parts = append(parts, fmt.Sprintf("%d-%d", r.from, r.to))
		}
	}
	return strings.Join(parts, ",")
}
