// Package pager computes page boundaries over gopher listings. Menu
// pages are counted over selectable entries only, so info lines never
// consume a digit label.
package pager

import "meshgopher/internal/gopher"

// MaxDigits caps the number of digit labels on one menu page. The
// command grammar only has the keys 0-9, whatever the configured page
// size says.
const MaxDigits = 10

// Page is the visible slice of a listing for one page index.
type Page struct {
	// Menu pages.
	Items    []gopher.Item // selectable entries on this page, in order
	IndexMap []gopher.Item // digit i selects IndexMap[i]; len <= MaxDigits

	// File pages.
	Lines []string

	Start int // zero-based offset of the first entry/line on this page
	Total int // selectable entries (menu) or lines (file) in the listing
}

// Count returns the number of pages the listing occupies at the given
// page size. A completely empty listing still has one (empty) page.
func Count(l *gopher.Listing, size int) int {
	if size < 1 {
		size = 1
	}
	n := length(l)
	if n == 0 {
		return 1
	}
	return (n + size - 1) / size
}

// Clamp bounds a page index into the valid range for the listing and
// reports whether the index was out of range.
func Clamp(l *gopher.Listing, index, size int) (int, bool) {
	last := Count(l, size) - 1
	switch {
	case index < 0:
		return 0, true
	case index > last:
		return last, true
	default:
		return index, false
	}
}

// Slice returns the page at index. Out-of-range indexes are clamped
// first, so the returned page is always valid.
func Slice(l *gopher.Listing, index, size int) Page {
	if size < 1 {
		size = 1
	}
	index, _ = Clamp(l, index, size)
	start := index * size

	if l != nil && l.Kind == gopher.KindFile {
		end := min(start+size, len(l.Lines))
		if start > end {
			start = end
		}
		return Page{Lines: l.Lines[start:end], Start: start, Total: len(l.Lines)}
	}

	sel := l.SelectableItems()
	end := min(start+size, len(sel))
	if start > end {
		start = end
	}
	items := sel[start:end]
	return Page{
		Items:    items,
		IndexMap: items[:min(len(items), MaxDigits)],
		Start:    start,
		Total:    len(sel),
	}
}

func length(l *gopher.Listing) int {
	if l == nil {
		return 0
	}
	if l.Kind == gopher.KindFile {
		return len(l.Lines)
	}
	return len(l.SelectableItems())
}
