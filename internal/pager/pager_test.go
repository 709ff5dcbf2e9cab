package pager

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meshgopher/internal/gopher"
)

// menuWith builds a menu with info lines sprinkled between selectable
// entries, mirroring real gophermaps.
func menuWith(info, selectable int) *gopher.Listing {
	l := &gopher.Listing{Kind: gopher.KindMenu}
	for i := 0; i < info; i++ {
		l.Items = append(l.Items, gopher.Item{Type: gopher.TypeInfo, Display: fmt.Sprintf("banner %d", i)})
	}
	for i := 0; i < selectable; i++ {
		l.Items = append(l.Items, gopher.Item{
			Type:     gopher.TypeFile,
			Display:  fmt.Sprintf("entry %d", i),
			Selector: fmt.Sprintf("/e%d", i),
			Host:     "example.org",
			Port:     70,
		})
	}
	return l
}

func fileWith(lines int) *gopher.Listing {
	l := &gopher.Listing{Kind: gopher.KindFile}
	for i := 0; i < lines; i++ {
		l.Lines = append(l.Lines, fmt.Sprintf("line %d", i))
	}
	return l
}

func TestCountSkipsInfoLines(t *testing.T) {
	tests := []struct {
		info, selectable, size, want int
	}{
		{3, 20, 10, 2},
		{0, 21, 10, 3},
		{5, 0, 10, 1}, // info-only menu still has one empty page
		{0, 0, 10, 1},
		{0, 10, 10, 1},
		{0, 11, 10, 2},
	}
	for _, tt := range tests {
		got := Count(menuWith(tt.info, tt.selectable), tt.size)
		assert.Equal(t, tt.want, got, "info=%d selectable=%d size=%d", tt.info, tt.selectable, tt.size)
	}
}

func TestCountFileCountsEveryLine(t *testing.T) {
	assert.Equal(t, 3, Count(fileWith(41), 20))
	assert.Equal(t, 1, Count(fileWith(0), 20))
}

func TestSliceMenuPaging(t *testing.T) {
	// 3 info + 20 selectable at size 10: two full pages, info lines
	// never labelled.
	l := menuWith(3, 20)

	first := Slice(l, 0, 10)
	require.Len(t, first.Items, 10)
	require.Len(t, first.IndexMap, 10)
	assert.Equal(t, "entry 0", first.IndexMap[0].Display)
	assert.Equal(t, "entry 9", first.IndexMap[9].Display)
	assert.Equal(t, 0, first.Start)
	assert.Equal(t, 20, first.Total)
	for _, it := range first.IndexMap {
		assert.True(t, it.Selectable())
	}

	second := Slice(l, 1, 10)
	require.Len(t, second.IndexMap, 10)
	assert.Equal(t, "entry 10", second.IndexMap[0].Display)
	assert.Equal(t, 10, second.Start)
}

func TestSliceMenuLastPartialPage(t *testing.T) {
	l := menuWith(3, 21)
	assert.Equal(t, 3, Count(l, 10))

	last := Slice(l, 2, 10)
	require.Len(t, last.IndexMap, 1)
	assert.Equal(t, "entry 20", last.IndexMap[0].Display)
}

func TestSliceIndexMapCapped(t *testing.T) {
	// Oversized page sizes still hand out at most ten digit labels.
	l := menuWith(0, 15)
	p := Slice(l, 0, 15)
	assert.Len(t, p.Items, 15)
	assert.Len(t, p.IndexMap, MaxDigits)
}

func TestSliceFilePaging(t *testing.T) {
	l := fileWith(45)

	p := Slice(l, 1, 20)
	require.Len(t, p.Lines, 20)
	assert.Equal(t, "line 20", p.Lines[0])
	assert.Equal(t, 20, p.Start)
	assert.Equal(t, 45, p.Total)

	last := Slice(l, 2, 20)
	assert.Len(t, last.Lines, 5)
}

func TestClamp(t *testing.T) {
	l := menuWith(0, 25) // 3 pages at size 10

	idx, clamped := Clamp(l, 1, 10)
	assert.Equal(t, 1, idx)
	assert.False(t, clamped)

	idx, clamped = Clamp(l, 7, 10)
	assert.Equal(t, 2, idx)
	assert.True(t, clamped)

	idx, clamped = Clamp(l, -1, 10)
	assert.Equal(t, 0, idx)
	assert.True(t, clamped)
}

func TestSliceEmptyListing(t *testing.T) {
	p := Slice(menuWith(2, 0), 0, 10)
	assert.Empty(t, p.Items)
	assert.Empty(t, p.IndexMap)
	assert.Equal(t, 0, p.Total)

	fp := Slice(fileWith(0), 5, 20)
	assert.Empty(t, fp.Lines)
}
