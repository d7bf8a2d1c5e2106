package pagination

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func TestPaginate(t *testing.T) {
	t.Parallel()
	items := seq(12)

	tests := []struct {
		name string
		page int
		size int
		want []int
	}{
		{name: "first page", page: 1, size: 5, want: []int{1, 2, 3, 4, 5}},
		{name: "middle page", page: 2, size: 5, want: []int{6, 7, 8, 9, 10}},
		{name: "partial last page", page: 3, size: 5, want: []int{11, 12}},
		{name: "beyond last page", page: 4, size: 5, want: []int{}},
		{name: "zero page", page: 0, size: 5, want: []int{}},
		{name: "negative page", page: -1, size: 5, want: []int{}},
		{name: "zero size", page: 1, size: 0, want: []int{}},
		{name: "size larger than collection", page: 1, size: 50, want: seq(12)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Paginate(items, tt.page, tt.size))
		})
	}
}

func TestPaginate_ReturnsCopy(t *testing.T) {
	t.Parallel()
	items := seq(6)
	page := Paginate(items, 1, 5)
	page[0] = 99
	assert.Equal(t, 1, items[0])
}

func TestPaginate_EmptyCollection(t *testing.T) {
	t.Parallel()
	assert.Empty(t, Paginate([]string{}, 1, 5))
	assert.Empty(t, Paginate[string](nil, 1, 5))
}

func TestPageCount(t *testing.T) {
	t.Parallel()
	tests := []struct {
		total, size, want int
	}{
		{0, 5, 0},
		{1, 5, 1},
		{5, 5, 1},
		{6, 5, 2},
		{12, 5, 3},
		{15, 5, 3},
		{12, 0, 0},
		{12, -1, 0},
		{-3, 5, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PageCount(tt.total, tt.size), "PageCount(%d, %d)", tt.total, tt.size)
	}
}

func TestPaginationAtIntLimits(t *testing.T) {
	t.Parallel()
	items := seq(7)

	assert.Equal(t, math.MaxInt/5+1, PageCount(math.MaxInt, 5))
	assert.Equal(t, 1, PageCount(7, math.MaxInt))
	assert.Equal(t, 1, PageCount(math.MaxInt, math.MaxInt))

	assert.Equal(t, items, Paginate(items, 1, math.MaxInt))
	assert.Empty(t, Paginate(items, 3, math.MaxInt))
	assert.Empty(t, Paginate(items, math.MaxInt, 5))
	assert.Empty(t, Paginate(items, math.MaxInt, math.MaxInt))

	d := Describe(math.MaxInt, math.MaxInt, 5)
	assert.Equal(t, math.MaxInt/5+1, d.Index)
	assert.Equal(t, math.MaxInt, d.LastItem)
	assert.Positive(t, d.FirstItem)
}

func TestChangePage(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 2, ChangePage(1, 2, 3))
	assert.Equal(t, 3, ChangePage(1, 3, 3))
	assert.Equal(t, 3, ChangePage(3, 4, 3), "beyond the last page is rejected")
	assert.Equal(t, 2, ChangePage(2, 0, 3), "page zero is rejected")
	assert.Equal(t, 1, ChangePage(1, 1, 0), "no pages rejects everything")
}

func TestChangePage_ResultWithinBounds(t *testing.T) {
	t.Parallel()
	for count := 1; count <= 4; count++ {
		for requested := -2; requested <= 6; requested++ {
			got := ChangePage(1, requested, count)
			assert.GreaterOrEqual(t, got, 1)
			assert.LessOrEqual(t, got, count)
		}
	}
}

func TestClamp(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 1, Clamp(0, 3))
	assert.Equal(t, 2, Clamp(2, 3))
	assert.Equal(t, 2, Clamp(3, 2))
	assert.Equal(t, 1, Clamp(4, 0))
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	t.Run("last partial page", func(t *testing.T) {
		t.Parallel()
		d := Describe(12, 3, 5)
		assert.Equal(t, 3, d.Index)
		assert.Equal(t, 3, d.TotalPages)
		assert.Equal(t, 11, d.FirstItem)
		assert.Equal(t, 12, d.LastItem)
		assert.True(t, d.HasPrev)
		assert.False(t, d.HasNext)
	})

	t.Run("first page", func(t *testing.T) {
		t.Parallel()
		d := Describe(12, 1, 5)
		assert.Equal(t, 1, d.FirstItem)
		assert.Equal(t, 5, d.LastItem)
		assert.False(t, d.HasPrev)
		assert.True(t, d.HasNext)
	})

	t.Run("empty collection", func(t *testing.T) {
		t.Parallel()
		d := Describe(0, 1, 5)
		assert.True(t, d.Empty())
		assert.Equal(t, 1, d.Index)
		assert.Zero(t, d.TotalPages)
		assert.Zero(t, d.FirstItem)
		assert.Zero(t, d.LastItem)
		assert.False(t, d.HasPrev)
		assert.False(t, d.HasNext)
	})

	t.Run("index past shrunk collection is clamped", func(t *testing.T) {
		t.Parallel()
		d := Describe(10, 3, 5)
		assert.Equal(t, 2, d.Index)
		assert.Equal(t, 6, d.FirstItem)
		assert.Equal(t, 10, d.LastItem)
	})
}

func TestPageNumbers(t *testing.T) {
	t.Parallel()
	assert.Nil(t, PageNumbers(0))
	assert.Equal(t, []int{1, 2, 3}, PageNumbers(3))
}
