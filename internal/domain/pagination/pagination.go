// Package pagination derives the visible page of an in-memory collection.
// All functions are pure and safe for concurrent use.
package pagination

import "github.com/JULEEP/admin-frontend/internal/domain/model"

// DefaultPageSize is the number of rows per page used by the console.
const DefaultPageSize = 5

// PageCount returns ceil(totalItems/pageSize), or 0 when there is nothing to show.
func PageCount(totalItems, pageSize int) int {
	if totalItems <= 0 || pageSize <= 0 {
		return 0
	}
	pages := totalItems / pageSize
	if totalItems%pageSize != 0 {
		pages++
	}
	return pages
}

// Paginate returns a copy of the items on the 1-based page pageIndex.
// Out-of-range pages and non-positive sizes yield an empty slice.
func Paginate[T any](items []T, pageIndex, pageSize int) []T {
	if pageIndex < 1 || pageIndex > PageCount(len(items), pageSize) {
		return []T{}
	}
	// pageIndex is a real page here, so start < len(items) and cannot overflow.
	start := (pageIndex - 1) * pageSize
	end := start + min(pageSize, len(items)-start)
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out
}

// ChangePage returns requested when it names an existing page, otherwise current.
func ChangePage(current, requested, pageCount int) int {
	if requested >= 1 && requested <= pageCount {
		return requested
	}
	return current
}

// Clamp pulls index back into [1, max(1, pageCount)].
func Clamp(index, pageCount int) int {
	upper := max(1, pageCount)
	switch {
	case index < 1:
		return 1
	case index > upper:
		return upper
	default:
		return index
	}
}

// Describe builds the page descriptor for a collection of totalItems at the given index.
// The index is clamped so the descriptor always satisfies the page invariant.
func Describe(totalItems, index, pageSize int) model.PageDescriptor {
	pages := PageCount(totalItems, pageSize)
	idx := Clamp(index, pages)
	d := model.PageDescriptor{
		Index:      idx,
		Size:       pageSize,
		TotalItems: max(0, totalItems),
		TotalPages: pages,
		HasPrev:    pages > 0 && idx > 1,
		HasNext:    idx < pages,
	}
	if pages > 0 {
		offset := (idx - 1) * pageSize
		d.FirstItem = offset + 1
		d.LastItem = offset + min(pageSize, totalItems-offset)
	}
	return d
}

// PageNumbers lists the page buttons 1..pageCount. It is empty when there are no pages.
func PageNumbers(pageCount int) []int {
	if pageCount <= 0 {
		return nil
	}
	out := make([]int, pageCount)
	for i := range out {
		out[i] = i + 1
	}
	return out
}
