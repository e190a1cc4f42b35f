package model

import "math"

// Window is the page hint handed down by the routing layer. Limit <= 0
// means no limit.
type Window struct {
	Offset int
	Limit  int
}

// All is the unbounded window.
var All = Window{}

func NewWindow(page, pageSize int) Window {
	if page < 1 {
		page = 1
	}
	if pageSize < 0 {
		pageSize = 0
	}
	// offset+limit saturates at MaxInt, so a huge page lands past the end
	// instead of wrapping negative
	if pageSize > 0 && page-1 > (math.MaxInt-pageSize)/pageSize {
		return Window{Offset: math.MaxInt - pageSize, Limit: pageSize}
	}
	return Window{Offset: (page - 1) * pageSize, Limit: pageSize}
}

func (w Window) Bounded() bool {
	return w.Limit > 0
}

// Bounds clips the window to a slice of length n.
func (w Window) Bounds(n int) (start, end int) {
	start = w.Offset
	if start < 0 {
		start = 0
	}
	if start > n {
		start = n
	}
	end = n
	if w.Bounded() && start+w.Limit < n {
		end = start + w.Limit
	}
	return start, end
}

// Page is one window of an ordered result plus the total count.
type Page[T any] struct {
	Items []T
	Count int
}

func EmptyPage[T any]() Page[T] {
	return Page[T]{Items: []T{}, Count: 0}
}

// Slice applies w to an already materialised list.
func Slice[T any](items []T, w Window) Page[T] {
	start, end := w.Bounds(len(items))
	out := make([]T, end-start)
	copy(out, items[start:end])
	return Page[T]{Items: out, Count: len(items)}
}
