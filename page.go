// Package pagedlist materializes one page of a larger ordered collection
// together with the metadata describing where that page sits in the whole.
//
// A page is built either by slicing a full in-memory sequence (Paginate,
// PaginateSeq) or by wrapping a subset that was already sliced elsewhere,
// typically by a database, plus the total item count (NewPage,
// PaginateSource).
package pagedlist

import (
	"encoding/json"
	"fmt"
	"iter"
	"slices"

	"github.com/pkg/errors"
)

// Page is one page of an ordered collection of T.
// A Page is immutable: it is built once and only exposes read access.
type Page[T any] struct {
	items          []T
	pageNumber     int
	pageSize       int
	totalItemCount int
	totalPageCount int
}

// Metadata describes the position of a page within its superset.
type Metadata struct {
	PageNumber      int  `json:"page_number"`
	PageSize        int  `json:"page_size"`
	TotalItemCount  int  `json:"total_item_count"`
	TotalPageCount  int  `json:"total_page_count"`
	HasPreviousPage bool `json:"has_previous_page"`
	HasNextPage     bool `json:"has_next_page"`
	IsFirstPage     bool `json:"is_first_page"`
	IsLastPage      bool `json:"is_last_page"`
}

// NewPage wraps a subset that has already been sliced from its superset.
// pageNumber is one-based, pageSize is the maximum page length and
// totalItemCount is the size of the whole superset.
//
// pageSize may be zero only when totalItemCount is zero as well.
// The subset is copied; the caller keeps ownership of its slice.
func NewPage[T any](subset []T, pageNumber, pageSize, totalItemCount int) (*Page[T], error) {
	if pageNumber < 1 {
		return nil, invalidArg("pageNumber", pageNumber, "must be >= 1")
	}
	if pageSize < 0 {
		return nil, invalidArg("pageSize", pageSize, "must be >= 0")
	}
	if totalItemCount < 0 {
		return nil, invalidArg("totalItemCount", totalItemCount, "must be >= 0")
	}
	if pageSize == 0 && totalItemCount > 0 {
		return nil, invalidArg("pageSize", pageSize, "must be >= 1 when totalItemCount > 0")
	}
	if pageSize > 0 && len(subset) > pageSize {
		return nil, invalidArg("subset", len(subset), fmt.Sprintf("length exceeds pageSize %d", pageSize))
	}
	if len(subset) > totalItemCount {
		return nil, invalidArg("subset", len(subset), fmt.Sprintf("length exceeds totalItemCount %d", totalItemCount))
	}

	return newPage(slices.Clone(subset), pageNumber, pageSize, totalItemCount), nil
}

// newPage builds a page from already validated arguments and takes
// ownership of items.
func newPage[T any](items []T, pageNumber, pageSize, totalItemCount int) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		items:          items,
		pageNumber:     pageNumber,
		pageSize:       pageSize,
		totalItemCount: totalItemCount,
		totalPageCount: totalPages(totalItemCount, pageSize),
	}
}

// totalPages returns ceil(total/size), or 0 when either is not positive.
func totalPages(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total-1)/size + 1
}

// Count returns the number of items on this page.
func (p *Page[T]) Count() int { return len(p.items) }

// TotalPageCount returns the number of pages in the superset.
func (p *Page[T]) TotalPageCount() int { return p.totalPageCount }

// TotalItemCount returns the number of items in the superset.
func (p *Page[T]) TotalItemCount() int { return p.totalItemCount }

// PageNumber returns the one-based position of this page.
func (p *Page[T]) PageNumber() int { return p.pageNumber }

// PageSize returns the requested maximum page length.
func (p *Page[T]) PageSize() int { return p.pageSize }

// HasPreviousPage reports whether this is not the first page.
func (p *Page[T]) HasPreviousPage() bool { return p.pageNumber > 1 }

// HasNextPage reports whether a page follows this one.
func (p *Page[T]) HasNextPage() bool { return p.pageNumber < p.totalPageCount }

// IsFirstPage reports whether this is the first page.
func (p *Page[T]) IsFirstPage() bool { return p.pageNumber == 1 }

// IsLastPage reports whether no page follows this one. It also holds for
// any page requested past the end of the superset.
func (p *Page[T]) IsLastPage() bool { return p.pageNumber >= p.totalPageCount }

// At returns the element at the zero-based index i of this page.
func (p *Page[T]) At(i int) (T, error) {
	if i < 0 || i >= len(p.items) {
		var zero T
		return zero, errors.Wrapf(ErrIndexOutOfRange, "index %d, count %d", i, len(p.items))
	}
	return p.items[i], nil
}

// All returns an iterator over the index and value of each item on the page.
// It may be ranged over any number of times.
func (p *Page[T]) All() iter.Seq2[int, T] {
	return slices.All(p.items)
}

// Values returns an iterator over the items on the page.
func (p *Page[T]) Values() iter.Seq[T] {
	return slices.Values(p.items)
}

// Items returns a copy of the items on the page.
func (p *Page[T]) Items() []T {
	return slices.Clone(p.items)
}

// Metadata returns the positional metadata of the page.
func (p *Page[T]) Metadata() Metadata {
	return Metadata{
		PageNumber:      p.pageNumber,
		PageSize:        p.pageSize,
		TotalItemCount:  p.totalItemCount,
		TotalPageCount:  p.totalPageCount,
		HasPreviousPage: p.HasPreviousPage(),
		HasNextPage:     p.HasNextPage(),
		IsFirstPage:     p.IsFirstPage(),
		IsLastPage:      p.IsLastPage(),
	}
}

// MarshalJSON encodes the page as its items followed by its metadata.
func (p *Page[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Items []T `json:"items"`
		Metadata
	}{
		Items:    p.items,
		Metadata: p.Metadata(),
	})
}

func (p *Page[T]) String() string {
	return fmt.Sprintf("page %d/%d (%d of %d items)", p.pageNumber, p.totalPageCount, len(p.items), p.totalItemCount)
}
