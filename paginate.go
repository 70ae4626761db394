package pagedlist

import (
	"iter"
	"math"
)

// Paginate returns page pageNumber of source, pageSize items per page.
//
// A nil or empty source yields an empty page for any valid pageNumber.
// Requesting a page past the end is not an error either: the page is empty
// and its metadata still describes the whole source.
func Paginate[T any](source []T, pageNumber, pageSize int) (*Page[T], error) {
	if err := validate(pageNumber, pageSize); err != nil {
		return nil, err
	}

	total := len(source)
	start, ok := offset(pageNumber, pageSize)
	if !ok || start >= total {
		return newPage[T](nil, pageNumber, pageSize, total), nil
	}
	end := start + min(pageSize, total-start)

	items := make([]T, end-start)
	copy(items, source[start:end])
	return newPage(items, pageNumber, pageSize, total), nil
}

// PaginateSeq is Paginate for sequences that can only be read once.
// seq is consumed in a single pass: every element is counted and only the
// elements of the requested page are retained.
func PaginateSeq[T any](seq iter.Seq[T], pageNumber, pageSize int) (*Page[T], error) {
	if err := validate(pageNumber, pageSize); err != nil {
		return nil, err
	}
	if seq == nil {
		return newPage[T](nil, pageNumber, pageSize, 0), nil
	}

	start, ok := offset(pageNumber, pageSize)
	var (
		items []T
		total int
	)
	for v := range seq {
		if ok && total >= start && len(items) < pageSize {
			items = append(items, v)
		}
		total++
	}
	return newPage(items, pageNumber, pageSize, total), nil
}

// validate checks the parameters shared by every full-source entry point.
func validate(pageNumber, pageSize int) error {
	if pageNumber < 1 {
		return invalidArg("pageNumber", pageNumber, "must be >= 1")
	}
	if pageSize < 1 {
		return invalidArg("pageSize", pageSize, "must be >= 1")
	}
	return nil
}

// offset returns the zero-based index of the first item of the page.
// ok is false when the index does not fit in an int.
func offset(pageNumber, pageSize int) (skip int, ok bool) {
	if pageNumber-1 > math.MaxInt/pageSize {
		return 0, false
	}
	return (pageNumber - 1) * pageSize, true
}
