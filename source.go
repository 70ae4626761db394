package pagedlist

import (
	"context"
	"slices"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Source is a deferred, pre-ordered sequence that can be read in slices,
// such as a database query that has not been executed yet.
type Source[T any] interface {
	// Slice returns at most take items starting at the zero-based offset skip.
	// An offset past the end yields an empty slice, not an error.
	Slice(ctx context.Context, skip, take int) ([]T, error)
	// Count returns the number of items in the whole sequence.
	Count(ctx context.Context) (int, error)
}

// SliceFunc reads a bounded slice of a deferred sequence.
type SliceFunc[T any] func(ctx context.Context, skip, take int) ([]T, error)

// CountFunc counts the items of a deferred sequence.
type CountFunc func(ctx context.Context) (int, error)

type funcSource[T any] struct {
	slice SliceFunc[T]
	count CountFunc
}

// SourceFunc adapts a pair of functions to the Source interface.
func SourceFunc[T any](slice SliceFunc[T], count CountFunc) Source[T] {
	return funcSource[T]{slice: slice, count: count}
}

func (f funcSource[T]) Slice(ctx context.Context, skip, take int) ([]T, error) {
	return f.slice(ctx, skip, take)
}

func (f funcSource[T]) Count(ctx context.Context) (int, error) {
	return f.count(ctx)
}

// SliceSource exposes an in-memory slice as a Source.
// The slice is never modified.
type SliceSource[T any] []T

func (s SliceSource[T]) Slice(ctx context.Context, skip, take int) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if skip >= len(s) {
		return []T{}, nil
	}
	end := skip + min(take, len(s)-skip)
	out := make([]T, end-skip)
	copy(out, s[skip:end])
	return out, nil
}

func (s SliceSource[T]) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return len(s), nil
}

type options struct {
	sequential bool
}

// Option configures PaginateSource.
type Option func(*options)

// WithSequentialReads makes PaginateSource issue the slice read and then the
// count read on the calling goroutine. Use it for sources that cannot serve
// two queries at once, such as a single *sql.Tx.
func WithSequentialReads() Option {
	return func(o *options) { o.sequential = true }
}

// PaginateSource reads page pageNumber of src, pageSize items per page.
//
// It issues exactly one Slice and one Count against src. By default both
// run concurrently and the first failure cancels the other. The two reads
// are not isolated from each other: when src changes between them, the
// total is raised to the smallest value consistent with the slice that was
// read.
//
// If ctx is done the call returns ctx.Err() and no page. Failures of src
// are returned as a *SourceError.
func PaginateSource[T any](ctx context.Context, src Source[T], pageNumber, pageSize int, opts ...Option) (*Page[T], error) {
	if err := validate(pageNumber, pageSize); err != nil {
		return nil, err
	}
	skip, ok := offset(pageNumber, pageSize)
	if !ok {
		return nil, invalidArg("pageNumber", pageNumber, "offset overflows int")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var (
		items []T
		total int
	)
	readSlice := func(ctx context.Context) error {
		var err error
		items, err = src.Slice(ctx, skip, pageSize)
		if err != nil {
			return &SourceError{Op: "slice", Err: err}
		}
		if len(items) > pageSize {
			return &SourceError{Op: "slice", Err: errors.Wrapf(ErrSourceContract, "got %d items, requested %d", len(items), pageSize)}
		}
		return nil
	}
	readCount := func(ctx context.Context) error {
		var err error
		total, err = src.Count(ctx)
		if err != nil {
			return &SourceError{Op: "count", Err: err}
		}
		if total < 0 {
			return &SourceError{Op: "count", Err: errors.Wrapf(ErrSourceContract, "negative count %d", total)}
		}
		return nil
	}

	var err error
	if o.sequential {
		if err = readSlice(ctx); err == nil {
			err = readCount(ctx)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return readSlice(gctx) })
		g.Go(func() error { return readCount(gctx) })
		err = g.Wait()
	}

	// Cancellation wins over whatever the reads reported.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		return nil, err
	}

	if len(items) > 0 && total < skip+len(items) {
		total = skip + len(items)
	}
	return newPage(slices.Clone(items), pageNumber, pageSize, total), nil
}

// PaginateFuncs is PaginateSource over a pair of functions.
func PaginateFuncs[T any](ctx context.Context, slice SliceFunc[T], count CountFunc, pageNumber, pageSize int, opts ...Option) (*Page[T], error) {
	return PaginateSource(ctx, SourceFunc(slice, count), pageNumber, pageSize, opts...)
}
