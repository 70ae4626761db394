package pagedlist

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSource counts reads and remembers the requested slice bounds.
type recordingSource[T any] struct {
	Source[T]

	mu         sync.Mutex
	slices     int
	counts     int
	skip, take int
}

func (r *recordingSource[T]) Slice(ctx context.Context, skip, take int) ([]T, error) {
	r.mu.Lock()
	r.slices++
	r.skip, r.take = skip, take
	r.mu.Unlock()
	return r.Source.Slice(ctx, skip, take)
}

func (r *recordingSource[T]) Count(ctx context.Context) (int, error) {
	r.mu.Lock()
	r.counts++
	r.mu.Unlock()
	return r.Source.Count(ctx)
}

func TestSliceSource(t *testing.T) {
	t.Parallel()

	src := SliceSource[int](seq(1, 5))
	ctx := context.Background()

	items, err := src.Slice(ctx, 1, 2)
	require.NoError(t, err)
	require.Equal(t, []int{2, 3}, items)

	items, err = src.Slice(ctx, 4, 10)
	require.NoError(t, err)
	require.Equal(t, []int{5}, items)

	items, err = src.Slice(ctx, 9, 10)
	require.NoError(t, err)
	require.Empty(t, items)

	n, err := src.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 5, n)
}

func TestPaginateSource(t *testing.T) {
	t.Parallel()

	for _, sequential := range []bool{false, true} {
		var opts []Option
		if sequential {
			opts = append(opts, WithSequentialReads())
		}

		src := &recordingSource[int]{Source: SliceSource[int](seq(1, 25))}
		p, err := PaginateSource[int](context.Background(), src, 3, 10, opts...)
		require.NoError(t, err)

		assert.Equal(t, seq(21, 25), p.Items())
		assert.Equal(t, 25, p.TotalItemCount())
		assert.Equal(t, 3, p.TotalPageCount())
		assert.True(t, p.IsLastPage())
		assert.Equal(t, 1, src.slices)
		assert.Equal(t, 1, src.counts)
		assert.Equal(t, 20, src.skip)
		assert.Equal(t, 10, src.take)
	}
}

func TestPaginateSourceMatchesPaginate(t *testing.T) {
	t.Parallel()

	source := seq(1, 23)
	for page := 1; page <= 6; page++ {
		want, err := Paginate(source, page, 5)
		require.NoError(t, err)
		got, err := PaginateSource[int](context.Background(), SliceSource[int](source), page, 5)
		require.NoError(t, err)
		require.Equal(t, want.Metadata(), got.Metadata())
		require.Equal(t, want.Items(), got.Items())
	}
}

func TestPaginateSourceEmpty(t *testing.T) {
	t.Parallel()

	p, err := PaginateSource[string](context.Background(), SliceSource[string](nil), 1, 5)
	require.NoError(t, err)
	require.Equal(t, 0, p.TotalItemCount())
	require.Equal(t, 0, p.TotalPageCount())
	require.True(t, p.IsFirstPage())
	require.True(t, p.IsLastPage())
}

func TestPaginateSourceInvalidArgumentsIssueNoReads(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		pageNumber int
		pageSize   int
	}{
		{"zero page number", 0, 10},
		{"zero page size", 1, 0},
		{"negative page size", 1, -1},
		{"offset overflow", 1 << 62, 1 << 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &recordingSource[int]{Source: SliceSource[int](seq(1, 5))}
			p, err := PaginateSource[int](context.Background(), src, tt.pageNumber, tt.pageSize)
			require.Nil(t, p)
			require.ErrorIs(t, err, ErrInvalidArgument)
			require.Zero(t, src.slices)
			require.Zero(t, src.counts)
		})
	}
}

func TestPaginateSourceFailures(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("connection reset")
	okSlice := func(ctx context.Context, skip, take int) ([]int, error) { return []int{1}, nil }
	okCount := func(ctx context.Context) (int, error) { return 1, nil }
	badSlice := func(ctx context.Context, skip, take int) ([]int, error) { return nil, errBoom }
	badCount := func(ctx context.Context) (int, error) { return 0, errBoom }

	tests := []struct {
		name   string
		slice  SliceFunc[int]
		count  CountFunc
		wantOp string
	}{
		{"slice fails", badSlice, okCount, "slice"},
		{"count fails", okSlice, badCount, "count"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, opts := range [][]Option{nil, {WithSequentialReads()}} {
				p, err := PaginateFuncs(context.Background(), tt.slice, tt.count, 1, 10, opts...)
				require.Nil(t, p)
				require.ErrorIs(t, err, errBoom)

				var srcErr *SourceError
				require.ErrorAs(t, err, &srcErr)
				require.Equal(t, tt.wantOp, srcErr.Op)
				require.Contains(t, err.Error(), "connection reset")
			}
		})
	}
}

func TestPaginateSourceFailureCancelsOtherRead(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("query failed")
	var countCancelled atomic.Bool

	p, err := PaginateFuncs(context.Background(),
		func(ctx context.Context, skip, take int) ([]int, error) {
			return nil, errBoom
		},
		func(ctx context.Context) (int, error) {
			select {
			case <-ctx.Done():
				countCancelled.Store(true)
				return 0, ctx.Err()
			case <-time.After(5 * time.Second):
				return 10, nil
			}
		}, 1, 10)

	require.Nil(t, p)
	require.ErrorIs(t, err, errBoom)
	require.True(t, countCancelled.Load())
}

func TestPaginateSourceReadsRunConcurrently(t *testing.T) {
	t.Parallel()

	// Each read waits for the other to start; sequential execution would time out.
	var started sync.WaitGroup
	started.Add(2)
	wait := func(ctx context.Context) error {
		started.Done()
		done := make(chan struct{})
		go func() {
			started.Wait()
			close(done)
		}()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	p, err := PaginateFuncs(ctx,
		func(ctx context.Context, skip, take int) ([]int, error) {
			return []int{1, 2}, wait(ctx)
		},
		func(ctx context.Context) (int, error) {
			return 2, wait(ctx)
		}, 1, 10)
	require.NoError(t, err)
	require.Equal(t, 2, p.Count())
}

func TestPaginateSourceCancelled(t *testing.T) {
	t.Parallel()

	t.Run("before the call", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		src := &recordingSource[int]{Source: SliceSource[int](seq(1, 5))}
		p, err := PaginateSource[int](ctx, src, 1, 10)
		require.Nil(t, p)
		require.ErrorIs(t, err, context.Canceled)
		require.Zero(t, src.slices)
		require.Zero(t, src.counts)
	})

	t.Run("during the reads", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		blocked := make(chan struct{})
		block := func(ctx context.Context) error {
			close(blocked)
			<-ctx.Done()
			return ctx.Err()
		}

		go func() {
			<-blocked
			cancel()
		}()

		p, err := PaginateFuncs(ctx,
			func(ctx context.Context, skip, take int) ([]int, error) {
				return nil, block(ctx)
			},
			func(ctx context.Context) (int, error) {
				return 5, nil
			}, 1, 10)
		require.Nil(t, p)
		require.ErrorIs(t, err, context.Canceled)

		var srcErr *SourceError
		require.False(t, errors.As(err, &srcErr), "cancellation must not be reported as a source failure")
	})

	t.Run("source ignores cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())

		p, err := PaginateFuncs(ctx,
			func(ctx context.Context, skip, take int) ([]int, error) {
				cancel()
				return []int{1}, nil
			},
			func(ctx context.Context) (int, error) {
				return 1, nil
			}, 1, 10, WithSequentialReads())
		require.Nil(t, p)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestPaginateSourceContractViolations(t *testing.T) {
	t.Parallel()

	t.Run("too many items", func(t *testing.T) {
		p, err := PaginateFuncs(context.Background(),
			func(ctx context.Context, skip, take int) ([]int, error) {
				return seq(1, take+1), nil
			},
			func(ctx context.Context) (int, error) { return 100, nil },
			1, 3)
		require.Nil(t, p)
		require.ErrorIs(t, err, ErrSourceContract)

		var srcErr *SourceError
		require.ErrorAs(t, err, &srcErr)
		require.Equal(t, "slice", srcErr.Op)
	})

	t.Run("negative count", func(t *testing.T) {
		p, err := PaginateFuncs(context.Background(),
			func(ctx context.Context, skip, take int) ([]int, error) { return nil, nil },
			func(ctx context.Context) (int, error) { return -1, nil },
			1, 3)
		require.Nil(t, p)
		require.ErrorIs(t, err, ErrSourceContract)
	})
}

func TestPaginateSourceStaleCount(t *testing.T) {
	t.Parallel()

	// The count was taken before rows were inserted that the slice already sees.
	p, err := PaginateFuncs(context.Background(),
		func(ctx context.Context, skip, take int) ([]int, error) {
			return []int{11, 12, 13}, nil
		},
		func(ctx context.Context) (int, error) { return 10, nil },
		2, 10)
	require.NoError(t, err)
	require.Equal(t, 13, p.TotalItemCount())
	require.Equal(t, 2, p.TotalPageCount())
	require.True(t, p.IsLastPage())

	// A stale count past an empty slice is kept as reported.
	p, err = PaginateFuncs(context.Background(),
		func(ctx context.Context, skip, take int) ([]int, error) { return nil, nil },
		func(ctx context.Context) (int, error) { return 5, nil },
		4, 10)
	require.NoError(t, err)
	require.Equal(t, 5, p.TotalItemCount())
	require.Equal(t, 0, p.Count())
}

func TestPaginateSourceCopiesItems(t *testing.T) {
	t.Parallel()

	backing := []int{1, 2, 3}
	p, err := PaginateFuncs(context.Background(),
		func(ctx context.Context, skip, take int) ([]int, error) { return backing, nil },
		func(ctx context.Context) (int, error) { return 3, nil },
		1, 3)
	require.NoError(t, err)

	backing[0] = 99
	v, err := p.At(0)
	require.NoError(t, err)
	require.Equal(t, 1, v)
}
