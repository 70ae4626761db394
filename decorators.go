package pagedlist

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// LoggingSource wraps a Source and logs every read.
type LoggingSource[T any] struct {
	source Source[T]
	logger logrus.FieldLogger
}

// NewLoggingSource creates a new LoggingSource.
// If logger is nil, the logrus standard logger is used.
func NewLoggingSource[T any](source Source[T], logger logrus.FieldLogger) *LoggingSource[T] {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LoggingSource[T]{
		source: source,
		logger: logger,
	}
}

// Slice reads a slice from the wrapped source and logs the outcome.
func (l *LoggingSource[T]) Slice(ctx context.Context, skip, take int) ([]T, error) {
	start := time.Now()
	items, err := l.source.Slice(ctx, skip, take)
	entry := l.logger.WithFields(logrus.Fields{
		"op":      "slice",
		"skip":    skip,
		"take":    take,
		"elapsed": time.Since(start),
	})
	if err != nil {
		entry.WithError(err).Warn("source read failed")
		return nil, err
	}
	entry.WithField("items", len(items)).Debug("source read")
	return items, nil
}

// Count counts the wrapped source and logs the outcome.
func (l *LoggingSource[T]) Count(ctx context.Context) (int, error) {
	start := time.Now()
	n, err := l.source.Count(ctx)
	entry := l.logger.WithFields(logrus.Fields{
		"op":      "count",
		"elapsed": time.Since(start),
	})
	if err != nil {
		entry.WithError(err).Warn("source read failed")
		return 0, err
	}
	entry.WithField("total", n).Debug("source read")
	return n, nil
}

// RateLimitedSource wraps a Source and rate limits its reads with a token bucket.
// Slice and Count draw from the same bucket.
type RateLimitedSource[T any] struct {
	source  Source[T]
	limiter *rate.Limiter
}

// NewRateLimitedSource creates a new RateLimitedSource.
// requestsPerSecond specifies how many reads are allowed per second.
// burst specifies the maximum number of reads that can be made in a burst.
func NewRateLimitedSource[T any](source Source[T], requestsPerSecond float64, burst int) *RateLimitedSource[T] {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 10
	}
	if burst <= 0 {
		burst = max(1, int(requestsPerSecond))
	}
	return &RateLimitedSource[T]{
		source:  source,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

func (r *RateLimitedSource[T]) Slice(ctx context.Context, skip, take int) ([]T, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.source.Slice(ctx, skip, take)
}

func (r *RateLimitedSource[T]) Count(ctx context.Context) (int, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	return r.source.Count(ctx)
}

// BreakerSource wraps a Source in a circuit breaker. While the breaker is
// open reads fail immediately with gobreaker.ErrOpenState instead of
// reaching the source.
type BreakerSource[T any] struct {
	source Source[T]
	cb     *gobreaker.CircuitBreaker
}

// NewBreakerSource creates a new BreakerSource.
// Unless settings.IsSuccessful is set, context cancellation does not count
// as a failure of the source.
func NewBreakerSource[T any](source Source[T], settings gobreaker.Settings) *BreakerSource[T] {
	if settings.Name == "" {
		settings.Name = "pagedlist"
	}
	if settings.IsSuccessful == nil {
		settings.IsSuccessful = func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		}
	}
	return &BreakerSource[T]{
		source: source,
		cb:     gobreaker.NewCircuitBreaker(settings),
	}
}

func (b *BreakerSource[T]) Slice(ctx context.Context, skip, take int) ([]T, error) {
	v, err := b.cb.Execute(func() (interface{}, error) {
		return b.source.Slice(ctx, skip, take)
	})
	if err != nil {
		return nil, err
	}
	return v.([]T), nil
}

func (b *BreakerSource[T]) Count(ctx context.Context) (int, error) {
	v, err := b.cb.Execute(func() (interface{}, error) {
		return b.source.Count(ctx)
	})
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

// State returns the current state of the breaker.
func (b *BreakerSource[T]) State() gobreaker.State {
	return b.cb.State()
}

// TracingSource wraps a Source and records one span per read.
type TracingSource[T any] struct {
	source Source[T]
	tracer trace.Tracer
}

// NewTracingSource creates a new TracingSource.
// If tracer is nil, the tracer named "pagedlist" from the global provider is used.
func NewTracingSource[T any](source Source[T], tracer trace.Tracer) *TracingSource[T] {
	if tracer == nil {
		tracer = otel.Tracer("pagedlist")
	}
	return &TracingSource[T]{
		source: source,
		tracer: tracer,
	}
}

func (t *TracingSource[T]) Slice(ctx context.Context, skip, take int) ([]T, error) {
	ctx, span := t.tracer.Start(ctx, "pagedlist.slice", trace.WithAttributes(
		attribute.Int("pagedlist.skip", skip),
		attribute.Int("pagedlist.take", take),
	))
	defer span.End()

	items, err := t.source.Slice(ctx, skip, take)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("pagedlist.items", len(items)))
	return items, nil
}

func (t *TracingSource[T]) Count(ctx context.Context) (int, error) {
	ctx, span := t.tracer.Start(ctx, "pagedlist.count")
	defer span.End()

	n, err := t.source.Count(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	span.SetAttributes(attribute.Int("pagedlist.total", n))
	return n, nil
}

// MapSource wraps a Source and transforms its items from type S to type T.
type MapSource[S any, T any] struct {
	source    Source[S]
	transform func(S) T
}

// NewMapSource creates a new MapSource that applies transform to each item read.
func NewMapSource[S any, T any](source Source[S], transform func(S) T) *MapSource[S, T] {
	return &MapSource[S, T]{
		source:    source,
		transform: transform,
	}
}

func (m *MapSource[S, T]) Slice(ctx context.Context, skip, take int) ([]T, error) {
	items, err := m.source.Slice(ctx, skip, take)
	if err != nil {
		return nil, err
	}

	out := make([]T, len(items))
	for i, item := range items {
		out[i] = m.transform(item)
	}
	return out, nil
}

func (m *MapSource[S, T]) Count(ctx context.Context) (int, error) {
	return m.source.Count(ctx)
}
