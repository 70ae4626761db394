// Package mongosource exposes a MongoDB collection query as a pagedlist.Source.
package mongosource

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	pl "github.com/zhangzqs/pagedlist-go"
)

// Source pages through the documents of a collection matching a filter.
type Source[T any] struct {
	coll       *mongo.Collection
	filter     any
	sort       bson.D
	projection any
}

var _ pl.Source[bson.M] = (*Source[bson.M])(nil)

// Option configures a Source.
type Option func(*config)

type config struct {
	sort       bson.D
	projection any
}

// WithSort orders the documents. Without a sort the natural order of the
// collection is used, which is not stable across pages.
func WithSort(sort bson.D) Option {
	return func(c *config) { c.sort = sort }
}

// WithProjection limits the fields returned for each document.
func WithProjection(projection any) Option {
	return func(c *config) { c.projection = projection }
}

// New returns a Source over the documents of coll that match filter.
// A nil filter matches every document.
func New[T any](coll *mongo.Collection, filter any, opts ...Option) *Source[T] {
	if filter == nil {
		filter = bson.D{}
	}
	var c config
	for _, opt := range opts {
		opt(&c)
	}
	return &Source[T]{
		coll:       coll,
		filter:     filter,
		sort:       c.sort,
		projection: c.projection,
	}
}

// Slice runs Find with skip and limit and decodes every document into T.
func (s *Source[T]) Slice(ctx context.Context, skip, take int) ([]T, error) {
	findOpts := options.Find().SetSkip(int64(skip)).SetLimit(int64(take))
	if s.sort != nil {
		findOpts.SetSort(s.sort)
	}
	if s.projection != nil {
		findOpts.SetProjection(s.projection)
	}

	cur, err := s.coll.Find(ctx, s.filter, findOpts)
	if err != nil {
		return nil, errors.Wrap(err, "mongosource: find")
	}
	defer cur.Close(ctx)

	var items []T
	if err := cur.All(ctx, &items); err != nil {
		return nil, errors.Wrap(err, "mongosource: decode")
	}
	return items, nil
}

// Count runs CountDocuments with the filter.
func (s *Source[T]) Count(ctx context.Context) (int, error) {
	n, err := s.coll.CountDocuments(ctx, s.filter)
	if err != nil {
		return 0, errors.Wrap(err, "mongosource: count")
	}
	return int(n), nil
}
