// Package redissource exposes Redis sorted sets and lists as pagedlist sources.
package redissource

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	pl "github.com/zhangzqs/pagedlist-go"
)

// DecodeFunc converts a stored member into an item.
type DecodeFunc[T any] func(member string) (T, error)

// String returns members unchanged.
func String(member string) (string, error) { return member, nil }

type kind int

const (
	sortedSet kind = iota
	list
)

// Source pages through the members of a single Redis key.
type Source[T any] struct {
	client redis.Cmdable
	key    string
	kind   kind
	decode DecodeFunc[T]
}

var _ pl.Source[string] = (*Source[string])(nil)

// NewSortedSet returns a Source over the members of the sorted set at key,
// in ascending score order.
func NewSortedSet[T any](client redis.Cmdable, key string, decode DecodeFunc[T]) *Source[T] {
	return &Source[T]{client: client, key: key, kind: sortedSet, decode: decode}
}

// NewList returns a Source over the elements of the list at key, head first.
func NewList[T any](client redis.Cmdable, key string, decode DecodeFunc[T]) *Source[T] {
	return &Source[T]{client: client, key: key, kind: list, decode: decode}
}

// Slice reads members skip..skip+take-1 with ZRANGE or LRANGE.
func (s *Source[T]) Slice(ctx context.Context, skip, take int) ([]T, error) {
	start, stop := int64(skip), int64(skip)+int64(take)-1

	var (
		members []string
		err     error
	)
	switch s.kind {
	case list:
		members, err = s.client.LRange(ctx, s.key, start, stop).Result()
	default:
		members, err = s.client.ZRange(ctx, s.key, start, stop).Result()
	}
	if err != nil {
		return nil, errors.Wrapf(err, "redissource: range %s", s.key)
	}

	items := make([]T, 0, len(members))
	for _, m := range members {
		item, err := s.decode(m)
		if err != nil {
			return nil, errors.Wrapf(err, "redissource: decode member of %s", s.key)
		}
		items = append(items, item)
	}
	return items, nil
}

// Count returns ZCARD or LLEN of the key. A missing key counts as empty.
func (s *Source[T]) Count(ctx context.Context) (int, error) {
	var cmd *redis.IntCmd
	switch s.kind {
	case list:
		cmd = s.client.LLen(ctx, s.key)
	default:
		cmd = s.client.ZCard(ctx, s.key)
	}
	n, err := cmd.Result()
	if err != nil {
		return 0, errors.Wrapf(err, "redissource: count %s", s.key)
	}
	return int(n), nil
}
