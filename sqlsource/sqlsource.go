// Package sqlsource exposes a database/sql query as a pagedlist.Source.
//
// The query is wrapped as a derived table, so it should carry its own
// ORDER BY; LIMIT/OFFSET and COUNT(*) are applied around it.
package sqlsource

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkg/errors"

	pl "github.com/zhangzqs/pagedlist-go"
)

// Queryer is satisfied by *sql.DB, *sql.Tx and *sql.Conn.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ScanFunc decodes the current row.
type ScanFunc[T any] func(rows *sql.Rows) (T, error)

// Placeholder is the bind parameter style of a driver.
type Placeholder int

const (
	// Question is the "?" style used by SQLite and MySQL.
	Question Placeholder = iota
	// Dollar is the "$1" style used by PostgreSQL.
	Dollar
)

// Source pages through the result of a SQL query.
type Source[T any] struct {
	db          Queryer
	query       string
	args        []any
	scan        ScanFunc[T]
	placeholder Placeholder
}

var _ pl.Source[int] = (*Source[int])(nil)

// Option configures a Source.
type Option func(*options)

type options struct {
	args        []any
	placeholder Placeholder
}

// WithArgs binds the arguments of the wrapped query.
func WithArgs(args ...any) Option {
	return func(o *options) { o.args = args }
}

// WithPlaceholder sets the bind parameter style, Question by default.
func WithPlaceholder(p Placeholder) Option {
	return func(o *options) { o.placeholder = p }
}

// New returns a Source reading rows of query from db, decoded with scan.
func New[T any](db Queryer, query string, scan ScanFunc[T], opts ...Option) *Source[T] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &Source[T]{
		db:          db,
		query:       query,
		args:        o.args,
		scan:        scan,
		placeholder: o.placeholder,
	}
}

func (s *Source[T]) bind(n int) string {
	if s.placeholder == Dollar {
		return fmt.Sprintf("$%d", len(s.args)+n)
	}
	return "?"
}

// SliceQuery returns the statement used by Slice.
func (s *Source[T]) SliceQuery() string {
	return fmt.Sprintf("SELECT * FROM (%s) AS pagedlist_q LIMIT %s OFFSET %s", s.query, s.bind(1), s.bind(2))
}

// CountQuery returns the statement used by Count.
func (s *Source[T]) CountQuery() string {
	return fmt.Sprintf("SELECT COUNT(*) FROM (%s) AS pagedlist_q", s.query)
}

// Slice runs the query with LIMIT take OFFSET skip.
func (s *Source[T]) Slice(ctx context.Context, skip, take int) ([]T, error) {
	args := append(append([]any{}, s.args...), take, skip)
	rows, err := s.db.QueryContext(ctx, s.SliceQuery(), args...)
	if err != nil {
		return nil, errors.Wrap(err, "sqlsource: query slice")
	}
	defer rows.Close()

	items := make([]T, 0, min(take, 256))
	for rows.Next() {
		item, err := s.scan(rows)
		if err != nil {
			return nil, errors.Wrap(err, "sqlsource: scan row")
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "sqlsource: iterate rows")
	}
	return items, nil
}

// Count runs COUNT(*) over the query.
func (s *Source[T]) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, s.CountQuery(), s.args...).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "sqlsource: query count")
	}
	return n, nil
}

// ScanMap decodes a row into a map keyed by column name.
// []byte values are converted to strings.
func ScanMap(rows *sql.Rows) (map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}

	row := make(map[string]any, len(cols))
	for i, col := range cols {
		if b, ok := values[i].([]byte); ok {
			row[col] = string(b)
			continue
		}
		row[col] = values[i]
	}
	return row, nil
}
