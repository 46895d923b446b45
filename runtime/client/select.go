package client

import (
	"context"

	"github.com/satishbabariya/sequel-go/query/ast"
	"github.com/satishbabariya/sequel-go/query/builder"
	"github.com/satishbabariya/sequel-go/runtime/model"
	"github.com/satishbabariya/sequel-go/schema"
)

// SelectQuery reads records of type T
type SelectQuery[T any] struct {
	c      *Client
	model  *model.Model
	table  *schema.Table
	err    error
	where  []ast.Expr
	order  []ast.OrderBy
	limit  *int64
	offset *int64
}

// Select starts a query over the table registered for T
func Select[T any](c *Client) *SelectQuery[T] {
	m, t, err := tableFor[T](c)
	return &SelectQuery[T]{c: c, model: m, table: t, err: err}
}

// Where adds a filter; repeated calls are combined with AND
func (q *SelectQuery[T]) Where(e ast.Expr) *SelectQuery[T] {
	q.where = append(q.where, e)
	return q
}

// OrderBy appends a sort key
func (q *SelectQuery[T]) OrderBy(column string, dir ast.SortDirection) *SelectQuery[T] {
	q.order = append(q.order, ast.OrderBy{Column: column, Direction: dir})
	return q
}

// Order appends sort keys built from typed columns
func (q *SelectQuery[T]) Order(keys ...ast.OrderBy) *SelectQuery[T] {
	q.order = append(q.order, keys...)
	return q
}

// Limit caps the number of records returned
func (q *SelectQuery[T]) Limit(n int64) *SelectQuery[T] {
	q.limit = &n
	return q
}

// Offset skips the first n records
func (q *SelectQuery[T]) Offset(n int64) *SelectQuery[T] {
	q.offset = &n
	return q
}

func (q *SelectQuery[T]) builder() *builder.SelectBuilder {
	b := builder.Select(q.table)
	for _, e := range q.where {
		b.Where(e)
	}
	b.Order(q.order...)
	if q.limit != nil {
		b.Limit(*q.limit)
	}
	if q.offset != nil {
		b.Offset(*q.offset)
	}
	return b
}

// Exec runs the query and returns the matching records
func (q *SelectQuery[T]) Exec(ctx context.Context) ([]T, error) {
	if q.err != nil {
		return nil, q.err
	}
	b := q.builder()
	stmt, err := b.Compile()
	if err != nil {
		return nil, err
	}
	columns := b.Projection()

	var out []T
	err = q.c.query(ctx, stmt, func(values []any) error {
		var rec T
		if err := q.model.Scan(&rec, columns, values); err != nil {
			return err
		}
		out = append(out, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// First returns the first matching record, or ErrNotFound
func (q *SelectQuery[T]) First(ctx context.Context) (*T, error) {
	one := *q
	one.where = append([]ast.Expr{}, q.where...)
	one.Limit(1)

	recs, err := one.Exec(ctx)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, ErrNotFound
	}
	return &recs[0], nil
}

// Count returns the number of matching records. Order, limit and offset are ignored.
func (q *SelectQuery[T]) Count(ctx context.Context) (int64, error) {
	if q.err != nil {
		return 0, q.err
	}
	b := builder.Select(q.table)
	for _, e := range q.where {
		b.Where(e)
	}
	stmt, err := b.Count().Compile()
	if err != nil {
		return 0, err
	}
	return q.c.count(ctx, stmt)
}

// Count returns the number of records of type T matching every filter
func Count[T any](ctx context.Context, c *Client, where ...ast.Expr) (int64, error) {
	q := Select[T](c)
	for _, e := range where {
		q.Where(e)
	}
	return q.Count(ctx)
}
