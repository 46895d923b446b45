package client

import (
	"context"

	"github.com/satishbabariya/sequel-go/query/ast"
	"github.com/satishbabariya/sequel-go/query/builder"
)

// UpdateQuery changes records of type T
type UpdateQuery[T any] struct {
	c   *Client
	b   *builder.UpdateBuilder
	err error
}

// Update starts an update of the table registered for T. Unless the client
// was configured otherwise, a filter or All is required.
func Update[T any](c *Client) *UpdateQuery[T] {
	_, t, err := tableFor[T](c)
	q := &UpdateQuery[T]{c: c, err: err}
	if err == nil {
		q.b = builder.Update(t).RequireScope(c.cfg.RequireScopedMutations)
	}
	return q
}

// Set assigns v to column
func (q *UpdateQuery[T]) Set(column string, v any) *UpdateQuery[T] {
	if q.b != nil {
		q.b.Set(column, v)
	}
	return q
}

// Assign adds assignments built from typed columns
func (q *UpdateQuery[T]) Assign(assignments ...ast.Assignment) *UpdateQuery[T] {
	if q.b != nil {
		q.b.Assign(assignments...)
	}
	return q
}

// Where adds a filter; repeated calls are combined with AND
func (q *UpdateQuery[T]) Where(e ast.Expr) *UpdateQuery[T] {
	if q.b != nil {
		q.b.Where(e)
	}
	return q
}

// All confirms the update is meant for every record
func (q *UpdateQuery[T]) All() *UpdateQuery[T] {
	if q.b != nil {
		q.b.All()
	}
	return q
}

// Exec runs the update and returns the number of records changed
func (q *UpdateQuery[T]) Exec(ctx context.Context) (int64, error) {
	if q.err != nil {
		return 0, q.err
	}
	stmt, err := q.b.Compile()
	if err != nil {
		return 0, err
	}
	res, err := q.c.exec(ctx, stmt)
	return res.RowsAffected, err
}

// DeleteQuery removes records of type T
type DeleteQuery[T any] struct {
	c   *Client
	b   *builder.DeleteBuilder
	err error
}

// Delete starts a delete from the table registered for T. It follows the
// same scoping rule as Update.
func Delete[T any](c *Client) *DeleteQuery[T] {
	_, t, err := tableFor[T](c)
	q := &DeleteQuery[T]{c: c, err: err}
	if err == nil {
		q.b = builder.Delete(t).RequireScope(c.cfg.RequireScopedMutations)
	}
	return q
}

// Where adds a filter; repeated calls are combined with AND
func (q *DeleteQuery[T]) Where(e ast.Expr) *DeleteQuery[T] {
	if q.b != nil {
		q.b.Where(e)
	}
	return q
}

// All confirms the delete is meant for every record
func (q *DeleteQuery[T]) All() *DeleteQuery[T] {
	if q.b != nil {
		q.b.All()
	}
	return q
}

// Exec runs the delete and returns the number of records removed
func (q *DeleteQuery[T]) Exec(ctx context.Context) (int64, error) {
	if q.err != nil {
		return 0, q.err
	}
	stmt, err := q.b.Compile()
	if err != nil {
		return 0, err
	}
	res, err := q.c.exec(ctx, stmt)
	return res.RowsAffected, err
}
