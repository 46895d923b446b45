// Package columns provides typed column references. The value type of a
// column fixes the type of every operand passed to it at compile time.
package columns

import (
	"github.com/satishbabariya/sequel-go/query/ast"
)

// Ref is implemented by every typed column
type Ref interface {
	Name() string
	Table() string
}

// Column is a column of table whose values have type V
type Column[V any] struct {
	table string
	name  string
}

// New creates a column reference
func New[V any](table, name string) Column[V] {
	return Column[V]{table: table, name: name}
}

// Name returns the column name
func (c Column[V]) Name() string { return c.name }

// Table returns the table name
func (c Column[V]) Table() string { return c.table }

func (c Column[V]) Eq(v V) ast.Expr  { return ast.Eq(c.name, v) }
func (c Column[V]) Ne(v V) ast.Expr  { return ast.Ne(c.name, v) }
func (c Column[V]) Lt(v V) ast.Expr  { return ast.Lt(c.name, v) }
func (c Column[V]) Lte(v V) ast.Expr { return ast.Lte(c.name, v) }
func (c Column[V]) Gt(v V) ast.Expr  { return ast.Gt(c.name, v) }
func (c Column[V]) Gte(v V) ast.Expr { return ast.Gte(c.name, v) }

// In matches any of vs
func (c Column[V]) In(vs ...V) ast.Expr {
	return ast.In(c.name, toAny(vs)...)
}

// NotIn matches none of vs
func (c Column[V]) NotIn(vs ...V) ast.Expr {
	return ast.NotIn(c.name, toAny(vs)...)
}

func (c Column[V]) IsNull() ast.Expr    { return ast.IsNull(c.name) }
func (c Column[V]) IsNotNull() ast.Expr { return ast.IsNotNull(c.name) }

// Asc orders by the column ascending
func (c Column[V]) Asc() ast.OrderBy {
	return ast.OrderBy{Column: c.name, Direction: ast.SortAsc}
}

// Desc orders by the column descending
func (c Column[V]) Desc() ast.OrderBy {
	return ast.OrderBy{Column: c.name, Direction: ast.SortDesc}
}

// Set builds an assignment for an update
func (c Column[V]) Set(v V) ast.Assignment {
	return ast.Assignment{Column: c.name, Value: v}
}

// TextColumn is a string column, which also supports pattern matching
type TextColumn struct {
	Column[string]
}

// Text creates a string column reference
func Text(table, name string) TextColumn {
	return TextColumn{Column: New[string](table, name)}
}

// Like matches pattern with SQL LIKE semantics
func (c TextColumn) Like(pattern string) ast.Expr {
	return ast.Like(c.name, pattern)
}

// NotLike is the negation of Like
func (c TextColumn) NotLike(pattern string) ast.Expr {
	return ast.NotLike(c.name, pattern)
}

func toAny[V any](vs []V) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}
