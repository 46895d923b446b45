// Package builder provides statement builders bound to a table descriptor.
//
// Builders validate column references as they are added. The first problem is
// remembered and returned by Compile, so no SQL is produced for a statement
// that names an unknown column.
package builder

import (
	"errors"
	"fmt"

	"github.com/satishbabariya/sequel-go/query/ast"
	"github.com/satishbabariya/sequel-go/query/sqlgen"
	"github.com/satishbabariya/sequel-go/schema"
)

var (
	ErrUnknownColumn            = errors.New("unknown column")
	ErrUnscopedMutationRejected = errors.New("mutation without a filter rejected; call All to affect every row")
	ErrNoAssignments            = sqlgen.ErrNoAssignments
	ErrInvalidLimit             = errors.New("limit and offset must not be negative")
	ErrColumnMismatch           = errors.New("insert rows must set the same columns")
	ErrNoTable                  = errors.New("builder has no table")
)

// Error ties a builder failure to the table and column involved
type Error struct {
	Table  string
	Column string
	Err    error
}

func (e *Error) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("query %s.%s: %v", e.Table, e.Column, e.Err)
	}
	return fmt.Sprintf("query %s: %v", e.Table, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// base holds what every builder shares
type base struct {
	table *schema.Table
	err   error
}

func newBase(t *schema.Table) base {
	b := base{table: t}
	if t == nil {
		b.err = ErrNoTable
	}
	return b
}

func (b *base) fail(column string, err error) {
	if b.err != nil {
		return
	}
	b.err = &Error{Table: b.table.Name, Column: column, Err: err}
}

func (b *base) checkColumn(name string) bool {
	if b.err != nil {
		return false
	}
	if !b.table.HasColumn(name) {
		b.fail(name, ErrUnknownColumn)
		return false
	}
	return true
}

func (b *base) checkExpr(e ast.Expr) bool {
	if b.err != nil {
		return false
	}
	if err := ast.Validate(e); err != nil {
		b.fail("", err)
		return false
	}
	for _, col := range ast.Columns(e) {
		if !b.checkColumn(col) {
			return false
		}
	}
	return true
}

// Err returns the first validation error, if any
func (b *base) Err() error {
	return b.err
}

// Table returns the target descriptor
func (b *base) Table() *schema.Table {
	return b.table
}

// and merges e into the accumulated filter
func and(where, e ast.Expr) ast.Expr {
	if where == nil {
		return e
	}
	if l, ok := where.(*ast.Logical); ok && l.Op == ast.OpAnd {
		children := append(append([]ast.Expr{}, l.Children...), e)
		return ast.And(children...)
	}
	return ast.And(where, e)
}

func compile(err error, node ast.Node) (ast.Statement, error) {
	if err != nil {
		return ast.Statement{}, err
	}
	return sqlgen.Compile(node)
}
