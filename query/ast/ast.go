// Package ast defines filter expressions and the statement trees compiled from them.
package ast

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"reflect"
)

// ErrInvalidExpression reports a malformed filter tree
var ErrInvalidExpression = errors.New("invalid filter expression")

// Expr is a filter expression. It is implemented only by *Comparison and
// *Logical, so a type switch over both is exhaustive.
type Expr interface {
	expr()
}

// CompareOp is a comparison operator
type CompareOp string

const (
	OpEq        CompareOp = "="
	OpNe        CompareOp = "!="
	OpLt        CompareOp = "<"
	OpLte       CompareOp = "<="
	OpGt        CompareOp = ">"
	OpGte       CompareOp = ">="
	OpLike      CompareOp = "LIKE"
	OpNotLike   CompareOp = "NOT LIKE"
	OpIn        CompareOp = "IN"
	OpNotIn     CompareOp = "NOT IN"
	OpIsNull    CompareOp = "IS NULL"
	OpIsNotNull CompareOp = "IS NOT NULL"
)

// HasValue reports whether the operator takes an operand
func (op CompareOp) HasValue() bool {
	return op != OpIsNull && op != OpIsNotNull
}

// IsList reports whether the operand is a list
func (op CompareOp) IsList() bool {
	return op == OpIn || op == OpNotIn
}

// LogicalOp is a boolean connective
type LogicalOp string

const (
	OpAnd LogicalOp = "AND"
	OpOr  LogicalOp = "OR"
	OpNot LogicalOp = "NOT"
)

// Comparison compares a column with a value. Value is nil for IS NULL and IS
// NOT NULL and a []any for IN and NOT IN.
type Comparison struct {
	Column string
	Op     CompareOp
	Value  any
}

// Logical combines child expressions. NOT has exactly one child.
type Logical struct {
	Op       LogicalOp
	Children []Expr
}

func (*Comparison) expr() {}
func (*Logical) expr()    {}

func compare(column string, op CompareOp, v any) *Comparison {
	return &Comparison{Column: column, Op: op, Value: v}
}

func Eq(column string, v any) *Comparison      { return compare(column, OpEq, v) }
func Ne(column string, v any) *Comparison      { return compare(column, OpNe, v) }
func Lt(column string, v any) *Comparison      { return compare(column, OpLt, v) }
func Lte(column string, v any) *Comparison     { return compare(column, OpLte, v) }
func Gt(column string, v any) *Comparison      { return compare(column, OpGt, v) }
func Gte(column string, v any) *Comparison     { return compare(column, OpGte, v) }
func Like(column string, p string) *Comparison { return compare(column, OpLike, p) }

// NotLike is the negation of Like
func NotLike(column string, p string) *Comparison { return compare(column, OpNotLike, p) }

// In matches any of vs. An empty list matches nothing.
func In(column string, vs ...any) *Comparison {
	return compare(column, OpIn, append([]any{}, vs...))
}

// NotIn matches none of vs
func NotIn(column string, vs ...any) *Comparison {
	return compare(column, OpNotIn, append([]any{}, vs...))
}

func IsNull(column string) *Comparison    { return compare(column, OpIsNull, nil) }
func IsNotNull(column string) *Comparison { return compare(column, OpIsNotNull, nil) }

// And is true when every child is
func And(children ...Expr) *Logical {
	return &Logical{Op: OpAnd, Children: children}
}

// Or is true when any child is
func Or(children ...Expr) *Logical {
	return &Logical{Op: OpOr, Children: children}
}

// Not negates e
func Not(e Expr) *Logical {
	return &Logical{Op: OpNot, Children: []Expr{e}}
}

// Validate checks the structural invariants of the tree rooted at e
func Validate(e Expr) error {
	switch n := e.(type) {
	case *Comparison:
		if n == nil {
			return fmt.Errorf("%w: nil comparison", ErrInvalidExpression)
		}
		if n.Column == "" {
			return fmt.Errorf("%w: comparison without column", ErrInvalidExpression)
		}
		switch n.Op {
		case OpEq, OpNe, OpLt, OpLte, OpGt, OpGte, OpLike, OpNotLike:
			if IsNullValue(n.Value) {
				return fmt.Errorf("%w: %s on %s needs a non-NULL value, use IsNull or IsNotNull", ErrInvalidExpression, n.Op, n.Column)
			}
		case OpIn, OpNotIn:
			list, ok := n.Value.([]any)
			if !ok {
				return fmt.Errorf("%w: %s on %s needs a list", ErrInvalidExpression, n.Op, n.Column)
			}
			for i, v := range list {
				if IsNullValue(v) {
					return fmt.Errorf("%w: %s on %s has a NULL element at %d", ErrInvalidExpression, n.Op, n.Column, i)
				}
			}
		case OpIsNull, OpIsNotNull:
			if n.Value != nil {
				return fmt.Errorf("%w: %s on %s takes no value", ErrInvalidExpression, n.Op, n.Column)
			}
		default:
			return fmt.Errorf("%w: unknown operator %q", ErrInvalidExpression, n.Op)
		}
		return nil
	case *Logical:
		if n == nil {
			return fmt.Errorf("%w: nil logical node", ErrInvalidExpression)
		}
		switch n.Op {
		case OpAnd, OpOr:
			if len(n.Children) == 0 {
				return fmt.Errorf("%w: %s without operands", ErrInvalidExpression, n.Op)
			}
		case OpNot:
			if len(n.Children) != 1 {
				return fmt.Errorf("%w: NOT takes exactly one operand, got %d", ErrInvalidExpression, len(n.Children))
			}
		default:
			return fmt.Errorf("%w: unknown connective %q", ErrInvalidExpression, n.Op)
		}
		for _, child := range n.Children {
			if err := Validate(child); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: unexpected node %T", ErrInvalidExpression, e)
	}
}

// IsNullValue reports whether v binds as SQL NULL: nil, a nil pointer, map,
// slice or interface, or a driver.Valuer such as an invalid sql.NullString.
// Comparing with NULL matches no row.
func IsNullValue(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		if rv.IsNil() {
			return true
		}
	}
	if valuer, ok := v.(driver.Valuer); ok {
		dv, err := valuer.Value()
		return err == nil && dv == nil
	}
	return false
}

// Columns returns the column names referenced by e in traversal order
func Columns(e Expr) []string {
	var out []string
	var walk func(Expr)
	walk = func(e Expr) {
		switch n := e.(type) {
		case *Comparison:
			out = append(out, n.Column)
		case *Logical:
			for _, child := range n.Children {
				walk(child)
			}
		}
	}
	walk(e)
	return out
}
