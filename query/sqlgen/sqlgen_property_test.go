package sqlgen

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/satishbabariya/sequel-go/query/ast"
)

// buildTree folds values into a tree whose shape is driven by shapes. Every
// third value becomes an IN list of two elements and every fifth an IS NULL.
func buildTree(values []int64, shapes []bool) (ast.Expr, []any) {
	var (
		expr ast.Expr
		want []any
	)
	for i, v := range values {
		var leaf ast.Expr
		switch {
		case i%5 == 4:
			leaf = ast.IsNull("c")
		case i%3 == 2:
			leaf = ast.In("c", v, v+1)
			want = append(want, v, v+1)
		default:
			leaf = ast.Gt("c", v)
			want = append(want, v)
		}

		if expr == nil {
			expr = leaf
			continue
		}
		shape := i < len(shapes) && shapes[i]
		switch {
		case shape && i%2 == 0:
			expr = ast.Or(expr, ast.Not(leaf))
		case shape:
			expr = ast.And(leaf, expr)
			// leaf now precedes the earlier arguments
			want = reorderLeafFirst(want, leaf)
		default:
			expr = ast.And(expr, leaf)
		}
	}
	return expr, want
}

func reorderLeafFirst(want []any, leaf ast.Expr) []any {
	c := leaf.(*ast.Comparison)
	n := 0
	switch {
	case c.Op.IsList():
		n = len(c.Value.([]any))
	case c.Op.HasValue():
		n = 1
	}
	if n == 0 {
		return want
	}
	tail := want[len(want)-n:]
	out := append([]any{}, tail...)
	return append(out, want[:len(want)-n]...)
}

func TestProperty_PlaceholdersMatchArguments(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("one argument per placeholder, in traversal order", prop.ForAll(
		func(values []int64, shapes []bool) bool {
			if len(values) == 0 {
				return true
			}
			expr, want := buildTree(values, shapes)

			sql, args, err := CompileExpr(expr)
			if err != nil {
				return false
			}
			if strings.Count(sql, "?") != len(args) || len(args) != len(want) {
				return false
			}
			for i := range want {
				if args[i] != want[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Int64Range(-1000, 1000)),
		gen.SliceOf(gen.Bool()),
	))

	properties.Property("parentheses balance", prop.ForAll(
		func(values []int64, shapes []bool) bool {
			if len(values) == 0 {
				return true
			}
			expr, _ := buildTree(values, shapes)
			sql, _, err := CompileExpr(expr)
			if err != nil {
				return false
			}
			return strings.Count(sql, "(") == strings.Count(sql, ")")
		},
		gen.SliceOf(gen.Int64Range(-1000, 1000)),
		gen.SliceOf(gen.Bool()),
	))

	properties.TestingRun(t)
}
