package sqlgen

import (
	"strings"

	"github.com/satishbabariya/sequel-go/internal/adapters/sqlite"
	"github.com/satishbabariya/sequel-go/query/ast"
)

// buildExpr walks e depth first. Every placeholder is written in the same
// step that appends its argument, which keeps args in placeholder order.
// e must have passed ast.Validate.
func buildExpr(sb *strings.Builder, args *[]any, e ast.Expr) {
	switch n := e.(type) {
	case *ast.Comparison:
		buildComparison(sb, args, n)

	case *ast.Logical:
		if n.Op == ast.OpNot {
			sb.WriteString("NOT (")
			buildExpr(sb, args, n.Children[0])
			sb.WriteString(")")
			return
		}

		sb.WriteString("(")
		for i, child := range n.Children {
			if i > 0 {
				sb.WriteString(" ")
				sb.WriteString(string(n.Op))
				sb.WriteString(" ")
			}
			buildExpr(sb, args, child)
		}
		sb.WriteString(")")
	}
}

func buildComparison(sb *strings.Builder, args *[]any, c *ast.Comparison) {
	sb.WriteString(sqlite.QuoteIdent(c.Column))
	sb.WriteString(" ")
	sb.WriteString(string(c.Op))

	switch {
	case !c.Op.HasValue():
		return

	case c.Op.IsList():
		values := c.Value.([]any)
		sb.WriteString(" (")
		for i, v := range values {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("?")
			*args = append(*args, v)
		}
		sb.WriteString(")")

	default:
		sb.WriteString(" ?")
		*args = append(*args, c.Value)
	}
}
