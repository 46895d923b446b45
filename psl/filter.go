package psl

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/satishbabariya/sequel-go/query/ast"
)

var numberPattern = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// filterOr is a disjunction of conjunctions
type filterOr struct {
	And []*filterAnd `@@ ( "OR" @@ )*`
}

type filterAnd struct {
	Terms []*filterUnary `@@ ( "AND" @@ )*`
}

type filterUnary struct {
	Not     *filterUnary   `  "NOT" @@`
	Group   *filterOr      `| "(" @@ ")"`
	Compare *filterCompare `| @@`
}

type filterCompare struct {
	Pos    lexer.Position
	Column string        `@Ident`
	IsNull *filterIsNull `( @@`
	In     *filterIn     `| @@`
	Like   *filterLike   `| @@`
	Op     string        `| @Operator`
	Value  *filterValue  `  @@ )`
}

type filterIsNull struct {
	Not bool `"IS" @"NOT"? "NULL"`
}

type filterIn struct {
	Not    bool           `@"NOT"? "IN"`
	Values []*filterValue `"(" ( @@ ( "," @@ )* )? ")"`
}

type filterLike struct {
	Not     bool   `@"NOT"? "LIKE"`
	Pattern string `@String`
}

type filterValue struct {
	Pos    lexer.Position
	String *string `  @String`
	Number *string `| @Number`
	Bool   *string `| @( "TRUE" | "FALSE" )`
	Null   bool    `| @"NULL"`
}

var filterParser = participle.MustBuild[filterOr](
	participle.Lexer(filterLexer),
	participle.Elide("Whitespace"),
	participle.Unquote("String"),
	participle.CaseInsensitive("Keyword"),
	participle.UseLookahead(3),
)

// ParseFilter parses a filter such as
//
//	name = "John" AND (age > 18 OR age IS NULL) AND NOT name LIKE "J%"
//
// Keywords are case insensitive and strings are double quoted.
func ParseFilter(src string) (ast.Expr, error) {
	tree, err := filterParser.ParseString("filter", src)
	if err != nil {
		return nil, parseError(err)
	}
	return tree.expr()
}

func (o *filterOr) expr() (ast.Expr, error) {
	children := make([]ast.Expr, 0, len(o.And))
	for _, a := range o.And {
		e, err := a.expr()
		if err != nil {
			return nil, err
		}
		children = append(children, e)
	}
	if len(children) == 1 {
		return children[0], nil
	}
	return ast.Or(children...), nil
}

func (a *filterAnd) expr() (ast.Expr, error) {
	children := make([]ast.Expr, 0, len(a.Terms))
	for _, t := range a.Terms {
		e, err := t.expr()
		if err != nil {
			return nil, err
		}
		children = append(children, e)
	}
	if len(children) == 1 {
		return children[0], nil
	}
	return ast.And(children...), nil
}

func (u *filterUnary) expr() (ast.Expr, error) {
	switch {
	case u.Not != nil:
		e, err := u.Not.expr()
		if err != nil {
			return nil, err
		}
		return ast.Not(e), nil
	case u.Group != nil:
		return u.Group.expr()
	default:
		return u.Compare.expr()
	}
}

func (c *filterCompare) expr() (ast.Expr, error) {
	switch {
	case c.IsNull != nil:
		if c.IsNull.Not {
			return ast.IsNotNull(c.Column), nil
		}
		return ast.IsNull(c.Column), nil

	case c.In != nil:
		values := make([]any, 0, len(c.In.Values))
		for _, v := range c.In.Values {
			if v.Null {
				return nil, errorf(v.Pos, "NULL is not allowed in an IN list")
			}
			values = append(values, v.value())
		}
		if c.In.Not {
			return ast.NotIn(c.Column, values...), nil
		}
		return ast.In(c.Column, values...), nil

	case c.Like != nil:
		if c.Like.Not {
			return ast.NotLike(c.Column, c.Like.Pattern), nil
		}
		return ast.Like(c.Column, c.Like.Pattern), nil
	}

	if c.Value.Null {
		switch c.Op {
		case "=":
			return ast.IsNull(c.Column), nil
		case "!=", "<>":
			return ast.IsNotNull(c.Column), nil
		default:
			return nil, errorf(c.Value.Pos, "cannot compare %s with NULL using %s", c.Column, c.Op)
		}
	}

	v := c.Value.value()
	switch c.Op {
	case "=":
		return ast.Eq(c.Column, v), nil
	case "!=", "<>":
		return ast.Ne(c.Column, v), nil
	case "<":
		return ast.Lt(c.Column, v), nil
	case "<=":
		return ast.Lte(c.Column, v), nil
	case ">":
		return ast.Gt(c.Column, v), nil
	case ">=":
		return ast.Gte(c.Column, v), nil
	}
	return nil, errorf(c.Pos, "unknown operator %q", c.Op)
}

// value converts the literal to the Go value bound as a parameter
func (v *filterValue) value() any {
	switch {
	case v.String != nil:
		return *v.String
	case v.Number != nil:
		if !strings.Contains(*v.Number, ".") {
			if n, err := strconv.ParseInt(*v.Number, 10, 64); err == nil {
				return n
			}
		}
		f, _ := strconv.ParseFloat(*v.Number, 64)
		return f
	case v.Bool != nil:
		return strings.EqualFold(*v.Bool, "true")
	}
	panic(fmt.Sprintf("psl: empty filter value at %s", v.Pos))
}
