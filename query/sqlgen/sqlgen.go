// Package sqlgen compiles statement trees into SQLite SQL with positional
// placeholders.
package sqlgen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/satishbabariya/sequel-go/internal/adapters/sqlite"
	"github.com/satishbabariya/sequel-go/query/ast"
)

var (
	ErrNoTable       = errors.New("statement has no table")
	ErrNoRows        = errors.New("insert has no rows")
	ErrRowWidth      = errors.New("insert row does not match its column list")
	ErrNoAssignments = errors.New("update has no assignments")
)

// Compile renders node as SQL. Arguments are returned in the order their
// placeholders appear in the text.
func Compile(node ast.Node) (ast.Statement, error) {
	var (
		sql  string
		args []any
		err  error
	)

	switch n := node.(type) {
	case *ast.Select:
		sql, args, err = compileSelect(n)
	case *ast.Insert:
		sql, args, err = compileInsert(n)
	case *ast.Update:
		sql, args, err = compileUpdate(n)
	case *ast.Delete:
		sql, args, err = compileDelete(n)
	default:
		return ast.Statement{}, fmt.Errorf("unsupported statement %T", node)
	}
	if err != nil {
		return ast.Statement{}, err
	}
	return ast.Statement{Kind: node.Kind(), SQL: sql, Args: args}, nil
}

// CompileExpr renders a filter expression on its own
func CompileExpr(e ast.Expr) (string, []any, error) {
	if err := ast.Validate(e); err != nil {
		return "", nil, err
	}
	var sb strings.Builder
	var args []any
	buildExpr(&sb, &args, e)
	return sb.String(), args, nil
}

func compileSelect(s *ast.Select) (string, []any, error) {
	if s.Table == "" {
		return "", nil, ErrNoTable
	}

	var sb strings.Builder
	var args []any

	sb.WriteString("SELECT ")
	switch {
	case s.Count:
		sb.WriteString("COUNT(*)")
	case len(s.Columns) == 0:
		sb.WriteString("*")
	default:
		sb.WriteString(quoteList(s.Columns))
	}
	sb.WriteString(" FROM ")
	sb.WriteString(sqlite.QuoteIdent(s.Table))

	if err := writeWhere(&sb, &args, s.Where); err != nil {
		return "", nil, err
	}

	if s.Count {
		return sb.String(), args, nil
	}

	if len(s.OrderBy) > 0 {
		parts := make([]string, len(s.OrderBy))
		for i, ob := range s.OrderBy {
			direction := ast.SortAsc
			if strings.EqualFold(string(ob.Direction), string(ast.SortDesc)) {
				direction = ast.SortDesc
			}
			parts[i] = sqlite.QuoteIdent(ob.Column) + " " + string(direction)
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(parts, ", "))
	}

	// SQLite only accepts OFFSET after LIMIT; -1 means no limit
	switch {
	case s.Limit != nil:
		sb.WriteString(" LIMIT ?")
		args = append(args, *s.Limit)
	case s.Offset != nil:
		sb.WriteString(" LIMIT -1")
	}
	if s.Offset != nil {
		sb.WriteString(" OFFSET ?")
		args = append(args, *s.Offset)
	}

	return sb.String(), args, nil
}

func compileInsert(s *ast.Insert) (string, []any, error) {
	if s.Table == "" {
		return "", nil, ErrNoTable
	}
	if len(s.Rows) == 0 {
		return "", nil, ErrNoRows
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(sqlite.QuoteIdent(s.Table))

	if len(s.Columns) == 0 {
		if len(s.Rows) > 1 {
			return "", nil, fmt.Errorf("%w: DEFAULT VALUES inserts a single row", ErrRowWidth)
		}
		sb.WriteString(" DEFAULT VALUES")
		return sb.String(), nil, nil
	}

	sb.WriteString(" (")
	sb.WriteString(quoteList(s.Columns))
	sb.WriteString(") VALUES ")

	tuple := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(s.Columns)), ", ") + ")"
	args := make([]any, 0, len(s.Rows)*len(s.Columns))
	for i, row := range s.Rows {
		if len(row) != len(s.Columns) {
			return "", nil, fmt.Errorf("%w: row %d has %d values for %d columns", ErrRowWidth, i, len(row), len(s.Columns))
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(tuple)
		args = append(args, row...)
	}
	return sb.String(), args, nil
}

func compileUpdate(s *ast.Update) (string, []any, error) {
	if s.Table == "" {
		return "", nil, ErrNoTable
	}
	if len(s.Set) == 0 {
		return "", nil, ErrNoAssignments
	}

	var sb strings.Builder
	var args []any

	sb.WriteString("UPDATE ")
	sb.WriteString(sqlite.QuoteIdent(s.Table))
	sb.WriteString(" SET ")
	for i, a := range s.Set {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(sqlite.QuoteIdent(a.Column))
		sb.WriteString(" = ?")
		args = append(args, a.Value)
	}

	if err := writeWhere(&sb, &args, s.Where); err != nil {
		return "", nil, err
	}
	return sb.String(), args, nil
}

func compileDelete(s *ast.Delete) (string, []any, error) {
	if s.Table == "" {
		return "", nil, ErrNoTable
	}

	var sb strings.Builder
	var args []any

	sb.WriteString("DELETE FROM ")
	sb.WriteString(sqlite.QuoteIdent(s.Table))
	if err := writeWhere(&sb, &args, s.Where); err != nil {
		return "", nil, err
	}
	return sb.String(), args, nil
}

func writeWhere(sb *strings.Builder, args *[]any, where ast.Expr) error {
	if where == nil {
		return nil
	}
	if err := ast.Validate(where); err != nil {
		return err
	}
	sb.WriteString(" WHERE ")
	buildExpr(sb, args, where)
	return nil
}

func quoteList(names []string) string {
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = sqlite.QuoteIdent(name)
	}
	return strings.Join(quoted, ", ")
}
