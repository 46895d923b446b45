package builder

import (
	"github.com/satishbabariya/sequel-go/query/ast"
	"github.com/satishbabariya/sequel-go/schema"
)

// SelectBuilder builds SELECT and SELECT COUNT(*) statements
type SelectBuilder struct {
	base
	columns []string
	where   ast.Expr
	orderBy []ast.OrderBy
	limit   *int64
	offset  *int64
	count   bool
}

// Select starts a query over t projecting every declared column
func Select(t *schema.Table) *SelectBuilder {
	return &SelectBuilder{base: newBase(t)}
}

// Columns restricts the projection, keeping the given order
func (s *SelectBuilder) Columns(names ...string) *SelectBuilder {
	for _, name := range names {
		if s.checkColumn(name) {
			s.columns = append(s.columns, name)
		}
	}
	return s
}

// Where adds a filter. Repeated calls are combined with AND.
func (s *SelectBuilder) Where(e ast.Expr) *SelectBuilder {
	if s.checkExpr(e) {
		s.where = and(s.where, e)
	}
	return s
}

// OrderBy appends a sort key
func (s *SelectBuilder) OrderBy(column string, direction ast.SortDirection) *SelectBuilder {
	return s.Order(ast.OrderBy{Column: column, Direction: direction})
}

// Order appends sort keys built from typed columns
func (s *SelectBuilder) Order(keys ...ast.OrderBy) *SelectBuilder {
	for _, key := range keys {
		if s.checkColumn(key.Column) {
			s.orderBy = append(s.orderBy, key)
		}
	}
	return s
}

// Limit caps the number of rows returned
func (s *SelectBuilder) Limit(n int64) *SelectBuilder {
	if n < 0 {
		s.fail("", ErrInvalidLimit)
		return s
	}
	s.limit = &n
	return s
}

// Offset skips the first n rows
func (s *SelectBuilder) Offset(n int64) *SelectBuilder {
	if n < 0 {
		s.fail("", ErrInvalidLimit)
		return s
	}
	s.offset = &n
	return s
}

// Count turns the query into SELECT COUNT(*) with the same filter
func (s *SelectBuilder) Count() *SelectBuilder {
	s.count = true
	return s
}

// Projection returns the selected columns in the order rows will carry them
func (s *SelectBuilder) Projection() []string {
	if len(s.columns) > 0 {
		return append([]string{}, s.columns...)
	}
	if s.table == nil {
		return nil
	}
	return s.table.ColumnNames()
}

// Node returns the statement tree
func (s *SelectBuilder) Node() (*ast.Select, error) {
	if s.err != nil {
		return nil, s.err
	}
	node := &ast.Select{
		Table:   s.table.Name,
		Where:   s.where,
		OrderBy: append([]ast.OrderBy{}, s.orderBy...),
		Limit:   s.limit,
		Offset:  s.offset,
		Count:   s.count,
	}
	if !s.count {
		node.Columns = s.Projection()
	}
	return node, nil
}

// Compile produces the SQL text and its arguments
func (s *SelectBuilder) Compile() (ast.Statement, error) {
	node, err := s.Node()
	return compile(err, node)
}
