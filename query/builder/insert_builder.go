package builder

import (
	"github.com/satishbabariya/sequel-go/query/ast"
	"github.com/satishbabariya/sequel-go/schema"
)

// InsertBuilder builds a single INSERT carrying one or more rows
type InsertBuilder struct {
	base
	columns []string
	rows    [][]any
}

// Insert starts an insert into t
func Insert(t *schema.Table) *InsertBuilder {
	return &InsertBuilder{base: newBase(t)}
}

// Row adds a row. Every row must name the same columns in the same order.
// A row with no columns inserts DEFAULT VALUES.
func (b *InsertBuilder) Row(columns []string, values []any) *InsertBuilder {
	if b.err != nil {
		return b
	}
	for _, col := range columns {
		if !b.checkColumn(col) {
			return b
		}
	}
	if len(columns) != len(values) {
		b.fail("", ErrColumnMismatch)
		return b
	}

	if len(b.rows) == 0 {
		b.columns = append([]string{}, columns...)
	} else if !sameColumns(b.columns, columns) {
		b.fail("", ErrColumnMismatch)
		return b
	}
	b.rows = append(b.rows, append([]any{}, values...))
	return b
}

// Values adds a row from a column to value map, ordered by the declared columns
func (b *InsertBuilder) Values(row map[string]any) *InsertBuilder {
	if b.err != nil {
		return b
	}
	for col := range row {
		if !b.checkColumn(col) {
			return b
		}
	}

	var (
		columns []string
		values  []any
	)
	for _, col := range b.table.Columns {
		if v, ok := row[col.Name]; ok {
			columns = append(columns, col.Name)
			values = append(values, v)
		}
	}
	return b.Row(columns, values)
}

// Len returns the number of rows added
func (b *InsertBuilder) Len() int {
	return len(b.rows)
}

// Node returns the statement tree
func (b *InsertBuilder) Node() (*ast.Insert, error) {
	if b.err != nil {
		return nil, b.err
	}
	return &ast.Insert{Table: b.table.Name, Columns: b.columns, Rows: b.rows}, nil
}

// Compile produces the SQL text and its arguments
func (b *InsertBuilder) Compile() (ast.Statement, error) {
	node, err := b.Node()
	return compile(err, node)
}

func sameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
