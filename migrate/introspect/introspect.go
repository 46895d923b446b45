// Package introspect reads the schema physically present in a SQLite database
// and reconstructs table descriptors from it.
package introspect

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/satishbabariya/sequel-go/internal/debug"
	"github.com/satishbabariya/sequel-go/schema"
)

// Querier is the read side of *sql.DB, *sql.Tx and *sql.Conn
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Reader reads live table descriptors. It never writes.
type Reader struct {
	q Querier
}

// NewReader creates a reader over q
func NewReader(q Querier) *Reader {
	return &Reader{q: q}
}

// ReadTable reconstructs the descriptor of the named table.
// It returns nil and no error when the table does not exist.
func (r *Reader) ReadTable(ctx context.Context, name string) (*schema.Table, error) {
	createSQL, exists, err := r.tableSQL(ctx, name)
	if err != nil {
		return nil, err
	}
	if !exists {
		debug.Debug("Live table not found", "table", name)
		return nil, nil
	}

	columns, err := r.readColumns(ctx, name, createSQL)
	if err != nil {
		return nil, failed(name, "columns of", err)
	}

	unique, err := r.uniqueColumns(ctx, name)
	if err != nil {
		return nil, failed(name, "indexes of", err)
	}

	refs, err := r.references(ctx, name)
	if err != nil {
		return nil, failed(name, "foreign keys of", err)
	}

	for i := range columns {
		c := &columns[i]
		if unique[c.Name] && !c.PrimaryKey {
			c.Unique = true
		}
		if ref, ok := refs[c.Name]; ok {
			c.References = ref
		}
	}

	return &schema.Table{Name: name, Columns: columns}, nil
}

// ListTables returns the user tables of the database ordered by name
func (r *Reader) ListTables(ctx context.Context) ([]string, error) {
	rows, err := r.q.QueryContext(ctx, listTablesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table: %w", err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// ReadAll reads every user table
func (r *Reader) ReadAll(ctx context.Context) ([]*schema.Table, error) {
	names, err := r.ListTables(ctx)
	if err != nil {
		return nil, err
	}

	tables := make([]*schema.Table, 0, len(names))
	for _, name := range names {
		t, err := r.ReadTable(ctx, name)
		if err != nil {
			return nil, err
		}
		if t != nil {
			tables = append(tables, t)
		}
	}
	return tables, nil
}

// IndexSQL returns the CREATE INDEX statements of explicitly created indexes on table
func (r *Reader) IndexSQL(ctx context.Context, table string) ([]string, error) {
	rows, err := r.q.QueryContext(ctx, indexSQLQuery, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query indexes: %w", err)
	}
	defer rows.Close()

	var stmts []string
	for rows.Next() {
		var stmt string
		if err := rows.Scan(&stmt); err != nil {
			return nil, fmt.Errorf("failed to scan index: %w", err)
		}
		stmts = append(stmts, stmt)
	}
	return stmts, rows.Err()
}
