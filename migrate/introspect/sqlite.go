package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/satishbabariya/sequel-go/schema"
)

const (
	listTablesQuery = `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table'
		  AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`

	tableSQLQuery = `
		SELECT sql
		FROM sqlite_master
		WHERE type = 'table' AND name = ?
	`

	columnsQuery = `
		SELECT cid, name, type, "notnull", dflt_value, pk
		FROM pragma_table_info(?)
		ORDER BY cid
	`

	indexListQuery = `
		SELECT name, "unique", origin
		FROM pragma_index_list(?)
	`

	indexInfoQuery = `
		SELECT name
		FROM pragma_index_info(?)
		ORDER BY seqno
	`

	foreignKeysQuery = `
		SELECT id, seq, "table", "from", "to"
		FROM pragma_foreign_key_list(?)
		ORDER BY id, seq
	`

	primaryKeyQuery = `
		SELECT name
		FROM pragma_table_info(?)
		WHERE pk > 0
		ORDER BY pk
	`

	indexSQLQuery = `
		SELECT sql
		FROM sqlite_master
		WHERE type = 'index' AND tbl_name = ? AND sql IS NOT NULL
		ORDER BY name
	`
)

func (r *Reader) tableSQL(ctx context.Context, name string) (string, bool, error) {
	var createSQL sql.NullString
	err := r.q.QueryRowContext(ctx, tableSQLQuery, name).Scan(&createSQL)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, failed(name, "definition of", err)
	}
	return createSQL.String, true, nil
}

// readColumns reads pragma table_info. The AUTOINCREMENT keyword is not
// reported by any pragma, so it is recovered from the CREATE TABLE text.
func (r *Reader) readColumns(ctx context.Context, table, createSQL string) ([]schema.Column, error) {
	rows, err := r.q.QueryContext(ctx, columnsQuery, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns: %w", err)
	}
	defer rows.Close()

	autoIncrement, err := autoIncrementColumn(createSQL)
	if err != nil {
		return nil, err
	}

	var columns []schema.Column
	for rows.Next() {
		var (
			cid       int
			name      string
			declared  string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &declared, &notNull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}

		col := schema.Column{
			Name:       name,
			Type:       schema.TypeFromDeclared(declared),
			Nullable:   notNull == 0 && pk == 0,
			PrimaryKey: pk > 0,
		}
		if dfltValue.Valid {
			d := dfltValue.String
			col.Default = &d
		}
		if col.PrimaryKey && col.Type == schema.Integer && strings.EqualFold(name, autoIncrement) {
			col.AutoIncrement = true
		}
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

// uniqueColumns returns the columns covered by a single-column UNIQUE
// constraint. Rows are drained before index_info is queried because the
// pool may hold a single connection.
func (r *Reader) uniqueColumns(ctx context.Context, table string) (map[string]bool, error) {
	rows, err := r.q.QueryContext(ctx, indexListQuery, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query indexes: %w", err)
	}

	var candidates []string
	for rows.Next() {
		var (
			name   string
			unique int
			origin string
		)
		if err := rows.Scan(&name, &unique, &origin); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan index: %w", err)
		}
		if unique == 1 && origin == "u" {
			candidates = append(candidates, name)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	result := make(map[string]bool)
	for _, index := range candidates {
		cols, err := r.indexColumns(ctx, index)
		if err != nil {
			return nil, err
		}
		if len(cols) == 1 {
			result[cols[0]] = true
		}
	}
	return result, nil
}

func (r *Reader) indexColumns(ctx context.Context, index string) ([]string, error) {
	rows, err := r.q.QueryContext(ctx, indexInfoQuery, index)
	if err != nil {
		return nil, fmt.Errorf("failed to query index columns: %w", err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name sql.NullString
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan index column: %w", err)
		}
		// expression indexes report a NULL column name
		if name.Valid {
			cols = append(cols, name.String)
		}
	}
	return cols, rows.Err()
}

// references returns the single-column foreign keys keyed by local column
func (r *Reader) references(ctx context.Context, table string) (map[string]*schema.Reference, error) {
	rows, err := r.q.QueryContext(ctx, foreignKeysQuery, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query foreign keys: %w", err)
	}
	defer rows.Close()

	type fkColumn struct {
		from, table, to string
	}
	byID := make(map[int][]fkColumn)
	var ids []int
	for rows.Next() {
		var (
			id, seq  int
			refTable string
			from     string
			to       sql.NullString
		)
		if err := rows.Scan(&id, &seq, &refTable, &from, &to); err != nil {
			return nil, fmt.Errorf("failed to scan foreign key: %w", err)
		}
		if _, ok := byID[id]; !ok {
			ids = append(ids, id)
		}
		byID[id] = append(byID[id], fkColumn{from: from, table: refTable, to: to.String})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	refs := make(map[string]*schema.Reference)
	for _, id := range ids {
		cols := byID[id]
		if len(cols) != 1 {
			continue
		}
		fk := cols[0]
		to := fk.to
		if to == "" {
			// REFERENCES t without a column list targets the primary key of t
			pk, err := r.primaryKey(ctx, fk.table)
			if err != nil {
				return nil, err
			}
			if pk == "" {
				continue
			}
			to = pk
		}
		refs[fk.from] = &schema.Reference{Table: fk.table, Column: to}
	}
	return refs, nil
}

// primaryKey returns the single primary key column of table, or "" when the
// table is missing or its key is composite.
func (r *Reader) primaryKey(ctx context.Context, table string) (string, error) {
	rows, err := r.q.QueryContext(ctx, primaryKeyQuery, table)
	if err != nil {
		return "", fmt.Errorf("failed to query primary key of %s: %w", table, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return "", fmt.Errorf("failed to scan primary key: %w", err)
		}
		cols = append(cols, name)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	if len(cols) != 1 {
		return "", nil
	}
	return cols[0], nil
}
