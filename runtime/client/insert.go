package client

import (
	"context"

	"github.com/satishbabariya/sequel-go/query/builder"
)

// maxVariables is the bound-parameter limit of SQLite builds before 3.32
const maxVariables = 999

// Insert stores records in one transaction. Consecutive records that set the
// same columns share a multi-row INSERT.
func Insert[T any](ctx context.Context, c *Client, records ...T) error {
	if len(records) == 0 {
		return nil
	}
	m, t, err := tableFor[T](c)
	if err != nil {
		return err
	}

	return c.atomic(ctx, func(tx *Client) error {
		var batch *builder.InsertBuilder
		var batchColumns []string

		flush := func() error {
			if batch == nil {
				return nil
			}
			stmt, err := batch.Compile()
			if err != nil {
				return err
			}
			batch = nil
			_, err = tx.exec(ctx, stmt)
			return err
		}

		for i := range records {
			columns, values, err := m.Values(&records[i])
			if err != nil {
				return err
			}

			full := batch != nil && (batch.Len()+1)*max(len(columns), 1) > maxVariables
			if batch != nil && (full || len(columns) == 0 || !equalColumns(batchColumns, columns)) {
				if err := flush(); err != nil {
					return err
				}
			}
			if batch == nil {
				batch = builder.Insert(t)
				batchColumns = columns
			}
			batch.Row(columns, values)

			// DEFAULT VALUES only inserts a single row
			if len(columns) == 0 {
				if err := flush(); err != nil {
					return err
				}
			}
		}
		return flush()
	})
}

// InsertOne stores a single record and returns its rowid
func InsertOne[T any](ctx context.Context, c *Client, record T) (int64, error) {
	m, t, err := tableFor[T](c)
	if err != nil {
		return 0, err
	}
	columns, values, err := m.Values(&record)
	if err != nil {
		return 0, err
	}
	stmt, err := builder.Insert(t).Row(columns, values).Compile()
	if err != nil {
		return 0, err
	}
	res, err := c.exec(ctx, stmt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertID, nil
}

func equalColumns(a, b []string) bool {
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
