// Package executor runs compiled statements and converts result values into Go values.
package executor

import (
	"context"
	"database/sql"
	"reflect"

	"github.com/satishbabariya/sequel-go/internal/debug"
	"github.com/satishbabariya/sequel-go/query/ast"
	"github.com/satishbabariya/sequel-go/query/cache"
)

// Querier is satisfied by *sql.DB, *sql.Tx and *sql.Conn
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Result reports the effect of a write
type Result struct {
	RowsAffected int64
	LastInsertID int64
}

// Executor executes queries and hands back raw row values
type Executor struct {
	q     Querier
	stmts *cache.Statements
}

// Option configures an Executor
type Option func(*Executor)

// WithStatementCache reuses prepared statements from c. It has no effect
// inside a transaction, where statements are prepared per call.
func WithStatementCache(c *cache.Statements) Option {
	return func(e *Executor) {
		if _, inTx := e.q.(*sql.Tx); inTx {
			return
		}
		if _, ok := e.q.(cache.Preparer); ok {
			e.stmts = c
		}
	}
}

// New creates an executor over q
func New(q Querier, opts ...Option) *Executor {
	e := &Executor{q: q}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Exec runs a write statement, binding stmt.Args positionally
func (e *Executor) Exec(ctx context.Context, stmt ast.Statement) (Result, error) {
	debug.Debug("Executing statement", "kind", stmt.Kind, "sql", stmt.SQL, "args", len(stmt.Args))

	var (
		res sql.Result
		err error
	)
	if e.stmts != nil {
		var prepared *sql.Stmt
		prepared, err = e.stmts.Prepare(ctx, e.q.(cache.Preparer), stmt.SQL)
		if err == nil {
			res, err = prepared.ExecContext(ctx, stmt.Args...)
		}
	} else {
		res, err = e.q.ExecContext(ctx, stmt.SQL, stmt.Args...)
	}
	if err != nil {
		return Result{}, dbError(stmt.SQL, err)
	}

	var out Result
	if out.RowsAffected, err = res.RowsAffected(); err != nil {
		return Result{}, dbError(stmt.SQL, err)
	}
	if stmt.Kind == ast.KindInsert {
		if out.LastInsertID, err = res.LastInsertId(); err != nil {
			return Result{}, dbError(stmt.SQL, err)
		}
	}
	return out, nil
}

// Query runs a read statement and calls fn with the values of every row, in
// projection order. The slice passed to fn is reused between rows.
func (e *Executor) Query(ctx context.Context, stmt ast.Statement, fn func(values []any) error) error {
	debug.Debug("Executing query", "kind", stmt.Kind, "sql", stmt.SQL, "args", len(stmt.Args))

	rows, err := e.query(ctx, stmt)
	if err != nil {
		return dbError(stmt.SQL, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return dbError(stmt.SQL, err)
	}

	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return dbError(stmt.SQL, err)
		}
		if err := fn(values); err != nil {
			return err
		}
	}
	return dbError(stmt.SQL, rows.Err())
}

// Count runs a SELECT COUNT(*) statement
func (e *Executor) Count(ctx context.Context, stmt ast.Statement) (int64, error) {
	var n int64
	err := e.Query(ctx, stmt, func(values []any) error {
		v, err := toInt(values[0])
		if err != nil {
			return &TypeConversionError{Column: "COUNT(*)", Value: values[0], Target: reflect.TypeOf(n), Reason: err.Error()}
		}
		n = v
		return nil
	})
	return n, err
}

func (e *Executor) query(ctx context.Context, stmt ast.Statement) (*sql.Rows, error) {
	if e.stmts == nil {
		return e.q.QueryContext(ctx, stmt.SQL, stmt.Args...)
	}
	prepared, err := e.stmts.Prepare(ctx, e.q.(cache.Preparer), stmt.SQL)
	if err != nil {
		return nil, err
	}
	return prepared.QueryContext(ctx, stmt.Args...)
}
