// Package executor applies migrations to a SQLite database.
package executor

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/satishbabariya/sequel-go/internal/adapters/sqlite"
	"github.com/satishbabariya/sequel-go/internal/debug"
	"github.com/satishbabariya/sequel-go/migrate/domain"
	"github.com/satishbabariya/sequel-go/migrate/introspect"
	"github.com/satishbabariya/sequel-go/migrate/sqlgen"
	"github.com/satishbabariya/sequel-go/schema"
)

// Executor applies migrations
type Executor struct {
	db             *sql.DB
	minimumVersion string
}

// Option configures an Executor
type Option func(*Executor)

// WithMinimumVersion refuses to apply anything on a SQLite library older than v
func WithMinimumVersion(v string) Option {
	return func(e *Executor) {
		e.minimumVersion = v
	}
}

// NewExecutor creates a new migration executor
func NewExecutor(db *sql.DB, opts ...Option) *Executor {
	e := &Executor{db: db}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Apply runs every operation of m inside one transaction. The DSN opens
// transactions with BEGIN IMMEDIATE, so the write lock is held until commit
// or rollback. On failure nothing is applied and the returned
// *domain.MigrationError names the failing operation and table.
func (e *Executor) Apply(ctx context.Context, m domain.Migration) error {
	if m.IsEmpty() {
		debug.Debug("Nothing to migrate")
		return nil
	}

	if err := e.checkVersion(ctx, m); err != nil {
		return err
	}

	startTime := time.Now()

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return &domain.MigrationError{Kind: domain.ExecutionFailed, Detail: "begin transaction", Err: err}
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	reader := introspect.NewReader(tx)
	lookup := func(ctx context.Context, table string) (*schema.Table, []string, error) {
		return readLive(ctx, reader, table)
	}
	for i, op := range m {
		stmts, err := statements(ctx, lookup, op)
		if err != nil {
			_ = tx.Rollback()
			return failure(op, err)
		}

		for _, stmt := range stmts {
			debug.Debug("Executing migration statement", "step", i+1, "op", op.Kind(), "sql", stmt)
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				_ = tx.Rollback()
				debug.Warn("Migration rolled back", "op", op.Kind(), "table", op.TableName(), "error", err)
				return failure(op, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return &domain.MigrationError{Kind: domain.ExecutionFailed, Detail: "commit", Err: err}
	}

	debug.Info("Migration applied", "operations", len(m), "duration", time.Since(startTime))
	return nil
}

// Preview returns the statements Apply would execute against the current
// schema. Nothing is written: the effect of each operation on the tables it
// touches is tracked in memory so later operations see it.
func (e *Executor) Preview(ctx context.Context, m domain.Migration) ([]string, error) {
	reader := introspect.NewReader(e.db)
	tables := make(map[string]*schema.Table)
	indexes := make(map[string][]string)

	lookup := func(ctx context.Context, table string) (*schema.Table, []string, error) {
		if t, ok := tables[table]; ok {
			return t, indexes[table], nil
		}
		t, idx, err := readLive(ctx, reader, table)
		if err != nil {
			return nil, nil, err
		}
		tables[table], indexes[table] = t, idx
		return t, idx, nil
	}

	var all []string
	for _, op := range m {
		stmts, err := statements(ctx, lookup, op)
		if err != nil {
			return nil, failure(op, err)
		}
		all = append(all, stmts...)

		live, _, err := lookup(ctx, op.TableName())
		if err != nil {
			return nil, failure(op, err)
		}
		tables[op.TableName()] = simulate(live, op)
	}
	return all, nil
}

type lookupFunc func(ctx context.Context, table string) (*schema.Table, []string, error)

func statements(ctx context.Context, lookup lookupFunc, op domain.Operation) ([]string, error) {
	if !sqlgen.NeedsRebuild(op) {
		return sqlgen.Generate(op, nil, nil)
	}

	live, indexes, err := lookup(ctx, op.TableName())
	if err != nil {
		return nil, err
	}
	return sqlgen.Generate(op, live, indexes)
}

func readLive(ctx context.Context, reader *introspect.Reader, table string) (*schema.Table, []string, error) {
	live, err := reader.ReadTable(ctx, table)
	if err != nil {
		return nil, nil, err
	}
	indexes, err := reader.IndexSQL(ctx, table)
	if err != nil {
		return nil, nil, err
	}
	return live, indexes, nil
}

// simulate returns live as it looks after op
func simulate(live *schema.Table, op domain.Operation) *schema.Table {
	switch o := op.(type) {
	case *domain.CreateTable:
		return o.Table.Clone()
	case *domain.DropTable:
		return nil
	}
	if live == nil {
		return nil
	}

	next := live.Clone()
	switch o := op.(type) {
	case *domain.AddColumn:
		next.Columns = append(next.Columns, o.Column)
	case *domain.DropColumn:
		cols := next.Columns[:0]
		for _, c := range next.Columns {
			if c.Name != o.Column {
				cols = append(cols, c)
			}
		}
		next.Columns = cols
	case *domain.AlterDefault:
		for i := range next.Columns {
			if next.Columns[i].Name == o.Column {
				next.Columns[i].Default = o.Default
			}
		}
	}
	return next
}

// checkVersion fails before any change is made when the linked SQLite cannot run m
func (e *Executor) checkVersion(ctx context.Context, m domain.Migration) error {
	var dropColumn domain.Operation
	for _, op := range m {
		if op.Kind() == domain.KindDropColumn {
			dropColumn = op
			break
		}
	}
	if dropColumn == nil && e.minimumVersion == "" {
		return nil
	}

	v, err := sqlite.Version(ctx, e.db)
	if err != nil {
		return &domain.MigrationError{Kind: domain.ExecutionFailed, Detail: "version check", Err: err}
	}

	if e.minimumVersion != "" {
		if err := sqlite.RequireVersion(v, ">= "+e.minimumVersion); err != nil {
			return &domain.MigrationError{
				Kind:   domain.ExecutionFailed,
				Detail: err.Error(),
				Err:    domain.ErrUnsupportedSQLiteVersion,
			}
		}
	}

	if dropColumn != nil && !sqlite.Supports(v, sqlite.FeatureDropColumn) {
		return &domain.MigrationError{
			Kind:   domain.ExecutionFailed,
			Table:  dropColumn.TableName(),
			Op:     dropColumn.Kind(),
			Detail: fmt.Sprintf("sqlite %s lacks %s", v, sqlite.FeatureDropColumn),
			Err:    domain.ErrUnsupportedSQLiteVersion,
		}
	}
	return nil
}

func failure(op domain.Operation, err error) *domain.MigrationError {
	merr := &domain.MigrationError{
		Kind:  domain.ExecutionFailed,
		Table: op.TableName(),
		Op:    op.Kind(),
		Err:   err,
	}
	switch o := op.(type) {
	case *domain.AddColumn:
		merr.Column = o.Column.Name
	case *domain.DropColumn:
		merr.Column = o.Column
	case *domain.AlterDefault:
		merr.Column = o.Column
	}
	return merr
}
