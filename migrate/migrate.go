// Package migrate reconciles the tables declared in a registry with the schema
// physically present in a SQLite database.
//
// Planning reads the live schema, diffs every declared table and orders the
// resulting operations. Applying runs them in a single immediate transaction.
// No migration history is stored; the live schema is the record of what has
// been applied.
package migrate

import (
	"context"
	"database/sql"

	"github.com/satishbabariya/sequel-go/internal/debug"
	"github.com/satishbabariya/sequel-go/migrate/domain"
	"github.com/satishbabariya/sequel-go/migrate/executor"
	"github.com/satishbabariya/sequel-go/migrate/introspect"
	"github.com/satishbabariya/sequel-go/migrate/planner"
	"github.com/satishbabariya/sequel-go/schema"
)

// Engine is the main migration engine
type Engine struct {
	db       *sql.DB
	registry *schema.Registry
	planner  *planner.Planner
	executor *executor.Executor
}

type options struct {
	dropUnknownTables bool
	minimumVersion    string
}

// Option configures an Engine
type Option func(*options)

// WithDropUnknownTables drops live tables that no declaration mentions
func WithDropUnknownTables(drop bool) Option {
	return func(o *options) {
		o.dropUnknownTables = drop
	}
}

// WithMinimumVersion refuses to migrate on SQLite libraries older than v
func WithMinimumVersion(v string) Option {
	return func(o *options) {
		o.minimumVersion = v
	}
}

// NewEngine creates a new migration engine over db for the tables in registry
func NewEngine(db *sql.DB, registry *schema.Registry, opts ...Option) *Engine {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var execOpts []executor.Option
	if o.minimumVersion != "" {
		execOpts = append(execOpts, executor.WithMinimumVersion(o.minimumVersion))
	}

	return &Engine{
		db:       db,
		registry: registry,
		planner:  planner.NewPlanner(introspect.NewReader(db), planner.WithDropUnknownTables(o.dropUnknownTables)),
		executor: executor.NewExecutor(db, execOpts...),
	}
}

// Plan computes the migration that brings the database in line with the registry
func (e *Engine) Plan(ctx context.Context) (domain.Migration, error) {
	return e.planner.Plan(ctx, e.registry.Tables())
}

// Apply applies m atomically
func (e *Engine) Apply(ctx context.Context, m domain.Migration) error {
	return e.executor.Apply(ctx, m)
}

// Preview returns the SQL Apply would run for m
func (e *Engine) Preview(ctx context.Context, m domain.Migration) ([]string, error) {
	return e.executor.Preview(ctx, m)
}

// Migrate plans and applies in one call and returns what was applied.
// An up to date database yields an empty migration.
func (e *Engine) Migrate(ctx context.Context) (domain.Migration, error) {
	m, err := e.Plan(ctx)
	if err != nil {
		return nil, err
	}
	if m.IsEmpty() {
		debug.Debug("Schema is up to date", "tables", e.registry.Len())
		return m, nil
	}

	for _, op := range m {
		if op.IsDestructive() {
			debug.Warn("Destructive migration step", "op", op.Kind(), "table", op.TableName(), "description", op.Description())
		}
	}

	if err := e.Apply(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Reader returns a live schema reader over the engine's database
func (e *Engine) Reader() *introspect.Reader {
	return introspect.NewReader(e.db)
}
