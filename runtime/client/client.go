// Package client is the application facing API of sequel-go: register record
// types, migrate the database to match them and run typed queries.
//
//	c, err := client.Open(ctx, client.WithPath("app.db"))
//	if err != nil {
//		return err
//	}
//	defer c.Close()
//
//	if err := client.Register[User](c); err != nil {
//		return err
//	}
//	if err := c.Migrate(ctx); err != nil {
//		return err
//	}
//	users, err := client.Select[User](c).Where(ast.Eq("name", "John")).Exec(ctx)
package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/satishbabariya/sequel-go/internal/adapters/sqlite"
	"github.com/satishbabariya/sequel-go/internal/debug"
	"github.com/satishbabariya/sequel-go/migrate"
	"github.com/satishbabariya/sequel-go/migrate/domain"
	"github.com/satishbabariya/sequel-go/migrate/introspect"
	"github.com/satishbabariya/sequel-go/query/ast"
	"github.com/satishbabariya/sequel-go/query/cache"
	"github.com/satishbabariya/sequel-go/query/executor"
	"github.com/satishbabariya/sequel-go/runtime/model"
	"github.com/satishbabariya/sequel-go/schema"
)

// querier is satisfied by *sql.DB and *sql.Tx
type querier interface {
	executor.Querier
	introspect.Querier
}

// Client is a connection to one SQLite database together with the tables
// registered against it. A Client returned by Transaction runs everything
// inside that transaction.
type Client struct {
	db       *sql.DB
	q        querier
	tx       *sql.Tx
	depth    int
	owned    bool
	cfg      Config
	registry *schema.Registry
	engine   *migrate.Engine
	stmts    *cache.Statements
}

// Open opens the database described by the options
func Open(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := newConfig(opts)

	db, err := sqlite.Open(ctx, sqlite.Config{
		Path:           cfg.Path,
		Driver:         cfg.Driver,
		BusyTimeout:    cfg.BusyTimeout,
		ForeignKeys:    true,
		ConnectTimeout: cfg.ConnectTimeout,
	})
	if err != nil {
		return nil, err
	}

	c := newClient(db, cfg)
	c.owned = true
	return c, nil
}

// NewFromDB wraps an open database. Close leaves db open.
func NewFromDB(db *sql.DB, opts ...Option) *Client {
	return newClient(db, newConfig(opts))
}

func newClient(db *sql.DB, cfg Config) *Client {
	registry := schema.NewRegistry()

	var engineOpts []migrate.Option
	engineOpts = append(engineOpts, migrate.WithDropUnknownTables(cfg.DropUnknownTables))
	if cfg.MinimumVersion != "" {
		engineOpts = append(engineOpts, migrate.WithMinimumVersion(cfg.MinimumVersion))
	}

	c := &Client{
		db:       db,
		q:        db,
		cfg:      cfg,
		registry: registry,
		engine:   migrate.NewEngine(db, registry, engineOpts...),
	}
	if cfg.StatementCacheSize > 0 {
		c.stmts = cache.NewStatements(cfg.StatementCacheSize)
	}
	return c
}

// Close releases cached statements and closes the database if Open created it
func (c *Client) Close() error {
	if c.tx != nil {
		return ErrInTransaction
	}
	if c.stmts != nil {
		c.stmts.Clear()
	}
	if !c.owned {
		return nil
	}
	return c.db.Close()
}

// DB returns the underlying database handle
func (c *Client) DB() *sql.DB {
	return c.db
}

// Registry returns the tables registered with the client
func (c *Client) Registry() *schema.Registry {
	return c.registry
}

// Use appends middlewares that run around every statement
func (c *Client) Use(mw ...Middleware) {
	c.cfg.Middlewares = append(c.cfg.Middlewares, mw...)
}

// Register derives the descriptor of T and adds it to the registry
func Register[T any](c *Client) error {
	m, err := model.Of[T]()
	if err != nil {
		return fmt.Errorf("failed to describe %T: %w", *new(T), err)
	}
	return c.registry.Register(m.Table)
}

// RegisterTable adds a descriptor that was not produced from a Go type, such
// as one parsed from a schema file
func (c *Client) RegisterTable(t *schema.Table) error {
	return c.registry.Register(t)
}

// PlanMigration computes the operations Migrate would apply
func (c *Client) PlanMigration(ctx context.Context) (domain.Migration, error) {
	if c.tx != nil {
		return nil, ErrInTransaction
	}
	return c.engine.Plan(ctx)
}

// Migrate brings the database in line with the registered tables
func (c *Client) Migrate(ctx context.Context) error {
	if c.tx != nil {
		return ErrInTransaction
	}
	m, err := c.engine.Migrate(ctx)
	if err != nil {
		return err
	}
	if !m.IsEmpty() {
		debug.Info("Applied migration", "operations", len(m), "tables", m.Tables())
	}
	return nil
}

// Tables lists the tables present in the database
func (c *Client) Tables(ctx context.Context) ([]string, error) {
	return introspect.NewReader(c.q).ListTables(ctx)
}

// tableFor resolves the model of T and the descriptor registered for it
func tableFor[T any](c *Client) (*model.Model, *schema.Table, error) {
	m, err := model.Of[T]()
	if err != nil {
		return nil, nil, err
	}
	t, ok := c.registry.Lookup(m.Table.Name)
	if !ok || (t.Model != "" && t.Model != m.Table.Model) {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotRegistered, m.Table.Model)
	}
	return m, t, nil
}

func (c *Client) executor() *executor.Executor {
	if c.stmts == nil {
		return executor.New(c.q)
	}
	return executor.New(c.q, executor.WithStatementCache(c.stmts))
}

func (c *Client) exec(ctx context.Context, stmt ast.Statement) (executor.Result, error) {
	var res executor.Result
	err := c.intercept(ctx, stmt, func() error {
		var err error
		res, err = c.executor().Exec(ctx, stmt)
		return err
	})
	return res, err
}

func (c *Client) query(ctx context.Context, stmt ast.Statement, fn func(values []any) error) error {
	return c.intercept(ctx, stmt, func() error {
		return c.executor().Query(ctx, stmt, fn)
	})
}

func (c *Client) count(ctx context.Context, stmt ast.Statement) (int64, error) {
	var n int64
	err := c.intercept(ctx, stmt, func() error {
		var err error
		n, err = c.executor().Count(ctx, stmt)
		return err
	})
	return n, err
}
