package commands

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/afero"

	"github.com/satishbabariya/sequel-go/cli/internal/config"
	"github.com/satishbabariya/sequel-go/internal/adapters/sqlite"
	"github.com/satishbabariya/sequel-go/migrate"
	"github.com/satishbabariya/sequel-go/psl"
	"github.com/satishbabariya/sequel-go/schema"
)

// confirm asks a yes/no question. Tests replace it.
var confirm = func(message string) (bool, error) {
	ok := false
	if err := survey.AskOne(&survey.Confirm{Message: message, Default: false}, &ok); err != nil {
		return false, err
	}
	return ok, nil
}

// readSchema returns the raw schema source
func (a *app) readSchema() (string, error) {
	data, err := afero.ReadFile(config.AppFs, a.cfg.SchemaPath)
	if err != nil {
		return "", fmt.Errorf("failed to read schema: %w", err)
	}
	return string(data), nil
}

// loadSchema parses the schema file into table descriptors
func (a *app) loadSchema() ([]*schema.Table, error) {
	src, err := a.readSchema()
	if err != nil {
		return nil, err
	}
	return psl.Load(a.cfg.SchemaPath, src)
}

// openDB opens the configured database
func (a *app) openDB(ctx context.Context) (*sql.DB, error) {
	cfg := sqlite.DefaultConfig()
	cfg.Path = a.cfg.Database
	if a.cfg.Driver != "" {
		cfg.Driver = a.cfg.Driver
	}
	return sqlite.Open(ctx, cfg)
}

// engine builds a migration engine for tables over db
func (a *app) engine(db *sql.DB, tables []*schema.Table) (*migrate.Engine, error) {
	registry := schema.NewRegistry()
	for _, t := range tables {
		if err := registry.Register(t); err != nil {
			return nil, err
		}
	}

	opts := []migrate.Option{migrate.WithDropUnknownTables(a.cfg.DropUnknownTables)}
	if a.cfg.MinimumVersion != "" {
		opts = append(opts, migrate.WithMinimumVersion(a.cfg.MinimumVersion))
	}
	return migrate.NewEngine(db, registry, opts...), nil
}

// withEngine loads the schema, opens the database and hands both to fn
func (a *app) withEngine(ctx context.Context, fn func(e *migrate.Engine) error) error {
	tables, err := a.loadSchema()
	if err != nil {
		return err
	}

	db, err := a.openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	e, err := a.engine(db, tables)
	if err != nil {
		return err
	}
	return fn(e)
}
