package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/satishbabariya/sequel-go/cli/internal/config"
	"github.com/satishbabariya/sequel-go/cli/internal/ui"
	"github.com/satishbabariya/sequel-go/migrate/introspect"
	"github.com/satishbabariya/sequel-go/psl"
	"github.com/satishbabariya/sequel-go/schema"
)

func newDBCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Inspect the live database",
	}

	cmd.AddCommand(
		newDBTablesCommand(a),
		newDBDescribeCommand(a),
		newDBPullCommand(a),
	)
	return cmd
}

func newDBTablesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the tables of the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			tables, err := introspect.NewReader(db).ReadAll(cmd.Context())
			if err != nil {
				return err
			}
			if len(tables) == 0 {
				ui.PrintInfo("No tables in %s", a.cfg.Database)
				return nil
			}

			rows := make([][]string, 0, len(tables))
			for _, t := range tables {
				pk := ""
				if c, ok := t.PrimaryKey(); ok {
					pk = c.Name
				}
				rows = append(rows, []string{t.Name, strconv.Itoa(len(t.Columns)), pk})
			}
			return ui.PrintTable([]string{"Table", "Columns", "Primary key"}, rows)
		},
	}
}

func newDBDescribeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <table>",
		Short: "Show the columns of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			t, err := introspect.NewReader(db).ReadTable(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if t == nil {
				return fmt.Errorf("table %q does not exist", args[0])
			}

			rows := make([][]string, 0, len(t.Columns))
			for _, c := range t.Columns {
				rows = append(rows, []string{c.Name, c.Type.String(), flag(c.Nullable), columnFlags(c), schema.NormalizeDefault(c.Default), reference(c)})
			}
			return ui.PrintTable([]string{"Column", "Type", "Null", "Key", "Default", "References"}, rows)
		},
	}
}

func newDBPullCommand(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "pull [table...]",
		Short: "Write schema models for the live tables",
		Long: `Read the live tables and print them as schema models, or write them to a
file with --out. With no arguments every table is pulled.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			reader := introspect.NewReader(db)
			var tables []*schema.Table
			if len(args) == 0 {
				if tables, err = reader.ReadAll(cmd.Context()); err != nil {
					return err
				}
			}
			for _, name := range args {
				t, err := reader.ReadTable(cmd.Context(), name)
				if err != nil {
					return err
				}
				if t == nil {
					return fmt.Errorf("table %q does not exist", name)
				}
				tables = append(tables, t)
			}
			if len(tables) == 0 {
				ui.PrintInfo("No tables in %s", a.cfg.Database)
				return nil
			}

			src := psl.Render(tables)
			if out == "" {
				fmt.Fprint(ui.Out, src)
				return nil
			}
			if err := afero.WriteFile(config.AppFs, out, []byte(src), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			ui.PrintSuccess("Wrote %d models to %s", len(tables), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "write the models to this file")
	return cmd
}

func flag(b bool) string {
	if b {
		return "yes"
	}
	return ""
}

func columnFlags(c schema.Column) string {
	var flags []string
	if c.PrimaryKey {
		flags = append(flags, "pk")
	}
	if c.AutoIncrement {
		flags = append(flags, "autoincrement")
	}
	if c.Unique {
		flags = append(flags, "unique")
	}
	return strings.Join(flags, ",")
}

func reference(c schema.Column) string {
	if c.References == nil {
		return ""
	}
	return c.References.String()
}
