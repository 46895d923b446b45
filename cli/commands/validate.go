package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/sequel-go/cli/internal/ui"
)

func newValidateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the schema file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tables, err := a.loadSchema()
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(tables))
			for _, t := range tables {
				pk := ""
				if c, ok := t.PrimaryKey(); ok {
					pk = c.Name
				}
				rows = append(rows, []string{t.Name, strconv.Itoa(len(t.Columns)), pk})
			}
			if err := ui.PrintTable([]string{"Table", "Columns", "Primary key"}, rows); err != nil {
				return err
			}
			ui.PrintSuccess("%s is valid (%d models)", a.cfg.SchemaPath, len(tables))
			return nil
		},
	}
}
