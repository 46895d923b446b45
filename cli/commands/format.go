package commands

import (
	"errors"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/satishbabariya/sequel-go/cli/internal/config"
	"github.com/satishbabariya/sequel-go/cli/internal/ui"
	"github.com/satishbabariya/sequel-go/psl"
)

// ErrNotFormatted is returned by fmt --check when the schema would change
var ErrNotFormatted = errors.New("schema is not formatted")

func newFormatCommand(a *app) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "fmt",
		Short: "Rewrite the schema file in canonical form",
		Long: `Rewrite the schema file with aligned columns and canonical attributes.
Comments are not preserved.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := a.readSchema()
			if err != nil {
				return err
			}
			tables, err := psl.Load(a.cfg.SchemaPath, src)
			if err != nil {
				return err
			}

			formatted := psl.Render(tables)
			if formatted == src {
				ui.PrintSuccess("%s is formatted", a.cfg.SchemaPath)
				return nil
			}
			if check {
				ui.PrintDiff(src, formatted)
				return ErrNotFormatted
			}

			if err := afero.WriteFile(config.AppFs, a.cfg.SchemaPath, []byte(formatted), 0o644); err != nil {
				return err
			}
			ui.PrintSuccess("Formatted %s", a.cfg.SchemaPath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "fail instead of rewriting when the file is not formatted")
	return cmd
}
