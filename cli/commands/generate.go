package commands

import (
	"github.com/spf13/cobra"

	"github.com/satishbabariya/sequel-go/cli/internal/config"
	"github.com/satishbabariya/sequel-go/cli/internal/ui"
	"github.com/satishbabariya/sequel-go/generator"
)

func newGenerateCommand(a *app) *cobra.Command {
	var out, pkg string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate Go record types from the schema",
		Long: `Generate one struct per model, tagged for the runtime client, together with
typed column references for building filters.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tables, err := a.loadSchema()
			if err != nil {
				return err
			}
			if out == "" {
				out = a.cfg.OutputPath
			}
			if pkg == "" {
				pkg = a.cfg.Package
			}

			g := generator.New(tables, pkg,
				generator.WithFs(config.AppFs),
				generator.WithSource(a.cfg.SchemaPath),
			)
			path, err := g.WriteFile(out)
			if err != nil {
				return err
			}
			ui.PrintSuccess("Generated %d models in %s", len(tables), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output directory (default from config)")
	cmd.Flags().StringVarP(&pkg, "package", "p", "", "package name (default from config)")
	return cmd
}
