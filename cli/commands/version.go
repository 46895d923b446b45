package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/sequel-go/cli/internal/ui"
	"github.com/satishbabariya/sequel-go/cli/internal/version"
	"github.com/satishbabariya/sequel-go/internal/adapters/sqlite"
)

func newVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()

			cfg := sqlite.DefaultConfig()
			if a.cfg.Driver != "" {
				cfg.Driver = a.cfg.Driver
			}
			if db, err := sqlite.Open(cmd.Context(), cfg); err == nil {
				if v, err := sqlite.Version(cmd.Context(), db); err == nil {
					info.SQLite = fmt.Sprintf("%s (%s driver)", v, cfg.Driver)
				}
				db.Close()
			}

			fmt.Fprintln(ui.Out, info.FullString())
			return nil
		},
	}
}
