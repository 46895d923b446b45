// Package commands implements the sequel command line.
package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/satishbabariya/sequel-go/cli/internal/config"
	"github.com/satishbabariya/sequel-go/cli/internal/ui"
	"github.com/satishbabariya/sequel-go/cli/internal/version"
	"github.com/satishbabariya/sequel-go/internal/debug"
)

// app carries the state shared by every command of one invocation
type app struct {
	v       *viper.Viper
	cfg     *config.Config
	cfgFile string
	dbFlag  string
	debug   bool
}

// NewRootCommand builds the command tree
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "sequel",
		Short: "SQLite schema migrations and queries",
		Long: `sequel keeps a SQLite database in line with the models declared in a
schema file and lets you inspect and query it from the terminal.`,
		Version:       version.Get().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default .sequel.yaml)")
	flags.StringVar(&a.dbFlag, "database", "", "database file or DATABASE_URL style value")
	flags.String("schema", "", "schema file (default schema.sequel)")
	flags.String("driver", "", "sqlite driver: sqlite3 (cgo) or sqlite (pure Go)")
	flags.BoolVar(&a.debug, "debug", false, "enable debug logging")
	_ = a.v.BindPFlag("schema_path", flags.Lookup("schema"))
	_ = a.v.BindPFlag("driver", flags.Lookup("driver"))

	root.AddCommand(
		newInitCommand(a),
		newMigrateCommand(a),
		newDBCommand(a),
		newQueryCommand(a),
		newGenerateCommand(a),
		newFormatCommand(a),
		newValidateCommand(a),
		newVersionCommand(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	if a.debug {
		debug.Init(true)
	}

	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	// An explicit flag beats DATABASE_URL
	if cmd.Flags().Changed("database") {
		cfg.Database = config.DatabasePath(a.dbFlag)
	}
	a.cfg = cfg

	debug.Debug("Loaded configuration", "file", cfg.File, "schema", cfg.SchemaPath, "database", cfg.Database, "driver", cfg.Driver)
	return nil
}

// Execute runs the CLI with the process arguments
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		ui.PrintError("%v", err)
		return err
	}
	return nil
}
