package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/sequel-go/cli/internal/ui"
	"github.com/satishbabariya/sequel-go/cli/internal/watch"
	"github.com/satishbabariya/sequel-go/migrate"
	"github.com/satishbabariya/sequel-go/migrate/domain"
)

func newMigrateCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Bring the database in line with the schema",
		Long: `Compare the models in the schema file with the tables in the database and
apply the difference. There is no migration history: the live schema is the
record of what has been applied.`,
	}

	cmd.AddCommand(
		newMigratePlanCommand(a),
		newMigrateApplyCommand(a),
		newMigrateWatchCommand(a),
	)
	return cmd
}

func newMigratePlanCommand(a *app) *cobra.Command {
	var markdown, showSQL bool

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the operations a migration would run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withEngine(cmd.Context(), func(e *migrate.Engine) error {
				m, err := e.Plan(cmd.Context())
				if err != nil {
					return err
				}
				if m.IsEmpty() {
					ui.PrintSuccess("Database is up to date")
					return nil
				}

				var statements []string
				if showSQL || markdown {
					if statements, err = e.Preview(cmd.Context(), m); err != nil {
						return err
					}
				}

				if markdown {
					return ui.PrintMarkdown(planMarkdown(m, statements))
				}
				if err := printPlan(m); err != nil {
					return err
				}
				if showSQL {
					ui.PrintCodeBlock(strings.Join(statements, ";\n")+";", "sql")
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&markdown, "markdown", false, "render the plan as a markdown report")
	cmd.Flags().BoolVar(&showSQL, "sql", false, "print the SQL the migration would run")
	return cmd
}

func newMigrateApplyCommand(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply the migration in one transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withEngine(cmd.Context(), func(e *migrate.Engine) error {
				_, err := applyMigration(cmd.Context(), e, func(m domain.Migration) (bool, error) {
					if yes {
						return true, nil
					}
					printDestructive(m)
					return confirm("Apply destructive changes?")
				})
				return err
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "apply destructive operations without asking")
	return cmd
}

func newMigrateWatchCommand(a *app) *cobra.Command {
	var allowDestructive bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Migrate every time the schema file changes",
		Long: `Watch the schema file and migrate after every save. Destructive operations
are skipped unless --allow-destructive is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := watch.New(a.cfg.SchemaPath, func(ctx context.Context) error {
				return a.withEngine(ctx, func(e *migrate.Engine) error {
					_, err := applyMigration(ctx, e, func(m domain.Migration) (bool, error) {
						if !allowDestructive {
							printDestructive(m)
							ui.PrintWarning("Skipped: rerun with --allow-destructive to apply")
						}
						return allowDestructive, nil
					})
					return err
				})
			}, watch.WithErrorHandler(func(err error) {
				ui.PrintError("%v", err)
			}))
			if err != nil {
				return err
			}

			ui.PrintInfo("Watching %s, press Ctrl+C to stop", a.cfg.SchemaPath)
			return w.Run(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&allowDestructive, "allow-destructive", false, "apply destructive operations without asking")
	return cmd
}

// applyMigration plans and applies. approve is consulted only when the plan
// contains destructive operations; a refusal leaves the database untouched.
func applyMigration(ctx context.Context, e *migrate.Engine, approve func(domain.Migration) (bool, error)) (domain.Migration, error) {
	m, err := e.Plan(ctx)
	if err != nil {
		return nil, err
	}
	if m.IsEmpty() {
		ui.PrintSuccess("Database is up to date")
		return m, nil
	}

	if m.HasDestructive() {
		ok, err := approve(m)
		if err != nil {
			return nil, err
		}
		if !ok {
			ui.PrintWarning("Migration cancelled")
			return nil, nil
		}
	}

	spinner := ui.Spinner(fmt.Sprintf("Applying %d operations", len(m)))
	if err := e.Apply(ctx, m); err != nil {
		ui.StopSpinner(spinner, false, "Migration failed, nothing was applied")
		return nil, err
	}
	ui.StopSpinner(spinner, true, fmt.Sprintf("Applied %d operations to %s", len(m), strings.Join(m.Tables(), ", ")))
	return m, nil
}

func printPlan(m domain.Migration) error {
	rows := make([][]string, 0, len(m))
	for i, op := range m {
		destructive := ""
		if op.IsDestructive() {
			destructive = ui.Destructive.Sprint("yes")
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), string(op.Kind()), op.TableName(), op.Description(), destructive})
	}
	return ui.PrintTable([]string{"#", "Operation", "Table", "Description", "Destructive"}, rows)
}

func printDestructive(m domain.Migration) {
	ui.PrintWarning("The migration contains destructive operations:")
	for _, op := range m {
		if op.IsDestructive() {
			ui.Destructive.Fprintf(ui.Out, "  • %s\n", op.Description())
		}
	}
}

func planMarkdown(m domain.Migration, statements []string) string {
	var sb strings.Builder
	sb.WriteString("# Migration plan\n\n")
	fmt.Fprintf(&sb, "%d operations on %s.\n\n", len(m), strings.Join(m.Tables(), ", "))

	sb.WriteString("| # | Operation | Table | Description |\n")
	sb.WriteString("|---|-----------|-------|-------------|\n")
	for i, op := range m {
		desc := op.Description()
		if op.IsDestructive() {
			desc = "**" + desc + "**"
		}
		fmt.Fprintf(&sb, "| %d | %s | %s | %s |\n", i+1, op.Kind(), op.TableName(), desc)
	}

	if m.HasDestructive() {
		sb.WriteString("\n> Operations in bold lose data.\n")
	}

	if len(statements) > 0 {
		sb.WriteString("\n## SQL\n\n```sql\n")
		for _, s := range statements {
			sb.WriteString(s)
			sb.WriteString(";\n")
		}
		sb.WriteString("```\n")
	}
	return sb.String()
}
