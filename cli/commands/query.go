package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/sequel-go/cli/internal/ui"
	"github.com/satishbabariya/sequel-go/migrate/introspect"
	"github.com/satishbabariya/sequel-go/psl"
	"github.com/satishbabariya/sequel-go/query/ast"
	"github.com/satishbabariya/sequel-go/query/builder"
	"github.com/satishbabariya/sequel-go/query/executor"
)

type queryOptions struct {
	where   string
	columns []string
	order   []string
	limit   int64
	offset  int64
	count   bool
}

func newQueryCommand(a *app) *cobra.Command {
	var opts queryOptions

	cmd := &cobra.Command{
		Use:   "query <table>",
		Short: "Select rows from a table",
		Long: `Select rows from a live table. The filter uses the same operators as the
query builder:

  sequel query users --where 'age >= 18 AND (name LIKE "J%" OR team IS NULL)'
  sequel query users --order -age --order name --limit 10
  sequel query users --where 'id IN (1, 2, 3)' --count`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runQuery(cmd, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.where, "where", "w", "", "filter expression")
	f.StringSliceVarP(&opts.columns, "columns", "c", nil, "columns to select (default all)")
	f.StringSliceVar(&opts.order, "order", nil, "order by column, prefix with - for descending")
	f.Int64VarP(&opts.limit, "limit", "n", 0, "maximum number of rows")
	f.Int64Var(&opts.offset, "offset", 0, "rows to skip")
	f.BoolVar(&opts.count, "count", false, "print the number of matching rows")
	return cmd
}

func (a *app) runQuery(cmd *cobra.Command, table string, opts queryOptions) error {
	ctx := cmd.Context()

	var where ast.Expr
	if opts.where != "" {
		var err error
		if where, err = psl.ParseFilter(opts.where); err != nil {
			return err
		}
	}

	db, err := a.openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	t, err := introspect.NewReader(db).ReadTable(ctx, table)
	if err != nil {
		return err
	}
	if t == nil {
		return fmt.Errorf("table %q does not exist", table)
	}

	b := builder.Select(t)
	if len(opts.columns) > 0 {
		b.Columns(opts.columns...)
	}
	if where != nil {
		b.Where(where)
	}
	exec := executor.New(db)

	if opts.count {
		stmt, err := b.Count().Compile()
		if err != nil {
			return err
		}
		n, err := exec.Count(ctx, stmt)
		if err != nil {
			return err
		}
		fmt.Fprintln(ui.Out, n)
		return nil
	}

	for _, key := range opts.order {
		b.Order(orderKey(key))
	}
	if cmd.Flags().Changed("limit") {
		b.Limit(opts.limit)
	}
	if cmd.Flags().Changed("offset") {
		b.Offset(opts.offset)
	}

	stmt, err := b.Compile()
	if err != nil {
		return err
	}

	var rows [][]string
	err = exec.Query(ctx, stmt, func(values []any) error {
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = formatValue(v)
		}
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return err
	}

	if len(rows) == 0 {
		ui.PrintInfo("No rows")
		return nil
	}
	if err := ui.PrintTable(b.Projection(), rows); err != nil {
		return err
	}
	ui.PrintInfo("%d rows", len(rows))
	return nil
}

// orderKey turns "name", "-name" or "name:desc" into an ordering
func orderKey(key string) ast.OrderBy {
	if strings.HasPrefix(key, "-") {
		return ast.OrderBy{Column: key[1:], Direction: ast.SortDesc}
	}
	if col, dir, ok := strings.Cut(key, ":"); ok {
		if strings.EqualFold(dir, "desc") {
			return ast.OrderBy{Column: col, Direction: ast.SortDesc}
		}
		return ast.OrderBy{Column: col, Direction: ast.SortAsc}
	}
	return ast.OrderBy{Column: key, Direction: ast.SortAsc}
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ui.Null.Sprint("NULL")
	case []byte:
		if len(x) > 16 {
			return fmt.Sprintf("<%d bytes>", len(x))
		}
		return fmt.Sprintf("%x", x)
	case time.Time:
		return x.Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
