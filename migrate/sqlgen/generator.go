// Package sqlgen renders migration operations as SQLite DDL.
package sqlgen

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/satishbabariya/sequel-go/internal/adapters/sqlite"
	"github.com/satishbabariya/sequel-go/migrate/domain"
	"github.com/satishbabariya/sequel-go/schema"
)

// ShadowPrefix names the temporary table used while a table is rebuilt
const ShadowPrefix = "_sequel_new_"

// Generate returns the statements implementing op. Operations for which
// NeedsRebuild is true rebuild the table, so they need the live descriptor and
// the DDL of its explicit indexes; the other operations ignore both.
func Generate(op domain.Operation, live *schema.Table, indexes []string) ([]string, error) {
	switch o := op.(type) {
	case *domain.CreateTable:
		return []string{CreateTable(o.Table)}, nil
	case *domain.AddColumn:
		if !NeedsRebuild(op) {
			return []string{AddColumn(o.Table, o.Column)}, nil
		}
		if live == nil {
			return nil, fmt.Errorf("table %s does not exist", o.Table)
		}
		if live.HasColumn(o.Column.Name) {
			return nil, fmt.Errorf("column %s.%s already exists", o.Table, o.Column.Name)
		}
		target := live.Clone()
		target.Columns = append(target.Columns, o.Column)
		return RebuildTable(live, target.Clone(), indexes), nil
	case *domain.DropColumn:
		return []string{DropColumn(o.Table, o.Column)}, nil
	case *domain.DropTable:
		return []string{DropTable(o.Table)}, nil
	case *domain.AlterDefault:
		if live == nil {
			return nil, fmt.Errorf("table %s does not exist", o.Table)
		}
		target := live.Clone()
		found := false
		for i := range target.Columns {
			if target.Columns[i].Name == o.Column {
				target.Columns[i].Default = o.Default
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("column %s.%s does not exist", o.Table, o.Column)
		}
		return RebuildTable(live, target, indexes), nil
	default:
		return nil, fmt.Errorf("unsupported operation %T", op)
	}
}

// NeedsRebuild reports whether op is implemented by rebuilding its table.
// ALTER TABLE ADD COLUMN rejects non-constant defaults once the table has
// rows, so such columns are added by a rebuild as well.
func NeedsRebuild(op domain.Operation) bool {
	switch o := op.(type) {
	case *domain.AlterDefault:
		return true
	case *domain.AddColumn:
		return o.Column.HasDefault() && !ConstantDefault(*o.Column.Default)
	}
	return false
}

var constantDefault = regexp.MustCompile(`^(?i:'(?:[^']|'')*'|[+-]?\d+(?:\.\d*)?(?:e[+-]?\d+)?|[+-]?\.\d+|x'[0-9a-f]*'|null)$`)

// ConstantDefault reports whether d is a literal that ALTER TABLE ADD COLUMN
// accepts. CURRENT_TIMESTAMP and expressions are not.
func ConstantDefault(d string) bool {
	return constantDefault.MatchString(strings.TrimSpace(d))
}

// CreateTable renders CREATE TABLE with column constraints inline
func CreateTable(t *schema.Table) string {
	var sb strings.Builder
	sb.WriteString("CREATE TABLE ")
	sb.WriteString(sqlite.QuoteIdent(t.Name))
	sb.WriteString(" (\n")
	for i, col := range t.Columns {
		sb.WriteString("    ")
		sb.WriteString(ColumnDefinition(col))
		if i < len(t.Columns)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString(")")
	return sb.String()
}

// AddColumn renders ALTER TABLE ADD COLUMN
func AddColumn(table string, col schema.Column) string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", sqlite.QuoteIdent(table), ColumnDefinition(col))
}

// DropColumn renders ALTER TABLE DROP COLUMN (SQLite 3.35.0 and later)
func DropColumn(table, column string) string {
	return fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", sqlite.QuoteIdent(table), sqlite.QuoteIdent(column))
}

// DropTable renders DROP TABLE
func DropTable(table string) string {
	return "DROP TABLE " + sqlite.QuoteIdent(table)
}

// ColumnDefinition renders one column of a CREATE TABLE or ADD COLUMN
func ColumnDefinition(col schema.Column) string {
	parts := []string{sqlite.QuoteIdent(col.Name), col.Type.DDL()}
	if !col.Nullable {
		parts = append(parts, "NOT NULL")
	}
	if col.PrimaryKey {
		parts = append(parts, "PRIMARY KEY")
		if col.AutoIncrement {
			parts = append(parts, "AUTOINCREMENT")
		}
	}
	if col.Unique && !col.PrimaryKey {
		parts = append(parts, "UNIQUE")
	}
	if col.HasDefault() {
		parts = append(parts, "DEFAULT "+defaultClause(*col.Default))
	}
	if col.References != nil {
		parts = append(parts, fmt.Sprintf("REFERENCES %s (%s)",
			sqlite.QuoteIdent(col.References.Table), sqlite.QuoteIdent(col.References.Column)))
	}
	return strings.Join(parts, " ")
}

var literalDefault = regexp.MustCompile(`^(?i:'(?:[^']|'')*'|[+-]?\d+(?:\.\d*)?(?:e[+-]?\d+)?|[+-]?\.\d+|x'[0-9a-f]*'|null|true|false|current_timestamp|current_date|current_time|\(.*\))$`)

// defaultClause returns d unchanged when SQLite accepts it after DEFAULT and
// wraps any other expression in parentheses.
func defaultClause(d string) string {
	d = strings.TrimSpace(d)
	if literalDefault.MatchString(d) {
		return d
	}
	return "(" + d + ")"
}

// RebuildTable returns the statements that replace live with target while
// keeping its rows. Columns present in both are copied. Explicit indexes are
// recreated afterwards from indexes. Foreign key checks are deferred to
// commit so other tables may keep pointing at the rebuilt one. The
// AUTOINCREMENT counter of live carries over, so ids of deleted rows are not
// handed out again.
func RebuildTable(live, target *schema.Table, indexes []string) []string {
	shadow := target.Clone()
	shadow.Name = ShadowPrefix + target.Name

	var shared []string
	for _, col := range target.Columns {
		if live.HasColumn(col.Name) {
			shared = append(shared, sqlite.QuoteIdent(col.Name))
		}
	}
	columnList := strings.Join(shared, ", ")

	stmts := []string{
		"PRAGMA defer_foreign_keys = ON",
		CreateTable(shadow),
	}
	if len(shared) > 0 {
		stmts = append(stmts, fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s",
			sqlite.QuoteIdent(shadow.Name), columnList, columnList, sqlite.QuoteIdent(live.Name)))
	}
	if hasAutoIncrement(live) && hasAutoIncrement(target) {
		stmts = append(stmts,
			"DELETE FROM sqlite_sequence WHERE name = "+*schema.StringDefault(shadow.Name),
			fmt.Sprintf("INSERT INTO sqlite_sequence (name, seq) SELECT %s, seq FROM sqlite_sequence WHERE name = %s",
				*schema.StringDefault(shadow.Name), *schema.StringDefault(live.Name)),
		)
	}
	stmts = append(stmts,
		DropTable(live.Name),
		fmt.Sprintf("ALTER TABLE %s RENAME TO %s", sqlite.QuoteIdent(shadow.Name), sqlite.QuoteIdent(target.Name)),
	)
	stmts = append(stmts, indexes...)
	return stmts
}

func hasAutoIncrement(t *schema.Table) bool {
	for _, c := range t.Columns {
		if c.AutoIncrement {
			return true
		}
	}
	return false
}
