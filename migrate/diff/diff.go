// Package diff compares a declared table with the live one and produces the
// operations that reconcile them.
package diff

import (
	"fmt"

	"github.com/satishbabariya/sequel-go/internal/debug"
	"github.com/satishbabariya/sequel-go/migrate/domain"
	"github.com/satishbabariya/sequel-go/schema"
)

// Plan computes the operations that move live toward declared. A nil live
// table plans a single CreateTable.
//
// Added columns come first in declared order, then dropped columns in live
// order, then default changes in declared order. The first policy violation
// found in that order is returned as a *domain.MigrationError.
func Plan(declared, live *schema.Table) (domain.Migration, error) {
	if declared == nil {
		return nil, fmt.Errorf("diff: declared table is nil")
	}
	if live == nil {
		debug.Debug("Planning table creation", "table", declared.Name)
		return domain.Migration{&domain.CreateTable{Table: declared.Clone()}}, nil
	}

	var (
		added   domain.Migration
		dropped domain.Migration
		altered domain.Migration
	)

	for _, col := range declared.Columns {
		liveCol, exists := live.Column(col.Name)
		if !exists {
			if err := checkAddable(declared.Name, col); err != nil {
				return nil, err
			}
			added = append(added, &domain.AddColumn{Table: declared.Name, Column: cloneColumn(col)})
			continue
		}

		changes := allColumnChanges(liveCol, col)
		if changes.Incompatible() {
			return nil, &domain.MigrationError{
				Kind:   domain.IncompatibleColumnChange,
				Table:  declared.Name,
				Column: col.Name,
				Detail: changes.Describe(liveCol, col),
			}
		}
		if changes.DefaultChanged {
			altered = append(altered, &domain.AlterDefault{
				Table:   declared.Name,
				Column:  col.Name,
				Default: cloneDefault(col.Default),
			})
		}
	}

	for _, col := range live.Columns {
		if !declared.HasColumn(col.Name) {
			dropped = append(dropped, &domain.DropColumn{Table: declared.Name, Column: col.Name})
		}
	}

	m := make(domain.Migration, 0, len(added)+len(dropped)+len(altered))
	m = append(m, added...)
	m = append(m, dropped...)
	m = append(m, altered...)

	if !m.IsEmpty() {
		debug.Debug("Planned table changes", "table", declared.Name,
			"add", len(added), "drop", len(dropped), "alter_default", len(altered))
	}
	return m, nil
}

// checkAddable enforces what ALTER TABLE ADD COLUMN can do on a table that may
// already hold rows.
func checkAddable(table string, col schema.Column) error {
	switch {
	case col.PrimaryKey:
		return &domain.MigrationError{
			Kind:   domain.IncompatibleColumnChange,
			Table:  table,
			Column: col.Name,
			Detail: "cannot add a primary key column to an existing table",
		}
	case col.Unique:
		return &domain.MigrationError{
			Kind:   domain.IncompatibleColumnChange,
			Table:  table,
			Column: col.Name,
			Detail: "cannot add a unique column to an existing table",
		}
	case !col.Nullable && !col.HasDefault():
		return &domain.MigrationError{
			Kind:   domain.MissingDefaultForNonNullableColumn,
			Table:  table,
			Column: col.Name,
		}
	}
	return nil
}

func cloneColumn(c schema.Column) schema.Column {
	c.Default = cloneDefault(c.Default)
	if c.References != nil {
		r := *c.References
		c.References = &r
	}
	return c
}

func cloneDefault(d *string) *string {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}
