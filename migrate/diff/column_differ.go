package diff

import (
	"strings"

	"github.com/satishbabariya/sequel-go/schema"
)

// ColumnChanges tracks every attribute that differs between a live and a declared column
type ColumnChanges struct {
	TypeChanged          bool
	NullableChanged      bool
	DefaultChanged       bool
	PrimaryKeyChanged    bool
	AutoIncrementChanged bool
	UniqueChanged        bool
	ReferenceChanged     bool
}

// allColumnChanges detects all changes between two columns
func allColumnChanges(prev, next schema.Column) ColumnChanges {
	return ColumnChanges{
		TypeChanged:          prev.Type != next.Type,
		NullableChanged:      prev.Nullable != next.Nullable,
		DefaultChanged:       !schema.DefaultsEqual(prev.Default, next.Default),
		PrimaryKeyChanged:    prev.PrimaryKey != next.PrimaryKey,
		AutoIncrementChanged: prev.AutoIncrement != next.AutoIncrement,
		UniqueChanged:        uniqueConstraint(prev) != uniqueConstraint(next),
		ReferenceChanged:     !referencesMatch(prev.References, next.References),
	}
}

// DiffersInSomething returns true if any change was detected
func (c ColumnChanges) DiffersInSomething() bool {
	return c.DefaultChanged || c.Incompatible()
}

// Incompatible reports changes that cannot be applied without rewriting data
func (c ColumnChanges) Incompatible() bool {
	return c.TypeChanged || c.NullableChanged || c.PrimaryKeyChanged ||
		c.AutoIncrementChanged || c.UniqueChanged || c.ReferenceChanged
}

// Describe lists the incompatible attributes, e.g. "type INTEGER -> TEXT"
func (c ColumnChanges) Describe(prev, next schema.Column) string {
	var parts []string
	if c.TypeChanged {
		parts = append(parts, "type "+prev.Type.DDL()+" -> "+next.Type.DDL())
	}
	if c.NullableChanged {
		parts = append(parts, "nullability "+nullability(prev)+" -> "+nullability(next))
	}
	if c.PrimaryKeyChanged {
		parts = append(parts, "primary key")
	}
	if c.AutoIncrementChanged {
		parts = append(parts, "autoincrement")
	}
	if c.UniqueChanged {
		parts = append(parts, "unique")
	}
	if c.ReferenceChanged {
		parts = append(parts, "reference")
	}
	return strings.Join(parts, ", ")
}

// uniqueConstraint reports whether c needs its own UNIQUE constraint. A
// primary key is unique already, and SQLite reports no separate constraint.
func uniqueConstraint(c schema.Column) bool {
	return c.Unique && !c.PrimaryKey
}

func nullability(c schema.Column) string {
	if c.Nullable {
		return "NULL"
	}
	return "NOT NULL"
}

// referencesMatch compares references case-insensitively, as SQLite identifiers are
func referencesMatch(a, b *schema.Reference) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return strings.EqualFold(a.Table, b.Table) && strings.EqualFold(a.Column, b.Column)
}
