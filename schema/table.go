package schema

import (
	"fmt"
	"strings"
)

// Reference points a column at the primary key of another table
type Reference struct {
	Table  string
	Column string
}

// String returns table.column
func (r Reference) String() string {
	return r.Table + "." + r.Column
}

// ParseReference parses "table.column"
func ParseReference(s string) (*Reference, error) {
	table, column, ok := strings.Cut(strings.TrimSpace(s), ".")
	if !ok || table == "" || column == "" {
		return nil, fmt.Errorf("invalid reference %q, expected table.column", s)
	}
	return &Reference{Table: table, Column: column}, nil
}

// Column describes a single column of a table
type Column struct {
	Name          string
	Type          SQLType
	Nullable      bool
	Default       *string
	PrimaryKey    bool
	AutoIncrement bool
	Unique        bool
	References    *Reference
}

// HasDefault reports whether the column carries a non-NULL default
func (c Column) HasDefault() bool {
	return NormalizeDefault(c.Default) != ""
}

// Table describes a table and its columns in declaration order
type Table struct {
	Name    string
	Columns []Column
	// Model identifies the record type the descriptor was produced from.
	Model string
}

// Column returns the named column
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// HasColumn reports whether the table declares the named column
func (t *Table) HasColumn(name string) bool {
	_, ok := t.Column(name)
	return ok
}

// PrimaryKey returns the primary key column, if any
func (t *Table) PrimaryKey() (Column, bool) {
	for _, c := range t.Columns {
		if c.PrimaryKey {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnNames returns the column names in declaration order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Clone returns a deep copy
func (t *Table) Clone() *Table {
	out := &Table{Name: t.Name, Model: t.Model, Columns: make([]Column, len(t.Columns))}
	for i, c := range t.Columns {
		if c.Default != nil {
			d := *c.Default
			c.Default = &d
		}
		if c.References != nil {
			r := *c.References
			c.References = &r
		}
		out.Columns[i] = c
	}
	return out
}

// Validate checks the descriptor invariants
func (t *Table) Validate() error {
	if t.Name == "" {
		return &InvalidDescriptorError{Reason: "table name is empty"}
	}
	if len(t.Columns) == 0 {
		return &InvalidDescriptorError{Table: t.Name, Reason: "table has no columns"}
	}

	seen := make(map[string]bool, len(t.Columns))
	autoIncrement := 0
	primaryKeys := 0
	for _, c := range t.Columns {
		if c.Name == "" {
			return &InvalidDescriptorError{Table: t.Name, Reason: "column name is empty"}
		}
		if seen[c.Name] {
			return &InvalidDescriptorError{Table: t.Name, Column: c.Name, Reason: "duplicate column name"}
		}
		seen[c.Name] = true

		if !c.Type.Valid() {
			return &InvalidDescriptorError{Table: t.Name, Column: c.Name, Reason: "unknown column type"}
		}
		if c.PrimaryKey {
			primaryKeys++
			if c.Nullable {
				return &InvalidDescriptorError{Table: t.Name, Column: c.Name, Reason: "primary key column cannot be nullable"}
			}
		}
		if c.AutoIncrement {
			autoIncrement++
			if !c.PrimaryKey || c.Type != Integer {
				return &InvalidDescriptorError{Table: t.Name, Column: c.Name, Reason: "autoincrement requires an INTEGER primary key"}
			}
		}
	}

	if primaryKeys > 1 {
		return &InvalidDescriptorError{Table: t.Name, Reason: "composite primary keys are not supported"}
	}
	if autoIncrement > 1 {
		return &InvalidDescriptorError{Table: t.Name, Reason: "more than one autoincrement column"}
	}
	return nil
}
