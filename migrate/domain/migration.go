// Package domain defines the structural operations a migration is made of.
package domain

import (
	"fmt"

	"github.com/satishbabariya/sequel-go/schema"
)

// OperationKind identifies an operation variant
type OperationKind string

const (
	KindCreateTable  OperationKind = "CreateTable"
	KindAddColumn    OperationKind = "AddColumn"
	KindDropColumn   OperationKind = "DropColumn"
	KindAlterDefault OperationKind = "AlterDefault"
	KindDropTable    OperationKind = "DropTable"
)

// Operation is a single structural change to one table
type Operation interface {
	Kind() OperationKind
	TableName() string
	Description() string
	IsDestructive() bool
}

// CreateTable creates a table from its declared descriptor
type CreateTable struct {
	Table *schema.Table
}

func (o *CreateTable) Kind() OperationKind { return KindCreateTable }
func (o *CreateTable) TableName() string   { return o.Table.Name }
func (o *CreateTable) IsDestructive() bool { return false }

func (o *CreateTable) Description() string {
	return fmt.Sprintf("Create table %s with %d columns", o.Table.Name, len(o.Table.Columns))
}

// AddColumn adds a column to an existing table
type AddColumn struct {
	Table  string
	Column schema.Column
}

func (o *AddColumn) Kind() OperationKind { return KindAddColumn }
func (o *AddColumn) TableName() string   { return o.Table }
func (o *AddColumn) IsDestructive() bool { return false }

func (o *AddColumn) Description() string {
	return fmt.Sprintf("Add column %s.%s (%s)", o.Table, o.Column.Name, o.Column.Type)
}

// DropColumn removes a column and its data
type DropColumn struct {
	Table  string
	Column string
}

func (o *DropColumn) Kind() OperationKind { return KindDropColumn }
func (o *DropColumn) TableName() string   { return o.Table }
func (o *DropColumn) IsDestructive() bool { return true }

func (o *DropColumn) Description() string {
	return fmt.Sprintf("Drop column %s.%s", o.Table, o.Column)
}

// AlterDefault changes the default value of an existing column.
// A nil Default removes the default.
type AlterDefault struct {
	Table   string
	Column  string
	Default *string
}

func (o *AlterDefault) Kind() OperationKind { return KindAlterDefault }
func (o *AlterDefault) TableName() string   { return o.Table }
func (o *AlterDefault) IsDestructive() bool { return false }

func (o *AlterDefault) Description() string {
	if o.Default == nil {
		return fmt.Sprintf("Remove default of %s.%s", o.Table, o.Column)
	}
	return fmt.Sprintf("Set default of %s.%s to %s", o.Table, o.Column, *o.Default)
}

// DropTable removes a table that is no longer declared
type DropTable struct {
	Table string
}

func (o *DropTable) Kind() OperationKind { return KindDropTable }
func (o *DropTable) TableName() string   { return o.Table }
func (o *DropTable) IsDestructive() bool { return true }

func (o *DropTable) Description() string {
	return fmt.Sprintf("Drop table %s", o.Table)
}

// Migration is an ordered sequence of operations
type Migration []Operation

// IsEmpty reports whether there is nothing to apply
func (m Migration) IsEmpty() bool {
	return len(m) == 0
}

// HasDestructive reports whether any operation loses data
func (m Migration) HasDestructive() bool {
	for _, op := range m {
		if op.IsDestructive() {
			return true
		}
	}
	return false
}

// Tables returns the distinct table names touched, in first-seen order
func (m Migration) Tables() []string {
	seen := make(map[string]bool)
	var tables []string
	for _, op := range m {
		if !seen[op.TableName()] {
			seen[op.TableName()] = true
			tables = append(tables, op.TableName())
		}
	}
	return tables
}

var (
	_ Operation = (*CreateTable)(nil)
	_ Operation = (*AddColumn)(nil)
	_ Operation = (*DropColumn)(nil)
	_ Operation = (*AlterDefault)(nil)
	_ Operation = (*DropTable)(nil)
)
