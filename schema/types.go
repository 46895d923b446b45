// Package schema describes the declared shape of tables and columns and keeps
// the registry of tables an application wants reconciled with the database.
package schema

import (
	"fmt"
	"strings"
)

// SQLType is the storage type of a column
type SQLType int

const (
	Integer SQLType = iota + 1
	Real
	Text
	Blob
	Boolean
	Timestamp
)

// String returns the type name used in descriptors and schema files
func (t SQLType) String() string {
	switch t {
	case Integer:
		return "Integer"
	case Real:
		return "Real"
	case Text:
		return "Text"
	case Blob:
		return "Blob"
	case Boolean:
		return "Boolean"
	case Timestamp:
		return "Timestamp"
	default:
		return fmt.Sprintf("SQLType(%d)", int(t))
	}
}

// DDL returns the declared type written into CREATE TABLE and ALTER TABLE statements
func (t SQLType) DDL() string {
	switch t {
	case Integer:
		return "INTEGER"
	case Real:
		return "REAL"
	case Text:
		return "TEXT"
	case Blob:
		return "BLOB"
	case Boolean:
		return "BOOLEAN"
	case Timestamp:
		return "DATETIME"
	default:
		return ""
	}
}

// Valid reports whether t is one of the known types
func (t SQLType) Valid() bool {
	return t >= Integer && t <= Timestamp
}

// ParseSQLType parses a type name as written in schema files (Integer, Text, ...).
func ParseSQLType(name string) (SQLType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "integer", "int":
		return Integer, nil
	case "real", "float":
		return Real, nil
	case "text", "string":
		return Text, nil
	case "blob", "bytes":
		return Blob, nil
	case "boolean", "bool":
		return Boolean, nil
	case "timestamp", "datetime":
		return Timestamp, nil
	default:
		return 0, fmt.Errorf("unknown column type %q", name)
	}
}

// TypeFromDeclared recovers a SQLType from the declared type text stored by SQLite.
// Exact names come first; anything else follows SQLite's column affinity rules.
func TypeFromDeclared(declared string) SQLType {
	decl := strings.ToUpper(strings.TrimSpace(declared))
	if i := strings.IndexByte(decl, '('); i >= 0 {
		decl = strings.TrimSpace(decl[:i])
	}

	switch decl {
	case "INTEGER", "INT":
		return Integer
	case "REAL", "FLOAT", "DOUBLE":
		return Real
	case "TEXT":
		return Text
	case "BLOB", "":
		return Blob
	case "BOOLEAN", "BOOL":
		return Boolean
	case "DATETIME", "TIMESTAMP", "DATE":
		return Timestamp
	}

	switch {
	case strings.Contains(decl, "INT"):
		return Integer
	case strings.Contains(decl, "CHAR"), strings.Contains(decl, "CLOB"), strings.Contains(decl, "TEXT"):
		return Text
	case strings.Contains(decl, "BLOB"):
		return Blob
	default:
		// REAL and NUMERIC affinity
		return Real
	}
}
