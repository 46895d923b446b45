package schema

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateTable is matched by *DuplicateTableError
	ErrDuplicateTable = errors.New("schema: duplicate table")
	// ErrInvalidDescriptor is matched by *InvalidDescriptorError
	ErrInvalidDescriptor = errors.New("schema: invalid descriptor")
)

// DuplicateTableError is returned when a table name is already bound to a
// descriptor produced by a different record type.
type DuplicateTableError struct {
	Table    string
	Existing string
	Incoming string
}

func (e *DuplicateTableError) Error() string {
	return fmt.Sprintf("schema: table %q is already registered by %s, cannot register %s", e.Table, e.Existing, e.Incoming)
}

func (e *DuplicateTableError) Is(target error) bool {
	return target == ErrDuplicateTable
}

// InvalidDescriptorError reports a descriptor that breaks a table invariant
type InvalidDescriptorError struct {
	Table  string
	Column string
	Reason string
}

func (e *InvalidDescriptorError) Error() string {
	switch {
	case e.Column != "":
		return fmt.Sprintf("schema: invalid column %s.%s: %s", e.Table, e.Column, e.Reason)
	case e.Table != "":
		return fmt.Sprintf("schema: invalid table %s: %s", e.Table, e.Reason)
	default:
		return "schema: " + e.Reason
	}
}

func (e *InvalidDescriptorError) Is(target error) bool {
	return target == ErrInvalidDescriptor
}
