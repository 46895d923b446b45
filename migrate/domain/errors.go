package domain

import "errors"

// ErrorKind classifies a MigrationError
type ErrorKind int

const (
	MissingDefaultForNonNullableColumn ErrorKind = iota + 1
	IncompatibleColumnChange
	ExecutionFailed
)

func (k ErrorKind) String() string {
	switch k {
	case MissingDefaultForNonNullableColumn:
		return "missing default for non-nullable column"
	case IncompatibleColumnChange:
		return "incompatible column change"
	case ExecutionFailed:
		return "execution failed"
	default:
		return "unknown migration error"
	}
}

var (
	ErrMissingDefault           = errors.New("migrate: missing default for non-nullable column")
	ErrIncompatibleChange       = errors.New("migrate: incompatible column change")
	ErrExecutionFailed          = errors.New("migrate: execution failed")
	ErrUnsupportedSQLiteVersion = errors.New("migrate: unsupported SQLite version")
)

// MigrationError is returned by planning and applying migrations
type MigrationError struct {
	Kind   ErrorKind
	Table  string
	Column string
	// Op is set for execution failures
	Op     OperationKind
	Detail string
	Err    error
}

func (e *MigrationError) Error() string {
	target := e.Table
	if e.Column != "" {
		target += "." + e.Column
	}

	msg := "migrate: " + e.Kind.String()
	if e.Op != "" {
		msg += ": " + string(e.Op)
	}
	if target != "" {
		msg += " on " + target
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MigrationError) Unwrap() error {
	return e.Err
}

func (e *MigrationError) Is(target error) bool {
	switch target {
	case ErrMissingDefault:
		return e.Kind == MissingDefaultForNonNullableColumn
	case ErrIncompatibleChange:
		return e.Kind == IncompatibleColumnChange
	case ErrExecutionFailed:
		return e.Kind == ExecutionFailed
	}
	return false
}
