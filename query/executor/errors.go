package executor

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrTypeConversion matches every *TypeConversionError
	ErrTypeConversion = errors.New("type conversion failed")
	// ErrNoRows is returned when a single row was expected and none came back
	ErrNoRows = errors.New("no rows in result set")
)

// TypeConversionError reports a column value that cannot be stored in the
// field it maps to
type TypeConversionError struct {
	Table  string
	Column string
	Value  any
	Target reflect.Type
	Reason string
}

func (e *TypeConversionError) Error() string {
	msg := fmt.Sprintf("cannot convert %s.%s value %v (%T) to %s", e.Table, e.Column, e.Value, e.Value, e.Target)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *TypeConversionError) Is(target error) bool {
	return target == ErrTypeConversion
}

// DbError carries an error raised by the database driver unchanged
type DbError struct {
	SQL string
	Err error
}

func (e *DbError) Error() string {
	return "database error: " + e.Err.Error()
}

func (e *DbError) Unwrap() error {
	return e.Err
}

func dbError(query string, err error) error {
	if err == nil {
		return nil
	}
	return &DbError{SQL: query, Err: err}
}
