package client

import (
	"errors"

	"github.com/satishbabariya/sequel-go/migrate/domain"
	"github.com/satishbabariya/sequel-go/query/builder"
	"github.com/satishbabariya/sequel-go/query/executor"
)

var (
	// ErrNotRegistered is returned when a record type is used before Register
	ErrNotRegistered = errors.New("record type is not registered")
	// ErrNotFound is returned by First when no row matches
	ErrNotFound = executor.ErrNoRows
	// ErrInTransaction is returned for operations a transaction client cannot run
	ErrInTransaction = errors.New("operation is not allowed inside a transaction")
)

// IsUnknownColumn reports whether err names a column the table does not declare
func IsUnknownColumn(err error) bool {
	return errors.Is(err, builder.ErrUnknownColumn)
}

// IsUnscopedMutation reports whether err is a rejected update or delete without a filter
func IsUnscopedMutation(err error) bool {
	return errors.Is(err, builder.ErrUnscopedMutationRejected)
}

// IsMigrationError reports whether err came from planning or applying a migration
func IsMigrationError(err error) bool {
	var me *domain.MigrationError
	return errors.As(err, &me)
}

// IsTypeConversion reports whether a column value did not fit its field
func IsTypeConversion(err error) bool {
	return errors.Is(err, executor.ErrTypeConversion)
}

// IsNotFound reports whether err is ErrNotFound
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDatabaseError reports whether err was raised by the database driver
func IsDatabaseError(err error) bool {
	var dbErr *executor.DbError
	return errors.As(err, &dbErr)
}
