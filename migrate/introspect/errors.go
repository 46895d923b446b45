package introspect

import (
	"errors"
	"fmt"
)

// ErrIntrospectionFailed wraps every error raised while reading the live schema
var ErrIntrospectionFailed = errors.New("database introspection failed")

func failed(table, step string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", ErrIntrospectionFailed, step, table, err)
}
