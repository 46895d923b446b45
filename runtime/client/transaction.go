package client

import (
	"context"
	"fmt"

	"github.com/satishbabariya/sequel-go/internal/debug"
)

// TransactionFunc runs against a client bound to the transaction
type TransactionFunc func(tx *Client) error

// Transaction runs fn in a transaction that commits when fn returns nil and
// rolls back when it returns an error or panics. Called on a transaction
// client it nests through a savepoint.
//
// The pool holds a single connection, so fn must use tx rather than the
// outer client.
func (c *Client) Transaction(ctx context.Context, fn TransactionFunc) error {
	if c.tx != nil {
		return c.nested(ctx, fn)
	}

	sqlTx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	tx := *c
	tx.q = sqlTx
	tx.tx = sqlTx
	tx.stmts = nil

	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&tx); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %v, rollback error: %w", err, rbErr)
		}
		debug.Debug("Transaction rolled back", "error", err)
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (c *Client) nested(ctx context.Context, fn TransactionFunc) error {
	child := *c
	child.depth++
	savepoint := fmt.Sprintf("sp_%d", child.depth)

	if _, err := c.tx.ExecContext(ctx, "SAVEPOINT "+savepoint); err != nil {
		return fmt.Errorf("failed to create savepoint: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_, _ = c.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+savepoint)
			panic(p)
		}
	}()

	if err := fn(&child); err != nil {
		if _, rbErr := c.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+savepoint); rbErr != nil {
			return fmt.Errorf("nested transaction error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	if _, err := c.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+savepoint); err != nil {
		return fmt.Errorf("failed to release savepoint: %w", err)
	}
	return nil
}

// atomic runs fn in the current transaction, or in a new one
func (c *Client) atomic(ctx context.Context, fn TransactionFunc) error {
	if c.tx != nil {
		return fn(c)
	}
	return c.Transaction(ctx, fn)
}
