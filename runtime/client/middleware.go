package client

import (
	"context"
	"log/slog"
	"time"

	"github.com/satishbabariya/sequel-go/query/ast"
)

// QueryEvent describes one statement passing through the middleware chain
type QueryEvent struct {
	Statement ast.Statement
	Start     time.Time
	End       time.Time
	Duration  time.Duration
	Error     error
}

// Middleware wraps statement execution. It must call next exactly once to
// run the statement, or return without calling it to skip execution.
type Middleware func(ctx context.Context, event *QueryEvent, next func() error) error

// intercept runs exec through the configured middlewares
func (c *Client) intercept(ctx context.Context, stmt ast.Statement, exec func() error) error {
	mws := c.cfg.Middlewares
	if len(mws) == 0 {
		return exec()
	}

	event := &QueryEvent{Statement: stmt, Start: time.Now()}
	index := 0

	var next func() error
	next = func() error {
		if index >= len(mws) {
			err := exec()
			event.End = time.Now()
			event.Duration = event.End.Sub(event.Start)
			event.Error = err
			return err
		}
		mw := mws[index]
		index++
		return mw(ctx, event, next)
	}
	return next()
}

// LoggingMiddleware logs every statement and its outcome to logger
func LoggingMiddleware(logger *slog.Logger) Middleware {
	return func(ctx context.Context, event *QueryEvent, next func() error) error {
		err := next()
		if err != nil {
			logger.ErrorContext(ctx, "Statement failed", "kind", event.Statement.Kind, "sql", event.Statement.SQL, "error", err)
		} else {
			logger.DebugContext(ctx, "Statement executed", "kind", event.Statement.Kind, "sql", event.Statement.SQL, "duration", event.Duration)
		}
		return err
	}
}

// TimingMiddleware reports the duration of every statement
func TimingMiddleware(onTiming func(stmt ast.Statement, d time.Duration)) Middleware {
	return func(ctx context.Context, event *QueryEvent, next func() error) error {
		err := next()
		if onTiming != nil {
			onTiming(event.Statement, event.Duration)
		}
		return err
	}
}

// ErrorMiddleware reports every failed statement
func ErrorMiddleware(onError func(stmt ast.Statement, err error)) Middleware {
	return func(ctx context.Context, event *QueryEvent, next func() error) error {
		err := next()
		if err != nil && onError != nil {
			onError(event.Statement, err)
		}
		return err
	}
}
