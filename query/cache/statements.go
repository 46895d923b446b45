package cache

import (
	"context"
	"database/sql"

	"github.com/satishbabariya/sequel-go/internal/debug"
)

// Preparer prepares statements; *sql.DB and *sql.Conn satisfy it
type Preparer interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// Statements caches prepared statements by SQL text. Statements that leave
// the cache are closed.
type Statements struct {
	lru *LRU[*sql.Stmt]
}

// NewStatements creates a statement cache of the given size
func NewStatements(size int) *Statements {
	return &Statements{
		lru: NewLRU(size, func(query string, stmt *sql.Stmt) {
			if err := stmt.Close(); err != nil {
				debug.Warn("Failed to close cached statement", "sql", query, "error", err)
			}
		}),
	}
}

// Prepare returns the cached statement for query, preparing it on a miss
func (s *Statements) Prepare(ctx context.Context, p Preparer, query string) (*sql.Stmt, error) {
	if stmt, ok := s.lru.Get(query); ok {
		return stmt, nil
	}

	stmt, err := p.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}
	s.lru.Set(query, stmt)
	return stmt, nil
}

// Clear closes and forgets every cached statement
func (s *Statements) Clear() {
	s.lru.Clear()
}

// Stats returns cache statistics
func (s *Statements) Stats() Stats {
	return s.lru.GetStats()
}
