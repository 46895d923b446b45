// Package sqlite opens SQLite databases through either supported driver and
// answers questions about the linked SQLite library.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // cgo driver, registered as "sqlite3"
	_ "modernc.org/sqlite"          // pure Go driver, registered as "sqlite"

	"github.com/satishbabariya/sequel-go/internal/debug"
)

const (
	// DriverMattn is github.com/mattn/go-sqlite3
	DriverMattn = "sqlite3"
	// DriverModernc is modernc.org/sqlite
	DriverModernc = "sqlite"

	// MemoryPath opens a private in-memory database
	MemoryPath = ":memory:"
)

// Config describes how to open a database file
type Config struct {
	Path           string
	Driver         string
	BusyTimeout    time.Duration
	ForeignKeys    bool
	ConnectTimeout time.Duration
}

// DefaultConfig returns the configuration used when nothing is overridden
func DefaultConfig() Config {
	return Config{
		Path:           MemoryPath,
		Driver:         DriverMattn,
		BusyTimeout:    5 * time.Second,
		ForeignKeys:    true,
		ConnectTimeout: 10 * time.Second,
	}
}

// IsMemory reports whether path names an in-memory database
func IsMemory(path string) bool {
	return path == MemoryPath || strings.HasPrefix(path, "file::memory:")
}

type pragma struct {
	name  string
	value string
}

// BuildDSN renders the driver specific connection string. Both drivers take
// BEGIN IMMEDIATE through _txlock so a migration holds the write lock for its
// whole transaction.
func BuildDSN(cfg Config) (string, error) {
	var pragmas []pragma
	switch cfg.Driver {
	case DriverMattn, "":
		pragmas = append(pragmas, pragma{"_txlock", "immediate"})
		if cfg.ForeignKeys {
			pragmas = append(pragmas, pragma{"_foreign_keys", "1"})
		}
		if cfg.BusyTimeout > 0 {
			pragmas = append(pragmas, pragma{"_busy_timeout", fmt.Sprint(cfg.BusyTimeout.Milliseconds())})
		}
	case DriverModernc:
		pragmas = append(pragmas, pragma{"_txlock", "immediate"})
		if cfg.ForeignKeys {
			pragmas = append(pragmas, pragma{"_pragma", "foreign_keys(1)"})
		}
		if cfg.BusyTimeout > 0 {
			pragmas = append(pragmas, pragma{"_pragma", fmt.Sprintf("busy_timeout(%d)", cfg.BusyTimeout.Milliseconds())})
		}
	default:
		return "", fmt.Errorf("unsupported sqlite driver %q", cfg.Driver)
	}

	var sb strings.Builder
	path := cfg.Path
	switch {
	case path == "" || path == MemoryPath:
		sb.WriteString("file::memory:")
	case strings.HasPrefix(path, "file:"):
		sb.WriteString(path)
	default:
		sb.WriteString("file:")
		sb.WriteString(path)
	}

	sep := "?"
	if strings.Contains(sb.String(), "?") {
		sep = "&"
	}
	for _, p := range pragmas {
		sb.WriteString(sep)
		fmt.Fprintf(&sb, "%s=%s", p.name, p.value)
		sep = "&"
	}
	return sb.String(), nil
}

// Open opens and pings the database described by cfg.
// The pool is limited to one connection, which also keeps in-memory databases alive.
func Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	if cfg.Driver == "" {
		cfg.Driver = DriverMattn
	}
	dsn, err := BuildDSN(cfg)
	if err != nil {
		return nil, err
	}
	debug.Debug("Opening database", "driver", cfg.Driver, "dsn", dsn)

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxIdleTime(0)
	db.SetConnMaxLifetime(0)

	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// QuoteIdent quotes an identifier for use in SQL text
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
