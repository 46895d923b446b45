package client

import (
	"time"

	"github.com/satishbabariya/sequel-go/internal/adapters/sqlite"
)

// Config holds client settings
type Config struct {
	Path           string
	Driver         string
	BusyTimeout    time.Duration
	ConnectTimeout time.Duration

	// RequireScopedMutations rejects updates and deletes without a filter
	// unless All is called.
	RequireScopedMutations bool
	DropUnknownTables      bool
	MinimumVersion         string

	// StatementCacheSize is the number of prepared statements kept; 0 disables the cache.
	StatementCacheSize int
	Middlewares        []Middleware
}

// DefaultConfig returns an in-memory database on the cgo driver
func DefaultConfig() Config {
	base := sqlite.DefaultConfig()
	return Config{
		Path:                   base.Path,
		Driver:                 base.Driver,
		BusyTimeout:            base.BusyTimeout,
		ConnectTimeout:         base.ConnectTimeout,
		RequireScopedMutations: true,
	}
}

// Option configures a client
type Option func(*Config)

func newConfig(opts []Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithPath sets the database file
func WithPath(path string) Option {
	return func(c *Config) { c.Path = path }
}

// WithDriver selects "sqlite3" (mattn/go-sqlite3) or "sqlite" (modernc.org/sqlite)
func WithDriver(driver string) Option {
	return func(c *Config) { c.Driver = driver }
}

// WithBusyTimeout sets how long a statement waits on a locked database
func WithBusyTimeout(d time.Duration) Option {
	return func(c *Config) { c.BusyTimeout = d }
}

// WithRequireScopedMutations toggles the filter requirement on updates and deletes
func WithRequireScopedMutations(require bool) Option {
	return func(c *Config) { c.RequireScopedMutations = require }
}

// WithDropUnknownTables makes Migrate drop tables nobody registered
func WithDropUnknownTables(drop bool) Option {
	return func(c *Config) { c.DropUnknownTables = drop }
}

// WithMinimumVersion refuses to migrate on older SQLite libraries, e.g. ">= 3.35.0"
func WithMinimumVersion(constraint string) Option {
	return func(c *Config) { c.MinimumVersion = constraint }
}

// WithStatementCache keeps up to size prepared statements
func WithStatementCache(size int) Option {
	return func(c *Config) { c.StatementCacheSize = size }
}

// WithMiddleware installs statement middlewares
func WithMiddleware(mw ...Middleware) Option {
	return func(c *Config) { c.Middlewares = append(c.Middlewares, mw...) }
}
