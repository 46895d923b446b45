package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hashicorp/go-version"
)

// RowQuerier runs a single-row query; *sql.DB, *sql.Tx and *sql.Conn satisfy it
type RowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Feature names a SQLite capability that depends on the library version
type Feature string

const (
	FeatureDropColumn   Feature = "ALTER TABLE DROP COLUMN"
	FeatureRenameColumn Feature = "ALTER TABLE RENAME COLUMN"
	FeatureReturning    Feature = "RETURNING"
)

var featureVersions = map[Feature]string{
	FeatureDropColumn:   "3.35.0",
	FeatureRenameColumn: "3.25.0",
	FeatureReturning:    "3.35.0",
}

// Version reports the version of the SQLite library behind q
func Version(ctx context.Context, q RowQuerier) (*version.Version, error) {
	var raw string
	if err := q.QueryRowContext(ctx, "SELECT sqlite_version()").Scan(&raw); err != nil {
		return nil, fmt.Errorf("failed to query sqlite version: %w", err)
	}
	v, err := version.NewVersion(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse sqlite version %q: %w", raw, err)
	}
	return v, nil
}

// Supports reports whether v is recent enough for f
func Supports(v *version.Version, f Feature) bool {
	minimum, ok := featureVersions[f]
	if !ok {
		return true
	}
	return v.GreaterThanOrEqual(version.Must(version.NewVersion(minimum)))
}

// RequireVersion fails when v is older than the minimum constraint string, e.g. ">= 3.35.0"
func RequireVersion(v *version.Version, constraint string) error {
	c, err := version.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("invalid version constraint %q: %w", constraint, err)
	}
	if !c.Check(v) {
		return fmt.Errorf("sqlite %s does not satisfy %s", v, constraint)
	}
	return nil
}
