// Package planner builds a whole-database migration from a set of declared tables.
package planner

import (
	"context"
	"sort"

	"github.com/satishbabariya/sequel-go/internal/debug"
	"github.com/satishbabariya/sequel-go/migrate/diff"
	"github.com/satishbabariya/sequel-go/migrate/domain"
	"github.com/satishbabariya/sequel-go/migrate/introspect"
	"github.com/satishbabariya/sequel-go/schema"
)

// Reader reads the live schema
type Reader interface {
	ReadTable(ctx context.Context, name string) (*schema.Table, error)
	ListTables(ctx context.Context) ([]string, error)
}

var _ Reader = (*introspect.Reader)(nil)

// Planner plans migrations
type Planner struct {
	reader            Reader
	dropUnknownTables bool
}

// Option configures a Planner
type Option func(*Planner)

// WithDropUnknownTables plans a DropTable for every live table that is not declared
func WithDropUnknownTables(drop bool) Option {
	return func(p *Planner) {
		p.dropUnknownTables = drop
	}
}

// NewPlanner creates a new migration planner
func NewPlanner(reader Reader, opts ...Option) *Planner {
	p := &Planner{reader: reader}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plan diffs every declared table against the database.
//
// Table creations come first, ordered so that referenced tables exist before
// the tables pointing at them. Column operations follow in declaration order
// and unknown table drops, when enabled, come last.
func (p *Planner) Plan(ctx context.Context, declared []*schema.Table) (domain.Migration, error) {
	var (
		creates []*domain.CreateTable
		alters  domain.Migration
	)

	for _, table := range declared {
		live, err := p.reader.ReadTable(ctx, table.Name)
		if err != nil {
			return nil, err
		}

		ops, err := diff.Plan(table, live)
		if err != nil {
			return nil, err
		}
		for _, op := range ops {
			if create, ok := op.(*domain.CreateTable); ok {
				creates = append(creates, create)
				continue
			}
			alters = append(alters, op)
		}
	}

	m := make(domain.Migration, 0, len(creates)+len(alters))
	for _, create := range OrderCreates(creates) {
		m = append(m, create)
	}
	m = append(m, alters...)

	if p.dropUnknownTables {
		drops, err := p.unknownTables(ctx, declared)
		if err != nil {
			return nil, err
		}
		m = append(m, drops...)
	}

	debug.Debug("Migration planned", "operations", len(m), "destructive", m.HasDestructive())
	return m, nil
}

func (p *Planner) unknownTables(ctx context.Context, declared []*schema.Table) (domain.Migration, error) {
	names, err := p.reader.ListTables(ctx)
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(declared))
	for _, t := range declared {
		known[t.Name] = true
	}

	var drops domain.Migration
	sort.Strings(names)
	for _, name := range names {
		if !known[name] {
			drops = append(drops, &domain.DropTable{Table: name})
		}
	}
	return drops, nil
}
