package schema

import (
	"sync"

	"github.com/satishbabariya/sequel-go/internal/debug"
)

// Registry holds the declared tables of an application, keyed by table name.
// A Registry is owned by whoever creates it; there is no package-level instance.
type Registry struct {
	mu     sync.RWMutex
	tables map[string]*Table
	order  []string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		tables: make(map[string]*Table),
	}
}

// Register stores a copy of t. Registering a name again replaces the stored
// descriptor and keeps its original position.
func (r *Registry) Register(t *Table) error {
	if t == nil {
		return &InvalidDescriptorError{Reason: "nil table"}
	}
	if err := t.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.tables[t.Name]; ok {
		if existing.Model != "" && t.Model != "" && existing.Model != t.Model {
			return &DuplicateTableError{Table: t.Name, Existing: existing.Model, Incoming: t.Model}
		}
		debug.Debug("Replacing registered table", "table", t.Name)
	} else {
		r.order = append(r.order, t.Name)
		debug.Debug("Registered table", "table", t.Name, "columns", len(t.Columns))
	}

	r.tables[t.Name] = t.Clone()
	return nil
}

// Lookup returns a copy of the descriptor registered under name
func (r *Registry) Lookup(name string) (*Table, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tables[name]
	if !ok {
		return nil, false
	}
	return t.Clone(), true
}

// Tables returns copies of all descriptors in registration order
func (r *Registry) Tables() []*Table {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Table, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tables[name].Clone())
	}
	return out
}

// Names returns the registered table names in registration order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.order...)
}

// Len returns the number of registered tables
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
