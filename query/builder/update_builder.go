package builder

import (
	"github.com/satishbabariya/sequel-go/query/ast"
	"github.com/satishbabariya/sequel-go/schema"
)

// scope tracks whether a mutation may touch every row
type scope struct {
	requireScope bool
	all          bool
}

func (s scope) check(b *base, where ast.Expr) {
	if where == nil && s.requireScope && !s.all {
		b.fail("", ErrUnscopedMutationRejected)
	}
}

// UpdateBuilder builds UPDATE statements
type UpdateBuilder struct {
	base
	scope
	set   []ast.Assignment
	where ast.Expr
}

// Update starts an update of t. A filter, or an explicit All, is required by default.
func Update(t *schema.Table) *UpdateBuilder {
	return &UpdateBuilder{base: newBase(t), scope: scope{requireScope: true}}
}

// Set assigns v to column. Setting the same column twice keeps the last value.
func (u *UpdateBuilder) Set(column string, v any) *UpdateBuilder {
	return u.Assign(ast.Assignment{Column: column, Value: v})
}

// Assign adds assignments built from typed columns
func (u *UpdateBuilder) Assign(assignments ...ast.Assignment) *UpdateBuilder {
	for _, a := range assignments {
		if !u.checkColumn(a.Column) {
			return u
		}
		replaced := false
		for i := range u.set {
			if u.set[i].Column == a.Column {
				u.set[i].Value = a.Value
				replaced = true
			}
		}
		if !replaced {
			u.set = append(u.set, a)
		}
	}
	return u
}

// Where adds a filter. Repeated calls are combined with AND.
func (u *UpdateBuilder) Where(e ast.Expr) *UpdateBuilder {
	if u.checkExpr(e) {
		u.where = and(u.where, e)
	}
	return u
}

// All confirms that an update without a filter is meant to rewrite every row
func (u *UpdateBuilder) All() *UpdateBuilder {
	u.all = true
	return u
}

// RequireScope switches the filter requirement on or off
func (u *UpdateBuilder) RequireScope(require bool) *UpdateBuilder {
	u.requireScope = require
	return u
}

// Node returns the statement tree
func (u *UpdateBuilder) Node() (*ast.Update, error) {
	if u.err == nil && len(u.set) == 0 {
		u.fail("", ErrNoAssignments)
	}
	u.check(&u.base, u.where)
	if u.err != nil {
		return nil, u.err
	}
	return &ast.Update{Table: u.table.Name, Set: append([]ast.Assignment{}, u.set...), Where: u.where}, nil
}

// Compile produces the SQL text and its arguments
func (u *UpdateBuilder) Compile() (ast.Statement, error) {
	node, err := u.Node()
	return compile(err, node)
}

// DeleteBuilder builds DELETE statements. It follows the same scoping rule as updates.
type DeleteBuilder struct {
	base
	scope
	where ast.Expr
}

// Delete starts a delete from t
func Delete(t *schema.Table) *DeleteBuilder {
	return &DeleteBuilder{base: newBase(t), scope: scope{requireScope: true}}
}

// Where adds a filter. Repeated calls are combined with AND.
func (d *DeleteBuilder) Where(e ast.Expr) *DeleteBuilder {
	if d.checkExpr(e) {
		d.where = and(d.where, e)
	}
	return d
}

// All confirms that a delete without a filter is meant to empty the table
func (d *DeleteBuilder) All() *DeleteBuilder {
	d.all = true
	return d
}

// RequireScope switches the filter requirement on or off
func (d *DeleteBuilder) RequireScope(require bool) *DeleteBuilder {
	d.requireScope = require
	return d
}

// Node returns the statement tree
func (d *DeleteBuilder) Node() (*ast.Delete, error) {
	d.check(&d.base, d.where)
	if d.err != nil {
		return nil, d.err
	}
	return &ast.Delete{Table: d.table.Name, Where: d.where}, nil
}

// Compile produces the SQL text and its arguments
func (d *DeleteBuilder) Compile() (ast.Statement, error) {
	node, err := d.Node()
	return compile(err, node)
}
