package sqlgen

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/sequel-go/query/ast"
)

func int64p(n int64) *int64 { return &n }

func TestCompileExpr(t *testing.T) {
	tests := []struct {
		name     string
		expr     ast.Expr
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "eq",
			expr:     ast.Eq("age", 20),
			wantSQL:  `"age" = ?`,
			wantArgs: []any{20},
		},
		{
			name:     "and keeps traversal order",
			expr:     ast.And(ast.Eq("name", "John"), ast.Gt("age", 18)),
			wantSQL:  `("name" = ? AND "age" > ?)`,
			wantArgs: []any{"John", 18},
		},
		{
			name:     "nested or and not",
			expr:     ast.Or(ast.Not(ast.Like("name", "J%")), ast.And(ast.Lte("age", 5), ast.IsNull("bio"))),
			wantSQL:  `(NOT ("name" LIKE ?) OR ("age" <= ? AND "bio" IS NULL))`,
			wantArgs: []any{"J%", 5},
		},
		{
			name:    "null checks take no argument",
			expr:    ast.And(ast.IsNull("a"), ast.IsNotNull("b")),
			wantSQL: `("a" IS NULL AND "b" IS NOT NULL)`,
		},
		{
			name:     "in list",
			expr:     ast.In("id", 1, 2, 3),
			wantSQL:  `"id" IN (?, ?, ?)`,
			wantArgs: []any{1, 2, 3},
		},
		{
			name:    "empty in list",
			expr:    ast.NotIn("id"),
			wantSQL: `"id" NOT IN ()`,
		},
		{
			name:     "single child group",
			expr:     ast.And(ast.Ne("x", 1)),
			wantSQL:  `("x" != ?)`,
			wantArgs: []any{1},
		},
		{
			name:     "valid null type binds",
			expr:     ast.Eq("team", sql.NullInt64{Int64: 3, Valid: true}),
			wantSQL:  `"team" = ?`,
			wantArgs: []any{sql.NullInt64{Int64: 3, Valid: true}},
		},
		{
			name:     "not like and gte",
			expr:     ast.And(ast.NotLike("name", "%x"), ast.Gte("age", 1), ast.Lt("age", 9)),
			wantSQL:  `("name" NOT LIKE ? AND "age" >= ? AND "age" < ?)`,
			wantArgs: []any{"%x", 1, 9},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := CompileExpr(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestCompileExprInvalid(t *testing.T) {
	for name, e := range map[string]ast.Expr{
		"empty and":       ast.And(),
		"not two":         &ast.Logical{Op: ast.OpNot, Children: []ast.Expr{ast.IsNull("a"), ast.IsNull("b")}},
		"unknown op":      &ast.Comparison{Column: "a", Op: "~", Value: 1},
		"in scalar":       &ast.Comparison{Column: "a", Op: ast.OpIn, Value: 1},
		"is null value":   &ast.Comparison{Column: "a", Op: ast.OpIsNull, Value: 1},
		"nil expression":  nil,
		"eq nil":          ast.Eq("name", nil),
		"ne nil":          ast.Ne("name", nil),
		"gt nil pointer":  ast.Gt("age", (*string)(nil)),
		"eq invalid null": ast.Eq("team", sql.NullInt64{}),
		"nil blob":        ast.Eq("data", []byte(nil)),
		"in with nil":     ast.In("id", 1, nil),
		"nested nil":      ast.And(ast.Gt("age", 1), ast.Not(ast.Eq("name", nil))),
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := CompileExpr(e)
			assert.ErrorIs(t, err, ast.ErrInvalidExpression)
		})
	}
}

func TestCompileSelect(t *testing.T) {
	tests := []struct {
		name     string
		node     *ast.Select
		wantSQL  string
		wantArgs []any
	}{
		{
			name:    "all columns",
			node:    &ast.Select{Table: "users", Columns: []string{"id", "name", "age"}},
			wantSQL: `SELECT "id", "name", "age" FROM "users"`,
		},
		{
			name:     "where order limit offset",
			node:     &ast.Select{Table: "users", Where: ast.Eq("name", "John"), OrderBy: []ast.OrderBy{{Column: "age", Direction: ast.SortDesc}, {Column: "id"}}, Limit: int64p(10), Offset: int64p(20)},
			wantSQL:  `SELECT * FROM "users" WHERE "name" = ? ORDER BY "age" DESC, "id" ASC LIMIT ? OFFSET ?`,
			wantArgs: []any{"John", int64(10), int64(20)},
		},
		{
			name:     "offset without limit",
			node:     &ast.Select{Table: "users", Offset: int64p(5)},
			wantSQL:  `SELECT * FROM "users" LIMIT -1 OFFSET ?`,
			wantArgs: []any{int64(5)},
		},
		{
			name:     "count ignores paging",
			node:     &ast.Select{Table: "users", Count: true, Where: ast.Gt("age", 18), Limit: int64p(1)},
			wantSQL:  `SELECT COUNT(*) FROM "users" WHERE "age" > ?`,
			wantArgs: []any{18},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := Compile(tt.node)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, stmt.SQL)
			assert.Equal(t, tt.wantArgs, stmt.Args)
			assert.Equal(t, tt.node.Kind(), stmt.Kind)
		})
	}
}

func TestCompileInsert(t *testing.T) {
	stmt, err := Compile(&ast.Insert{
		Table:   "users",
		Columns: []string{"name", "age"},
		Rows:    [][]any{{"John", 20}, {"Jane", 31}},
	})
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "users" ("name", "age") VALUES (?, ?), (?, ?)`, stmt.SQL)
	assert.Equal(t, []any{"John", 20, "Jane", 31}, stmt.Args)

	stmt, err = Compile(&ast.Insert{Table: "users", Rows: [][]any{{}}})
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "users" DEFAULT VALUES`, stmt.SQL)
	assert.Empty(t, stmt.Args)

	_, err = Compile(&ast.Insert{Table: "users", Columns: []string{"a"}, Rows: [][]any{{1, 2}}})
	assert.ErrorIs(t, err, ErrRowWidth)

	_, err = Compile(&ast.Insert{Table: "users", Rows: [][]any{{}, {}}})
	assert.ErrorIs(t, err, ErrRowWidth)

	_, err = Compile(&ast.Insert{Table: "users"})
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestCompileUpdateDelete(t *testing.T) {
	stmt, err := Compile(&ast.Update{
		Table: "users",
		Set:   []ast.Assignment{{Column: "name", Value: "Jo"}, {Column: "age", Value: 3}},
		Where: ast.Eq("id", 7),
	})
	require.NoError(t, err)
	assert.Equal(t, `UPDATE "users" SET "name" = ?, "age" = ? WHERE "id" = ?`, stmt.SQL)
	assert.Equal(t, []any{"Jo", 3, 7}, stmt.Args)

	_, err = Compile(&ast.Update{Table: "users"})
	assert.ErrorIs(t, err, ErrNoAssignments)

	stmt, err = Compile(&ast.Delete{Table: "users", Where: ast.In("id", 1, 2)})
	require.NoError(t, err)
	assert.Equal(t, `DELETE FROM "users" WHERE "id" IN (?, ?)`, stmt.SQL)
	assert.Equal(t, []any{1, 2}, stmt.Args)

	stmt, err = Compile(&ast.Delete{Table: "users"})
	require.NoError(t, err)
	assert.Equal(t, `DELETE FROM "users"`, stmt.SQL)

	_, err = Compile(&ast.Delete{})
	assert.ErrorIs(t, err, ErrNoTable)
}

func TestQuotedIdentifiers(t *testing.T) {
	stmt, err := Compile(&ast.Select{Table: `we"ird`, Columns: []string{`a"b`}})
	require.NoError(t, err)
	assert.Equal(t, `SELECT "a""b" FROM "we""ird"`, stmt.SQL)
}
