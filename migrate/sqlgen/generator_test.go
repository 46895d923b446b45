package sqlgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/sequel-go/migrate/domain"
	"github.com/satishbabariya/sequel-go/schema"
)

func users() *schema.Table {
	return &schema.Table{
		Name: "users",
		Columns: []schema.Column{
			{Name: "id", Type: schema.Integer, PrimaryKey: true, AutoIncrement: true},
			{Name: "name", Type: schema.Text, Nullable: true, Default: schema.StringDefault("Unknown name")},
			{Name: "age", Type: schema.Integer},
		},
	}
}

func TestCreateTable(t *testing.T) {
	want := `CREATE TABLE "users" (
    "id" INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
    "name" TEXT DEFAULT 'Unknown name',
    "age" INTEGER NOT NULL
)`
	assert.Equal(t, want, CreateTable(users()))
}

func TestColumnDefinition(t *testing.T) {
	tests := []struct {
		name string
		col  schema.Column
		want string
	}{
		{
			name: "unique text",
			col:  schema.Column{Name: "email", Type: schema.Text, Unique: true},
			want: `"email" TEXT NOT NULL UNIQUE`,
		},
		{
			name: "reference",
			col:  schema.Column{Name: "author_id", Type: schema.Integer, Nullable: true, References: &schema.Reference{Table: "users", Column: "id"}},
			want: `"author_id" INTEGER REFERENCES "users" ("id")`,
		},
		{
			name: "timestamp default",
			col:  schema.Column{Name: "created_at", Type: schema.Timestamp, Default: schema.ExprDefault("current_timestamp")},
			want: `"created_at" DATETIME NOT NULL DEFAULT current_timestamp`,
		},
		{
			name: "negative real default",
			col:  schema.Column{Name: "score", Type: schema.Real, Default: schema.RealDefault(-1.5)},
			want: `"score" REAL NOT NULL DEFAULT -1.5`,
		},
		{
			name: "expression default",
			col:  schema.Column{Name: "day", Type: schema.Text, Default: schema.ExprDefault("date('now')")},
			want: `"day" TEXT NOT NULL DEFAULT (date('now'))`,
		},
		{
			name: "NULL default omitted",
			col:  schema.Column{Name: "bio", Type: schema.Text, Nullable: true, Default: schema.ExprDefault("NULL")},
			want: `"bio" TEXT`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ColumnDefinition(tt.col))
		})
	}
}

func TestGenerate(t *testing.T) {
	t.Run("add column", func(t *testing.T) {
		stmts, err := Generate(&domain.AddColumn{Table: "users", Column: schema.Column{Name: "bio", Type: schema.Text, Nullable: true}}, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{`ALTER TABLE "users" ADD COLUMN "bio" TEXT`}, stmts)
	})

	t.Run("drop column", func(t *testing.T) {
		stmts, err := Generate(&domain.DropColumn{Table: "users", Column: "age"}, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{`ALTER TABLE "users" DROP COLUMN "age"`}, stmts)
	})

	t.Run("drop table", func(t *testing.T) {
		stmts, err := Generate(&domain.DropTable{Table: "legacy"}, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{`DROP TABLE "legacy"`}, stmts)
	})

	t.Run("alter default rebuilds", func(t *testing.T) {
		op := &domain.AlterDefault{Table: "users", Column: "age", Default: schema.IntDefault(18)}
		index := `CREATE INDEX "users_age" ON "users" ("age")`

		stmts, err := Generate(op, users(), []string{index})
		require.NoError(t, err)
		require.Len(t, stmts, 8)
		assert.Equal(t, "PRAGMA defer_foreign_keys = ON", stmts[0])
		assert.Contains(t, stmts[1], `CREATE TABLE "_sequel_new_users"`)
		assert.Contains(t, stmts[1], `"age" INTEGER NOT NULL DEFAULT 18`)
		assert.Equal(t, `INSERT INTO "_sequel_new_users" ("id", "name", "age") SELECT "id", "name", "age" FROM "users"`, stmts[2])
		assert.Equal(t, `DELETE FROM sqlite_sequence WHERE name = '_sequel_new_users'`, stmts[3])
		assert.Equal(t, `INSERT INTO sqlite_sequence (name, seq) SELECT '_sequel_new_users', seq FROM sqlite_sequence WHERE name = 'users'`, stmts[4])
		assert.Equal(t, `DROP TABLE "users"`, stmts[5])
		assert.Equal(t, `ALTER TABLE "_sequel_new_users" RENAME TO "users"`, stmts[6])
		assert.Equal(t, index, stmts[7])
	})

	t.Run("rebuild without autoincrement keeps no counter", func(t *testing.T) {
		live := users()
		live.Columns[0].AutoIncrement = false
		op := &domain.AlterDefault{Table: "users", Column: "age", Default: schema.IntDefault(18)}

		stmts, err := Generate(op, live, nil)
		require.NoError(t, err)
		for _, stmt := range stmts {
			assert.NotContains(t, stmt, "sqlite_sequence")
		}
	})

	t.Run("add column with non-constant default rebuilds", func(t *testing.T) {
		col := schema.Column{Name: "created_at", Type: schema.Timestamp, Default: schema.ExprDefault("CURRENT_TIMESTAMP")}
		op := &domain.AddColumn{Table: "users", Column: col}
		require.True(t, NeedsRebuild(op))

		stmts, err := Generate(op, users(), nil)
		require.NoError(t, err)
		assert.Contains(t, stmts[1], `"created_at" DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP`)
		assert.Equal(t, `INSERT INTO "_sequel_new_users" ("id", "name", "age") SELECT "id", "name", "age" FROM "users"`, stmts[2])
		assert.Equal(t, `ALTER TABLE "_sequel_new_users" RENAME TO "users"`, stmts[len(stmts)-1])

		_, err = Generate(op, nil, nil)
		assert.Error(t, err)
	})

	t.Run("alter default on missing table", func(t *testing.T) {
		_, err := Generate(&domain.AlterDefault{Table: "users", Column: "age"}, nil, nil)
		assert.Error(t, err)
	})

	t.Run("alter default on missing column", func(t *testing.T) {
		_, err := Generate(&domain.AlterDefault{Table: "users", Column: "nope"}, users(), nil)
		assert.Error(t, err)
	})
}

func TestNeedsRebuild(t *testing.T) {
	add := func(d *string) domain.Operation {
		return &domain.AddColumn{Table: "t", Column: schema.Column{Name: "c", Type: schema.Text, Nullable: true, Default: d}}
	}
	tests := []struct {
		name string
		op   domain.Operation
		want bool
	}{
		{"no default", add(nil), false},
		{"string", add(schema.StringDefault("x")), false},
		{"integer", add(schema.IntDefault(-3)), false},
		{"real", add(schema.RealDefault(2.5)), false},
		{"null", add(schema.ExprDefault("NULL")), false},
		{"current timestamp", add(schema.ExprDefault("CURRENT_TIMESTAMP")), true},
		{"current date", add(schema.ExprDefault("current_date")), true},
		{"expression", add(schema.ExprDefault("(abs(-1))")), true},
		{"alter default", &domain.AlterDefault{Table: "t", Column: "c"}, true},
		{"drop column", &domain.DropColumn{Table: "t", Column: "c"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NeedsRebuild(tt.op))
		})
	}
}
