package generator

import (
	"go/parser"
	"go/token"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/sequel-go/psl"
	"github.com/satishbabariya/sequel-go/schema"
)

const testSchema = `
model User {
  id         Integer   @id @autoincrement
  name       Text?     @default("Unknown name")
  age        Integer
  active     Boolean   @default(true)
  avatar     Blob?
  created_at Timestamp @default(now())
  team_id    Integer?  @references(teams.id)
}

model Team {
  id   Integer @id
  name Text    @unique

  @@map("TeamMembers")
}
`

func loadTables(t *testing.T) []*schema.Table {
	t.Helper()
	tables, err := psl.Load("schema.sequel", testSchema)
	require.NoError(t, err)
	return tables
}

func TestGenerate(t *testing.T) {
	src, err := New(loadTables(t), "models", WithSource("schema.sequel")).Generate()
	require.NoError(t, err)
	out := strings.Join(strings.Fields(string(src)), " ")

	_, err = parser.ParseFile(token.NewFileSet(), "models_gen.go", src, parser.AllErrors)
	require.NoError(t, err, out)

	for _, want := range []string{
		"// Code generated by sequel generate. DO NOT EDIT.",
		"package models",
		`"time"`,
		"type User struct {",
		"ID int64 `sequel:\"id,pk,autoincrement\"`",
		"Name *string `sequel:\"name,default=Unknown name\"`",
		"Active bool `sequel:\"active,default=true\"`",
		"Avatar []byte `sequel:\"avatar,null\"`",
		"CreatedAt time.Time `sequel:\"created_at,default=now\"`",
		"TeamID *int64 `sequel:\"team_id,references=teams.id\"`",
		`func (TeamMembers) TableName() string { return "TeamMembers" }`,
		`Name: columns.Text("user", "name"),`,
		`ID: columns.New[int64]("user", "id"),`,
		"Name columns.TextColumn",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "func (User) TableName")
}

func TestTagDefaults(t *testing.T) {
	tests := []struct {
		name    string
		col     schema.Column
		want    string
		wantErr bool
	}{
		{"string", schema.Column{Name: "s", Type: schema.Text, Default: schema.StringDefault("it's")}, "`sequel:\"s,default=it's\"`", false},
		{"real", schema.Column{Name: "r", Type: schema.Real, Default: schema.ExprDefault("(2.5)")}, "`sequel:\"r,default=2.5\"`", false},
		{"bool false", schema.Column{Name: "b", Type: schema.Boolean, Default: schema.BoolDefault(false)}, "`sequel:\"b,default=false\"`", false},
		{"comma", schema.Column{Name: "s", Type: schema.Text, Default: schema.StringDefault("a,b")}, "", true},
		{"expression", schema.Column{Name: "n", Type: schema.Integer, Default: schema.ExprDefault("(1 + 1)")}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tagFor(tt.col)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	path, err := New(loadTables(t), "db", WithFs(fs)).WriteFile("internal/db")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("internal/db", DefaultFileName), path)

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "package db")
}

func TestGenerateErrors(t *testing.T) {
	_, err := New(nil, "db").Generate()
	assert.Error(t, err)

	clash := []*schema.Table{
		{Name: "user_data", Columns: []schema.Column{{Name: "id", Type: schema.Integer}}},
		{Name: "userData", Columns: []schema.Column{{Name: "id", Type: schema.Integer}}},
	}
	_, err = New(clash, "db").Generate()
	assert.Error(t, err)
}
