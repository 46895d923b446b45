package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/satishbabariya/sequel-go/cli/internal/ui"
	"github.com/satishbabariya/sequel-go/internal/adapters/sqlite"
)

type CommandsSuite struct {
	suite.Suite
	dir string
}

func TestCommandsSuite(t *testing.T) {
	suite.Run(t, new(CommandsSuite))
}

func (s *CommandsSuite) SetupTest() {
	pterm.DisableStyling()
	s.dir = s.T().TempDir()
	s.T().Chdir(s.dir)
	s.T().Setenv("DATABASE_URL", "")
	s.Require().NoError(os.Unsetenv("DATABASE_URL"))

	prev := confirm
	s.T().Cleanup(func() { confirm = prev })
	confirm = func(string) (bool, error) {
		s.T().Fatal("unexpected prompt")
		return false, nil
	}

	out, err := s.run("init", "--yes")
	s.Require().NoError(err, out)
}

func (s *CommandsSuite) run(args ...string) (string, error) {
	var buf bytes.Buffer
	prev := ui.Out
	ui.Out = &buf
	defer func() { ui.Out = prev }()

	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(&buf)
	root.SetErr(&buf)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func (s *CommandsSuite) writeSchema(src string) {
	s.Require().NoError(os.WriteFile(filepath.Join(s.dir, "schema.sequel"), []byte(src), 0o644))
}

func (s *CommandsSuite) seed() {
	db, err := sqlite.Open(context.Background(), sqlite.Config{Path: filepath.Join(s.dir, "app.db")})
	s.Require().NoError(err)
	defer db.Close()

	_, err = db.Exec(`INSERT INTO "users" ("name", "email", "age") VALUES ('John', 'j@x', 30), ('Ann', 'a@x', 25), ('Kid', 'k@x', 10)`)
	s.Require().NoError(err)
}

func (s *CommandsSuite) TestInitCreatesProject() {
	for _, name := range []string{".sequel.yaml", "schema.sequel", ".env.example"} {
		s.FileExists(filepath.Join(s.dir, name))
	}

	out, err := s.run("init", "--yes")
	s.Require().NoError(err)
	s.Contains(out, "already exists")
}

func (s *CommandsSuite) TestPlanApplyAndInspect() {
	out, err := s.run("migrate", "plan", "--sql")
	s.Require().NoError(err)
	s.Contains(out, "CreateTable")
	s.Contains(out, "users")
	s.Contains(out, "CREATE TABLE")

	_, err = s.run("migrate", "apply")
	s.Require().NoError(err)

	out, err = s.run("migrate", "plan")
	s.Require().NoError(err)
	s.Contains(out, "up to date")

	out, err = s.run("db", "tables")
	s.Require().NoError(err)
	s.Contains(out, "users")

	out, err = s.run("db", "describe", "users")
	s.Require().NoError(err)
	s.Contains(out, "email")
	s.Contains(out, "unique")

	out, err = s.run("db", "pull")
	s.Require().NoError(err)
	s.Contains(out, "model Users {")

	_, err = s.run("db", "describe", "missing")
	s.Error(err)
}

func (s *CommandsSuite) TestQuery() {
	_, err := s.run("migrate", "apply")
	s.Require().NoError(err)
	s.seed()

	out, err := s.run("query", "users", "--where", "age >= 18", "--order", "-age", "--columns", "name,age")
	s.Require().NoError(err)
	john, ann := strings.Index(out, "John"), strings.Index(out, "Ann")
	s.Require().GreaterOrEqual(john, 0)
	s.Require().GreaterOrEqual(ann, 0)
	s.Less(john, ann)
	s.NotContains(out, "Kid")

	out, err = s.run("query", "users", "--where", `name LIKE "K%" OR age IN (25)`, "--count")
	s.Require().NoError(err)
	s.Equal("2", strings.TrimSpace(out))

	out, err = s.run("query", "users", "--order", "name", "--limit", "1", "--offset", "1")
	s.Require().NoError(err)
	s.Contains(out, "John")
	s.NotContains(out, "Ann")

	_, err = s.run("query", "users", "--where", "nope = 1")
	s.Error(err)

	_, err = s.run("query", "users", "--where", "age >=")
	s.Error(err)
}

func (s *CommandsSuite) TestDestructiveNeedsConfirmation() {
	_, err := s.run("migrate", "apply")
	s.Require().NoError(err)

	s.writeSchema(`
model User {
  id    Integer @id @autoincrement
  name  Text?   @default("Unknown name")
  email Text    @unique
  age   Integer

  @@map("users")
}
`)

	asked := 0
	confirm = func(string) (bool, error) {
		asked++
		return false, nil
	}
	out, err := s.run("migrate", "apply")
	s.Require().NoError(err)
	s.Equal(1, asked)
	s.Contains(out, "cancelled")

	out, err = s.run("migrate", "plan")
	s.Require().NoError(err)
	s.Contains(out, "DropColumn")

	_, err = s.run("migrate", "apply", "--yes")
	s.Require().NoError(err)
	s.Equal(1, asked)

	out, err = s.run("db", "describe", "users")
	s.Require().NoError(err)
	s.NotContains(out, "created_at")
}

func (s *CommandsSuite) TestGenerateAndValidate() {
	out, err := s.run("validate")
	s.Require().NoError(err)
	s.Contains(out, "is valid")

	_, err = s.run("generate", "--package", "store", "--out", "store")
	s.Require().NoError(err)

	src, err := os.ReadFile(filepath.Join(s.dir, "store", "models_gen.go"))
	s.Require().NoError(err)
	s.Contains(string(src), "package store")
	s.Contains(string(src), "type Users struct")

	s.writeSchema("model Broken {\n  id Integer @id @nope\n}\n")
	_, err = s.run("validate")
	s.Error(err)
}

func (s *CommandsSuite) TestFormat() {
	_, err := s.run("fmt", "--check")
	s.Require().ErrorIs(err, ErrNotFormatted)

	_, err = s.run("fmt")
	s.Require().NoError(err)

	out, err := s.run("fmt", "--check")
	s.Require().NoError(err)
	s.Contains(out, "is formatted")
}

func (s *CommandsSuite) TestFlagsOverrideConfig() {
	out, err := s.run("--database", "sqlite://other.db", "migrate", "apply")
	s.Require().NoError(err, out)
	s.FileExists(filepath.Join(s.dir, "other.db"))
	s.NoFileExists(filepath.Join(s.dir, "app.db"))

	_, err = s.run("--schema", "missing.sequel", "validate")
	s.Error(err)
}

func TestOrderKey(t *testing.T) {
	tests := []struct {
		in   string
		col  string
		desc bool
	}{
		{"name", "name", false},
		{"-age", "age", true},
		{"age:desc", "age", true},
		{"age:ASC", "age", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			key := orderKey(tt.in)
			assert.Equal(t, tt.col, key.Column)
			assert.Equal(t, tt.desc, key.Direction == "DESC")
		})
	}
}

func TestPlanMarkdown(t *testing.T) {
	root := NewRootCommand()
	require.NotNil(t, root)

	md := planMarkdown(nil, nil)
	assert.Contains(t, md, "# Migration plan")
	assert.NotContains(t, md, "```sql")
}
