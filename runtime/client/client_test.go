package client_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/satishbabariya/sequel-go/migrate/domain"
	"github.com/satishbabariya/sequel-go/query/ast"
	"github.com/satishbabariya/sequel-go/query/columns"
	"github.com/satishbabariya/sequel-go/runtime/client"
)

type User struct {
	ID   int64   `sequel:"id,pk,autoincrement"`
	Name *string `sequel:"name,default=Unknown name"`
	Age  int     `sequel:"age"`
}

type Post struct {
	ID        int64
	UserID    int64 `sequel:",references=user.id"`
	Title     string
	Body      []byte
	Score     float64
	Published bool
	Rating    sql.NullFloat64
	CreatedAt time.Time
}

var (
	userName = columns.Text("user", "name")
	userAge  = columns.New[int]("user", "age")
)

func strPtr(s string) *string { return &s }

type ClientSuite struct {
	suite.Suite
	ctx context.Context
	c   *client.Client
}

func (s *ClientSuite) SetupTest() {
	s.ctx = context.Background()
	c, err := client.Open(s.ctx)
	s.Require().NoError(err)
	s.c = c

	s.Require().NoError(client.Register[User](c))
	s.Require().NoError(client.Register[Post](c))
	s.Require().NoError(c.Migrate(s.ctx))
}

func (s *ClientSuite) TearDownTest() {
	s.Require().NoError(s.c.Close())
}

func (s *ClientSuite) insertUsers() {
	s.Require().NoError(client.Insert(s.ctx, s.c,
		User{Name: strPtr("John"), Age: 20},
		User{Name: strPtr("Jane"), Age: 31},
	))
}

func (s *ClientSuite) TestSelectByName() {
	s.insertUsers()

	users, err := client.Select[User](s.c).Where(ast.Eq("name", "John")).Exec(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(users, 1)
	s.Equal(int64(1), users[0].ID)
	s.Equal("John", *users[0].Name)
	s.Equal(20, users[0].Age)
}

func (s *ClientSuite) TestMigrateIsIdempotent() {
	m, err := s.c.PlanMigration(s.ctx)
	s.Require().NoError(err)
	s.True(m.IsEmpty())

	tables, err := s.c.Tables(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"post", "user"}, tables)
}

func (s *ClientSuite) TestDefaultsAndAbsentFields() {
	id, err := client.InsertOne(s.ctx, s.c, User{Age: 5})
	s.Require().NoError(err)
	s.Equal(int64(1), id)

	u, err := client.Select[User](s.c).Where(ast.Eq("id", id)).First(s.ctx)
	s.Require().NoError(err)
	s.Require().NotNil(u.Name)
	s.Equal("Unknown name", *u.Name)
}

func (s *ClientSuite) TestRoundTrip() {
	s.insertUsers()
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	in := Post{
		UserID:    1,
		Title:     "Hello",
		Body:      []byte{0x01, 0x02},
		Score:     4.5,
		Published: true,
		Rating:    sql.NullFloat64{Float64: 9.5, Valid: true},
		CreatedAt: created,
	}
	id, err := client.InsertOne(s.ctx, s.c, in)
	s.Require().NoError(err)

	out, err := client.Select[Post](s.c).Where(ast.Eq("id", id)).First(s.ctx)
	s.Require().NoError(err)

	in.ID = id
	s.Equal(in.Title, out.Title)
	s.Equal(in.Body, out.Body)
	s.Equal(in.Score, out.Score)
	s.Equal(in.Published, out.Published)
	s.Equal(in.Rating, out.Rating)
	s.True(in.CreatedAt.Equal(out.CreatedAt), "created_at %v", out.CreatedAt)
	s.Equal(in.UserID, out.UserID)
}

func (s *ClientSuite) TestTypedColumnsAndPaging() {
	s.Require().NoError(client.Insert(s.ctx, s.c,
		User{Name: strPtr("Ann"), Age: 40},
		User{Name: strPtr("Bob"), Age: 25},
		User{Age: 18},
		User{Name: strPtr("Cid"), Age: 33},
	))

	users, err := client.Select[User](s.c).
		Where(ast.Or(userAge.Gt(30), userName.Like("B%"))).
		Order(userAge.Desc()).
		Limit(2).
		Offset(1).
		Exec(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(users, 2)
	s.Equal("Cid", *users[0].Name)
	s.Equal("Bob", *users[1].Name)

	n, err := client.Count[User](s.ctx, s.c, userAge.In(18, 25))
	s.Require().NoError(err)
	s.Equal(int64(2), n)

	n, err = client.Select[User](s.c).Where(ast.IsNull("name")).Limit(0).Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(0), n)
}

func (s *ClientSuite) TestFirstNotFound() {
	_, err := client.Select[User](s.c).Where(userName.Eq("nobody")).First(s.ctx)
	s.True(client.IsNotFound(err))
}

func (s *ClientSuite) TestUpdateAndDelete() {
	s.insertUsers()

	_, err := client.Update[User](s.c).Set("age", 1).Exec(s.ctx)
	s.True(client.IsUnscopedMutation(err))

	n, err := client.Update[User](s.c).Assign(userAge.Set(21)).Where(userName.Eq("John")).Exec(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), n)

	n, err = client.Update[User](s.c).Set("age", 0).All().Exec(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(2), n)

	_, err = client.Delete[User](s.c).Exec(s.ctx)
	s.True(client.IsUnscopedMutation(err))

	n, err = client.Delete[User](s.c).Where(userName.Eq("Jane")).Exec(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), n)

	total, err := client.Count[User](s.ctx, s.c)
	s.Require().NoError(err)
	s.Equal(int64(1), total)
}

func (s *ClientSuite) TestUnknownColumn() {
	_, err := client.Select[User](s.c).Where(ast.Eq("email", "x")).Exec(s.ctx)
	s.True(client.IsUnknownColumn(err))

	_, err = client.Update[User](s.c).Set("email", "x").All().Exec(s.ctx)
	s.True(client.IsUnknownColumn(err))
}

func (s *ClientSuite) TestTransaction() {
	boom := errors.New("boom")
	err := s.c.Transaction(s.ctx, func(tx *client.Client) error {
		if err := client.Insert(s.ctx, tx, User{Name: strPtr("Tmp"), Age: 1}); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	n, err := client.Count[User](s.ctx, s.c)
	s.Require().NoError(err)
	s.Equal(int64(0), n)

	err = s.c.Transaction(s.ctx, func(tx *client.Client) error {
		if err := client.Insert(s.ctx, tx, User{Name: strPtr("Kept"), Age: 1}); err != nil {
			return err
		}
		nestedErr := tx.Transaction(s.ctx, func(inner *client.Client) error {
			if err := client.Insert(s.ctx, inner, User{Name: strPtr("Dropped"), Age: 2}); err != nil {
				return err
			}
			return boom
		})
		s.ErrorIs(nestedErr, boom)
		s.ErrorIs(tx.Migrate(s.ctx), client.ErrInTransaction)

		tables, err := tx.Tables(s.ctx)
		s.Require().NoError(err)
		s.Contains(tables, "user")
		return nil
	})
	s.Require().NoError(err)

	users, err := client.Select[User](s.c).Exec(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(users, 1)
	s.Equal("Kept", *users[0].Name)
}

func (s *ClientSuite) TestNotRegistered() {
	type Orphan struct {
		ID int64
	}
	_, err := client.Select[Orphan](s.c).Exec(s.ctx)
	s.ErrorIs(err, client.ErrNotRegistered)

	err = client.Insert(s.ctx, s.c, Orphan{})
	s.ErrorIs(err, client.ErrNotRegistered)
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func TestConcreteScenario(t *testing.T) {
	ctx := context.Background()
	c, err := client.Open(ctx)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, client.Register[User](c))

	m, err := c.PlanMigration(ctx)
	require.NoError(t, err)
	require.Len(t, m, 1)
	assert.Equal(t, domain.KindCreateTable, m[0].Kind())

	require.NoError(t, c.Migrate(ctx))
	require.NoError(t, client.Insert(ctx, c, User{Name: strPtr("John"), Age: 20}, User{Name: strPtr("Jane"), Age: 31}))

	users, err := client.Select[User](c).Where(ast.Eq("name", "John")).Exec(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, 20, users[0].Age)
}

func TestTypeConversionError(t *testing.T) {
	ctx := context.Background()
	c, err := client.Open(ctx)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, client.Register[User](c))
	_, err = c.DB().ExecContext(ctx, `CREATE TABLE "user" ("id" INTEGER PRIMARY KEY AUTOINCREMENT, "name" TEXT, "age" INTEGER)`)
	require.NoError(t, err)
	_, err = c.DB().ExecContext(ctx, `INSERT INTO "user" ("name", "age") VALUES ('Ghost', NULL)`)
	require.NoError(t, err)

	_, err = client.Select[User](c).Exec(ctx)
	require.Error(t, err)
	assert.True(t, client.IsTypeConversion(err))
}

func TestMigrationErrorSurfaces(t *testing.T) {
	ctx := context.Background()
	c, err := client.Open(ctx)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.DB().ExecContext(ctx, `CREATE TABLE "user" ("id" INTEGER PRIMARY KEY AUTOINCREMENT, "name" TEXT)`)
	require.NoError(t, err)
	_, err = c.DB().ExecContext(ctx, `INSERT INTO "user" ("name") VALUES ('x')`)
	require.NoError(t, err)

	require.NoError(t, client.Register[User](c))
	err = c.Migrate(ctx)
	require.Error(t, err)
	assert.True(t, client.IsMigrationError(err))
	assert.ErrorIs(t, err, domain.ErrMissingDefault)
}

func TestMiddlewareAndStatementCache(t *testing.T) {
	ctx := context.Background()
	var kinds []ast.StatementKind
	var failed int

	c, err := client.Open(ctx,
		client.WithStatementCache(4),
		client.WithMiddleware(
			client.TimingMiddleware(func(stmt ast.Statement, d time.Duration) {
				kinds = append(kinds, stmt.Kind)
			}),
			client.ErrorMiddleware(func(ast.Statement, error) { failed++ }),
		),
	)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, client.Register[User](c))
	require.NoError(t, c.Migrate(ctx))

	for i := 0; i < 3; i++ {
		_, err := client.InsertOne(ctx, c, User{Age: i})
		require.NoError(t, err)
	}
	n, err := client.Count[User](ctx, c)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	assert.Equal(t, []ast.StatementKind{ast.KindInsert, ast.KindInsert, ast.KindInsert, ast.KindCount}, kinds)
	assert.Equal(t, 0, failed)
}

func TestRequireScopedMutationsOff(t *testing.T) {
	ctx := context.Background()
	c, err := client.Open(ctx, client.WithRequireScopedMutations(false), client.WithDriver("sqlite"))
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, client.Register[User](c))
	require.NoError(t, c.Migrate(ctx))
	require.NoError(t, client.Insert(ctx, c, User{Age: 1}, User{Age: 2}))

	n, err := client.Delete[User](c).Exec(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
