package diff

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/sequel-go/migrate/domain"
	"github.com/satishbabariya/sequel-go/schema"
)

func usersTable() *schema.Table {
	return &schema.Table{
		Name: "users",
		Columns: []schema.Column{
			{Name: "id", Type: schema.Integer, PrimaryKey: true, AutoIncrement: true},
			{Name: "name", Type: schema.Text, Nullable: true, Default: schema.StringDefault("Unknown name")},
			{Name: "age", Type: schema.Integer},
		},
	}
}

func kinds(m domain.Migration) []domain.OperationKind {
	out := make([]domain.OperationKind, len(m))
	for i, op := range m {
		out[i] = op.Kind()
	}
	return out
}

func TestPlanCreateTable(t *testing.T) {
	declared := usersTable()
	m, err := Plan(declared, nil)
	require.NoError(t, err)
	require.Len(t, m, 1)

	create, ok := m[0].(*domain.CreateTable)
	require.True(t, ok)
	assert.Equal(t, declared.Columns, create.Table.Columns)

	// the operation owns its copy
	declared.Columns[0].Name = "changed"
	assert.Equal(t, "id", create.Table.Columns[0].Name)
}

func TestPlanIdentical(t *testing.T) {
	live := usersTable()
	// SQLite reports defaults the way they were written, sometimes parenthesised
	d := "('Unknown name')"
	live.Columns[1].Default = &d

	m, err := Plan(usersTable(), live)
	require.NoError(t, err)
	assert.True(t, m.IsEmpty())
}

func TestPlanColumnChanges(t *testing.T) {
	tests := []struct {
		name     string
		declared func(*schema.Table)
		live     func(*schema.Table)
		want     []domain.OperationKind
		wantErr  error
	}{
		{
			name: "add nullable column",
			declared: func(t *schema.Table) {
				t.Columns = append(t.Columns, schema.Column{Name: "bio", Type: schema.Text, Nullable: true})
			},
			want: []domain.OperationKind{domain.KindAddColumn},
		},
		{
			name: "add defaulted column",
			declared: func(t *schema.Table) {
				t.Columns = append(t.Columns, schema.Column{Name: "score", Type: schema.Real, Default: schema.RealDefault(0)})
			},
			want: []domain.OperationKind{domain.KindAddColumn},
		},
		{
			name: "add non-nullable column without default",
			declared: func(t *schema.Table) {
				t.Columns = append(t.Columns, schema.Column{Name: "email", Type: schema.Text})
			},
			wantErr: domain.ErrMissingDefault,
		},
		{
			name: "add column with NULL default is not a default",
			declared: func(t *schema.Table) {
				t.Columns = append(t.Columns, schema.Column{Name: "email", Type: schema.Text, Default: schema.ExprDefault("NULL")})
			},
			wantErr: domain.ErrMissingDefault,
		},
		{
			name: "add unique column",
			declared: func(t *schema.Table) {
				t.Columns = append(t.Columns, schema.Column{Name: "email", Type: schema.Text, Nullable: true, Unique: true})
			},
			wantErr: domain.ErrIncompatibleChange,
		},
		{
			name: "drop column",
			declared: func(t *schema.Table) {
				t.Columns = t.Columns[:2]
			},
			want: []domain.OperationKind{domain.KindDropColumn},
		},
		{
			name: "default changed",
			declared: func(t *schema.Table) {
				t.Columns[2].Default = schema.IntDefault(18)
			},
			want: []domain.OperationKind{domain.KindAlterDefault},
		},
		{
			name: "default removed",
			declared: func(t *schema.Table) {
				t.Columns[1].Default = nil
			},
			want: []domain.OperationKind{domain.KindAlterDefault},
		},
		{
			name: "type changed",
			declared: func(t *schema.Table) {
				t.Columns[2].Type = schema.Text
			},
			wantErr: domain.ErrIncompatibleChange,
		},
		{
			name: "primary key changed",
			live: func(t *schema.Table) {
				t.Columns[0].PrimaryKey = false
				t.Columns[0].AutoIncrement = false
			},
			wantErr: domain.ErrIncompatibleChange,
		},
		{
			name: "unique primary key matches live key",
			declared: func(t *schema.Table) {
				t.Columns[0].Unique = true
			},
			want: []domain.OperationKind{},
		},
		{
			name: "nullability changed",
			declared: func(t *schema.Table) {
				t.Columns[2].Nullable = true
			},
			wantErr: domain.ErrIncompatibleChange,
		},
		{
			name: "add, drop and alter ordering",
			declared: func(t *schema.Table) {
				t.Columns[1].Default = schema.StringDefault("anonymous")
				t.Columns = append(t.Columns[:2],
					schema.Column{Name: "a", Type: schema.Text, Nullable: true},
					schema.Column{Name: "b", Type: schema.Text, Nullable: true},
				)
			},
			want: []domain.OperationKind{
				domain.KindAddColumn, domain.KindAddColumn,
				domain.KindDropColumn,
				domain.KindAlterDefault,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			declared, live := usersTable(), usersTable()
			if tt.declared != nil {
				tt.declared(declared)
			}
			if tt.live != nil {
				tt.live(live)
			}

			m, err := Plan(declared, live)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)

				var merr *domain.MigrationError
				require.True(t, errors.As(err, &merr))
				assert.Equal(t, "users", merr.Table)
				assert.NotEmpty(t, merr.Column)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, kinds(m))
		})
	}
}

func TestPlanOrderFollowsDeclarations(t *testing.T) {
	live := &schema.Table{Name: "t", Columns: []schema.Column{
		{Name: "id", Type: schema.Integer, PrimaryKey: true},
		{Name: "z", Type: schema.Text, Nullable: true},
		{Name: "y", Type: schema.Text, Nullable: true},
	}}
	declared := &schema.Table{Name: "t", Columns: []schema.Column{
		{Name: "id", Type: schema.Integer, PrimaryKey: true},
		{Name: "c", Type: schema.Text, Nullable: true},
		{Name: "b", Type: schema.Text, Nullable: true},
	}}

	m, err := Plan(declared, live)
	require.NoError(t, err)
	require.Len(t, m, 4)
	assert.Equal(t, "c", m[0].(*domain.AddColumn).Column.Name)
	assert.Equal(t, "b", m[1].(*domain.AddColumn).Column.Name)
	assert.Equal(t, "z", m[2].(*domain.DropColumn).Column)
	assert.Equal(t, "y", m[3].(*domain.DropColumn).Column)
}
