package ast

// StatementKind is the kind of a compiled statement
type StatementKind string

const (
	KindSelect StatementKind = "SELECT"
	KindCount  StatementKind = "COUNT"
	KindInsert StatementKind = "INSERT"
	KindUpdate StatementKind = "UPDATE"
	KindDelete StatementKind = "DELETE"
)

// Node is a statement tree
type Node interface {
	Kind() StatementKind
}

// SortDirection represents sort direction
type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// OrderBy represents ordering
type OrderBy struct {
	Column    string
	Direction SortDirection
}

// Assignment is one SET entry of an update
type Assignment struct {
	Column string
	Value  any
}

// Select reads rows, or counts them when Count is set
type Select struct {
	Table   string
	Columns []string
	Where   Expr
	OrderBy []OrderBy
	Limit   *int64
	Offset  *int64
	Count   bool
}

func (s *Select) Kind() StatementKind {
	if s.Count {
		return KindCount
	}
	return KindSelect
}

// Insert writes one or more rows sharing a column list. No columns means
// DEFAULT VALUES.
type Insert struct {
	Table   string
	Columns []string
	Rows    [][]any
}

func (*Insert) Kind() StatementKind { return KindInsert }

// Update rewrites the rows matching Where
type Update struct {
	Table string
	Set   []Assignment
	Where Expr
}

func (*Update) Kind() StatementKind { return KindUpdate }

// Delete removes the rows matching Where
type Delete struct {
	Table string
	Where Expr
}

func (*Delete) Kind() StatementKind { return KindDelete }

// Statement is compiled SQL with its arguments in placeholder order
type Statement struct {
	Kind StatementKind
	SQL  string
	Args []any
}
