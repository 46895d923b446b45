// Package model derives table descriptors from Go struct types and moves
// values between struct fields and table columns.
//
// A struct maps to a table named after the snake_case form of its type name,
// unless the type has a TableName() string method. Every exported field maps
// to a column; the column is configured with a sequel struct tag:
//
//	type User struct {
//		ID    int64          `sequel:"id,pk,autoincrement"`
//		Name  *string        `sequel:"name,default=Unknown name"`
//		Email string         `sequel:",unique"`
//		Team  sql.NullInt64  `sequel:"team_id,references=teams.id"`
//		Notes string         `sequel:"-"`
//	}
//
// Pointer and sql.Null* fields are nullable. An integer field named ID becomes
// the autoincrement primary key when no field is tagged pk.
package model

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/satishbabariya/sequel-go/internal/debug"
	"github.com/satishbabariya/sequel-go/query/executor"
	"github.com/satishbabariya/sequel-go/schema"
)

// TagName is the struct tag read for column options
const TagName = "sequel"

// ErrNotStruct is returned for record types that are not structs
var ErrNotStruct = errors.New("record type must be a struct")

// Tabler lets a record type choose its table name
type Tabler interface {
	TableName() string
}

// Field binds a struct field to a column
type Field struct {
	Column schema.Column
	Index  []int
	Type   reflect.Type
}

// Model is the mapping between a struct type and its table
type Model struct {
	Type     reflect.Type
	Table    *schema.Table
	Fields   []Field
	byColumn map[string]int
}

var models sync.Map // reflect.Type -> *Model

// Of returns the model of T
func Of[T any]() (*Model, error) {
	return Describe(reflect.TypeOf((*T)(nil)).Elem())
}

// Describe returns the model of the struct type t. Results are cached per type.
func Describe(t reflect.Type) (*Model, error) {
	if cached, ok := models.Load(t); ok {
		return cached.(*Model), nil
	}

	m, err := describe(t)
	if err != nil {
		return nil, err
	}
	actual, _ := models.LoadOrStore(t, m)
	return actual.(*Model), nil
}

func describe(t reflect.Type) (*Model, error) {
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: got %v", ErrNotStruct, t)
	}

	m := &Model{
		Type:     t,
		Table:    &schema.Table{Name: tableName(t), Model: modelName(t)},
		byColumn: make(map[string]int),
	}

	if err := m.collect(t, nil); err != nil {
		return nil, err
	}
	m.inferPrimaryKey()

	for _, f := range m.Fields {
		m.Table.Columns = append(m.Table.Columns, f.Column)
	}
	if err := m.Table.Validate(); err != nil {
		return nil, err
	}

	debug.Debug("Described record type", "type", m.Table.Model, "table", m.Table.Name, "columns", len(m.Fields))
	return m, nil
}

// collect walks the fields of t, flattening embedded structs
func (m *Model) collect(t reflect.Type, parent []int) error {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		index := append(append([]int{}, parent...), i)

		tag, hasTag := sf.Tag.Lookup(TagName)
		if tag == "-" {
			continue
		}

		if sf.Anonymous && sf.IsExported() && !hasTag {
			ft := sf.Type
			if ft.Kind() == reflect.Struct && kindOf(ft) == kindUnsupported {
				if err := m.collect(ft, index); err != nil {
					return err
				}
				continue
			}
		}
		if !sf.IsExported() {
			continue
		}

		f, err := parseField(m.Table.Name, sf, tag)
		if err != nil {
			return err
		}
		f.Index = index

		if _, dup := m.byColumn[f.Column.Name]; dup {
			return &schema.InvalidDescriptorError{Table: m.Table.Name, Column: f.Column.Name, Reason: "two fields map to the column"}
		}
		m.byColumn[f.Column.Name] = len(m.Fields)
		m.Fields = append(m.Fields, f)
	}
	return nil
}

func (m *Model) inferPrimaryKey() {
	for _, f := range m.Fields {
		if f.Column.PrimaryKey {
			return
		}
	}
	for i := range m.Fields {
		f := &m.Fields[i]
		if m.Type.FieldByIndex(f.Index).Name == "ID" && f.Column.Type == schema.Integer && !isNullable(f.Type) {
			f.Column.PrimaryKey = true
			f.Column.AutoIncrement = true
			f.Column.Nullable = false
			return
		}
	}
}

// Field returns the field bound to column
func (m *Model) Field(column string) (Field, bool) {
	i, ok := m.byColumn[column]
	if !ok {
		return Field{}, false
	}
	return m.Fields[i], true
}

// Values returns the columns present in rec and their values, in declared
// order. Nil pointers, invalid sql.Null* values and a zero autoincrement key
// are absent so the database supplies them.
func (m *Model) Values(rec any) ([]string, []any, error) {
	v := reflect.Indirect(reflect.ValueOf(rec))
	if v.Type() != m.Type {
		return nil, nil, fmt.Errorf("expected %s, got %s", m.Type, v.Type())
	}

	var (
		columns []string
		values  []any
	)
	for _, f := range m.Fields {
		fv := v.FieldByIndex(f.Index)
		value, present, err := fieldValue(f, fv)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read %s.%s: %w", m.Table.Name, f.Column.Name, err)
		}
		if !present {
			continue
		}
		columns = append(columns, f.Column.Name)
		values = append(values, value)
	}
	return columns, values, nil
}

// Scan stores values, one per entry of columns, into the struct dst points to.
// Columns without a field are ignored.
func (m *Model) Scan(dst any, columns []string, values []any) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Ptr || v.Elem().Type() != m.Type {
		return fmt.Errorf("expected *%s, got %T", m.Type, dst)
	}
	v = v.Elem()

	for i, col := range columns {
		f, ok := m.Field(col)
		if !ok {
			continue
		}
		if err := executor.Assign(v.FieldByIndex(f.Index), m.Table.Name, col, values[i]); err != nil {
			return err
		}
	}
	return nil
}

func fieldValue(f Field, fv reflect.Value) (any, bool, error) {
	if f.Column.AutoIncrement && fv.IsZero() {
		return nil, false, nil
	}

	if fv.Kind() == reflect.Ptr {
		if fv.IsNil() {
			return nil, false, nil
		}
		if _, ok := fv.Interface().(driver.Valuer); !ok {
			fv = fv.Elem()
		}
	}

	if valuer, ok := fv.Interface().(driver.Valuer); ok {
		value, err := valuer.Value()
		if err != nil {
			return nil, false, err
		}
		if value == nil {
			return nil, false, nil
		}
		return value, true, nil
	}
	return fv.Interface(), true, nil
}

func tableName(t reflect.Type) string {
	zero := reflect.New(t)
	if tn, ok := zero.Interface().(Tabler); ok {
		return tn.TableName()
	}
	return schema.SnakeCase(t.Name())
}

func modelName(t reflect.Type) string {
	if t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}
