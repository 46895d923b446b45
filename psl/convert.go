package psl

import (
	"fmt"
	"strings"

	"github.com/satishbabariya/sequel-go/schema"
)

// Tables converts every model of f to a table descriptor, in file order
func (f *File) Tables() ([]*schema.Table, error) {
	seen := make(map[string]*Model, len(f.Models))
	tables := make([]*schema.Table, 0, len(f.Models))
	for _, m := range f.Models {
		t, err := m.Table()
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[t.Name]; dup {
			return nil, errorf(m.Pos, "table %q is already declared by model %s at %s", t.Name, prev.Name, prev.Pos)
		}
		seen[t.Name] = m
		tables = append(tables, t)
	}
	return tables, nil
}

// Table converts the model to a table descriptor. The table is named after
// the snake_case model name unless @@map gives one.
func (m *Model) Table() (*schema.Table, error) {
	t := &schema.Table{Name: schema.SnakeCase(m.Name)}

	for _, a := range m.Attributes {
		switch a.Name {
		case "map":
			name, ok := stringArg(a.Args)
			if !ok {
				return nil, errorf(a.Pos, "@@map takes one non-empty string argument")
			}
			t.Name = name
		default:
			return nil, errorf(a.Pos, "unknown model attribute @@%s", a.Name)
		}
	}

	for _, f := range m.Fields {
		col, err := f.Column()
		if err != nil {
			return nil, err
		}
		t.Columns = append(t.Columns, col)
	}

	if err := t.Validate(); err != nil {
		return nil, errorf(m.Pos, "model %s: %v", m.Name, err)
	}
	return t, nil
}

// Column converts the field to a column descriptor
func (f *Field) Column() (schema.Column, error) {
	typ, err := schema.ParseSQLType(f.Type)
	if err != nil {
		return schema.Column{}, errorf(f.Pos, "field %s: %v", f.Name, err)
	}
	col := schema.Column{Name: f.Name, Type: typ, Nullable: f.Optional}

	for _, a := range f.Attributes {
		switch a.Name {
		case "id":
			col.PrimaryKey = true
		case "autoincrement":
			col.AutoIncrement = true
		case "unique":
			col.Unique = true
		case "map":
			name, ok := stringArg(a.Args)
			if !ok {
				return col, errorf(a.Pos, "@map takes one non-empty string argument")
			}
			col.Name = name
		case "references":
			if len(a.Args) != 1 || len(a.Args[0].Path) != 2 {
				return col, errorf(a.Pos, "@references takes one table.column argument")
			}
			col.References = &schema.Reference{Table: a.Args[0].Path[0], Column: a.Args[0].Path[1]}
		case "default":
			if len(a.Args) != 1 {
				return col, errorf(a.Pos, "@default takes exactly one argument")
			}
			if err := applyDefault(&col, a.Args[0]); err != nil {
				return col, errorf(a.Args[0].Pos, "field %s: invalid default %s: %v", f.Name, a.Args[0].Text(), err)
			}
		default:
			return col, errorf(a.Pos, "unknown field attribute @%s", a.Name)
		}
	}
	return col, nil
}

func applyDefault(col *schema.Column, v *Value) error {
	var (
		d   *string
		err error
	)
	switch {
	case v.String != nil:
		if col.Type == schema.Text || col.Type == schema.Timestamp || col.Type == schema.Blob {
			d = schema.StringDefault(*v.String)
		} else {
			d, err = schema.ParseDefault(col.Type, *v.String)
		}
	case v.Number != nil:
		d, err = schema.ParseDefault(col.Type, *v.Number)
	case v.Call != nil:
		switch strings.ToLower(*v.Call) {
		case "autoincrement":
			col.AutoIncrement = true
			return nil
		case "now":
			d = schema.ExprDefault("CURRENT_TIMESTAMP")
		default:
			return fmt.Errorf("unknown function %s()", *v.Call)
		}
	case len(v.Path) == 1:
		switch upper := strings.ToUpper(v.Path[0]); upper {
		case "CURRENT_TIMESTAMP", "CURRENT_DATE", "CURRENT_TIME":
			d = schema.ExprDefault(upper)
		default:
			d, err = schema.ParseDefault(col.Type, v.Path[0])
		}
	default:
		return fmt.Errorf("unsupported value")
	}
	if err != nil {
		return err
	}
	col.Default = d
	return nil
}

func stringArg(args []*Value) (string, bool) {
	if len(args) != 1 || args[0].String == nil || *args[0].String == "" {
		return "", false
	}
	return *args[0].String, true
}
