package model

import (
	"database/sql"
	"reflect"
	"strings"
	"time"

	"github.com/satishbabariya/sequel-go/schema"
)

type fieldKind int

const (
	kindUnsupported fieldKind = iota
	kindInteger
	kindReal
	kindText
	kindBlob
	kindBoolean
	kindTimestamp
)

var (
	timeType  = reflect.TypeOf(time.Time{})
	bytesType = reflect.TypeOf([]byte(nil))

	nullTypes = map[reflect.Type]fieldKind{
		reflect.TypeOf(sql.NullString{}):  kindText,
		reflect.TypeOf(sql.NullInt64{}):   kindInteger,
		reflect.TypeOf(sql.NullInt32{}):   kindInteger,
		reflect.TypeOf(sql.NullInt16{}):   kindInteger,
		reflect.TypeOf(sql.NullByte{}):    kindInteger,
		reflect.TypeOf(sql.NullFloat64{}): kindReal,
		reflect.TypeOf(sql.NullBool{}):    kindBoolean,
		reflect.TypeOf(sql.NullTime{}):    kindTimestamp,
	}
)

var sqlTypes = map[fieldKind]schema.SQLType{
	kindInteger:   schema.Integer,
	kindReal:      schema.Real,
	kindText:      schema.Text,
	kindBlob:      schema.Blob,
	kindBoolean:   schema.Boolean,
	kindTimestamp: schema.Timestamp,
}

// kindOf maps a field type to a storage kind, looking through one pointer
func kindOf(t reflect.Type) fieldKind {
	if k, ok := nullTypes[t]; ok {
		return k
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == timeType {
		return kindTimestamp
	}
	if t == bytesType {
		return kindBlob
	}

	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return kindInteger
	case reflect.Float32, reflect.Float64:
		return kindReal
	case reflect.String:
		return kindText
	case reflect.Bool:
		return kindBoolean
	}
	return kindUnsupported
}

func isNullable(t reflect.Type) bool {
	if _, ok := nullTypes[t]; ok {
		return true
	}
	return t.Kind() == reflect.Ptr
}

// parseField builds the column for sf from its type and tag
func parseField(table string, sf reflect.StructField, tag string) (Field, error) {
	f := Field{Type: sf.Type}
	col := &f.Column

	parts := strings.Split(tag, ",")
	col.Name = strings.TrimSpace(parts[0])
	if col.Name == "" {
		if db, ok := sf.Tag.Lookup("db"); ok && db != "-" {
			col.Name, _, _ = strings.Cut(db, ",")
		}
	}
	if col.Name == "" {
		col.Name = schema.SnakeCase(sf.Name)
	}

	col.Nullable = isNullable(sf.Type)
	if k := kindOf(sf.Type); k != kindUnsupported {
		col.Type = sqlTypes[k]
	}

	var rawDefault *string
	for _, opt := range parts[1:] {
		key, value, _ := strings.Cut(strings.TrimSpace(opt), "=")
		switch strings.ToLower(key) {
		case "":
		case "pk", "primarykey", "id":
			col.PrimaryKey = true
		case "autoincrement":
			col.AutoIncrement = true
		case "unique":
			col.Unique = true
		case "notnull":
			col.Nullable = false
		case "null", "nullable":
			col.Nullable = true
		case "default":
			v := value
			rawDefault = &v
		case "type":
			t, err := schema.ParseSQLType(value)
			if err != nil {
				return f, &schema.InvalidDescriptorError{Table: table, Column: col.Name, Reason: err.Error()}
			}
			col.Type = t
		case "references", "ref":
			ref, err := schema.ParseReference(value)
			if err != nil {
				return f, &schema.InvalidDescriptorError{Table: table, Column: col.Name, Reason: err.Error()}
			}
			col.References = ref
		default:
			return f, &schema.InvalidDescriptorError{Table: table, Column: col.Name, Reason: "unknown tag option " + key}
		}
	}

	if !col.Type.Valid() {
		return f, &schema.InvalidDescriptorError{Table: table, Column: col.Name, Reason: "unsupported field type " + sf.Type.String()}
	}
	if col.PrimaryKey {
		col.Nullable = false
	}
	if rawDefault != nil {
		d, err := schema.ParseDefault(col.Type, *rawDefault)
		if err != nil {
			return f, &schema.InvalidDescriptorError{Table: table, Column: col.Name, Reason: "invalid default: " + err.Error()}
		}
		col.Default = d
	}
	return f, nil
}
