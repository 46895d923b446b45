package executor

import (
	"database/sql"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var (
	scannerType = reflect.TypeOf((*sql.Scanner)(nil)).Elem()
	timeType    = reflect.TypeOf(time.Time{})
	bytesType   = reflect.TypeOf([]byte(nil))
)

// timeLayouts are the text forms SQLite date functions and both drivers produce
var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
	time.RFC3339Nano,
}

// Assign converts a driver value into dst, which must be settable. Values
// are int64, float64, bool, []byte, string, time.Time or nil. NULL can only
// be stored in pointers and sql.Scanner implementations.
func Assign(dst reflect.Value, table, column string, src any) error {
	fail := func(reason string) error {
		return &TypeConversionError{Table: table, Column: column, Value: src, Target: dst.Type(), Reason: reason}
	}

	if dst.CanAddr() && dst.Addr().Type().Implements(scannerType) {
		if err := dst.Addr().Interface().(sql.Scanner).Scan(src); err != nil {
			return fail(err.Error())
		}
		return nil
	}

	if dst.Kind() == reflect.Ptr {
		if src == nil {
			dst.Set(reflect.Zero(dst.Type()))
			return nil
		}
		elem := reflect.New(dst.Type().Elem())
		if err := Assign(elem.Elem(), table, column, src); err != nil {
			return err
		}
		dst.Set(elem)
		return nil
	}

	if src == nil {
		return fail("NULL into non-nullable field")
	}

	if dst.Type() == timeType {
		t, err := toTime(src)
		if err != nil {
			return fail(err.Error())
		}
		dst.Set(reflect.ValueOf(t))
		return nil
	}

	switch dst.Kind() {
	case reflect.Bool:
		b, err := toBool(src)
		if err != nil {
			return fail(err.Error())
		}
		dst.SetBool(b)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := toInt(src)
		if err != nil {
			return fail(err.Error())
		}
		if dst.OverflowInt(n) {
			return fail("value overflows field")
		}
		dst.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := toInt(src)
		if err != nil {
			return fail(err.Error())
		}
		if n < 0 || dst.OverflowUint(uint64(n)) {
			return fail("value overflows field")
		}
		dst.SetUint(uint64(n))

	case reflect.Float32, reflect.Float64:
		f, err := toFloat(src)
		if err != nil {
			return fail(err.Error())
		}
		if dst.OverflowFloat(f) {
			return fail("value overflows field")
		}
		dst.SetFloat(f)

	case reflect.String:
		switch v := src.(type) {
		case string:
			dst.SetString(v)
		case []byte:
			dst.SetString(string(v))
		case time.Time:
			dst.SetString(v.Format(time.RFC3339Nano))
		default:
			return fail("not text")
		}

	case reflect.Slice:
		if dst.Type() != bytesType {
			return fail("unsupported field type")
		}
		switch v := src.(type) {
		case []byte:
			dst.SetBytes(append([]byte(nil), v...))
		case string:
			dst.SetBytes([]byte(v))
		default:
			return fail("not a blob")
		}

	default:
		sv := reflect.ValueOf(src)
		if !sv.Type().AssignableTo(dst.Type()) {
			return fail("unsupported field type")
		}
		dst.Set(sv)
	}
	return nil
}

func toInt(src any) (int64, error) {
	switch v := src.(type) {
	case int64:
		return v, nil
	case float64:
		if v != float64(int64(v)) {
			return 0, fmt.Errorf("%v is not an integer", v)
		}
		return int64(v), nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case []byte:
		return strconv.ParseInt(strings.TrimSpace(string(v)), 10, 64)
	case string:
		return strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	}
	return 0, fmt.Errorf("not an integer")
}

func toFloat(src any) (float64, error) {
	switch v := src.(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	case []byte:
		return strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	}
	return 0, fmt.Errorf("not a number")
}

func toBool(src any) (bool, error) {
	switch v := src.(type) {
	case bool:
		return v, nil
	case int64:
		return v != 0, nil
	case []byte:
		return strconv.ParseBool(string(v))
	case string:
		return strconv.ParseBool(v)
	}
	return false, fmt.Errorf("not a boolean")
}

func toTime(src any) (time.Time, error) {
	switch v := src.(type) {
	case time.Time:
		return v, nil
	case int64:
		return time.Unix(v, 0).UTC(), nil
	case []byte:
		return parseTime(string(v))
	case string:
		return parseTime(v)
	}
	return time.Time{}, fmt.Errorf("not a timestamp")
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "Z")
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}
