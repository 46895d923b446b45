package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeFromDeclared(t *testing.T) {
	tests := map[string]SQLType{
		"INTEGER":       Integer,
		"integer":       Integer,
		"BIGINT":        Integer,
		"REAL":          Real,
		"DOUBLE":        Real,
		"NUMERIC":       Real,
		"DECIMAL(10,2)": Real,
		"TEXT":          Text,
		"VARCHAR(255)":  Text,
		"CLOB":          Text,
		"BLOB":          Blob,
		"":              Blob,
		"BOOLEAN":       Boolean,
		"DATETIME":      Timestamp,
		"TIMESTAMP":     Timestamp,
	}

	for declared, want := range tests {
		t.Run(declared, func(t *testing.T) {
			assert.Equal(t, want, TypeFromDeclared(declared))
		})
	}
}

func TestDDLRoundTrip(t *testing.T) {
	for _, typ := range []SQLType{Integer, Real, Text, Blob, Boolean, Timestamp} {
		assert.Equal(t, typ, TypeFromDeclared(typ.DDL()), typ.String())
	}
}

func TestParseDefault(t *testing.T) {
	tests := []struct {
		typ  SQLType
		raw  string
		want string
	}{
		{Text, "Unknown name", "'Unknown name'"},
		{Text, `"quoted"`, "'quoted'"},
		{Text, "it's", "'it''s'"},
		{Integer, "42", "42"},
		{Integer, "-1", "-1"},
		{Real, "1.5", "1.5"},
		{Real, "2", "2.0"},
		{Boolean, "true", "1"},
		{Boolean, "false", "0"},
		{Timestamp, "now", "CURRENT_TIMESTAMP"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseDefault(tt.typ, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}

	_, err := ParseDefault(Integer, "abc")
	assert.Error(t, err)
}

func TestDefaultsEqual(t *testing.T) {
	assert.True(t, DefaultsEqual(nil, nil))
	assert.True(t, DefaultsEqual(nil, ExprDefault("NULL")))
	assert.True(t, DefaultsEqual(ExprDefault("current_timestamp"), ExprDefault("CURRENT_TIMESTAMP")))
	assert.True(t, DefaultsEqual(ExprDefault("(datetime('now'))"), ExprDefault("datetime('now')")))
	assert.True(t, DefaultsEqual(StringDefault("x"), ExprDefault("'x'")))
	assert.False(t, DefaultsEqual(StringDefault("x"), StringDefault("X")))
	assert.False(t, DefaultsEqual(IntDefault(1), nil))
	assert.False(t, DefaultsEqual(ExprDefault("(1) + (2)"), ExprDefault("1) + (2")))
}
