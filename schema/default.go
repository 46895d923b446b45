package schema

import (
	"strconv"
	"strings"
)

// StringDefault returns a quoted SQL string literal for use as a column default
func StringDefault(s string) *string {
	lit := "'" + strings.ReplaceAll(s, "'", "''") + "'"
	return &lit
}

// IntDefault returns an integer literal default
func IntDefault(n int64) *string {
	lit := strconv.FormatInt(n, 10)
	return &lit
}

// RealDefault returns a floating point literal default
func RealDefault(f float64) *string {
	lit := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(lit, ".eE") {
		lit += ".0"
	}
	return &lit
}

// BoolDefault returns 1 or 0, the way SQLite stores booleans
func BoolDefault(b bool) *string {
	if b {
		return IntDefault(1)
	}
	return IntDefault(0)
}

// ExprDefault returns expr verbatim, e.g. CURRENT_TIMESTAMP
func ExprDefault(expr string) *string {
	e := strings.TrimSpace(expr)
	return &e
}

// ParseDefault converts a default written in a struct tag or schema file into a
// SQL literal for a column of type t.
func ParseDefault(t SQLType, raw string) (*string, error) {
	raw = strings.TrimSpace(raw)
	if strings.EqualFold(raw, "null") {
		return ExprDefault("NULL"), nil
	}

	switch t {
	case Integer:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, err
		}
		return IntDefault(n), nil
	case Real:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, err
		}
		return RealDefault(f), nil
	case Boolean:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, err
		}
		return BoolDefault(b), nil
	case Timestamp:
		switch strings.ToLower(raw) {
		case "now", "now()", "current_timestamp":
			return ExprDefault("CURRENT_TIMESTAMP"), nil
		}
		return StringDefault(unquote(raw)), nil
	default:
		return StringDefault(unquote(raw)), nil
	}
}

// NormalizeDefault folds a default expression into a canonical form so that a
// declared default and the text SQLite reports for it compare equal.
func NormalizeDefault(d *string) string {
	if d == nil {
		return ""
	}
	s := strings.TrimSpace(*d)
	for len(s) >= 2 && s[0] == '(' && s[len(s)-1] == ')' && balanced(s[1:len(s)-1]) {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if s == "" || s[0] == '\'' || s[0] == '"' {
		return s
	}
	upper := strings.ToUpper(s)
	switch upper {
	case "NULL":
		return ""
	case "TRUE":
		return "1"
	case "FALSE":
		return "0"
	case "CURRENT_TIMESTAMP", "CURRENT_DATE", "CURRENT_TIME":
		return upper
	}
	return s
}

// DefaultsEqual compares two defaults after normalisation
func DefaultsEqual(a, b *string) bool {
	return NormalizeDefault(a) == NormalizeDefault(b)
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// balanced reports whether the parentheses in s pair up, ignoring quoted text
func balanced(s string) bool {
	depth := 0
	inQuote := false
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\'':
			inQuote = !inQuote
		case inQuote:
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0 && !inQuote
}
