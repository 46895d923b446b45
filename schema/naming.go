package schema

import "strings"

// SnakeCase converts a Go identifier to snake_case, keeping initialisms
// together: UserID becomes user_id and HTTPServer becomes http_server.
func SnakeCase(s string) string {
	runes := []rune(s)
	var sb strings.Builder
	for i, r := range runes {
		upper := r >= 'A' && r <= 'Z'
		if upper && i > 0 {
			prevLower := runes[i-1] >= 'a' && runes[i-1] <= 'z' || runes[i-1] >= '0' && runes[i-1] <= '9'
			nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
			prevUpper := runes[i-1] >= 'A' && runes[i-1] <= 'Z'
			if prevLower || (prevUpper && nextLower) {
				sb.WriteByte('_')
			}
		}
		if upper {
			r += 'a' - 'A'
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// PascalCase converts a snake_case table or column name to an exported Go
// identifier. Common initialisms are upper cased: user_id becomes UserID.
func PascalCase(s string) string {
	var sb strings.Builder
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == '-' || r == ' ' }) {
		if upper := strings.ToUpper(part); initialisms[upper] {
			sb.WriteString(upper)
			continue
		}
		sb.WriteString(strings.ToUpper(part[:1]))
		sb.WriteString(part[1:])
	}
	return sb.String()
}

var initialisms = map[string]bool{
	"ID":   true,
	"URL":  true,
	"URI":  true,
	"API":  true,
	"HTTP": true,
	"JSON": true,
	"SQL":  true,
	"UUID": true,
	"IP":   true,
}
