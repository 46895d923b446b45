package introspect

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

var createLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `--[^\n]*|/\*[\s\S]*?\*/`},
	{Name: "String", Pattern: `'(?:[^']|'')*'`},
	{Name: "Quoted", Pattern: "\"(?:[^\"]|\"\")*\"|`(?:[^`]|``)*`|\\[[^\\]]*\\]"},
	{Name: "Word", Pattern: `[\p{L}\p{N}_$]+`},
	{Name: "Punct", Pattern: `[(),]`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Other", Pattern: `.`},
})

var (
	wordToken       = createLexer.Symbols()["Word"]
	quotedToken     = createLexer.Symbols()["Quoted"]
	punctToken      = createLexer.Symbols()["Punct"]
	whitespaceToken = createLexer.Symbols()["Whitespace"]
	commentToken    = createLexer.Symbols()["Comment"]
)

// table constraints start with one of these keywords
var constraintKeywords = map[string]bool{
	"CONSTRAINT": true,
	"PRIMARY":    true,
	"UNIQUE":     true,
	"CHECK":      true,
	"FOREIGN":    true,
}

// autoIncrementColumn returns the column a CREATE TABLE statement declares
// AUTOINCREMENT, or "" when none is. Only keywords count: names and string
// literals that spell AUTOINCREMENT are ignored.
func autoIncrementColumn(createSQL string) (string, error) {
	lex, err := createLexer.LexString("", createSQL)
	if err != nil {
		return "", fmt.Errorf("failed to scan table definition: %w", err)
	}
	tokens, err := lexer.ConsumeAll(lex)
	if err != nil {
		return "", fmt.Errorf("failed to scan table definition: %w", err)
	}

	for _, def := range definitions(tokens) {
		if !containsKeyword(def, "AUTOINCREMENT") {
			continue
		}
		if def[0].Type == wordToken && constraintKeywords[strings.ToUpper(def[0].Value)] {
			// PRIMARY KEY ("id" AUTOINCREMENT)
			for i, tok := range def {
				if tok.Type == punctToken && tok.Value == "(" && i+1 < len(def) {
					return identifier(def[i+1]), nil
				}
			}
			continue
		}
		return identifier(def[0]), nil
	}
	return "", nil
}

// definitions splits the body of CREATE TABLE into its comma separated
// column definitions and table constraints.
func definitions(tokens []lexer.Token) [][]lexer.Token {
	var (
		defs    [][]lexer.Token
		current []lexer.Token
		depth   int
	)
	for _, tok := range tokens {
		if tok.EOF() || tok.Type == whitespaceToken || tok.Type == commentToken {
			continue
		}
		if tok.Type == punctToken {
			switch tok.Value {
			case "(":
				depth++
				if depth == 1 {
					continue
				}
			case ")":
				depth--
				if depth == 0 {
					if len(current) > 0 {
						defs = append(defs, current)
					}
					return defs
				}
			case ",":
				if depth == 1 {
					if len(current) > 0 {
						defs = append(defs, current)
					}
					current = nil
					continue
				}
			}
		}
		if depth >= 1 {
			current = append(current, tok)
		}
	}
	return defs
}

func containsKeyword(def []lexer.Token, keyword string) bool {
	for _, tok := range def {
		if tok.Type == wordToken && strings.EqualFold(tok.Value, keyword) {
			return true
		}
	}
	return false
}

// identifier strips SQLite identifier quoting
func identifier(tok lexer.Token) string {
	if tok.Type != quotedToken || len(tok.Value) < 2 {
		return tok.Value
	}
	inner := tok.Value[1 : len(tok.Value)-1]
	switch tok.Value[0] {
	case '"':
		return strings.ReplaceAll(inner, `""`, `"`)
	case '`':
		return strings.ReplaceAll(inner, "``", "`")
	}
	return inner
}
