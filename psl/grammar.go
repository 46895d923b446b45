package psl

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// File is the syntax tree of a schema file
type File struct {
	Pos    lexer.Position
	Models []*Model `@@*`
}

// Model is a model block
type Model struct {
	Pos        lexer.Position
	Name       string            `"model" @Ident "{"`
	Fields     []*Field          `@@*`
	Attributes []*BlockAttribute `@@* "}"`
}

// Field is one column line of a model
type Field struct {
	Pos        lexer.Position
	Name       string       `@Ident`
	Type       string       `@Ident`
	Optional   bool         `@"?"?`
	Attributes []*Attribute `@@*`
}

// Attribute is a field attribute such as @default("x")
type Attribute struct {
	Pos  lexer.Position
	Name string   `"@" @Ident`
	Args []*Value `( "(" ( @@ ( "," @@ )* )? ")" )?`
}

// BlockAttribute is a model attribute such as @@map("users")
type BlockAttribute struct {
	Pos  lexer.Position
	Name string   `"@@" @Ident`
	Args []*Value `( "(" ( @@ ( "," @@ )* )? ")" )?`
}

// Value is an attribute argument
type Value struct {
	Pos    lexer.Position
	String *string  `  @String`
	Number *string  `| @Number`
	Call   *string  `| @Ident "(" ")"`
	Path   []string `| @Ident ( "." @Ident )*`
}

// Text renders the value the way it is written in a schema file
func (v *Value) Text() string {
	switch {
	case v.String != nil:
		return quote(*v.String)
	case v.Number != nil:
		return *v.Number
	case v.Call != nil:
		return *v.Call + "()"
	default:
		return strings.Join(v.Path, ".")
	}
}

// Attribute returns the named field attribute
func (f *Field) Attribute(name string) (*Attribute, bool) {
	for _, a := range f.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return nil, false
}

func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`)
	return `"` + r.Replace(s) + `"`
}
