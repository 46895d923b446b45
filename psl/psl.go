// Package psl parses the sequel schema language and the filter language used
// on the command line.
//
// A schema file declares one model block per table:
//
//	model User {
//	  id   Integer  @id @autoincrement
//	  name Text?    @default("Unknown name")
//	  age  Integer
//	  team Integer? @references(teams.id)
//
//	  @@map("users")
//	}
//
// Load turns a schema file into table descriptors and Render turns
// descriptors back into schema text.
package psl

import (
	"io"
	"os"
	"strings"

	"github.com/alecthomas/participle/v2"

	"github.com/satishbabariya/sequel-go/schema"
)

var schemaParser = participle.MustBuild[File](
	participle.Lexer(schemaLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.Unquote("String"),
	participle.UseLookahead(2),
)

// Parse reads a schema file into its syntax tree
func Parse(filename string, r io.Reader) (*File, error) {
	f, err := schemaParser.Parse(filename, r)
	if err != nil {
		return nil, parseError(err)
	}
	return f, nil
}

// ParseString parses schema source held in memory
func ParseString(filename, src string) (*File, error) {
	return Parse(filename, strings.NewReader(src))
}

// Load parses src and converts every model to a table descriptor
func Load(filename, src string) ([]*schema.Table, error) {
	f, err := ParseString(filename, src)
	if err != nil {
		return nil, err
	}
	return f.Tables()
}

// LoadFile reads and loads the schema file at path
func LoadFile(path string) ([]*schema.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(path, string(data))
}
