// Package generator writes Go record types and typed column references for
// the tables of a schema file.
package generator

import (
	"bytes"
	"fmt"
	"go/format"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/satishbabariya/sequel-go/internal/debug"
	"github.com/satishbabariya/sequel-go/schema"
)

// DefaultFileName is the file Generate writes into the output directory
const DefaultFileName = "models_gen.go"

// ModelInfo describes one generated record type
type ModelInfo struct {
	Name      string
	TableName string
	// CustomTable is set when the table name is not the snake_case type name
	CustomTable bool
	Fields      []FieldInfo
}

// FieldInfo describes one field of a generated record type
type FieldInfo struct {
	Name       string
	Column     string
	GoType     string
	Tag        string
	ColumnType string
	ColumnCtor string
}

// Generator renders record types for a set of tables
type Generator struct {
	tables  []*schema.Table
	pkg     string
	fs      afero.Fs
	source  string
	imports map[string]bool
}

// Option configures a Generator
type Option func(*Generator)

// WithFs writes through fs instead of the OS filesystem
func WithFs(fs afero.Fs) Option {
	return func(g *Generator) { g.fs = fs }
}

// WithSource names the schema file in the generated header
func WithSource(path string) Option {
	return func(g *Generator) { g.source = path }
}

// New creates a generator for tables emitting package pkg
func New(tables []*schema.Table, pkg string, opts ...Option) *Generator {
	g := &Generator{tables: tables, pkg: pkg, fs: afero.NewOsFs()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Models converts the tables to model descriptions
func (g *Generator) Models() ([]ModelInfo, error) {
	g.imports = map[string]bool{"github.com/satishbabariya/sequel-go/query/columns": true}

	seen := make(map[string]string, len(g.tables))
	models := make([]ModelInfo, 0, len(g.tables))
	for _, t := range g.tables {
		m := ModelInfo{Name: schema.PascalCase(t.Name), TableName: t.Name}
		m.CustomTable = schema.SnakeCase(m.Name) != t.Name
		if other, dup := seen[m.Name]; dup {
			return nil, fmt.Errorf("tables %q and %q both generate type %s", other, t.Name, m.Name)
		}
		seen[m.Name] = t.Name

		for _, c := range t.Columns {
			f, err := g.field(t, c)
			if err != nil {
				return nil, err
			}
			m.Fields = append(m.Fields, f)
		}
		models = append(models, m)
	}
	return models, nil
}

func (g *Generator) field(t *schema.Table, c schema.Column) (FieldInfo, error) {
	f := FieldInfo{Name: schema.PascalCase(c.Name), Column: c.Name}
	if f.Name == "" {
		return f, fmt.Errorf("column %s.%s has no usable Go name", t.Name, c.Name)
	}

	base := goType(c.Type)
	if c.Type == schema.Timestamp {
		g.imports["time"] = true
	}
	f.GoType = base
	if c.Nullable && c.Type != schema.Blob {
		f.GoType = "*" + base
	}

	if c.Type == schema.Text {
		f.ColumnType = "columns.TextColumn"
		f.ColumnCtor = "columns.Text"
	} else {
		f.ColumnType = "columns.Column[" + base + "]"
		f.ColumnCtor = "columns.New[" + base + "]"
	}

	tag, err := tagFor(c)
	if err != nil {
		return f, fmt.Errorf("column %s.%s: %w", t.Name, c.Name, err)
	}
	f.Tag = tag
	return f, nil
}

func goType(t schema.SQLType) string {
	switch t {
	case schema.Integer:
		return "int64"
	case schema.Real:
		return "float64"
	case schema.Text:
		return "string"
	case schema.Blob:
		return "[]byte"
	case schema.Boolean:
		return "bool"
	case schema.Timestamp:
		return "time.Time"
	}
	return "any"
}

// tagFor renders the sequel struct tag that describes c
func tagFor(c schema.Column) (string, error) {
	opts := []string{c.Name}
	if c.PrimaryKey {
		opts = append(opts, "pk")
	}
	if c.AutoIncrement {
		opts = append(opts, "autoincrement")
	}
	if c.Unique {
		opts = append(opts, "unique")
	}
	if c.Nullable && c.Type == schema.Blob {
		opts = append(opts, "null")
	}
	if c.HasDefault() {
		raw, err := tagDefault(c)
		if err != nil {
			return "", err
		}
		opts = append(opts, "default="+raw)
	}
	if c.References != nil {
		opts = append(opts, "references="+c.References.String())
	}
	return fmt.Sprintf("`sequel:%q`", strings.Join(opts, ",")), nil
}

// tagDefault converts a SQL default into the form schema.ParseDefault reads
func tagDefault(c schema.Column) (string, error) {
	d := schema.NormalizeDefault(c.Default)
	var raw string
	switch {
	case len(d) >= 2 && d[0] == '\'' && d[len(d)-1] == '\'':
		raw = strings.ReplaceAll(d[1:len(d)-1], "''", "'")
	case d == "CURRENT_TIMESTAMP" && c.Type == schema.Timestamp:
		raw = "now"
	case c.Type == schema.Boolean && d == "1":
		raw = "true"
	case c.Type == schema.Boolean && d == "0":
		raw = "false"
	default:
		raw = d
	}

	if strings.ContainsAny(raw, ",`\"") {
		return "", fmt.Errorf("default %s cannot be written in a struct tag", d)
	}
	parsed, err := schema.ParseDefault(c.Type, raw)
	if err != nil || !schema.DefaultsEqual(parsed, c.Default) {
		return "", fmt.Errorf("default %s cannot be written in a struct tag", d)
	}
	return raw, nil
}

// Generate renders the Go source for every table
func (g *Generator) Generate() ([]byte, error) {
	models, err := g.Models()
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, fmt.Errorf("no models to generate")
	}

	imports := make([]string, 0, len(g.imports))
	for _, path := range []string{"time", "github.com/satishbabariya/sequel-go/query/columns"} {
		if g.imports[path] {
			imports = append(imports, path)
		}
	}

	var buf bytes.Buffer
	err = fileTemplate.Execute(&buf, fileData{
		Package: g.pkg,
		Source:  g.source,
		Imports: imports,
		Models:  models,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render models: %w", err)
	}

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to format generated code: %w", err)
	}
	return src, nil
}

// WriteFile generates the models and writes them to dir/DefaultFileName
func (g *Generator) WriteFile(dir string) (string, error) {
	src, err := g.Generate()
	if err != nil {
		return "", err
	}

	if err := g.fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	path := filepath.Join(dir, DefaultFileName)
	if err := afero.WriteFile(g.fs, path, src, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	debug.Info("Generated models", "path", path, "tables", len(g.tables))
	return path, nil
}
