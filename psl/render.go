package psl

import (
	"strings"

	"github.com/satishbabariya/sequel-go/schema"
)

// Render writes tables as schema text. Loading the result gives back
// equivalent descriptors.
func Render(tables []*schema.Table) string {
	var sb strings.Builder
	for i, t := range tables {
		if i > 0 {
			sb.WriteString("\n")
		}
		renderModel(&sb, t)
	}
	return sb.String()
}

func renderModel(sb *strings.Builder, t *schema.Table) {
	name := schema.PascalCase(t.Name)
	sb.WriteString("model " + name + " {\n")

	rows := make([][3]string, len(t.Columns))
	var nameWidth, typeWidth int
	for i, c := range t.Columns {
		typ := c.Type.String()
		if c.Nullable {
			typ += "?"
		}
		rows[i] = [3]string{c.Name, typ, strings.Join(attributes(c), " ")}
		nameWidth = max(nameWidth, len(c.Name))
		typeWidth = max(typeWidth, len(typ))
	}

	for _, r := range rows {
		line := "  " + pad(r[0], nameWidth) + " " + pad(r[1], typeWidth)
		if r[2] != "" {
			line += " " + r[2]
		}
		sb.WriteString(strings.TrimRight(line, " ") + "\n")
	}

	if schema.SnakeCase(name) != t.Name {
		sb.WriteString("\n  @@map(" + quote(t.Name) + ")\n")
	}
	sb.WriteString("}\n")
}

func attributes(c schema.Column) []string {
	var attrs []string
	if c.PrimaryKey {
		attrs = append(attrs, "@id")
	}
	if c.AutoIncrement {
		attrs = append(attrs, "@autoincrement")
	}
	if c.Unique {
		attrs = append(attrs, "@unique")
	}
	if c.HasDefault() {
		attrs = append(attrs, "@default("+defaultText(c)+")")
	}
	if c.References != nil {
		attrs = append(attrs, "@references("+c.References.String()+")")
	}
	return attrs
}

// defaultText converts a SQL default literal into schema syntax
func defaultText(c schema.Column) string {
	d := schema.NormalizeDefault(c.Default)
	switch {
	case strings.HasPrefix(d, "'") && strings.HasSuffix(d, "'") && len(d) >= 2:
		return quote(strings.ReplaceAll(d[1:len(d)-1], "''", "'"))
	case d == "CURRENT_TIMESTAMP":
		return "now()"
	case d == "CURRENT_DATE" || d == "CURRENT_TIME":
		return d
	case c.Type == schema.Boolean && (d == "1" || d == "0"):
		if d == "1" {
			return "true"
		}
		return "false"
	case isNumber(d):
		return d
	default:
		return quote(d)
	}
}

func isNumber(s string) bool {
	return s != "" && numberPattern.MatchString(s)
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
