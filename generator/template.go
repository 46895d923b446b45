package generator

import "text/template"

type fileData struct {
	Package string
	Source  string
	Imports []string
	Models  []ModelInfo
}

var fileTemplate = template.Must(template.New("models").Parse(`// Code generated by sequel generate. DO NOT EDIT.
{{- if .Source}}
// source: {{.Source}}
{{- end}}

package {{.Package}}

import (
{{- range .Imports}}
	"{{.}}"
{{- end}}
)
{{range .Models}}
// {{.Name}} is a record of table {{printf "%q" .TableName}}
type {{.Name}} struct {
{{- range .Fields}}
	{{.Name}} {{.GoType}} {{.Tag}}
{{- end}}
}
{{if .CustomTable}}
// TableName returns the table {{.Name}} records are stored in
func ({{.Name}}) TableName() string { return {{printf "%q" .TableName}} }
{{end}}
// {{.Name}}Columns are typed references to the columns of {{printf "%q" .TableName}}
var {{.Name}}Columns = struct {
{{- range .Fields}}
	{{.Name}} {{.ColumnType}}
{{- end}}
}{
{{- $table := .TableName}}
{{- range .Fields}}
	{{.Name}}: {{.ColumnCtor}}({{printf "%q" $table}}, {{printf "%q" .Column}}),
{{- end}}
}
{{end}}`))
