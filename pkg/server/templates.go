package server

import (
	"html/template"
	"strings"

	"github.com/entrhq/pagekit/pkg/flash"
	"github.com/entrhq/pagekit/pkg/logs"
	"github.com/entrhq/pagekit/pkg/theme"
	"github.com/entrhq/pagekit/pkg/toast"
)

const layoutTemplate = `
{{- define "head" -}}
<!DOCTYPE html>
<html lang="en"{{if eq .Theme "dark"}} class="dark"{{end}} data-theme-preference="{{.Preference}}">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<div id="toast-container" class="toast-container">
{{- range .Flashes}}
<div data-flash-toast data-category="{{.Category}}" role="alert" class="toast toast-{{.Category}}"><div><i class="bi {{icon .Category}}"></i><span>{{.Text}}</span></div><button type="button" data-dismiss-toast aria-label="Dismiss">×</button></div>
{{- end}}
</div>
<form method="post" action="/theme" id="theme-menu" class="hidden">
{{- range .Preferences}}
<button type="submit" name="theme" value="{{.}}" data-theme="{{.}}">{{title .}}</button>
{{- end}}
</form>
{{- end -}}

{{- define "foot" -}}
</body>
</html>
{{- end -}}

{{- define "logs" -}}
{{template "head" .}}
<main>
<h1>{{.Type.Title}}</h1>
<nav class="log-types">
{{- range .Types}}
<a href="/admin/logs?type={{.}}"{{if eq . $.Type}} class="active"{{end}}>{{.Title}}</a>
{{- end}}
<a href="/admin/logs/export?type={{.Type}}" class="export">Export CSV</a>
</nav>
{{.Top}}
<table class="logs">
<thead><tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- range .Rows}}
<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{- else}}
<tr><td colspan="{{len .Columns}}" class="empty">No entries found.</td></tr>
{{- end}}
</tbody>
</table>
{{.Bottom}}
</main>
{{template "foot" .}}
{{- end -}}

{{- define "error" -}}
{{template "head" .}}
<main><h1>{{.Title}}</h1><p>{{.Message}}</p></main>
{{template "foot" .}}
{{- end -}}
`

var toastIcons = map[toast.Category]string{
	toast.Success: "bi-check-circle-fill",
	toast.Error:   "bi-exclamation-triangle-fill",
	toast.Warning: "bi-exclamation-circle-fill",
	toast.Info:    "bi-info-circle-fill",
}

func newTemplates() *template.Template {
	return template.Must(template.New("pagekit").Funcs(template.FuncMap{
		"icon":  func(c toast.Category) string { return toastIcons[c] },
		"title": func(p theme.Preference) string { return strings.ToUpper(string(p[:1])) + string(p[1:]) },
	}).Parse(layoutTemplate))
}

type pageView struct {
	Title       string
	Theme       theme.Preference
	Preference  theme.Preference
	Preferences []theme.Preference
	Flashes     []flash.Message
	Message     string
}

type logsView struct {
	pageView
	Type    logs.Type
	Types   []logs.Type
	Columns []string
	Rows    [][]string
	Top     template.HTML
	Bottom  template.HTML
}
