package export

import (
	"html/template"
	"io"
	"sort"

	"github.com/filmschedule/filmschedule-backend/internal/projects/domain"
)

// section is either a shoot day or a calltime block, in print order.
type section struct {
	Day      *domain.ScheduleDay
	Calltime *domain.Calltime
	Position int
}

type printView struct {
	Project         *domain.Project
	LogoURL         string
	Widths          domain.ColumnWidths
	Headers         domain.ColumnHeaders
	CalltimeHeaders domain.CalltimeHeaders
	Sections        []section
}

var printTemplate = template.Must(template.New("print").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Project.Name}}</title>
<style>
body { font-family: sans-serif; max-width: 210mm; margin: 0 auto; padding: 8mm; color: #0f172a; }
header { display: flex; justify-content: space-between; align-items: flex-start; margin-bottom: 16px; }
header img { max-width: 150px; max-height: 80px; object-fit: contain; margin-left: 16px; }
.notes { white-space: pre-wrap; font-size: 13px; color: #475569; }
.title { background: #f1f5f9; padding: 6px 12px; font-weight: 600; margin: 24px 0 6px; }
table { width: 100%; border-collapse: collapse; table-layout: fixed; }
th, td { border: 1px solid #cbd5e1; padding: 3px 6px; font-size: 12px; text-align: left; overflow-wrap: anywhere; white-space: pre-wrap; }
th { background: #f8fafc; }
td.section { background: #f8fafc; font-weight: 600; font-size: 13px; white-space: normal; }
td.center { text-align: center; }
@media print { body { padding: 0; } }
</style>
</head>
<body>
<header>
  <div>
    <h1>{{.Project.Name}}</h1>
    {{- if .Project.Notes}}<p class="notes">{{.Project.Notes}}</p>{{end}}
  </div>
  {{- if .LogoURL}}<img src="{{.LogoURL}}" alt="Logo">{{end}}
</header>
{{- range .Sections}}
{{- if .Day}}
<div class="title">{{.Day.Date}}</div>
<table>
  <thead><tr>
    <th style="width: {{$.Widths.Time}}%">{{$.Headers.Time}}</th>
    <th style="width: {{$.Widths.Scene}}%">{{$.Headers.Scene}}</th>
    <th style="width: {{$.Widths.Location}}%">{{$.Headers.Location}}</th>
    <th style="width: {{$.Widths.Cast}}%">{{$.Headers.Cast}}</th>
    <th style="width: {{$.Widths.Notes}}%">{{$.Headers.Notes}}</th>
  </tr></thead>
  <tbody>
  {{- range .Day.Rows}}
    {{- if eq .Type "text"}}
    <tr><td class="section" colspan="5">{{.Notes}}</td></tr>
    {{- else}}
    <tr><td>{{.DisplayTime}}</td><td>{{.Scene}}</td><td>{{.Location}}</td><td>{{.Cast}}</td><td>{{.Notes}}</td></tr>
    {{- end}}
  {{- end}}
  </tbody>
</table>
{{- else}}
<div class="title">{{.Calltime.Title}}</div>
<table>
  <thead><tr>
    <th style="width: 15%">{{if .Calltime.Headers}}{{.Calltime.Headers.Time}}{{else}}{{$.CalltimeHeaders.Time}}{{end}}</th>
    <th style="width: 85%">{{if .Calltime.Headers}}{{.Calltime.Headers.Name}}{{else}}{{$.CalltimeHeaders.Name}}{{end}}</th>
  </tr></thead>
  <tbody>
  {{- range .Calltime.Rows}}
    {{- if eq .Type "text"}}
    <tr><td class="section center" colspan="2">{{.Name}}</td></tr>
    {{- else}}
    <tr><td>{{.Time}}</td><td>{{.Name}}</td></tr>
    {{- end}}
  {{- end}}
  </tbody>
</table>
{{- end}}
{{- end}}
</body>
</html>
`))

// WritePrintHTML renders a print-ready page of p. Days and calltimes are
// interleaved by position; ties keep days before calltimes. logoURL is the
// absolute or root-relative address of the project logo.
func WritePrintHTML(w io.Writer, p *domain.Project, logoURL string) error {
	view := printView{
		Project:         p,
		LogoURL:         logoURL,
		Widths:          domain.DefaultColumnWidths(),
		Headers:         domain.DefaultColumnHeaders(),
		CalltimeHeaders: domain.DefaultCalltimeHeaders(),
	}
	if p.ColumnWidths != nil {
		view.Widths = *p.ColumnWidths
	}
	if p.ColumnHeaders != nil {
		view.Headers = *p.ColumnHeaders
	}
	if p.CalltimeHeaders != nil {
		view.CalltimeHeaders = *p.CalltimeHeaders
	}

	for i := range p.Days {
		view.Sections = append(view.Sections, section{Day: &p.Days[i], Position: p.Days[i].Position})
	}
	for i := range p.Calltimes {
		view.Sections = append(view.Sections, section{Calltime: &p.Calltimes[i], Position: p.Calltimes[i].Position})
	}
	sort.SliceStable(view.Sections, func(i, j int) bool {
		return view.Sections[i].Position < view.Sections[j].Position
	})

	return printTemplate.Execute(w, view)
}
