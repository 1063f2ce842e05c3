package views

import (
	"html/template"

	"github.com/a-h/templ"
)

var dashboardTemplate = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>KOE · Estadísticas</title>
</head>
<body>
<header>
<h1>KOE</h1>
{{if .SignedInAs}}<p class="user">{{.SignedInAs}}</p>{{end}}
</header>
<main>
<section class="totals">
<dl>
<dt>Inscritos</dt><dd>{{.Stats.TotalRegistrations}}</dd>
<dt>Sedes activas</dt><dd>{{.Stats.ActiveVenues}}</dd>
<dt>Rondas activas</dt><dd>{{.Stats.ActiveRounds}}</dd>
<dt>Videos</dt><dd>{{.Stats.TotalVideos}} ({{.Stats.ApprovedVideos}} aprobados)</dd>
</dl>
</section>
{{range .Sections}}{{template "rows" .}}
{{end}}</main>
</body>
</html>
{{define "rows"}}<section>
<h2>{{.Title}}</h2>
<table>
<tbody>
{{range .Rows}}<tr><td>{{.Label}}</td><td>{{.Count}}</td><td>{{printf "%.1f" .Percent}}%</td></tr>
{{else}}<tr><td colspan="3">Sin datos</td></tr>
{{end}}</tbody>
</table>
</section>{{end}}`))

// Dashboard renders the public statistics page.
func Dashboard(data DashboardData) templ.Component {
	return templ.FromGoHTML(dashboardTemplate, data)
}
