package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
)

//go:embed static
var static embed.FS

// Static serves the embedded stylesheet. It is suitable for httprouter.Router.ServeFiles.
func Static() http.FileSystem {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

// RedirectHome redirects to the home page. It is used as fallback for unknown paths.
var RedirectHome = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
	http.Redirect(w, req, "/", http.StatusSeeOther)
})

// Tmpl parses text as the "content" block of the layout. The data must embed *Request.
func Tmpl(text string) *template.Template {
	t := template.Must(layoutTmpl.Clone())
	t = template.Must(t.Parse(`{{ define "content" }}` + text + `{{ end }}`))
	return t
}

var layoutTmpl = template.Must(template.New("layout").Parse(`<!DOCTYPE html>
<html lang="{{ .Lang }}">
	<head>
		<meta charset="utf-8">
		<meta name="viewport" content="width=device-width, initial-scale=1, shrink-to-fit=no">
		{{ block "head" . }}{{ end }}
		<link rel="stylesheet" type="text/css" href="https://cdn.jsdelivr.net/npm/bootstrap@4.6.2/dist/css/bootstrap.min.css">
		<link rel="stylesheet" type="text/css" href="{{ .Link "/static/artigo.css" }}">
		<title>Artigo</title>
	</head>
	<body>
		<nav class="navbar navbar-expand-md navbar-light bg-light">
			<a class="navbar-brand" href="{{ .Link "/" }}">Artigo</a>
			<ul class="navbar-nav">
				<li class="nav-item">
					<a class="nav-link" href="{{ .Link "/artigos" }}">Articles</a>
				</li>
			</ul>
		</nav>
		<div class="container pt-3">
			{{ .RenderNotifications }}
			{{ template "content" . }}
		</div>
	</body>
</html>`))

var loadingTmpl = template.Must(Tmpl(`<p class="text-muted">Loading&hellip;</p>`).Parse(`{{ define "head" }}<meta http-equiv="refresh" content="1">{{ end }}`))

// RenderLoading renders a placeholder which reloads the page after a second.
func RenderLoading(w http.ResponseWriter, req *Request) error {
	return loadingTmpl.Execute(w, req)
}
