package frontend

import (
	"html/template"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/artigo/util"
	"github.com/wansing/artigo/web"
)

// cardsTmpl adds the "cards" template, which renders the IndexView in .View.
func cardsTmpl(text string) *template.Template {
	return template.Must(web.Tmpl(text).Parse(`{{ define "cards" }}
	{{ if .View.Loaded }}
		{{ range .View.Cards }}
			<div class="card article-card">
				<div class="card-body">
					<h2 class="card-title"><a href="{{ $.Link .Href }}">{{ .Title }}</a></h2>
					<h3 class="card-subtitle mb-2 text-muted">{{ $.FormatDate .Date }}</h3>
					<p class="card-text">{{ .Summary }}</p>
				</div>
			</div>
		{{ end }}
	{{ else }}
		<p class="text-muted">No articles have been published yet.</p>
	{{ end }}
{{ end }}`))
}

var listTmpl = cardsTmpl(`<h1>Articles</h1>
	{{ template "cards" . }}`)

type listData struct {
	*route
	View *IndexView
}

func (f *Frontend) list(w http.ResponseWriter, req *http.Request, r *route, params httprouter.Params) error {
	var view = LoadIndex(req.Context(), f.Reader, 0, f.Log)
	if view.Status == Loading {
		return nil
	}
	return listTmpl.Execute(w, &listData{
		route: r,
		View:  view,
	})
}

var detailTmpl = web.Tmpl(`
	{{ if .View.Loaded }}
		<article>
			<h1>{{ .View.Article.Title }}</h1>
			<p class="text-muted">{{ .FormatDate .View.Article.CreatedAt }}</p>
			<div class="article-content">{{ .Content }}</div>
		</article>
	{{ else }}
		<h1>Article not found</h1>
		<p>The article does not exist or has not been published.</p>
	{{ end }}
	<p><a href="{{ .Link "/artigos" }}">All articles</a></p>`)

type detailData struct {
	*route
	View *DetailView
}

// Content sanitizes the stored HTML again, in case it was not written through the authoring workflow.
func (data *detailData) Content() template.HTML {
	content, err := util.Sanitize(data.View.Article.Content)
	if err != nil {
		return ""
	}
	return template.HTML(content)
}

func (f *Frontend) detail(w http.ResponseWriter, req *http.Request, r *route, params httprouter.Params) error {
	var view = LoadDetail(req.Context(), f.Reader, params.ByName("slug"), f.Log)
	switch view.Status {
	case Loading:
		return nil
	case NotFound:
		r.NotFound()
	}
	return detailTmpl.Execute(w, &detailData{
		route: r,
		View:  view,
	})
}
