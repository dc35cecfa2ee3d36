package backend

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/artigo/authoring"
	"github.com/wansing/artigo/core"
	"github.com/wansing/artigo/web"
)

var deleteTmpl = web.Tmpl(`<h1>Delete article</h1>

	<p>Do you really want to delete <em>{{ .Article.Title }}</em>? This can't be undone.</p>

	<p>
		<a class="btn btn-secondary" href="{{ .Link "/admin" }}">Cancel</a>
	</p>

	<form method="post">
		<button type="submit" class="btn btn-danger" name="confirm" value="yes">Delete</button>
	</form>`)

type deleteData struct {
	*route
	Article core.Article
}

// del shows a confirmation page. The article is removed when the page is submitted, then the workspace is rendered.
func (b *Backend) del(w http.ResponseWriter, req *http.Request, r *route, params httprouter.Params) error {

	var id = params.ByName("id")

	if req.Method == http.MethodPost {
		confirmed := authoring.ConfirmFunc(func(context.Context, string) bool {
			return req.PostFormValue("confirm") == "yes"
		})
		removed, err := r.Workflow.Delete(req.Context(), id, confirmed)
		switch {
		case err != nil:
			r.Danger(explain(err))
		case removed:
			r.Success("The article has been deleted.")
		}
		b.saveForm(req.Context(), r)
		return b.renderWorkspace(w, req, r)
	}

	article, err := b.Repo.Get(req.Context(), id)
	if err == nil && article.AuthorUID != r.Session.PrincipalID {
		err = core.ErrForbidden
	}
	if err != nil {
		r.Danger(explain(err))
		r.SeeOther("/admin")
		return nil
	}

	return deleteTmpl.Execute(w, &deleteData{
		route:   r,
		Article: article,
	})
}
