// Package backend serves the authoring workspace at /admin. Every page requires a signed-in author.
package backend

import (
	"context"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/julienschmidt/httprouter"
	"github.com/wansing/artigo/auth"
	"github.com/wansing/artigo/authoring"
	"github.com/wansing/artigo/logging"
	"github.com/wansing/artigo/web"
)

// DefaultGateTimeout is used if Backend.GateTimeout is not positive.
const DefaultGateTimeout = 3 * time.Second

type Backend struct {
	Auth        auth.Provider
	Base        string        // without trailing slash
	GateTimeout time.Duration // how long a request waits for the session check
	Log         logging.Logger
	Repo        authoring.Repository
	Sessions    *scs.SessionManager
}

type route struct {
	*web.Request
	Session  *auth.Session
	Workflow *authoring.Workflow
}

// the form is stored per principal, so it doesn't leak to the next author who signs in with the same browser
func formKey(principalID string) string {
	return "form:" + principalID
}

// saveForm stores the form of the workflow in the session.
func (b *Backend) saveForm(ctx context.Context, r *route) {
	b.Sessions.Put(ctx, formKey(r.Session.PrincipalID), r.Workflow.Form)
}

func (b *Backend) gateTimeout() time.Duration {
	if b.GateTimeout > 0 {
		return b.GateTimeout
	}
	return DefaultGateTimeout
}

// requireAuthor waits for the session check. While it is still checking, a self-refreshing placeholder is rendered.
// Anonymous clients are redirected to the home page.
func (b *Backend) requireAuthor(handle func(http.ResponseWriter, *http.Request, *route, httprouter.Params) error) httprouter.Handle {
	return func(w http.ResponseWriter, req *http.Request, params httprouter.Params) {

		var r = &route{
			Request: web.NewRequest(b.Sessions, b.Base, w, req),
		}
		defer r.Cleanup()

		gate := auth.NewGate(req.Context(), b.Auth)
		defer gate.Close()

		waitCtx, cancel := context.WithTimeout(req.Context(), b.gateTimeout())
		state := gate.Wait(waitCtx)
		cancel()

		switch state.Status {
		case auth.Checking:
			if err := web.RenderLoading(w, r.Request); err != nil {
				b.Log.Error(req.Context(), "rendering loading page failed", "err", err)
			}
			return
		case auth.Anonymous:
			r.SeeOther("/")
			return
		case auth.Authenticated:
			r.Session = state.Session
		}

		form, _ := b.Sessions.Get(req.Context(), formKey(r.Session.PrincipalID)).(authoring.Form)
		r.Workflow = authoring.NewWorkflow(b.Repo, r.Session.Author(), form, b.Log)

		if err := handle(w, req, r, params); err != nil {
			b.Log.Error(req.Context(), "rendering page failed", "path", req.URL.Path, "err", err)
			// probably no template has been executed
			_ = errorTmpl.Execute(w, r)
		}
	}
}

var errorTmpl = web.Tmpl(`
	<div class="alert alert-danger" role="alert">
		Something went wrong. Please try again later.
	</div>`)

// Router handles the workspace pages. The request context must carry scs session data.
func (b *Backend) Router() http.Handler {

	var router = httprouter.New()
	router.HandleMethodNotAllowed = false
	router.NotFound = web.RedirectHome

	router.GET("/admin", b.requireAuthor(b.workspace))
	router.POST("/admin/save", b.requireAuthor(b.save))
	router.GET("/admin/edit/:id", b.requireAuthor(b.edit))
	router.POST("/admin/cancel", b.requireAuthor(b.cancel))
	router.GET("/admin/delete/:id", b.requireAuthor(b.del))
	router.POST("/admin/delete/:id", b.requireAuthor(b.del))
	router.POST("/admin/logout", b.requireAuthor(b.logout))

	return router
}
