package frontend

import (
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/julienschmidt/httprouter"
	"github.com/wansing/artigo/auth"
	"github.com/wansing/artigo/logging"
	"github.com/wansing/artigo/web"
)

type Frontend struct {
	Auth     auth.Provider
	Base     string // without trailing slash
	Log      logging.Logger
	PageSize int // articles on the home page, 0 means all
	Reader   Reader
	Sessions *scs.SessionManager
}

type route struct {
	*web.Request
	Session *auth.Session // nil if signed out
}

func (r *route) LoggedIn() bool {
	return r.Session != nil
}

func (f *Frontend) middleware(handle func(http.ResponseWriter, *http.Request, *route, httprouter.Params) error) httprouter.Handle {
	return func(w http.ResponseWriter, req *http.Request, params httprouter.Params) {

		var r = &route{
			Request: web.NewRequest(f.Sessions, f.Base, w, req),
		}
		defer r.Cleanup()

		session, err := f.Auth.Current(req.Context())
		if err != nil {
			f.Log.Warn(req.Context(), "getting session failed", "err", err)
		}
		r.Session = session

		if err := handle(w, req, r, params); err != nil {
			f.Log.Error(req.Context(), "rendering page failed", "path", req.URL.Path, "err", err)
			// probably no template has been executed
			_ = errorTmpl.Execute(w, r)
		}
	}
}

var errorTmpl = web.Tmpl(`
	<div class="alert alert-danger" role="alert">
		Something went wrong. Please try again later.
	</div>`)

// Router handles the public pages. The request context must carry scs session data.
func (f *Frontend) Router() http.Handler {

	var router = httprouter.New()
	router.HandleMethodNotAllowed = false // unknown methods are redirected home, like unknown paths
	router.NotFound = web.RedirectHome

	router.GET("/", f.middleware(f.home))
	router.POST("/login", f.middleware(f.login))
	router.GET("/register", f.middleware(f.register))
	router.POST("/register", f.middleware(f.register))
	router.GET("/artigos", f.middleware(f.list))
	router.GET("/artigo/:slug", f.middleware(f.detail))
	router.ServeFiles("/static/*filepath", web.Static())

	return router
}
