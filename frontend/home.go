package frontend

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/artigo/auth"
	"github.com/wansing/artigo/web"
)

const errUnavailable = web.Message("The sign-in service is unavailable. Please try again later.")

var homeTmpl = cardsTmpl(`
	{{ if .LoggedIn }}
		<p>
			Signed in as {{ .Session.Email }}.
			<a class="btn btn-primary btn-sm ml-2" href="{{ .Link "/admin" }}">Write articles</a>
		</p>
	{{ else }}
		<form method="post" action="{{ .Link "/login" }}" class="form-inline mb-3">
			<input type="email" class="form-control mr-2" name="email" value="{{ .Email }}" placeholder="Email" required>
			<input type="password" class="form-control mr-2" name="password" placeholder="Password" required>
			<button type="submit" class="btn btn-primary mr-2">Sign in</button>
			<a href="{{ .Link "/register" }}">Register</a>
		</form>
	{{ end }}
	<h1>Latest articles</h1>
	{{ template "cards" . }}`)

type homeData struct {
	*route
	View  *IndexView
	Email string
}

func (f *Frontend) home(w http.ResponseWriter, req *http.Request, r *route, params httprouter.Params) error {
	return f.renderHome(w, req, r, "")
}

func (f *Frontend) renderHome(w http.ResponseWriter, req *http.Request, r *route, email string) error {
	var view = LoadIndex(req.Context(), f.Reader, f.PageSize, f.Log)
	if view.Status == Loading {
		return nil // client is gone
	}
	return homeTmpl.Execute(w, &homeData{
		route: r,
		View:  view,
		Email: email,
	})
}

func (f *Frontend) login(w http.ResponseWriter, req *http.Request, r *route, params httprouter.Params) error {

	email := req.PostFormValue("email")
	password := req.PostFormValue("password")

	session, err := f.Auth.SignIn(req.Context(), email, password)
	if err != nil {
		f.danger(req, r, err)
		// keep POST data for email field
		return f.renderHome(w, req, r, email)
	}

	r.Success("Welcome %s!", session.Email)
	r.SeeOther("/admin")
	return nil
}

var registerTmpl = web.Tmpl(`<h1>Register</h1>
	<form method="post" style="max-width: 20rem; margin: auto;">
		<div class="form-group">
			<label>Email</label>
			<input type="email" class="form-control" name="email" value="{{ .Email }}" required autofocus>
		</div>
		<div class="form-group">
			<label>Password</label>
			<input type="password" class="form-control" name="password" required>
			<small class="form-text text-muted">At least {{ .MinPasswordLength }} characters.</small>
		</div>
		<div class="form-group">
			<button type="submit" class="btn btn-primary">Register</button>
		</div>
	</form>`)

type registerData struct {
	*route
	Email             string
	MinPasswordLength int
}

func (f *Frontend) register(w http.ResponseWriter, req *http.Request, r *route, params httprouter.Params) error {

	var email string

	if req.Method == http.MethodPost {

		email = req.PostFormValue("email")
		password := req.PostFormValue("password")

		session, err := f.Auth.Register(req.Context(), email, password)
		if err == nil {
			r.Success("Welcome %s, your account has been created.", session.Email)
			r.SeeOther("/")
			return nil
		}
		f.danger(req, r, err)
	}

	return registerTmpl.Execute(w, &registerData{
		route:             r,
		Email:             email,
		MinPasswordLength: auth.MinPasswordLength,
	})
}

// danger shows auth errors and hides everything else.
func (f *Frontend) danger(req *http.Request, r *route, err error) {
	var authErr *auth.AuthError
	if errors.As(err, &authErr) {
		f.Log.Info(req.Context(), "authentication rejected", "code", authErr.Code.String())
		r.Danger(authErr)
		return
	}
	f.Log.Error(req.Context(), "authentication failed", "err", err)
	r.Danger(errUnavailable)
}
