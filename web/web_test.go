package web

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type friendlyError struct{}

func (friendlyError) Error() string   { return "internal details" }
func (friendlyError) Message() string { return "Please try again." }

var pageTmpl = Tmpl(`<p>{{ .FormatDate .Date }}</p>`)

func TestRequest_NotificationsAndLanguage(t *testing.T) {
	sm := scs.New()

	var date = time.Date(2024, 5, 3, 12, 0, 0, 0, time.Local)

	mux := http.NewServeMux()
	mux.HandleFunc("/add", func(w http.ResponseWriter, r *http.Request) {
		req := NewRequest(sm, "/base/", w, r)
		req.Danger(errors.New("<b>broken</b>"))
		req.Danger(friendlyError{})
		req.Success("Welcome %s!", "alice")
		req.SeeOther("/show")
		req.SeeOther("/ignored")
	})
	mux.HandleFunc("/show", func(w http.ResponseWriter, r *http.Request) {
		req := NewRequest(sm, "/base/", w, r)
		err := pageTmpl.Execute(w, struct {
			*Request
			Date time.Time
		}{req, date})
		require.NoError(t, err)
	})
	srv := httptest.NewServer(sm.LoadAndSave(mux))
	defer srv.Close()

	client := srv.Client()
	client.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

	resp, err := client.Get(srv.URL + "/add")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/show", resp.Header.Get("Location"))
	cookies := resp.Cookies()
	require.NotEmpty(t, cookies)

	get := func(lang string) string {
		r, err := http.NewRequest(http.MethodGet, srv.URL+"/show", nil)
		require.NoError(t, err)
		r.Header.Set("Accept-Language", lang)
		for _, c := range cookies {
			r.AddCookie(c)
		}
		resp, err := client.Do(r)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return string(body)
	}

	body := get("pt-BR,pt;q=0.9")
	assert.Contains(t, body, `<html lang="pt">`)
	assert.Contains(t, body, "&lt;b&gt;broken&lt;/b&gt;")
	assert.Contains(t, body, "Please try again.")
	assert.NotContains(t, body, "internal details")
	assert.Contains(t, body, "Welcome alice!")
	assert.Contains(t, body, "03/05/2024")
	assert.Contains(t, body, `href="/base/static/artigo.css"`)

	// notifications are shown once
	body = get("en-US")
	assert.NotContains(t, body, "Welcome alice!")
	assert.Contains(t, body, `<html lang="en">`)
	assert.Contains(t, body, "May 3, 2024")
}

func TestRenderLoading(t *testing.T) {
	sm := scs.New()
	h := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, RenderLoading(w, NewRequest(sm, "", w, r)))
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Contains(t, rec.Body.String(), `<meta http-equiv="refresh" content="1">`)
	assert.Contains(t, rec.Body.String(), "Loading")
}

func TestStatic(t *testing.T) {
	f, err := Static().Open("artigo.css")
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Contains(t, string(data), ".article-card")
}

func TestRedirectHome(t *testing.T) {
	rec := httptest.NewRecorder()
	RedirectHome.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}
