package main

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wansing/artigo/config"
	"github.com/wansing/artigo/logging"
	"github.com/wansing/artigo/sqldb"
)

func TestAssemble(t *testing.T) {

	sqlDB, err := sqldb.Open(sqldb.MemoryURL)
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	users, err := sqldb.NewUserDB(sqlDB)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.Base = "blog/"
	cfg.HMACSecret = "test secret"

	handler, err := assemble(context.Background(), sqlDB, users, cfg, logging.Discard())
	require.NoError(t, err)

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := server.Client()
	client.Jar = jar

	read := func(resp *http.Response, err error) (*http.Response, string) {
		t.Helper()
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp, string(body)
	}

	// register, which signs in
	resp, body := read(client.PostForm(server.URL+"/blog/register", url.Values{"email": {"Ana@Example.com"}, "password": {"secret1"}}))
	assert.Equal(t, "/blog/", resp.Request.URL.Path)
	assert.Contains(t, body, "Welcome ana@example.com, your account has been created.")
	assert.Contains(t, body, `href="/blog/admin"`)

	// write an article
	_, body = read(client.PostForm(server.URL+"/blog/admin/save", url.Values{
		"title":     {"Olá mundo"},
		"slug":      {"Ola Mundo"},
		"content":   {"Some *markdown*"},
		"format":    {"markdown"},
		"published": {"on"},
	}))
	assert.Contains(t, body, "The article has been saved.")
	assert.Contains(t, body, "ola-mundo")

	// read it
	resp, body = read(client.Get(server.URL + "/blog/"))
	assert.Contains(t, body, `href="/blog/artigo/ola-mundo"`)
	assert.Contains(t, body, "Some markdown")

	resp, body = read(client.Get(server.URL + "/blog/artigo/ola-mundo"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<em>markdown</em>")

	// sign out
	resp, body = read(client.PostForm(server.URL+"/blog/admin/logout", nil))
	assert.Equal(t, "/blog/", resp.Request.URL.Path)
	assert.Contains(t, body, "Goodbye")

	client.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	resp, _ = read(client.Get(server.URL + "/blog/admin"))
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/blog/", resp.Header.Get("Location"))

	// sign in
	_, body = read(client.PostForm(server.URL+"/blog/login", url.Values{"email": {"ana@example.com"}, "password": {"wrong1"}}))
	assert.Contains(t, body, "Wrong email address or password.")

	resp, _ = read(client.PostForm(server.URL+"/blog/login", url.Values{"email": {"ana@example.com"}, "password": {"secret1"}}))
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/blog/admin", resp.Header.Get("Location"))

	// disabled authors are signed out
	require.NoError(t, users.SetDisabled(context.Background(), "ana@example.com", true))
	resp, _ = read(client.Get(server.URL + "/blog/admin"))
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	_, body = read(client.PostForm(server.URL+"/blog/login", url.Values{"email": {"ana@example.com"}, "password": {"secret1"}}))
	assert.Contains(t, body, "This account has been disabled.")

	// unknown paths lead home
	resp, _ = read(client.Get(server.URL + "/blog/nowhere"))
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/blog/", resp.Header.Get("Location"))
}
