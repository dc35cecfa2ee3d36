// Package web contains the request context and page layout which the frontend and backend handlers share.
package web

import (
	"encoding/gob"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/wansing/artigo/util"
	"golang.org/x/text/language"
)

type Notification struct {
	Message string
	Style   string
}

func init() {
	gob.Register([]Notification{}) // required for storing Notifications in a session
}

var langMatcher = language.NewMatcher([]language.Tag{
	language.AmericanEnglish, // default
	language.BrazilianPortuguese,
})

// A Request is created by NewRequest. The http.Request context must carry scs session data.
type Request struct {
	Base     string // prefix of all links, without trailing slash
	sessions *scs.SessionManager

	// http
	writer  http.ResponseWriter
	request *http.Request

	statusWritten bool
	language      language.Tag
}

func NewRequest(sessions *scs.SessionManager, base string, w http.ResponseWriter, httpreq *http.Request) *Request {
	var req = &Request{
		Base:     strings.TrimSuffix(base, "/"),
		sessions: sessions,
		writer:   w,
		request:  httpreq,
	}
	req.language, _ = language.MatchStrings(langMatcher, httpreq.Header.Get("Accept-Language"))
	return req
}

// Message is an error whose text can be shown to the user.
type Message string

func (m Message) Error() string {
	return string(m)
}

// messager is implemented by errors which carry a human-readable message.
type messager interface {
	Message() string
}

// Danger adds a "danger" notification to the session. If err has a Message method, its result is shown.
func (req *Request) Danger(err error) {
	var m messager
	if errors.As(err, &m) {
		req.addNotification(m.Message(), "danger")
	} else {
		req.addNotification(err.Error(), "danger")
	}
}

// Success adds a "success" notification to the session.
func (req *Request) Success(format string, args ...interface{}) {
	req.addNotification(fmt.Sprintf(format, args...), "success")
}

// style should be a bootstrap alert style without the leading "alert-"
func (req *Request) addNotification(message, style string) {
	notifications, _ := req.sessions.Get(req.request.Context(), "notifications").([]Notification)
	notifications = append(notifications, Notification{message, style})
	req.sessions.Put(req.request.Context(), "notifications", notifications)
}

// RenderNotifications removes all notifications from the session and renders them into an HTML string.
// If the HTTP status had already been written, it does nothing.
func (req *Request) RenderNotifications() template.HTML {
	var r string
	if !req.statusWritten {
		notifications, _ := req.sessions.Pop(req.request.Context(), "notifications").([]Notification)
		for _, n := range notifications {
			r += `<div class="alert alert-` + n.Style + ` mt-3" role="alert">` + template.HTMLEscapeString(n.Message) + `</div>`
		}
	}
	return template.HTML(r)
}

// SeeOther redirects to a location within the site. The base prefix is added by util.HandlePrefix.
func (req *Request) SeeOther(format string, args ...interface{}) {
	if req.statusWritten {
		return
	}
	var url = fmt.Sprintf(format, args...)
	http.Redirect(req.writer, req.request, url, http.StatusSeeOther)
	req.statusWritten = true
}

// NotFound writes the status code 404. The page must be rendered afterwards.
func (req *Request) NotFound() {
	if req.statusWritten {
		return
	}
	req.writer.WriteHeader(http.StatusNotFound)
	req.statusWritten = true
}

// Link prepends the base prefix to an absolute path.
func (req *Request) Link(path string) string {
	return req.Base + path
}

// Lang returns the base language of the negotiated language, "en" or "pt".
func (req *Request) Lang() string {
	b, _ := req.language.Base()
	return b.String()
}

func (req *Request) FormatDate(t time.Time) string {
	return util.FormatDate(t, req.Lang())
}

// Cleanup destroys the session (which means re-setting the cookie with zero lifetime) if it has been modified and is empty now.
func (req *Request) Cleanup() {
	ctx := req.request.Context()
	if req.sessions.Status(ctx) == scs.Modified && len(req.sessions.Keys(ctx)) == 0 {
		_ = req.sessions.Destroy(ctx)
	}
}
