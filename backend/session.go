package backend

import (
	"fmt"
	"net/http"
	"time"

	"github.com/wansing/artigo/auth"
)

// KeepAlive is the interval of comment lines on an idle event stream.
const KeepAlive = 25 * time.Second

// SessionEvents streams the session state of the client as server-sent events. When the session ends, it sends
// a "redirect" event with the home page location and closes the stream.
//
// It must not be wrapped by scs.SessionManager.LoadAndSave, which buffers the response. It loads the session itself.
func (b *Backend) SessionEvents() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {

		var token string
		if cookie, err := req.Cookie(b.Sessions.Cookie.Name); err == nil {
			token = cookie.Value
		}

		ctx, err := b.Sessions.Load(req.Context(), token)
		if err != nil {
			b.Log.Error(req.Context(), "loading session failed", "err", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		gate := auth.NewGate(ctx, b.Auth)
		defer gate.Close()

		rc := http.NewResponseController(w)
		_ = rc.SetWriteDeadline(time.Time{}) // the stream outlives the server write timeout

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.WriteHeader(http.StatusOK)
		if err := rc.Flush(); err != nil {
			b.Log.Warn(ctx, "event stream can't be flushed", "err", err)
			return
		}

		keepAlive := time.NewTicker(KeepAlive)
		defer keepAlive.Stop()

		for {
			select {
			case <-req.Context().Done():
				return
			case <-keepAlive.C:
				fmt.Fprint(w, ": keep-alive\n\n")
			case state := <-gate.Changes():
				switch state.Status {
				case auth.Checking:
					continue
				case auth.Authenticated:
					fmt.Fprint(w, "event: session\ndata: authenticated\n\n")
				case auth.Anonymous:
					fmt.Fprintf(w, "event: redirect\ndata: %s/\n\n", b.Base)
					_ = rc.Flush()
					return
				}
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	})
}
