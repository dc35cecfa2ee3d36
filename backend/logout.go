package backend

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (b *Backend) logout(w http.ResponseWriter, req *http.Request, r *route, params httprouter.Params) error {
	b.Sessions.Remove(req.Context(), formKey(r.Session.PrincipalID))
	if err := b.Auth.SignOut(req.Context()); err != nil {
		return err
	}
	r.Success("Goodbye")
	r.SeeOther("/")
	return nil
}
