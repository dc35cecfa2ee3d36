package backend

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (b *Backend) edit(w http.ResponseWriter, req *http.Request, r *route, params httprouter.Params) error {
	if err := r.Workflow.SelectByID(req.Context(), params.ByName("id")); err != nil {
		r.Danger(explain(err))
	} else {
		b.saveForm(req.Context(), r)
	}
	r.SeeOther("/admin")
	return nil
}

func (b *Backend) cancel(w http.ResponseWriter, req *http.Request, r *route, params httprouter.Params) error {
	r.Workflow.CancelEdit()
	b.saveForm(req.Context(), r)
	r.SeeOther("/admin")
	return nil
}
