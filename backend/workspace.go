package backend

import (
	"html/template"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/artigo/authoring"
	"github.com/wansing/artigo/web"
)

// We use multiple forms because having multiple submit buttons is tricky.
// (There is no definition which one is used if pressing enter.)
var workspaceTmpl = web.Tmpl(`
	<div class="d-flex justify-content-between align-items-center">
		<span class="text-muted">Signed in as {{ .Session.Email }}</span>
		<form method="post" action="{{ .Link "/admin/logout" }}">
			<button type="submit" class="btn btn-sm btn-outline-secondary">Sign out</button>
		</form>
	</div>

	<div class="card bg-light mt-3">
		<div class="card-body">
			{{ with .Workflow.Stats }}
				{{ .Total }} articles &middot; {{ .Published }} published &middot; {{ .Drafts }} drafts
			{{ end }}
		</div>
	</div>

	{{ if .Workflow.Form.EditingID }}
		<h1>Edit article</h1>
	{{ else }}
		<h1>New article</h1>
	{{ end }}

	<form method="post" action="{{ .Link "/admin/save" }}">
		<div class="form-group">
			<label>Title</label>
			<input type="text" class="form-control" name="title" value="{{ .Workflow.Form.Title }}" required>
		</div>
		<div class="form-group">
			<label>Slug</label>
			<input type="text" class="form-control" name="slug" value="{{ .Workflow.Form.Slug }}" onchange="normalizeSlug(this)" required>
		</div>
		<div class="form-group">
			<label>Format</label>
			<select class="form-control" name="format">
				<option value="html"{{ if eq .Format "html" }} selected{{ end }}>HTML</option>
				<option value="markdown"{{ if eq .Format "markdown" }} selected{{ end }}>Markdown</option>
			</select>
		</div>
		<div class="form-group">
			<label>Content</label>
			<textarea class="form-control" name="content" rows="12">{{ .Workflow.Form.Content }}</textarea>
		</div>
		<div class="form-group form-check">
			<input type="checkbox" class="form-check-input" id="published" name="published"{{ if .Workflow.Form.IsPublished }} checked{{ end }}>
			<label class="form-check-label" for="published">Published</label>
		</div>
		<button type="submit" class="btn btn-primary">Save</button>
	</form>

	{{ if .Workflow.Form.EditingID }}
		<form method="post" action="{{ .Link "/admin/cancel" }}" class="mt-2">
			<button type="submit" class="btn btn-secondary">Cancel editing</button>
		</form>
	{{ end }}

	{{ with .Preview }}
		<h2 class="mt-3">Preview</h2>
		<div class="preview article-content">{{ . }}</div>
	{{ end }}

	<h2 class="mt-4">Your articles</h2>
	{{ if .Workflow.Articles }}
		<table class="table table-sm">
			<thead>
				<tr>
					<th>Title</th>
					<th>Slug</th>
					<th>Status</th>
					<th>Created</th>
					<th></th>
				</tr>
			</thead>
			<tbody>
				{{ range .Workflow.Articles }}
					<tr>
						<td>{{ .Title }}</td>
						<td>{{ .Slug }}</td>
						<td>
							{{ if .IsPublished }}
								<span class="badge badge-success">Published</span>
							{{ else }}
								<span class="badge badge-secondary">Draft</span>
							{{ end }}
						</td>
						<td>{{ $.FormatDate .CreatedAt }}</td>
						<td class="text-right">
							{{ if .IsPublished }}
								<a class="btn btn-sm btn-link" href="{{ $.Link .Href }}" target="_blank">View</a>
							{{ end }}
							<a class="btn btn-sm btn-secondary" href="{{ $.Link "/admin/edit/" }}{{ .ID }}">Edit</a>
							<a class="btn btn-sm btn-danger" href="{{ $.Link "/admin/delete/" }}{{ .ID }}">Delete</a>
						</td>
					</tr>
				{{ end }}
			</tbody>
		</table>
	{{ else }}
		<p class="text-muted">You have not written any articles yet.</p>
	{{ end }}

	<script>

		// after a save or delete, reloading shouldn't post the form again
		history.replaceState(null, "", "{{ .Link "/admin" }}");

		function normalizeSlug(widget) {
			widget.value = widget.value.trim().toLowerCase().replace(/\s+/g, '-').replace(/[^a-z0-9-]+/g, '').replace(/-{2,}/g, '-');
		}

		// leave the workspace when the session ends, e.g. by signing out in another tab
		var events = new EventSource("{{ .Link "/admin/session" }}");
		events.addEventListener("redirect", function(e) {
			events.close();
			window.location.href = e.data;
		});

	</script>`)

type workspaceData struct {
	*route
	Preview template.HTML
}

func (data *workspaceData) Format() string {
	return string(data.Workflow.Form.Format)
}

func (b *Backend) workspace(w http.ResponseWriter, req *http.Request, r *route, params httprouter.Params) error {
	return b.renderWorkspace(w, req, r)
}

// renderWorkspace fetches the article list unless the workflow has already done so.
func (b *Backend) renderWorkspace(w http.ResponseWriter, req *http.Request, r *route) error {

	if !r.Workflow.Fetched() {
		// a failed fetch is logged and leaves the list empty
		_ = r.Workflow.Load(req.Context())
	}

	var data = &workspaceData{
		route: r,
	}

	if form := r.Workflow.Form; form.Content != "" {
		if preview, err := authoring.RenderContent(form.Format, form.Content); err == nil {
			data.Preview = template.HTML(preview)
		}
	}

	return workspaceTmpl.Execute(w, data)
}

func (b *Backend) save(w http.ResponseWriter, req *http.Request, r *route, params httprouter.Params) error {

	var form = &r.Workflow.Form
	form.Title = req.PostFormValue("title")
	form.Slug = req.PostFormValue("slug")
	form.Content = req.PostFormValue("content")
	form.Format = authoring.ParseFormat(req.PostFormValue("format"))
	form.IsPublished = req.PostFormValue("published") != ""

	if err := r.Workflow.Submit(req.Context()); err != nil {
		r.Danger(explain(err))
	} else {
		r.Success("The article has been saved.")
	}

	// rendered right away, so the list fetched by Submit is the one shown
	b.saveForm(req.Context(), r)
	return b.renderWorkspace(w, req, r)
}
