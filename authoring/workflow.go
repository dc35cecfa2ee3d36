// Package authoring implements the article editing workflow of a signed-in author.
//
// A Workflow is created per request from the Form kept in the author's session. Its article list is
// replaced by fetching it from the Repository, and never modified in place.
package authoring

import (
	"context"
	"encoding/gob"
	"strings"

	"github.com/wansing/artigo/core"
	"github.com/wansing/artigo/logging"
)

func init() {
	gob.Register(Form{}) // required for storing the form in a session
}

type State int

const (
	IdleNew State = iota
	Editing
	Submitting
)

func (s State) String() string {
	switch s {
	case IdleNew:
		return "idle-new"
	case Editing:
		return "editing"
	case Submitting:
		return "submitting"
	default:
		return "unknown"
	}
}

// Form holds the draft values between requests. EditingID is empty for a new article.
type Form struct {
	Title       string
	Slug        string
	Content     string
	IsPublished bool
	Format      Format
	EditingID   string
}

// Repository is the part of core.Repository which the workflow uses.
type Repository interface {
	Create(ctx context.Context, author core.Author, draft core.Draft) (core.Article, error)
	Get(ctx context.Context, id string) (core.Article, error)
	ListByAuthor(ctx context.Context, principalID string) ([]core.Article, error)
	Remove(ctx context.Context, author core.Author, id string) error
	Update(ctx context.Context, author core.Author, id string, patch core.Draft) error
}

// Confirmer is asked before an article is deleted.
type Confirmer interface {
	Confirm(ctx context.Context, id string) bool
}

type ConfirmFunc func(ctx context.Context, id string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, id string) bool {
	return f(ctx, id)
}

type Stats struct {
	Total     int
	Published int
	Drafts    int
}

type Workflow struct {
	Author core.Author
	Form   Form
	Log    logging.Logger
	Repo   Repository

	articles   []core.Article
	fetched    bool
	submitting bool
}

func NewWorkflow(repo Repository, author core.Author, form Form, log logging.Logger) *Workflow {
	if form.Format == "" {
		form.Format = FormatHTML
	}
	return &Workflow{
		Author: author,
		Form:   form,
		Log:    log.With("principal", author.UID),
		Repo:   repo,
	}
}

func (w *Workflow) State() State {
	switch {
	case w.submitting:
		return Submitting
	case w.Form.EditingID != "":
		return Editing
	default:
		return IdleNew
	}
}

// Articles returns the list of the last fetch.
func (w *Workflow) Articles() []core.Article {
	return w.articles
}

func (w *Workflow) Stats() Stats {
	var stats = Stats{Total: len(w.articles)}
	for _, a := range w.articles {
		if a.IsPublished {
			stats.Published++
		} else {
			stats.Drafts++
		}
	}
	return stats
}

// Load fetches the articles of the author. A failed fetch leaves an empty list.
func (w *Workflow) Load(ctx context.Context) error {
	return w.fetch(ctx)
}

// Fetched reports whether the article list has been fetched, successfully or not.
func (w *Workflow) Fetched() bool {
	return w.fetched
}

func (w *Workflow) fetch(ctx context.Context) error {
	w.fetched = true
	articles, err := w.Repo.ListByAuthor(ctx, w.Author.UID)
	if err != nil {
		w.Log.Warn(ctx, "fetching articles failed", "err", err)
		return err
	}
	w.articles = articles
	return nil
}

// SelectForEdit copies the article into the form. It can be called in any state.
func (w *Workflow) SelectForEdit(article core.Article) error {
	if article.AuthorUID != w.Author.UID {
		return core.ErrForbidden
	}
	w.Form = Form{
		Title:       article.Title,
		Slug:        article.Slug,
		Content:     article.Content,
		IsPublished: article.IsPublished,
		Format:      FormatHTML, // content is stored as HTML
		EditingID:   article.ID,
	}
	return nil
}

// SelectByID loads an article and selects it for editing.
func (w *Workflow) SelectByID(ctx context.Context, id string) error {
	article, err := w.Repo.Get(ctx, id)
	if err != nil {
		return err
	}
	return w.SelectForEdit(article)
}

// CancelEdit resets the form.
func (w *Workflow) CancelEdit() {
	w.Form = Form{Format: w.Form.Format}
}

// Submit validates the form and creates or updates the article. On success, the form is reset
// and the article list is fetched once. On failure, the form is kept.
func (w *Workflow) Submit(ctx context.Context) error {

	if err := w.validate(); err != nil {
		return err
	}

	content, err := RenderContent(w.Form.Format, w.Form.Content)
	if err != nil {
		return err
	}
	if strings.TrimSpace(content) == "" {
		return &ValidationError{Field: "content", Reason: MissingField}
	}

	var draft = core.Draft{
		Title:       strings.TrimSpace(w.Form.Title),
		Slug:        core.NormalizeSlug(w.Form.Slug),
		Content:     content,
		IsPublished: w.Form.IsPublished,
	}

	w.submitting = true
	if w.Form.EditingID == "" {
		_, err = w.Repo.Create(ctx, w.Author, draft)
	} else {
		err = w.Repo.Update(ctx, w.Author, w.Form.EditingID, draft)
	}
	w.submitting = false

	if err != nil {
		w.Log.Error(ctx, "saving article failed", "article_id", w.Form.EditingID, "err", err)
		return err
	}

	w.CancelEdit()
	_ = w.fetch(ctx)
	return nil
}

func (w *Workflow) validate() error {
	switch {
	case strings.TrimSpace(w.Form.Title) == "":
		return &ValidationError{Field: "title", Reason: MissingField}
	case core.NormalizeSlug(w.Form.Slug) == "":
		return &ValidationError{Field: "slug", Reason: MissingField}
	case strings.TrimSpace(w.Form.Content) == "":
		return &ValidationError{Field: "content", Reason: MissingField}
	}
	return nil
}

// Delete removes an article if confirm agrees. It reports whether the article has been removed.
// If the article was being edited, the edit is canceled.
func (w *Workflow) Delete(ctx context.Context, id string, confirm Confirmer) (bool, error) {

	if confirm == nil || !confirm.Confirm(ctx, id) {
		return false, nil
	}

	if err := w.Repo.Remove(ctx, w.Author, id); err != nil {
		w.Log.Error(ctx, "removing article failed", "article_id", id, "err", err)
		return false, err
	}

	if w.Form.EditingID == id {
		w.CancelEdit()
	}
	_ = w.fetch(ctx)
	return true, nil
}
