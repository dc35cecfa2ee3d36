package core

import (
	"context"
	"errors"
	"time"

	"github.com/wansing/artigo/docstore"
	"github.com/wansing/artigo/logging"
)

const Collection = "articles"

// Indexes are the composite indexes the repository queries need.
var Indexes = []docstore.Index{
	{Collection: Collection, FilterField: "isPublished", OrderField: "createdAt"},
	{Collection: Collection, FilterField: "authorUid", OrderField: "createdAt"},
}

// Repository is a thin layer over the document store. It holds no state of its own.
type Repository struct {
	Log   logging.Logger
	Now   func() time.Time // defaults to time.Now
	Store docstore.Store
}

func NewRepository(store docstore.Store, log logging.Logger) *Repository {
	return &Repository{
		Log:   log,
		Store: store,
	}
}

func (r *Repository) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// EnsureIndexes declares the composite indexes.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	for _, index := range Indexes {
		if err := r.Store.EnsureIndex(ctx, index); err != nil {
			return writeError("ensure index "+index.String(), err)
		}
	}
	return nil
}

// ListPublished returns the published articles, newest first. If limit <= 0, all of them are returned.
func (r *Repository) ListPublished(ctx context.Context, limit int) ([]Article, error) {
	return r.list(ctx, "list published", docstore.Query{
		Collection: Collection,
		Filters:    []docstore.Filter{docstore.Where("isPublished", docstore.Equal, true)},
		OrderBy:    &docstore.Order{Field: "createdAt", Desc: true},
		Limit:      limit,
	})
}

// ListByAuthor returns all articles of the given principal, drafts included, newest first.
func (r *Repository) ListByAuthor(ctx context.Context, principalID string) ([]Article, error) {
	return r.list(ctx, "list by author", docstore.Query{
		Collection: Collection,
		Filters:    []docstore.Filter{docstore.Where("authorUid", docstore.Equal, principalID)},
		OrderBy:    &docstore.Order{Field: "createdAt", Desc: true},
	})
}

// GetByPublishedSlug returns the first published article with the given slug. The query is unordered and needs no
// composite index.
func (r *Repository) GetByPublishedSlug(ctx context.Context, slug string) (Article, error) {
	articles, err := r.list(ctx, "get by published slug", docstore.Query{
		Collection: Collection,
		Filters: []docstore.Filter{
			docstore.Where("slug", docstore.Equal, slug),
			docstore.Where("isPublished", docstore.Equal, true),
		},
		Limit: 1,
	})
	if err != nil {
		return Article{}, err
	}
	if len(articles) == 0 {
		return Article{}, ErrNotFound
	}
	return articles[0], nil
}

// Get returns the article with the given id, published or not.
func (r *Repository) Get(ctx context.Context, id string) (Article, error) {
	doc, err := r.Store.Get(ctx, Collection, id)
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		return Article{}, ErrNotFound
	case err != nil:
		return Article{}, queryError("get", err)
	}
	a, err := articleFromDocument(doc)
	if err != nil {
		return Article{}, queryError("get", err)
	}
	return a, nil
}

// Create inserts a new article. createdAt and updatedAt are set to the same server timestamp.
func (r *Repository) Create(ctx context.Context, author Author, draft Draft) (Article, error) {

	draft.Slug = NormalizeSlug(draft.Slug)
	if err := r.requireFreeSlug(ctx, draft.Slug, ""); err != nil {
		return Article{}, err
	}

	fields := draft.fields()
	fields["authorUid"] = author.UID
	fields["authorEmail"] = author.Email
	fields["createdAt"] = docstore.ServerTimestamp
	fields["updatedAt"] = docstore.ServerTimestamp

	id, err := r.Store.Insert(ctx, Collection, fields)
	if err != nil {
		return Article{}, writeError("create", err)
	}

	r.Log.Info(ctx, "article created", "article_id", id, "principal", author.UID)

	return r.Get(ctx, id)
}

// Update overwrites the author-editable fields of an article. createdAt is kept, updatedAt moves forward.
// Concurrent updates are not detected, the last write wins.
func (r *Repository) Update(ctx context.Context, author Author, id string, patch Draft) error {

	existing, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing.AuthorUID != author.UID {
		return ErrForbidden
	}

	patch.Slug = NormalizeSlug(patch.Slug)
	if err := r.requireFreeSlug(ctx, patch.Slug, id); err != nil {
		return err
	}

	updatedAt := r.now()
	if !updatedAt.After(existing.UpdatedAt) {
		updatedAt = existing.UpdatedAt.Add(time.Nanosecond)
	}

	fields := patch.fields()
	fields["updatedAt"] = docstore.TimestampOf(updatedAt)

	switch err := r.Store.Update(ctx, Collection, id, fields); {
	case errors.Is(err, docstore.ErrNotFound):
		return ErrNotFound
	case err != nil:
		return writeError("update", err)
	}

	r.Log.Info(ctx, "article updated", "article_id", id, "principal", author.UID)
	return nil
}

// Remove deletes an article. Removing a missing article is not an error.
func (r *Repository) Remove(ctx context.Context, author Author, id string) error {

	existing, err := r.Get(ctx, id)
	switch {
	case errors.Is(err, ErrNotFound):
		return nil
	case err != nil:
		return err
	}
	if existing.AuthorUID != author.UID {
		return ErrForbidden
	}

	if err := r.Store.Delete(ctx, Collection, id); err != nil {
		return writeError("remove", err)
	}

	r.Log.Info(ctx, "article removed", "article_id", id, "principal", author.UID)
	return nil
}

// requireFreeSlug returns ErrSlugTaken if an article other than ownID uses the slug.
// Two concurrent writes can still pass the check.
func (r *Repository) requireFreeSlug(ctx context.Context, slug, ownID string) error {
	docs, err := r.Store.Query(ctx, docstore.Query{
		Collection: Collection,
		Filters:    []docstore.Filter{docstore.Where("slug", docstore.Equal, slug)},
		Limit:      2,
	})
	if err != nil {
		return queryError("check slug", err)
	}
	for _, doc := range docs {
		if doc.ID != ownID {
			return ErrSlugTaken
		}
	}
	return nil
}

// list skips malformed documents.
func (r *Repository) list(ctx context.Context, op string, q docstore.Query) ([]Article, error) {
	docs, err := r.Store.Query(ctx, q)
	if err != nil {
		return nil, queryError(op, err)
	}
	var articles = make([]Article, 0, len(docs))
	for _, doc := range docs {
		a, err := articleFromDocument(doc)
		if err != nil {
			r.Log.Warn(ctx, "skipping malformed article", "article_id", doc.ID, "err", err)
			continue
		}
		articles = append(articles, a)
	}
	return articles, nil
}
