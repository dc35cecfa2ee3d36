package core

import (
	"fmt"
	"time"

	"github.com/wansing/artigo/docstore"
)

// Author is the principal an article is written by.
type Author struct {
	UID   string
	Email string
}

// Article is a document in the "articles" collection.
type Article struct {
	ID          string
	Title       string
	Slug        string
	Content     string // HTML
	IsPublished bool
	AuthorUID   string
	AuthorEmail string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Href returns the public path of the article.
func (a Article) Href() string {
	return ArticleHref(a.Slug)
}

// Draft contains the author-editable fields of an article. It is used for creation and as an update patch.
type Draft struct {
	Title       string
	Slug        string
	Content     string
	IsPublished bool
}

func (d Draft) fields() map[string]any {
	return map[string]any{
		"title":       d.Title,
		"slug":        d.Slug,
		"content":     d.Content,
		"isPublished": d.IsPublished,
	}
}

// articleFromDocument is the only place which reads raw document fields.
func articleFromDocument(doc docstore.Document) (Article, error) {

	var a = Article{ID: doc.ID}
	var err error

	if a.Title, err = stringField(doc, "title"); err != nil {
		return Article{}, err
	}
	if a.Slug, err = stringField(doc, "slug"); err != nil {
		return Article{}, err
	}
	if a.Content, err = stringField(doc, "content"); err != nil {
		return Article{}, err
	}
	if a.AuthorUID, err = stringField(doc, "authorUid"); err != nil {
		return Article{}, err
	}
	if a.AuthorEmail, err = stringField(doc, "authorEmail"); err != nil {
		return Article{}, err
	}

	switch v := doc.Fields["isPublished"].(type) {
	case nil:
	case bool:
		a.IsPublished = v
	default:
		return Article{}, fmt.Errorf("document %s: isPublished has type %T", doc.ID, v)
	}

	updatedAt, err := timeField(doc, "updatedAt")
	if err != nil {
		return Article{}, err
	}
	createdAt, err := timeField(doc, "createdAt")
	if err != nil {
		return Article{}, err
	}
	if createdAt.IsZero() {
		createdAt = updatedAt
	}
	a.CreatedAt = createdAt
	a.UpdatedAt = updatedAt

	return a, nil
}

// missing fields are returned as ""
func stringField(doc docstore.Document, name string) (string, error) {
	switch v := doc.Fields[name].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		return "", fmt.Errorf("document %s: %s has type %T", doc.ID, name, v)
	}
}

// missing or pending timestamps are returned as the zero time
func timeField(doc docstore.Document, name string) (time.Time, error) {
	var value = doc.Fields[name]
	if docstore.IsPending(value) {
		return time.Time{}, nil
	}
	switch v := value.(type) {
	case nil:
		return time.Time{}, nil
	case docstore.Timestamp:
		return v.Time(), nil
	default:
		return time.Time{}, fmt.Errorf("document %s: %s has type %T", doc.ID, name, v)
	}
}
