// Package frontend renders the public pages. It reads published articles and never writes to the store.
package frontend

import (
	"context"
	"errors"
	"time"

	"github.com/wansing/artigo/core"
	"github.com/wansing/artigo/logging"
	"github.com/wansing/artigo/util"
)

// SummaryLength is counted in runes.
const SummaryLength = 150

// Reader is the part of core.Repository which the public views use.
type Reader interface {
	ListPublished(ctx context.Context, limit int) ([]core.Article, error)
	GetByPublishedSlug(ctx context.Context, slug string) (core.Article, error)
}

type Status int

const (
	Loading Status = iota
	Empty
	Loaded
	NotFound
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Empty:
		return "empty"
	case Loaded:
		return "loaded"
	case NotFound:
		return "not found"
	default:
		return "unknown"
	}
}

// Card is an article in the index list.
type Card struct {
	Title   string
	Href    string
	Date    time.Time
	Summary string
}

// IndexView is Loading, Empty or Loaded.
type IndexView struct {
	Status Status
	Cards  []Card
}

func (v *IndexView) Loaded() bool {
	return v.Status == Loaded
}

// DetailView is Loading, NotFound or Loaded.
type DetailView struct {
	Status  Status
	Article core.Article
}

func (v *DetailView) Loaded() bool {
	return v.Status == Loaded
}

// await runs query and returns false if ctx is done before the result arrives.
func await[T any](ctx context.Context, query func(context.Context) (T, error)) (T, bool, error) {

	type result struct {
		value T
		err   error
	}

	var done = make(chan result, 1)
	go func() {
		value, err := query(ctx)
		done <- result{value, err}
	}()

	var zero T
	select {
	case <-ctx.Done():
		return zero, false, nil
	case res := <-done:
		if ctx.Err() != nil {
			return zero, false, nil
		}
		return res.value, true, res.err
	}
}

// LoadIndex lists the published articles, newest first. A failed query results in Empty.
func LoadIndex(ctx context.Context, reader Reader, limit int, log logging.Logger) *IndexView {

	var view = &IndexView{Status: Loading}

	articles, ok, err := await(ctx, func(ctx context.Context) ([]core.Article, error) {
		return reader.ListPublished(ctx, limit)
	})
	if !ok {
		return view
	}
	if err != nil {
		log.Warn(ctx, "listing published articles failed", "err", err)
		view.Status = Empty
		return view
	}

	for _, a := range articles {
		view.Cards = append(view.Cards, Card{
			Title:   a.Title,
			Href:    a.Href(),
			Date:    a.CreatedAt,
			Summary: util.Summary(a.Content, SummaryLength),
		})
	}
	if len(view.Cards) == 0 {
		view.Status = Empty
	} else {
		view.Status = Loaded
	}
	return view
}

// LoadDetail gets a published article by its slug. A failed query results in NotFound.
func LoadDetail(ctx context.Context, reader Reader, slug string, log logging.Logger) *DetailView {

	var view = &DetailView{Status: Loading}

	article, ok, err := await(ctx, func(ctx context.Context) (core.Article, error) {
		return reader.GetByPublishedSlug(ctx, slug)
	})
	if !ok {
		return view
	}
	switch {
	case errors.Is(err, core.ErrNotFound):
		view.Status = NotFound
	case err != nil:
		log.Warn(ctx, "getting article failed", "slug", slug, "err", err)
		view.Status = NotFound
	default:
		view.Status = Loaded
		view.Article = article
	}
	return view
}
