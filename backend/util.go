package backend

import (
	"errors"

	"github.com/wansing/artigo/authoring"
	"github.com/wansing/artigo/core"
	"github.com/wansing/artigo/web"
)

// explain returns an error which can be shown to the author.
func explain(err error) error {
	var validationErr *authoring.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return validationErr
	case errors.Is(err, core.ErrSlugTaken):
		return web.Message("This slug is already used by another article.")
	case errors.Is(err, core.ErrForbidden):
		return web.Message("This article belongs to another author.")
	case errors.Is(err, core.ErrNotFound):
		return web.Message("The article does not exist.")
	case core.IsWriteError(err):
		return web.Message("The article could not be saved. Please try again.")
	case core.IsQueryError(err):
		return web.Message("The articles could not be read. Please try again.")
	default:
		return web.Message("Something went wrong. Please try again.")
	}
}
