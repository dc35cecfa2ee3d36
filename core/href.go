package core

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
	slugRegex       = regexp.MustCompile(`[^a-z0-9-]+`)
	dashesRegex     = regexp.MustCompile(`-{2,}`)
)

// NormalizeSlug lowercases and trims the slug, replaces whitespace runs by a dash,
// removes everything except a-z, 0-9 and dashes, and collapses repeated dashes.
// It is idempotent.
func NormalizeSlug(slug string) string {
	slug = strings.ToLower(strings.TrimSpace(slug))
	slug = whitespaceRegex.ReplaceAllString(slug, "-")
	slug = slugRegex.ReplaceAllString(slug, "")
	slug = dashesRegex.ReplaceAllString(slug, "-")
	return slug
}

// ArticleHref returns the public path of the article with the given slug.
func ArticleHref(slug string) string {
	return "/artigo/" + url.PathEscape(slug)
}
