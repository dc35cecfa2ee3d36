package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSlug(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want string
	}{
		{"Hello World!", "hello-world"},
		{"  Hello   World  ", "hello-world"},
		{"Ação rápida", "ao-rpida"},
		{"a - b", "a-b"},
		{"a--b---c", "a-b-c"},
		{"tab\tand\nnewline", "tab-and-newline"},
		{"already-normal-123", "already-normal-123"},
		{"", ""},
		{"!!!", ""},
	} {
		assert.Equal(t, tc.want, NormalizeSlug(tc.in), tc.in)
	}
}

func TestNormalizeSlug_Idempotent(t *testing.T) {
	for _, in := range []string{
		"Hello World!",
		"  --Mixed__Case  and spaces--  ",
		"Ünïcödé ßtring",
		"a - - b",
		"x y",
		"",
	} {
		once := NormalizeSlug(in)
		assert.Equal(t, once, NormalizeSlug(once), in)
	}
}

func TestArticleHref(t *testing.T) {
	assert.Equal(t, "/artigo/hello-world", ArticleHref("hello-world"))
	assert.Equal(t, "/artigo/hello-world", Article{Slug: "hello-world"}.Href())
}
