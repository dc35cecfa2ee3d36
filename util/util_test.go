package util

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomString32(t *testing.T) {
	a, err := RandomString32()
	require.NoError(t, err)
	b, err := RandomString32()
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}

func TestTrunc(t *testing.T) {
	s, cut := Trunc("  short  ", 10)
	assert.Equal(t, "short", s)
	assert.False(t, cut)

	s, cut = Trunc("ação rápida", 4)
	assert.Equal(t, "ação", s)
	assert.True(t, cut)

	s, cut = Trunc("exact", 5)
	assert.Equal(t, "exact", s)
	assert.False(t, cut)
}

func TestPlainText(t *testing.T) {
	text := PlainText(strings.NewReader(`<h1>Title</h1><p>Some <strong>bold</strong> &amp; text</p><script>alert(1)</script><p>end</p>`))
	assert.Equal(t, "Title Some bold & text end", text)
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "hi", Summary("<p>hi</p>", 150))
	assert.Equal(t, "abc…", Summary("<p>abcdef</p>", 3))
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"keeps editor formats", `<h2>Head</h2><p><strong>b</strong> <em>i</em> <u>u</u></p>`, `<h2>Head</h2><p><strong>b</strong> <em>i</em> <u>u</u></p>`},
		{"drops script", `<p>a</p><script>alert(1)</script>`, `<p>a</p>`},
		{"unwraps unknown", `<div><span class="x">text</span></div>`, `text`},
		{"unwraps nested unknown", `<div><section><p>deep</p></section></div>`, `<p>deep</p>`},
		{"strips attributes", `<p onclick="x()" style="color:red">a</p>`, `<p>a</p>`},
		{"drops javascript urls", `<a href="javascript:alert(1)">x</a>`, `<a>x</a>`},
		{"keeps http urls", `<a href="https://example.com/a">x</a>`, `<a href="https://example.com/a">x</a>`},
		{"keeps images", `<img src="/a.png" alt="A" width="3">`, `<img src="/a.png" alt="A"/>`},
		{"drops comments", `<p>a<!-- c --></p>`, `<p>a</p>`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Sanitize(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2024, time.March, 5, 12, 0, 0, 0, time.Local)
	assert.Equal(t, "05/03/2024", FormatDate(d, "pt"))
	assert.Equal(t, "March 5, 2024", FormatDate(d, "en"))
	assert.Equal(t, "Data indisponível", FormatDate(time.Time{}, "pt"))
	assert.Equal(t, "Date unavailable", FormatDate(time.Time{}, "en"))
}
