package util

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// PlainText returns the text content of an HTML fragment, with whitespace runs collapsed.
// Text inside script and style elements is skipped.
func PlainText(input io.Reader) string {

	tokenizer := html.NewTokenizerFragment(input, "body")

	var text = &strings.Builder{}
	var skip = 0

	for {

		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			break // assuming tokenizer.Err() == io.EOF
		}

		switch tt {
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			tagNameBytes, _ := tokenizer.TagName()
			switch string(tagNameBytes) {
			case "script", "style":
				if tt == html.StartTagToken {
					skip++
				} else if skip > 0 {
					skip--
				}
			case "br", "p", "li", "h1", "h2", "blockquote":
				text.WriteString(" ")
			}
		case html.TextToken:
			if skip == 0 {
				text.Write(tokenizer.Text())
			}
		}
	}

	return strings.Join(strings.Fields(text.String()), " ")
}

// Summary returns the first maxRunes runes of the text content of an HTML fragment.
// If the text has been cut, an ellipsis is appended.
func Summary(fragment string, maxRunes int) string {
	summary, cut := Trunc(PlainText(strings.NewReader(fragment)), maxRunes)
	if cut {
		summary += "…"
	}
	return summary
}
