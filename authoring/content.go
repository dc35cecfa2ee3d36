package authoring

import (
	"bytes"
	"strings"

	"github.com/wansing/artigo/util"
	"gitlab.com/golang-commonmark/markdown"
)

// Format is the input format of the article content.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
)

// ParseFormat returns FormatHTML for unknown values.
func ParseFormat(s string) Format {
	switch Format(strings.TrimSpace(s)) {
	case FormatMarkdown:
		return FormatMarkdown
	default:
		return FormatHTML
	}
}

var markdownParser *markdown.Markdown = markdown.New(markdown.HTML(true), markdown.Linkify(true), markdown.Typographer(true), markdown.MaxNesting(10))

// RenderContent converts the input to HTML and sanitizes it.
func RenderContent(format Format, input string) (string, error) {
	if format == FormatMarkdown {
		input = renderMarkdown(input)
	}
	return util.Sanitize(input)
}

func renderMarkdown(input string) string {

	// remove all tabs from the beginning of each line, lines have no length limit

	var unindentedContent = &bytes.Buffer{}
	unindentedContent.Grow(len(input) + 1)

	for _, line := range strings.Split(input, "\n") {
		line = strings.TrimSuffix(line, "\r")
		unindentedContent.WriteString(strings.TrimLeft(line, "\t"))
		unindentedContent.WriteString("\n")
	}

	var result = &bytes.Buffer{}
	markdownParser.RenderTokens(result, markdownParser.Parse(unindentedContent.Bytes()))
	return result.String()
}
