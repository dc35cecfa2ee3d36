package util

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// CreateDomTree reads from a reader and parses the content into an html.Node.
// It returns a body node.
func CreateDomTree(bodyReader io.Reader) (*html.Node, error) {

	parsed, err := html.ParseFragment(
		io.MultiReader(
			strings.NewReader("<body>"),
			bodyReader,
			strings.NewReader("</body>"),
		),
		&html.Node{
			Type:     html.ElementNode,
			DataAtom: atom.Html,
			Data:     "html",
		},
	)

	if err == nil {
		return parsed[1], nil // [0] is head, [1] is body, we want the body node
	} else {
		return nil, err
	}
}

// RenderDomTree renders the children of root into a string.
func RenderDomTree(root *html.Node) (string, error) {
	if root == nil {
		return "", nil
	}
	var buf = &bytes.Buffer{}
	for node := root.FirstChild; node != nil; node = node.NextSibling {
		if err := html.Render(buf, node); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// elements and attributes produced by the rich text editor
var allowedElements = map[atom.Atom][]string{
	atom.A:          {"href", "title"},
	atom.B:          nil,
	atom.Blockquote: nil,
	atom.Br:         nil,
	atom.Em:         nil,
	atom.H1:         nil,
	atom.H2:         nil,
	atom.I:          nil,
	atom.Img:        {"src", "alt"},
	atom.Li:         nil,
	atom.Ol:         nil,
	atom.P:          nil,
	atom.S:          nil,
	atom.Strike:     nil,
	atom.Strong:     nil,
	atom.U:          nil,
	atom.Ul:         nil,
}

// elements which are removed including their content
var droppedElements = map[atom.Atom]bool{
	atom.Embed:    true,
	atom.Iframe:   true,
	atom.Noscript: true,
	atom.Object:   true,
	atom.Script:   true,
	atom.Style:    true,
	atom.Template: true,
}

// Sanitize reduces an HTML fragment to the formats the article editor supports.
// Unknown elements are unwrapped, so their text survives.
func Sanitize(input string) (string, error) {
	body, err := CreateDomTree(strings.NewReader(input))
	if err != nil {
		return "", err
	}
	for child := body.FirstChild; child != nil; {
		next := child.NextSibling
		sanitizeNode(child)
		child = next
	}
	return RenderDomTree(body)
}

// sanitizeNode works post-order, so unwrapped children have already been sanitized.
func sanitizeNode(node *html.Node) {

	for child := node.FirstChild; child != nil; {
		next := child.NextSibling // backup because sanitizeNode might detach child
		sanitizeNode(child)
		child = next
	}

	switch node.Type {
	case html.CommentNode, html.DoctypeNode:
		node.Parent.RemoveChild(node)
		return
	case html.ElementNode:
	default:
		return
	}

	if droppedElements[node.DataAtom] {
		node.Parent.RemoveChild(node)
		return
	}

	allowedAttrs, ok := allowedElements[node.DataAtom]
	if !ok {
		for child := node.FirstChild; child != nil; {
			next := child.NextSibling
			node.RemoveChild(child)
			node.Parent.InsertBefore(child, node)
			child = next
		}
		node.Parent.RemoveChild(node)
		return
	}

	var attrs = node.Attr[:0]
	for _, attr := range node.Attr {
		if attr.Namespace != "" || !contains(allowedAttrs, attr.Key) {
			continue
		}
		if (attr.Key == "href" || attr.Key == "src") && !safeURL(attr.Val) {
			continue
		}
		attrs = append(attrs, attr)
	}
	node.Attr = attrs
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func safeURL(u string) bool {
	u = strings.ToLower(strings.TrimSpace(u))
	if i := strings.IndexAny(u, ":/?#"); i >= 0 && u[i] == ':' {
		scheme := u[:i]
		return scheme == "http" || scheme == "https" || scheme == "mailto"
	}
	return true // relative
}
