package editor

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dgallion1/contentforge/internal/richtext"
)

// View is the rendered DOM-like tree of a document. It exists so the
// highlight overlay has something to annotate without touching the
// document model; nothing in the view is ever serialized back into the
// document.
type View struct {
	root *html.Node
}

// NewView renders a document into a fresh view tree.
func NewView(doc *richtext.Document) *View {
	v := &View{}
	v.Sync(doc)
	return v
}

// Sync re-renders the view from the document, discarding any markers.
func (v *View) Sync(doc *richtext.Document) {
	root := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	children, err := html.ParseFragment(strings.NewReader(doc.HTML()), &html.Node{
		Type: html.ElementNode, Data: "div", DataAtom: atom.Div,
	})
	if err == nil {
		for _, c := range children {
			root.AppendChild(c)
		}
	}
	v.root = root
}

// HTML renders the view's current state, markers included. Used by tests
// and by the highlight round-trip guarantee.
func (v *View) HTML() string {
	var b strings.Builder
	for c := v.root.FirstChild; c != nil; c = c.NextSibling {
		html.Render(&b, c)
	}
	return b.String()
}

// textSpan is a rendered text node located in the document position space.
type textSpan struct {
	node  *html.Node
	start int // document position of the first rune
	size  int // rune count
}

// textSpans walks the rendered tree and assigns each text node its start
// position, using the same sizing rules as the document model: block
// elements carry open/close units, leaf blocks one unit, inline mark
// elements are transparent.
func (v *View) textSpans() []textSpan {
	var spans []textSpan
	var walk func(n *html.Node, pos int) int
	walk = func(n *html.Node, pos int) int {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				size := utf8.RuneCountInString(c.Data)
				spans = append(spans, textSpan{node: c, start: pos, size: size})
				pos += size
			case html.ElementNode:
				switch c.DataAtom {
				case atom.Img, atom.Hr:
					pos++
				case atom.P, atom.H1, atom.H2, atom.H3, atom.Ul, atom.Ol, atom.Li, atom.Blockquote:
					pos++
					pos = walk(c, pos)
					pos++
				default:
					// strong, em, a, mark: no position weight
					pos = walk(c, pos)
				}
			}
		}
		return pos
	}
	walk(v.root, 0)
	return spans
}
