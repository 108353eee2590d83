package richtext

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseFragment parses an HTML fragment into a node forest. Top-level
// inline runs are returned as-is; callers that need a block-only forest
// wrap them with wrapStray.
func ParseFragment(markup string) ([]*Node, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	parsed, err := html.ParseFragment(strings.NewReader(markup), ctx)
	if err != nil {
		return nil, fmt.Errorf("parse fragment: %w", err)
	}
	var out []*Node
	for _, n := range parsed {
		out = append(out, convertBlock(n)...)
	}
	return out, nil
}

func convertBlock(n *html.Node) []*Node {
	switch n.Type {
	case html.TextNode:
		if strings.TrimSpace(n.Data) == "" {
			return nil
		}
		return []*Node{textRun(n.Data, nil)}
	case html.ElementNode:
		// handled below
	default:
		return nil
	}

	switch n.DataAtom {
	case atom.P:
		return []*Node{{Kind: KindParagraph, Children: convertInlineChildren(n, nil)}}
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		level := int(n.Data[1] - '0')
		if level > 3 {
			level = 3
		}
		return []*Node{{Kind: KindHeading, Level: level, Children: convertInlineChildren(n, nil)}}
	case atom.Ul, atom.Ol:
		kind := KindBulletList
		if n.DataAtom == atom.Ol {
			kind = KindOrderedList
		}
		list := &Node{Kind: kind}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.DataAtom == atom.Li {
				list.Children = append(list.Children, convertListItem(c))
			}
		}
		return []*Node{list}
	case atom.Li:
		// Stray list item outside a list: keep it in a bullet list.
		return []*Node{{Kind: KindBulletList, Children: []*Node{convertListItem(n)}}}
	case atom.Blockquote:
		var inner []*Node
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			inner = append(inner, convertBlock(c)...)
		}
		return []*Node{{Kind: KindBlockquote, Children: wrapStray(inner)}}
	case atom.Img:
		return []*Node{convertImage(n)}
	case atom.Hr:
		return []*Node{{Kind: KindRule}}
	case atom.Br:
		return nil
	case atom.Strong, atom.B, atom.Em, atom.I, atom.A:
		return convertInline(n, nil)
	default:
		// Unknown elements (div, span, article, ...) are transparent.
		var out []*Node
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			out = append(out, convertBlock(c)...)
		}
		return out
	}
}

func convertListItem(n *html.Node) *Node {
	item := &Node{Kind: KindListItem}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			switch c.DataAtom {
			case atom.P:
				// Unwrap paragraph-wrapped item content.
				item.Children = append(item.Children, convertInlineChildren(c, nil)...)
				continue
			case atom.Ul, atom.Ol:
				item.Children = append(item.Children, convertBlock(c)...)
				continue
			}
		}
		item.Children = append(item.Children, convertInline(c, nil)...)
	}
	return item
}

func convertInlineChildren(n *html.Node, marks []Mark) []*Node {
	var out []*Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, convertInline(c, marks)...)
	}
	return out
}

func convertInline(n *html.Node, marks []Mark) []*Node {
	switch n.Type {
	case html.TextNode:
		if n.Data == "" {
			return nil
		}
		return []*Node{textRun(n.Data, marks)}
	case html.ElementNode:
		// handled below
	default:
		return nil
	}

	switch n.DataAtom {
	case atom.Strong, atom.B:
		return convertInlineChildren(n, addMark(marks, Mark{Type: MarkBold}))
	case atom.Em, atom.I:
		return convertInlineChildren(n, addMark(marks, Mark{Type: MarkItalic}))
	case atom.A:
		return convertInlineChildren(n, addMark(marks, Mark{Type: MarkLink, Href: attrVal(n, "href")}))
	case atom.Br:
		return []*Node{textRun("\n", marks)}
	case atom.Img:
		return []*Node{convertImage(n)}
	default:
		return convertInlineChildren(n, marks)
	}
}

func convertImage(n *html.Node) *Node {
	img := &Node{
		Kind: KindImage,
		Src:  attrVal(n, "src"),
		Alt:  attrVal(n, "alt"),
	}
	if attrVal(n, "data-ai-generate") == "true" {
		img.Generate = true
		img.Section = attrVal(n, "data-section")
	}
	return img
}

func addMark(marks []Mark, m Mark) []Mark {
	for _, existing := range marks {
		if existing.Type == m.Type {
			return marks
		}
	}
	out := make([]Mark, len(marks), len(marks)+1)
	copy(out, marks)
	return append(out, m)
}

func attrVal(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// wrapStray groups consecutive top-level inline runs into paragraphs so a
// block context only ever holds block nodes.
func wrapStray(nodes []*Node) []*Node {
	var out []*Node
	var run []*Node
	flush := func() {
		if len(run) > 0 {
			out = append(out, &Node{Kind: KindParagraph, Children: run})
			run = nil
		}
	}
	for _, n := range nodes {
		if n.Kind == KindText {
			run = append(run, n)
			continue
		}
		flush()
		out = append(out, n)
	}
	flush()
	return out
}
