package richtext

import (
	"fmt"
	"sort"
	"strings"
)

// renderNodes serializes a node forest to an HTML fragment string.
// The output is deterministic: the same tree always renders to the same
// bytes, which substring-based splicing depends on.
func renderNodes(b *strings.Builder, nodes []*Node) {
	for _, n := range nodes {
		renderNode(b, n)
	}
}

func renderNode(b *strings.Builder, n *Node) {
	switch n.Kind {
	case KindText:
		renderText(b, n)
	case KindParagraph:
		b.WriteString("<p>")
		renderNodes(b, n.Children)
		b.WriteString("</p>")
	case KindHeading:
		level := n.Level
		if level < 1 || level > 3 {
			level = 1
		}
		fmt.Fprintf(b, "<h%d>", level)
		renderNodes(b, n.Children)
		fmt.Fprintf(b, "</h%d>", level)
	case KindBulletList:
		b.WriteString("<ul>")
		renderNodes(b, n.Children)
		b.WriteString("</ul>")
	case KindOrderedList:
		b.WriteString("<ol>")
		renderNodes(b, n.Children)
		b.WriteString("</ol>")
	case KindListItem:
		b.WriteString("<li>")
		renderNodes(b, n.Children)
		b.WriteString("</li>")
	case KindBlockquote:
		b.WriteString("<blockquote>")
		renderNodes(b, n.Children)
		b.WriteString("</blockquote>")
	case KindImage:
		if n.Generate {
			// Generation placeholder: exact marker shape the image-fill
			// phase pattern-matches on.
			b.WriteString(`<img data-ai-generate="true" data-section="` + escapeAttr(n.Section) +
				`" alt="` + escapeAttr(n.Alt) + `" />`)
		} else {
			b.WriteString(`<img src="` + escapeAttr(n.Src) + `" alt="` + escapeAttr(n.Alt) + `">`)
		}
	case KindRule:
		b.WriteString("<hr>")
	}
}

func renderText(b *strings.Builder, n *Node) {
	marks := append([]Mark(nil), n.Marks...)
	sort.SliceStable(marks, func(i, j int) bool { return marks[i].Type < marks[j].Type })
	for _, m := range marks {
		switch m.Type {
		case MarkBold:
			b.WriteString("<strong>")
		case MarkItalic:
			b.WriteString("<em>")
		case MarkLink:
			b.WriteString(`<a href="` + escapeAttr(m.Href) + `">`)
		}
	}
	b.WriteString(escapeText(n.Text))
	for i := len(marks) - 1; i >= 0; i-- {
		switch marks[i].Type {
		case MarkBold:
			b.WriteString("</strong>")
		case MarkItalic:
			b.WriteString("</em>")
		case MarkLink:
			b.WriteString("</a>")
		}
	}
}

// ImageHTML renders a standalone image tag in the document's own
// serialization format, so inserted images match byte-for-byte what a
// reserialize would produce.
func ImageHTML(src, alt string) string {
	var b strings.Builder
	renderNode(&b, &Node{Kind: KindImage, Src: src, Alt: alt})
	return b.String()
}

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escapeText(s string) string {
	return textEscaper.Replace(s)
}

func escapeAttr(s string) string {
	s = textEscaper.Replace(s)
	return strings.ReplaceAll(s, `"`, "&#34;")
}
