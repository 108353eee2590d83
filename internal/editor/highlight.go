package editor

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dgallion1/contentforge/internal/richtext"
)

// MarkerAttr tags every highlight marker element so removal can find them
// later, orphaned or not.
const MarkerAttr = "data-ai-highlight"

// HighlightHandle tracks a highlight applied to a view. A degraded handle
// (both strategies failed) is still valid; Remove on it is a no-op scan.
type HighlightHandle struct {
	view    *View
	Applied bool
}

// HighlightStrategy wraps part of a rendered range in marker elements.
// Apply reports whether the strategy could handle the range.
type HighlightStrategy interface {
	Apply(v *View, r richtext.Range) bool
}

// Highlight marks the rendered range in the view. The atomic single-marker
// strategy is probed first; a range crossing node boundaries falls back to
// wrapping each intersecting text node. If neither works the view is left
// untouched and editing proceeds without a visual highlight.
func Highlight(v *View, r richtext.Range) *HighlightHandle {
	for _, s := range []HighlightStrategy{atomicWrap{}, perNodeWrap{}} {
		if s.Apply(v, r) {
			return &HighlightHandle{view: v, Applied: true}
		}
	}
	return &HighlightHandle{view: v}
}

// Remove unwraps every marker element currently in the view, splicing its
// children back into the parent. The rendered tree is restored exactly;
// markers left over from earlier applications are stripped too. Safe to
// call more than once.
func (h *HighlightHandle) Remove() {
	if h == nil || h.view == nil {
		return
	}
	stripMarkers(h.view.root)
	h.Applied = false
}

func stripMarkers(root *html.Node) {
	var markers []*html.Node
	var find func(n *html.Node)
	find = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && hasAttr(c, MarkerAttr) {
				markers = append(markers, c)
			}
			find(c)
		}
	}
	find(root)

	for _, m := range markers {
		parent := m.Parent
		if parent == nil {
			continue
		}
		for m.FirstChild != nil {
			c := m.FirstChild
			m.RemoveChild(c)
			parent.InsertBefore(c, m)
		}
		parent.RemoveChild(m)
	}
}

// atomicWrap handles ranges confined to a single rendered text node: the
// node is split around the range and the middle wrapped in one marker.
type atomicWrap struct{}

func (atomicWrap) Apply(v *View, r richtext.Range) bool {
	for _, span := range v.textSpans() {
		if r.From >= span.start && r.To <= span.start+span.size {
			wrapTextSlice(span.node, r.From-span.start, r.To-span.start)
			return true
		}
	}
	return false
}

// perNodeWrap wraps each text node intersecting the range in its own
// marker, whole, preserving reading order.
type perNodeWrap struct{}

func (perNodeWrap) Apply(v *View, r richtext.Range) bool {
	wrapped := false
	for _, span := range v.textSpans() {
		if span.start < r.To && span.start+span.size > r.From {
			wrapWhole(span.node)
			wrapped = true
		}
	}
	return wrapped
}

func newMarker() *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     "mark",
		DataAtom: atom.Mark,
		Attr:     []html.Attribute{{Key: MarkerAttr, Val: "true"}},
	}
}

func wrapWhole(text *html.Node) {
	parent := text.Parent
	if parent == nil {
		return
	}
	marker := newMarker()
	parent.InsertBefore(marker, text)
	parent.RemoveChild(text)
	marker.AppendChild(text)
}

// wrapTextSlice splits a text node at rune offsets [from,to) and wraps the
// middle part in a marker. Splitting leaves sibling text nodes that render
// back to the identical string, so removal restores the exact markup.
func wrapTextSlice(text *html.Node, from, to int) {
	parent := text.Parent
	if parent == nil {
		return
	}
	runes := []rune(text.Data)
	if from < 0 {
		from = 0
	}
	if to > len(runes) {
		to = len(runes)
	}

	next := text.NextSibling
	parent.RemoveChild(text)

	insert := func(n *html.Node) {
		if next != nil {
			parent.InsertBefore(n, next)
		} else {
			parent.AppendChild(n)
		}
	}

	if from > 0 {
		insert(&html.Node{Type: html.TextNode, Data: string(runes[:from])})
	}
	marker := newMarker()
	marker.AppendChild(&html.Node{Type: html.TextNode, Data: string(runes[from:to])})
	insert(marker)
	if to < len(runes) {
		insert(&html.Node{Type: html.TextNode, Data: string(runes[to:])})
	}
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}
