// Package richtext is the in-memory document model for generated marketing
// content. A document is an ordered tree of block nodes (paragraphs,
// headings, lists, blockquotes, images, rules) with inline marks on text
// runs, addressed by a flattened integer position space: one unit per text
// rune, one per leaf block, and one for each side of a container boundary.
//
// Positions are invalidated by any structural mutation before them; a
// stored Range is advisory once the document has changed and must be
// re-resolved by the caller.
package richtext

import (
	"fmt"
	"strings"
)

// Range is an ordered pair of positions in the document.
type Range struct {
	From int
	To   int
}

// Empty reports whether the range selects nothing.
func (r Range) Empty() bool { return r.From == r.To }

// Document is the editable rich-text document. It is owned by a single
// editing session and mutated only through its own operations.
type Document struct {
	children []*Node
	caret    int
}

// New returns an empty document.
func New() *Document {
	return &Document{}
}

// Parse builds a document from an HTML fragment.
func Parse(markup string) (*Document, error) {
	nodes, err := ParseFragment(markup)
	if err != nil {
		return nil, err
	}
	return &Document{children: wrapStray(nodes)}, nil
}

// Len returns the total size of the position space.
func (d *Document) Len() int {
	return nodesSize(d.children)
}

// Caret returns the current caret position.
func (d *Document) Caret() int { return d.caret }

// HTML serializes the whole document.
func (d *Document) HTML() string {
	var b strings.Builder
	renderNodes(&b, d.children)
	return b.String()
}

// Serialize returns the markup for a range. Content entirely inside one
// textblock serializes as bare inline markup (no wrapping block tag);
// anything crossing a block boundary serializes partially-covered blocks
// as complete tags.
func (d *Document) Serialize(r Range) (string, error) {
	if err := d.checkRange(r); err != nil {
		return "", err
	}
	var b strings.Builder
	if host, start, ok := findInlineHost(d.children, r.From, r.To, 0); ok {
		renderNodes(&b, sliceNodes(host.Children, r.From, r.To, start+1))
	} else {
		renderNodes(&b, sliceNodes(d.children, r.From, r.To, 0))
	}
	return b.String(), nil
}

// TextContent returns the flattened plain text of the document, with a
// newline between textblocks.
func (d *Document) TextContent() string {
	return strings.Join(flattenText(d.children), "\n")
}

// TextBetween returns the plain text of a range, with a newline between
// textblocks.
func (d *Document) TextBetween(r Range) string {
	if d.checkRange(r) != nil {
		return ""
	}
	return strings.Join(flattenText(sliceNodes(d.children, r.From, r.To, 0)), "\n")
}

// NodesBetween calls fn for every node overlapping the range, in document
// order, passing the node's start position. Returning false skips the
// node's children.
func (d *Document) NodesBetween(from, to int, fn func(n *Node, pos int) bool) {
	nodesBetween(d.children, from, to, 0, fn)
}

// Replace deletes the range and inserts the parsed fragment in its place.
// The caret moves to the end of the inserted content.
func (d *Document) Replace(r Range, markup string) error {
	nodes, err := ParseFragment(markup)
	if err != nil {
		return err
	}
	return d.replaceNodes(r, nodes)
}

// ReplaceText replaces the range with a plain text run.
func (d *Document) ReplaceText(r Range, text string) error {
	return d.replaceNodes(r, []*Node{textRun(text, nil)})
}

// InsertAt inserts the parsed fragment at a position without deleting.
func (d *Document) InsertAt(pos int, markup string) error {
	return d.Replace(Range{From: pos, To: pos}, markup)
}

// SetContent replaces the whole document from markup. The caret is clamped
// to the new document length rather than reset, so a user's place in the
// document survives full-content syncs (streaming previews, HTML source
// edits).
func (d *Document) SetContent(markup string) error {
	nodes, err := ParseFragment(markup)
	if err != nil {
		return err
	}
	d.children = wrapStray(nodes)
	if n := d.Len(); d.caret > n {
		d.caret = n
	}
	return nil
}

func (d *Document) replaceNodes(r Range, repl []*Node) error {
	if err := d.checkRange(r); err != nil {
		return err
	}
	before := d.Len()
	if host, start, ok := findInlineHost(d.children, r.From, r.To, 0); ok && inlineable(repl) {
		host.Children = spliceInline(host.Children, r.From, r.To, start+1, unwrapInline(repl))
	} else {
		d.children = replaceBlocks(d.children, r, repl)
	}
	d.caret = r.From + (d.Len() - before + (r.To - r.From))
	return nil
}

func (d *Document) checkRange(r Range) error {
	if r.From < 0 || r.To > d.Len() || r.From > r.To {
		return fmt.Errorf("range [%d,%d] out of bounds (len %d)", r.From, r.To, d.Len())
	}
	return nil
}

func flattenText(nodes []*Node) []string {
	var parts []string
	var cur strings.Builder
	var walk func(ns []*Node)
	walk = func(ns []*Node) {
		for _, n := range ns {
			switch {
			case n.Kind == KindText:
				cur.WriteString(n.Text)
			case n.IsTextblock():
				walk(n.Children)
				parts = append(parts, cur.String())
				cur.Reset()
			case n.IsLeaf():
				// leaf blocks contribute no text
			default:
				walk(n.Children)
			}
		}
	}
	walk(nodes)
	if cur.Len() > 0 {
		parts = append(parts, cur.String())
	}
	return parts
}

func nodesBetween(nodes []*Node, from, to, base int, fn func(n *Node, pos int) bool) {
	pos := base
	for _, n := range nodes {
		if pos >= to {
			return
		}
		end := pos + n.Size()
		if end > from {
			if fn(n, pos) && len(n.Children) > 0 {
				nodesBetween(n.Children, from, to, pos+1, fn)
			}
		}
		pos = end
	}
}
