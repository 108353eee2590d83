package richtext

import "unicode/utf8"

// Kind identifies the variant of a Node.
type Kind uint8

const (
	KindText Kind = iota
	KindParagraph
	KindHeading
	KindBulletList
	KindOrderedList
	KindListItem
	KindBlockquote
	KindImage
	KindRule
)

// MarkType identifies an inline mark on a text run.
type MarkType uint8

const (
	MarkBold MarkType = iota
	MarkItalic
	MarkLink
)

// Mark is an inline annotation applied to a text run.
type Mark struct {
	Type MarkType
	Href string // links only
}

// Node is one node in the document tree. Exactly one variant is active,
// selected by Kind: text runs carry Text and Marks, images carry Src/Alt
// (or the generation placeholder pair), container blocks carry Children.
type Node struct {
	Kind  Kind
	Level int // headings: 1-3

	Text  string
	Marks []Mark

	Src string
	Alt string
	// Image placeholders awaiting generation keep their marker attributes
	// so they round-trip through serialization.
	Generate bool
	Section  string

	Children []*Node
}

// Size returns the node's width in the document's flattened position space:
// one unit per text rune, one per leaf block, and an open/close unit for
// each container boundary.
func (n *Node) Size() int {
	switch n.Kind {
	case KindText:
		return utf8.RuneCountInString(n.Text)
	case KindImage, KindRule:
		return 1
	default:
		return 2 + nodesSize(n.Children)
	}
}

func nodesSize(nodes []*Node) int {
	total := 0
	for _, n := range nodes {
		total += n.Size()
	}
	return total
}

// IsTextblock reports whether the node holds inline content directly.
func (n *Node) IsTextblock() bool {
	switch n.Kind {
	case KindParagraph, KindHeading, KindListItem:
		return true
	}
	return false
}

// IsLeaf reports whether the node has no content position space of its own.
func (n *Node) IsLeaf() bool {
	return n.Kind == KindImage || n.Kind == KindRule
}

// Clone returns a deep copy.
func (n *Node) Clone() *Node {
	cp := n.shallowClone()
	if len(n.Children) > 0 {
		cp.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			cp.Children[i] = c.Clone()
		}
	}
	return cp
}

func (n *Node) shallowClone() *Node {
	cp := *n
	cp.Children = nil
	if len(n.Marks) > 0 {
		cp.Marks = append([]Mark(nil), n.Marks...)
	}
	return &cp
}

func textRun(text string, marks []Mark) *Node {
	return &Node{Kind: KindText, Text: text, Marks: marks}
}
