package richtext

// findInlineHost locates the deepest textblock whose content strictly
// contains [from,to] with both cut points landing in text runs or on run
// boundaries. Returns the host node, its start position, and whether one
// was found.
func findInlineHost(nodes []*Node, from, to, base int) (*Node, int, bool) {
	pos := base
	for _, n := range nodes {
		end := pos + n.Size()
		if from >= pos && to <= end {
			if n.Kind == KindText || n.IsLeaf() {
				return nil, 0, false
			}
			if from < pos+1 || to > end-1 {
				return nil, 0, false
			}
			if h, s, ok := findInlineHost(n.Children, from, to, pos+1); ok {
				return h, s, ok
			}
			if n.IsTextblock() && cutsOnlyText(n, pos, from, to) {
				return n, pos, true
			}
			return nil, 0, false
		}
		pos = end
	}
	return nil, 0, false
}

// cutsOnlyText verifies neither cut point falls strictly inside a non-text
// child of the block starting at blockPos.
func cutsOnlyText(block *Node, blockPos, from, to int) bool {
	pos := blockPos + 1
	for _, c := range block.Children {
		end := pos + c.Size()
		if c.Kind != KindText {
			if (from > pos && from < end) || (to > pos && to < end) {
				return false
			}
		}
		pos = end
	}
	return true
}

// inlineable reports whether a parsed fragment can be spliced into a
// textblock's inline content: either all top-level nodes are inline, or
// the fragment is a single textblock whose children are used directly.
func inlineable(nodes []*Node) bool {
	if len(nodes) == 1 && nodes[0].IsTextblock() {
		return true
	}
	for _, n := range nodes {
		if n.Kind != KindText && n.Kind != KindImage {
			return false
		}
	}
	return true
}

func unwrapInline(nodes []*Node) []*Node {
	if len(nodes) == 1 && nodes[0].IsTextblock() {
		return nodes[0].Children
	}
	return nodes
}

// spliceInline replaces [from,to] inside a textblock's children (whose
// content starts at base) with the given inline nodes.
func spliceInline(children []*Node, from, to, base int, repl []*Node) []*Node {
	innerLen := nodesSize(children)
	prefix := sliceNodes(children, base, from, base)
	suffix := sliceNodes(children, to, base+innerLen, base)
	out := make([]*Node, 0, len(prefix)+len(repl)+len(suffix))
	out = append(out, prefix...)
	out = append(out, repl...)
	out = append(out, suffix...)
	return out
}

// sliceNodes copies the portion of a forest covered by [from,to].
// Partially-covered text runs are trimmed; partially-covered containers
// are closed into complete nodes around their covered children.
func sliceNodes(nodes []*Node, from, to, base int) []*Node {
	var out []*Node
	pos := base
	for _, n := range nodes {
		end := pos + n.Size()
		if end <= from || pos >= to {
			pos = end
			continue
		}
		switch {
		case pos >= from && end <= to:
			out = append(out, n.Clone())
		case n.Kind == KindText:
			r := []rune(n.Text)
			s := max(from-pos, 0)
			e := min(to-pos, len(r))
			if e > s {
				out = append(out, textRun(string(r[s:e]), n.Marks))
			}
		case n.IsLeaf():
			out = append(out, n.Clone())
		default:
			cp := n.shallowClone()
			cp.Children = sliceNodes(n.Children, from, to, pos+1)
			out = append(out, cp)
		}
		pos = end
	}
	return out
}

// replaceBlocks performs a block-level range replacement: the forest is
// split at both ends, the middle is dropped, and the (block-wrapped)
// replacement goes between. A pure-inline replacement joins the adjacent
// split textblocks back into one.
func replaceBlocks(nodes []*Node, r Range, repl []*Node) []*Node {
	left, _ := splitForest(nodes, r.From, 0)
	_, right := splitForest(nodes, r.To, 0)

	if len(repl) > 0 && allInline(repl) &&
		len(left) > 0 && left[len(left)-1].IsTextblock() &&
		len(right) > 0 && right[0].IsTextblock() {
		host := left[len(left)-1]
		host.Children = append(host.Children, repl...)
		host.Children = append(host.Children, right[0].Children...)
		return append(left, right[1:]...)
	}

	out := joinBlocks(left, wrapStray(repl))
	return joinBlocks(out, right)
}

// joinBlocks concatenates two block forests, merging a list split across
// the seam back into a single list of the same kind.
func joinBlocks(a, b []*Node) []*Node {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	tail, head := a[len(a)-1], b[0]
	if tail.Kind == head.Kind && (tail.Kind == KindBulletList || tail.Kind == KindOrderedList) {
		tail.Children = append(tail.Children, head.Children...)
		return append(a, b[1:]...)
	}
	return append(a, b...)
}

func allInline(nodes []*Node) bool {
	for _, n := range nodes {
		if n.Kind != KindText {
			return false
		}
	}
	return true
}

// splitForest splits a forest at pos. Containers cut mid-content appear on
// both sides holding their respective halves; a half left empty by the cut
// is dropped.
func splitForest(nodes []*Node, pos, base int) (left, right []*Node) {
	p := base
	for _, n := range nodes {
		end := p + n.Size()
		switch {
		case end <= pos:
			left = append(left, n.Clone())
		case p >= pos:
			right = append(right, n.Clone())
		case n.Kind == KindText:
			r := []rune(n.Text)
			cut := pos - p
			if cut > 0 {
				left = append(left, textRun(string(r[:cut]), n.Marks))
			}
			if cut < len(r) {
				right = append(right, textRun(string(r[cut:]), n.Marks))
			}
		case n.IsLeaf():
			left = append(left, n.Clone())
		default:
			lc, rc := splitForest(n.Children, pos, p+1)
			if len(lc) > 0 {
				ln := n.shallowClone()
				ln.Children = lc
				left = append(left, ln)
			}
			if len(rc) > 0 {
				rn := n.shallowClone()
				rn.Children = rc
				right = append(right, rn)
			}
		}
		p = end
	}
	return left, right
}
