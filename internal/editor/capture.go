// Package editor implements the AI-assisted selective-rewrite subsystem:
// selection capture, the visual highlight overlay, the inline command
// panel, the splice-back engine, and the streaming content assembler.
// Everything operates on a richtext.Document owned by an editing Session.
package editor

import (
	"strings"

	"github.com/dgallion1/contentforge/internal/richtext"
)

// contextWindow bounds the plain-text context captured on each side of a
// selection, in runes.
const contextWindow = 200

// ImageAttrs are the attributes of a selected image node.
type ImageAttrs struct {
	Src string
	Alt string
}

// SelectionSnapshot is an immutable capture of a selection at a point in
// time. It is created once per trigger, consumed by at most one panel
// submission, and never mutated.
type SelectionSnapshot struct {
	Range         richtext.Range
	IsImage       bool
	Image         *ImageAttrs
	SelectedHTML  string
	SelectedText  string
	ContextBefore string
	ContextAfter  string
}

// Capture snapshots a selection. Empty ranges are rejected. The first
// image node found in the range wins; a range containing any image is
// flagged IsImage regardless of surrounding text.
func Capture(doc *richtext.Document, r richtext.Range) (*SelectionSnapshot, bool) {
	if r.Empty() {
		return nil, false
	}
	markup, err := doc.Serialize(r)
	if err != nil {
		return nil, false
	}

	snap := &SelectionSnapshot{
		Range:        r,
		SelectedHTML: markup,
		SelectedText: doc.TextBetween(r),
	}

	doc.NodesBetween(r.From, r.To, func(n *richtext.Node, pos int) bool {
		if n.Kind == richtext.KindImage && !snap.IsImage {
			snap.IsImage = true
			snap.Image = &ImageAttrs{Src: n.Src, Alt: n.Alt}
		}
		return true
	})

	// Context windows come from locating the selected text inside the
	// flattened document text. When the text is not found verbatim the
	// windows stay empty rather than failing the capture.
	if snap.SelectedText != "" {
		full := doc.TextContent()
		if idx := strings.Index(full, snap.SelectedText); idx >= 0 {
			snap.ContextBefore = tailRunes(full[:idx], contextWindow)
			snap.ContextAfter = headRunes(full[idx+len(snap.SelectedText):], contextWindow)
		}
	}
	return snap, true
}

func tailRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}

func headRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
