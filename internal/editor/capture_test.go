package editor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/contentforge/internal/richtext"
)

func mustDoc(t *testing.T, markup string) *richtext.Document {
	t.Helper()
	doc, err := richtext.Parse(markup)
	require.NoError(t, err)
	return doc
}

func TestCaptureMatchesSerialize(t *testing.T) {
	doc := mustDoc(t, "<p>Our shipping is very fast and reliable.</p>")
	r := richtext.Range{From: 17, To: 26}

	snap, ok := Capture(doc, r)
	require.True(t, ok)

	want, err := doc.Serialize(r)
	require.NoError(t, err)
	assert.Equal(t, want, snap.SelectedHTML)
	assert.Equal(t, "very fast", snap.SelectedText)
	assert.False(t, snap.IsImage)
}

func TestCaptureRejectsEmptyRange(t *testing.T) {
	doc := mustDoc(t, "<p>text</p>")
	_, ok := Capture(doc, richtext.Range{From: 2, To: 2})
	assert.False(t, ok)
}

func TestCaptureContextWindows(t *testing.T) {
	doc := mustDoc(t, "<p>before text TARGET after text</p>")
	// "TARGET" at text offset 12 -> positions [13,19).
	snap, ok := Capture(doc, richtext.Range{From: 13, To: 19})
	require.True(t, ok)
	assert.Equal(t, "before text ", snap.ContextBefore)
	assert.Equal(t, " after text", snap.ContextAfter)
}

func TestCaptureContextWindowCap(t *testing.T) {
	long := strings.Repeat("x", 500)
	doc := mustDoc(t, "<p>"+long+"MID"+long+"</p>")
	from := 1 + 500
	snap, ok := Capture(doc, richtext.Range{From: from, To: from + 3})
	require.True(t, ok)
	assert.Equal(t, "MID", snap.SelectedText)
	assert.Len(t, snap.ContextBefore, contextWindow)
	assert.Len(t, snap.ContextAfter, contextWindow)
}

func TestCaptureImageRange(t *testing.T) {
	doc := mustDoc(t, `<p>before</p><img src="a.png" alt="A"><p>after</p>`)
	// Image node occupies [8,9).
	snap, ok := Capture(doc, richtext.Range{From: 8, To: 9})
	require.True(t, ok)
	assert.True(t, snap.IsImage)
	require.NotNil(t, snap.Image)
	assert.Equal(t, "a.png", snap.Image.Src)
	assert.Equal(t, "A", snap.Image.Alt)
	// An image selection has no text, so context windows stay empty.
	assert.Empty(t, snap.SelectedText)
	assert.Empty(t, snap.ContextBefore)
	assert.Empty(t, snap.ContextAfter)
}

func TestCaptureNoImage(t *testing.T) {
	doc := mustDoc(t, "<p>no images here</p>")
	snap, ok := Capture(doc, richtext.Range{From: 1, To: 5})
	require.True(t, ok)
	assert.False(t, snap.IsImage)
	assert.Nil(t, snap.Image)
}

func TestCaptureFirstImageWins(t *testing.T) {
	doc := mustDoc(t, `<img src="one.png" alt="first"><img src="two.png" alt="second">`)
	snap, ok := Capture(doc, richtext.Range{From: 0, To: 2})
	require.True(t, ok)
	assert.True(t, snap.IsImage)
	assert.Equal(t, "one.png", snap.Image.Src)
	assert.Equal(t, "first", snap.Image.Alt)
}

func TestCaptureMixedRangeStillFlagsImage(t *testing.T) {
	doc := mustDoc(t, `<p>intro</p><img src="a.png" alt="A"><p>outro</p>`)
	snap, ok := Capture(doc, richtext.Range{From: 0, To: doc.Len()})
	require.True(t, ok)
	assert.True(t, snap.IsImage)
	assert.Equal(t, "intro\noutro", snap.SelectedText)
}
