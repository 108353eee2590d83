package editor

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/contentforge/internal/richtext"
)

// chunkReader yields each chunk from exactly one Read call, like a network
// stream delivering token batches.
type chunkReader struct {
	chunks []string
	err    error // returned after the last chunk instead of io.EOF
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(c.chunks) == 0 {
		if c.err != nil {
			return 0, c.err
		}
		return 0, io.EOF
	}
	n := copy(p, c.chunks[0])
	c.chunks[0] = c.chunks[0][n:] // leftover stays queued
	if c.chunks[0] == "" {
		c.chunks = c.chunks[1:]
	}
	return n, nil
}

func TestAssemblerAppliesEachChunk(t *testing.T) {
	var states []string
	a := NewAssembler(func(markup string) error {
		states = append(states, markup)
		return nil
	})

	final, err := a.Consume(context.Background(), &chunkReader{chunks: []string{"<p>A", "BC</p>"}})
	require.NoError(t, err)
	assert.Equal(t, "<p>ABC</p>", final)
	assert.Equal(t, []string{"<p>A", "<p>ABC</p>"}, states)
}

func TestAssemblerPartialParsePreview(t *testing.T) {
	doc := richtext.New()
	a := NewDocumentAssembler(doc)

	r := &chunkReader{chunks: []string{"<p>A"}}
	// Consume only the first chunk's worth by reading the whole (single
	// chunk) stream: the intermediate preview is a tolerant partial parse.
	_, err := a.Consume(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, "<p>A</p>", doc.HTML())
}

func TestAssemblerFinalDocument(t *testing.T) {
	doc := richtext.New()
	a := NewDocumentAssembler(doc)

	_, err := a.Consume(context.Background(), &chunkReader{chunks: []string{"<p>A", "BC</p>"}})
	require.NoError(t, err)
	assert.Equal(t, "<p>ABC</p>", doc.HTML())
}

func TestAssemblerKeepsPartialOnStreamError(t *testing.T) {
	doc := richtext.New()
	a := NewDocumentAssembler(doc)

	streamErr := errors.New("connection reset")
	got, err := a.Consume(context.Background(), &chunkReader{
		chunks: []string{"<p>kept content"},
		err:    streamErr,
	})
	assert.ErrorIs(t, err, streamErr)
	assert.Equal(t, "<p>kept content", got)
	assert.Equal(t, "<p>kept content</p>", doc.HTML(), "partial content is kept")
}

func TestAssemblerStopsOnCancel(t *testing.T) {
	doc := richtext.New()
	a := NewDocumentAssembler(doc)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := a.Consume(ctx, &chunkReader{chunks: []string{"<p>never applied</p>"}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "", doc.HTML())
}

func TestFindPlaceholders(t *testing.T) {
	markup := `<h1>Title</h1>` +
		`<img data-ai-generate="true" data-section="hero shot" alt="a cozy bedroom" />` +
		`<p>body</p>` +
		`<img data-ai-generate="true" data-section="product close-up" alt="pillow detail" />`

	phs := FindPlaceholders(markup)
	require.Len(t, phs, 2)
	assert.Equal(t, "hero shot", phs[0].Section)
	assert.Equal(t, "a cozy bedroom", phs[0].Alt)
	assert.Equal(t, "product close-up", phs[1].Section)

	// Only the exact marker shape matches.
	assert.Empty(t, FindPlaceholders(`<img src="x.png" alt="plain image">`))
}

func TestFillPlaceholdersPartialFailure(t *testing.T) {
	markup := `<img data-ai-generate="true" data-section="one" alt="first" />` +
		`<img data-ai-generate="true" data-section="two" alt="second" />`

	filled, n := FillPlaceholders(context.Background(), markup, func(ctx context.Context, ph Placeholder) (string, string, error) {
		if ph.Section == "two" {
			return "", "", errors.New("image generation failed")
		}
		return "data:image/png;base64,abc", "", nil
	})

	assert.Equal(t, 1, n)
	assert.Contains(t, filled, `<img src="data:image/png;base64,abc" alt="first">`)
	// The failed placeholder is left untouched for a later retry.
	assert.Contains(t, filled, `<img data-ai-generate="true" data-section="two" alt="second" />`)
}

func TestFillPlaceholdersNoPlaceholders(t *testing.T) {
	markup := "<p>nothing to fill</p>"
	filled, n := FillPlaceholders(context.Background(), markup, func(ctx context.Context, ph Placeholder) (string, string, error) {
		t.Fatal("fill must not be called")
		return "", "", nil
	})
	assert.Equal(t, 0, n)
	assert.Equal(t, markup, filled)
}

func TestSessionAssembleSyncsView(t *testing.T) {
	s := newTestSession(t, "", &fakeTextEditor{}, nil)
	_, err := s.Assemble(context.Background(), &chunkReader{chunks: []string{"<h1>Gen", "erated</h1>"}})
	require.NoError(t, err)
	assert.Equal(t, "<h1>Generated</h1>", s.Content())
	assert.Contains(t, s.ViewHTML(), "Generated")
}
