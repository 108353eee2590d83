package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanHTML(t *testing.T) {
	in := `<p class="editor-block" data-node-id="3" contenteditable="true">Text <strong data-mark="b">bold</strong></p>`
	assert.Equal(t, "<p>Text <strong>bold</strong></p>", CleanHTML(in))
}

func TestCleanHTMLKeepsPlainMarkup(t *testing.T) {
	in := `<h1>Title</h1><p>Body with <a href="https://example.com">link</a>.</p>`
	assert.Equal(t, in, CleanHTML(in))
}

func TestStandaloneHTML(t *testing.T) {
	got := StandaloneHTML("Best Pillows & Blankets", `Sleep "better" tonight`, `<p data-x="1">Hi</p>`)

	assert.True(t, strings.HasPrefix(got, "<!DOCTYPE html>"))
	assert.Contains(t, got, "<title>Best Pillows &amp; Blankets</title>")
	assert.Contains(t, got, `content="Sleep &#34;better&#34; tonight"`)
	assert.Contains(t, got, "<p>Hi</p>")
	assert.Contains(t, got, "</html>")
}

func TestStandaloneHTMLNoDescription(t *testing.T) {
	got := StandaloneHTML("T", "", "<p>x</p>")
	assert.NotContains(t, got, `name="description"`)
}

func TestMarkdown(t *testing.T) {
	md, err := Markdown(`<h1>Title</h1><p>Some <strong>bold</strong> and <em>italic</em> text.</p><ul><li>one</li><li>two</li></ul>`)
	require.NoError(t, err)

	assert.Contains(t, md, "# Title")
	assert.Contains(t, md, "**bold**")
	assert.Contains(t, md, "*italic*")
	assert.Contains(t, md, "- one")
	assert.True(t, strings.HasSuffix(md, "\n"))
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "best-weighted-blankets-da.html", Filename("Best Weighted Blankets!", "da", "html"))
	assert.Equal(t, "export.md", Filename("???", "", "md"))
}
