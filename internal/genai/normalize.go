package genai

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

var codeBlockRe = regexp.MustCompile("(?s)^```(?:html|json)?\\s*(.*?)\\s*```$")

func stripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

var markdownHintRe = regexp.MustCompile(`(?m)^#{1,3} |^\* |^- |^\d+\. |\*\*[^*]+\*\*`)

// looksLikeMarkdown reports whether a payload that should have been HTML
// came back as markdown instead.
func looksLikeMarkdown(s string) bool {
	if strings.HasPrefix(strings.TrimSpace(s), "<") {
		return false
	}
	return markdownHintRe.MatchString(s)
}

// contentPolicy keeps generated and scraped markup inside the editor's
// element set. Data URIs pass so generated images survive sanitization.
func contentPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "h1", "h2", "h3", "ul", "ol", "li", "strong", "em", "blockquote", "hr", "br")
	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs("src", "alt", "data-ai-generate", "data-section").OnElements("img")
	p.AllowStandardURLs()
	p.AllowURLSchemes("http", "https", "data")
	p.AllowDataURIImages()
	return p
}

var sanitizer = contentPolicy()

// Normalize turns a model response into clean editor markup: code fences
// stripped, markdown converted when the model ignored the HTML rules, and
// the result sanitized to the allowed element set.
func Normalize(s string) string {
	s = stripCodeBlock(s)
	if looksLikeMarkdown(s) {
		var buf bytes.Buffer
		if err := goldmark.Convert([]byte(s), &buf); err == nil {
			s = buf.String()
		}
	}
	return strings.TrimSpace(sanitizer.Sanitize(s))
}

// Sanitize applies the content policy without fence stripping or markdown
// conversion, for markup that arrived as HTML (scraped templates).
func Sanitize(s string) string {
	return strings.TrimSpace(sanitizer.Sanitize(s))
}
