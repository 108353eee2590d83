// Package export renders finished project content for publishing:
// cleaned fragments, standalone HTML documents, and Markdown.
package export

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
)

var (
	dataAttrRe        = regexp.MustCompile(`\s*data-\w+(?:-\w+)*="[^"]*"`)
	classAttrRe       = regexp.MustCompile(`\s*class="[^"]*"`)
	contentEditableRe = regexp.MustCompile(`\s*contenteditable="[^"]*"`)
)

// CleanHTML strips editor-specific attributes from content markup so the
// exported fragment is plain publishable HTML.
func CleanHTML(markup string) string {
	markup = dataAttrRe.ReplaceAllString(markup, "")
	markup = classAttrRe.ReplaceAllString(markup, "")
	markup = contentEditableRe.ReplaceAllString(markup, "")
	return strings.TrimSpace(markup)
}

const pageCSS = `body{max-width:720px;margin:0 auto;padding:2rem 1rem;font-family:Georgia,serif;line-height:1.6;color:#1a1a1a}
img{max-width:100%;height:auto}
blockquote{border-left:3px solid #ccc;margin-left:0;padding-left:1rem;color:#555}`

// StandaloneHTML wraps cleaned content in a complete HTML document with
// title, meta description, and minimal styling.
func StandaloneHTML(title, metaDescription, contentHTML string) string {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	sb.WriteString("<meta charset=\"utf-8\">\n")
	sb.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	sb.WriteString("<title>" + html.EscapeString(title) + "</title>\n")
	if metaDescription != "" {
		sb.WriteString("<meta name=\"description\" content=\"" + html.EscapeString(metaDescription) + "\">\n")
	}
	sb.WriteString("<style>" + pageCSS + "</style>\n")
	sb.WriteString("</head>\n<body>\n")
	sb.WriteString(CleanHTML(contentHTML))
	sb.WriteString("\n</body>\n</html>\n")
	return sb.String()
}

var mdConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
	),
)

// Markdown converts cleaned content markup to Markdown.
func Markdown(contentHTML string) (string, error) {
	md, err := mdConverter.ConvertString(CleanHTML(contentHTML))
	if err != nil {
		return "", fmt.Errorf("convert to markdown: %w", err)
	}
	return strings.TrimSpace(md) + "\n", nil
}

var unsafeFilenameRe = regexp.MustCompile(`[^a-z0-9-]+`)

// Filename builds a download filename from a project title and language.
func Filename(title, lang, ext string) string {
	name := strings.ToLower(strings.TrimSpace(title))
	name = unsafeFilenameRe.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-")
	if name == "" {
		name = "export"
	}
	if lang != "" {
		name += "-" + lang
	}
	return name + "." + ext
}
