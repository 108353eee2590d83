package scrape

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// Template fetches a page and reduces it to a reusable content skeleton.
func (c *Client) Template(ctx context.Context, url string) (string, error) {
	body, err := c.fetch(ctx, url)
	if err != nil {
		return "", err
	}
	defer body.Close()
	return ExtractTemplate(io.LimitReader(body, 5<<20))
}

// junkTags never belong in a content template.
var junkTags = map[string]bool{
	"script": true, "style": true, "nav": true, "footer": true,
	"header": true, "iframe": true, "noscript": true, "svg": true, "form": true,
}

var junkRoles = map[string]bool{
	"navigation": true, "banner": true, "contentinfo": true,
}

// contentClasses mark the main content area on common blog themes.
var contentClasses = []string{
	"post-content", "entry-content", "article-content", "blog-content", "content",
}

// templatePolicy reduces scraped markup to the editor's element set.
var templatePolicy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "h1", "h2", "h3", "h4", "ul", "ol", "li", "strong", "em", "blockquote", "hr", "br", "img")
	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs("src", "alt").OnElements("img")
	p.AllowStandardURLs()
	return p
}()

// ExtractTemplate reads a page, drops chrome and scripts, locates the
// main content area, and returns its structure reduced to the allowed
// element set.
func ExtractTemplate(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	pruneJunk(doc)

	content := findContent(doc)
	if content == nil {
		content = findTag(doc, "body")
	}
	if content == nil {
		return "", fmt.Errorf("no content found")
	}

	var buf bytes.Buffer
	for c := content.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", fmt.Errorf("render content: %w", err)
		}
	}
	return strings.TrimSpace(templatePolicy.Sanitize(buf.String())), nil
}

func pruneJunk(n *html.Node) {
	var next *html.Node
	for c := n.FirstChild; c != nil; c = next {
		next = c.NextSibling
		if c.Type == html.ElementNode && (junkTags[c.Data] || junkRoles[attrVal(c, "role")]) {
			n.RemoveChild(c)
			continue
		}
		pruneJunk(c)
	}
}

func findContent(doc *html.Node) *html.Node {
	if n := findTag(doc, "main"); n != nil {
		return n
	}
	if n := findTag(doc, "article"); n != nil {
		return n
	}
	var found *html.Node
	walk(doc, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if n.Type != html.ElementNode {
			return true
		}
		if attrVal(n, "role") == "main" || attrVal(n, "id") == "content" || hasAnyClass(n, contentClasses) {
			found = n
			return false
		}
		return true
	})
	return found
}

func findTag(doc *html.Node, tag string) *html.Node {
	var found *html.Node
	walk(doc, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if n.Type == html.ElementNode && n.Data == tag {
			found = n
			return false
		}
		return true
	})
	return found
}
