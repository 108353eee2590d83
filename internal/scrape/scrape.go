// Package scrape builds brand context and content templates from live
// web pages.
package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Client fetches and extracts page data.
type Client struct {
	httpClient *http.Client
}

func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	return resp.Body, nil
}

// BrandContext fetches a brand's website and condenses it into a short
// context blurb for generation prompts.
func (c *Client) BrandContext(ctx context.Context, url string) (string, error) {
	body, err := c.fetch(ctx, url)
	if err != nil {
		return "", err
	}
	defer body.Close()
	return ExtractBrandContext(io.LimitReader(body, 5<<20))
}

const maxContextChars = 2000

// ExtractBrandContext reads a page and assembles brand context from its
// structured data, meta tags, product listings, and navigation. The
// result is capped; prompts do not need the whole site.
func ExtractBrandContext(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var parts []string
	add := func(s string) {
		if s != "" {
			parts = append(parts, s)
		}
	}

	for _, line := range jsonLDLines(doc) {
		add(line)
	}

	siteName := metaContent(doc, "property", "og:site_name")
	if siteName != "" && !containsAny(parts, siteName) {
		add("Brand: " + siteName)
	}
	if len(parts) == 0 {
		if title := pageTitle(doc); title != "" {
			add("Page: " + title)
		}
	}
	metaDesc := metaContent(doc, "name", "description")
	if metaDesc == "" {
		metaDesc = metaContent(doc, "property", "og:description")
	}
	if metaDesc != "" {
		add("About: " + headChars(metaDesc, 300))
	}

	if products := productNames(doc); len(products) > 0 {
		add("Products: " + strings.Join(products, ", "))
	}
	if categories := navCategories(doc); len(categories) > 0 {
		add("Categories: " + strings.Join(categories, ", "))
	}

	// Thin pages: fall back to the first meaningful paragraphs.
	if len(parts) < 3 {
		for _, p := range leadParagraphs(doc, 3) {
			add(headChars(p, 200))
		}
	}

	return headChars(strings.Join(parts, "\n"), maxContextChars), nil
}

// jsonLDLines pulls Organization, WebSite, and Product entries out of
// ld+json script blocks, including @graph arrays (Yoast, Shopify).
func jsonLDLines(doc *html.Node) []string {
	var lines []string

	handle := func(item map[string]any) {
		typ, _ := item["@type"].(string)
		name, _ := item["name"].(string)
		desc, _ := item["description"].(string)
		switch typ {
		case "Organization", "WebSite":
			if name != "" {
				lines = append(lines, "Brand: "+name)
			}
			if desc != "" {
				lines = append(lines, "Description: "+desc)
			}
		case "Product", "ProductGroup":
			if name != "" || desc != "" {
				line := "Product: " + name
				if desc != "" {
					line += " - " + headChars(desc, 150)
				}
				lines = append(lines, line)
			}
		}
	}

	walk(doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.Data != "script" || attrVal(n, "type") != "application/ld+json" {
			return true
		}
		raw := textContent(n)
		var payload any
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			return true // skip invalid JSON-LD
		}
		items, ok := payload.([]any)
		if !ok {
			items = []any{payload}
		}
		for _, it := range items {
			item, ok := it.(map[string]any)
			if !ok {
				continue
			}
			handle(item)
			if graph, ok := item["@graph"].([]any); ok {
				for _, g := range graph {
					if node, ok := g.(map[string]any); ok {
						handle(node)
					}
				}
			}
		}
		return true
	})
	return lines
}

// productClasses are class names e-commerce themes put on product titles.
var productClasses = []string{
	"product-title", "product-name", "product__title", "product-card__title",
	"woocommerce-loop-product__title", "product-tile__name",
}

// productContainers hold product headings without a title class.
var productContainers = []string{"product-card", "product-item"}

func productNames(doc *html.Node) []string {
	var names []string
	seen := make(map[string]bool)
	collect := func(n *html.Node) {
		name := strings.TrimSpace(textContent(n))
		if name == "" || len(name) >= 100 || seen[name] {
			return
		}
		seen[name] = true
		names = append(names, name)
	}

	walk(doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		if hasAnyClass(n, productClasses) || attrVal(n, "data-product-title") != "" {
			collect(n)
			return false
		}
		if (n.Data == "h2" || n.Data == "h3") && hasAncestorClass(n, productContainers) {
			collect(n)
			return false
		}
		return true
	})
	if len(names) > 15 {
		names = names[:15]
	}
	return names
}

// skipNavLabels are navigation entries that say nothing about the brand.
var skipNavLabels = map[string]bool{
	"Home": true, "About": true, "Contact": true, "Cart": true,
	"Login": true, "Sign in": true, "Blog": true,
}

func navCategories(doc *html.Node) []string {
	var categories []string
	seen := make(map[string]bool)

	walk(doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.Data != "a" {
			return true
		}
		if !hasAncestorTag(n, "nav") && !hasAncestorClass(n, []string{"nav", "menu", "categories"}) {
			return true
		}
		text := strings.TrimSpace(textContent(n))
		if len(text) <= 2 || len(text) >= 40 || seen[text] || skipNavLabels[text] {
			return true
		}
		seen[text] = true
		categories = append(categories, text)
		return false
	})
	if len(categories) > 10 {
		categories = categories[:10]
	}
	return categories
}

func leadParagraphs(doc *html.Node, limit int) []string {
	var out []string
	walk(doc, func(n *html.Node) bool {
		if len(out) >= limit {
			return false
		}
		if n.Type == html.ElementNode && n.Data == "p" {
			text := strings.TrimSpace(textContent(n))
			if len(text) > 50 {
				out = append(out, text)
			}
			return false
		}
		return true
	})
	return out
}

// ==================== tree helpers ====================

// walk visits nodes depth-first; fn returning false skips the subtree.
func walk(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func attrVal(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		return true
	})
	return sb.String()
}

func hasAnyClass(n *html.Node, names []string) bool {
	for _, cls := range strings.Fields(attrVal(n, "class")) {
		for _, want := range names {
			if cls == want {
				return true
			}
		}
	}
	return false
}

func hasAncestorClass(n *html.Node, names []string) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && hasAnyClass(p, names) {
			return true
		}
	}
	return false
}

func hasAncestorTag(n *html.Node, tag string) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.Data == tag {
			return true
		}
	}
	return false
}

func metaContent(doc *html.Node, attrKey, attrValue string) string {
	var content string
	walk(doc, func(n *html.Node) bool {
		if content != "" {
			return false
		}
		if n.Type == html.ElementNode && n.Data == "meta" && attrVal(n, attrKey) == attrValue {
			content = attrVal(n, "content")
			return false
		}
		return true
	})
	return content
}

func pageTitle(doc *html.Node) string {
	var title string
	walk(doc, func(n *html.Node) bool {
		if title != "" {
			return false
		}
		if n.Type == html.ElementNode && n.Data == "title" {
			title = strings.TrimSpace(textContent(n))
			return false
		}
		return true
	})
	return title
}

func containsAny(parts []string, sub string) bool {
	for _, p := range parts {
		if strings.Contains(p, sub) {
			return true
		}
	}
	return false
}

func headChars(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
