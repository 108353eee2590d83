package genai

import (
	"fmt"
	"regexp"
	"strings"
)

// Prompt is a system+user message pair for a completion call.
type Prompt struct {
	System string
	User   string
}

// LanguageName maps a supported language code to its English name for use
// in prompts. Unknown codes fall back to English.
func LanguageName(code string) string {
	switch code {
	case "sk":
		return "Slovak"
	case "cs":
		return "Czech"
	case "da":
		return "Danish"
	case "hu":
		return "Hungarian"
	default:
		return "English"
	}
}

const htmlRules = `
---
HTML OUTPUT RULES (non-negotiable):
- Output ONLY clean HTML. No markdown, no code fences, no explanations.
- NEVER use **asterisks** for bold, use <strong> tags. NEVER use *asterisks* for italic, use <em> tags.
- Use ONLY these HTML elements: h1, h2, h3, p, ul, ol, li, strong, em, a, blockquote, hr, img.
- Do NOT use div, table, span, iframe, or inline style attributes. They will be stripped by the editor.
- For tips/info boxes, use <blockquote>. For data comparisons, use <ul> or <ol>.`

func imageRule(count int) string {
	return fmt.Sprintf(`- Include exactly %d image placeholders as: <img data-ai-generate="true" data-section="description of what image should show" alt="descriptive alt text" />`, count)
}

// GenerationParams feeds the blog and presell generation prompts.
type GenerationParams struct {
	Title        string
	BrandName    string
	BrandContext string
	TemplateHTML string
	Topic        string
	Keywords     []string
	Language     string
	CustomPrompt string
	ImageCount   int
}

func buildUserMessage(p GenerationParams, contentType string) string {
	var parts []string
	if p.Title != "" {
		parts = append(parts, "Title: "+p.Title)
	}
	parts = append(parts, "Topic: "+p.Topic)
	parts = append(parts, "Keywords: "+strings.Join(p.Keywords, ", "))
	parts = append(parts, "Language: "+LanguageName(p.Language))
	parts = append(parts, "Brand: "+p.BrandName)
	if p.BrandContext != "" {
		parts = append(parts, "Brand context: "+p.BrandContext)
	}
	if p.TemplateHTML != "" {
		parts = append(parts, fmt.Sprintf("\nHTML template structure:\n<template>\n%s\n</template>", p.TemplateHTML))
	}
	parts = append(parts, fmt.Sprintf("\nWrite the complete %s now as clean HTML.", contentType))
	return strings.Join(parts, "\n")
}

// BlogPrompt builds the blog-post generation prompt.
func BlogPrompt(p GenerationParams) Prompt {
	if p.CustomPrompt != "" {
		return Prompt{
			System: p.CustomPrompt + "\n" + htmlRules + "\n" + imageRule(p.ImageCount),
			User:   buildUserMessage(p, "blog post"),
		}
	}
	return Prompt{
		System: fmt.Sprintf(`You are an expert SEO content writer for %s. You write engaging, well-researched blog posts that rank well in search engines while providing genuine value to readers.

Rules:
- Write naturally, weaving keywords in organically. Never keyword-stuff.
- Place image placeholders at logical positions between sections
- Target word count: 1200-2000 words
- Write in %s
%s
%s`, p.BrandName, LanguageName(p.Language), htmlRules, imageRule(p.ImageCount)),
		User: buildUserMessage(p, "blog post"),
	}
}

// PresellPrompt builds the presell/advertorial generation prompt.
func PresellPrompt(p GenerationParams) Prompt {
	if p.CustomPrompt != "" {
		return Prompt{
			System: p.CustomPrompt + "\n" + htmlRules + "\n" + imageRule(p.ImageCount),
			User:   buildUserMessage(p, "presell page"),
		}
	}
	return Prompt{
		System: fmt.Sprintf(`You are an expert conversion copywriter for %s. You write persuasive advertorial/presell pages that convert readers into customers while feeling authentic and trustworthy.

Rules:
- Use a listicle format with numbered reasons (like "7 reasons why...")
- Structure: Hook headline, numbered reasons with emotional hooks, product showcase, urgency/scarcity, CTA
- Write as if from a real person sharing their genuine experience (first person)
- Include social proof elements (statistics, testimonial-style content)
- Make it persuasive but authentic, not overly salesy
- Target word count: 800-1500 words
- Write in %s
%s
%s`, p.BrandName, LanguageName(p.Language), htmlRules, imageRule(p.ImageCount)),
		User: buildUserMessage(p, "presell page"),
	}
}

// EditSelectionPrompt builds the selective-rewrite prompt. The structure
// rules matter: spliced output must keep the selection's exact tags or it
// corrupts the surrounding document.
func EditSelectionPrompt(selectedHTML, instruction, contextBefore, contextAfter, brandName string) Prompt {
	forBrand := ""
	if brandName != "" {
		forBrand = " for " + brandName
	}
	return Prompt{
		System: fmt.Sprintf(`You are editing a specific section of HTML content%s.

CRITICAL RULES:
- Rewrite ONLY the selected HTML according to the instruction
- You MUST preserve the EXACT same HTML tag structure. If the input is <li> elements, output <li> elements. If it's <p> tags, output <p> tags. Do NOT change the wrapping tags.
- Do NOT add new wrapping tags (e.g. don't wrap <li> items in a new <ul>)
- Do NOT remove structural tags
- Output ONLY the rewritten HTML fragment, nothing else, no explanations, no markdown code fences`, forBrand),
		User: fmt.Sprintf(`Selected HTML to edit:
%s

Instruction: %s

Context before (for reference only, do NOT include in output):
%s

Context after (for reference only, do NOT include in output):
%s`, selectedHTML, instruction, contextBefore, contextAfter),
	}
}

// ContinuePrompt builds the continue-writing prompt from the tail of the
// current content.
func ContinuePrompt(lastContent, projectType, brandName string) Prompt {
	forBrand := ""
	if brandName != "" {
		forBrand = " for " + brandName
	}
	return Prompt{
		System: fmt.Sprintf(`You are continuing to write a %s%s.
Continue naturally from where the content left off.
Write 2-3 paragraphs of clean HTML.
Match the existing tone and style.
Output ONLY HTML, no explanations.`, projectType, forBrand),
		User: "Here is the end of the current content. Continue writing from here:\n\n" + lastContent,
	}
}

// TranslationPrompt builds the whole-document translation prompt. Brand
// names are pinned so the model does not localize them.
func TranslationPrompt(contentHTML, sourceLang, targetLang string, brandNames []string) Prompt {
	quoted := make([]string, len(brandNames))
	for i, n := range brandNames {
		quoted[i] = `"` + n + `"`
	}
	brandList := strings.Join(quoted, ", ")
	if brandList == "" {
		brandList = "(none)"
	}
	return Prompt{
		System: fmt.Sprintf(`You are a professional translator specializing in marketing and e-commerce content.
Translate content from %s to %s.

Rules:
- Preserve ALL HTML tags, attributes, structure, and formatting exactly as-is
- Translate ONLY the visible text content between tags
- Maintain SEO-friendly, natural phrasing in %s
- Brand names %s must NOT be translated
- Product names should remain in their original form unless there's a well-known local equivalent
- Maintain the tone and persuasive style of the original
- Output ONLY the translated HTML, nothing else`,
			LanguageName(sourceLang), LanguageName(targetLang), LanguageName(targetLang), brandList),
		User: contentHTML,
	}
}

// KeywordSuggestionsPrompt asks for keyword ideas as a JSON array.
func KeywordSuggestionsPrompt(brand, brandContext, country, language, categories string) Prompt {
	catLine := ""
	if categories != "" {
		catLine = "Product categories: " + categories + "\n"
	}
	return Prompt{
		System: fmt.Sprintf(`You are an SEO keyword research expert specializing in the %s market.
You understand search intent and know what keywords drive traffic for e-commerce brands.`, country),
		User: fmt.Sprintf(`Suggest 20 keyword ideas for the %s brand.

Brand context: %s
%sTarget market: %s
Language: %s

For each keyword, provide:
- The keyword in %s
- Estimated monthly search volume (be realistic)
- Search intent: informational (blog-worthy), commercial (comparison/review), or transactional (buy-intent)
- Brief reasoning for why this keyword is valuable

Output as a JSON array:
[{"keyword": "...", "estimated_volume": number, "intent": "informational|commercial|transactional", "reasoning": "..."}]

Output ONLY the JSON array, no explanations or code fences.`,
			brand, brandContext, catLine, country, LanguageName(language), LanguageName(language)),
	}
}

var tagRe = regexp.MustCompile(`<[^>]+>`)
var spaceRe = regexp.MustCompile(`\s+`)

// SEOMetadataPrompt asks for an SEO title and meta description as JSON.
// Content is flattened to text and capped so the prompt stays small.
func SEOMetadataPrompt(contentHTML, title string, keywords []string, language, brandName string) Prompt {
	text := tagRe.ReplaceAllString(contentHTML, " ")
	text = strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
	if len(text) > 1500 {
		text = text[:1500]
	}
	brandLine := ""
	if brandName != "" {
		brandLine = "Brand: " + brandName + "\n"
	}
	return Prompt{
		System: fmt.Sprintf(`You are an SEO specialist. Generate optimized SEO title and meta description for web content.

Rules:
- SEO Title: Max 60 characters. Include the primary keyword near the beginning. Make it compelling and click-worthy.
- SEO Description: 140-155 characters. Summarize the content value proposition. Include 1-2 keywords naturally. End with a call-to-action or benefit.
- Write in %s
- Output ONLY valid JSON: {"seo_title": "...", "seo_description": "..."}
- No markdown, no code fences, no explanations.`, LanguageName(language)),
		User: fmt.Sprintf(`Generate SEO title and meta description for this content:

Title: %s
Target keywords: %s
%s
Content (first 1500 chars):
%s

Output as JSON: {"seo_title": "...", "seo_description": "..."}`,
			title, strings.Join(keywords, ", "), brandLine, text),
	}
}

// RegenerateImagePrompt builds the prompt for replacing one existing
// image from a user instruction.
func RegenerateImagePrompt(instruction, originalAlt, style string) string {
	if style == "" {
		style = "Modern, bright, warm lighting, clean background"
	}
	desc := ""
	if originalAlt != "" {
		desc = "\nThe image it replaces showed: " + originalAlt
	}
	return fmt.Sprintf(`Create a professional, clean product/lifestyle photo.

Scene: %s%s

Style: %s. Commercial product photography feel.
High quality, realistic. No text or watermarks in the image.`, instruction, desc, style)
}

// ImagePrompt builds the prompt for one content image. Style describes
// the brand's visual direction ("warm lifestyle", "minimal studio").
func ImagePrompt(section, alt, brandName, style string) string {
	if style == "" {
		style = "Modern, bright, warm lighting, clean background"
	}
	return fmt.Sprintf(`Create a professional, clean product/lifestyle photo for %s.

Scene: %s
Description: %s

Style: %s. Commercial product photography feel.
High quality, realistic. No text or watermarks in the image.`, brandName, section, alt, style)
}
