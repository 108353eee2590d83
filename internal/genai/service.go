// Package genai holds the generation-service clients and the prompt set:
// whole-document content generation (streamed), selective rewrites,
// translation, SEO metadata, keyword research, and image generation.
package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/dgallion1/contentforge/internal/editor"
)

// Service is the generation facade the rest of the application talks to.
// It implements the editor's TextEditor and ImageEditor capabilities.
type Service struct {
	text  *TextClient
	image *ImageClient
}

func NewService(text *TextClient, image *ImageClient) *Service {
	return &Service{text: text, image: image}
}

// GenerateContent streams a whole blog post or presell page. The returned
// reader yields raw markup chunks for the streaming assembler; the caller
// must Close it.
func (s *Service) GenerateContent(ctx context.Context, projectType string, p GenerationParams) (io.ReadCloser, error) {
	var prompt Prompt
	switch projectType {
	case "presell":
		prompt = PresellPrompt(p)
	default:
		prompt = BlogPrompt(p)
	}
	return s.text.Stream(ctx, prompt)
}

// EditSelection rewrites a captured selection per the instruction. The
// result is normalized before it goes anywhere near the document.
func (s *Service) EditSelection(ctx context.Context, req editor.EditRequest) (string, error) {
	prompt := EditSelectionPrompt(req.SelectedHTML, req.Instruction, req.ContextBefore, req.ContextAfter, req.BrandName)
	out, err := withRetry(ctx, func() (string, error) {
		return s.text.Complete(ctx, prompt)
	})
	if err != nil {
		return "", fmt.Errorf("edit selection: %w", err)
	}
	out = Normalize(out)
	if out == "" {
		return "", fmt.Errorf("edit selection: empty rewrite")
	}
	return out, nil
}

// RegenerateImage renders a replacement image from the user's prompt.
func (s *Service) RegenerateImage(ctx context.Context, req editor.ImageRequest) (editor.ImageResult, error) {
	prompt := RegenerateImagePrompt(req.Prompt, req.OriginalAlt, req.ImageStyle)
	src, err := s.image.Generate(ctx, prompt)
	if err != nil {
		return editor.ImageResult{}, fmt.Errorf("regenerate image: %w", err)
	}
	return editor.ImageResult{Src: src, Alt: req.OriginalAlt}, nil
}

// FillImages resolves every placeholder in assembled markup with a
// generated image. Returns the filled markup and how many resolved.
func (s *Service) FillImages(ctx context.Context, markup, brandName, style string) (string, int) {
	return editor.FillPlaceholders(ctx, markup, func(ctx context.Context, ph editor.Placeholder) (string, string, error) {
		src, err := s.image.Generate(ctx, ImagePrompt(ph.Section, ph.Alt, brandName, style))
		if err != nil {
			return "", "", err
		}
		return src, ph.Alt, nil
	})
}

// ContinueWriting extends the document from its current tail.
func (s *Service) ContinueWriting(ctx context.Context, lastContent, projectType, brandName string) (string, error) {
	out, err := withRetry(ctx, func() (string, error) {
		return s.text.Complete(ctx, ContinuePrompt(lastContent, projectType, brandName))
	})
	if err != nil {
		return "", fmt.Errorf("continue writing: %w", err)
	}
	return Normalize(out), nil
}

// Translate translates whole-document markup between languages.
func (s *Service) Translate(ctx context.Context, contentHTML, sourceLang, targetLang string, brandNames []string) (string, error) {
	out, err := withRetry(ctx, func() (string, error) {
		return s.text.Complete(ctx, TranslationPrompt(contentHTML, sourceLang, targetLang, brandNames))
	})
	if err != nil {
		return "", fmt.Errorf("translate: %w", err)
	}
	return Normalize(out), nil
}

// SEOMetadata is a generated title/description pair.
type SEOMetadata struct {
	Title       string `json:"seo_title"`
	Description string `json:"seo_description"`
}

// GenerateSEO produces SEO metadata for finished content.
func (s *Service) GenerateSEO(ctx context.Context, contentHTML, title string, keywords []string, language, brandName string) (SEOMetadata, error) {
	out, err := withRetry(ctx, func() (string, error) {
		return s.text.Complete(ctx, SEOMetadataPrompt(contentHTML, title, keywords, language, brandName))
	})
	if err != nil {
		return SEOMetadata{}, fmt.Errorf("seo metadata: %w", err)
	}
	var meta SEOMetadata
	if err := json.Unmarshal([]byte(stripCodeBlock(out)), &meta); err != nil {
		return SEOMetadata{}, fmt.Errorf("parse seo json: %w (raw: %s)", err, truncate(out, 200))
	}
	return meta, nil
}

// KeywordIdea is one suggested keyword with research metadata.
type KeywordIdea struct {
	Keyword         string `json:"keyword"`
	EstimatedVolume int    `json:"estimated_volume"`
	Intent          string `json:"intent"`
	Reasoning       string `json:"reasoning"`
}

// SuggestKeywords asks for keyword ideas for a brand and market.
func (s *Service) SuggestKeywords(ctx context.Context, brand, brandContext, country, language, categories string) ([]KeywordIdea, error) {
	out, err := withRetry(ctx, func() (string, error) {
		return s.text.Complete(ctx, KeywordSuggestionsPrompt(brand, brandContext, country, language, categories))
	})
	if err != nil {
		return nil, fmt.Errorf("keyword suggestions: %w", err)
	}
	var ideas []KeywordIdea
	if err := json.Unmarshal([]byte(stripCodeBlock(out)), &ideas); err != nil {
		return nil, fmt.Errorf("parse keywords json: %w (raw: %s)", err, truncate(out, 200))
	}
	return ideas, nil
}

// Close releases both clients.
func (s *Service) Close() {
	s.text.Close()
	s.image.Close()
}
