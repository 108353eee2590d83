package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dgallion1/contentforge/internal/editor"
	"github.com/dgallion1/contentforge/internal/genai"
	"github.com/dgallion1/contentforge/internal/richtext"
	"github.com/dgallion1/contentforge/internal/store"
	"github.com/google/uuid"
)

func newID() string { return uuid.NewString() }

// flushWriter pushes each written chunk to the client immediately.
type flushWriter struct {
	w http.ResponseWriter
}

func (f flushWriter) Write(p []byte) (int, error) {
	n, err := f.w.Write(p)
	if fl, ok := f.w.(http.Flusher); ok {
		fl.Flush()
	}
	return n, err
}

// saveContext survives the client disconnecting so partial results are
// still persisted.
func saveContext(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

// handleGenerateContent streams generated HTML to the client chunk by
// chunk while the same stream feeds the project document. The project is
// marked incomplete when the stream dies mid-way so the partial content
// survives for a later continue.
func (s *Server) handleGenerateContent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProjectID    string   `json:"project_id"`
		Type         string   `json:"type"`
		Title        string   `json:"title"`
		BrandID      string   `json:"brand_id"`
		TemplateID   string   `json:"template_id"`
		Topic        string   `json:"topic"`
		Keywords     []string `json:"keywords"`
		Language     string   `json:"language"`
		CustomPrompt string   `json:"custom_prompt"`
		ImageCount   int      `json:"image_count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	project, err := s.loadOrCreateProject(r, req.ProjectID, req.Type, req.Title, req.BrandID, req.TemplateID, req.Topic, req.Keywords, req.Language, req.CustomPrompt)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	params := genai.GenerationParams{
		Title:        project.Title,
		Topic:        project.Topic,
		Keywords:     project.Keywords,
		Language:     project.Language,
		CustomPrompt: project.AIPrompt,
		ImageCount:   req.ImageCount,
	}
	if params.ImageCount <= 0 {
		params.ImageCount = s.cfg.DefaultImageCount
	}
	if project.BrandID != "" {
		brand, err := s.store.GetBrand(r.Context(), project.BrandID)
		if err == nil {
			params.BrandName = brand.Name
			params.BrandContext = brand.BrandContext
		}
	}
	if project.TemplateID != "" {
		tmpl, err := s.store.GetTemplate(r.Context(), project.TemplateID)
		if err == nil {
			params.TemplateHTML = tmpl.HTMLStructure
		}
	}

	stream, err := s.ai.GenerateContent(r.Context(), project.Type, params)
	if err != nil {
		s.log.Error("generate content", "project_id", project.ID, "error", err)
		jsonError(w, "failed to start generation", http.StatusBadGateway)
		return
	}
	defer stream.Close()

	project.Status = store.StatusGenerating
	if err := s.store.SaveProject(r.Context(), project); err != nil {
		s.log.Error("save project", "project_id", project.ID, "error", err)
		jsonError(w, "failed to save project", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Accel-Buffering", "no")
	w.Header().Set("X-Project-ID", project.ID)
	w.WriteHeader(http.StatusOK)

	// Tee each chunk to the client while the assembler keeps a parsed
	// document in sync for progressive preview.
	asm := editor.NewDocumentAssembler(richtext.New())
	raw, streamErr := asm.Consume(r.Context(), io.TeeReader(stream, flushWriter{w}))

	project.ContentHTML = genai.Normalize(raw)
	project.Status = store.StatusEditing
	project.Incomplete = streamErr != nil
	if streamErr != nil {
		s.log.Error("generation stream interrupted", "project_id", project.ID, "error", streamErr)
	}
	// The client may be gone; persist with a fresh context.
	if err := s.store.SaveProject(saveContext(r), project); err != nil {
		s.log.Error("save project", "project_id", project.ID, "error", err)
	}
}

func (s *Server) loadOrCreateProject(r *http.Request, id, typ, title, brandID, templateID, topic string, keywords []string, language, customPrompt string) (*store.Project, error) {
	if id != "" {
		p, err := s.store.GetProject(r.Context(), id)
		if err != nil {
			return nil, errors.New("project not found")
		}
		return p, nil
	}
	if title == "" {
		return nil, errors.New("title is required")
	}
	if typ != store.ProjectTypeBlog && typ != store.ProjectTypePresell {
		return nil, errors.New("type must be blog or presell")
	}
	if language == "" {
		language = s.cfg.DefaultLanguage
	}
	return &store.Project{
		ID:         newID(),
		Type:       typ,
		Title:      title,
		Status:     store.StatusDraft,
		Language:   language,
		Topic:      topic,
		Keywords:   keywords,
		BrandID:    brandID,
		TemplateID: templateID,
		AIPrompt:   customPrompt,
	}, nil
}

// handleGenerateImages fills the document's image placeholders with
// generated images, leaving failed placeholders in place.
func (s *Server) handleGenerateImages(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProjectID string `json:"project_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProjectID == "" {
		jsonError(w, "project_id is required", http.StatusBadRequest)
		return
	}
	project, err := s.store.GetProject(r.Context(), req.ProjectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, "project not found", http.StatusNotFound)
			return
		}
		jsonError(w, "failed to load project", http.StatusInternalServerError)
		return
	}
	if project.ContentHTML == "" {
		jsonError(w, "project has no content", http.StatusUnprocessableEntity)
		return
	}

	brandName, imageStyle := s.brandLookup(r, project.BrandID)
	filled, count := s.ai.FillImages(r.Context(), project.ContentHTML, brandName, imageStyle)
	project.ContentHTML = filled
	if err := s.store.SaveProject(r.Context(), project); err != nil {
		s.log.Error("save project", "project_id", project.ID, "error", err)
		jsonError(w, "failed to save project", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"content_html": project.ContentHTML,
		"filled":       count,
	})
}

func (s *Server) handleRegenerateImage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt      string `json:"prompt"`
		OriginalAlt string `json:"original_alt"`
		ImageStyle  string `json:"image_style"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Prompt == "" {
		jsonError(w, "prompt is required", http.StatusBadRequest)
		return
	}
	result, err := s.ai.RegenerateImage(r.Context(), editor.ImageRequest{
		Prompt:      req.Prompt,
		OriginalAlt: req.OriginalAlt,
		ImageStyle:  req.ImageStyle,
	})
	if err != nil {
		s.log.Error("regenerate image", "error", err)
		jsonError(w, "failed to generate image", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"src": result.Src, "alt": result.Alt})
}

// handleContinueWriting resumes an interrupted generation from the tail of
// the stored content.
func (s *Server) handleContinueWriting(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProjectID string `json:"project_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProjectID == "" {
		jsonError(w, "project_id is required", http.StatusBadRequest)
		return
	}
	project, err := s.store.GetProject(r.Context(), req.ProjectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, "project not found", http.StatusNotFound)
			return
		}
		jsonError(w, "failed to load project", http.StatusInternalServerError)
		return
	}
	if project.ContentHTML == "" {
		jsonError(w, "project has no content to continue", http.StatusUnprocessableEntity)
		return
	}

	brandName, _ := s.brandLookup(r, project.BrandID)
	continuation, err := s.ai.ContinueWriting(r.Context(), project.ContentHTML, project.Type, brandName)
	if err != nil {
		s.log.Error("continue writing", "project_id", project.ID, "error", err)
		jsonError(w, "failed to continue generation", http.StatusBadGateway)
		return
	}

	project.ContentHTML += continuation
	project.Incomplete = false
	project.Status = store.StatusEditing
	if err := s.store.SaveProject(r.Context(), project); err != nil {
		s.log.Error("save project", "project_id", project.ID, "error", err)
		jsonError(w, "failed to save project", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"content_html": project.ContentHTML})
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProjectID      string `json:"project_id"`
		TargetLanguage string `json:"target_language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProjectID == "" || req.TargetLanguage == "" {
		jsonError(w, "project_id and target_language are required", http.StatusBadRequest)
		return
	}
	project, err := s.store.GetProject(r.Context(), req.ProjectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, "project not found", http.StatusNotFound)
			return
		}
		jsonError(w, "failed to load project", http.StatusInternalServerError)
		return
	}
	if project.ContentHTML == "" {
		jsonError(w, "project has no content", http.StatusUnprocessableEntity)
		return
	}

	var brandNames []string
	if name, _ := s.brandLookup(r, project.BrandID); name != "" {
		brandNames = append(brandNames, name)
	}
	translated, err := s.ai.Translate(r.Context(), project.ContentHTML, project.Language, req.TargetLanguage, brandNames)
	if err != nil {
		s.log.Error("translate", "project_id", project.ID, "target", req.TargetLanguage, "error", err)
		jsonError(w, "failed to translate", http.StatusBadGateway)
		return
	}

	if project.TranslatedVersions == nil {
		project.TranslatedVersions = make(map[string]string)
	}
	project.TranslatedVersions[req.TargetLanguage] = translated
	project.Status = store.StatusTranslated
	if err := s.store.SaveProject(r.Context(), project); err != nil {
		s.log.Error("save project", "project_id", project.ID, "error", err)
		jsonError(w, "failed to save project", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"language":     req.TargetLanguage,
		"content_html": translated,
	})
}

func (s *Server) handleGenerateSEO(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProjectID string `json:"project_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProjectID == "" {
		jsonError(w, "project_id is required", http.StatusBadRequest)
		return
	}
	project, err := s.store.GetProject(r.Context(), req.ProjectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, "project not found", http.StatusNotFound)
			return
		}
		jsonError(w, "failed to load project", http.StatusInternalServerError)
		return
	}
	if project.ContentHTML == "" {
		jsonError(w, "project has no content", http.StatusUnprocessableEntity)
		return
	}

	brandName, _ := s.brandLookup(r, project.BrandID)
	meta, err := s.ai.GenerateSEO(r.Context(), project.ContentHTML, project.Title, project.Keywords, project.Language, brandName)
	if err != nil {
		s.log.Error("generate seo", "project_id", project.ID, "error", err)
		jsonError(w, "failed to generate seo metadata", http.StatusBadGateway)
		return
	}

	project.SEOTitle = meta.Title
	project.SEODescription = meta.Description
	if err := s.store.SaveProject(r.Context(), project); err != nil {
		s.log.Error("save project", "project_id", project.ID, "error", err)
		jsonError(w, "failed to save project", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

func (s *Server) handleSuggestKeywords(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BrandID    string `json:"brand_id"`
		Country    string `json:"country"`
		Language   string `json:"language"`
		Categories string `json:"categories"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.BrandID == "" {
		jsonError(w, "brand_id is required", http.StatusBadRequest)
		return
	}
	brand, err := s.store.GetBrand(r.Context(), req.BrandID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, "brand not found", http.StatusNotFound)
			return
		}
		jsonError(w, "failed to load brand", http.StatusInternalServerError)
		return
	}
	country := req.Country
	if country == "" {
		country = s.cfg.DefaultCountry
	}
	language := req.Language
	if language == "" {
		language = s.cfg.DefaultLanguage
	}

	ideas, err := s.ai.SuggestKeywords(r.Context(), brand.Name, brand.BrandContext, country, language, req.Categories)
	if err != nil {
		s.log.Error("suggest keywords", "brand_id", brand.ID, "error", err)
		jsonError(w, "failed to suggest keywords", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": ideas})
}

func (s *Server) brandLookup(r *http.Request, brandID string) (name, imageStyle string) {
	if brandID == "" {
		return "", ""
	}
	brand, err := s.store.GetBrand(r.Context(), brandID)
	if err != nil {
		return "", ""
	}
	return brand.Name, brand.ImageStyle
}
