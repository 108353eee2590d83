package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dgallion1/contentforge/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := s.store.ListTemplates(r.Context(), r.URL.Query().Get("type"))
	if err != nil {
		s.log.Error("list templates", "error", err)
		jsonError(w, "failed to list templates", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": templates})
}

func (s *Server) handleSaveTemplate(w http.ResponseWriter, r *http.Request) {
	var t store.Template
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if t.Name == "" || t.HTMLStructure == "" {
		jsonError(w, "name and html_structure are required", http.StatusBadRequest)
		return
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.SourceType == "" {
		t.SourceType = "manual"
	}
	if err := s.store.SaveTemplate(r.Context(), &t); err != nil {
		s.log.Error("save template", "template_id", t.ID, "error", err)
		jsonError(w, "failed to save template", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := s.store.GetTemplate(r.Context(), chi.URLParam(r, "templateID"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, "template not found", http.StatusNotFound)
			return
		}
		jsonError(w, "failed to load template", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteTemplate(r.Context(), chi.URLParam(r, "templateID")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, "template not found", http.StatusNotFound)
			return
		}
		jsonError(w, "failed to delete template", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleScrapeTemplate extracts the cleaned main-content structure of a
// page and stores it as a reusable layout template.
func (s *Server) handleScrapeTemplate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL  string `json:"url"`
		Name string `json:"name"`
		Type string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		jsonError(w, "url is required", http.StatusBadRequest)
		return
	}
	structure, err := s.scraper.Template(r.Context(), req.URL)
	if err != nil {
		s.log.Error("scrape template", "url", req.URL, "error", err)
		jsonError(w, "failed to scrape page", http.StatusBadGateway)
		return
	}
	if structure == "" {
		jsonError(w, "no content structure found on page", http.StatusUnprocessableEntity)
		return
	}

	name := req.Name
	if name == "" {
		name = req.URL
	}
	t := store.Template{
		ID:            uuid.NewString(),
		Name:          name,
		Type:          req.Type,
		SourceType:    "scraped",
		SourceURL:     req.URL,
		HTMLStructure: structure,
	}
	if err := s.store.SaveTemplate(r.Context(), &t); err != nil {
		s.log.Error("save template", "template_id", t.ID, "error", err)
		jsonError(w, "failed to save template", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, t)
}
