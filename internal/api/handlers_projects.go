package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dgallion1/contentforge/internal/export"
	"github.com/dgallion1/contentforge/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	projects, err := s.store.ListProjects(r.Context(), q.Get("status"), q.Get("brand_id"))
	if err != nil {
		s.log.Error("list projects", "error", err)
		jsonError(w, "failed to list projects", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

func (s *Server) handleSaveProject(w http.ResponseWriter, r *http.Request) {
	var p store.Project
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if p.Title == "" {
		jsonError(w, "title is required", http.StatusBadRequest)
		return
	}
	if p.Type != store.ProjectTypeBlog && p.Type != store.ProjectTypePresell {
		jsonError(w, "type must be blog or presell", http.StatusBadRequest)
		return
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = store.StatusDraft
	}
	if p.Language == "" {
		p.Language = s.cfg.DefaultLanguage
	}
	if err := s.store.SaveProject(r.Context(), &p); err != nil {
		s.log.Error("save project", "project_id", p.ID, "error", err)
		jsonError(w, "failed to save project", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.GetProject(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, "project not found", http.StatusNotFound)
			return
		}
		jsonError(w, "failed to load project", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteProject(r.Context(), chi.URLParam(r, "projectID")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, "project not found", http.StatusNotFound)
			return
		}
		jsonError(w, "failed to delete project", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleExportProject downloads a project as a standalone HTML page or as
// Markdown. lang selects a translated version when one exists; the default
// is the project's own language.
func (s *Server) handleExportProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.GetProject(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, "project not found", http.StatusNotFound)
			return
		}
		jsonError(w, "failed to load project", http.StatusInternalServerError)
		return
	}

	q := r.URL.Query()
	lang := q.Get("lang")
	content := p.ContentHTML
	if lang != "" && lang != p.Language {
		translated, ok := p.TranslatedVersions[lang]
		if !ok {
			jsonError(w, "no translation for language "+lang, http.StatusNotFound)
			return
		}
		content = translated
	} else {
		lang = p.Language
	}
	if content == "" {
		jsonError(w, "project has no content", http.StatusUnprocessableEntity)
		return
	}
	content = export.CleanHTML(content)

	format := q.Get("format")
	if format == "" {
		format = "html"
	}
	switch format {
	case "html":
		page := export.StandaloneHTML(p.Title, p.SEODescription, content)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(p.Title, lang, "html")))
		w.Write([]byte(page))
	case "markdown":
		md, err := export.Markdown(content)
		if err != nil {
			s.log.Error("markdown export", "project_id", p.ID, "error", err)
			jsonError(w, "failed to convert to markdown", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(p.Title, lang, "md")))
		w.Write([]byte(md))
	default:
		jsonError(w, "format must be html or markdown", http.StatusBadRequest)
	}
}
