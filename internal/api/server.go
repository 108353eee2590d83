package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/contentforge/internal/config"
	"github.com/dgallion1/contentforge/internal/editor"
	"github.com/dgallion1/contentforge/internal/genai"
	"github.com/dgallion1/contentforge/internal/scrape"
	"github.com/dgallion1/contentforge/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for contentforge.
type Server struct {
	router   chi.Router
	store    *store.Store
	ai       *genai.Service
	scraper  *scrape.Client
	sessions *editor.SessionStore
	log      *slog.Logger
	cfg      config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(st *store.Store, ai *genai.Service, scraper *scrape.Client, sessions *editor.SessionStore, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		store:    st,
		ai:       ai,
		scraper:  scraper,
		sessions: sessions,
		log:      log,
		cfg:      cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Get("/api/brands", s.handleListBrands)
		r.Post("/api/brands", s.handleSaveBrand)
		r.Get("/api/brands/{brandID}", s.handleGetBrand)
		r.Delete("/api/brands/{brandID}", s.handleDeleteBrand)
		r.Post("/api/brands/scrape", s.handleScrapeBrand)
		r.Post("/api/brands/{brandID}/document", s.handleBrandDocument)

		r.Get("/api/templates", s.handleListTemplates)
		r.Post("/api/templates", s.handleSaveTemplate)
		r.Get("/api/templates/{templateID}", s.handleGetTemplate)
		r.Delete("/api/templates/{templateID}", s.handleDeleteTemplate)
		r.Post("/api/templates/scrape", s.handleScrapeTemplate)

		r.Get("/api/keywords", s.handleListKeywords)
		r.Post("/api/keywords/import", s.handleImportKeywords)
		r.Delete("/api/keywords/{keywordID}", s.handleDeleteKeyword)

		r.Get("/api/projects", s.handleListProjects)
		r.Post("/api/projects", s.handleSaveProject)
		r.Get("/api/projects/{projectID}", s.handleGetProject)
		r.Delete("/api/projects/{projectID}", s.handleDeleteProject)
		r.Get("/api/projects/{projectID}/export", s.handleExportProject)

		r.Post("/api/ai/generate-content", s.handleGenerateContent)
		r.Post("/api/ai/generate-images", s.handleGenerateImages)
		r.Post("/api/ai/regenerate-image", s.handleRegenerateImage)
		r.Post("/api/ai/continue", s.handleContinueWriting)
		r.Post("/api/ai/translate", s.handleTranslate)
		r.Post("/api/ai/seo", s.handleGenerateSEO)
		r.Post("/api/ai/keywords", s.handleSuggestKeywords)

		r.Post("/api/sessions", s.handleOpenSession)
		r.Get("/api/sessions/{sessionID}/content", s.handleSessionContent)
		r.Post("/api/sessions/{sessionID}/content", s.handleSessionSetContent)
		r.Post("/api/sessions/{sessionID}/selection", s.handleSessionSelection)
		r.Post("/api/sessions/{sessionID}/edit", s.handleSessionEdit)
		r.Delete("/api/sessions/{sessionID}/panel", s.handleSessionClosePanel)
		r.Post("/api/sessions/{sessionID}/save", s.handleSessionSave)
		r.Delete("/api/sessions/{sessionID}", s.handleCloseSession)

		r.Get("/api/stats", s.handleStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
