package api

import (
	"errors"
	"net/http"

	"github.com/dgallion1/contentforge/internal/parser"
	"github.com/dgallion1/contentforge/internal/store"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListKeywords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	keywords, err := s.store.ListKeywords(r.Context(), q.Get("brand"), q.Get("country"))
	if err != nil {
		s.log.Error("list keywords", "error", err)
		jsonError(w, "failed to list keywords", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"keywords": keywords})
}

// handleImportKeywords ingests a keyword research CSV export. The brand is
// taken from the form so one upload covers one brand.
func (s *Server) handleImportKeywords(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		jsonError(w, "file too large or invalid multipart form", http.StatusBadRequest)
		return
	}
	brand := r.FormValue("brand")
	if brand == "" {
		jsonError(w, "brand is required", http.StatusBadRequest)
		return
	}
	country := r.FormValue("country")
	if country == "" {
		country = s.cfg.DefaultCountry
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	keywords, err := parser.ParseKeywordCSV(file, brand, country)
	if err != nil {
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if err := s.store.SaveKeywords(r.Context(), keywords); err != nil {
		s.log.Error("save keywords", "brand", brand, "error", err)
		jsonError(w, "failed to save keywords", http.StatusInternalServerError)
		return
	}

	s.log.Info("keywords imported", "brand", brand, "count", len(keywords), "filename", sanitizeFilename(header.Filename))
	writeJSON(w, http.StatusOK, map[string]any{
		"imported": len(keywords),
		"brand":    brand,
		"country":  country,
	})
}

func (s *Server) handleDeleteKeyword(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteKeyword(r.Context(), chi.URLParam(r, "keywordID")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, "keyword not found", http.StatusNotFound)
			return
		}
		jsonError(w, "failed to delete keyword", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
