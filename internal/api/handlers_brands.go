package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dgallion1/contentforge/internal/parser"
	"github.com/dgallion1/contentforge/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) handleListBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := s.store.ListBrands(r.Context())
	if err != nil {
		s.log.Error("list brands", "error", err)
		jsonError(w, "failed to list brands", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"brands": brands})
}

func (s *Server) handleSaveBrand(w http.ResponseWriter, r *http.Request) {
	var b store.Brand
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if b.Name == "" {
		jsonError(w, "name is required", http.StatusBadRequest)
		return
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Slug == "" {
		b.Slug = slugify(b.Name)
	}
	if err := s.store.SaveBrand(r.Context(), &b); err != nil {
		s.log.Error("save brand", "brand_id", b.ID, "error", err)
		jsonError(w, "failed to save brand", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleGetBrand(w http.ResponseWriter, r *http.Request) {
	b, err := s.store.GetBrand(r.Context(), chi.URLParam(r, "brandID"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, "brand not found", http.StatusNotFound)
			return
		}
		jsonError(w, "failed to load brand", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleDeleteBrand(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteBrand(r.Context(), chi.URLParam(r, "brandID")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, "brand not found", http.StatusNotFound)
			return
		}
		jsonError(w, "failed to delete brand", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleScrapeBrand fetches a brand's website and distills a brand context
// summary from its structured data, products and navigation.
func (s *Server) handleScrapeBrand(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		jsonError(w, "url is required", http.StatusBadRequest)
		return
	}
	contextText, err := s.scraper.BrandContext(r.Context(), req.URL)
	if err != nil {
		s.log.Error("scrape brand", "url", req.URL, "error", err)
		jsonError(w, "failed to scrape website", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"brand_context": contextText})
}

// handleBrandDocument extracts text from an uploaded document (txt, pdf,
// docx) and appends it to the brand's context.
func (s *Server) handleBrandDocument(w http.ResponseWriter, r *http.Request) {
	brand, err := s.store.GetBrand(r.Context(), chi.URLParam(r, "brandID"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, "brand not found", http.StatusNotFound)
			return
		}
		jsonError(w, "failed to load brand", http.StatusInternalServerError)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		jsonError(w, "file too large or invalid multipart form", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	ext, err := parser.ForFile(filename)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if pdf, ok := ext.(*parser.PDFExtractor); ok {
		pdf.FallbackPdftotext = s.cfg.PDFFallbackPdftotext
	}
	text, err := ext.Extract(file)
	if err != nil {
		s.log.Error("extract document", "filename", filename, "error", err)
		jsonError(w, "failed to extract document text", http.StatusUnprocessableEntity)
		return
	}
	if strings.TrimSpace(text) == "" {
		jsonError(w, "document contains no extractable text", http.StatusUnprocessableEntity)
		return
	}

	if brand.BrandContext != "" {
		brand.BrandContext += "\n\n"
	}
	brand.BrandContext += text
	if err := s.store.SaveBrand(r.Context(), brand); err != nil {
		s.log.Error("save brand", "brand_id", brand.ID, "error", err)
		jsonError(w, "failed to save brand", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"brand_context": brand.BrandContext,
		"filename":      filename,
		"chars":         len(text),
	})
}

func slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
