package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/contentforge/internal/config"
	"github.com/dgallion1/contentforge/internal/editor"
	"github.com/dgallion1/contentforge/internal/genai"
	"github.com/dgallion1/contentforge/internal/scrape"
	"github.com/dgallion1/contentforge/internal/store"
)

func newTestServer(t *testing.T, textHandler, imageHandler http.HandlerFunc) *Server {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	if textHandler == nil {
		textHandler = func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotImplemented)
		}
	}
	if imageHandler == nil {
		imageHandler = func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotImplemented)
		}
	}
	textSrv := httptest.NewServer(textHandler)
	t.Cleanup(textSrv.Close)
	imageSrv := httptest.NewServer(imageHandler)
	t.Cleanup(imageSrv.Close)

	ai := genai.NewService(
		genai.NewTextClient("k", textSrv.URL, "gpt-4o"),
		genai.NewImageClient("k", imageSrv.URL, "img-model"),
	)
	t.Cleanup(ai.Close)

	cfg := config.Config{
		APIKey:            "test-key",
		MaxUploadBytes:    4 << 20,
		DefaultImageCount: 2,
		DefaultLanguage:   "sk",
		DefaultCountry:    "sk",
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := editor.NewSessionStore(time.Hour)

	return NewServer(st, ai, scrape.NewClient(), sessions, log, cfg)
}

func doJSON(srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Authorization", "Bearer test-key")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(w.Body).Decode(v))
}

// completionBackend answers every chat completion with the given content.
func completionBackend(content string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}
}

// streamBackend answers with an SSE stream of the given chunks.
func streamBackend(chunks ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, c := range chunks {
			payload, _ := json.Marshal(map[string]any{
				"choices": []map[string]any{
					{"delta": map[string]any{"content": c}},
				},
			})
			fmt.Fprintf(w, "data: %s\n\n", payload)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}
}

func TestHealthIsPublic(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestAuthRequired(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/brands", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/brands", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBrandLifecycle(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	w := doJSON(srv, http.MethodPost, "/api/brands", map[string]string{
		"name":        "Acme Widgets",
		"website_url": "https://acme.example",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var brand store.Brand
	decodeBody(t, w, &brand)
	assert.NotEmpty(t, brand.ID)
	assert.Equal(t, "acme-widgets", brand.Slug)

	w = doJSON(srv, http.MethodGet, "/api/brands/"+brand.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(srv, http.MethodGet, "/api/brands", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Brands []store.Brand `json:"brands"`
	}
	decodeBody(t, w, &list)
	require.Len(t, list.Brands, 1)

	w = doJSON(srv, http.MethodDelete, "/api/brands/"+brand.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(srv, http.MethodGet, "/api/brands/"+brand.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSaveBrandRequiresName(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	w := doJSON(srv, http.MethodPost, "/api/brands", map[string]string{"slug": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScrapeBrand(t *testing.T) {
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>Acme</title>
			<script type="application/ld+json">{"@type":"Organization","name":"Acme","description":"Widgets for everyone"}</script>
			</head><body></body></html>`)
	}))
	defer site.Close()

	srv := newTestServer(t, nil, nil)

	w := doJSON(srv, http.MethodPost, "/api/brands/scrape", map[string]string{"url": site.URL})
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	decodeBody(t, w, &resp)
	assert.Contains(t, resp["brand_context"], "Brand: Acme")
	assert.Contains(t, resp["brand_context"], "Widgets for everyone")
}

func TestScrapeTemplate(t *testing.T) {
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><header>menu</header><main><h1>Title</h1><p>Body text</p></main></body></html>`)
	}))
	defer site.Close()

	srv := newTestServer(t, nil, nil)

	w := doJSON(srv, http.MethodPost, "/api/templates/scrape", map[string]string{
		"url":  site.URL,
		"name": "Landing",
		"type": "blog",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var tmpl store.Template
	decodeBody(t, w, &tmpl)
	assert.Equal(t, "scraped", tmpl.SourceType)
	assert.Contains(t, tmpl.HTMLStructure, "<h1>Title</h1>")
	assert.NotContains(t, tmpl.HTMLStructure, "menu")

	w = doJSON(srv, http.MethodGet, "/api/templates/"+tmpl.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestImportKeywords(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("brand", "acme")
	fw, err := mw.CreateFormFile("file", "export.csv")
	require.NoError(t, err)
	fw.Write([]byte("Keyword,Volume,KD\nbest widgets,1200,35\ncheap widgets,400,12\n"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/keywords/import", &buf)
	req.Header.Set("Authorization", "Bearer test-key")
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Imported int    `json:"imported"`
		Country  string `json:"country"`
	}
	decodeBody(t, w, &resp)
	assert.Equal(t, 2, resp.Imported)
	assert.Equal(t, "sk", resp.Country)

	w = doJSON(srv, http.MethodGet, "/api/keywords?brand=acme", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Keywords []store.Keyword `json:"keywords"`
	}
	decodeBody(t, w, &list)
	require.Len(t, list.Keywords, 2)
	assert.Equal(t, "best widgets", list.Keywords[0].Keyword)
}

func TestProjectExport(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	w := doJSON(srv, http.MethodPost, "/api/projects", map[string]any{
		"type":         "blog",
		"title":        "Widget Guide",
		"content_html": "<h1>Guide</h1><p>Some <strong>bold</strong> advice.</p>",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var project store.Project
	decodeBody(t, w, &project)

	w = doJSON(srv, http.MethodGet, "/api/projects/"+project.ID+"/export?format=html", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".html")
	assert.Contains(t, w.Body.String(), "<title>Widget Guide</title>")
	assert.Contains(t, w.Body.String(), "<h1>Guide</h1>")

	w = doJSON(srv, http.MethodGet, "/api/projects/"+project.ID+"/export?format=markdown", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "# Guide")
	assert.Contains(t, w.Body.String(), "**bold**")

	w = doJSON(srv, http.MethodGet, "/api/projects/"+project.ID+"/export?format=pdf", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(srv, http.MethodGet, "/api/projects/"+project.ID+"/export?lang=de", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGenerateContentStreams(t *testing.T) {
	srv := newTestServer(t, streamBackend("<p>Hello ", "world</p>"), nil)

	w := doJSON(srv, http.MethodPost, "/api/ai/generate-content", map[string]any{
		"type":  "blog",
		"title": "Hello Post",
		"topic": "greetings",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<p>Hello world</p>", w.Body.String())

	projectID := w.Header().Get("X-Project-ID")
	require.NotEmpty(t, projectID)

	w = doJSON(srv, http.MethodGet, "/api/projects/"+projectID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var project store.Project
	decodeBody(t, w, &project)
	assert.Equal(t, store.StatusEditing, project.Status)
	assert.Equal(t, "<p>Hello world</p>", project.ContentHTML)
	assert.False(t, project.Incomplete)
}

func TestGenerateImagesFillsPlaceholders(t *testing.T) {
	imageHandler := func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{
					{"inlineData": map[string]string{"mimeType": "image/png", "data": "aGk="}},
				}}},
			},
		})
	}
	srv := newTestServer(t, nil, imageHandler)

	w := doJSON(srv, http.MethodPost, "/api/projects", map[string]any{
		"type":         "blog",
		"title":        "Pics",
		"content_html": `<p>Intro</p><img data-ai-generate="true" data-section="intro" alt="A cozy bed" />`,
	})
	require.Equal(t, http.StatusOK, w.Code)
	var project store.Project
	decodeBody(t, w, &project)

	w = doJSON(srv, http.MethodPost, "/api/ai/generate-images", map[string]string{"project_id": project.ID})
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		ContentHTML string `json:"content_html"`
		Filled      int    `json:"filled"`
	}
	decodeBody(t, w, &resp)
	assert.Equal(t, 1, resp.Filled)
	assert.Contains(t, resp.ContentHTML, "data:image/png;base64,aGk=")
	assert.NotContains(t, resp.ContentHTML, "data-ai-generate")
}

func TestSessionEditFlow(t *testing.T) {
	srv := newTestServer(t, completionBackend("NEW text"), nil)

	w := doJSON(srv, http.MethodPost, "/api/projects", map[string]any{
		"type":         "blog",
		"title":        "Editable",
		"content_html": "<p>Old text</p>",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var project store.Project
	decodeBody(t, w, &project)

	w = doJSON(srv, http.MethodPost, "/api/sessions", map[string]string{"project_id": project.ID})
	require.Equal(t, http.StatusOK, w.Code)
	var opened map[string]string
	decodeBody(t, w, &opened)
	sessionID := opened["session_id"]
	require.NotEmpty(t, sessionID)
	assert.Equal(t, "<p>Old text</p>", opened["content_html"])

	// Select the paragraph's text.
	w = doJSON(srv, http.MethodPost, "/api/sessions/"+sessionID+"/selection", map[string]int{"from": 1, "to": 9})
	require.Equal(t, http.StatusOK, w.Code)
	var sel map[string]any
	decodeBody(t, w, &sel)
	assert.Equal(t, "Old text", sel["selected_text"])
	assert.Equal(t, false, sel["is_image"])
	assert.Equal(t, true, sel["toolbar_suppressed"])
	assert.Contains(t, sel["view_html"], "data-ai-highlight")

	w = doJSON(srv, http.MethodPost, "/api/sessions/"+sessionID+"/edit", map[string]string{"instruction": "rewrite it"})
	require.Equal(t, http.StatusOK, w.Code)
	var edited map[string]any
	decodeBody(t, w, &edited)
	assert.Equal(t, "<p>NEW text</p>", edited["content_html"])
	assert.Equal(t, "closed", edited["panel_state"])

	// Save back to the project.
	w = doJSON(srv, http.MethodPost, "/api/sessions/"+sessionID+"/save", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(srv, http.MethodGet, "/api/projects/"+project.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &project)
	assert.Equal(t, "<p>NEW text</p>", project.ContentHTML)
	assert.Equal(t, store.StatusEditing, project.Status)

	// Closing drops the session.
	w = doJSON(srv, http.MethodDelete, "/api/sessions/"+sessionID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(srv, http.MethodGet, "/api/sessions/"+sessionID+"/content", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionEditWithoutSelection(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	w := doJSON(srv, http.MethodPost, "/api/projects", map[string]any{
		"type":         "blog",
		"title":        "No panel",
		"content_html": "<p>Text</p>",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var project store.Project
	decodeBody(t, w, &project)

	w = doJSON(srv, http.MethodPost, "/api/sessions", map[string]string{"project_id": project.ID})
	require.Equal(t, http.StatusOK, w.Code)
	var opened map[string]string
	decodeBody(t, w, &opened)

	w = doJSON(srv, http.MethodPost, "/api/sessions/"+opened["session_id"]+"/edit", map[string]string{"instruction": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateSEO(t *testing.T) {
	srv := newTestServer(t, completionBackend(`{"seo_title":"Widget Guide 2026","seo_description":"Everything about widgets."}`), nil)

	w := doJSON(srv, http.MethodPost, "/api/projects", map[string]any{
		"type":         "blog",
		"title":        "Widget Guide",
		"content_html": "<p>Widgets.</p>",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var project store.Project
	decodeBody(t, w, &project)

	w = doJSON(srv, http.MethodPost, "/api/ai/seo", map[string]string{"project_id": project.ID})
	require.Equal(t, http.StatusOK, w.Code)
	var meta genai.SEOMetadata
	decodeBody(t, w, &meta)
	assert.Equal(t, "Widget Guide 2026", meta.Title)

	w = doJSON(srv, http.MethodGet, "/api/projects/"+project.ID, nil)
	decodeBody(t, w, &project)
	assert.Equal(t, "Widget Guide 2026", project.SEOTitle)
	assert.Equal(t, "Everything about widgets.", project.SEODescription)
}

func TestTranslateStoresVersion(t *testing.T) {
	srv := newTestServer(t, completionBackend("<p>Ahoj svet</p>"), nil)

	w := doJSON(srv, http.MethodPost, "/api/projects", map[string]any{
		"type":         "blog",
		"title":        "Hello",
		"language":     "en",
		"content_html": "<p>Hello world</p>",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var project store.Project
	decodeBody(t, w, &project)

	w = doJSON(srv, http.MethodPost, "/api/ai/translate", map[string]string{
		"project_id":      project.ID,
		"target_language": "sk",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(srv, http.MethodGet, "/api/projects/"+project.ID, nil)
	decodeBody(t, w, &project)
	assert.Equal(t, "<p>Ahoj svet</p>", project.TranslatedVersions["sk"])
	assert.Equal(t, store.StatusTranslated, project.Status)

	// The translated version exports directly.
	w = doJSON(srv, http.MethodGet, "/api/projects/"+project.ID+"/export?format=html&lang=sk", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Ahoj svet")
}

func TestStats(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	doJSON(srv, http.MethodPost, "/api/brands", map[string]string{"name": "Acme"})
	doJSON(srv, http.MethodPost, "/api/projects", map[string]any{"type": "blog", "title": "One"})
	doJSON(srv, http.MethodPost, "/api/projects", map[string]any{"type": "presell", "title": "Two"})

	w := doJSON(srv, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats store.Stats
	decodeBody(t, w, &stats)
	assert.Equal(t, 1, stats.Brands)
	assert.Equal(t, 2, stats.Projects)
	assert.Equal(t, 2, stats.ProjectsByStatus[store.StatusDraft])
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"report.pdf":       "report.pdf",
		"../../etc/passwd": "passwd",
		"dir/file.txt":     "file.txt",
		"":                 "unnamed",
		"weird..name.docx": "weird_name.docx",
	}
	for in, want := range cases {
		assert.Equal(t, want, sanitizeFilename(in), "input %q", in)
	}
}
