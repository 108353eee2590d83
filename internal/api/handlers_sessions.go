package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dgallion1/contentforge/internal/editor"
	"github.com/dgallion1/contentforge/internal/richtext"
	"github.com/dgallion1/contentforge/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// handleOpenSession opens an editing session over a project's document.
func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
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

	brandName, imageStyle := s.brandLookup(r, project.BrandID)
	sess, err := editor.NewSession(uuid.NewString(), project.ID, project.ContentHTML, s.ai, s.ai, brandName, imageStyle)
	if err != nil {
		jsonError(w, "project content is not valid markup", http.StatusUnprocessableEntity)
		return
	}
	s.sessions.Put(sess)

	writeJSON(w, http.StatusOK, map[string]string{
		"session_id":   sess.ID,
		"content_html": sess.Content(),
		"view_html":    sess.ViewHTML(),
	})
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) *editor.Session {
	sess := s.sessions.Get(chi.URLParam(r, "sessionID"))
	if sess == nil {
		jsonError(w, "session not found", http.StatusNotFound)
	}
	return sess
}

func (s *Server) handleSessionContent(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"content_html":       sess.Content(),
		"view_html":          sess.ViewHTML(),
		"panel_state":        panelStateName(sess.PanelState()),
		"toolbar_suppressed": sess.ToolbarSuppressed(),
		"error":              sess.LastError(),
	})
}

// handleSessionSetContent replaces the whole document, the HTML source
// view path. Any open panel is cancelled because its selection no longer
// refers to anything.
func (s *Server) handleSessionSetContent(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	var req struct {
		ContentHTML string `json:"content_html"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := sess.SetContent(req.ContentHTML); err != nil {
		jsonError(w, "invalid markup", http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"content_html": sess.Content(),
		"view_html":    sess.ViewHTML(),
	})
}

// handleSessionSelection opens the inline command panel for a selection.
func (s *Server) handleSessionSelection(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	var req struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	snap, err := sess.OpenPanel(richtext.Range{From: req.From, To: req.To})
	if err != nil {
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	resp := map[string]any{
		"selected_html":      snap.SelectedHTML,
		"selected_text":      snap.SelectedText,
		"is_image":           snap.IsImage,
		"view_html":          sess.ViewHTML(),
		"toolbar_suppressed": sess.ToolbarSuppressed(),
	}
	if snap.Image != nil {
		resp["image"] = map[string]string{"src": snap.Image.Src, "alt": snap.Image.Alt}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleSessionEdit submits a panel instruction and splices the result
// back into the document.
func (s *Server) handleSessionEdit(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	var req struct {
		Instruction string `json:"instruction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := sess.Submit(r.Context(), req.Instruction); err != nil {
		switch {
		case errors.Is(err, editor.ErrEmptyInstruction), errors.Is(err, editor.ErrPanelClosed):
			jsonError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, editor.ErrStale):
			jsonError(w, err.Error(), http.StatusConflict)
		default:
			s.log.Error("session edit", "session_id", sess.ID, "error", err)
			jsonError(w, err.Error(), http.StatusBadGateway)
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"content_html": sess.Content(),
		"view_html":    sess.ViewHTML(),
		"panel_state":  panelStateName(sess.PanelState()),
	})
}

// handleSessionClosePanel dismisses the panel; an in-flight submission's
// result is discarded when it lands.
func (s *Server) handleSessionClosePanel(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	sess.ClosePanel()
	writeJSON(w, http.StatusOK, map[string]any{
		"panel_state": panelStateName(sess.PanelState()),
		"view_html":   sess.ViewHTML(),
	})
}

// handleSessionSave persists the session document back to the project.
func (s *Server) handleSessionSave(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	if err := s.saveSession(r, sess); err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// handleCloseSession saves and drops the session.
func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	if err := s.saveSession(r, sess); err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.sessions.Delete(sess.ID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}

func (s *Server) saveSession(r *http.Request, sess *editor.Session) error {
	project, err := s.store.GetProject(r.Context(), sess.ProjectID)
	if err != nil {
		return errors.New("project not found")
	}
	project.ContentHTML = sess.Content()
	if project.Status == store.StatusDraft || project.Status == store.StatusGenerating {
		project.Status = store.StatusEditing
	}
	if err := s.store.SaveProject(r.Context(), project); err != nil {
		s.log.Error("save project", "project_id", project.ID, "error", err)
		return errors.New("failed to save project")
	}
	return nil
}

func panelStateName(st editor.PanelState) string {
	switch st {
	case editor.PanelOpen:
		return "open"
	case editor.PanelSubmitting:
		return "submitting"
	default:
		return "closed"
	}
}
