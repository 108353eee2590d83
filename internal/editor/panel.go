package editor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dgallion1/contentforge/internal/richtext"
)

// PanelState is the inline command panel's lifecycle state.
type PanelState uint8

const (
	PanelClosed PanelState = iota
	PanelOpen
	PanelSubmitting
)

var (
	ErrNoSelection      = errors.New("editor: empty selection")
	ErrEmptyInstruction = errors.New("editor: instruction is empty")
	ErrPanelClosed      = errors.New("editor: panel is not open")
	// ErrStale marks a submission whose panel was cancelled while the
	// generation call was in flight; its result was discarded.
	ErrStale = errors.New("editor: panel closed before response arrived")
)

// EditRequest is the text-edit capability's request shape.
type EditRequest struct {
	SelectedHTML  string
	Instruction   string
	ContextBefore string
	ContextAfter  string
	BrandName     string
}

// ImageRequest is the image-regeneration capability's request shape.
type ImageRequest struct {
	Prompt      string
	OriginalAlt string
	ImageStyle  string
}

// ImageResult is a regenerated image.
type ImageResult struct {
	Src string
	Alt string
}

// TextEditor is the generation-service capability for selection rewrites.
type TextEditor interface {
	EditSelection(ctx context.Context, req EditRequest) (string, error)
}

// ImageEditor is the generation-service capability for image regeneration.
type ImageEditor interface {
	RegenerateImage(ctx context.Context, req ImageRequest) (ImageResult, error)
}

// Session is one editing session over one document. It owns the document,
// its rendered view, and the single inline command panel; at most one
// panel is ever open per session, and the document is mutated only through
// session operations under the session lock.
type Session struct {
	ID        string
	ProjectID string

	mu         sync.Mutex
	doc        *richtext.Document
	view       *View
	text       TextEditor
	image      ImageEditor
	brandName  string
	imageStyle string

	state    PanelState
	snapshot *SelectionSnapshot
	handle   *HighlightHandle
	epoch    int
	lastErr  string
	updated  time.Time
}

// NewSession opens an editing session over the given markup.
func NewSession(id, projectID, markup string, text TextEditor, image ImageEditor, brandName, imageStyle string) (*Session, error) {
	doc, err := richtext.Parse(markup)
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:         id,
		ProjectID:  projectID,
		doc:        doc,
		view:       NewView(doc),
		text:       text,
		image:      image,
		brandName:  brandName,
		imageStyle: imageStyle,
		updated:    time.Now(),
	}, nil
}

// Content returns the document's current markup.
func (s *Session) Content() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.HTML()
}

// ViewHTML returns the rendered view, highlight markers included.
func (s *Session) ViewHTML() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.HTML()
}

// SetContent replaces the whole document (HTML source view edits).
func (s *Session) SetContent(markup string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.doc.SetContent(markup); err != nil {
		return err
	}
	s.view.Sync(s.doc)
	s.touch()
	return nil
}

// OpenPanel captures the selection, highlights it, and opens the panel.
// Any previously open panel is cancelled first: only one panel exists at a
// time and while it is open the ambient selection toolbar is suppressed.
func (s *Session) OpenPanel(r richtext.Range) (*SelectionSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != PanelClosed {
		s.cancelLocked()
	}
	snap, ok := Capture(s.doc, r)
	if !ok {
		return nil, ErrNoSelection
	}
	s.snapshot = snap
	s.handle = Highlight(s.view, r)
	s.state = PanelOpen
	s.lastErr = ""
	s.touch()
	return snap, nil
}

// ClosePanel cancels the panel: highlight removed, no further result from
// an in-flight submission will be applied.
func (s *Session) ClosePanel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
}

// PanelState returns the panel's current state.
func (s *Session) PanelState() PanelState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ToolbarSuppressed reports whether the ambient selection toolbar must be
// hidden because the panel is open.
func (s *Session) ToolbarSuppressed() bool {
	return s.PanelState() != PanelClosed
}

// LastError returns the panel's last surfaced error message, if any.
func (s *Session) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Submit sends the instruction together with the captured snapshot to the
// generation service and splices the result back. The session lock is not
// held during the network call; an epoch counter captured before the call
// guards against applying a result after the panel was cancelled.
//
// On success the highlight is removed and the panel closes. On a service
// failure the document is unchanged, the highlight is removed, and the
// panel stays open for retry with the error surfaced via LastError.
func (s *Session) Submit(ctx context.Context, instruction string) error {
	if strings.TrimSpace(instruction) == "" {
		return ErrEmptyInstruction
	}

	s.mu.Lock()
	if s.state != PanelOpen || s.snapshot == nil {
		s.mu.Unlock()
		return ErrPanelClosed
	}
	snap := s.snapshot
	epoch := s.epoch
	s.state = PanelSubmitting
	s.mu.Unlock()

	if snap.IsImage {
		return s.submitImage(ctx, snap, epoch, instruction)
	}
	return s.submitText(ctx, snap, epoch, instruction)
}

func (s *Session) submitText(ctx context.Context, snap *SelectionSnapshot, epoch int, instruction string) error {
	replacement, err := s.text.EditSelection(ctx, EditRequest{
		SelectedHTML:  snap.SelectedHTML,
		Instruction:   instruction,
		ContextBefore: snap.ContextBefore,
		ContextAfter:  snap.ContextAfter,
		BrandName:     s.brandName,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return ErrStale
	}
	if err != nil {
		s.failLocked(err)
		return err
	}
	if err := Splice(s.doc, snap.SelectedHTML, replacement, snap.Range); err != nil {
		s.failLocked(err)
		return err
	}
	s.finishLocked()
	return nil
}

func (s *Session) submitImage(ctx context.Context, snap *SelectionSnapshot, epoch int, instruction string) error {
	var originalAlt string
	if snap.Image != nil {
		originalAlt = snap.Image.Alt
	}
	res, err := s.image.RegenerateImage(ctx, ImageRequest{
		Prompt:      instruction,
		OriginalAlt: originalAlt,
		ImageStyle:  s.imageStyle,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return ErrStale
	}
	if err != nil {
		s.failLocked(err)
		return err
	}
	alt := res.Alt
	if alt == "" {
		alt = originalAlt
	}
	if err := s.doc.Replace(snap.Range, richtext.ImageHTML(res.Src, alt)); err != nil {
		s.failLocked(err)
		return err
	}
	s.finishLocked()
	return nil
}

// cancelLocked advances the epoch so any in-flight submission result is
// discarded, removes the highlight, and closes the panel.
func (s *Session) cancelLocked() {
	s.epoch++
	if s.handle != nil {
		s.handle.Remove()
		s.handle = nil
	}
	s.snapshot = nil
	s.state = PanelClosed
	s.touch()
}

func (s *Session) failLocked(err error) {
	if s.handle != nil {
		s.handle.Remove()
		s.handle = nil
	}
	s.lastErr = err.Error()
	s.state = PanelOpen
	s.touch()
}

func (s *Session) finishLocked() {
	s.epoch++
	if s.handle != nil {
		s.handle.Remove()
		s.handle = nil
	}
	s.snapshot = nil
	s.state = PanelClosed
	s.lastErr = ""
	s.view.Sync(s.doc)
	s.touch()
}

func (s *Session) touch() {
	s.updated = time.Now()
}
