package editor

import (
	"context"
	"io"
	"regexp"
	"strings"
	"sync"

	"github.com/dgallion1/contentforge/internal/richtext"
)

// Assembler consumes an incrementally-delivered generation stream and
// pushes the accumulated markup into a document after every chunk, giving
// a live-updating preview during whole-document generation.
type Assembler struct {
	apply func(markup string) error
	buf   strings.Builder
}

// NewAssembler creates an assembler that hands each accumulated state to
// apply. The callback is invoked once per chunk with the full buffer.
func NewAssembler(apply func(markup string) error) *Assembler {
	return &Assembler{apply: apply}
}

// NewDocumentAssembler assembles directly into a document.
func NewDocumentAssembler(doc *richtext.Document) *Assembler {
	return NewAssembler(doc.SetContent)
}

// Consume reads the stream until it ends. The stream is finite and not
// restartable. Whatever accumulated before an abrupt end is kept and
// returned with the error; deciding whether the generation counts as
// incomplete is the caller's job. Cancelling the context stops further
// chunks from being applied.
func (a *Assembler) Consume(ctx context.Context, r io.Reader) (string, error) {
	chunk := make([]byte, 4096)
	for {
		select {
		case <-ctx.Done():
			return a.buf.String(), ctx.Err()
		default:
		}
		n, err := r.Read(chunk)
		if n > 0 {
			a.buf.Write(chunk[:n])
			if applyErr := a.apply(a.buf.String()); applyErr != nil {
				return a.buf.String(), applyErr
			}
		}
		if err == io.EOF {
			return a.buf.String(), nil
		}
		if err != nil {
			return a.buf.String(), err
		}
	}
}

// Assemble streams generated content into this session's document,
// re-rendering the view after each chunk.
func (s *Session) Assemble(ctx context.Context, r io.Reader) (string, error) {
	a := NewAssembler(func(markup string) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		if err := s.doc.SetContent(markup); err != nil {
			return err
		}
		s.view.Sync(s.doc)
		s.touch()
		return nil
	})
	return a.Consume(ctx, r)
}

// Placeholder is an image-generation marker found in assembled markup.
// Match is the literal substring to substitute.
type Placeholder struct {
	Match   string
	Section string
	Alt     string
}

var placeholderRe = regexp.MustCompile(`<img\s+data-ai-generate="true"\s+data-section="([^"]*)"\s+alt="([^"]*)"\s*/?>`)

// FindPlaceholders scans markup for image placeholders by exact attribute
// shape. Free-form attribute orderings are deliberately not recognized;
// the generation prompt pins the shape.
func FindPlaceholders(markup string) []Placeholder {
	var out []Placeholder
	for _, m := range placeholderRe.FindAllStringSubmatch(markup, -1) {
		out = append(out, Placeholder{Match: m[0], Section: m[1], Alt: m[2]})
	}
	return out
}

// FillFunc resolves one placeholder to an image source and alt text.
type FillFunc func(ctx context.Context, ph Placeholder) (src, alt string, err error)

// FillPlaceholders resolves every placeholder concurrently and substitutes
// each resolved one with a real image tag. Placeholders whose request
// fails are left as-is: partial success does not fail the generation.
// Completion order does not matter; every placeholder match substring is
// distinct within its own substitution.
func FillPlaceholders(ctx context.Context, markup string, fill FillFunc) (string, int) {
	placeholders := FindPlaceholders(markup)
	if len(placeholders) == 0 {
		return markup, 0
	}

	type result struct {
		src string
		alt string
		ok  bool
	}
	results := make([]result, len(placeholders))

	var wg sync.WaitGroup
	for i, ph := range placeholders {
		wg.Add(1)
		go func(i int, ph Placeholder) {
			defer wg.Done()
			src, alt, err := fill(ctx, ph)
			if err != nil || src == "" {
				return
			}
			results[i] = result{src: src, alt: alt, ok: true}
		}(i, ph)
	}
	wg.Wait()

	filled := 0
	for i, ph := range placeholders {
		if !results[i].ok {
			continue
		}
		alt := results[i].alt
		if alt == "" {
			alt = ph.Alt
		}
		markup = strings.Replace(markup, ph.Match, richtext.ImageHTML(results[i].src, alt), 1)
		filled++
	}
	return markup, filled
}
