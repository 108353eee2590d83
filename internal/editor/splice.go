package editor

import (
	"strings"

	"github.com/dgallion1/contentforge/internal/richtext"
)

// Splice replaces previously captured markup with a generated fragment.
//
// Primary strategy: serialize the whole document, find the first verbatim
// occurrence of the original markup and substitute the replacement, then
// reload the document from the edited string. This survives mutations
// elsewhere in the document as long as the captured substring is intact.
// Only the first occurrence is replaced; replacing all would silently
// duplicate the edit into unrelated content.
//
// Fallback: when the original markup is no longer found verbatim, a
// structural replace against the fallback range. Either path is applied
// atomically; a failed fallback leaves the document unchanged.
func Splice(doc *richtext.Document, originalHTML, replacementHTML string, fallback richtext.Range) error {
	if originalHTML != "" {
		full := doc.HTML()
		if idx := strings.Index(full, originalHTML); idx >= 0 {
			edited := full[:idx] + replacementHTML + full[idx+len(originalHTML):]
			return doc.SetContent(edited)
		}
	}
	return doc.Replace(fallback, replacementHTML)
}
