// Package parser extracts text from uploaded brand documents and imports
// keyword research exports.
package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Extractor pulls plain text out of an uploaded brand document.
type Extractor interface {
	Extract(r io.Reader) (string, error)
}

// SupportedExtensions lists brand document types this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":  true,
	".pdf":  true,
	".docx": true,
}

// ForFile returns the appropriate extractor for a filename.
func ForFile(filename string) (Extractor, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextExtractor{}, nil
	case ".pdf":
		return &PDFExtractor{FallbackPdftotext: true}, nil
	case ".docx":
		return &DOCXExtractor{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}
