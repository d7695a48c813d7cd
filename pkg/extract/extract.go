// Package extract resolves stored documents to raw text.
//
// Extraction never fails a comparison: unreadable or undecodable
// content degrades to empty text, so downstream comparison reports 0%
// overlap for it instead of failing the request.
package extract

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/siftlab/ditto/pkg/source"
)

// Extractor maps a stored document handle plus its declared extension
// to raw newline-delimited text. Implementations must not error;
// failures degrade to empty text.
type Extractor interface {
	Extract(handle, ext string) string
}

// binaryContainers are declared formats whose raw text lives inside a
// binary container. No decoder is wired for them; they contribute
// zero lines.
var binaryContainers = map[string]bool{
	"pdf":  true,
	"docx": true,
}

// TextExtractor reads plain-text documents through a ContentSource.
type TextExtractor struct {
	src source.ContentSource
}

// New creates an extractor over the given content source.
func New(src source.ContentSource) *TextExtractor {
	return &TextExtractor{src: src}
}

// Extract implements Extractor.
func (e *TextExtractor) Extract(handle, ext string) string {
	if binaryContainers[normalizeExt(ext)] {
		log.Debug().Str("handle", handle).Str("ext", ext).Msg("binary container, no text extracted")
		return ""
	}

	data, err := e.src.Read(handle)
	if err != nil {
		log.Debug().Err(err).Str("handle", handle).Msg("extraction failed, treating as empty")
		return ""
	}
	return string(data)
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
