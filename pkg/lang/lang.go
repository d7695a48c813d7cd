// Package lang maps declared file extensions to content classes for
// similarity screening.
package lang

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/siftlab/ditto/pkg/parser"
)

// Class is the content class of a document.
type Class string

const (
	// ClassStructured marks programming-language source, eligible for
	// structural (AST) normalization in addition to token masking.
	ClassStructured Class = "structured"
	// ClassFreeText marks prose, eligible only for token masking.
	ClassFreeText Class = "free_text"
)

var (
	// ErrUnsupportedExtension reports an extension with no registered class.
	ErrUnsupportedExtension = errors.New("unsupported file extension")
	// ErrMixedClasses reports a batch mixing structured and free-text files.
	ErrMixedClasses = errors.New("files must all be of the same supported language")
)

// Entry describes one registered extension.
type Entry struct {
	Ext     string          `json:"ext"`
	Class   Class           `json:"class"`
	Grammar parser.Language `json:"grammar,omitempty"`
}

// Registry maps extensions (without dot, lowercase) to entries.
type Registry struct {
	entries map[string]Entry
}

// NewRegistry returns a registry with the default extension set.
func NewRegistry() *Registry {
	r := &Registry{entries: make(map[string]Entry)}

	structured := map[string]parser.Language{
		"py":   parser.LangPython,
		"java": parser.LangJava,
		"cpp":  parser.LangCPP,
		"cc":   parser.LangCPP,
		"c":    parser.LangC,
		"h":    parser.LangC,
		"cs":   parser.LangCSharp,
		"js":   parser.LangJavaScript,
		"ts":   parser.LangTypeScript,
		"php":  parser.LangPHP,
		"rb":   parser.LangRuby,
		"go":   parser.LangGo,
		"rs":   parser.LangRust,
		// No grammar binding ships for these; token-shape only.
		"swift": parser.LangNone,
		"kt":    parser.LangNone,
	}
	for ext, grammar := range structured {
		r.entries[ext] = Entry{Ext: ext, Class: ClassStructured, Grammar: grammar}
	}

	for _, ext := range []string{"txt", "pdf", "docx", "md"} {
		r.entries[ext] = Entry{Ext: ext, Class: ClassFreeText}
	}

	return r
}

// Register adds or replaces an extension mapping.
func (r *Registry) Register(ext string, class Class, grammar parser.Language) {
	ext = normalizeExt(ext)
	r.entries[ext] = Entry{Ext: ext, Class: class, Grammar: grammar}
}

// Lookup resolves an extension to its entry.
func (r *Registry) Lookup(ext string) (Entry, error) {
	e, ok := r.entries[normalizeExt(ext)]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", ErrUnsupportedExtension, ext)
	}
	return e, nil
}

// LookupPath resolves a file path's extension to its entry.
func (r *Registry) LookupPath(path string) (Entry, error) {
	return r.Lookup(filepath.Ext(path))
}

// ForPair resolves the class of a two-document comparison. The pair is
// structured only when both sides are structured with the same grammar;
// any free-text side demotes the whole comparison to free-text.
func (r *Registry) ForPair(pathA, pathB string) (Class, parser.Language, error) {
	a, err := r.LookupPath(pathA)
	if err != nil {
		return "", parser.LangNone, err
	}
	b, err := r.LookupPath(pathB)
	if err != nil {
		return "", parser.LangNone, err
	}

	if a.Class == ClassStructured && b.Class == ClassStructured {
		grammar := a.Grammar
		if a.Grammar != b.Grammar {
			grammar = parser.LangNone
		}
		return ClassStructured, grammar, nil
	}
	return ClassFreeText, parser.LangNone, nil
}

// ForBatch resolves the shared class of a batch. All paths must carry
// one declared extension; mixed batches are a user-input error.
func (r *Registry) ForBatch(paths []string) (Class, parser.Language, error) {
	if len(paths) == 0 {
		return "", parser.LangNone, errors.New("no files provided")
	}

	first, err := r.LookupPath(paths[0])
	if err != nil {
		return "", parser.LangNone, err
	}
	for _, p := range paths[1:] {
		e, err := r.LookupPath(p)
		if err != nil {
			return "", parser.LangNone, err
		}
		if e.Ext != first.Ext {
			return "", parser.LangNone, ErrMixedClasses
		}
	}
	return first.Class, first.Grammar, nil
}

// Entries returns all registered entries sorted by extension.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ext < out[j].Ext })
	return out
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
