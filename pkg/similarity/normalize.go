package similarity

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/siftlab/ditto/pkg/lang"
	"github.com/siftlab/ditto/pkg/parser"
)

// wordRun matches a maximal run of word characters: identifiers,
// keywords, and numeric literals alike.
var wordRun = regexp.MustCompile(`\b\w+\b`)

const (
	// maskToken replaces every word run in the token-shape strategy.
	maskToken = "TOK"
	// redactedIdent replaces identifier leaves in redacted syntax trees.
	redactedIdent = "_"
)

// identLeafTypes are the tree-sitter leaf node types that carry
// user-chosen names. Covers the grammars in pkg/parser; unknown types
// pass through with their source text.
var identLeafTypes = map[string]bool{
	"identifier":                            true,
	"type_identifier":                       true,
	"field_identifier":                      true,
	"property_identifier":                   true,
	"shorthand_property_identifier":         true,
	"shorthand_property_identifier_pattern": true,
	"package_identifier":                    true,
	"namespace_identifier":                  true,
	"statement_identifier":                  true,
	"name":                                  true,
	"variable_name":                         true,
	"constant":                              true,
	"instance_variable":                     true,
	"class_variable":                        true,
	"global_variable":                       true,
	"simple_identifier":                     true,
	"label_name":                            true,
}

// Normalizer converts one raw line into its set of canonical
// fingerprints for a content class. Not safe for concurrent use;
// create one per goroutine (it owns a tree-sitter parser).
type Normalizer struct {
	class   lang.Class
	grammar parser.Language
	parser  *parser.Parser
}

// NewNormalizer creates a normalizer for the given content class.
// The grammar is only consulted for structured content; pass
// parser.LangNone to disable the structural strategy.
func NewNormalizer(class lang.Class, grammar parser.Language) *Normalizer {
	n := &Normalizer{class: class, grammar: grammar}
	if class == lang.ClassStructured && grammar != parser.LangNone {
		n.parser = parser.New()
	}
	return n
}

// Close releases parser resources.
func (n *Normalizer) Close() {
	if n.parser != nil {
		n.parser.Close()
	}
}

// FingerprintLine returns the fingerprint set of one raw line: for
// structured content the structural fingerprint (when the line parses
// as a standalone fragment) plus the token-shape fingerprint; for
// free-text the token-shape fingerprint alone. A failed strategy
// contributes nothing and never aborts the line.
func (n *Normalizer) FingerprintLine(line string) []Fingerprint {
	fps := make([]Fingerprint, 0, 2)

	if n.class == lang.ClassStructured && n.parser != nil {
		if canonical, ok := n.structuralForm(line); ok {
			fps = append(fps, fingerprintOf(canonical))
		}
	}

	fps = append(fps, fingerprintOf(tokenShape(line)))
	return fps
}

// tokenShape masks every word run with a placeholder, leaving
// punctuation and operators intact.
func tokenShape(line string) string {
	return wordRun.ReplaceAllString(line, maskToken)
}

// structuralForm parses the line as a fragment of the declared
// grammar and serializes the identifier-redacted tree. Returns false
// when the fragment does not parse cleanly; partial lines (a lone
// closing brace, say) land here routinely.
func (n *Normalizer) structuralForm(line string) (string, bool) {
	src := []byte(line)
	tree, err := n.parser.Parse(src, n.grammar)
	if err != nil {
		log.Debug().Err(err).Str("grammar", string(n.grammar)).Msg("fragment parse failed")
		return "", false
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil || root.HasError() {
		log.Debug().Str("grammar", string(n.grammar)).Str("line", line).Msg("fragment did not parse; token fingerprint only")
		return "", false
	}

	var sb strings.Builder
	writeRedacted(&sb, root, src)
	return sb.String(), true
}

// writeRedacted serializes a node as a canonical s-expression with
// every identifier leaf replaced by a fixed placeholder.
func writeRedacted(sb *strings.Builder, node *sitter.Node, source []byte) {
	if node.ChildCount() == 0 {
		if identLeafTypes[node.Type()] {
			sb.WriteString(redactedIdent)
			return
		}
		sb.WriteString(parser.GetNodeText(node, source))
		return
	}

	sb.WriteByte('(')
	sb.WriteString(node.Type())
	for i := 0; i < int(node.ChildCount()); i++ {
		sb.WriteByte(' ')
		writeRedacted(sb, node.Child(i), source)
	}
	sb.WriteByte(')')
}
