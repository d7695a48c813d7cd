// Package source abstracts where stored documents are read from.
package source

import (
	"os"
	"sync"

	"github.com/siftlab/ditto/internal/vcs"
)

// ContentSource provides document content from a specific source.
type ContentSource interface {
	// Read returns the content of the document at path.
	Read(path string) ([]byte, error)
}

// FilesystemSource reads documents from the local filesystem.
type FilesystemSource struct{}

// NewFilesystem creates a source that reads from the filesystem.
func NewFilesystem() *FilesystemSource {
	return &FilesystemSource{}
}

// Read implements ContentSource.
func (f *FilesystemSource) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// TreeSource reads documents from a git tree. Safe for concurrent use.
type TreeSource struct {
	tree *vcs.Tree
	mu   sync.Mutex
}

// NewTree creates a source that reads from a git tree.
func NewTree(tree *vcs.Tree) *TreeSource {
	return &TreeSource{tree: tree}
}

// Read implements ContentSource.
func (t *TreeSource) Read(path string) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tree.File(path)
}
