package source

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siftlab/ditto/internal/vcs"
)

func TestFilesystemSource(t *testing.T) {
	src := NewFilesystem()

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("content\n"), 0o644))

	content, err := src.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "content\n", string(content))

	_, err = src.Read(filepath.Join(tmpDir, "nonexistent.txt"))
	assert.Error(t, err)
}

func TestTreeSource(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "doc.txt"), []byte("versioned\n"), 0o644))
	_, err = wt.Add("doc.txt")
	require.NoError(t, err)
	_, err = wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com"},
	})
	require.NoError(t, err)

	tree, err := vcs.OpenTree(dir, "HEAD")
	require.NoError(t, err)

	src := NewTree(tree)
	content, err := src.Read("doc.txt")
	require.NoError(t, err)
	assert.Equal(t, "versioned\n", string(content))

	_, err = src.Read("missing.txt")
	assert.Error(t, err)

	// Reads are serialized internally; concurrent use must be safe.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := src.Read("doc.txt")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}
