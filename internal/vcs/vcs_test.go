package vcs

import (
	"os"
	"path/filepath"
	"testing"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// initTestRepo creates a repository with one commit containing the
// given files and returns its path.
func initTestRepo(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	wt, err := repo.Worktree()
	require.NoError(t, err)

	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		_, err = wt.Add(name)
		require.NoError(t, err)
	}

	_, err = wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com"},
	})
	require.NoError(t, err)

	return dir
}

func TestOpenTree(t *testing.T) {
	dir := initTestRepo(t, map[string]string{
		"a.py":     "x = 1\n",
		"sub/b.py": "y = 2\n",
	})

	tree, err := OpenTree(dir, "HEAD")
	require.NoError(t, err)

	files, err := tree.Files()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.py", "sub/b.py"}, files)

	content, err := tree.File("sub/b.py")
	require.NoError(t, err)
	assert.Equal(t, "y = 2\n", string(content))
}

func TestOpenTreeSubdirectoryDetection(t *testing.T) {
	dir := initTestRepo(t, map[string]string{"sub/b.py": "y = 2\n"})

	// DetectDotGit walks up from the given path.
	tree, err := OpenTree(filepath.Join(dir, "sub"), "HEAD")
	require.NoError(t, err)

	files, err := tree.Files()
	require.NoError(t, err)
	assert.Contains(t, files, "sub/b.py")
}

func TestOpenTreeBadRevision(t *testing.T) {
	dir := initTestRepo(t, map[string]string{"a.py": "x = 1\n"})

	_, err := OpenTree(dir, "no-such-branch")
	assert.Error(t, err)
}

func TestOpenTreeNotARepo(t *testing.T) {
	_, err := OpenTree(t.TempDir(), "HEAD")
	assert.Error(t, err)
}

func TestTreeFileMissing(t *testing.T) {
	dir := initTestRepo(t, map[string]string{"a.py": "x = 1\n"})

	tree, err := OpenTree(dir, "HEAD")
	require.NoError(t, err)

	_, err = tree.File("missing.py")
	assert.Error(t, err)
}
