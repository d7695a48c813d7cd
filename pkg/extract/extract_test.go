package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/siftlab/ditto/pkg/source"
)

func TestExtractPlainText(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "doc.txt")
	if err := os.WriteFile(path, []byte("hello\nworld\n"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	e := New(source.NewFilesystem())
	got := e.Extract(path, "txt")
	if got != "hello\nworld\n" {
		t.Errorf("Extract = %q, want file content", got)
	}
}

func TestExtractBinaryContainer(t *testing.T) {
	tmpDir := t.TempDir()
	e := New(source.NewFilesystem())

	for _, ext := range []string{"pdf", "docx", ".PDF"} {
		path := filepath.Join(tmpDir, "doc."+ext)
		if err := os.WriteFile(path, []byte("%PDF-1.4 binary junk"), 0o644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}
		if got := e.Extract(path, ext); got != "" {
			t.Errorf("Extract(%s) = %q, want empty", ext, got)
		}
	}
}

func TestExtractMissingFile(t *testing.T) {
	e := New(source.NewFilesystem())

	if got := e.Extract("/nonexistent/file.txt", "txt"); got != "" {
		t.Errorf("Extract of missing file = %q, want empty", got)
	}
}

func TestExtractSourceFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "main.py")
	content := "def main():\n    pass\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	e := New(source.NewFilesystem())
	if got := e.Extract(path, "py"); got != content {
		t.Errorf("Extract = %q, want %q", got, content)
	}
}
