package main

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/siftlab/ditto/internal/output"
	"github.com/siftlab/ditto/pkg/config"
	"github.com/siftlab/ditto/pkg/lang"
	"github.com/siftlab/ditto/pkg/parser"
	"github.com/siftlab/ditto/pkg/similarity"
)

func contextWithArgs(args ...string) *cli.Context {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	_ = set.Parse(args)
	return cli.NewContext(cli.NewApp(), set, nil)
}

func TestGetPaths(t *testing.T) {
	c := contextWithArgs()
	paths := getPaths(c)
	if len(paths) != 1 || paths[0] != "." {
		t.Errorf("getPaths() = %v, want [.]", paths)
	}

	c = contextWithArgs("src", "docs")
	paths = getPaths(c)
	if len(paths) != 2 || paths[0] != "src" || paths[1] != "docs" {
		t.Errorf("getPaths() = %v, want [src docs]", paths)
	}
}

func TestFileExt(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"main.py", "py"},
		{"dir/doc.TXT", "txt"},
		{"archive.tar.gz", "gz"},
		{"noext", ""},
	}

	for _, tt := range tests {
		if got := fileExt(tt.path); got != tt.want {
			t.Errorf("fileExt(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestBuildRegistryOverrides(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Languages.Structured = map[string]string{
		"scala": "",
		"pyw":   string(parser.LangPython),
	}
	cfg.Languages.FreeText = []string{"rst"}

	registry := buildRegistry(cfg)

	e, err := registry.Lookup("scala")
	if err != nil {
		t.Fatalf("scala not registered: %v", err)
	}
	if e.Class != lang.ClassStructured || e.Grammar != parser.LangNone {
		t.Errorf("scala entry = %+v, want structured without grammar", e)
	}

	e, err = registry.Lookup("pyw")
	if err != nil {
		t.Fatalf("pyw not registered: %v", err)
	}
	if e.Grammar != parser.LangPython {
		t.Errorf("pyw grammar = %s, want python", e.Grammar)
	}

	e, err = registry.Lookup("rst")
	if err != nil {
		t.Fatalf("rst not registered: %v", err)
	}
	if e.Class != lang.ClassFreeText {
		t.Errorf("rst class = %s, want free_text", e.Class)
	}

	// Built-in defaults survive alongside overrides.
	if _, err := registry.Lookup("py"); err != nil {
		t.Errorf("py should remain registered: %v", err)
	}
}

func TestGenerateDefaultConfigRoundTrip(t *testing.T) {
	content, err := generateDefaultConfig()
	if err != nil {
		t.Fatalf("generateDefaultConfig() error = %v", err)
	}
	if !strings.HasPrefix(content, "# ditto configuration") {
		t.Errorf("generated config missing header comment")
	}

	path := filepath.Join(t.TempDir(), "ditto.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load(generated) error = %v", err)
	}

	defaults := config.DefaultConfig()
	if cfg.Engine.HighlightThreshold != defaults.Engine.HighlightThreshold {
		t.Errorf("highlight_threshold = %v, want %v", cfg.Engine.HighlightThreshold, defaults.Engine.HighlightThreshold)
	}
	if cfg.Engine.MaxFileSize != defaults.Engine.MaxFileSize {
		t.Errorf("max_file_size = %d, want %d", cfg.Engine.MaxFileSize, defaults.Engine.MaxFileSize)
	}
	if cfg.Exclude.Gitignore != defaults.Exclude.Gitignore {
		t.Errorf("gitignore = %v, want %v", cfg.Exclude.Gitignore, defaults.Exclude.Gitignore)
	}
	if cfg.Output.Format != defaults.Output.Format {
		t.Errorf("format = %q, want %q", cfg.Output.Format, defaults.Output.Format)
	}
}

func TestCompareReport(t *testing.T) {
	result := &similarity.OverlapResult{
		OverlapPercentage: 75,
		OverlapCount:      3,
		TotalLines:        4,
		MatchedLines:      []string{"x = 1", "y = 2"},
	}

	report := compareReport(result, "a.py", "b.py", 80, false)

	var buf bytes.Buffer
	if err := report.RenderText(&buf, false); err != nil {
		t.Fatalf("RenderText failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "a.py vs b.py") {
		t.Errorf("missing pair title:\n%s", out)
	}
	if !strings.Contains(out, "3 of 4 lines") {
		t.Errorf("missing overlap counts:\n%s", out)
	}
	if strings.Contains(out, "Overlapping lines") {
		t.Errorf("line listing should be off by default:\n%s", out)
	}

	report = compareReport(result, "a.py", "b.py", 80, true)
	buf.Reset()
	if err := report.RenderText(&buf, false); err != nil {
		t.Fatalf("RenderText failed: %v", err)
	}
	out = buf.String()
	if !strings.Contains(out, "Overlapping lines") || !strings.Contains(out, "y = 2") {
		t.Errorf("line listing missing:\n%s", out)
	}

	// Structured formats serialize the raw result, not the sections.
	if report.RenderData() != any(result) {
		t.Error("RenderData should pass through the comparison result")
	}

	if _, ok := report.Sections[0].(*output.Section); !ok {
		t.Errorf("section type = %T", report.Sections[0])
	}
}
