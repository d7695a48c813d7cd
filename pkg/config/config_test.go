package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig() returned nil")
	}

	if cfg.Engine.Workers != 0 {
		t.Errorf("Engine.Workers = %d, want 0", cfg.Engine.Workers)
	}
	if cfg.Engine.HighlightThreshold != 80 {
		t.Errorf("Engine.HighlightThreshold = %f, want 80", cfg.Engine.HighlightThreshold)
	}
	if cfg.Engine.MaxFileSize != 16*1024*1024 {
		t.Errorf("Engine.MaxFileSize = %d, want 16MiB", cfg.Engine.MaxFileSize)
	}

	if !cfg.Exclude.Gitignore {
		t.Error("Exclude.Gitignore should be true by default")
	}
	if len(cfg.Exclude.Dirs) == 0 {
		t.Error("Exclude.Dirs should have default values")
	}

	if cfg.Output.Format != "text" {
		t.Errorf("Output.Format = %s, want text", cfg.Output.Format)
	}
	if !cfg.Output.Color {
		t.Error("Output.Color should be true by default")
	}
}

func TestLoadTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "ditto.toml")

	content := `
[engine]
workers = 8
highlight_threshold = 65.5

[languages]
free_text = ["rst"]

[languages.structured]
scala = ""

[exclude]
dirs = ["vendor", "custom_exclude"]
gitignore = false

[output]
format = "json"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Engine.Workers != 8 {
		t.Errorf("Engine.Workers = %d, want 8", cfg.Engine.Workers)
	}
	if cfg.Engine.HighlightThreshold != 65.5 {
		t.Errorf("Engine.HighlightThreshold = %f, want 65.5", cfg.Engine.HighlightThreshold)
	}
	// Unset fields keep their defaults.
	if cfg.Engine.MaxFileSize != 16*1024*1024 {
		t.Errorf("Engine.MaxFileSize = %d, want default", cfg.Engine.MaxFileSize)
	}

	if len(cfg.Languages.FreeText) != 1 || cfg.Languages.FreeText[0] != "rst" {
		t.Errorf("Languages.FreeText = %v, want [rst]", cfg.Languages.FreeText)
	}
	if _, ok := cfg.Languages.Structured["scala"]; !ok {
		t.Error("Languages.Structured should contain scala")
	}

	if cfg.Exclude.Gitignore {
		t.Error("Exclude.Gitignore should be overridden to false")
	}
	if cfg.Output.Format != "json" {
		t.Errorf("Output.Format = %s, want json", cfg.Output.Format)
	}
}

func TestLoadYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "ditto.yaml")

	content := `
engine:
  workers: 4
output:
  format: markdown
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Engine.Workers != 4 {
		t.Errorf("Engine.Workers = %d, want 4", cfg.Engine.Workers)
	}
	if cfg.Output.Format != "markdown" {
		t.Errorf("Output.Format = %s, want markdown", cfg.Output.Format)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/ditto.toml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestShouldExclude(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		path string
		want bool
	}{
		{"vendor/pkg/mod.go", true},
		{"src/vendor/mod.go", true},
		{"node_modules/lodash/index.js", true},
		{"app.min.js", true},
		{"go.sum", true},
		{"src/main.go", false},
		{"vendored/file.go", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := cfg.ShouldExclude(tt.path); got != tt.want {
				t.Errorf("ShouldExclude(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tmpDir := t.TempDir()

	valid := filepath.Join(tmpDir, "valid.toml")
	validContent := `
[engine]
workers = 4
highlight_threshold = 80.0

[output]
format = "json"
color = true
`
	if err := os.WriteFile(valid, []byte(validContent), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if err := Validate(valid); err != nil {
		t.Errorf("Validate(valid) = %v, want nil", err)
	}

	unknownKey := filepath.Join(tmpDir, "unknown.toml")
	unknownContent := `
[engine]
workres = 4
`
	if err := os.WriteFile(unknownKey, []byte(unknownContent), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if err := Validate(unknownKey); err == nil {
		t.Error("Validate should reject unknown keys")
	}

	badType := filepath.Join(tmpDir, "badtype.toml")
	badContent := `
[output]
format = "csv"
`
	if err := os.WriteFile(badType, []byte(badContent), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if err := Validate(badType); err == nil {
		t.Error("Validate should reject formats outside the enum")
	}

	if err := Validate(filepath.Join(tmpDir, "missing.toml")); err == nil {
		t.Error("Validate should fail for a missing file")
	}
}
