// Package config loads ditto configuration from TOML, YAML, or JSON
// files.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for ditto.
type Config struct {
	// Engine settings for the similarity engine.
	Engine EngineConfig `koanf:"engine" toml:"engine"`

	// Languages registers extra extension mappings.
	Languages LanguagesConfig `koanf:"languages" toml:"languages"`

	// Exclude defines file exclusion patterns for directory scans.
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude"`

	// Output controls output formatting.
	Output OutputConfig `koanf:"output" toml:"output"`
}

// EngineConfig controls the similarity engine.
type EngineConfig struct {
	// Workers for batch fingerprinting and pair scoring (0 = 2x NumCPU).
	Workers int `koanf:"workers" toml:"workers"`
	// HighlightThreshold marks edges at or above this percentage as
	// high-similarity in batch summaries.
	HighlightThreshold float64 `koanf:"highlight_threshold" toml:"highlight_threshold"`
	// MaxFileSize skips files larger than this many bytes in directory
	// scans (0 = no limit).
	MaxFileSize int64 `koanf:"max_file_size" toml:"max_file_size"`
}

// LanguagesConfig registers additional extensions beyond the defaults.
type LanguagesConfig struct {
	// Structured maps extension -> grammar name ("" for token-shape only).
	Structured map[string]string `koanf:"structured" toml:"structured"`
	// FreeText lists extensions treated as prose.
	FreeText []string `koanf:"free_text" toml:"free_text"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns   []string `koanf:"patterns" toml:"patterns"`
	Extensions []string `koanf:"extensions" toml:"extensions"`
	Dirs       []string `koanf:"dirs" toml:"dirs"`
	Gitignore  bool     `koanf:"gitignore" toml:"gitignore"`
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format string `koanf:"format" toml:"format"` // text, json, markdown, toon
	Color  bool   `koanf:"color" toml:"color"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			Workers:            0,
			HighlightThreshold: 80,
			MaxFileSize:        16 * 1024 * 1024,
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*.min.js",
				"*.min.css",
			},
			Extensions: []string{
				".lock",
				".sum",
			},
			Dirs: []string{
				"vendor",
				"node_modules",
				".git",
				".ditto",
				"dist",
				"build",
				"__pycache__",
			},
			Gitignore: true,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
	}
}

// Load loads configuration from a file, layered over the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault tries standard config locations or returns defaults.
func LoadOrDefault() *Config {
	configNames := []string{
		"ditto.toml",
		"ditto.yaml",
		"ditto.yml",
		"ditto.json",
		".ditto.toml",
		".ditto.yaml",
		".ditto.yml",
		".ditto.json",
	}
	searchDirs := []string{".", ".ditto"}

	for _, dir := range searchDirs {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				cfg, err := Load(path)
				if err == nil {
					return cfg
				}
			}
		}
	}

	return DefaultConfig()
}

// ShouldExclude checks if a path should be excluded from scanning.
func (c *Config) ShouldExclude(path string) bool {
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(path, string(filepath.Separator)+dir+string(filepath.Separator)) ||
			strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}

	ext := filepath.Ext(path)
	for _, excludeExt := range c.Exclude.Extensions {
		if ext == excludeExt {
			return true
		}
	}

	base := filepath.Base(path)
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}

	return false
}
