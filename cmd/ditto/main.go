package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/pelletier/go-toml"
	"github.com/urfave/cli/v2"

	"github.com/siftlab/ditto/internal/logger"
	"github.com/siftlab/ditto/internal/output"
	"github.com/siftlab/ditto/internal/progress"
	"github.com/siftlab/ditto/internal/scanner"
	"github.com/siftlab/ditto/internal/vcs"
	"github.com/siftlab/ditto/pkg/config"
	"github.com/siftlab/ditto/pkg/extract"
	"github.com/siftlab/ditto/pkg/lang"
	"github.com/siftlab/ditto/pkg/parser"
	"github.com/siftlab/ditto/pkg/similarity"
	"github.com/siftlab/ditto/pkg/source"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

// getPaths returns paths from positional args, defaulting to ["."]
func getPaths(c *cli.Context) []string {
	if c.Args().Len() > 0 {
		return c.Args().Slice()
	}
	return []string{"."}
}

func main() {
	app := &cli.App{
		Name:    "ditto",
		Usage:   "Line-fingerprint similarity detection for source and prose",
		Version: version,
		Description: `Ditto fingerprints documents line by line and reports the fraction of
one document's lines that also appear in another, surviving renamed
identifiers and re-literaled constants in source code.

Supports: Go, Rust, Python, TypeScript, JavaScript, Java, C, C++, C#,
Ruby, PHP, Swift, Kotlin, and plain-text documents`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"DITTO_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "text",
				Usage:   "Output format: text, json, markdown, toon",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose output",
			},
		},
		Before: func(c *cli.Context) error {
			level := "warn"
			if c.Bool("verbose") {
				level = "debug"
			}
			logger.Init(level)
			return nil
		},
		Commands: []*cli.Command{
			compareCmd(),
			groupCmd(),
			languagesCmd(),
			initCmd(),
			configCmd(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

// loadConfig reads the config named by --config, falling back to
// discovery in the working directory.
func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.Load(path)
	}
	return config.LoadOrDefault(), nil
}

// buildRegistry applies configured language overrides on top of the
// built-in extension table.
func buildRegistry(cfg *config.Config) *lang.Registry {
	registry := lang.NewRegistry()
	for ext, grammar := range cfg.Languages.Structured {
		registry.Register(ext, lang.ClassStructured, parser.Language(grammar))
	}
	for _, ext := range cfg.Languages.FreeText {
		registry.Register(ext, lang.ClassFreeText, parser.LangNone)
	}
	return registry
}

func fileExt(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

func compareCmd() *cli.Command {
	return &cli.Command{
		Name:      "compare",
		Aliases:   []string{"cmp"},
		Usage:     "Compare two documents and report line overlap",
		ArgsUsage: "<reference> <candidate>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "show-lines",
				Usage: "Print the candidate lines found in the reference",
			},
		},
		Action: runCompareCmd,
	}
}

func runCompareCmd(c *cli.Context) error {
	if c.Args().Len() != 2 {
		return fmt.Errorf("compare requires exactly two file arguments")
	}
	pathA := c.Args().Get(0)
	pathB := c.Args().Get(1)

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	registry := buildRegistry(cfg)

	class, grammar, err := registry.ForPair(pathA, pathB)
	if err != nil {
		return err
	}

	extractor := extract.New(source.NewFilesystem())
	contentA := extractor.Extract(pathA, fileExt(pathA))
	contentB := extractor.Extract(pathB, fileExt(pathB))

	cmp := similarity.NewComparer(class, grammar)
	defer cmp.Close()
	result := cmp.Compare(contentA, contentB)

	formatter, err := output.NewFormatter(output.ParseFormat(c.String("format")), c.String("output"), true)
	if err != nil {
		return err
	}
	defer formatter.Close()

	report := compareReport(result, pathA, pathB, cfg.Engine.HighlightThreshold, c.Bool("show-lines"))
	return formatter.Output(report)
}

// compareReport assembles the renderable for a pairwise comparison.
// Structured formats receive the raw result; text and markdown get
// titled sections.
func compareReport(result *similarity.OverlapResult, pathA, pathB string, threshold float64, showLines bool) *output.Report {
	pctStr := output.SimilarityColor(result.OverlapPercentage, threshold,
		fmt.Sprintf("%.2f%%", result.OverlapPercentage))

	report := &output.Report{
		Sections: []output.Renderable{
			&output.Section{
				Title: fmt.Sprintf("%s vs %s", pathA, pathB),
				Content: fmt.Sprintf("Overlap: %s (%d of %d lines)",
					pctStr, result.OverlapCount, result.TotalLines),
			},
		},
		Data: result,
	}

	if showLines && len(result.MatchedLines) > 0 {
		report.Sections = append(report.Sections, &output.Section{
			Title:   "Overlapping lines",
			Content: strings.Join(result.MatchedLines, "\n"),
		})
	}

	return report
}

func groupCmd() *cli.Command {
	return &cli.Command{
		Name:      "group",
		Aliases:   []string{"batch"},
		Usage:     "Rank every document pair in a set by line overlap",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "rev",
				Usage: "Read files from a git revision instead of the working tree",
			},
			&cli.Float64Flag{
				Name:  "threshold",
				Value: -1,
				Usage: "Highlight threshold percentage (overrides config)",
			},
			&cli.IntFlag{
				Name:  "top",
				Value: 0,
				Usage: "Show only the top N pairs (0 = all)",
			},
		},
		Action: runGroupCmd,
	}
}

func runGroupCmd(c *cli.Context) error {
	paths := getPaths(c)

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	registry := buildRegistry(cfg)

	threshold := cfg.Engine.HighlightThreshold
	if t := c.Float64("threshold"); t >= 0 {
		threshold = t
	}

	formatter, err := output.NewFormatter(output.ParseFormat(c.String("format")), c.String("output"), true)
	if err != nil {
		return err
	}
	defer formatter.Close()

	var files []string
	var src source.ContentSource

	if rev := c.String("rev"); rev != "" {
		tree, err := vcs.OpenTree(paths[0], rev)
		if err != nil {
			return fmt.Errorf("failed to open revision %s: %w", rev, err)
		}
		all, err := tree.Files()
		if err != nil {
			return err
		}
		for _, f := range all {
			if cfg.ShouldExclude(f) {
				continue
			}
			if _, err := registry.LookupPath(f); err == nil {
				files = append(files, f)
			}
		}
		src = source.NewTree(tree)
		formatter.Info("Using %d files from revision %s", len(files), rev)
	} else {
		spinner := progress.NewSpinner("Scanning for documents...")
		scan := scanner.New(cfg, registry)
		for _, path := range paths {
			absPath, err := filepath.Abs(path)
			if err != nil {
				spinner.FinishError(err)
				return fmt.Errorf("invalid path %s: %w", path, err)
			}
			found, err := scan.ScanDir(absPath)
			if err != nil {
				spinner.FinishError(err)
				return fmt.Errorf("failed to scan directory %s: %w", path, err)
			}
			files = append(files, found...)
			spinner.Tick()
		}
		spinner.FinishSuccess()

		var skipped int
		files, skipped = scanner.FilterBySize(files, cfg.Engine.MaxFileSize)
		if skipped > 0 {
			formatter.Warning("Skipped %d files over the size limit", skipped)
		}
		src = source.NewFilesystem()
	}

	if len(files) == 0 {
		formatter.Warning("No documents found")
		return nil
	}

	class, grammar, err := registry.ForBatch(files)
	if err != nil {
		return err
	}

	extractor := extract.New(src)
	docs := make([]similarity.Document, len(files))
	for i, f := range files {
		docs[i] = similarity.Document{
			ID:   displayPath(f),
			Text: extractor.Extract(f, fileExt(f)),
		}
	}

	tracker := progress.NewTracker("Fingerprinting documents...", len(docs))
	grouper := similarity.NewGrouper(class, grammar,
		similarity.WithWorkers(cfg.Engine.Workers),
		similarity.WithHighlightThreshold(threshold),
		similarity.WithProgress(tracker.Tick),
	)
	grouping, err := grouper.Group(c.Context, docs)
	if err != nil {
		tracker.FinishError(err)
		return fmt.Errorf("grouping failed: %w", err)
	}
	tracker.FinishSuccess()

	edges := grouping.Edges
	if topN := c.Int("top"); topN > 0 && len(edges) > topN {
		edges = edges[:topN]
	}

	var rows [][]string
	for _, e := range edges {
		pctStr := output.SimilarityColor(e.Percentage, threshold,
			fmt.Sprintf("%.2f%%", e.Percentage))
		rows = append(rows, []string{
			e.IDA,
			e.IDB,
			pctStr,
			fmt.Sprintf("%d", e.Count),
		})
	}

	table := output.NewTable(
		"Document Similarity",
		[]string{"Document A", "Document B", "Overlap", "Lines"},
		rows,
		[]string{
			fmt.Sprintf("Documents: %d", grouping.Summary.TotalDocuments),
			fmt.Sprintf("Pairs: %d", grouping.Summary.TotalEdges),
			fmt.Sprintf("Mean: %.2f%%", grouping.Summary.MeanPercentage),
			fmt.Sprintf("Over %.0f%%: %d", threshold, grouping.Summary.HighSimilarity),
		},
		grouping,
	)

	return formatter.Output(table)
}

// displayPath shortens a path relative to the working directory when
// possible.
func displayPath(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	if rel, err := filepath.Rel(wd, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

func languagesCmd() *cli.Command {
	return &cli.Command{
		Name:   "languages",
		Usage:  "List supported file extensions and how each is fingerprinted",
		Action: runLanguagesCmd,
	}
}

func runLanguagesCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	registry := buildRegistry(cfg)

	formatter, err := output.NewFormatter(output.ParseFormat(c.String("format")), c.String("output"), true)
	if err != nil {
		return err
	}
	defer formatter.Close()

	entries := registry.Entries()
	var rows [][]string
	for _, e := range entries {
		grammar := string(e.Grammar)
		if grammar == "" {
			if e.Class == lang.ClassStructured {
				grammar = "(token shape only)"
			} else {
				grammar = "-"
			}
		}
		rows = append(rows, []string{"." + e.Ext, string(e.Class), grammar})
	}

	table := output.NewTable(
		"Supported Extensions",
		[]string{"Extension", "Class", "Grammar"},
		rows,
		nil,
		entries,
	)

	return formatter.Output(table)
}

func initCmd() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Create a ditto configuration file with default settings",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   "ditto.toml",
				Usage:   "Output file path",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite existing config file",
			},
		},
		Action: runInitCmd,
	}
}

func runInitCmd(c *cli.Context) error {
	outputPath := c.String("output")

	if _, err := os.Stat(outputPath); err == nil && !c.Bool("force") {
		return fmt.Errorf("config file %q already exists (use --force to overwrite)", outputPath)
	}

	if dir := filepath.Dir(outputPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", dir, err)
		}
	}

	content, err := generateDefaultConfig()
	if err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	color.Green("Created %s", outputPath)
	fmt.Println("Edit this file to customize fingerprinting settings.")
	return nil
}

func generateDefaultConfig() (string, error) {
	cfg := config.DefaultConfig()

	content, err := toml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config to TOML: %w", err)
	}

	var buf strings.Builder
	buf.WriteString("# ditto configuration\n")
	buf.WriteString("# Documentation: https://github.com/siftlab/ditto\n\n")
	buf.Write(content)

	return buf.String(), nil
}

func configCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Inspect and validate configuration",
		Subcommands: []*cli.Command{
			{
				Name:      "validate",
				Usage:     "Validate a config file against the schema",
				ArgsUsage: "<path>",
				Action:    runConfigValidateCmd,
			},
			{
				Name:   "show",
				Usage:  "Print the effective configuration",
				Action: runConfigShowCmd,
			},
		},
	}
}

func runConfigValidateCmd(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		path = c.String("config")
	}
	if path == "" {
		return fmt.Errorf("config validate requires a file argument")
	}

	if err := config.Validate(path); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	formatter, err := output.NewFormatter(output.ParseFormat(c.String("format")), c.String("output"), true)
	if err != nil {
		return err
	}
	defer formatter.Close()

	formatter.Success("%s is valid", path)
	return nil
}

func runConfigShowCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	format := output.ParseFormat(c.String("format"))
	if format == output.FormatText {
		format = output.FormatJSON
	}
	formatter, err := output.NewFormatter(format, c.String("output"), true)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(cfg)
}
