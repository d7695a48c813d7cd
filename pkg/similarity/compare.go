package similarity

import (
	"strings"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/siftlab/ditto/pkg/lang"
	"github.com/siftlab/ditto/pkg/parser"
)

// OverlapResult is the outcome of one pairwise comparison. The
// percentage is always relative to the probe (second) document's line
// count; the computation is asymmetric by design.
type OverlapResult struct {
	OverlapCount      int      `json:"overlap_count"`
	TotalLines        int      `json:"total_lines"`
	OverlapPercentage float64  `json:"overlap_percentage"`
	MatchedLines      []string `json:"overlapping_lines"`
}

// Comparer computes line-fingerprint overlap between two documents of
// one content class. Not safe for concurrent use; create one per
// goroutine.
type Comparer struct {
	norm *Normalizer
}

// NewComparer creates a comparer for the given content class and
// grammar.
func NewComparer(class lang.Class, grammar parser.Language) *Comparer {
	return &Comparer{norm: NewNormalizer(class, grammar)}
}

// Close releases normalizer resources.
func (c *Comparer) Close() {
	c.norm.Close()
}

// Compare indexes every fingerprint of contentA and probes contentB
// line by line. A probe line matches when any of its fingerprints is
// present in the index, and counts exactly once regardless of how many
// of its fingerprints hit. Matched raw lines are returned in probe
// order with duplicates preserved.
func (c *Comparer) Compare(contentA, contentB string) *OverlapResult {
	index := make(map[Fingerprint]string)
	for _, line := range splitLines(contentA) {
		for _, fp := range c.norm.FingerprintLine(line) {
			// Last writer wins; only presence matters downstream.
			index[fp] = line
		}
	}

	probe := splitLines(contentB)
	result := &OverlapResult{
		TotalLines:   len(probe),
		MatchedLines: make([]string, 0),
	}

	for _, line := range probe {
		for _, fp := range c.norm.FingerprintLine(line) {
			if _, ok := index[fp]; ok {
				result.OverlapCount++
				result.MatchedLines = append(result.MatchedLines, line)
				break
			}
		}
	}

	if result.TotalLines > 0 {
		result.OverlapPercentage = float64(result.OverlapCount) / float64(result.TotalLines) * 100
	}
	return result
}

// CompareScalar is the percentage-only variant used for batch
// grouping: the index is a flat fingerprint set with no per-line
// retention. Same matching semantics as Compare.
func (c *Comparer) CompareScalar(contentA, contentB string) (float64, int) {
	set := roaring64.New()
	for _, line := range splitLines(contentA) {
		for _, fp := range c.norm.FingerprintLine(line) {
			set.Add(fp.Key64())
		}
	}

	probe := splitLines(contentB)
	count := 0
	for _, line := range probe {
		for _, fp := range c.norm.FingerprintLine(line) {
			if set.Contains(fp.Key64()) {
				count++
				break
			}
		}
	}

	if len(probe) == 0 {
		return 0, 0
	}
	return float64(count) / float64(len(probe)) * 100, count
}

// splitLines splits newline-delimited content into lines, dropping
// only the empty trailing element left by a final newline.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
