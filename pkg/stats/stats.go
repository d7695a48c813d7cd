// Package stats provides small statistical helpers for similarity
// summaries.
package stats

// Percentile returns the p-th percentile of an ascending-sorted slice,
// or 0 for an empty slice.
func Percentile(sorted []float64, p int) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
