package similarity

import (
	"context"
	"errors"
	"sort"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"gonum.org/v1/gonum/stat"

	"github.com/siftlab/ditto/internal/docproc"
	"github.com/siftlab/ditto/pkg/lang"
	"github.com/siftlab/ditto/pkg/parser"
	"github.com/siftlab/ditto/pkg/stats"
)

// ErrNoDocuments reports a batch grouping call with an empty document
// set. Rejected outright rather than answered best-effort.
var ErrNoDocuments = errors.New("no documents to group")

// Document is one batch member: an origin identifier plus its raw
// text. All documents in a batch share one content class.
type Document struct {
	ID   string
	Text string
}

// Edge is one scored unordered pair of documents.
type Edge struct {
	IDA        string  `json:"id_a"`
	IDB        string  `json:"id_b"`
	Percentage float64 `json:"percentage"`
	Count      int     `json:"count"`
}

// Summary aggregates the similarity distribution of a grouping.
type Summary struct {
	TotalDocuments int     `json:"total_documents"`
	TotalEdges     int     `json:"total_edges"`
	MeanPercentage float64 `json:"mean_percentage"`
	StdDev         float64 `json:"std_dev"`
	P50            float64 `json:"p50"`
	P95            float64 `json:"p95"`
	HighSimilarity int     `json:"high_similarity"`
}

// Grouping is a ranked batch comparison result.
type Grouping struct {
	Edges   []Edge  `json:"grouped_files"`
	Summary Summary `json:"summary"`
}

// Grouper scores every unordered document pair of a batch and ranks
// the pairs by descending overlap percentage.
type Grouper struct {
	class     lang.Class
	grammar   parser.Language
	workers   int
	highlight float64
	progress  docproc.ProgressFunc
}

// GrouperOption configures a Grouper.
type GrouperOption func(*Grouper)

// WithWorkers sets the worker count for fingerprint precomputation and
// pair scoring (0 = 2x NumCPU).
func WithWorkers(n int) GrouperOption {
	return func(g *Grouper) { g.workers = n }
}

// WithHighlightThreshold sets the percentage at and above which an
// edge counts toward Summary.HighSimilarity.
func WithHighlightThreshold(pct float64) GrouperOption {
	return func(g *Grouper) { g.highlight = pct }
}

// WithProgress sets a callback invoked once per document during
// fingerprint precomputation.
func WithProgress(fn docproc.ProgressFunc) GrouperOption {
	return func(g *Grouper) { g.progress = fn }
}

// NewGrouper creates a grouper for the given content class and grammar.
func NewGrouper(class lang.Class, grammar parser.Language, opts ...GrouperOption) *Grouper {
	g := &Grouper{
		class:     class,
		grammar:   grammar,
		highlight: 80,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// docPrints is the memoized fingerprint state of one document:
// per-line fingerprint keys for the probe side and a flat set for the
// index side. Computed once per document, reused across all its pairs.
type docPrints struct {
	lineKeys [][]uint64
	set      *roaring64.Bitmap
}

// Group scores all N*(N-1)/2 unordered pairs and returns the edges
// sorted by descending percentage. The sort is stable: equal
// percentages keep the lexicographic order of index pairs in which
// they were generated.
func (g *Grouper) Group(ctx context.Context, docs []Document) (*Grouping, error) {
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}

	prints, err := docproc.MapIndexed(ctx, docs, g.workers, func(_ int, doc Document) *docPrints {
		norm := NewNormalizer(g.class, g.grammar)
		defer norm.Close()

		lines := splitLines(doc.Text)
		dp := &docPrints{
			lineKeys: make([][]uint64, len(lines)),
			set:      roaring64.New(),
		}
		for i, line := range lines {
			fps := norm.FingerprintLine(line)
			keys := make([]uint64, len(fps))
			for j, fp := range fps {
				keys[j] = fp.Key64()
				dp.set.Add(keys[j])
			}
			dp.lineKeys[i] = keys
		}
		return dp
	}, g.progress)
	if err != nil {
		return nil, err
	}

	// Pairs in lexicographic (i, j) order, i < j; scored in parallel
	// into index-aligned slots so the generated order is deterministic.
	n := len(docs)
	type pairIdx struct{ i, j int }
	pairs := make([]pairIdx, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs = append(pairs, pairIdx{i, j})
		}
	}

	edges, err := docproc.MapIndexed(ctx, pairs, g.workers, func(_ int, pair pairIdx) Edge {
		pct, count := scorePair(prints[pair.i], prints[pair.j])
		return Edge{
			IDA:        docs[pair.i].ID,
			IDB:        docs[pair.j].ID,
			Percentage: pct,
			Count:      count,
		}
	}, nil)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(edges, func(a, b int) bool {
		return edges[a].Percentage > edges[b].Percentage
	})

	return &Grouping{
		Edges:   edges,
		Summary: g.summarize(len(docs), edges),
	}, nil
}

// scorePair counts probe-side lines of b whose fingerprint set
// intersects a's index set. Same semantics as Comparer.CompareScalar,
// off memoized fingerprints.
func scorePair(a, b *docPrints) (float64, int) {
	total := len(b.lineKeys)
	if total == 0 {
		return 0, 0
	}

	count := 0
	for _, keys := range b.lineKeys {
		for _, key := range keys {
			if a.set.Contains(key) {
				count++
				break
			}
		}
	}
	return float64(count) / float64(total) * 100, count
}

func (g *Grouper) summarize(docCount int, edges []Edge) Summary {
	s := Summary{
		TotalDocuments: docCount,
		TotalEdges:     len(edges),
	}
	if len(edges) == 0 {
		return s
	}

	pcts := make([]float64, len(edges))
	for i, e := range edges {
		pcts[i] = e.Percentage
		if e.Percentage >= g.highlight {
			s.HighSimilarity++
		}
	}

	s.MeanPercentage = stat.Mean(pcts, nil)
	if len(pcts) > 1 {
		s.StdDev = stat.StdDev(pcts, nil)
	}

	sorted := make([]float64, len(pcts))
	copy(sorted, pcts)
	sort.Float64s(sorted)
	s.P50 = stats.Percentile(sorted, 50)
	s.P95 = stats.Percentile(sorted, 95)

	return s
}
