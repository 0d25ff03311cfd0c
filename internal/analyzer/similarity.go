package analyzer

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/ludo-technologies/setsim/domain"
)

// IntersectionCount counts the columns in which a and b agree.
// Both signatures must have the same length.
func IntersectionCount(a, b Signature) (int, error) {
	if a.Len() != b.Len() {
		return 0, domain.NewShapeMismatchError(a.Len(), b.Len())
	}
	return countEqual(a.values, b.values), nil
}

// Similarity estimates the Jaccard similarity of the sets behind a and b
// as IntersectionCount(a, b) / len(a). The result lies in [0, 1].
// An undefined signature is an error; sentinel comparisons go through the matrix.
func Similarity(a, b Signature) (float64, error) {
	n, err := IntersectionCount(a, b)
	if err != nil {
		return 0, err
	}
	if !a.Defined() || !b.Defined() {
		return 0, domain.NewUndefinedSignatureError("")
	}
	if a.Len() == 0 {
		return 0, domain.NewInvalidTotalHashesError(0)
	}
	return float64(n) / float64(a.Len()), nil
}

func countEqual(a, b []uint64) int {
	sum := 0
	for i := range a {
		if a[i] == b[i] {
			sum++
		}
	}
	return sum
}

// SimilarityOf estimates the similarity of two labels under the matrix's empty set policy.
func (m *SignatureMatrix) SimilarityOf(labelA, labelB string) (float64, error) {
	i, ok := m.index[labelA]
	if !ok {
		return 0, domain.NewInvalidInputError(fmt.Sprintf("unknown label %q", labelA), nil)
	}
	j, ok := m.index[labelB]
	if !ok {
		return 0, domain.NewInvalidInputError(fmt.Sprintf("unknown label %q", labelB), nil)
	}
	if m.policy != domain.EmptySetSentinel {
		if !m.defined[i] {
			return 0, domain.NewUndefinedSignatureError(labelA)
		}
		if !m.defined[j] {
			return 0, domain.NewUndefinedSignatureError(labelB)
		}
	}
	return m.similarity(i, j), nil
}

func (m *SignatureMatrix) similarity(i, j int) float64 {
	return float64(countEqual(m.rows[i], m.rows[j])) / float64(m.totalHashes)
}

func (m *SignatureMatrix) comparable(i, j int) bool {
	if m.policy == domain.EmptySetSentinel {
		return true
	}
	return m.defined[i] && m.defined[j]
}

// pairsForRow collects the pairs (i, j>i) whose distance is within threshold.
func (m *SignatureMatrix) pairsForRow(i int, threshold float64) []domain.SimilarPair {
	var out []domain.SimilarPair
	for j := i + 1; j < len(m.rows); j++ {
		if !m.comparable(i, j) {
			continue
		}
		n := countEqual(m.rows[i], m.rows[j])
		sim := float64(n) / float64(m.totalHashes)
		if dist := 1 - sim; dist <= threshold {
			out = append(out, domain.SimilarPair{
				Distance:      dist,
				LabelA:        m.labels[i],
				LabelB:        m.labels[j],
				Similarity:    sim,
				Intersections: n,
			})
		}
	}
	return out
}

// SimilarPairs returns every pair of distinct labels (i before j in key order)
// whose estimated distance 1 - similarity is at most threshold, in nested
// enumeration order.
func (m *SignatureMatrix) SimilarPairs(threshold float64) []domain.SimilarPair {
	var out []domain.SimilarPair
	for i := range m.rows {
		out = append(out, m.pairsForRow(i, threshold)...)
	}
	return out
}

// SimilarPairsParallel computes the same result as SimilarPairs with outer
// rows fanned out over workers. Zero workers means GOMAXPROCS.
func (m *SignatureMatrix) SimilarPairsParallel(ctx context.Context, threshold float64, workers int) ([]domain.SimilarPair, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	perRow := make([][]domain.SimilarPair, len(m.rows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range m.rows {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			perRow[i] = m.pairsForRow(i, threshold)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, domain.NewAnalysisError("pair enumeration cancelled", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, domain.NewAnalysisError("pair enumeration cancelled", err)
	}

	var out []domain.SimilarPair
	for _, pairs := range perRow {
		out = append(out, pairs...)
	}
	return out, nil
}

// Similarities returns the similar pairs rendered as "<distance> ;- <a> ;- <b>".
func (m *SignatureMatrix) Similarities(threshold float64) []string {
	pairs := m.SimilarPairs(threshold)
	lines := make([]string, len(pairs))
	for i, p := range pairs {
		lines[i] = p.String()
	}
	return lines
}

// WriteSimilarities writes the similar pairs to w, one line per pair,
// in the same order as SimilarPairs.
func (m *SignatureMatrix) WriteSimilarities(w io.Writer, threshold float64) error {
	bw := bufio.NewWriter(w)
	for i := range m.rows {
		for _, p := range m.pairsForRow(i, threshold) {
			if _, err := bw.WriteString(p.String()); err != nil {
				return err
			}
			if err := bw.WriteByte('\n'); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// PairCount returns the number of pairs SimilarPairs compares
func (m *SignatureMatrix) PairCount() int {
	n := 0
	for i := range m.rows {
		for j := i + 1; j < len(m.rows); j++ {
			if m.comparable(i, j) {
				n++
			}
		}
	}
	return n
}
