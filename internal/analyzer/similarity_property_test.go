package analyzer

import (
	"context"
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"github.com/ludo-technologies/setsim/domain"
)

func drawDataset(t *rapid.T, minSize int) map[string][]int64 {
	k := rapid.IntRange(0, 8).Draw(t, "labels")
	sets := make(map[string][]int64, k)
	for i := 0; i < k; i++ {
		sets[fmt.Sprintf("L%d", i)] = rapid.SliceOfN(rapid.Int64Range(-20, 20), minSize, 12).
			Draw(t, fmt.Sprintf("elems%d", i))
	}
	return sets
}

func drawMatrix(t *rapid.T, minSize int) *SignatureMatrix {
	sets := drawDataset(t, minSize)
	total := rapid.IntRange(1, 64).Draw(t, "totalHashes")
	hasher, err := NewMinHasher(nil, total, WithEmptySetPolicy(domain.EmptySetSentinel))
	if err != nil {
		t.Fatalf("NewMinHasher: %v", err)
	}
	mat, err := hasher.Build(context.Background(), domain.NewDataset(sets))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return mat
}

// TestPropertyMatrixShape verifies one row per label and totalHashes columns per row.
func TestPropertyMatrixShape(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		sets := drawDataset(t, 0)
		total := rapid.IntRange(1, 64).Draw(t, "totalHashes")

		mat, err := NewSignatureMatrix(sets, total)
		if err != nil {
			t.Fatalf("NewSignatureMatrix: %v", err)
		}
		if mat.Len() != len(sets) {
			t.Fatalf("rows = %d, want %d", mat.Len(), len(sets))
		}
		for i, row := range mat.Rows() {
			if len(row) != total {
				t.Fatalf("row %d has %d columns, want %d", i, len(row), total)
			}
		}
	})
}

// TestPropertyIntersectionSymmetric verifies intersectionCount(a,b) == intersectionCount(b,a).
func TestPropertyIntersectionSymmetric(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 32).Draw(t, "n")
		a := rapid.SliceOfN(rapid.Uint64Range(0, 4), n, n).Draw(t, "a")
		b := rapid.SliceOfN(rapid.Uint64Range(0, 4), n, n).Draw(t, "b")

		ab, err := IntersectionCount(NewSignature(a), NewSignature(b))
		if err != nil {
			t.Fatalf("IntersectionCount: %v", err)
		}
		ba, err := IntersectionCount(NewSignature(b), NewSignature(a))
		if err != nil {
			t.Fatalf("IntersectionCount: %v", err)
		}
		if ab != ba {
			t.Fatalf("asymmetric: %d vs %d", ab, ba)
		}
	})
}

// TestPropertySimilarityInUnitInterval verifies similarity(a,b) ∈ [0,1].
func TestPropertySimilarityInUnitInterval(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		mat := drawMatrix(t, 0)
		labels := mat.Labels()
		for i := 0; i < mat.Len(); i++ {
			for j := 0; j < mat.Len(); j++ {
				sim, err := mat.SimilarityOf(labels[i], labels[j])
				if err != nil {
					t.Fatalf("SimilarityOf: %v", err)
				}
				if sim < 0 || sim > 1 {
					t.Fatalf("similarity %v out of range", sim)
				}
			}
		}
	})
}

// TestPropertyThresholdOneReturnsAllPairs verifies threshold 1.0 yields C(K,2) pairs.
func TestPropertyThresholdOneReturnsAllPairs(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		mat := drawMatrix(t, 1)
		k := mat.Len()

		pairs := mat.SimilarPairs(1.0)
		if len(pairs) != k*(k-1)/2 {
			t.Fatalf("got %d pairs, want %d", len(pairs), k*(k-1)/2)
		}
	})
}

// TestPropertyThresholdZeroReturnsIdenticalRows verifies threshold 0.0 yields only rows equal in every column.
func TestPropertyThresholdZeroReturnsIdenticalRows(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		mat := drawMatrix(t, 0)
		rows := mat.Rows()
		labels := mat.Labels()
		index := make(map[string]int, len(labels))
		for i, l := range labels {
			index[l] = i
		}

		want := 0
		for i := range rows {
			for j := i + 1; j < len(rows); j++ {
				if equalRows(rows[i], rows[j]) {
					want++
				}
			}
		}

		pairs := mat.SimilarPairs(0.0)
		if len(pairs) != want {
			t.Fatalf("got %d pairs, want %d", len(pairs), want)
		}
		for _, p := range pairs {
			if !equalRows(rows[index[p.LabelA]], rows[index[p.LabelB]]) {
				t.Fatalf("pair %s/%s reported with unequal rows", p.LabelA, p.LabelB)
			}
		}
	})
}

// TestPropertyParallelPairsDeterministic verifies parallel enumeration keeps key order.
func TestPropertyParallelPairsDeterministic(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		mat := drawMatrix(t, 0)
		threshold := rapid.Float64Range(0, 1).Draw(t, "threshold")
		workers := rapid.IntRange(1, 6).Draw(t, "workers")

		par, err := mat.SimilarPairsParallel(context.Background(), threshold, workers)
		if err != nil {
			t.Fatalf("SimilarPairsParallel: %v", err)
		}
		seq := mat.SimilarPairs(threshold)
		if len(par) != len(seq) {
			t.Fatalf("parallel returned %d pairs, sequential %d", len(par), len(seq))
		}
		for i := range seq {
			if par[i] != seq[i] {
				t.Fatalf("pair %d differs: %v vs %v", i, par[i], seq[i])
			}
		}
	})
}

func equalRows(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
