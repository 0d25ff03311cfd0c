package analyzer

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/setsim/domain"
)

func buildMatrix(t *testing.T, sets map[string][]int64, totalHashes int, opts ...MinHasherOption) *SignatureMatrix {
	t.Helper()
	hasher, err := NewMinHasher(nil, totalHashes, opts...)
	require.NoError(t, err)
	mat, err := hasher.Build(context.Background(), domain.NewDataset(sets))
	require.NoError(t, err)
	return mat
}

func TestIntersectionCount(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []uint64
		expected int
	}{
		{"identical", []uint64{1, 2, 3}, []uint64{1, 2, 3}, 3},
		{"disjoint", []uint64{1, 2, 3}, []uint64{4, 5, 6}, 0},
		{"partial", []uint64{1, 2, 3, 4}, []uint64{1, 9, 3, 9}, 2},
		{"positional", []uint64{1, 2}, []uint64{2, 1}, 0},
		{"empty", []uint64{}, []uint64{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := IntersectionCount(NewSignature(tt.a), NewSignature(tt.b))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, n)

			reverse, err := IntersectionCount(NewSignature(tt.b), NewSignature(tt.a))
			require.NoError(t, err)
			assert.Equal(t, n, reverse)
		})
	}
}

func TestIntersectionCount_ShapeMismatch(t *testing.T) {
	_, err := IntersectionCount(NewSignature([]uint64{1, 2}), NewSignature([]uint64{1, 2, 3}))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrShapeMismatch)
	assert.True(t, domain.IsCode(err, domain.ErrCodeShapeMismatch))
}

func TestSimilarity(t *testing.T) {
	sim, err := Similarity(NewSignature([]uint64{1, 2, 3, 4}), NewSignature([]uint64{1, 0, 3, 0}))
	require.NoError(t, err)
	assert.Equal(t, 0.5, sim)

	_, err = Similarity(NewSignature([]uint64{1}), NewSignature([]uint64{1, 2}))
	assert.ErrorIs(t, err, domain.ErrShapeMismatch)

	_, err = Similarity(NewSignature(nil), NewSignature(nil))
	assert.ErrorIs(t, err, domain.ErrInvalidTotalHashes)
}

func TestSimilarity_UndefinedSignature(t *testing.T) {
	mat := buildMatrix(t, map[string][]int64{"X": {}, "Y": {1}, "Z": {}}, 16)

	x, ok := mat.RowByLabel("X")
	require.True(t, ok)
	y, _ := mat.RowByLabel("Y")
	z, _ := mat.RowByLabel("Z")

	// the sentinel rows are equal in every column, still no similarity is reported
	n, err := IntersectionCount(x, z)
	require.NoError(t, err)
	assert.Equal(t, 16, n)

	_, err = Similarity(x, z)
	assert.ErrorIs(t, err, domain.ErrUndefinedSignature)
	_, err = Similarity(y, x)
	assert.ErrorIs(t, err, domain.ErrUndefinedSignature)

	_, err = Similarity(UndefinedSignature(4), NewSignature([]uint64{1, 2, 3, 4}))
	assert.True(t, domain.IsCode(err, domain.ErrCodeUndefinedSignature))

	_, err = mat.SimilarityOf("X", "Z")
	assert.ErrorIs(t, err, domain.ErrUndefinedSignature)
}

func TestSimilarPairs_EndToEnd(t *testing.T) {
	mat := buildMatrix(t, map[string][]int64{
		"A": {1, 2, 3},
		"B": {1, 2, 3},
		"C": {4, 5, 6},
	}, 200)

	simAB, err := mat.SimilarityOf("A", "B")
	require.NoError(t, err)
	assert.Equal(t, 1.0, simAB)

	simAC, err := mat.SimilarityOf("A", "C")
	require.NoError(t, err)
	assert.InDelta(t, 0.0, simAC, 0.02)

	simBC, err := mat.SimilarityOf("B", "C")
	require.NoError(t, err)
	assert.InDelta(t, 0.0, simBC, 0.02)

	pairs := mat.SimilarPairs(0.1)
	require.Len(t, pairs, 1)
	assert.Equal(t, "A", pairs[0].LabelA)
	assert.Equal(t, "B", pairs[0].LabelB)
	assert.Equal(t, 0.0, pairs[0].Distance)
	assert.Equal(t, 200, pairs[0].Intersections)

	assert.Len(t, mat.SimilarPairs(0.0), 1)
	assert.Len(t, mat.SimilarPairs(1.0), 3)
}

func TestSimilarPairs_OrderFollowsKeyOrder(t *testing.T) {
	mat := buildMatrix(t, map[string][]int64{
		"d": {1}, "b": {1}, "a": {1}, "c": {1},
	}, 16)

	pairs := mat.SimilarPairs(1.0)

	var got []string
	for _, p := range pairs {
		got = append(got, p.LabelA+p.LabelB)
	}
	assert.Equal(t, []string{"ab", "ac", "ad", "bc", "bd", "cd"}, got)
}

func TestSimilarPairs_NegativeThreshold(t *testing.T) {
	mat := buildMatrix(t, map[string][]int64{"a": {1}, "b": {1}}, 8)

	assert.Empty(t, mat.SimilarPairs(-0.1))
}

func TestSimilarPairsParallel_MatchesSequential(t *testing.T) {
	sets := make(map[string][]int64)
	for i := 0; i < 30; i++ {
		sets[fmt.Sprintf("set-%02d", i)] = []int64{int64(i % 5), int64(i % 7), int64(i % 3), 100}
	}
	mat := buildMatrix(t, sets, 64)

	for _, threshold := range []float64{0.0, 0.3, 0.7, 1.0} {
		par, err := mat.SimilarPairsParallel(context.Background(), threshold, 4)
		require.NoError(t, err)
		assert.Equal(t, mat.SimilarPairs(threshold), par, "threshold %v", threshold)
	}
}

func TestSimilarPairsParallel_Cancelled(t *testing.T) {
	mat := buildMatrix(t, map[string][]int64{"a": {1}, "b": {2}}, 8)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := mat.SimilarPairsParallel(ctx, 1.0, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEmptySet_ExcludePolicy(t *testing.T) {
	mat := buildMatrix(t, map[string][]int64{"X": {}, "Y": {1}}, 50)

	assert.Equal(t, []string{"X"}, mat.EmptyLabels())
	row, ok := mat.RowByLabel("X")
	require.True(t, ok)
	assert.False(t, row.Defined())
	for _, v := range row.Values() {
		assert.Equal(t, uint64(math.MaxUint64), v)
	}

	_, err := mat.SimilarityOf("X", "Y")
	assert.ErrorIs(t, err, domain.ErrUndefinedSignature)
	assert.Empty(t, mat.SimilarPairs(1.0))
	assert.Equal(t, 0, mat.PairCount())
}

func TestEmptySet_SentinelPolicy(t *testing.T) {
	mat := buildMatrix(t, map[string][]int64{"X": {}, "Y": {1}, "Z": {}}, 50,
		WithEmptySetPolicy(domain.EmptySetSentinel))

	simXY, err := mat.SimilarityOf("X", "Y")
	require.NoError(t, err)
	assert.Equal(t, 0.0, simXY)

	// two empty sets share the all-MaxUint64 row
	simXZ, err := mat.SimilarityOf("X", "Z")
	require.NoError(t, err)
	assert.Equal(t, 1.0, simXZ)

	pairs := mat.SimilarPairs(0.0)
	require.Len(t, pairs, 1)
	assert.Equal(t, "X", pairs[0].LabelA)
	assert.Equal(t, "Z", pairs[0].LabelB)
	assert.Equal(t, 3, mat.PairCount())
}

func TestSimilarityOf_UnknownLabel(t *testing.T) {
	mat := buildMatrix(t, map[string][]int64{"a": {1}}, 8)

	_, err := mat.SimilarityOf("a", "nope")
	assert.True(t, domain.IsCode(err, domain.ErrCodeInvalidInput))
	_, err = mat.SimilarityOf("nope", "a")
	assert.True(t, domain.IsCode(err, domain.ErrCodeInvalidInput))
}

func TestWriteSimilarities_MatchesSimilarPairs(t *testing.T) {
	mat := buildMatrix(t, map[string][]int64{
		"A": {1, 2, 3},
		"B": {1, 2, 3},
		"C": {4, 5, 6},
	}, 200)

	var buf bytes.Buffer
	require.NoError(t, mat.WriteSimilarities(&buf, 0.1))

	assert.Equal(t, "0 ;- A ;- B\n", buf.String())
	assert.Equal(t, []string{"0 ;- A ;- B"}, mat.Similarities(0.1))

	buf.Reset()
	require.NoError(t, mat.WriteSimilarities(&buf, 1.0))
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Equal(t, mat.Similarities(1.0), lines)
}

func TestDump(t *testing.T) {
	family := HashFamilyFunc(func(value int64, seed int) uint64 {
		return uint64(value*10) + uint64(seed)
	})
	hasher, err := NewMinHasher(family, 3)
	require.NoError(t, err)
	mat, err := hasher.Build(context.Background(), domain.NewDataset(map[string][]int64{
		"a": {2, 1},
		"b": {5},
	}))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, mat.Dump(&buf))

	assert.Equal(t, "10 ; 11 ; 12 ; \n50 ; 51 ; 52 ; \n", buf.String())
}

func TestEstimatorConvergence(t *testing.T) {
	a := make([]int64, 0, 100)
	b := make([]int64, 0, 100)
	for i := int64(1); i <= 100; i++ {
		a = append(a, i)
		b = append(b, i+50)
	}
	exact, ok := ExactJaccard(a, b)
	require.True(t, ok)
	require.InDelta(t, 1.0/3.0, exact, 1e-12)

	for _, name := range domain.HashFamilyNames {
		t.Run(name, func(t *testing.T) {
			family, err := NewHashFamily(name, 1000)
			require.NoError(t, err)
			hasher, err := NewMinHasher(family, 1000)
			require.NoError(t, err)

			sim, err := Similarity(hasher.ComputeSignature(a), hasher.ComputeSignature(b))
			require.NoError(t, err)
			assert.InDelta(t, exact, sim, 0.05)
		})
	}
}
