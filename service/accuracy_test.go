package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/setsim/domain"
	"github.com/ludo-technologies/setsim/internal/analyzer"
)

func TestBuildAccuracyReport(t *testing.T) {
	mat, err := analyzer.NewSignatureMatrix(map[string][]int64{
		"a": {1, 2, 3, 4},
		"b": {3, 4, 5, 6},
	}, 64)
	require.NoError(t, err)

	pairs := []domain.SimilarPair{
		{LabelA: "a", LabelB: "b", Similarity: 0.5, Distance: 0.5},
		{LabelA: "a", LabelB: "a", Similarity: 0.9, Distance: 0.1},
	}

	report, err := BuildAccuracyReport(mat, pairs)
	require.NoError(t, err)
	require.Len(t, report.Pairs, 2)

	assert.InDelta(t, 1.0/3.0, report.Pairs[0].Exact, 1e-12)
	assert.InDelta(t, 0.5-1.0/3.0, report.Pairs[0].AbsError, 1e-12)
	assert.Equal(t, 1.0, report.Pairs[1].Exact)
	assert.InDelta(t, 0.1, report.Pairs[1].AbsError, 1e-12)

	assert.InDelta(t, (0.5-1.0/3.0+0.1)/2, report.MeanAbsError, 1e-12)
	assert.InDelta(t, 0.5-1.0/3.0, report.MaxAbsError, 1e-12)
	assert.Greater(t, report.StdDevAbsError, 0.0)
}

func TestBuildAccuracyReport_SinglePairAndEmpty(t *testing.T) {
	mat, err := analyzer.NewSignatureMatrix(map[string][]int64{"a": {1}, "b": {1}}, 8)
	require.NoError(t, err)

	report, err := BuildAccuracyReport(mat, nil)
	require.NoError(t, err)
	assert.Empty(t, report.Pairs)

	report, err = BuildAccuracyReport(mat, []domain.SimilarPair{{LabelA: "a", LabelB: "b", Similarity: 1}})
	require.NoError(t, err)
	assert.Equal(t, 0.0, report.StdDevAbsError)
	assert.Equal(t, 0.0, report.MeanAbsError)
}

func TestBuildAccuracyReport_UnknownLabel(t *testing.T) {
	mat, err := analyzer.NewSignatureMatrix(map[string][]int64{"a": {1}}, 8)
	require.NoError(t, err)

	_, err = BuildAccuracyReport(mat, []domain.SimilarPair{{LabelA: "a", LabelB: "zzz"}})
	assert.True(t, domain.IsCode(err, domain.ErrCodeInvalidInput))
}
