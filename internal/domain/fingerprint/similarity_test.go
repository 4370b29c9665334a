package fingerprint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/molprint/internal/domain/fingerprint"
	"github.com/turtacn/molprint/pkg/errors"
	"github.com/turtacn/molprint/pkg/matrix"
)

func TestSimilarity(t *testing.T) {
	t.Parallel()

	a := []uint32{1, 1, 0, 1, 0}
	b := []uint32{1, 0, 0, 1, 1}
	tests := []struct {
		metric fingerprint.SimilarityMetric
		a, b   []uint32
		want   float64
	}{
		{fingerprint.MetricTanimoto, a, b, 2.0 / 4.0},
		{fingerprint.MetricDice, a, b, 4.0 / 6.0},
		{fingerprint.MetricCosine, a, b, 2.0 / 3.0},
		{fingerprint.MetricTanimoto, a, a, 1},
		{fingerprint.MetricTanimoto, []uint32{0, 0}, []uint32{0, 0}, 0},
		{fingerprint.MetricCosine, []uint32{0, 0}, []uint32{1, 0}, 0},
		// counts: min sums 1+2, max sums 3+2
		{fingerprint.MetricTanimoto, []uint32{3, 2}, []uint32{1, 2}, 3.0 / 5.0},
	}
	for _, tt := range tests {
		got, err := fingerprint.Similarity(tt.metric, tt.a, tt.b)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, got, 1e-12, "%s %v %v", tt.metric, tt.a, tt.b)
	}

	_, err := fingerprint.Similarity(fingerprint.MetricTanimoto, a, a[:3])
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

func TestParseSimilarityMetric(t *testing.T) {
	t.Parallel()

	m, err := fingerprint.ParseSimilarityMetric(" Tanimoto ")
	require.NoError(t, err)
	assert.Equal(t, fingerprint.MetricTanimoto, m)
	assert.Len(t, fingerprint.Metrics(), 3)

	_, err = fingerprint.ParseSimilarityMetric("euclid")
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

func TestClassifySimilarity(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "identical", fingerprint.ClassifySimilarity(1))
	assert.Equal(t, "high", fingerprint.ClassifySimilarity(0.9))
	assert.Equal(t, "moderate", fingerprint.ClassifySimilarity(0.7))
	assert.Equal(t, "low", fingerprint.ClassifySimilarity(0.5))
	assert.Equal(t, "dissimilar", fingerprint.ClassifySimilarity(0.1))
}

func TestRank(t *testing.T) {
	t.Parallel()

	m := matrix.NewDense[uint8](4, 3)
	for i, row := range [][]uint8{{1, 0, 0}, {1, 1, 1}, {0, 0, 1}, {1, 1, 0}} {
		for j, v := range row {
			m.Set(i, j, v)
		}
	}
	query := []uint32{1, 1, 0}

	hits, err := fingerprint.Rank(fingerprint.MetricTanimoto, m, query, 0, 0)
	require.NoError(t, err)
	require.Len(t, hits, 4)
	assert.Equal(t, []int{3, 1, 0, 2}, []int{hits[0].Index, hits[1].Index, hits[2].Index, hits[3].Index})
	assert.InDelta(t, 1.0, hits[0].Score, 1e-12)

	// row 2 scores 0 and falls below the threshold
	hits, err = fingerprint.Rank(fingerprint.MetricTanimoto, m, query, 0.5, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, 3, hits[0].Index)
	assert.Equal(t, 1, hits[1].Index)

	_, err = fingerprint.Rank(fingerprint.MetricTanimoto, m, []uint32{1}, 0, 0)
	assert.Error(t, err)

	csr := matrix.NewCSR[uint8](3)
	csr.AppendRow([]uint8{1, 0, 0})
	csr.AppendZeroRow()
	hits, err = fingerprint.Rank(fingerprint.MetricDice, csr, query, 0.1, 0)
	require.NoError(t, err)
	assert.Equal(t, []fingerprint.Hit{{Index: 0, Score: 2.0 / 3.0}}, hits)
}
