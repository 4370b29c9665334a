package fingerprint

import (
	"math"
	"sort"
	"strings"

	"github.com/turtacn/molprint/pkg/errors"
	"github.com/turtacn/molprint/pkg/matrix"
)

// SimilarityMetric selects how two fingerprint rows are compared.
type SimilarityMetric string

const (
	MetricTanimoto SimilarityMetric = "tanimoto"
	MetricDice     SimilarityMetric = "dice"
	MetricCosine   SimilarityMetric = "cosine"
)

// Metrics lists every supported similarity metric.
func Metrics() []SimilarityMetric {
	return []SimilarityMetric{MetricTanimoto, MetricDice, MetricCosine}
}

// ParseSimilarityMetric parses a metric name, ignoring case.
func ParseSimilarityMetric(s string) (SimilarityMetric, error) {
	m := SimilarityMetric(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case MetricTanimoto, MetricDice, MetricCosine:
		return m, nil
	}
	return "", errors.InvalidParam("unsupported similarity metric").WithDetail(s)
}

// Similarity scores a and b in [0, 1]. Count vectors use the generalized
// forms (sum of minima over sum of maxima for Tanimoto); on bit vectors
// these reduce to the usual set formulas. Two empty rows score 0.
func Similarity(metric SimilarityMetric, a, b []uint32) (float64, error) {
	if len(a) != len(b) {
		return 0, errors.Newf(errors.CodeInvalidParam, "fingerprint widths differ: %d vs %d", len(a), len(b))
	}

	switch metric {
	case MetricTanimoto:
		var sumMin, sumMax uint64
		for i := range a {
			sumMin += uint64(min(a[i], b[i]))
			sumMax += uint64(max(a[i], b[i]))
		}
		if sumMax == 0 {
			return 0, nil
		}
		return float64(sumMin) / float64(sumMax), nil

	case MetricDice:
		var sumMin, total uint64
		for i := range a {
			sumMin += uint64(min(a[i], b[i]))
			total += uint64(a[i]) + uint64(b[i])
		}
		if total == 0 {
			return 0, nil
		}
		return 2 * float64(sumMin) / float64(total), nil

	case MetricCosine:
		var dot, normA, normB float64
		for i := range a {
			fa, fb := float64(a[i]), float64(b[i])
			dot += fa * fb
			normA += fa * fa
			normB += fb * fb
		}
		if normA == 0 || normB == 0 {
			return 0, nil
		}
		return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
	}
	return 0, errors.InvalidParam("unsupported similarity metric").WithDetail(string(metric))
}

// Similarity thresholds used by ClassifySimilarity.
const (
	ThresholdIdentical          = 0.99
	ThresholdHighSimilarity     = 0.85
	ThresholdModerateSimilarity = 0.70
	ThresholdLowSimilarity      = 0.50
)

// ClassifySimilarity returns a classification label for a similarity score.
func ClassifySimilarity(score float64) string {
	switch {
	case score >= ThresholdIdentical:
		return "identical"
	case score >= ThresholdHighSimilarity:
		return "high"
	case score >= ThresholdModerateSimilarity:
		return "moderate"
	case score >= ThresholdLowSimilarity:
		return "low"
	}
	return "dissimilar"
}

// Hit is one ranked row of a similarity search.
type Hit struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// Rank scores every row of m against query and returns the rows scoring at
// least threshold, best first. Ties keep row order. limit <= 0 returns all
// hits.
func Rank(metric SimilarityMetric, m matrix.Matrix, query []uint32, threshold float64, limit int) ([]Hit, error) {
	if len(query) != m.Cols() {
		return nil, errors.Newf(errors.CodeInvalidParam, "query width %d does not match matrix width %d", len(query), m.Cols())
	}
	hits := make([]Hit, 0, m.Rows())
	for i := 0; i < m.Rows(); i++ {
		score, err := Similarity(metric, query, matrix.RowValues(m, i))
		if err != nil {
			return nil, err
		}
		if score >= threshold {
			hits = append(hits, Hit{Index: i, Score: score})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}
