// Package scoring computes the semantic and numeric role score series and
// fuses them into one ranked recommendation list.
package scoring

import (
	"fmt"
	"math"
	"sort"
)

// normalizeEpsilon keeps the degenerate all-equal normalization away from a
// division by zero while still producing a flat, low-confidence series.
const normalizeEpsilon = 1e-9

// Series maps a role name to its score.
type Series map[string]float64

// Normalize min-max scales the series to [0,1]. When every value is equal the
// values are divided by (max + epsilon) instead, yielding a flat series
// rather than NaN.
func (s Series) Normalize() Series {
	if len(s) == 0 {
		return Series{}
	}

	minVal := math.Inf(1)
	maxVal := math.Inf(-1)
	for _, value := range s {
		minVal = math.Min(minVal, value)
		maxVal = math.Max(maxVal, value)
	}

	normalized := make(Series, len(s))
	if maxVal == minVal {
		for role, value := range s {
			normalized[role] = value / (maxVal + normalizeEpsilon)
		}
		return normalized
	}

	for role, value := range s {
		normalized[role] = (value - minVal) / (maxVal - minVal)
	}
	return normalized
}

// Roles returns the role names in alphabetical order.
func (s Series) Roles() []string {
	roles := make([]string, 0, len(s))
	for role := range s {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles
}

// Cosine returns the cosine similarity of two equal-length vectors. A zero
// vector on either side yields 0.
func Cosine(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector length mismatch: %d vs %d", len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// Cosine32 is Cosine over float32 vectors, as produced by the embedder.
func Cosine32(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector length mismatch: %d vs %d", len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
