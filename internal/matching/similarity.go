package matching

import "math"

// Vectors of different lengths score mismatchPerDim per element of the
// shorter one, at most mismatchCeiling.
const (
	mismatchPerDim  = 0.0001
	mismatchCeiling = 0.3
)

// EnhancedSimilarity returns cosine similarity stretched away from the
// middle so weighted sums discriminate better:
//
//	c >= 0.5: 0.5 + 0.5*((c-0.5)*2)^1.8
//	c <  0.5: 0.5*(c*2)^1.4
//
// Empty or zero-magnitude vectors score 0. Vectors of different lengths
// score a small value proportional to the shorter length, at most 0.3.
// Negative cosine values are treated as 0.
func EnhancedSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(a) != len(b) {
		return math.Min(mismatchCeiling, mismatchPerDim*float64(min(len(a), len(b))))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	c := clamp01(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
	if c >= 0.5 {
		return clamp01(0.5 + 0.5*math.Pow((c-0.5)*2, 1.8))
	}
	return clamp01(0.5 * math.Pow(c*2, 1.4))
}

// clamp01 bounds v to [0,1], mapping NaN to 0.
func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// pow is math.Pow for scores in [0,1], with 0^x = 0.
func pow(v, exp float64) float64 {
	if v <= 0 {
		return 0
	}
	return math.Pow(v, exp)
}
