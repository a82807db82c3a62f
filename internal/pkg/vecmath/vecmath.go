// Package vecmath holds the cosine ranking used when the database cannot
// order by vector distance itself.
package vecmath

import (
	"math"
	"sort"
)

// CosineSimilarity returns the cosine of the angle between a and b, or 0 when
// the lengths differ or either vector has zero norm.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA <= 0 || normB <= 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// CosineDistance is 1 - similarity, the same quantity pgvector's <=> yields.
func CosineDistance(a, b []float32) float64 {
	return 1 - CosineSimilarity(a, b)
}

// Candidate is anything rankable: a stable id plus its vector.
type Candidate struct {
	ID     uint
	Vector []float32
}

// Ranked pairs an index into the candidate slice with its distance.
type Ranked struct {
	Index    int
	Distance float64
}

// RankByDistance orders candidates by ascending cosine distance to query,
// breaking ties by ascending id, and keeps at most k of them. A negative k
// keeps everything.
func RankByDistance(query []float32, candidates []Candidate, k int) []Ranked {
	if k == 0 || len(candidates) == 0 {
		return nil
	}
	ranked := make([]Ranked, len(candidates))
	for i, c := range candidates {
		ranked[i] = Ranked{Index: i, Distance: CosineDistance(query, c.Vector)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Distance != ranked[j].Distance {
			return ranked[i].Distance < ranked[j].Distance
		}
		return candidates[ranked[i].Index].ID < candidates[ranked[j].Index].ID
	})
	if k > 0 && k < len(ranked) {
		ranked = ranked[:k]
	}
	return ranked
}
