package service

import (
	"math"
	"sort"

	"github.com/silicus-edu/ta-backend/types"
)

// DefaultTopK is the number of pages retrieved for each chat turn.
const DefaultTopK = 10

// Search ranks every page record of a course by cosine similarity to the
// query embedding and returns the top k, most similar first. Ties keep the
// original record order (stable sort), so results are reproducible.
//
// This is a brute-force O(n) scan per query. It is fine at this scale because
// the per-course storage quota bounds the page count; an index structure
// (HNSW etc.) would only pay off well past that cap.
func Search(records []types.PageRecord, query []float64, k int) []types.RetrievedPage {
	if k <= 0 {
		k = DefaultTopK
	}

	scored := make([]types.RetrievedPage, len(records))
	for i, rec := range records {
		scored[i] = types.RetrievedPage{
			Record: rec,
			Score:  CosineSimilarity(query, rec.Embedding),
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if k > len(scored) {
		k = len(scored)
	}
	top := scored[:k]
	for i := range top {
		top[i].Rank = i + 1
	}
	return top
}

// CosineSimilarity returns dot(a, b) / (|a| * |b|), in [-1, 1]. A zero-norm
// vector on either side yields 0 instead of dividing by zero.
func CosineSimilarity(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
	}
	for _, v := range a {
		normA += v * v
	}
	for _, v := range b {
		normB += v * v
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// MeanScore returns the average similarity across a retrieval result, the
// raw signal behind the confidence banding.
func MeanScore(pages []types.RetrievedPage) float64 {
	if len(pages) == 0 {
		return 0
	}
	var sum float64
	for _, p := range pages {
		sum += p.Score
	}
	return sum / float64(len(pages))
}
