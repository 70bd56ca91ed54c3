package service

import (
	"testing"

	"github.com/silicus-edu/ta-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchRanksByCosineSimilarity(t *testing.T) {
	records := []types.PageRecord{
		{Filename: "a.pdf", PageNumber: 1, Embedding: []float64{0, 1, 0}},
		{Filename: "a.pdf", PageNumber: 2, Embedding: []float64{1, 0, 0}},
		{Filename: "b.pdf", PageNumber: 1, Embedding: []float64{0.9, 0.1, 0}},
	}
	query := []float64{1, 0, 0}

	top := Search(records, query, 2)
	require.Len(t, top, 2)

	// An identical embedding scores 1.0 and ranks first.
	assert.Equal(t, "a.pdf", top[0].Record.Filename)
	assert.Equal(t, 2, top[0].Record.PageNumber)
	assert.InDelta(t, 1.0, top[0].Score, 1e-9)
	assert.Equal(t, 1, top[0].Rank)

	assert.Equal(t, "b.pdf", top[1].Record.Filename)
	assert.Equal(t, 2, top[1].Rank)
}

func TestSearchStableOnTies(t *testing.T) {
	records := []types.PageRecord{
		{Filename: "first.pdf", PageNumber: 1, Embedding: []float64{1, 0}},
		{Filename: "second.pdf", PageNumber: 1, Embedding: []float64{1, 0}},
		{Filename: "third.pdf", PageNumber: 1, Embedding: []float64{1, 0}},
	}

	top := Search(records, []float64{1, 0}, 3)
	require.Len(t, top, 3)
	assert.Equal(t, "first.pdf", top[0].Record.Filename)
	assert.Equal(t, "second.pdf", top[1].Record.Filename)
	assert.Equal(t, "third.pdf", top[2].Record.Filename)
}

func TestSearchKLargerThanCorpus(t *testing.T) {
	records := []types.PageRecord{
		{Filename: "a.pdf", PageNumber: 1, Embedding: []float64{1, 0}},
	}
	top := Search(records, []float64{1, 0}, 10)
	assert.Len(t, top, 1)
}

func TestSearchEmptyCorpus(t *testing.T) {
	assert.Empty(t, Search(nil, []float64{1, 0}, 5))
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float64{1, 2, 3}, []float64{1, 2, 3}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float64{1, 0}, []float64{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity([]float64{1, 0}, []float64{-1, 0}), 1e-9)

	// Zero-norm vectors must not divide by zero.
	assert.Equal(t, 0.0, CosineSimilarity([]float64{0, 0}, []float64{1, 1}))
	assert.Equal(t, 0.0, CosineSimilarity(nil, []float64{1, 1}))
}

func TestMeanScore(t *testing.T) {
	pages := []types.RetrievedPage{{Score: 0.8}, {Score: 0.4}}
	assert.InDelta(t, 0.6, MeanScore(pages), 1e-9)
	assert.Equal(t, 0.0, MeanScore(nil))
}
