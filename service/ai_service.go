package service

import (
	"context"

	"github.com/silicus-edu/ta-backend/types"
)

// EmbeddingProvider maps text to fixed-length vectors, one per input string,
// order-preserving.
type EmbeddingProvider interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
}

// GenerationProvider turns a structured prompt into a free-text answer.
// Calls are blocking; callers needing bounded latency wrap the context.
type GenerationProvider interface {
	Generate(ctx context.Context, system string, messages []types.Message, temperature float32) (string, error)
}

// StreamingProvider is implemented by generation providers that can deliver
// the answer incrementally.
type StreamingProvider interface {
	GenerateStream(ctx context.Context, system string, messages []types.Message, temperature float32, handler types.StreamHandler) error
}
