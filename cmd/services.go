/*
Copyright © 2025 silicus-edu
*/
package cmd

import (
	"fmt"

	"github.com/silicus-edu/ta-backend/config"
	"github.com/silicus-edu/ta-backend/database"
	"github.com/silicus-edu/ta-backend/service"
)

// backend bundles the wired services shared by the server and the course
// management subcommands.
type backend struct {
	cfg       *config.Config
	store     *database.CourseStore
	embedder  service.EmbeddingProvider
	generator service.GenerationProvider
	course    *service.CourseService
	chat      *service.ChatService
}

// buildBackend wires the full service graph from config. The OpenAI client
// always provides embeddings; generation is switchable between OpenAI and
// Gemini.
func buildBackend(cfg *config.Config) (*backend, error) {
	store, err := database.NewCourseStore(cfg.DataRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to open course store: %w", err)
	}

	openAI := service.NewOpenAIService(cfg.AIEndpoint, cfg.OpenAIAPIKey, cfg.ChatModel, cfg.EmbedModel)

	var generator service.GenerationProvider
	switch cfg.Generator {
	case "gemini":
		gemini, err := service.NewGeminiService(cfg.GeminiKeys(), cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini service: %w", err)
		}
		generator = gemini
	case "", "openai":
		generator = openAI
	default:
		return nil, fmt.Errorf("unknown generator %q", cfg.Generator)
	}

	blob, err := database.NewGitHubStore(cfg.GitHubToken, cfg.GitHubRepo, cfg.GitHubBranch)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub store: %w", err)
	}

	extractor := service.NewPDFService(cfg.OCRLanguages)
	ingest := service.NewIngestService(extractor, openAI, store, service.DefaultEmbedBatchSize)
	course := service.NewCourseService(store, ingest, blob, cfg.QuotaMB)

	answerer := service.NewAnswerService(generator)
	chat := service.NewChatService(store, openAI, answerer, service.DefaultTopK)

	return &backend{
		cfg:       cfg,
		store:     store,
		embedder:  openAI,
		generator: generator,
		course:    course,
		chat:      chat,
	}, nil
}
