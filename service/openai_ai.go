package service

import (
	"context"
	"errors"
	"io"

	"github.com/sashabaranov/go-openai"
	"github.com/silicus-edu/ta-backend/types"
)

// OpenAIService serves both provider roles over one client: embeddings for
// ingestion and retrieval, chat completions for answer generation.
type OpenAIService struct {
	client     *openai.Client
	chatModel  string
	embedModel string
}

func NewOpenAIService(baseURL, apiKey, chatModel, embedModel string) *OpenAIService {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIService{
		client:     openai.NewClientWithConfig(config),
		chatModel:  chatModel,
		embedModel: embedModel,
	}
}

// EmbedBatch embeds every input text in one request. The response is ordered
// by index, one vector per input.
func (s *OpenAIService) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	resp, err := s.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(s.embedModel),
	})
	if err != nil {
		return nil, &types.EmbeddingError{Provider: "openai", Err: err}
	}
	if len(resp.Data) != len(texts) {
		return nil, &types.EmbeddingError{
			Provider: "openai",
			Err:      errors.New("embedding count does not match input count"),
		}
	}
	vectors := make([][]float64, len(texts))
	for _, data := range resp.Data {
		vec := make([]float64, len(data.Embedding))
		for i, v := range data.Embedding {
			vec[i] = float64(v)
		}
		vectors[data.Index] = vec
	}
	return vectors, nil
}

func (s *OpenAIService) Generate(ctx context.Context, system string, messages []types.Message, temperature float32) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.chatModel,
		Messages:    toOpenAIMessages(system, messages),
		Temperature: temperature,
	})
	if err != nil {
		return "", &types.GenerationError{Provider: "openai", Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &types.GenerationError{Provider: "openai", Err: errors.New("no response generated")}
	}
	return resp.Choices[0].Message.Content, nil
}

func (s *OpenAIService) GenerateStream(ctx context.Context, system string, messages []types.Message, temperature float32, handler types.StreamHandler) error {
	stream, err := s.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       s.chatModel,
		Messages:    toOpenAIMessages(system, messages),
		Temperature: temperature,
	})
	if err != nil {
		return &types.GenerationError{Provider: "openai", Err: err}
	}
	defer stream.Close()
	for {
		resp, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return &types.GenerationError{Provider: "openai", Err: err}
		}
		if len(resp.Choices) > 0 {
			handler(resp.Choices[0].Delta.Content)
		}
	}
}

func toOpenAIMessages(system string, messages []types.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	if system != "" {
		out = append(out, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	for _, msg := range messages {
		role := openai.ChatMessageRoleUser
		if msg.Role == types.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		out = append(out, openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
	}
	return out
}
