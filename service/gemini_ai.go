package service

import (
	"context"
	"errors"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/silicus-edu/ta-backend/types"
)

// GeminiService is an alternative generation backend. It rotates through the
// configured API keys when a request fails, which rides out per-key rate
// limits without surfacing transient errors to students.
type GeminiService struct {
	apiKeys    []string
	currentKey int
	modelName  string
	client     *genai.Client
	mu         sync.Mutex
}

func NewGeminiService(apiKeys []string, modelName string) (*GeminiService, error) {
	if len(apiKeys) == 0 {
		return nil, errors.New("no API keys provided")
	}
	s := &GeminiService{
		apiKeys:   apiKeys,
		modelName: modelName,
	}
	if err := s.initClient(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *GeminiService) initClient() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(s.apiKeys[s.currentKey]))
	if err != nil {
		return err
	}
	s.client = client
	return nil
}

func (s *GeminiService) rotateAPIKey() error {
	s.mu.Lock()
	s.currentKey = (s.currentKey + 1) % len(s.apiKeys)
	if err := s.client.Close(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()
	return s.initClient()
}

func (s *GeminiService) model(system string, temperature float32) *genai.GenerativeModel {
	model := s.client.GenerativeModel(s.modelName)
	model.SetTemperature(temperature)
	if system != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(system)},
		}
	}
	return model
}

func (s *GeminiService) Generate(ctx context.Context, system string, messages []types.Message, temperature float32) (string, error) {
	if len(messages) == 0 {
		return "", &types.GenerationError{Provider: "gemini", Err: errors.New("no messages provided")}
	}
	prompt := messages[len(messages)-1].Content
	history := toGeminiHistory(messages[:len(messages)-1])

	chat := s.model(system, temperature).StartChat()
	chat.History = history

	resp, err := chat.SendMessage(ctx, genai.Text(prompt))
	if err != nil {
		if rerr := s.rotateAPIKey(); rerr != nil {
			return "", &types.GenerationError{Provider: "gemini", Err: rerr}
		}
		chat = s.model(system, temperature).StartChat()
		chat.History = history
		resp, err = chat.SendMessage(ctx, genai.Text(prompt))
		if err != nil {
			return "", &types.GenerationError{Provider: "gemini", Err: err}
		}
	}

	content := ""
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				content += string(text)
			}
		}
	}
	if content == "" {
		return "", &types.GenerationError{Provider: "gemini", Err: errors.New("no response generated")}
	}
	return content, nil
}

func (s *GeminiService) GenerateStream(ctx context.Context, system string, messages []types.Message, temperature float32, handler types.StreamHandler) error {
	if len(messages) == 0 {
		return &types.GenerationError{Provider: "gemini", Err: errors.New("no messages provided")}
	}
	prompt := messages[len(messages)-1].Content
	history := toGeminiHistory(messages[:len(messages)-1])

	chat := s.model(system, temperature).StartChat()
	chat.History = history

	iter := chat.SendMessageStream(ctx, genai.Text(prompt))
	for {
		resp, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return &types.GenerationError{Provider: "gemini", Err: err}
		}
		for _, cand := range resp.Candidates {
			if cand.Content == nil {
				continue
			}
			for _, part := range cand.Content.Parts {
				if text, ok := part.(genai.Text); ok {
					handler(string(text))
				}
			}
		}
	}
}

func toGeminiHistory(messages []types.Message) []*genai.Content {
	history := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		role := "user"
		if msg.Role == types.RoleAssistant {
			role = "model"
		}
		history = append(history, &genai.Content{
			Parts: []genai.Part{genai.Text(msg.Content)},
			Role:  role,
		})
	}
	return history
}
