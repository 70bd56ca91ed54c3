package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/silicus-edu/ta-backend/database"
	"github.com/silicus-edu/ta-backend/types"
)

// ChatService answers student questions over a course's ingested pages:
// embed the question, retrieve the closest pages, generate a grounded answer.
type ChatService struct {
	store    *database.CourseStore
	embedder EmbeddingProvider
	answerer *AnswerService
	topK     int
}

func NewChatService(store *database.CourseStore, embedder EmbeddingProvider, answerer *AnswerService, topK int) *ChatService {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &ChatService{
		store:    store,
		embedder: embedder,
		answerer: answerer,
		topK:     topK,
	}
}

// Ask answers the latest user turn in messages against the named course.
func (s *ChatService) Ask(ctx context.Context, course string, messages []types.Message) (*types.ChatAnswer, error) {
	query, history, err := splitQuery(messages)
	if err != nil {
		return nil, err
	}
	retrieved, err := s.retrieve(ctx, course, query)
	if err != nil {
		return nil, err
	}
	return s.answerer.Answer(ctx, course, query, retrieved, history)
}

// AskStream is Ask with incremental delivery of the answer text.
func (s *ChatService) AskStream(ctx context.Context, course string, messages []types.Message, handler types.StreamHandler) (*types.ChatAnswer, error) {
	query, history, err := splitQuery(messages)
	if err != nil {
		return nil, err
	}
	retrieved, err := s.retrieve(ctx, course, query)
	if err != nil {
		return nil, err
	}
	return s.answerer.AnswerStream(ctx, course, query, retrieved, history, handler)
}

// Search exposes raw retrieval without generation, for the source lookup
// endpoint.
func (s *ChatService) Search(ctx context.Context, course, query string, limit int) ([]types.SourceExcerpt, error) {
	if limit <= 0 || limit > s.topK {
		limit = s.topK
	}
	retrieved, err := s.retrieve(ctx, course, query)
	if err != nil {
		return nil, err
	}
	if limit < len(retrieved) {
		retrieved = retrieved[:limit]
	}
	return sourceExcerpts(retrieved), nil
}

func (s *ChatService) retrieve(ctx context.Context, course, query string) ([]types.RetrievedPage, error) {
	vectors, err := s.embedder.EmbedBatch(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	records, err := s.store.Load(course)
	if err != nil {
		return nil, err
	}
	return Search(records, vectors[0], s.topK), nil
}

// splitQuery takes the last user turn as the question and everything before
// it as history.
func splitQuery(messages []types.Message) (string, []types.Message, error) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == types.RoleUser && strings.TrimSpace(messages[i].Content) != "" {
			return messages[i].Content, messages[:i], nil
		}
	}
	return "", nil, fmt.Errorf("no user message in chat request")
}

// SuggestedQuestions returns starter prompts shown on an empty chat. Static
// for now; deriving them from the course's page table is a possible followup.
func (s *ChatService) SuggestedQuestions(course string) []string {
	return []string{
		"Can you summarize the main topics covered in the lecture slides?",
		"What are the key definitions I should memorize for this course?",
		"Explain the most important concept from the latest lecture.",
		"Which slides should I review before the exam?",
	}
}
