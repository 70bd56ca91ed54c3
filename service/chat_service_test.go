package service

import (
	"context"
	"testing"

	"github.com/silicus-edu/ta-backend/database"
	"github.com/silicus-edu/ta-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// queryEmbedder returns a fixed vector so retrieval order is predictable.
type queryEmbedder struct {
	vector []float64
}

func (q *queryEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	vectors := make([][]float64, len(texts))
	for i := range texts {
		vectors[i] = q.vector
	}
	return vectors, nil
}

func newTestChatService(t *testing.T) (*ChatService, *fakeGenerator) {
	t.Helper()
	store, err := database.NewCourseStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Replace("cs101", []types.PageRecord{
		{Filename: "intro.pdf", PageNumber: 1, PageContent: "Indexes speed up reads.", Embedding: []float64{1, 0}},
		{Filename: "intro.pdf", PageNumber: 2, PageContent: "Writes pay for it.", Embedding: []float64{0, 1}},
	}))

	gen := &fakeGenerator{reply: "Indexes trade write cost for read speed [1]."}
	chat := NewChatService(store, &queryEmbedder{vector: []float64{1, 0}}, NewAnswerService(gen), 2)
	return chat, gen
}

func TestAskAnswersLatestUserTurn(t *testing.T) {
	chat, gen := newTestChatService(t)

	answer, err := chat.Ask(context.Background(), "cs101", []types.Message{
		{Role: types.RoleUser, Content: "What are indexes for?"},
		{Role: types.RoleAssistant, Content: "Let me check."},
		{Role: types.RoleUser, Content: "Why use an index?"},
	})
	require.NoError(t, err)

	assert.Contains(t, gen.lastPrompt, "Question: Why use an index?")
	assert.Contains(t, gen.lastPrompt, "What are indexes for?") // earlier turn is history
	assert.Equal(t, types.Citation{Filename: "intro.pdf", PageNumber: 1}, answer.Citations[1])
}

func TestAskRequiresUserMessage(t *testing.T) {
	chat, _ := newTestChatService(t)

	_, err := chat.Ask(context.Background(), "cs101", []types.Message{
		{Role: types.RoleAssistant, Content: "Hello!"},
	})
	assert.Error(t, err)
}

func TestAskUnknownCourse(t *testing.T) {
	chat, _ := newTestChatService(t)

	_, err := chat.Ask(context.Background(), "ghost", []types.Message{
		{Role: types.RoleUser, Content: "Anything?"},
	})
	assert.ErrorIs(t, err, types.ErrStoreNotFound)
}

func TestSearchReturnsRankedExcerpts(t *testing.T) {
	chat, _ := newTestChatService(t)

	results, err := chat.Search(context.Background(), "cs101", "indexes", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].Index)
	assert.Equal(t, "intro.pdf", results[0].Filename)
	assert.Equal(t, 1, results[0].PageNumber)
}

func TestSuggestedQuestionsNonEmpty(t *testing.T) {
	chat, _ := newTestChatService(t)
	assert.NotEmpty(t, chat.SuggestedQuestions("cs101"))
}
