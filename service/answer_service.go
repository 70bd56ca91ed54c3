package service

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/silicus-edu/ta-backend/types"
)

const (
	// HistoryWindow is the number of recent chat turns included in the prompt.
	HistoryWindow = 6

	// AnswerTemperature keeps generation close to the excerpts.
	AnswerTemperature = 0.2

	highConfidenceFloor   = 0.60
	mediumConfidenceFloor = 0.45
)

const groundingSystemPrompt = `You are Silicus, a course teaching assistant. Answer the student's question using ONLY the numbered lecture excerpts provided. Cite the excerpts you used with bracketed markers like [1] or [3]. If the excerpts do not contain the answer, say so plainly instead of guessing. Never cite material that is not in the excerpts.`

var citationMarkerRe = regexp.MustCompile(`\[(\d+)\]`)

// AnswerService assembles a grounded prompt from retrieved pages and recent
// history, invokes the generation provider and binds citation markers back to
// (filename, page) pairs.
type AnswerService struct {
	gen GenerationProvider
}

func NewAnswerService(gen GenerationProvider) *AnswerService {
	return &AnswerService{gen: gen}
}

// Answer produces a grounded answer for one chat turn. The full history is
// passed in by the caller; only the last HistoryWindow turns reach the prompt.
// Provider failures propagate as GenerationError with no retry here.
func (s *AnswerService) Answer(ctx context.Context, course, query string, retrieved []types.RetrievedPage, history []types.Message) (*types.ChatAnswer, error) {
	prompt := buildPrompt(query, retrieved, history)

	text, err := s.gen.Generate(ctx, groundingSystemPrompt,
		[]types.Message{{Role: types.RoleUser, Content: prompt}}, AnswerTemperature)
	if err != nil {
		return nil, err
	}

	citations := bindCitations(retrieved)
	mean := MeanScore(retrieved)

	return &types.ChatAnswer{
		Message: types.Message{
			Role:    types.RoleAssistant,
			Content: linkifyCitations(text, course, citations),
		},
		Citations:      citations,
		Confidence:     ConfidenceBand(mean),
		RelevanceScore: mean,
		Sources:        sourceExcerpts(retrieved),
	}, nil
}

// AnswerStream behaves like Answer but delivers the raw answer text
// incrementally. Citation linkification is skipped on the deltas; the caller
// still receives the citation map for rendering.
func (s *AnswerService) AnswerStream(ctx context.Context, course, query string, retrieved []types.RetrievedPage, history []types.Message, handler types.StreamHandler) (*types.ChatAnswer, error) {
	prompt := buildPrompt(query, retrieved, history)
	messages := []types.Message{{Role: types.RoleUser, Content: prompt}}

	var text string
	if sp, ok := s.gen.(StreamingProvider); ok {
		var sb strings.Builder
		err := sp.GenerateStream(ctx, groundingSystemPrompt, messages, AnswerTemperature, func(delta string) {
			sb.WriteString(delta)
			handler(delta)
		})
		if err != nil {
			return nil, err
		}
		text = sb.String()
	} else {
		var err error
		text, err = s.gen.Generate(ctx, groundingSystemPrompt, messages, AnswerTemperature)
		if err != nil {
			return nil, err
		}
		handler(text)
	}

	citations := bindCitations(retrieved)
	mean := MeanScore(retrieved)
	return &types.ChatAnswer{
		Message:        types.Message{Role: types.RoleAssistant, Content: text},
		Citations:      citations,
		Confidence:     ConfidenceBand(mean),
		RelevanceScore: mean,
		Sources:        sourceExcerpts(retrieved),
	}, nil
}

// buildPrompt lays out recent history, the question and the numbered
// excerpts. Excerpt tags [1..k] are the citation indexes the model must use.
func buildPrompt(query string, retrieved []types.RetrievedPage, history []types.Message) string {
	var sb strings.Builder

	window := history
	if len(window) > HistoryWindow {
		window = window[len(window)-HistoryWindow:]
	}
	if len(window) > 0 {
		sb.WriteString("Recent conversation:\n")
		for _, m := range window {
			sb.WriteString(m.Role)
			sb.WriteString(": ")
			sb.WriteString(m.Content)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Question: ")
	sb.WriteString(query)
	sb.WriteString("\n\nLecture excerpts:\n")
	for i, p := range retrieved {
		fmt.Fprintf(&sb, "[%d] (%s, page %d)\n%s\n\n",
			i+1, p.Record.Filename, p.Record.PageNumber, p.Record.PageContent)
	}
	return sb.String()
}

// bindCitations maps every excerpt tag to its source location, whether or not
// the model ended up citing it.
func bindCitations(retrieved []types.RetrievedPage) map[int]types.Citation {
	citations := make(map[int]types.Citation, len(retrieved))
	for i, p := range retrieved {
		citations[i+1] = types.Citation{
			Filename:   p.Record.Filename,
			PageNumber: p.Record.PageNumber,
		}
	}
	return citations
}

// linkifyCitations turns [n] markers into markdown links against the PDF
// endpoint so the chat surface can open the cited page directly. Markers
// without a matching excerpt are left untouched.
func linkifyCitations(text, course string, citations map[int]types.Citation) string {
	return citationMarkerRe.ReplaceAllStringFunc(text, func(marker string) string {
		idx, err := strconv.Atoi(strings.Trim(marker, "[]"))
		if err != nil {
			return marker
		}
		cite, ok := citations[idx]
		if !ok {
			return marker
		}
		return fmt.Sprintf("[%s](/api/v1/pdf?course=%s&file=%s#page=%d)",
			marker, url.QueryEscape(course), url.QueryEscape(cite.Filename), cite.PageNumber)
	})
}

// ConfidenceBand maps the mean retrieval similarity to an advisory label.
// It never blocks an answer.
func ConfidenceBand(mean float64) string {
	switch {
	case mean > highConfidenceFloor:
		return "high"
	case mean >= mediumConfidenceFloor:
		return "medium"
	default:
		return "low"
	}
}

func sourceExcerpts(retrieved []types.RetrievedPage) []types.SourceExcerpt {
	sources := make([]types.SourceExcerpt, len(retrieved))
	for i, p := range retrieved {
		sources[i] = types.SourceExcerpt{
			Index:      i + 1,
			Filename:   p.Record.Filename,
			PageNumber: p.Record.PageNumber,
			Excerpt:    p.Record.PageContent,
			Score:      p.Score,
		}
	}
	return sources
}
