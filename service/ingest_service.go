package service

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sort"

	"github.com/silicus-edu/ta-backend/database"
	"github.com/silicus-edu/ta-backend/types"
)

// DefaultEmbedBatchSize amortizes request overhead against the embedding
// provider. It is a tuning knob, not a correctness constraint.
const DefaultEmbedBatchSize = 32

// IngestService turns a course's PDF directory into page records and replaces
// the course's page table wholesale.
//
// Every run is a full rebuild: adding one new PDF re-embeds the whole course.
// That keeps the derived index trivially consistent with the source files at
// the cost of redundant embedding work, which is acceptable while the quota
// bounds course size.
type IngestService struct {
	extractor PageExtractor
	embedder  EmbeddingProvider
	store     *database.CourseStore
	batchSize int
}

func NewIngestService(extractor PageExtractor, embedder EmbeddingProvider, store *database.CourseStore, batchSize int) *IngestService {
	if batchSize <= 0 {
		batchSize = DefaultEmbedBatchSize
	}
	return &IngestService{
		extractor: extractor,
		embedder:  embedder,
		store:     store,
		batchSize: batchSize,
	}
}

// ProcessCourse extracts and embeds every page of every PDF in the course and
// publishes the result through the store's atomic Replace. Returns the number
// of page records produced.
func (s *IngestService) ProcessCourse(ctx context.Context, slug string) (int, error) {
	paths, err := filepath.Glob(filepath.Join(s.store.PDFDir(slug), "*.pdf"))
	if err != nil {
		return 0, fmt.Errorf("failed to list PDFs for %q: %w", slug, err)
	}
	sort.Strings(paths)

	var records []types.PageRecord
	var texts []string
	for _, path := range paths {
		pages, err := s.extractor.ExtractPages(path)
		if err != nil {
			return 0, fmt.Errorf("failed to extract %s: %w", filepath.Base(path), err)
		}
		for i, pageText := range pages {
			records = append(records, types.PageRecord{
				Filename:    filepath.Base(path),
				PageNumber:  i + 1,
				PageContent: pageText,
			})
			texts = append(texts, pageText)
		}
		log.Printf("Extracted %d pages from %s", len(pages), filepath.Base(path))
	}

	for start := 0; start < len(texts); start += s.batchSize {
		end := start + s.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		vectors, err := s.embedder.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return 0, err
		}
		for i, vec := range vectors {
			records[start+i].Embedding = vec
		}
	}

	if err := s.store.Replace(slug, records); err != nil {
		return 0, err
	}
	return len(records), nil
}
