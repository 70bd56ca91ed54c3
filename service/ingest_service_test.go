package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/silicus-edu/ta-backend/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessCoursePreservesPageOrder(t *testing.T) {
	store, err := database.NewCourseStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(store.PDFDir("cs101"), 0755))

	// fakeExtractor yields len/100+1 pages per file.
	require.NoError(t, os.WriteFile(filepath.Join(store.PDFDir("cs101"), "b.pdf"), make([]byte, 150), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(store.PDFDir("cs101"), "a.pdf"), make([]byte, 10), 0644))

	embedder := &fakeEmbedder{}
	ingest := NewIngestService(fakeExtractor{}, embedder, store, 2)

	count, err := ingest.ProcessCourse(context.Background(), "cs101")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	records, err := store.Load("cs101")
	require.NoError(t, err)
	require.Len(t, records, 3)

	// Files in sorted order, pages 1-based within each file.
	assert.Equal(t, "a.pdf", records[0].Filename)
	assert.Equal(t, 1, records[0].PageNumber)
	assert.Equal(t, "b.pdf", records[1].Filename)
	assert.Equal(t, 1, records[1].PageNumber)
	assert.Equal(t, "b.pdf", records[2].Filename)
	assert.Equal(t, 2, records[2].PageNumber)

	// Batch size 2 over 3 texts means two embedding calls.
	assert.Equal(t, 2, embedder.calls)
	for _, r := range records {
		assert.NotEmpty(t, r.Embedding)
	}
}

func TestProcessCourseEmptyDirectory(t *testing.T) {
	store, err := database.NewCourseStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(store.PDFDir("empty"), 0755))

	ingest := NewIngestService(fakeExtractor{}, &fakeEmbedder{}, store, 2)
	count, err := ingest.ProcessCourse(context.Background(), "empty")
	require.NoError(t, err)
	assert.Zero(t, count)

	records, err := store.Load("empty")
	require.NoError(t, err)
	assert.Empty(t, records)
}
