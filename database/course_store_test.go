package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/silicus-edu/ta-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *CourseStore {
	t.Helper()
	store, err := NewCourseStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func samplePages() []types.PageRecord {
	return []types.PageRecord{
		{Filename: "intro.pdf", PageNumber: 1, PageContent: "Welcome", Embedding: []float64{1, 0, 0}},
		{Filename: "intro.pdf", PageNumber: 2, PageContent: "Agenda", Embedding: []float64{0, 1, 0}},
		{Filename: "week2.pdf", PageNumber: 1, PageContent: "Recap", Embedding: []float64{0, 0, 1}},
	}
}

func TestReplaceAndLoad(t *testing.T) {
	store := newTestStore(t)
	records := samplePages()

	require.NoError(t, store.Replace("cs101", records))

	// Re-open the store so the read comes from disk, not the write-through cache.
	reopened, err := NewCourseStore(store.Root())
	require.NoError(t, err)

	loaded, err := reopened.Load("cs101")
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	assert.Equal(t, records, loaded)

	// Order must survive the columnar round trip.
	assert.Equal(t, "intro.pdf", loaded[0].Filename)
	assert.Equal(t, 2, loaded[1].PageNumber)
	assert.Equal(t, "week2.pdf", loaded[2].Filename)
}

func TestLoadMissingCourse(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load("nope")
	assert.ErrorIs(t, err, types.ErrStoreNotFound)
}

func TestLoadRejectsUnequalColumns(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.MkdirAll(store.CourseDir("bad"), 0755))

	corrupt := `{"filename":["a.pdf","b.pdf"],"page_number":[1],"page_content":["x"],"embedding":[[0.1]]}`
	require.NoError(t, os.WriteFile(store.tablePath("bad"), []byte(corrupt), 0644))

	_, err := store.Load("bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unequal column lengths")
}

func TestReplaceLeavesNoTempFile(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Replace("cs101", samplePages()))

	entries, err := os.ReadDir(store.CourseDir("cs101"))
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotEqual(t, ".tmp", filepath.Ext(e.Name()))
	}
}

func TestLoadDuringReplaceSeesWholeTable(t *testing.T) {
	store := newTestStore(t)
	small := samplePages()
	big := append(samplePages(),
		types.PageRecord{Filename: "week3.pdf", PageNumber: 1, PageContent: "Joins", Embedding: []float64{1, 1, 0}},
		types.PageRecord{Filename: "week3.pdf", PageNumber: 2, PageContent: "Plans", Embedding: []float64{0, 1, 1}},
	)
	require.NoError(t, store.Replace("cs101", small))

	done := make(chan error, 1)
	go func() {
		for i := 0; i < 200; i++ {
			records := small
			if i%2 == 0 {
				records = big
			}
			if err := store.Replace("cs101", records); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()

	// Every read through a fresh store must observe a complete table: either
	// the small one or the big one, never a partial write.
	for i := 0; i < 500; i++ {
		reader, err := NewCourseStore(store.Root())
		require.NoError(t, err)
		records, err := reader.Load("cs101")
		require.NoError(t, err)
		assert.Contains(t, []int{len(small), len(big)}, len(records))
	}
	require.NoError(t, <-done)
}

func TestLoadServesCacheUntilInvalidated(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Replace("cs101", samplePages()))

	_, err := store.Load("cs101")
	require.NoError(t, err)

	// Delete the table behind the cache; Load must still serve until eviction.
	require.NoError(t, os.Remove(store.tablePath("cs101")))
	loaded, err := store.Load("cs101")
	require.NoError(t, err)
	assert.Len(t, loaded, 3)

	store.Invalidate("cs101")
	_, err = store.Load("cs101")
	assert.ErrorIs(t, err, types.ErrStoreNotFound)
}

func TestListOnlyIngestedCourses(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Replace("cs101", samplePages()))
	require.NoError(t, os.MkdirAll(store.CourseDir("pending"), 0755))

	slugs, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"cs101"}, slugs)
}

func TestMetaRoundTrip(t *testing.T) {
	store := newTestStore(t)
	meta := types.CourseMeta{Title: "Databases", Updated: "2025-09-01T10:00:00Z"}

	require.NoError(t, store.SaveMeta("cs101", meta))
	assert.Equal(t, meta, store.LoadMeta("cs101"))
}

func TestLoadMetaDefensive(t *testing.T) {
	store := newTestStore(t)

	// Absent file yields the zero value.
	assert.Equal(t, types.CourseMeta{}, store.LoadMeta("ghost"))

	// Malformed file also yields the zero value instead of failing readers.
	require.NoError(t, os.MkdirAll(store.CourseDir("broken"), 0755))
	require.NoError(t, os.WriteFile(store.MetaPath("broken"), []byte("{not json"), 0644))
	assert.Equal(t, types.CourseMeta{}, store.LoadMeta("broken"))
}

func TestReplaceEmptyCourse(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Replace("empty", nil))

	loaded, err := store.Load("empty")
	require.NoError(t, err)
	assert.Empty(t, loaded)
}
