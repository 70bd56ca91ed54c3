package database

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/silicus-edu/ta-backend/types"
)

// CourseStore is the system of record for retrieval: one directory per course
// slug holding a columnar page table, a meta.json and the raw PDFs.
//
//	<root>/<slug>/<slug>_pages.json
//	<root>/<slug>/meta.json
//	<root>/<slug>/pdfs/<filename>.pdf
//
// Loaded page tables are cached per course for the lifetime of the process;
// Invalidate must be called whenever a course is rebuilt, renamed or deleted.
type CourseStore struct {
	root string

	mu    sync.RWMutex
	cache map[string][]types.PageRecord
}

// pageTable is the on-disk columnar layout. All columns have equal length and
// every embedding has the same dimensionality within a course.
type pageTable struct {
	Filename    []string    `json:"filename"`
	PageNumber  []int       `json:"page_number"`
	PageContent []string    `json:"page_content"`
	Embedding   [][]float64 `json:"embedding"`
}

func NewCourseStore(root string) (*CourseStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data root: %w", err)
	}
	return &CourseStore{
		root:  root,
		cache: make(map[string][]types.PageRecord),
	}, nil
}

func (s *CourseStore) Root() string { return s.root }

// CourseDir returns the local directory of a course.
func (s *CourseStore) CourseDir(slug string) string {
	return filepath.Join(s.root, slug)
}

// PDFDir returns the directory holding a course's raw source files.
func (s *CourseStore) PDFDir(slug string) string {
	return filepath.Join(s.root, slug, "pdfs")
}

func (s *CourseStore) tablePath(slug string) string {
	return filepath.Join(s.root, slug, slug+"_pages.json")
}

// MetaPath returns the location of a course's meta.json.
func (s *CourseStore) MetaPath(slug string) string {
	return filepath.Join(s.root, slug, "meta.json")
}

// Exists reports whether the course has a local directory at all,
// ingested or not.
func (s *CourseStore) Exists(slug string) bool {
	info, err := os.Stat(s.CourseDir(slug))
	return err == nil && info.IsDir()
}

// List returns the slugs of every course with an ingested page table, sorted
// by directory order.
func (s *CourseStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read data root: %w", err)
	}
	var slugs []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(s.tablePath(e.Name())); err == nil {
			slugs = append(slugs, e.Name())
		}
	}
	return slugs, nil
}

// Load returns every page record of a course in file order then page order.
// Returns ErrStoreNotFound if the course has never been ingested.
func (s *CourseStore) Load(slug string) ([]types.PageRecord, error) {
	s.mu.RLock()
	if records, ok := s.cache[slug]; ok {
		s.mu.RUnlock()
		return records, nil
	}
	s.mu.RUnlock()

	data, err := os.ReadFile(s.tablePath(slug))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("course %q: %w", slug, types.ErrStoreNotFound)
		}
		return nil, fmt.Errorf("failed to read page table for %q: %w", slug, err)
	}

	var table pageTable
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to decode page table for %q: %w", slug, err)
	}
	n := len(table.Filename)
	if len(table.PageNumber) != n || len(table.PageContent) != n || len(table.Embedding) != n {
		return nil, fmt.Errorf("page table for %q has unequal column lengths", slug)
	}

	records := make([]types.PageRecord, n)
	for i := 0; i < n; i++ {
		records[i] = types.PageRecord{
			Filename:    table.Filename[i],
			PageNumber:  table.PageNumber[i],
			PageContent: table.PageContent[i],
			Embedding:   table.Embedding[i],
		}
	}

	s.mu.Lock()
	s.cache[slug] = records
	s.mu.Unlock()
	return records, nil
}

// Replace atomically swaps the full page-record set of a course. The table is
// written to a temporary file and renamed into place, so a concurrent Load
// observes either the old table or the new one, never a mix.
func (s *CourseStore) Replace(slug string, records []types.PageRecord) error {
	table := pageTable{
		Filename:    make([]string, len(records)),
		PageNumber:  make([]int, len(records)),
		PageContent: make([]string, len(records)),
		Embedding:   make([][]float64, len(records)),
	}
	for i, r := range records {
		table.Filename[i] = r.Filename
		table.PageNumber[i] = r.PageNumber
		table.PageContent[i] = r.PageContent
		table.Embedding[i] = r.Embedding
	}

	data, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("failed to encode page table for %q: %w", slug, err)
	}

	if err := os.MkdirAll(s.CourseDir(slug), 0755); err != nil {
		return fmt.Errorf("failed to create course directory: %w", err)
	}
	target := s.tablePath(slug)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write page table for %q: %w", slug, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to publish page table for %q: %w", slug, err)
	}

	s.mu.Lock()
	s.cache[slug] = records
	s.mu.Unlock()
	return nil
}

// Invalidate evicts a course's cached page table so subsequent reads observe
// the on-disk state. Required after rebuild, rename and delete.
func (s *CourseStore) Invalidate(slug string) {
	s.mu.Lock()
	delete(s.cache, slug)
	s.mu.Unlock()
}

// LoadMeta reads a course's meta.json defensively: a missing or malformed
// file yields the zero value rather than an error. Corruption is logged so it
// is visible to operators without failing readers.
func (s *CourseStore) LoadMeta(slug string) types.CourseMeta {
	var meta types.CourseMeta
	data, err := os.ReadFile(s.MetaPath(slug))
	if err != nil {
		return meta
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		log.Printf("Warning: malformed meta.json for course %q: %v", slug, err)
		return types.CourseMeta{}
	}
	return meta
}

// SaveMeta writes a course's meta.json.
func (s *CourseStore) SaveMeta(slug string, meta types.CourseMeta) error {
	if err := os.MkdirAll(s.CourseDir(slug), 0755); err != nil {
		return fmt.Errorf("failed to create course directory: %w", err)
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode meta for %q: %w", slug, err)
	}
	if err := os.WriteFile(s.MetaPath(slug), data, 0644); err != nil {
		return fmt.Errorf("failed to write meta for %q: %w", slug, err)
	}
	return nil
}
