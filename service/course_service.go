package service

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/silicus-edu/ta-backend/database"
	"github.com/silicus-edu/ta-backend/types"
	"github.com/silicus-edu/ta-backend/utils"
)

// DefaultQuotaMB is the per-course storage cap enforced before any rebuild.
const DefaultQuotaMB = 300

// BlobStore is the versioned remote store every course artifact is committed
// to. Upsert returns an opaque version id; Delete is best-effort.
type BlobStore interface {
	Upsert(ctx context.Context, path string, content []byte, message string) (string, error)
	Delete(ctx context.Context, path string, message string) bool
}

var slugRe = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// CourseService drives the course lifecycle: create, add/remove source PDFs
// with content-hash dedup, rebuild the derived index under the quota guard,
// and mirror every change to the blob store.
//
// Local invariants (dedup, quota, atomic publish) are enforced before any
// remote call. Remote failures are reported but never roll back local
// changes, so local and remote state can diverge on partial failure; that is
// an accepted property of the design, surfaced via RemoteCommitError.
type CourseService struct {
	store   *database.CourseStore
	ingest  *IngestService
	blob    BlobStore
	quotaMB float64

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewCourseService(store *database.CourseStore, ingest *IngestService, blob BlobStore, quotaMB float64) *CourseService {
	if quotaMB <= 0 {
		quotaMB = DefaultQuotaMB
	}
	return &CourseService{
		store:   store,
		ingest:  ingest,
		blob:    blob,
		quotaMB: quotaMB,
		locks:   make(map[string]*sync.Mutex),
	}
}

// lockFor serializes mutations per course. Two rebuilds of the same course
// must never interleave; different courses proceed independently.
func (s *CourseService) lockFor(slug string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.locks[slug]; !ok {
		s.locks[slug] = &sync.Mutex{}
	}
	return s.locks[slug]
}

// Create makes a new course from the uploaded PDFs, ingests it and commits
// everything to the blob store. Fails with ErrSlugConflict if the slug is
// taken. An empty title defaults to the upper-cased slug.
func (s *CourseService) Create(ctx context.Context, slug, title string, files []types.UploadFile) error {
	if !slugRe.MatchString(slug) {
		return fmt.Errorf("invalid course slug %q", slug)
	}
	lock := s.lockFor(slug)
	lock.Lock()
	defer lock.Unlock()

	if s.store.Exists(slug) {
		return fmt.Errorf("course %q: %w", slug, types.ErrSlugConflict)
	}
	if err := os.MkdirAll(s.store.PDFDir(slug), 0755); err != nil {
		return fmt.Errorf("failed to create course directory: %w", err)
	}

	if _, _, err := s.writeFiles(slug, files); err != nil {
		return err
	}
	if _, err := s.ingest.ProcessCourse(ctx, slug); err != nil {
		return err
	}
	if err := s.store.SaveMeta(slug, types.CourseMeta{
		Title:   defaultTitle(title, slug),
		Updated: nowUTC(),
	}); err != nil {
		return err
	}
	return s.commitCourse(ctx, slug, fmt.Sprintf("%s: create course", slug))
}

// AddFiles stores the uploaded PDFs, skipping any whose content hash matches
// an existing file in the course. Skips are counted, never errors. The course
// is stale afterwards until Rebuild runs; each saved file is still committed
// to the blob store immediately so the raw sources are never only-local.
func (s *CourseService) AddFiles(ctx context.Context, slug string, files []types.UploadFile) (saved, skipped int, err error) {
	lock := s.lockFor(slug)
	lock.Lock()
	defer lock.Unlock()

	if !s.store.Exists(slug) {
		return 0, 0, fmt.Errorf("course %q: %w", slug, types.ErrStoreNotFound)
	}
	if err := os.MkdirAll(s.store.PDFDir(slug), 0755); err != nil {
		return 0, 0, fmt.Errorf("failed to create pdf directory: %w", err)
	}

	savedNames, skipped, err := s.writeFiles(slug, files)
	if err != nil {
		return len(savedNames), skipped, err
	}

	var commitErr error
	for _, name := range savedNames {
		data, readErr := os.ReadFile(filepath.Join(s.store.PDFDir(slug), name))
		if readErr != nil {
			return len(savedNames), skipped, fmt.Errorf("failed to read %s for commit: %w", name, readErr)
		}
		remote := s.remotePath(slug, "pdfs", name)
		if _, upErr := s.blob.Upsert(ctx, remote, data, fmt.Sprintf("%s: add %s", slug, name)); upErr != nil && commitErr == nil {
			commitErr = &types.RemoteCommitError{Path: remote, Err: upErr}
		}
	}
	return len(savedNames), skipped, commitErr
}

// writeFiles writes uploads into the course's pdfs directory with dedup
// against existing files and against earlier files in the same batch.
// Returns the sanitized names of the files actually written.
func (s *CourseService) writeFiles(slug string, files []types.UploadFile) (savedNames []string, skipped int, err error) {
	seen, err := s.existingHashes(slug)
	if err != nil {
		return nil, 0, err
	}
	for _, f := range files {
		hash := utils.Sha256Hex(f.Data)
		if _, dup := seen[hash]; dup {
			skipped++
			continue
		}
		seen[hash] = struct{}{}
		name := utils.SanitizeFilename(f.Name)
		if err := os.WriteFile(filepath.Join(s.store.PDFDir(slug), name), f.Data, 0644); err != nil {
			return savedNames, skipped, fmt.Errorf("failed to write %s: %w", name, err)
		}
		savedNames = append(savedNames, name)
	}
	return savedNames, skipped, nil
}

func (s *CourseService) existingHashes(slug string) (map[string]struct{}, error) {
	hashes := make(map[string]struct{})
	paths, err := filepath.Glob(filepath.Join(s.store.PDFDir(slug), "*.pdf"))
	if err != nil {
		return nil, fmt.Errorf("failed to list PDFs for %q: %w", slug, err)
	}
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		hashes[utils.Sha256Hex(data)] = struct{}{}
	}
	return hashes, nil
}

// DeleteFile removes one source PDF locally and best-effort remotely. The
// course is stale afterwards until Rebuild runs.
func (s *CourseService) DeleteFile(ctx context.Context, slug, filename string) error {
	lock := s.lockFor(slug)
	lock.Lock()
	defer lock.Unlock()

	name := utils.SanitizeFilename(filename)
	local := filepath.Join(s.store.PDFDir(slug), name)
	if _, err := os.Stat(local); err != nil {
		return fmt.Errorf("%s in course %q: %w", filename, slug, types.ErrFileNotFound)
	}

	s.blob.Delete(ctx, s.remotePath(slug, "pdfs", name), fmt.Sprintf("%s: delete %s", slug, name))

	if err := os.Remove(local); err != nil {
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}
	return nil
}

// DeleteCourse removes every remote copy (each delete attempted
// independently) and then the local directory. Local deletion proceeds
// regardless of remote outcome.
func (s *CourseService) DeleteCourse(ctx context.Context, slug string) error {
	lock := s.lockFor(slug)
	lock.Lock()
	defer lock.Unlock()

	if !s.store.Exists(slug) {
		return fmt.Errorf("course %q: %w", slug, types.ErrStoreNotFound)
	}

	courseDir := s.store.CourseDir(slug)
	err := filepath.WalkDir(courseDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, relErr := filepath.Rel(courseDir, p)
		if relErr != nil {
			return relErr
		}
		if !s.blob.Delete(ctx, s.remotePath(slug, rel), fmt.Sprintf("%s: delete course", slug)) {
			log.Printf("Warning: remote copy of %s/%s not deleted", slug, rel)
		}
		return nil
	})
	if err != nil {
		log.Printf("Warning: remote cleanup for %q incomplete: %v", slug, err)
	}

	if err := os.RemoveAll(courseDir); err != nil {
		return fmt.Errorf("failed to delete course directory: %w", err)
	}
	s.store.Invalidate(slug)
	return nil
}

// Rebuild runs the ingestion pipeline and commits every changed file. The
// quota guard runs first: an oversized course fails with ErrQuotaExceeded and
// the existing page table is left untouched.
func (s *CourseService) Rebuild(ctx context.Context, slug string) (int, error) {
	lock := s.lockFor(slug)
	lock.Lock()
	defer lock.Unlock()

	if !s.store.Exists(slug) {
		return 0, fmt.Errorf("course %q: %w", slug, types.ErrStoreNotFound)
	}

	sizeMB, err := utils.DirSizeMB(s.store.CourseDir(slug))
	if err != nil {
		return 0, fmt.Errorf("failed to measure course size: %w", err)
	}
	if sizeMB > s.quotaMB {
		return 0, fmt.Errorf("course %q is %.1f MB, cap is %.0f MB: %w",
			slug, sizeMB, s.quotaMB, types.ErrQuotaExceeded)
	}

	pages, err := s.ingest.ProcessCourse(ctx, slug)
	if err != nil {
		return 0, err
	}

	meta := s.store.LoadMeta(slug)
	meta.Title = defaultTitle(meta.Title, slug)
	meta.Updated = nowUTC()
	if err := s.store.SaveMeta(slug, meta); err != nil {
		return pages, err
	}

	if err := s.commitCourse(ctx, slug, fmt.Sprintf("%s: rebuild index", slug)); err != nil {
		return pages, err
	}
	return pages, nil
}

// Rename updates the course title and commits only the metadata file.
func (s *CourseService) Rename(ctx context.Context, slug, title string) error {
	lock := s.lockFor(slug)
	lock.Lock()
	defer lock.Unlock()

	if !s.store.Exists(slug) {
		return fmt.Errorf("course %q: %w", slug, types.ErrStoreNotFound)
	}

	meta := s.store.LoadMeta(slug)
	meta.Title = defaultTitle(title, slug)
	meta.Updated = nowUTC()
	if err := s.store.SaveMeta(slug, meta); err != nil {
		return err
	}
	s.store.Invalidate(slug)

	data, err := os.ReadFile(s.store.MetaPath(slug))
	if err != nil {
		return fmt.Errorf("failed to read meta for commit: %w", err)
	}
	remote := s.remotePath(slug, "meta.json")
	if _, err := s.blob.Upsert(ctx, remote, data, fmt.Sprintf("%s: rename course to %q", slug, meta.Title)); err != nil {
		return &types.RemoteCommitError{Path: remote, Err: err}
	}
	return nil
}

// List summarizes every ingested course for the admin console.
func (s *CourseService) List() ([]types.CourseInfo, error) {
	slugs, err := s.store.List()
	if err != nil {
		return nil, err
	}
	infos := make([]types.CourseInfo, 0, len(slugs))
	for _, slug := range slugs {
		meta := s.store.LoadMeta(slug)
		pdfs, _ := filepath.Glob(filepath.Join(s.store.PDFDir(slug), "*.pdf"))
		sizeMB, _ := utils.DirSizeMB(s.store.CourseDir(slug))
		infos = append(infos, types.CourseInfo{
			Slug:    slug,
			Title:   defaultTitle(meta.Title, slug),
			NumPDFs: len(pdfs),
			SizeMB:  sizeMB,
			Updated: meta.Updated,
		})
	}
	return infos, nil
}

// ListFiles returns the course's source PDF filenames, sorted.
func (s *CourseService) ListFiles(slug string) ([]string, error) {
	if !s.store.Exists(slug) {
		return nil, fmt.Errorf("course %q: %w", slug, types.ErrStoreNotFound)
	}
	paths, err := filepath.Glob(filepath.Join(s.store.PDFDir(slug), "*.pdf"))
	if err != nil {
		return nil, fmt.Errorf("failed to list PDFs for %q: %w", slug, err)
	}
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	sort.Strings(names)
	return names, nil
}

// commitCourse upserts every file under the course directory to the blob
// store. The first failure aborts with RemoteCommitError; files already
// committed stay committed.
func (s *CourseService) commitCourse(ctx context.Context, slug, message string) error {
	courseDir := s.store.CourseDir(slug)
	return filepath.WalkDir(courseDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, relErr := filepath.Rel(courseDir, p)
		if relErr != nil {
			return relErr
		}
		data, readErr := os.ReadFile(p)
		if readErr != nil {
			return readErr
		}
		remote := s.remotePath(slug, rel)
		if _, upErr := s.blob.Upsert(ctx, remote, data, message); upErr != nil {
			return &types.RemoteCommitError{Path: remote, Err: upErr}
		}
		return nil
	})
}

// remotePath builds the repository path for a course artifact, always with
// forward slashes.
func (s *CourseService) remotePath(slug string, parts ...string) string {
	segments := append([]string{"data", slug}, parts...)
	for i, seg := range segments {
		segments[i] = filepath.ToSlash(seg)
	}
	return path.Join(segments...)
}

func defaultTitle(title, slug string) string {
	if trimmed := strings.TrimSpace(title); trimmed != "" {
		return trimmed
	}
	return strings.ToUpper(slug)
}

func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}
