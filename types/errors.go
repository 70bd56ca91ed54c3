package types

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreNotFound is returned when a course has never been ingested.
	ErrStoreNotFound = errors.New("course store not found")

	// ErrSlugConflict is returned when creating a course whose slug already exists.
	ErrSlugConflict = errors.New("course slug already exists")

	// ErrQuotaExceeded is returned when a course directory is over the storage cap.
	ErrQuotaExceeded = errors.New("course exceeds storage quota")

	// ErrFileNotFound is returned when a named source file is not in the course.
	ErrFileNotFound = errors.New("file not found in course")
)

// EmbeddingError wraps a failure from the embedding provider. It is surfaced
// verbatim to the caller; no retry happens below the handler layer.
type EmbeddingError struct {
	Provider string
	Err      error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding provider %s: %v", e.Provider, e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// GenerationError wraps a failure from the generation provider.
type GenerationError struct {
	Provider string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation provider %s: %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// RemoteCommitError wraps a blob-store write failure. The local filesystem has
// already changed when this is raised, so local and remote state may diverge.
type RemoteCommitError struct {
	Path string
	Err  error
}

func (e *RemoteCommitError) Error() string {
	return fmt.Sprintf("remote commit of %s failed: %v", e.Path, e.Err)
}

func (e *RemoteCommitError) Unwrap() error { return e.Err }
