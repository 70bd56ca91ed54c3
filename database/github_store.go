package database

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
)

// GitHubStore commits course artifacts to a GitHub repository through the
// contents API, giving every PDF, page table and meta.json a durable,
// versioned remote copy.
type GitHubStore struct {
	client *gh.Client
	owner  string
	repo   string
	branch string
}

// NewGitHubStore creates a blob store for "owner/repo" on the given branch.
func NewGitHubStore(token, repo, branch string) (*GitHubStore, error) {
	parts := strings.SplitN(repo, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("github repo must be \"owner/repo\", got %q", repo)
	}
	if token == "" {
		return nil, fmt.Errorf("github token is required")
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)
	return &GitHubStore{
		client: gh.NewClient(tc),
		owner:  parts[0],
		repo:   parts[1],
		branch: branch,
	}, nil
}

// Upsert creates or updates the file at path and returns the commit SHA.
// Updating requires the current blob SHA, so the path is fetched first.
func (s *GitHubStore) Upsert(ctx context.Context, path string, content []byte, message string) (string, error) {
	sha, err := s.blobSHA(ctx, path)
	if err != nil {
		return "", fmt.Errorf("failed to look up %s: %w", path, err)
	}

	opts := &gh.RepositoryContentFileOptions{
		Message: gh.Ptr(message),
		Content: content,
		Branch:  gh.Ptr(s.branch),
	}

	var res *gh.RepositoryContentResponse
	if sha != "" {
		opts.SHA = gh.Ptr(sha)
		res, _, err = s.client.Repositories.UpdateFile(ctx, s.owner, s.repo, path, opts)
	} else {
		res, _, err = s.client.Repositories.CreateFile(ctx, s.owner, s.repo, path, opts)
	}
	if err != nil {
		return "", fmt.Errorf("failed to upsert %s: %w", path, err)
	}
	return res.Commit.GetSHA(), nil
}

// Delete removes the file at path. Best-effort: a missing file or a failed
// request is logged and reported as false, never as an error, because course
// deletion must proceed locally regardless of remote outcome.
func (s *GitHubStore) Delete(ctx context.Context, path string, message string) bool {
	sha, err := s.blobSHA(ctx, path)
	if err != nil {
		log.Printf("Warning: failed to look up %s for deletion: %v", path, err)
		return false
	}
	if sha == "" {
		return false
	}
	opts := &gh.RepositoryContentFileOptions{
		Message: gh.Ptr(message),
		SHA:     gh.Ptr(sha),
		Branch:  gh.Ptr(s.branch),
	}
	if _, _, err := s.client.Repositories.DeleteFile(ctx, s.owner, s.repo, path, opts); err != nil {
		log.Printf("Warning: failed to delete %s from remote: %v", path, err)
		return false
	}
	return true
}

// blobSHA returns the blob SHA of path on the store's branch, or "" if the
// path does not exist yet.
func (s *GitHubStore) blobSHA(ctx context.Context, path string) (string, error) {
	file, _, resp, err := s.client.Repositories.GetContents(ctx, s.owner, s.repo, path,
		&gh.RepositoryContentGetOptions{Ref: s.branch})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return "", nil
		}
		return "", err
	}
	if file == nil {
		return "", fmt.Errorf("%s is a directory on the remote", path)
	}
	return file.GetSHA(), nil
}
