package gitlab

import (
	"context"
	"fmt"
	"iter"

	"github.com/xanzy/go-gitlab"

	"github.com/drewdunne/changedfiles/internal/metrics"
	"github.com/drewdunne/changedfiles/internal/provider"
)

// GitLabProvider implements provider.Provider for GitLab.
type GitLabProvider struct {
	client  *gitlab.Client
	token   string
	baseURL string
}

// Option configures the GitLab provider.
type Option func(*GitLabProvider)

// WithBaseURL sets a custom base URL (self-managed instances or testing).
// The /api/v4 suffix is added when missing.
func WithBaseURL(baseURL string) Option {
	return func(p *GitLabProvider) {
		p.baseURL = baseURL
	}
}

// New creates a new GitLab provider.
func New(token string, opts ...Option) (*GitLabProvider, error) {
	p := &GitLabProvider{token: token}
	for _, opt := range opts {
		opt(p)
	}

	var clientOpts []gitlab.ClientOptionFunc
	if p.baseURL != "" {
		clientOpts = append(clientOpts, gitlab.WithBaseURL(p.baseURL))
	}
	client, err := gitlab.NewClient(token, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating gitlab client: %w", err)
	}
	p.client = client

	return p, nil
}

// Name returns the provider name.
func (p *GitLabProvider) Name() string {
	return "gitlab"
}

// ListChangedFiles pages through the merge request diffs endpoint. GitLab
// flags are mapped onto GitHub's status vocabulary.
func (p *GitLabProvider) ListChangedFiles(ctx context.Context, owner, repo string, number int) iter.Seq2[provider.ChangedFile, error] {
	return func(yield func(provider.ChangedFile, error) bool) {
		opts := &gitlab.ListMergeRequestDiffsOptions{
			ListOptions: gitlab.ListOptions{PerPage: provider.PageSize, Page: 1},
		}
		for {
			diffs, resp, err := p.client.MergeRequests.ListMergeRequestDiffs(owner+"/"+repo, number, opts, gitlab.WithContext(ctx))
			if err != nil {
				yield(provider.ChangedFile{}, err)
				return
			}
			metrics.APIPageFetched()

			for _, d := range diffs {
				if !yield(changedFile(d), nil) {
					return
				}
			}

			if resp.NextPage == 0 {
				return
			}
			opts.Page = resp.NextPage
		}
	}
}

func changedFile(d *gitlab.MergeRequestDiff) provider.ChangedFile {
	cf := provider.ChangedFile{Filename: d.NewPath, Status: provider.StatusModified}
	switch {
	case d.NewFile:
		cf.Status = provider.StatusAdded
	case d.DeletedFile:
		cf.Status = provider.StatusRemoved
		cf.Filename = d.OldPath
	case d.RenamedFile:
		cf.Status = provider.StatusRenamed
		cf.PreviousFilename = d.OldPath
	}
	return cf
}
