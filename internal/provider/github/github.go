package github

import (
	"context"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v60/github"

	"github.com/drewdunne/changedfiles/internal/metrics"
	"github.com/drewdunne/changedfiles/internal/provider"
)

// GitHubProvider implements provider.Provider for GitHub.
type GitHubProvider struct {
	client  *github.Client
	token   string
	baseURL string
}

// Option configures the GitHub provider.
type Option func(*GitHubProvider)

// WithBaseURL sets a custom API base URL (GitHub Enterprise or testing).
func WithBaseURL(baseURL string) Option {
	return func(p *GitHubProvider) {
		p.baseURL = baseURL
	}
}

// New creates a new GitHub provider.
func New(token string, opts ...Option) (*GitHubProvider, error) {
	httpClient := &http.Client{
		Transport: &tokenTransport{token: token},
	}
	client := github.NewClient(httpClient)

	p := &GitHubProvider{
		client: client,
		token:  token,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.baseURL != "" {
		base, err := url.Parse(strings.TrimSuffix(p.baseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parsing github api url: %w", err)
		}
		client.BaseURL = base
	}

	return p, nil
}

// tokenTransport adds authorization header to requests.
type tokenTransport struct {
	token string
}

func (t *tokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}
	return http.DefaultTransport.RoundTrip(req)
}

// Name returns the provider name.
func (p *GitHubProvider) Name() string {
	return "github"
}

// ListChangedFiles pages through the pull request files endpoint.
func (p *GitHubProvider) ListChangedFiles(ctx context.Context, owner, repo string, number int) iter.Seq2[provider.ChangedFile, error] {
	return func(yield func(provider.ChangedFile, error) bool) {
		opts := &github.ListOptions{PerPage: provider.PageSize}
		for {
			files, resp, err := p.client.PullRequests.ListFiles(ctx, owner, repo, number, opts)
			if err != nil {
				yield(provider.ChangedFile{}, err)
				return
			}
			metrics.APIPageFetched()

			for _, f := range files {
				cf := provider.ChangedFile{
					Filename:         f.GetFilename(),
					PreviousFilename: f.GetPreviousFilename(),
					Status:           f.GetStatus(),
				}
				if !yield(cf, nil) {
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
