package provider

import (
	"context"
	"iter"
)

// Provider defines the interface for hosted git provider operations.
type Provider interface {
	// Name returns the provider name (github, gitlab).
	Name() string

	// ListChangedFiles lazily yields the files of a pull/merge request,
	// fetching pages of PageSize sequentially. A failed page yields the
	// error and ends the sequence.
	ListChangedFiles(ctx context.Context, owner, repo string, number int) iter.Seq2[ChangedFile, error]
}

// PageSize is the number of files requested per API page.
const PageSize = 100
