package provider

import (
	"context"
	"fmt"

	"github.com/drewdunne/changedfiles/internal/changes"
	"github.com/drewdunne/changedfiles/internal/metrics"
	"github.com/drewdunne/changedfiles/internal/pathutil"
)

// StatusChangeType maps a provider status to its change type. Unrecognised
// statuses are Unknown.
func StatusChangeType(status string) changes.ChangeType {
	switch status {
	case StatusAdded:
		return changes.Added
	case StatusRemoved:
		return changes.Deleted
	case StatusModified:
		return changes.Modified
	case StatusRenamed:
		return changes.Renamed
	case StatusCopied:
		return changes.Copied
	case StatusChanged:
		return changes.TypeChanged
	case StatusUnchanged:
		return changes.Unmerged
	default:
		return changes.Unknown
	}
}

// Classify lists every file of a pull/merge request and classifies it. With
// expandRenames a rename becomes a deletion of the previous name and an
// addition of the new one. Paths are normalized. Any listing error aborts.
func Classify(ctx context.Context, p Provider, owner, repo string, number int, expandRenames bool, n pathutil.Normalizer) (changes.ChangedFiles, error) {
	out := changes.New()
	for f, err := range p.ListChangedFiles(ctx, owner, repo, number) {
		if err != nil {
			return nil, fmt.Errorf("listing %s changed files for %s/%s#%d: %w", p.Name(), owner, repo, number, err)
		}

		t := StatusChangeType(f.Status)
		if t == changes.Renamed && expandRenames {
			out.Add(changes.Deleted, n.Path(f.PreviousFilename))
			out.Add(changes.Added, n.Path(f.Filename))
			continue
		}
		out.Add(t, n.Path(f.Filename))
	}
	metrics.FilesClassified(out.Len())
	return out, nil
}

// RenamedFiles lists "previous<sep>current" descriptors for every renamed
// file of a pull/merge request, normalized.
func RenamedFiles(ctx context.Context, p Provider, owner, repo string, number int, sep string, n pathutil.Normalizer) ([]string, error) {
	var out []string
	for f, err := range p.ListChangedFiles(ctx, owner, repo, number) {
		if err != nil {
			return nil, fmt.Errorf("listing %s renamed files for %s/%s#%d: %w", p.Name(), owner, repo, number, err)
		}
		if StatusChangeType(f.Status) == changes.Renamed {
			out = append(out, n.Path(f.PreviousFilename)+sep+n.Path(f.Filename))
		}
	}
	return out, nil
}
