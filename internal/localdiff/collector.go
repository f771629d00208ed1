// Package localdiff builds the changed-file set for a local revision range,
// walking submodules with their own ranges.
package localdiff

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/drewdunne/changedfiles/internal/changes"
	"github.com/drewdunne/changedfiles/internal/filter"
	"github.com/drewdunne/changedfiles/internal/git"
	"github.com/drewdunne/changedfiles/internal/logging"
	"github.com/drewdunne/changedfiles/internal/metrics"
	"github.com/drewdunne/changedfiles/internal/pathutil"
)

// GitClient is the subset of git.Client the collector needs.
type GitClient interface {
	ChangedFiles(ctx context.Context, dir string, r git.DiffResult, opts git.ChangedFilesOptions) (changes.ChangedFiles, error)
	RenamedFiles(ctx context.Context, dir string, r git.DiffResult, parentDir string) ([]git.Rename, error)
	SubmoduleRange(ctx context.Context, dir string, r git.DiffResult, submodulePath string) (git.SubmoduleRange, error)
	CanDiff(ctx context.Context, dir, previous, current string, mode git.DiffMode) bool
}

// Options configures a Collector.
type Options struct {
	WorkingDir                       string
	DiffSubmodule                    bool
	FetchAdditionalSubmoduleHistory  bool
	OutputRenamedFilesAsDeletedAdded bool
	FailOnInitialDiffError           bool
	FailOnSubmoduleDiffError         bool
	OldNewSeparator                  string
	OldNewFilesSeparator             string
	JSON                             bool
}

// Collector resolves the changed-file set for a parent range and its
// submodules. It is used by a single goroutine per run.
type Collector struct {
	git        GitClient
	log        logging.Logger
	normalizer pathutil.Normalizer
	opts       Options
}

// New creates a Collector.
func New(client GitClient, log logging.Logger, normalizer pathutil.Normalizer, opts Options) *Collector {
	if log == nil {
		log = logging.Nop()
	}
	return &Collector{git: client, log: log, normalizer: normalizer, opts: opts}
}

// AllDiffFiles classifies every file changed in r, then appends the changes
// of each resolvable submodule. All paths are normalized before returning.
func (c *Collector) AllDiffFiles(ctx context.Context, r git.DiffResult, submodulePaths []string) (changes.ChangedFiles, error) {
	files, err := c.git.ChangedFiles(ctx, c.opts.WorkingDir, r, git.ChangedFilesOptions{
		ExpandRenames: c.opts.OutputRenamedFilesAsDeletedAdded,
		FailOnError:   c.opts.FailOnInitialDiffError,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", git.ErrInitialDiff, err)
	}

	if c.opts.DiffSubmodule {
		err := c.walkSubmodules(ctx, r, submodulePaths, c.log.Info, func(dir, path string, sub git.DiffResult) error {
			subFiles, err := c.git.ChangedFiles(ctx, dir, sub, git.ChangedFilesOptions{
				ParentDir:     path,
				ExpandRenames: c.opts.OutputRenamedFilesAsDeletedAdded,
				FailOnError:   c.opts.FailOnSubmoduleDiffError,
			})
			if err != nil {
				return fmt.Errorf("%w: %s: %w", git.ErrSubmoduleDiff, path, err)
			}
			files.Merge(subFiles)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	files.Normalize(c.normalizer.Path)
	return files, nil
}

// RenamedFiles lists "old<sep>new" descriptors for the parent range followed
// by every resolvable submodule, serialized per the JSON option. Each path is
// normalized before the pair is joined.
func (c *Collector) RenamedFiles(ctx context.Context, r git.DiffResult, submodulePaths []string) (filter.Result, error) {
	renamed, err := c.git.RenamedFiles(ctx, c.opts.WorkingDir, r, "")
	if err != nil {
		return filter.Result{}, err
	}

	if c.opts.DiffSubmodule {
		err := c.walkSubmodules(ctx, r, submodulePaths, c.log.Warn, func(dir, path string, sub git.DiffResult) error {
			subRenamed, err := c.git.RenamedFiles(ctx, dir, sub, path)
			if err != nil {
				c.log.Warn(fmt.Sprintf("Failed to get renamed files for submodule %s: %v", path, err))
				return nil
			}
			renamed = append(renamed, subRenamed...)
			return nil
		})
		if err != nil {
			return filter.Result{}, err
		}
	}

	descriptors := make([]string, 0, len(renamed))
	for _, rn := range renamed {
		descriptors = append(descriptors, c.normalizer.Path(rn.OldPath)+c.opts.OldNewSeparator+c.normalizer.Path(rn.NewPath))
	}
	return filter.Render(filter.Options{JSON: c.opts.JSON, Separator: c.opts.OldNewFilesSeparator}, descriptors), nil
}

type submoduleFunc func(dir, path string, r git.DiffResult) error

// walkSubmodules resolves each submodule's range and calls fn for the
// resolvable ones, sequentially. Three-dot comparison is preferred; when the
// submodule history cannot support it, fn receives a two-dot range and
// notify reports the fallback.
func (c *Collector) walkSubmodules(ctx context.Context, parent git.DiffResult, paths []string, notify func(string, ...any), fn submoduleFunc) error {
	for _, path := range paths {
		sr, err := c.git.SubmoduleRange(ctx, c.opts.WorkingDir, parent, path)
		if err != nil {
			c.log.Debug(fmt.Sprintf("Unable to resolve submodule range for %s: %v", path, err))
		}
		if err != nil || !sr.Resolved() {
			metrics.SubmoduleSkipped()
			continue
		}

		dir := filepath.Join(c.opts.WorkingDir, path)
		mode := git.ThreeDot
		if !c.git.CanDiff(ctx, dir, sr.PreviousSHA, sr.CurrentSHA, mode) {
			notify(c.fallbackMessage(path))
			metrics.TwoDotFallback()
			mode = git.TwoDot
		}

		metrics.SubmoduleWalked()
		sub := git.DiffResult{PreviousSHA: sr.PreviousSHA, CurrentSHA: sr.CurrentSHA, Mode: mode}
		if err := fn(dir, path, sub); err != nil {
			return err
		}
	}
	return nil
}

func (c *Collector) fallbackMessage(path string) string {
	if c.opts.FetchAdditionalSubmoduleHistory {
		return fmt.Sprintf("To fetch additional submodule history for: %s you can increase history depth using 'fetch_depth' input", path)
	}
	return fmt.Sprintf("Unable to use three dot diff for: %s submodule. Falling back to two dot diff. You can set 'fetch_additional_submodule_history: true' to fetch additional submodule history in order to use three dot diff", path)
}
