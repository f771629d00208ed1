package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/drewdunne/changedfiles/internal/changes"
	"github.com/drewdunne/changedfiles/internal/logging"
	"github.com/drewdunne/changedfiles/internal/metrics"
)

// Client answers the diff queries needed by the changed-files engine.
type Client struct {
	runner Runner
	log    logging.Logger
}

// NewClient creates a Client on top of runner.
func NewClient(runner Runner, log logging.Logger) *Client {
	if log == nil {
		log = logging.Nop()
	}
	return &Client{runner: runner, log: log}
}

// ChangedFiles classifies every file changed in r. When git fails the error
// is returned only if opts.FailOnError is set; otherwise a warning is logged
// and an empty set is returned.
func (c *Client) ChangedFiles(ctx context.Context, dir string, r DiffResult, opts ChangedFilesOptions) (changes.ChangedFiles, error) {
	args := []string{
		"diff", "--name-status", "-z", "--ignore-submodules=all",
		"--diff-filter=" + changes.DiffFilter(changes.AllChangeTypes),
	}
	if opts.ExpandRenames {
		args = append(args, "--no-renames")
	}
	args = append(args, r.Range())

	metrics.DiffRun()
	out, err := c.runner.Run(ctx, dir, args...)
	files := changes.New()
	if err != nil {
		if opts.FailOnError {
			return nil, fmt.Errorf("listing changed files for %s: %w", r.Range(), err)
		}
		c.log.Warn(fmt.Sprintf("Failed to get changed files for %s: %v", r.Range(), err))
		return files, nil
	}

	for _, e := range parseNameStatus(out) {
		oldPath := prefixed(opts.ParentDir, e.path)
		switch e.status {
		case changes.Renamed:
			newPath := prefixed(opts.ParentDir, e.newPath)
			if opts.ExpandRenames {
				files.Add(changes.Deleted, oldPath)
				files.Add(changes.Added, newPath)
			} else {
				files.Add(changes.Renamed, newPath)
			}
		case changes.Copied:
			files.Add(changes.Copied, prefixed(opts.ParentDir, e.newPath))
		default:
			files.Add(e.status, oldPath)
		}
	}
	metrics.FilesClassified(files.Len())
	return files, nil
}

// RenamedFiles returns every rename in r, prefixed with parentDir.
func (c *Client) RenamedFiles(ctx context.Context, dir string, r DiffResult, parentDir string) ([]Rename, error) {
	metrics.DiffRun()
	out, err := c.runner.Run(ctx, dir,
		"diff", "--name-status", "-z", "--ignore-submodules=all", "--diff-filter=R", r.Range())
	if err != nil {
		return nil, fmt.Errorf("listing renamed files for %s: %w", r.Range(), err)
	}

	var renamed []Rename
	for _, e := range parseNameStatus(out) {
		if e.status != changes.Renamed {
			continue
		}
		renamed = append(renamed, Rename{OldPath: prefixed(parentDir, e.path), NewPath: prefixed(parentDir, e.newPath)})
	}
	return renamed, nil
}

var (
	previousSubprojectCommit = regexp.MustCompile(`(?m)^-Subproject commit (\S+)`)
	currentSubprojectCommit  = regexp.MustCompile(`(?m)^\+Subproject commit (\S+)`)
)

// SubmoduleRange resolves the revisions a submodule pointed to at both ends
// of the parent range. An unresolved range is not an error.
func (c *Client) SubmoduleRange(ctx context.Context, dir string, r DiffResult, submodulePath string) (SubmoduleRange, error) {
	out, err := c.runner.Run(ctx, dir, "diff", r.Range(), "--", submodulePath)
	if err != nil {
		return SubmoduleRange{}, fmt.Errorf("diffing submodule %s: %w", submodulePath, err)
	}

	m := currentSubprojectCommit.FindStringSubmatch(out)
	if m == nil {
		return SubmoduleRange{}, nil
	}
	result := SubmoduleRange{PreviousSHA: EmptyTreeSHA, CurrentSHA: m[1]}
	if prev := previousSubprojectCommit.FindStringSubmatch(out); prev != nil {
		result.PreviousSHA = prev[1]
	}
	return result, nil
}

// CanDiff reports whether the two revisions can be compared in mode within dir.
// Three-dot comparison needs a merge base reachable in the local history.
func (c *Client) CanDiff(ctx context.Context, dir, previous, current string, mode DiffMode) bool {
	if mode == ThreeDot {
		base, err := c.runner.Run(ctx, dir, "merge-base", previous, current)
		base = strings.TrimSpace(base)
		if err != nil || base == "" {
			return false
		}
		_, err = c.runner.Run(ctx, dir, "log", "--format=%H", base+".."+current)
		return err == nil
	}

	_, err := c.runner.Run(ctx, dir, "diff", "--quiet", previous, current)
	if err == nil {
		return true
	}
	var exitErr *ExitError
	return errors.As(err, &exitErr) && exitErr.Code == 1
}

// SubmodulePaths lists the registered submodules of the repository at dir,
// recursively. Repositories without .gitmodules have none.
func (c *Client) SubmodulePaths(ctx context.Context, dir string) ([]string, error) {
	if _, err := os.Stat(filepath.Join(dir, ".gitmodules")); os.IsNotExist(err) {
		return nil, nil
	}

	out, err := c.runner.Run(ctx, dir, "submodule", "status", "--recursive")
	if err != nil {
		return nil, fmt.Errorf("listing submodules: %w", err)
	}

	var paths []string
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(strings.TrimSpace(line))
		if len(fields) < 2 {
			continue
		}
		paths = append(paths, fields[1])
	}
	return paths, nil
}

type nameStatus struct {
	status  changes.ChangeType
	path    string
	newPath string
}

// parseNameStatus parses `git diff --name-status -z` output. Renames and
// copies carry two paths; everything else carries one.
func parseNameStatus(out string) []nameStatus {
	tokens := strings.Split(strings.TrimRight(out, "\x00"), "\x00")
	var entries []nameStatus
	for i := 0; i < len(tokens); {
		code := strings.TrimSpace(tokens[i])
		if code == "" {
			i++
			continue
		}
		status := changes.ParseChangeType(code)
		if (status == changes.Renamed || status == changes.Copied) && i+2 < len(tokens) {
			entries = append(entries, nameStatus{status: status, path: tokens[i+1], newPath: tokens[i+2]})
			i += 3
			continue
		}
		if i+1 >= len(tokens) {
			break
		}
		entries = append(entries, nameStatus{status: status, path: tokens[i+1]})
		i += 2
	}
	return entries
}

func prefixed(parentDir, p string) string {
	if parentDir == "" {
		return p
	}
	return path.Join(filepath.ToSlash(parentDir), p)
}
