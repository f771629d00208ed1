// Package filter turns a ChangedFiles set into the path list reported for a
// set of change types.
package filter

import (
	"iter"
	"strconv"
	"strings"

	"github.com/drewdunne/changedfiles/internal/changes"
	"github.com/drewdunne/changedfiles/internal/pathutil"
	"github.com/drewdunne/changedfiles/internal/pattern"
)

// Options controls how paths are rendered.
type Options struct {
	DirNames                  bool
	DirNamesMaxDepth          int
	DirNamesExcludeCurrentDir bool
	// DirNamesIncludeFiles selects files reported as-is next to their
	// directory when DirNames is set.
	DirNamesIncludeFiles  []string
	JSON                  bool
	Separator             string
	UsePosixPathSeparator bool
	Platform              pathutil.Platform
}

// Result is a rendered path list. Paths is a []string when JSON output is
// requested and a joined string otherwise.
type Result struct {
	Paths any
	Count string
}

// Paths lazily yields the rendered path of every file of the given types, in
// type order then insertion order. Duplicates and empty strings are not
// removed here; see Unique.
func Paths(opts Options, files changes.ChangedFiles, types []changes.ChangeType) iter.Seq[string] {
	n := pathutil.NewNormalizer(opts.Platform)
	var include *pattern.Matcher
	if opts.DirNames && len(opts.DirNamesIncludeFiles) > 0 {
		include = pattern.New(opts.DirNamesIncludeFiles, opts.Platform)
	}

	return func(yield func(string) bool) {
		emit := func(p string) bool {
			p = pathutil.Spaces(p)
			if opts.Platform.Windows && opts.UsePosixPathSeparator {
				p = pathutil.Spaces(n.Posix(p))
			}
			return yield(p)
		}

		for _, t := range types {
			for _, p := range files[t] {
				if !opts.DirNames {
					if !emit(n.Separators(p)) {
						return
					}
					continue
				}
				if include != nil && !include.Empty() && include.Match(p) {
					if !emit(n.Path(p)) {
						return
					}
				}
				dir := opts.Platform.DirnameMaxDepth(p, opts.DirNamesMaxDepth, opts.DirNamesExcludeCurrentDir)
				if !emit(dir) {
					return
				}
			}
		}
	}
}

// Unique collects seq, keeping the first occurrence of each path and
// dropping empty strings.
func Unique(seq iter.Seq[string]) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for p := range seq {
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Files returns the deduplicated paths for types.
func Files(opts Options, files changes.ChangedFiles, types ...changes.ChangeType) []string {
	return Unique(Paths(opts, files, types))
}

// ChangeTypeFiles renders the deduplicated paths for types.
func ChangeTypeFiles(opts Options, files changes.ChangedFiles, types ...changes.ChangeType) Result {
	return Render(opts, Files(opts, files, types...))
}

// AllChangeTypeFiles renders every changed path regardless of type. Include
// patterns do not apply.
func AllChangeTypeFiles(opts Options, files changes.ChangedFiles) Result {
	opts.DirNamesIncludeFiles = nil
	return ChangeTypeFiles(opts, files, changes.AllChangeTypes...)
}

// Render builds a Result from an already deduplicated list. Only JSON and
// Separator are read from opts.
func Render(opts Options, paths []string) Result {
	count := strconv.Itoa(len(paths))
	if opts.JSON {
		if paths == nil {
			paths = []string{}
		}
		return Result{Paths: paths, Count: count}
	}
	return Result{Paths: strings.Join(paths, opts.Separator), Count: count}
}
