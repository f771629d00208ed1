// Package pattern filters changed files by glob patterns.
//
// Patterns follow doublestar semantics: "**" crosses directories while "*"
// and "?" stop at a separator. Dotfiles match like any other name.
// A pattern prefixed with "!" excludes paths.
package pattern

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/drewdunne/changedfiles/internal/changes"
	"github.com/drewdunne/changedfiles/internal/pathutil"
)

// Matcher holds a parsed pattern list.
type Matcher struct {
	include  []string
	exclude  []string
	platform pathutil.Platform
}

// New parses patterns. Blank lines and surrounding whitespace are ignored.
func New(patterns []string, platform pathutil.Platform) *Matcher {
	m := &Matcher{platform: platform}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if neg, ok := strings.CutPrefix(p, "!"); ok {
			if neg = strings.TrimSpace(neg); neg != "" {
				m.exclude = append(m.exclude, m.slash(neg))
			}
			continue
		}
		m.include = append(m.include, m.slash(p))
	}
	return m
}

// Empty reports whether the list had no usable patterns.
func (m *Matcher) Empty() bool {
	return len(m.include) == 0 && len(m.exclude) == 0
}

// Match reports whether path is selected: it must match an include pattern
// (or the list has only exclusions) and must not match any exclusion.
func (m *Matcher) Match(path string) bool {
	path = m.slash(path)
	for _, p := range m.exclude {
		if match(p, path) {
			return false
		}
	}
	if len(m.include) == 0 {
		return len(m.exclude) > 0
	}
	for _, p := range m.include {
		if match(p, path) {
			return true
		}
	}
	return false
}

// Filter returns the subset of files selected by patterns, keeping every
// change-type key. An empty pattern list returns a normalized copy of files.
func Filter(files changes.ChangedFiles, patterns []string, platform pathutil.Platform) changes.ChangedFiles {
	m := New(patterns, platform)
	normalize := pathutil.NewNormalizer(platform).Path

	out := changes.New()
	for t, paths := range files {
		for _, p := range paths {
			if m.Empty() || m.Match(p) {
				out.Add(t, normalize(p))
			}
		}
	}
	return out
}

func match(pattern, path string) bool {
	ok, err := doublestar.Match(pattern, path)
	return err == nil && ok
}

// slash converts Windows separators so doublestar sees "/". Elsewhere a
// backslash stays an escape character.
func (m *Matcher) slash(p string) string {
	if !m.platform.Windows {
		return p
	}
	return strings.ReplaceAll(p, `\`, "/")
}
