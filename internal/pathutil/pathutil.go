// Package pathutil canonicalizes changed-file paths for output.
package pathutil

import (
	"runtime"
	"strings"
)

// Platform describes the path convention of the host running the tool. It is
// resolved once at startup and passed down so output stays deterministic.
type Platform struct {
	Windows bool
}

// DetectPlatform returns the Platform of the running process.
func DetectPlatform() Platform {
	return Platform{Windows: runtime.GOOS == "windows"}
}

// Separator returns the native path separator.
func (p Platform) Separator() string {
	if p.Windows {
		return `\`
	}
	return "/"
}

// Normalizer rewrites paths into their output form.
type Normalizer struct {
	Platform Platform
}

// NewNormalizer creates a Normalizer for the given platform.
func NewNormalizer(p Platform) Normalizer {
	return Normalizer{Platform: p}
}

// Path converts separators to the native form and replaces spaces with
// hyphens. Path(Path(p)) == Path(p).
func (n Normalizer) Path(p string) string {
	return Spaces(n.Separators(p))
}

// Paths applies Path to every element, returning a new slice.
func (n Normalizer) Paths(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = n.Path(p)
	}
	return out
}

// Separators converts forward slashes to the native separator.
func (n Normalizer) Separators(p string) string {
	if n.Platform.Windows {
		return strings.ReplaceAll(p, "/", `\`)
	}
	return p
}

// Posix converts backslashes to forward slashes (the "mixed" form on Windows).
func (n Normalizer) Posix(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

// Spaces replaces every space with a hyphen.
func Spaces(p string) string {
	return strings.ReplaceAll(p, " ", "-")
}

// DirnameMaxDepth returns the directory of path truncated to at most maxDepth
// leading segments. maxDepth <= 0 keeps the full directory. Files at the root
// yield "." unless excludeCurrentDir is set, in which case they yield "".
func (p Platform) DirnameMaxDepth(path string, maxDepth int, excludeCurrentDir bool) string {
	sep := p.Separator()
	if p.Windows {
		path = strings.ReplaceAll(path, "/", sep)
	}

	dir := "."
	if i := strings.LastIndex(path, sep); i > 0 {
		dir = path[:i]
	} else if i == 0 {
		dir = sep
	}

	segments := strings.Split(dir, sep)
	depth := len(segments)
	if maxDepth > 0 && maxDepth < depth {
		depth = maxDepth
	}

	out := strings.Join(segments[:depth], sep)
	if out == "" {
		out = sep
	}
	if excludeCurrentDir && out == "." {
		return ""
	}
	return out
}
