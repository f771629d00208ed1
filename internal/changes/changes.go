// Package changes holds the change-type taxonomy and the per-type file set
// shared by the local diff and hosted API sources.
package changes

// ChangeType is the single-letter classification of a changed file.
type ChangeType string

const (
	Added       ChangeType = "A"
	Copied      ChangeType = "C"
	Deleted     ChangeType = "D"
	Modified    ChangeType = "M"
	Renamed     ChangeType = "R"
	TypeChanged ChangeType = "T"
	Unmerged    ChangeType = "U"
	Unknown     ChangeType = "X"
)

// AllChangeTypes lists every change type in diff-filter order (ACDMRTUX).
var AllChangeTypes = []ChangeType{Added, Copied, Deleted, Modified, Renamed, TypeChanged, Unmerged, Unknown}

// ChangedTypes are the types reported as "changed" (ACMR).
var ChangedTypes = []ChangeType{Added, Copied, Modified, Renamed}

// ModifiedTypes are the types reported as "modified" (ACMRD).
var ModifiedTypes = []ChangeType{Added, Copied, Modified, Renamed, Deleted}

// ParseChangeType maps a git name-status code (A, M, R100, C075, ...) to a
// ChangeType. Anything unrecognized is Unknown.
func ParseChangeType(code string) ChangeType {
	if code == "" {
		return Unknown
	}
	switch code[0] {
	case 'A':
		return Added
	case 'C':
		return Copied
	case 'D':
		return Deleted
	case 'M':
		return Modified
	case 'R':
		return Renamed
	case 'T':
		return TypeChanged
	case 'U':
		return Unmerged
	default:
		return Unknown
	}
}

// Name returns a human readable name used in output keys.
func (t ChangeType) Name() string {
	switch t {
	case Added:
		return "added"
	case Copied:
		return "copied"
	case Deleted:
		return "deleted"
	case Modified:
		return "modified"
	case Renamed:
		return "renamed"
	case TypeChanged:
		return "type_changed"
	case Unmerged:
		return "unmerged"
	default:
		return "unknown"
	}
}

// DiffFilter joins change types into a git --diff-filter argument.
func DiffFilter(types []ChangeType) string {
	b := make([]byte, 0, len(types))
	for _, t := range types {
		b = append(b, t[0])
	}
	return string(b)
}

// ChangedFiles maps every change type to the paths classified under it, in
// diff-scan order. All eight keys are always present.
type ChangedFiles map[ChangeType][]string

// New returns a ChangedFiles with an empty slice for every change type.
func New() ChangedFiles {
	c := make(ChangedFiles, len(AllChangeTypes))
	for _, t := range AllChangeTypes {
		c[t] = []string{}
	}
	return c
}

// Add appends path under t.
func (c ChangedFiles) Add(t ChangeType, path string) {
	c[t] = append(c[t], path)
}

// Merge appends every entry of other after the entries already present for
// the same type. c is mutated in place.
func (c ChangedFiles) Merge(other ChangedFiles) {
	for t, files := range other {
		c[t] = append(c[t], files...)
	}
}

// Normalize rewrites every path through fn.
func (c ChangedFiles) Normalize(fn func(string) string) {
	for t, files := range c {
		for i, f := range files {
			files[i] = fn(f)
		}
		c[t] = files
	}
}

// Files returns the concatenated paths for types, in the order given.
func (c ChangedFiles) Files(types ...ChangeType) []string {
	var out []string
	for _, t := range types {
		out = append(out, c[t]...)
	}
	return out
}

// Len returns the total number of entries across all types.
func (c ChangedFiles) Len() int {
	n := 0
	for _, files := range c {
		n += len(files)
	}
	return n
}
