// Package git runs the git commands the changed-files engine depends on and
// parses their output.
package git

// DiffMode selects how two revisions are compared.
type DiffMode string

const (
	// TwoDot compares the two revisions directly.
	TwoDot DiffMode = ".."
	// ThreeDot compares the current revision against the merge base.
	ThreeDot DiffMode = "..."
)

// EmptyTreeSHA is the hash of the empty tree, used when a submodule has no
// previous commit.
const EmptyTreeSHA = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"

// DiffResult is the parent-level revision range.
type DiffResult struct {
	PreviousSHA string
	CurrentSHA  string
	Mode        DiffMode
}

// Range renders the range as a git revision argument, e.g. "a...b".
func (d DiffResult) Range() string {
	return d.PreviousSHA + string(d.Mode) + d.CurrentSHA
}

// SubmoduleRange is the revision range of a submodule between two parent
// revisions.
type SubmoduleRange struct {
	PreviousSHA string
	CurrentSHA  string
}

// Resolved reports whether both revisions are known.
func (s SubmoduleRange) Resolved() bool {
	return s.PreviousSHA != "" && s.CurrentSHA != ""
}

// Rename is one renamed file, paths relative to the parent repository.
type Rename struct {
	OldPath string
	NewPath string
}

// ChangedFilesOptions controls ChangedFiles.
type ChangedFilesOptions struct {
	// ParentDir prefixes every path; set for submodules.
	ParentDir string
	// ExpandRenames reports renames as a deletion plus an addition.
	ExpandRenames bool
	// FailOnError returns diff failures instead of an empty result.
	FailOnError bool
}
