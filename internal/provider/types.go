package provider

// Status values reported for a changed file, in GitHub's vocabulary.
const (
	StatusAdded     = "added"
	StatusRemoved   = "removed"
	StatusModified  = "modified"
	StatusRenamed   = "renamed"
	StatusCopied    = "copied"
	StatusChanged   = "changed"
	StatusUnchanged = "unchanged"
)

// ChangedFile represents a file changed in a merge request.
type ChangedFile struct {
	Filename string
	// PreviousFilename is set for renames.
	PreviousFilename string
	Status           string
}
