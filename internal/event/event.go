// Package event describes the CI trigger a run was started for and resolves
// the revision range to diff.
package event

import (
	"errors"
	"fmt"
	"strings"

	"github.com/drewdunne/changedfiles/internal/git"
)

// Type represents the kind of CI trigger.
type Type string

const (
	TypePullRequest Type = "pull_request"
	TypePush        Type = "push"
	TypeOther       Type = "other"
)

// zeroSHA is what providers send as the previous revision of a new branch.
const zeroSHA = "0000000000000000000000000000000000000000"

// ErrNoRange is returned when no previous revision can be determined.
var ErrNoRange = errors.New("unable to determine revision range")

// Event represents a normalized CI trigger.
type Event struct {
	// Type is the event type.
	Type Type

	// Provider is the git provider (github, gitlab).
	Provider string

	// Repository information.
	RepoOwner string
	RepoName  string

	// Merge request information.
	MRNumber int
	BaseSHA  string
	HeadSHA  string

	// Push information.
	Before string
	After  string

	// SHA is the commit the job runs on.
	SHA string
}

// Key identifies the event in logs.
func (e *Event) Key() string {
	if e.MRNumber > 0 {
		return fmt.Sprintf("%s/%s/%s#%d", e.Provider, e.RepoOwner, e.RepoName, e.MRNumber)
	}
	return e.Provider + "/" + e.RepoOwner + "/" + e.RepoName + "@" + e.SHA
}

// DiffResult resolves the parent revision range. Explicit sha and baseSHA
// win. Pull requests diff base...head against the merge base; anything else
// diffs before..after directly. A push that created the branch diffs
// against the parent of the current commit.
func (e *Event) DiffResult(sha, baseSHA string) (git.DiffResult, error) {
	r := git.DiffResult{Mode: git.TwoDot}

	switch e.Type {
	case TypePullRequest:
		r.Mode = git.ThreeDot
		r.PreviousSHA, r.CurrentSHA = e.BaseSHA, e.HeadSHA
	case TypePush:
		r.PreviousSHA, r.CurrentSHA = e.Before, e.After
	}
	if r.CurrentSHA == "" {
		r.CurrentSHA = e.SHA
	}

	if sha != "" {
		r.CurrentSHA = sha
	}
	if baseSHA != "" {
		r.PreviousSHA = baseSHA
	}

	if r.CurrentSHA == "" {
		return git.DiffResult{}, fmt.Errorf("%w: no current commit", ErrNoRange)
	}
	if r.PreviousSHA == "" || r.PreviousSHA == zeroSHA {
		if e.Type == TypePullRequest {
			return git.DiffResult{}, fmt.Errorf("%w: pull request has no base commit", ErrNoRange)
		}
		r.PreviousSHA = r.CurrentSHA + "^"
	}
	return r, nil
}

// splitRepo splits "owner/name" at the last slash so nested GitLab groups
// stay in the owner.
func splitRepo(full string) (owner, name string, err error) {
	i := strings.LastIndex(full, "/")
	if i <= 0 || i == len(full)-1 {
		return "", "", fmt.Errorf("invalid repository: %q", full)
	}
	return full[:i], full[i+1:], nil
}

// Detect builds the event from the CI environment, reading variables via
// getenv. Outside a known CI system it returns an event of TypeOther.
func Detect(getenv func(string) string) (*Event, error) {
	switch {
	case getenv("GITHUB_ACTIONS") == "true":
		return FromGitHub(getenv("GITHUB_EVENT_PATH"), getenv)
	case getenv("GITLAB_CI") == "true":
		return FromGitLab(getenv)
	}
	return &Event{Type: TypeOther}, nil
}
