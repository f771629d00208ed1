package event

import (
	"fmt"
	"strconv"
)

// FromGitLab builds an Event from GitLab CI predefined variables.
func FromGitLab(getenv func(string) string) (*Event, error) {
	owner, name, err := splitRepo(getenv("CI_PROJECT_PATH"))
	if err != nil {
		return nil, err
	}

	event := &Event{
		Provider:  "gitlab",
		RepoOwner: owner,
		RepoName:  name,
		SHA:       getenv("CI_COMMIT_SHA"),
	}

	if iid := getenv("CI_MERGE_REQUEST_IID"); iid != "" {
		n, err := strconv.Atoi(iid)
		if err != nil {
			return nil, fmt.Errorf("parsing CI_MERGE_REQUEST_IID: %w", err)
		}
		event.Type = TypePullRequest
		event.MRNumber = n
		event.BaseSHA = getenv("CI_MERGE_REQUEST_DIFF_BASE_SHA")
		event.HeadSHA = event.SHA
		return event, nil
	}

	if getenv("CI_PIPELINE_SOURCE") == "push" {
		event.Type = TypePush
		event.Before = getenv("CI_COMMIT_BEFORE_SHA")
		event.After = event.SHA
		return event, nil
	}

	event.Type = TypeOther
	return event, nil
}
