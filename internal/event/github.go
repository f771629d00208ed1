package event

import (
	"encoding/json"
	"fmt"
	"os"
)

// gitHubPayload holds the fields of a workflow event payload used here.
type gitHubPayload struct {
	Number      int `json:"number"`
	PullRequest struct {
		Number int `json:"number"`
		Head   struct {
			SHA string `json:"sha"`
		} `json:"head"`
		Base struct {
			SHA string `json:"sha"`
		} `json:"base"`
	} `json:"pull_request"`
	Before     string `json:"before"`
	After      string `json:"after"`
	Repository struct {
		FullName string `json:"full_name"`
	} `json:"repository"`
}

// FromGitHub builds an Event from the GitHub Actions environment and the
// event payload at eventPath. A missing payload file is not an error; the
// event is then built from the environment alone.
func FromGitHub(eventPath string, getenv func(string) string) (*Event, error) {
	var payload gitHubPayload
	if eventPath != "" {
		raw, err := os.ReadFile(eventPath)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading event payload: %w", err)
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &payload); err != nil {
				return nil, fmt.Errorf("parsing payload: %w", err)
			}
		}
	}

	full := payload.Repository.FullName
	if full == "" {
		full = getenv("GITHUB_REPOSITORY")
	}
	owner, name, err := splitRepo(full)
	if err != nil {
		return nil, err
	}

	event := &Event{
		Provider:  "github",
		RepoOwner: owner,
		RepoName:  name,
		SHA:       getenv("GITHUB_SHA"),
	}

	switch getenv("GITHUB_EVENT_NAME") {
	case "pull_request", "pull_request_target", "pull_request_review", "pull_request_review_comment":
		event.Type = TypePullRequest
		event.MRNumber = payload.PullRequest.Number
		if event.MRNumber == 0 {
			event.MRNumber = payload.Number
		}
		event.BaseSHA = payload.PullRequest.Base.SHA
		event.HeadSHA = payload.PullRequest.Head.SHA
	case "push":
		event.Type = TypePush
		event.Before = payload.Before
		event.After = payload.After
	default:
		event.Type = TypeOther
	}

	return event, nil
}
