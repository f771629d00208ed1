package event

import "testing"

func TestFromGitLab_MergeRequest(t *testing.T) {
	event, err := FromGitLab(envMap(map[string]string{
		"CI_PROJECT_PATH":                "group/sub/project",
		"CI_MERGE_REQUEST_IID":           "7",
		"CI_MERGE_REQUEST_DIFF_BASE_SHA": "base",
		"CI_COMMIT_SHA":                  "head",
	}))
	if err != nil {
		t.Fatalf("FromGitLab() error = %v", err)
	}

	if event.Type != TypePullRequest {
		t.Errorf("Type = %q, want %q", event.Type, TypePullRequest)
	}
	if event.RepoOwner != "group/sub" || event.RepoName != "project" {
		t.Errorf("repo = %s/%s, want group/sub/project", event.RepoOwner, event.RepoName)
	}
	if event.MRNumber != 7 {
		t.Errorf("MRNumber = %d, want %d", event.MRNumber, 7)
	}
	if event.BaseSHA != "base" || event.HeadSHA != "head" {
		t.Errorf("BaseSHA, HeadSHA = %q, %q", event.BaseSHA, event.HeadSHA)
	}
}

func TestFromGitLab_Push(t *testing.T) {
	event, err := FromGitLab(envMap(map[string]string{
		"CI_PROJECT_PATH":      "owner/repo",
		"CI_PIPELINE_SOURCE":   "push",
		"CI_COMMIT_SHA":        "after",
		"CI_COMMIT_BEFORE_SHA": "before",
	}))
	if err != nil {
		t.Fatalf("FromGitLab() error = %v", err)
	}
	if event.Type != TypePush {
		t.Errorf("Type = %q, want %q", event.Type, TypePush)
	}
	if event.Before != "before" || event.After != "after" {
		t.Errorf("Before, After = %q, %q", event.Before, event.After)
	}
}

func TestFromGitLab_InvalidIID(t *testing.T) {
	_, err := FromGitLab(envMap(map[string]string{
		"CI_PROJECT_PATH":      "owner/repo",
		"CI_MERGE_REQUEST_IID": "seven",
	}))
	if err == nil {
		t.Error("FromGitLab() expected error for non-numeric IID")
	}
}

func TestFromGitLab_MissingProject(t *testing.T) {
	if _, err := FromGitLab(envMap(nil)); err == nil {
		t.Error("FromGitLab() expected error without CI_PROJECT_PATH")
	}
}
