package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
)

// Runner executes git subcommands in a directory.
type Runner interface {
	Run(ctx context.Context, dir string, args ...string) (string, error)
}

// ExecRunner runs the git binary.
type ExecRunner struct {
	Bin string
}

// NewExecRunner creates a runner for the given git binary ("git" if empty).
func NewExecRunner(bin string) *ExecRunner {
	if strings.TrimSpace(bin) == "" {
		bin = "git"
	}
	return &ExecRunner{Bin: bin}
}

// Run executes git with args in dir and returns stdout. A non-zero exit is
// reported as *ExitError, with stdout still returned.
func (e *ExecRunner) Run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, e.Bin, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return stdout.String(), &ExitError{
				Command: commandName(args),
				Code:    exitErr.ExitCode(),
				Stderr:  redactTokens(strings.TrimSpace(stderr.String())),
			}
		}
		return "", fmt.Errorf("running git %s: %w", commandName(args), err)
	}
	return stdout.String(), nil
}

// commandName returns the subcommand without arguments, which may hold paths.
func commandName(args []string) string {
	for _, a := range args {
		if !strings.HasPrefix(a, "-") {
			return a
		}
	}
	return "<none>"
}

var (
	credentialURL = regexp.MustCompile(`https?://[^\s@]+@`)
	tokenParam    = regexp.MustCompile(`(?i)(token|secret|password|bearer)=[^\s]+`)
)

// redactTokens removes credentials from git error output.
func redactTokens(s string) string {
	s = credentialURL.ReplaceAllString(s, "https://<redacted>@")
	return tokenParam.ReplaceAllString(s, "$1=<redacted>")
}
