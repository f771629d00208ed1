package git

import (
	"errors"
	"fmt"
)

var (
	// ErrInitialDiff indicates the parent repository diff failed.
	ErrInitialDiff = errors.New("initial diff failed")

	// ErrSubmoduleDiff indicates a submodule diff failed.
	ErrSubmoduleDiff = errors.New("submodule diff failed")
)

// ExitError is returned when git exits with a non-zero status.
type ExitError struct {
	Command string
	Code    int
	Stderr  string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("git %s: exit status %d: %s", e.Command, e.Code, e.Stderr)
}
