package git

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// GitError wraps failures when invoking the git binary.
type GitError struct {
	Args     []string
	Output   string
	ExitCode int // -1 when git did not run to completion
	Err      error
}

func newGitError(args []string, output string, err error) *GitError {
	code := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	}
	return &GitError{Args: args, Output: output, ExitCode: code, Err: err}
}

func (e *GitError) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += "\n" + out
	}
	return msg
}

func (e *GitError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
