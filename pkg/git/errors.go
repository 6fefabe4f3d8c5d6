// Package git prepares the local checkout and runs the git operations of a backport.
package git

import "errors"

// Error definitions for git operations.
var (
	errBranchExists     = errors.New("local branch already exists")
	errBranchNameEmpty  = errors.New("branch name is required")
	errCommitEmpty      = errors.New("commit is required")
	errMessageEmpty     = errors.New("commit message is required")
	errNoRemoteURL      = errors.New("no URLs found for remote")
	errIdentityRequired = errors.New("git user name and email are required")
	errTokenEmpty       = errors.New("token is required to inject credentials")

	// Exported errors for testing and external use.
	ErrBranchExists     = errBranchExists
	ErrBranchNameEmpty  = errBranchNameEmpty
	ErrCommitEmpty      = errCommitEmpty
	ErrMessageEmpty     = errMessageEmpty
	ErrNoRemoteURL      = errNoRemoteURL
	ErrIdentityRequired = errIdentityRequired
	ErrTokenEmpty       = errTokenEmpty
)
