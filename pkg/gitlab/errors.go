// Package gitlab provides the GitLab API operations used by the backport engine.
package gitlab

import "errors"

// Error definitions for GitLab API operations.
var (
	errTokenRequired     = errors.New("GitLab token is required")
	errProjectIDRequired = errors.New("GitLab project ID is required")
	errCommitRequired    = errors.New("commit SHA is required")
	errInvalidIID        = errors.New("invalid merge request IID")

	// Exported errors for testing and external use.
	ErrTokenRequired     = errTokenRequired
	ErrProjectIDRequired = errProjectIDRequired
	ErrCommitRequired    = errCommitRequired
	ErrInvalidIID        = errInvalidIID
)
