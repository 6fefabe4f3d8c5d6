// Package backport cherry-picks a merged GitLab merge request onto the branches
// named by its backport labels and publishes the results.
package backport

import "errors"

// Error definitions for the backport engine.
var (
	errFatal          = errors.New("backport aborted")
	errMissingCommit  = errors.New("commit SHA is required to resolve the merge request")
	errInvalidTrigger = errors.New("merge request IID must be positive")
	errNoCommit       = errors.New("merge request has no commit to cherry-pick")

	// Exported errors for testing and external use.
	ErrFatal          = errFatal
	ErrMissingCommit  = errMissingCommit
	ErrInvalidTrigger = errInvalidTrigger
	ErrNoCommit       = errNoCommit
)
