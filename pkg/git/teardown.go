package git

import (
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// TeardownReport tracks the state of each step run after the backport loop.
type TeardownReport struct {
	// Step completion status
	CredentialsRemoved bool
	HeadRestored       bool
	DeletedBranches    []string

	// Errors encountered (nil if step succeeded)
	CredentialsError error
	RestoreError     error
	DeleteErrors     []error
}

// Success returns true if the credentials were removed.
// Restoring HEAD and deleting branches are best-effort.
func (r *TeardownReport) Success() bool {
	return r.CredentialsRemoved
}

// FirstError returns the first error encountered, or nil if all succeeded.
func (r *TeardownReport) FirstError() error {
	if r.CredentialsError != nil {
		return r.CredentialsError
	}
	if r.RestoreError != nil {
		return r.RestoreError
	}
	if len(r.DeleteErrors) > 0 {
		return r.DeleteErrors[0]
	}
	return nil
}

// Teardown returns the checkout to the state it was in before the run.
//
// Removing credentials always runs and is the only critical step. When
// originalHead is not empty the working tree is force-checked-out at that
// commit, then localBranches are deleted. Both are best-effort.
func (r *Repository) Teardown(originalHead string, localBranches []string) *TeardownReport {
	report := &TeardownReport{}

	if err := r.RemoveCredentials(); err != nil {
		report.CredentialsError = err
		r.log.Error("Failed to remove git credentials from repository config")
	} else {
		report.CredentialsRemoved = true
	}

	if originalHead == "" {
		return report
	}

	if err := r.checkoutHash(originalHead); err != nil {
		report.RestoreError = fmt.Errorf("failed to restore HEAD to %s: %w", originalHead, err)
		r.log.Warn("Could not restore the original HEAD, leaving working branches in place")
		return report
	}
	report.HeadRestored = true

	for _, branch := range localBranches {
		if err := r.repo.Storer.RemoveReference(plumbing.NewBranchReferenceName(branch)); err != nil {
			report.DeleteErrors = append(report.DeleteErrors, fmt.Errorf("failed to delete branch %s: %w", branch, err))
			r.log.Warn("Failed to delete local branch " + branch)
			continue
		}
		report.DeletedBranches = append(report.DeletedBranches, branch)
	}

	return report
}

func (r *Repository) checkoutHash(hash string) error {
	worktree, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	return worktree.Checkout(&git.CheckoutOptions{
		Hash:  plumbing.NewHash(hash),
		Force: true,
	})
}
