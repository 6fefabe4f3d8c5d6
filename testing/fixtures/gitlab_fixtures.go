// Package fixtures provides common test data structures for testing.
package fixtures

import (
	"fmt"

	gitlab "gitlab.com/gitlab-org/api/client-go"
)

// Test constants for GitLab fixtures.
const (
	DefaultAuthorID = 9
	DefaultSHA      = "abc123"
	DefaultTitle    = "Fix null pointer in parser"
)

// MergeRequestOption customizes a fixture merge request.
type MergeRequestOption func(*gitlab.MergeRequest)

// MergedMergeRequest returns a merged merge request with the given IID and labels.
func MergedMergeRequest(iid int64, labels []string, opts ...MergeRequestOption) *gitlab.MergeRequest {
	mr := &gitlab.MergeRequest{}
	mr.IID = iid
	mr.Title = DefaultTitle
	mr.State = "merged"
	mr.SourceBranch = "feature-branch"
	mr.TargetBranch = "main"
	mr.SHA = DefaultSHA
	mr.Labels = gitlab.Labels(append([]string{}, labels...))
	mr.Author = &gitlab.BasicUser{ID: DefaultAuthorID, Username: "developer"}
	mr.WebURL = fmt.Sprintf("https://gitlab.example.com/group/project/-/merge_requests/%d", iid)

	for _, opt := range opts {
		opt(mr)
	}
	return mr
}

// WithTitle sets the merge request title.
func WithTitle(title string) MergeRequestOption {
	return func(mr *gitlab.MergeRequest) {
		mr.Title = title
	}
}

// WithSHA sets the head commit of the merge request.
func WithSHA(sha string) MergeRequestOption {
	return func(mr *gitlab.MergeRequest) {
		mr.SHA = sha
	}
}

// WithMergeCommit sets the merge commit SHA.
func WithMergeCommit(sha string) MergeRequestOption {
	return func(mr *gitlab.MergeRequest) {
		mr.MergeCommitSHA = sha
	}
}

// WithSquashCommit sets the squash commit SHA.
func WithSquashCommit(sha string) MergeRequestOption {
	return func(mr *gitlab.MergeRequest) {
		mr.SquashCommitSHA = sha
	}
}

// WithoutAuthor clears the author.
func WithoutAuthor() MergeRequestOption {
	return func(mr *gitlab.MergeRequest) {
		mr.Author = nil
	}
}
