package gitlab

import (
	"context"

	gitlab "gitlab.com/gitlab-org/api/client-go"
)

// APIClient defines the GitLab operations the backport engine depends on.
// It lets tests replace the real client with a call-tracking mock.
type APIClient interface {
	// MergeRequestIIDsForCommit returns the IIDs of merge requests that contain the commit,
	// in the order GitLab reports them. An empty result is not an error.
	MergeRequestIIDsForCommit(ctx context.Context, sha string) ([]int64, error)

	// GetMergeRequest fetches a single merge request by IID.
	GetMergeRequest(ctx context.Context, iid int64) (*gitlab.MergeRequest, error)

	// CreateMergeRequest opens a new merge request.
	CreateMergeRequest(ctx context.Context, params CreateParams) (*gitlab.MergeRequest, error)

	// UpdateLabels replaces the label set of a merge request.
	UpdateLabels(ctx context.Context, iid int64, labels []string) error

	// SetMergeWhenPipelineSucceeds asks GitLab to merge once the pipeline passes.
	SetMergeWhenPipelineSucceeds(ctx context.Context, iid int64, removeSourceBranch bool) error
}

// Ensure Client implements APIClient interface at compile time.
var _ APIClient = (*Client)(nil)
