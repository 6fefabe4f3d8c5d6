package gitlab

import (
	"github.com/sgaunet/bullets"
	gitlab "gitlab.com/gitlab-org/api/client-go"
)

// Detailed merge status values reported by GitLab for an open merge request.
const (
	MergeStatusMergeable      = "mergeable"
	MergeStatusCIMustPass     = "ci_must_pass"
	MergeStatusCIStillRunning = "ci_still_running"
	MergeStatusChecking       = "checking"
	MergeStatusUnchecked      = "unchecked"
	MergeStatusConflict       = "conflict"
)

// CreateParams describes a merge request to open.
type CreateParams struct {
	SourceBranch       string
	TargetBranch       string
	Title              string
	Description        string
	AssigneeID         int64 // zero leaves the merge request unassigned
	Squash             bool
	RemoveSourceBranch bool
}

// Client represents a GitLab API client wrapper bound to one project.
type Client struct {
	client    *gitlab.Client
	projectID string
	log       *bullets.Logger
}

// IsMergeable reports whether GitLab finished its mergeability check and
// found nothing blocking but the pipeline, so merge when pipeline succeeds
// can be enabled.
func IsMergeable(mr *gitlab.MergeRequest) bool {
	if mr == nil {
		return false
	}
	switch mr.DetailedMergeStatus {
	case MergeStatusMergeable, MergeStatusCIMustPass, MergeStatusCIStillRunning:
		return true
	default:
		return false
	}
}
