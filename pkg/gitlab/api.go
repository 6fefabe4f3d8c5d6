package gitlab

import (
	"context"
	"fmt"
	"strings"

	"github.com/sgaunet/bullets"
	"github.com/sgaunet/gitlab-backport/internal/logger"
	"github.com/sgaunet/gitlab-backport/internal/security"
	gitlab "gitlab.com/gitlab-org/api/client-go"
)

// NewClient creates a GitLab client for the given instance and project.
// baseURL is the instance root (CI_SERVER_URL); the API path is appended by client-go.
func NewClient(
	baseURL string, token security.SecureToken, projectID string, opts ...gitlab.ClientOptionFunc,
) (*Client, error) {
	if token.IsEmpty() {
		return nil, errTokenRequired
	}
	if strings.TrimSpace(projectID) == "" {
		return nil, errProjectIDRequired
	}

	options := append([]gitlab.ClientOptionFunc{}, opts...)
	if baseURL != "" {
		options = append(options, gitlab.WithBaseURL(baseURL))
	}

	client, err := gitlab.NewClient(token.Value(), options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitLab client: %w", err)
	}

	return &Client{
		client:    client,
		projectID: projectID,
		log:       logger.NoLogger(),
	}, nil
}

// SetLogger sets the logger for the GitLab client.
func (c *Client) SetLogger(logger *bullets.Logger) {
	c.log = logger
	c.log.Debug("GitLab client logger configured")
}

// ProjectID returns the project the client operates on.
func (c *Client) ProjectID() string {
	return c.projectID
}

// MergeRequestIIDsForCommit returns the IIDs of merge requests associated with sha.
func (c *Client) MergeRequestIIDsForCommit(ctx context.Context, sha string) ([]int64, error) {
	if strings.TrimSpace(sha) == "" {
		return nil, errCommitRequired
	}

	c.log.Debug("Looking up merge requests for commit " + sha)

	mrs, _, err := c.client.Commits.ListMergeRequestsByCommit(c.projectID, sha, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to list merge requests for commit %s: %w", sha, err)
	}

	iids := make([]int64, 0, len(mrs))
	for _, mr := range mrs {
		if mr == nil {
			continue
		}
		iids = append(iids, mr.IID)
	}

	c.log.Debug(fmt.Sprintf("Merge requests found for commit %s: %d", sha, len(iids)))
	return iids, nil
}

// GetMergeRequest fetches a merge request by IID.
func (c *Client) GetMergeRequest(ctx context.Context, iid int64) (*gitlab.MergeRequest, error) {
	if iid <= 0 {
		return nil, fmt.Errorf("%w: %d", errInvalidIID, iid)
	}

	mr, _, err := c.client.MergeRequests.GetMergeRequest(c.projectID, iid, nil, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to get merge request !%d: %w", iid, err)
	}

	c.log.Debug(fmt.Sprintf("Merge request !%d retrieved, merge status: %s", mr.IID, mr.DetailedMergeStatus))
	return mr, nil
}

// CreateMergeRequest opens a merge request described by params.
func (c *Client) CreateMergeRequest(ctx context.Context, params CreateParams) (*gitlab.MergeRequest, error) {
	c.log.Debug(fmt.Sprintf("Creating merge request from %s to %s", params.SourceBranch, params.TargetBranch))

	createOptions := &gitlab.CreateMergeRequestOptions{
		Title:              gitlab.Ptr(params.Title),
		Description:        gitlab.Ptr(params.Description),
		SourceBranch:       gitlab.Ptr(params.SourceBranch),
		TargetBranch:       gitlab.Ptr(params.TargetBranch),
		Squash:             gitlab.Ptr(params.Squash),
		RemoveSourceBranch: gitlab.Ptr(params.RemoveSourceBranch),
	}
	if params.AssigneeID > 0 {
		createOptions.AssigneeID = gitlab.Ptr(params.AssigneeID)
	}

	mr, _, err := c.client.MergeRequests.CreateMergeRequest(c.projectID, createOptions, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to create merge request: %w", err)
	}

	c.log.Debug(fmt.Sprintf("Merge request created - IID: %d, URL: %s", mr.IID, mr.WebURL))
	return mr, nil
}

// UpdateLabels replaces the labels of merge request iid.
func (c *Client) UpdateLabels(ctx context.Context, iid int64, labels []string) error {
	if iid <= 0 {
		return fmt.Errorf("%w: %d", errInvalidIID, iid)
	}

	labelOptions := gitlab.LabelOptions(labels)
	_, _, err := c.client.MergeRequests.UpdateMergeRequest(c.projectID, iid, &gitlab.UpdateMergeRequestOptions{
		Labels: &labelOptions,
	}, gitlab.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to update labels of merge request !%d: %w", iid, err)
	}

	c.log.Debug(fmt.Sprintf("Labels of merge request !%d set to %s", iid, strings.Join(labels, ",")))
	return nil
}

// SetMergeWhenPipelineSucceeds enables merge-when-pipeline-succeeds on merge request iid.
func (c *Client) SetMergeWhenPipelineSucceeds(ctx context.Context, iid int64, removeSourceBranch bool) error {
	if iid <= 0 {
		return fmt.Errorf("%w: %d", errInvalidIID, iid)
	}

	mergeOptions := &gitlab.AcceptMergeRequestOptions{
		MergeWhenPipelineSucceeds: gitlab.Ptr(true),
		ShouldRemoveSourceBranch:  gitlab.Ptr(removeSourceBranch),
	}

	_, _, err := c.client.MergeRequests.AcceptMergeRequest(c.projectID, iid, mergeOptions, gitlab.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to enable merge when pipeline succeeds on !%d: %w", iid, err)
	}

	c.log.Debug(fmt.Sprintf("Merge when pipeline succeeds enabled on !%d", iid))
	return nil
}
