package mocks

import (
	"context"
	"fmt"
	"sync"

	glpkg "github.com/sgaunet/gitlab-backport/pkg/gitlab"
	gitlab "gitlab.com/gitlab-org/api/client-go"
)

const firstCreatedIID = 100

// GitLabAPIClient is a mock implementation of gitlab.APIClient with call tracking.
type GitLabAPIClient struct {
	callTracker

	state   sync.Mutex
	nextIID int64
	polls   map[int64]int

	// Configurable responses
	MergeRequestIIDsForCommitResponse []int64
	MergeRequestIIDsForCommitError    error

	// MergeRequests are returned by GetMergeRequest, keyed by IID.
	MergeRequests      map[int64]*gitlab.MergeRequest
	GetMergeRequestErr error

	// MergeStatusSequence drives polling: each GetMergeRequest call for an IID
	// consumes the next detailed merge status, and the last one repeats.
	MergeStatusSequence map[int64][]string

	// CreateMergeRequestErrors fail creation for the given target branch.
	CreateMergeRequestErrors map[string]error

	UpdateLabelsError                 error
	SetMergeWhenPipelineSucceedsError error
}

// NewGitLabAPIClient creates a new mock GitLab API client.
func NewGitLabAPIClient() *GitLabAPIClient {
	return &GitLabAPIClient{
		callTracker:              callTracker{calls: make([]MethodCall, 0)},
		nextIID:                  firstCreatedIID,
		polls:                    map[int64]int{},
		MergeRequests:            map[int64]*gitlab.MergeRequest{},
		MergeStatusSequence:      map[int64][]string{},
		CreateMergeRequestErrors: map[string]error{},
	}
}

// AddMergeRequest registers mr so GetMergeRequest can return it.
func (m *GitLabAPIClient) AddMergeRequest(mr *gitlab.MergeRequest) {
	m.state.Lock()
	defer m.state.Unlock()
	m.MergeRequests[mr.IID] = mr
}

// MergeRequestIIDsForCommit implements gitlab.APIClient.
func (m *GitLabAPIClient) MergeRequestIIDsForCommit(_ context.Context, sha string) ([]int64, error) {
	m.trackCall("MergeRequestIIDsForCommit", map[string]any{
		"sha": sha,
	})
	return m.MergeRequestIIDsForCommitResponse, m.MergeRequestIIDsForCommitError
}

// GetMergeRequest implements gitlab.APIClient.
func (m *GitLabAPIClient) GetMergeRequest(_ context.Context, iid int64) (*gitlab.MergeRequest, error) {
	m.trackCall("GetMergeRequest", map[string]any{
		"iid": iid,
	})
	if m.GetMergeRequestErr != nil {
		return nil, m.GetMergeRequestErr
	}

	m.state.Lock()
	defer m.state.Unlock()

	mr, ok := m.MergeRequests[iid]
	if !ok {
		return nil, fmt.Errorf("failed to get merge request !%d: 404 Not Found", iid)
	}

	clone := *mr
	if sequence := m.MergeStatusSequence[iid]; len(sequence) > 0 {
		idx := m.polls[iid]
		if idx >= len(sequence) {
			idx = len(sequence) - 1
		}
		clone.DetailedMergeStatus = sequence[idx]
		m.polls[iid]++
	}
	return &clone, nil
}

// CreateMergeRequest implements gitlab.APIClient.
// Successful calls register a new merge request with an incrementing IID.
func (m *GitLabAPIClient) CreateMergeRequest(_ context.Context, params glpkg.CreateParams) (*gitlab.MergeRequest, error) {
	m.trackCall("CreateMergeRequest", map[string]any{
		"sourceBranch":       params.SourceBranch,
		"targetBranch":       params.TargetBranch,
		"title":              params.Title,
		"description":        params.Description,
		"assigneeID":         params.AssigneeID,
		"squash":             params.Squash,
		"removeSourceBranch": params.RemoveSourceBranch,
	})
	if err := m.CreateMergeRequestErrors[params.TargetBranch]; err != nil {
		return nil, err
	}

	m.state.Lock()
	defer m.state.Unlock()

	mr := &gitlab.MergeRequest{}
	mr.IID = m.nextIID
	mr.Title = params.Title
	mr.Description = params.Description
	mr.SourceBranch = params.SourceBranch
	mr.TargetBranch = params.TargetBranch
	mr.WebURL = fmt.Sprintf("https://gitlab.example.com/group/project/-/merge_requests/%d", m.nextIID)
	m.MergeRequests[mr.IID] = mr
	m.nextIID++

	clone := *mr
	return &clone, nil
}

// UpdateLabels implements gitlab.APIClient.
func (m *GitLabAPIClient) UpdateLabels(_ context.Context, iid int64, labels []string) error {
	m.trackCall("UpdateLabels", map[string]any{
		"iid":    iid,
		"labels": append([]string{}, labels...),
	})
	return m.UpdateLabelsError
}

// SetMergeWhenPipelineSucceeds implements gitlab.APIClient.
func (m *GitLabAPIClient) SetMergeWhenPipelineSucceeds(_ context.Context, iid int64, removeSourceBranch bool) error {
	m.trackCall("SetMergeWhenPipelineSucceeds", map[string]any{
		"iid":                iid,
		"removeSourceBranch": removeSourceBranch,
	})
	return m.SetMergeWhenPipelineSucceedsError
}

// CallsFor returns every tracked call to method.
func (m *GitLabAPIClient) CallsFor(method string) []MethodCall {
	var result []MethodCall
	for _, call := range m.GetCalls() {
		if call.Method == method {
			result = append(result, call)
		}
	}
	return result
}

// Mutations counts calls that change state on GitLab.
func (m *GitLabAPIClient) Mutations() int {
	return m.GetCallCount("CreateMergeRequest") +
		m.GetCallCount("UpdateLabels") +
		m.GetCallCount("SetMergeWhenPipelineSucceeds")
}

// Ensure GitLabAPIClient implements gitlab.APIClient interface.
var _ glpkg.APIClient = (*GitLabAPIClient)(nil)
