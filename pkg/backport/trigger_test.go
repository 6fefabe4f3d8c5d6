package backport_test

import (
	"context"
	"errors"
	"testing"

	"github.com/sgaunet/gitlab-backport/pkg/backport"
	"github.com/sgaunet/gitlab-backport/testing/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTrigger_DirectIID(t *testing.T) {
	api := mocks.NewGitLabAPIClient()

	iid, found, err := backport.ResolveTrigger(context.Background(), api, backport.Trigger{
		CommitSHA: "abc123", MergeRequestIID: 42,
	})
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(42), iid)
	assert.Zero(t, api.GetCallCount("MergeRequestIIDsForCommit"))
}

func TestResolveTrigger_FromCommit(t *testing.T) {
	api := mocks.NewGitLabAPIClient()
	api.MergeRequestIIDsForCommitResponse = []int64{42, 41}

	iid, found, err := backport.ResolveTrigger(context.Background(), api, backport.Trigger{CommitSHA: " abc123 "})
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(42), iid, "the first match is used")
	assert.Equal(t, "abc123", api.GetLastCall("MergeRequestIIDsForCommit").Args["sha"])
}

func TestResolveTrigger_DirectPush(t *testing.T) {
	api := mocks.NewGitLabAPIClient()
	api.MergeRequestIIDsForCommitResponse = []int64{}

	iid, found, err := backport.ResolveTrigger(context.Background(), api, backport.Trigger{CommitSHA: "abc123"})
	require.NoError(t, err)
	assert.False(t, found)
	assert.Zero(t, iid)
}

func TestResolveTrigger_Errors(t *testing.T) {
	api := mocks.NewGitLabAPIClient()

	_, _, err := backport.ResolveTrigger(context.Background(), api, backport.Trigger{})
	assert.ErrorIs(t, err, backport.ErrMissingCommit)
	assert.ErrorIs(t, err, backport.ErrFatal)

	_, _, err = backport.ResolveTrigger(context.Background(), api, backport.Trigger{MergeRequestIID: -1})
	assert.ErrorIs(t, err, backport.ErrInvalidTrigger)

	apiErr := errors.New("503 Service Unavailable")
	api.MergeRequestIIDsForCommitError = apiErr
	_, _, err = backport.ResolveTrigger(context.Background(), api, backport.Trigger{CommitSHA: "abc123"})
	assert.ErrorIs(t, err, backport.ErrFatal)
	assert.ErrorIs(t, err, apiErr)
}
