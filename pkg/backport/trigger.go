package backport

import (
	"context"
	"fmt"
	"strings"

	"github.com/sgaunet/gitlab-backport/pkg/gitlab"
)

// Trigger identifies what started the run: a merged commit or a merge request IID.
type Trigger struct {
	CommitSHA       string
	MergeRequestIID int64
}

// ResolveTrigger returns the IID of the merge request to backport.
//
// A direct IID wins over the commit. found is false when the commit does not
// belong to any merge request, which callers treat as a no-op. Lookup
// failures are wrapped in ErrFatal.
func ResolveTrigger(ctx context.Context, api gitlab.APIClient, trigger Trigger) (int64, bool, error) {
	if trigger.MergeRequestIID < 0 {
		return 0, false, fmt.Errorf("%w: %w: %d", errFatal, errInvalidTrigger, trigger.MergeRequestIID)
	}
	if trigger.MergeRequestIID > 0 {
		return trigger.MergeRequestIID, true, nil
	}

	sha := strings.TrimSpace(trigger.CommitSHA)
	if sha == "" {
		return 0, false, fmt.Errorf("%w: %w", errFatal, errMissingCommit)
	}

	iids, err := api.MergeRequestIIDsForCommit(ctx, sha)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %w", errFatal, err)
	}
	if len(iids) == 0 {
		return 0, false, nil
	}
	return iids[0], true, nil
}
