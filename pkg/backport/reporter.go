package backport

import (
	"context"
	"fmt"

	"github.com/sgaunet/bullets"
	"github.com/sgaunet/gitlab-backport/internal/labels"
	"github.com/sgaunet/gitlab-backport/internal/logger"
	"github.com/sgaunet/gitlab-backport/internal/security"
	"github.com/sgaunet/gitlab-backport/pkg/gitlab"
)

// Reporter flags the source merge request when a backport produced nothing a
// human can pick up.
type Reporter struct {
	api         gitlab.APIClient
	iid         int64
	failedLabel string
	current     []string
	log         *bullets.Logger
}

// NewReporter creates a reporter for req.
func NewReporter(api gitlab.APIClient, req Request, failedLabel string) *Reporter {
	return &Reporter{
		api:         api,
		iid:         req.IID,
		failedLabel: failedLabel,
		current:     append([]string{}, req.Labels...),
		log:         logger.NoLogger(),
	}
}

// SetLogger sets the logger for the reporter.
func (r *Reporter) SetLogger(logger *bullets.Logger) {
	r.log = logger
}

// NeedsLabel reports whether attempt must be flagged on the source merge request.
// A conflict that reached a merge request is signalled by that merge request.
func NeedsLabel(attempt *Attempt) bool {
	switch attempt.Outcome {
	case OutcomeError:
		return true
	case OutcomeConflict:
		return attempt.MergeRequest == nil
	default:
		return false
	}
}

// Report adds the failure label when the attempt needs it and records the
// result in attempt.Labelled. Label updates are idempotent and their errors are only logged.
func (r *Reporter) Report(ctx context.Context, attempt *Attempt) {
	if !NeedsLabel(attempt) {
		return
	}

	if labels.Contains(r.current, r.failedLabel) {
		attempt.Labelled = true
		r.log.Debug(fmt.Sprintf("!%d already carries %s", r.iid, r.failedLabel))
		return
	}

	updated := labels.Union(r.current, r.failedLabel)
	if err := r.api.UpdateLabels(ctx, r.iid, updated); err != nil {
		r.log.Error(fmt.Sprintf("Failed to add %s to !%d: %s", r.failedLabel, r.iid,
			security.SanitizeString(err.Error())))
		return
	}

	r.current = updated
	attempt.Labelled = true
	r.log.Warn(fmt.Sprintf("Backport to %s failed, added %s to !%d", attempt.TargetBranch, r.failedLabel, r.iid))
}
