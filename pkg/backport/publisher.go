package backport

import (
	"context"
	"fmt"
	"time"

	"github.com/sgaunet/bullets"
	"github.com/sgaunet/gitlab-backport/internal/logger"
	"github.com/sgaunet/gitlab-backport/internal/security"
	"github.com/sgaunet/gitlab-backport/pkg/gitlab"
)

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the default Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// PublisherOptions controls merge request creation.
type PublisherOptions struct {
	AutoMerge          bool
	RemoveSourceBranch bool
	Attempts           int           // mergeability checks before giving up on auto-merge
	Interval           time.Duration // pause between checks
}

// PublishParams describes the merge request to open for one attempt.
type PublishParams struct {
	SourceBranch  string
	TargetBranch  string
	Title         string
	Description   string
	AssigneeID    int64
	Conflict      bool
	ConflictFiles []string
}

// Publisher opens backport merge requests.
type Publisher struct {
	api   gitlab.APIClient
	opts  PublisherOptions
	sleep Sleeper
	log   *bullets.Logger
}

// NewPublisher creates a publisher using api.
func NewPublisher(api gitlab.APIClient, opts PublisherOptions) *Publisher {
	if opts.Attempts < 1 {
		opts.Attempts = 1
	}
	return &Publisher{
		api:   api,
		opts:  opts,
		sleep: SleepContext,
		log:   logger.NoLogger(),
	}
}

// SetLogger sets the logger for the publisher.
func (p *Publisher) SetLogger(logger *bullets.Logger) {
	p.log = logger
}

// SetSleeper replaces the wait used between mergeability checks.
func (p *Publisher) SetSleeper(sleep Sleeper) {
	if sleep != nil {
		p.sleep = sleep
	}
}

// Publish creates the merge request and, for clean backports, enables merge
// when pipeline succeeds. It returns nil when the merge request could not be
// created; the error is logged, never returned.
func (p *Publisher) Publish(ctx context.Context, params PublishParams) *PublishedMR {
	title := params.Title
	description := params.Description
	autoMerge := p.opts.AutoMerge

	if params.Conflict {
		title = ConflictTitle(title)
		description = ConflictDescription(description, params.ConflictFiles)
		autoMerge = false
	}

	mr, err := p.api.CreateMergeRequest(ctx, gitlab.CreateParams{
		SourceBranch:       params.SourceBranch,
		TargetBranch:       params.TargetBranch,
		Title:              title,
		Description:        description,
		AssigneeID:         params.AssigneeID,
		Squash:             true,
		RemoveSourceBranch: p.opts.RemoveSourceBranch,
	})
	if err != nil {
		p.log.Error("Failed to create merge request for " + params.SourceBranch + ": " +
			security.SanitizeString(err.Error()))
		return nil
	}

	p.log.Info("Created merge request: " + mr.WebURL)

	published := &PublishedMR{
		IID:      mr.IID,
		WebURL:   mr.WebURL,
		Title:    title,
		Conflict: params.Conflict,
	}

	if autoMerge {
		published.AutoMerge = p.enableAutoMerge(ctx, mr.IID)
	}
	return published
}

// enableAutoMerge waits for GitLab to finish its mergeability check, then
// sets merge when pipeline succeeds. Giving up is not an error.
func (p *Publisher) enableAutoMerge(ctx context.Context, iid int64) bool {
	p.log.Debug(fmt.Sprintf("Waiting for !%d to become mergeable", iid))

	for attempt := 1; attempt <= p.opts.Attempts; attempt++ {
		mr, err := p.api.GetMergeRequest(ctx, iid)
		if err != nil {
			p.log.Warn("Could not enable merge when pipeline succeeds: " + security.SanitizeString(err.Error()))
			return false
		}

		if gitlab.IsMergeable(mr) {
			if err := p.api.SetMergeWhenPipelineSucceeds(ctx, iid, p.opts.RemoveSourceBranch); err != nil {
				p.log.Warn("Could not enable merge when pipeline succeeds: " + security.SanitizeString(err.Error()))
				return false
			}
			p.log.Info(fmt.Sprintf("Merge when pipeline succeeds enabled on !%d", iid))
			return true
		}

		if attempt == p.opts.Attempts {
			break
		}
		if err := p.sleep(ctx, p.opts.Interval); err != nil {
			p.log.Warn(fmt.Sprintf("Stopped waiting for !%d: %v", iid, err))
			return false
		}
	}

	p.log.Warn(fmt.Sprintf("!%d was not mergeable after %d checks, merge it manually", iid, p.opts.Attempts))
	return false
}
