package backport

import (
	"context"
	"fmt"

	"github.com/sgaunet/bullets"
	"github.com/sgaunet/gitlab-backport/internal/labels"
	"github.com/sgaunet/gitlab-backport/internal/logger"
	"github.com/sgaunet/gitlab-backport/pkg/config"
	"github.com/sgaunet/gitlab-backport/pkg/git"
	"github.com/sgaunet/gitlab-backport/pkg/gitlab"
)

// Engine drives a full backport run.
type Engine struct {
	cfg       config.Config
	api       gitlab.APIClient
	executor  *Executor
	publisher *Publisher
	log       *bullets.Logger
}

// Option customizes an Engine.
type Option func(*Engine)

// WithSleeper replaces the wait used while polling for mergeability.
func WithSleeper(sleep Sleeper) Option {
	return func(e *Engine) {
		e.publisher.SetSleeper(sleep)
	}
}

// NewEngine creates an engine from cfg that talks to GitLab through api and
// runs git operations in ws.
func NewEngine(cfg config.Config, api gitlab.APIClient, ws git.Workspace, opts ...Option) *Engine {
	e := &Engine{
		cfg:      cfg,
		api:      api,
		executor: NewExecutor(ws, cfg.ForcePush),
		publisher: NewPublisher(api, PublisherOptions{
			AutoMerge:          cfg.AutoMerge,
			RemoveSourceBranch: cfg.RemoveSourceBranch,
			Attempts:           cfg.AutoMergeAttempts,
			Interval:           cfg.AutoMergeInterval,
		}),
		log: logger.NoLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetLogger sets the logger for the engine and its components.
func (e *Engine) SetLogger(logger *bullets.Logger) {
	e.log = logger
	e.executor.SetLogger(logger)
	e.publisher.SetLogger(logger)
}

// Run backports the merge request identified by trigger.
//
// Per-branch failures are part of the report. The error is only set for
// failures that prevent the run from starting, and wraps ErrFatal.
func (e *Engine) Run(ctx context.Context, trigger Trigger) (*Report, error) {
	iid, found, err := ResolveTrigger(ctx, e.api, trigger)
	if err != nil {
		return nil, err
	}
	if !found {
		reason := fmt.Sprintf("commit %s is not associated with a merge request", trigger.CommitSHA)
		e.log.Info("Cannot find a merge request for commit " + trigger.CommitSHA + ", nothing to do")
		return &Report{Skipped: true, SkipReason: reason}, nil
	}

	mr, err := e.api.GetMergeRequest(ctx, iid)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errFatal, err)
	}

	req, err := NewRequest(mr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errFatal, err)
	}

	report := &Report{Request: req}

	targets := labels.ParseTargets(req.Labels, e.cfg.LabelPrefix)
	if len(targets) == 0 {
		report.Skipped = true
		report.SkipReason = fmt.Sprintf("!%d has no %s* labels", req.IID, e.cfg.LabelPrefix)
		e.log.Info(fmt.Sprintf("MR !%d does not have '%s' labels, nothing to do", req.IID, e.cfg.LabelPrefix))
		return report, nil
	}
	report.Targets = targets
	e.log.Info(fmt.Sprintf("Found %d target branches for !%d: %v", len(targets), req.IID, targets))

	reporter := NewReporter(e.api, req, e.cfg.FailedLabel)
	reporter.SetLogger(e.log)

	for _, target := range targets {
		attempt := e.executor.Execute(ctx, req, target)

		if attempt.Outcome != OutcomeError {
			attempt.MergeRequest = e.publisher.Publish(ctx, e.publishParams(req, attempt))
		}

		reporter.Report(ctx, attempt)
		report.Attempts = append(report.Attempts, attempt)
	}

	return report, nil
}

func (e *Engine) publishParams(req Request, attempt *Attempt) PublishParams {
	return PublishParams{
		SourceBranch:  attempt.WorkingBranch,
		TargetBranch:  attempt.TargetBranch,
		Title:         Title(req.Title, req.IID),
		Description:   Description(req.CommitSHA, req.IID),
		AssigneeID:    req.AuthorID,
		Conflict:      attempt.Outcome == OutcomeConflict,
		ConflictFiles: attempt.ConflictFiles,
	}
}
