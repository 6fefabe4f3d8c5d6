package backport

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sgaunet/bullets"
	"github.com/sgaunet/gitlab-backport/internal/logger"
	"github.com/sgaunet/gitlab-backport/internal/security"
	"github.com/sgaunet/gitlab-backport/pkg/git"
)

// Executor runs the git side of one backport attempt.
type Executor struct {
	ws        git.Workspace
	forcePush bool
	log       *bullets.Logger
}

// NewExecutor creates an executor working in ws. forcePush allows replacing a
// working branch left on the remote by an earlier run.
func NewExecutor(ws git.Workspace, forcePush bool) *Executor {
	return &Executor{
		ws:        ws,
		forcePush: forcePush,
		log:       logger.NoLogger(),
	}
}

// SetLogger sets the logger for the executor.
func (e *Executor) SetLogger(logger *bullets.Logger) {
	e.log = logger
}

// Execute cherry-picks req onto target and pushes the working branch.
//
// A conflicting pick is committed with its markers and pushed so a human can
// finish it. Whatever happens, the workspace is left without a pick in progress.
func (e *Executor) Execute(ctx context.Context, req Request, target string) *Attempt {
	attempt := &Attempt{
		TargetBranch:  target,
		WorkingBranch: BranchName(req.IID, target),
		Stage:         StageStart,
	}

	e.log.Info(fmt.Sprintf("Preparing backport of !%d to %s", req.IID, target))

	if err := e.ws.Fetch(ctx, target); err != nil {
		return e.fail(attempt, "target branch does not exist or fetch failed", err)
	}
	attempt.Stage = StageFetched

	startPoint := e.ws.RemoteName() + "/" + target
	if err := e.ws.CreateBranch(ctx, attempt.WorkingBranch, startPoint); err != nil {
		return e.fail(attempt, "could not create working branch "+attempt.WorkingBranch, err)
	}
	attempt.Stage = StageBranchCreated

	e.log.Debug("Cherry-picking " + req.CommitSHA + " onto " + attempt.WorkingBranch)
	pickErr := e.ws.CherryPick(ctx, req.CommitSHA)
	attempt.Stage = StageCherryPickAttempted

	if pickErr == nil {
		e.pushClean(ctx, attempt)
	} else {
		e.recoverConflict(ctx, req, attempt, pickErr)
	}

	e.restore(ctx)
	return attempt
}

func (e *Executor) pushClean(ctx context.Context, attempt *Attempt) {
	if err := e.ws.Push(ctx, attempt.WorkingBranch, e.forcePush); err != nil {
		e.fail(attempt, "cherry-pick succeeded but push failed", err)
		return
	}
	attempt.Stage = StagePushed
	attempt.Outcome = OutcomeSuccess
	e.log.Info("Cherry-pick onto " + attempt.TargetBranch + " pushed as " + attempt.WorkingBranch)
}

// recoverConflict captures the unmerged paths before staging; once the index is
// committed the conflict stages are gone.
func (e *Executor) recoverConflict(ctx context.Context, req Request, attempt *Attempt, pickErr error) {
	attempt.Detail = describe(pickErr)
	e.log.Warn("Conflict or error during cherry-pick to " + attempt.TargetBranch)
	e.log.Debug(attempt.Detail)

	files, err := e.ws.UnmergedFiles(ctx)
	if err != nil {
		e.log.Warn("Could not list conflicting files: " + security.SanitizeString(err.Error()))
	} else {
		attempt.ConflictFiles = files
	}

	if err := e.ws.AddAll(ctx); err != nil {
		e.fail(attempt, "could not stage conflicting changes", err)
		return
	}
	if err := e.ws.Commit(ctx, ConflictCommitMessage(req.CommitSHA)); err != nil {
		e.fail(attempt, "could not commit conflicting changes", err)
		return
	}
	attempt.Stage = StageConflictCommitted

	if err := e.ws.Push(ctx, attempt.WorkingBranch, e.forcePush); err != nil {
		e.fail(attempt, "could not push conflict branch", err)
		return
	}

	attempt.Outcome = OutcomeConflict
	if len(attempt.ConflictFiles) > 0 {
		e.log.Warn("Conflicting files: " + strings.Join(attempt.ConflictFiles, ", "))
	}
	e.log.Info("Branch " + attempt.WorkingBranch + " pushed with conflicts for manual resolution")
}

// restore aborts any pick still in progress and falls back to a hard reset.
func (e *Executor) restore(ctx context.Context) {
	err := e.ws.AbortCherryPick(ctx)
	if err == nil {
		return
	}
	e.log.Warn("Cherry-pick abort failed, resetting working tree: " + security.SanitizeString(err.Error()))
	if err := e.ws.Reset(ctx); err != nil {
		e.log.Error("Working tree could not be reset: " + security.SanitizeString(err.Error()))
	}
}

func (e *Executor) fail(attempt *Attempt, reason string, err error) *Attempt {
	attempt.Outcome = OutcomeError
	attempt.Err = fmt.Errorf("%s: %w", reason, err)
	if attempt.Detail == "" {
		attempt.Detail = describe(err)
	}
	e.log.Error(fmt.Sprintf("Backport to %s failed at %s: %s", attempt.TargetBranch, attempt.Stage, reason))
	e.log.Debug(attempt.Detail)
	return attempt
}

// describe renders the exit status and output of a git failure.
func describe(err error) string {
	var gitErr *git.GitError
	if errors.As(err, &gitErr) {
		return security.SanitizeString(fmt.Sprintf("git exit code %d\n%s",
			gitErr.ExitCode, strings.TrimSpace(gitErr.Output)))
	}
	return security.SanitizeString(err.Error())
}
