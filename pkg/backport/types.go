package backport

import (
	"fmt"
	"strings"

	gitlab "gitlab.com/gitlab-org/api/client-go"
)

// Outcome is the terminal result of one target branch.
type Outcome string

// Possible outcomes of an attempt.
const (
	OutcomeSuccess  Outcome = "success"
	OutcomeConflict Outcome = "conflict"
	OutcomeError    Outcome = "error"
)

// Stage is the last executor state an attempt reached.
type Stage string

// Executor states in the order they are reached.
const (
	StageStart               Stage = "start"
	StageFetched             Stage = "fetched"
	StageBranchCreated       Stage = "branch_created"
	StageCherryPickAttempted Stage = "cherry_pick_attempted"
	StagePushed              Stage = "pushed"
	StageConflictCommitted   Stage = "conflict_committed"
)

// Request is the source merge request being backported.
type Request struct {
	IID       int64
	CommitSHA string
	Title     string
	AuthorID  int64
	Labels    []string
	WebURL    string
}

// NewRequest builds a Request from a merge request fetched from GitLab.
//
// The commit to pick is the squash commit when present, then the merge
// commit, then the head of the source branch.
func NewRequest(mr *gitlab.MergeRequest) (Request, error) {
	if mr == nil {
		return Request{}, fmt.Errorf("%w: empty merge request", errNoCommit)
	}

	sha := firstNonEmpty(mr.SquashCommitSHA, mr.MergeCommitSHA, mr.SHA)
	if sha == "" {
		return Request{}, fmt.Errorf("%w: !%d", errNoCommit, mr.IID)
	}

	req := Request{
		IID:       mr.IID,
		CommitSHA: sha,
		Title:     mr.Title,
		Labels:    append([]string{}, mr.Labels...),
		WebURL:    mr.WebURL,
	}
	if mr.Author != nil {
		req.AuthorID = mr.Author.ID
	}
	return req, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// Attempt records what happened to one target branch.
type Attempt struct {
	TargetBranch  string
	WorkingBranch string
	Outcome       Outcome
	Stage         Stage
	ConflictFiles []string
	Detail        string // sanitized git diagnostics
	Err           error

	MergeRequest *PublishedMR // nil when no merge request was created
	Labelled     bool         // the failure label is on the source merge request
}

// PublishedMR is a merge request opened for an attempt.
type PublishedMR struct {
	IID       int64
	WebURL    string
	Title     string
	Conflict  bool
	AutoMerge bool // merge when pipeline succeeds was enabled
}

// Report is the result of one run.
type Report struct {
	Request  Request
	Targets  []string
	Attempts []*Attempt

	Skipped    bool
	SkipReason string
}

// Succeeded returns the number of branches backported cleanly.
func (r *Report) Succeeded() int {
	return r.count(OutcomeSuccess)
}

// Conflicted returns the number of branches pushed with conflict markers.
func (r *Report) Conflicted() int {
	return r.count(OutcomeConflict)
}

// Failed returns the number of branches that ended in error.
func (r *Report) Failed() int {
	return r.count(OutcomeError)
}

func (r *Report) count(outcome Outcome) int {
	n := 0
	for _, a := range r.Attempts {
		if a.Outcome == outcome {
			n++
		}
	}
	return n
}

// WorkingBranches lists the local branches the run created.
func (r *Report) WorkingBranches() []string {
	var branches []string
	for _, a := range r.Attempts {
		switch a.Stage {
		case StageStart, StageFetched:
			continue
		default:
			branches = append(branches, a.WorkingBranch)
		}
	}
	return branches
}

// Summary returns one human readable line per attempt.
func (r *Report) Summary() []string {
	if r.Skipped {
		return []string{"Nothing to backport: " + r.SkipReason}
	}

	lines := make([]string, 0, len(r.Attempts)+1)
	lines = append(lines, fmt.Sprintf("Backport of !%d: %d succeeded, %d conflicted, %d failed",
		r.Request.IID, r.Succeeded(), r.Conflicted(), r.Failed()))

	for _, a := range r.Attempts {
		line := fmt.Sprintf("%s: %s", a.TargetBranch, a.Outcome)
		if a.MergeRequest != nil {
			line += " -> " + a.MergeRequest.WebURL
		}
		if len(a.ConflictFiles) > 0 {
			line += " (conflicts: " + strings.Join(a.ConflictFiles, ", ") + ")"
		}
		if a.Labelled {
			line += " [labelled]"
		}
		lines = append(lines, line)
	}
	return lines
}
