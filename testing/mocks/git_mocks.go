package mocks

import (
	"context"
	"fmt"

	"github.com/sgaunet/gitlab-backport/pkg/git"
)

// Workspace is a mock implementation of git.Workspace with call tracking.
// Per-branch failures are keyed by the branch the call targets, or by the
// working branch checked out last for calls that take no branch.
type Workspace struct {
	callTracker

	current string
	picking bool

	Remote string

	FetchErrors        map[string]error
	CreateBranchErrors map[string]error
	CherryPickErrors   map[string]error
	Unmerged           map[string][]string
	UnmergedFilesError error
	AddAllError        error
	CommitError        error
	PushErrors         map[string]error
	AbortError         error
	ResetError         error

	// Pushed records what each branch push carried.
	Pushed map[string]PushRecord
}

// PushRecord describes one push seen by the mock.
type PushRecord struct {
	Force         bool
	ConflictState bool // a conflict commit was made on the branch before the push
}

// NewWorkspace creates a new mock workspace.
func NewWorkspace() *Workspace {
	return &Workspace{
		callTracker:        callTracker{calls: make([]MethodCall, 0)},
		Remote:             "origin",
		FetchErrors:        map[string]error{},
		CreateBranchErrors: map[string]error{},
		CherryPickErrors:   map[string]error{},
		Unmerged:           map[string][]string{},
		PushErrors:         map[string]error{},
		Pushed:             map[string]PushRecord{},
	}
}

// SetConflict makes the cherry-pick on branch fail with a conflict in files.
func (w *Workspace) SetConflict(branch string, files ...string) {
	w.CherryPickErrors[branch] = &git.GitError{
		Args:     []string{"cherry-pick"},
		Output:   fmt.Sprintf("CONFLICT (content): Merge conflict in %v", files),
		ExitCode: 1,
		Err:      fmt.Errorf("exit status 1"),
	}
	w.Unmerged[branch] = files
}

// CurrentBranch returns the branch checked out last.
func (w *Workspace) CurrentBranch() string {
	return w.current
}

// RemoteName implements git.Workspace.
func (w *Workspace) RemoteName() string {
	return w.Remote
}

// Fetch implements git.Workspace.
func (w *Workspace) Fetch(_ context.Context, branch string) error {
	w.trackCall("Fetch", map[string]any{"branch": branch})
	return w.FetchErrors[branch]
}

// CreateBranch implements git.Workspace.
func (w *Workspace) CreateBranch(_ context.Context, name, startPoint string) error {
	w.trackCall("CreateBranch", map[string]any{"name": name, "startPoint": startPoint})
	if err := w.CreateBranchErrors[name]; err != nil {
		return err
	}
	w.current = name
	return nil
}

// CherryPick implements git.Workspace.
func (w *Workspace) CherryPick(_ context.Context, commit string) error {
	w.trackCall("CherryPick", map[string]any{"commit": commit, "branch": w.current})
	if err := w.CherryPickErrors[w.current]; err != nil {
		w.picking = true
		return err
	}
	return nil
}

// AbortCherryPick implements git.Workspace.
func (w *Workspace) AbortCherryPick(_ context.Context) error {
	w.trackCall("AbortCherryPick", map[string]any{"branch": w.current})
	if w.AbortError != nil {
		return w.AbortError
	}
	w.picking = false
	return nil
}

// UnmergedFiles implements git.Workspace. Files are only reported while a
// cherry-pick is still in progress, like the index after staging would.
func (w *Workspace) UnmergedFiles(_ context.Context) ([]string, error) {
	w.trackCall("UnmergedFiles", map[string]any{"branch": w.current})
	if w.UnmergedFilesError != nil {
		return nil, w.UnmergedFilesError
	}
	if !w.picking {
		return []string{}, nil
	}
	return append([]string{}, w.Unmerged[w.current]...), nil
}

// AddAll implements git.Workspace.
func (w *Workspace) AddAll(_ context.Context) error {
	w.trackCall("AddAll", map[string]any{"branch": w.current})
	if w.AddAllError != nil {
		return w.AddAllError
	}
	w.picking = false
	return nil
}

// Commit implements git.Workspace.
func (w *Workspace) Commit(_ context.Context, message string) error {
	w.trackCall("Commit", map[string]any{"message": message, "branch": w.current})
	return w.CommitError
}

// Push implements git.Workspace.
func (w *Workspace) Push(_ context.Context, branch string, force bool) error {
	w.trackCall("Push", map[string]any{"branch": branch, "force": force})
	if err := w.PushErrors[branch]; err != nil {
		return err
	}
	w.Pushed[branch] = PushRecord{Force: force, ConflictState: w.committed(branch)}
	return nil
}

// Reset implements git.Workspace.
func (w *Workspace) Reset(_ context.Context) error {
	w.trackCall("Reset", map[string]any{"branch": w.current})
	if w.ResetError != nil {
		return w.ResetError
	}
	w.picking = false
	return nil
}

func (w *Workspace) committed(branch string) bool {
	for _, call := range w.GetCalls() {
		if call.Method == "Commit" && call.Args["branch"] == branch {
			return true
		}
	}
	return false
}

// Ensure Workspace implements git.Workspace interface.
var _ git.Workspace = (*Workspace)(nil)
