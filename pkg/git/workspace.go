package git

import "context"

// Workspace is the set of working-tree operations a backport attempt performs.
// Implementations mutate a single checkout and are not safe for concurrent use.
type Workspace interface {
	// RemoteName is the remote fetched from and pushed to.
	RemoteName() string

	// Fetch updates the remote-tracking ref of branch.
	Fetch(ctx context.Context, branch string) error

	// CreateBranch creates and checks out name at startPoint.
	// It fails with ErrBranchExists when name already exists locally.
	CreateBranch(ctx context.Context, name, startPoint string) error

	// CherryPick applies commit to the current branch. Merge commits are picked
	// against their first parent.
	CherryPick(ctx context.Context, commit string) error

	// AbortCherryPick cancels an in-progress cherry-pick. It succeeds when none is in progress.
	AbortCherryPick(ctx context.Context) error

	// UnmergedFiles lists paths that still carry conflict stages in the index.
	UnmergedFiles(ctx context.Context) ([]string, error)

	// AddAll stages every change in the working tree.
	AddAll(ctx context.Context) error

	// Commit records the index with message, skipping hooks.
	Commit(ctx context.Context, message string) error

	// Push publishes branch to the remote. Without force an existing remote branch is never overwritten.
	Push(ctx context.Context, branch string, force bool) error

	// Reset discards all tracked and untracked changes.
	Reset(ctx context.Context) error
}

// BranchChecker reports whether a local branch exists.
type BranchChecker interface {
	LocalBranchExists(name string) (bool, error)
}

var (
	_ Workspace     = (*ShellWorkspace)(nil)
	_ BranchChecker = (*Repository)(nil)
)
