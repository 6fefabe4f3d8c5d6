package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/sgaunet/bullets"
	"github.com/sgaunet/gitlab-backport/internal/logger"
)

const (
	defaultRemote         = "origin"
	defaultNetworkRetries = 2
	defaultRetryDelay     = time.Second
	defaultNetworkTimeout = 2 * time.Minute
)

// ShellWorkspace runs git operations by shelling out to the system git binary.
// go-git has no cherry-pick, so every operation that touches the index goes
// through the CLI for consistent behaviour.
type ShellWorkspace struct {
	// Dir is the working tree the commands run in.
	Dir string

	// Git is the git binary to execute. Defaults to "git" when empty.
	Git string

	// Remote is the remote fetched from and pushed to. Defaults to "origin".
	Remote string

	// Branches, when set, is consulted before creating a branch.
	Branches BranchChecker

	// NetworkRetries controls how many additional attempts are made for fetch
	// and push. Zero means the default of 2, negative disables retries.
	NetworkRetries int

	// NetworkRetryDelay is the initial backoff between retries. It doubles per attempt.
	NetworkRetryDelay time.Duration

	// NetworkTimeout bounds each network attempt when ctx carries no deadline.
	NetworkTimeout time.Duration

	log *bullets.Logger
}

// NewShellWorkspace returns a Workspace for the checkout at dir.
func NewShellWorkspace(dir string, branches BranchChecker) *ShellWorkspace {
	return &ShellWorkspace{
		Dir:      dir,
		Branches: branches,
		log:      logger.NoLogger(),
	}
}

// SetLogger sets the logger for the workspace.
func (w *ShellWorkspace) SetLogger(logger *bullets.Logger) {
	w.log = logger
}

// RemoteName returns the configured remote.
func (w *ShellWorkspace) RemoteName() string {
	if w.Remote == "" {
		return defaultRemote
	}
	return w.Remote
}

func (w *ShellWorkspace) gitBinary() string {
	if w.Git == "" {
		return "git"
	}
	return w.Git
}

func (w *ShellWorkspace) debug(msg string) {
	if w.log != nil {
		w.log.Debug(msg)
	}
}

// Fetch updates refs/remotes/<remote>/<branch> from the remote.
func (w *ShellWorkspace) Fetch(ctx context.Context, branch string) error {
	if branch == "" {
		return errBranchNameEmpty
	}
	remote := w.RemoteName()
	refspec := fmt.Sprintf("+refs/heads/%s:refs/remotes/%s/%s", branch, remote, branch)
	if err := w.exec(ctx, "fetch", remote, refspec); err != nil {
		return fmt.Errorf("failed to fetch %s: %w", branch, err)
	}
	return nil
}

// CreateBranch creates and checks out name at startPoint.
func (w *ShellWorkspace) CreateBranch(ctx context.Context, name, startPoint string) error {
	if name == "" {
		return errBranchNameEmpty
	}
	if w.Branches != nil {
		exists, err := w.Branches.LocalBranchExists(name)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %s", errBranchExists, name)
		}
	}
	if err := w.exec(ctx, "checkout", "-b", name, startPoint); err != nil {
		return fmt.Errorf("failed to create branch %s from %s: %w", name, startPoint, err)
	}
	return nil
}

// CherryPick applies commit onto the current branch.
func (w *ShellWorkspace) CherryPick(ctx context.Context, commit string) error {
	if commit == "" {
		return errCommitEmpty
	}

	isMerge, err := w.isMergeCommit(ctx, commit)
	if err != nil {
		return fmt.Errorf("failed to inspect commit %s: %w", commit, err)
	}

	args := []string{"cherry-pick"}
	if isMerge {
		args = append(args, "-m", "1")
	}
	args = append(args, commit)

	if err := w.exec(ctx, args...); err != nil {
		return fmt.Errorf("failed to cherry-pick %s: %w", commit, err)
	}
	return nil
}

// isMergeCommit counts parents: rev-list prints "<sha> <parent>..." on one line.
func (w *ShellWorkspace) isMergeCommit(ctx context.Context, commit string) (bool, error) {
	output, err := w.output(ctx, "rev-list", "--parents", "-n", "1", commit)
	if err != nil {
		return false, err
	}
	return len(strings.Fields(output)) > 2, nil
}

// AbortCherryPick cancels an in-progress cherry-pick.
func (w *ShellWorkspace) AbortCherryPick(ctx context.Context) error {
	err := w.exec(ctx, "cherry-pick", "--abort")
	if err == nil {
		return nil
	}
	var gitErr *GitError
	if errors.As(err, &gitErr) && strings.Contains(strings.ToLower(gitErr.Output), "no cherry-pick") {
		return nil
	}
	return fmt.Errorf("failed to abort cherry-pick: %w", err)
}

// UnmergedFiles lists paths with unresolved conflicts.
func (w *ShellWorkspace) UnmergedFiles(ctx context.Context) ([]string, error) {
	output, err := w.output(ctx, "diff", "--name-only", "--diff-filter=U")
	if err != nil {
		return nil, fmt.Errorf("failed to list unmerged files: %w", err)
	}

	files := []string{}
	seen := map[string]struct{}{}
	for _, line := range strings.Split(output, "\n") {
		path := strings.TrimSpace(line)
		if path == "" {
			continue
		}
		if _, ok := seen[path]; ok {
			continue
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}
	return files, nil
}

// AddAll stages all changes, including deletions and files with conflict markers.
func (w *ShellWorkspace) AddAll(ctx context.Context) error {
	if err := w.exec(ctx, "add", "-A"); err != nil {
		return fmt.Errorf("failed to stage changes: %w", err)
	}
	return nil
}

// Commit records the index without running hooks.
func (w *ShellWorkspace) Commit(ctx context.Context, message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return errMessageEmpty
	}
	if err := w.exec(ctx, "commit", "--no-verify", "-m", message); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Push publishes branch under the same name on the remote.
//
// A forced push refreshes the remote-tracking ref first and then pushes with
// --force-with-lease, so it only replaces the tip that was just observed.
func (w *ShellWorkspace) Push(ctx context.Context, branch string, force bool) error {
	if branch == "" {
		return errBranchNameEmpty
	}
	remote := w.RemoteName()
	refspec := fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch)

	if !force {
		if err := w.exec(ctx, "push", remote, refspec); err != nil {
			return fmt.Errorf("failed to push %s: %w", branch, err)
		}
		return nil
	}

	if err := w.Fetch(ctx, branch); err != nil && !isMissingRemoteBranch(err) {
		return err
	}
	if err := w.exec(ctx, "push", "--force-with-lease", remote, refspec); err != nil {
		return fmt.Errorf("failed to force push %s: %w", branch, err)
	}
	return nil
}

// Reset drops every local modification, including untracked files.
func (w *ShellWorkspace) Reset(ctx context.Context) error {
	if err := w.exec(ctx, "reset", "--hard", "HEAD"); err != nil {
		return fmt.Errorf("failed to reset working tree: %w", err)
	}
	if err := w.exec(ctx, "clean", "-fd"); err != nil {
		return fmt.Errorf("failed to clean working tree: %w", err)
	}
	return nil
}

func (w *ShellWorkspace) exec(ctx context.Context, args ...string) error {
	_, err := w.run(ctx, args...)
	return err
}

func (w *ShellWorkspace) output(ctx context.Context, args ...string) (string, error) {
	return w.run(ctx, args...)
}

func (w *ShellWorkspace) run(ctx context.Context, args ...string) (string, error) {
	cmdArgs := args
	if w.Dir != "" {
		cmdArgs = append([]string{"-C", w.Dir}, args...)
	}

	primary := primaryGitCommand(cmdArgs)
	isNetwork := isNetworkCommand(primary)

	retries := 0
	if isNetwork {
		retries = w.networkRetriesValue()
	}

	delay := w.networkRetryDelayValue()
	var lastErr error

	for attempt := 0; attempt <= retries; attempt++ {
		attemptCtx, cancel := w.applyNetworkTimeout(ctx, isNetwork)
		out, err := w.runOnce(attemptCtx, cmdArgs...)
		cancel()

		if err == nil {
			return out, nil
		}
		lastErr = err
		w.debug(fmt.Sprintf("git %s failed (attempt %d/%d)", primary, attempt+1, retries+1))

		if !isNetwork || isPermanentNetworkError(err) {
			break
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			break
		}
		if attempt == retries {
			break
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	return "", lastErr
}

func (w *ShellWorkspace) runOnce(ctx context.Context, args ...string) (string, error) {
	cmd := exec.Command(w.gitBinary(), args...) // #nosec G204 - arguments are built internally
	cmd.Env = append(cmd.Environ(), "GIT_TERMINAL_PROMPT=0")
	setProcessGroup(cmd)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Start(); err != nil {
		return "", &GitError{Args: args, Output: output.String(), ExitCode: -1, Err: err}
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case <-ctx.Done():
		terminateProcessGroup(cmd)
		<-done
		return "", ctx.Err()
	case err := <-done:
		if err != nil {
			return "", newGitError(args, output.String(), err)
		}
	}

	return output.String(), nil
}

func primaryGitCommand(args []string) string {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			if i+1 < len(args) {
				return args[i+1]
			}
			return ""
		}
		if strings.HasPrefix(arg, "-") {
			switch arg {
			case "-C", "--git-dir", "-c":
				i++
			}
			continue
		}
		return arg
	}
	return ""
}

func isNetworkCommand(cmd string) bool {
	switch cmd {
	case "fetch", "push", "pull", "clone":
		return true
	default:
		return false
	}
}

// isPermanentNetworkError matches failures a retry cannot fix.
func isPermanentNetworkError(err error) bool {
	if isMissingRemoteBranch(err) {
		return true
	}
	var gitErr *GitError
	if !errors.As(err, &gitErr) {
		return false
	}
	out := strings.ToLower(gitErr.Output)
	return strings.Contains(out, "[rejected]") ||
		strings.Contains(out, "stale info") ||
		strings.Contains(out, "authentication failed")
}

func isMissingRemoteBranch(err error) bool {
	var gitErr *GitError
	if !errors.As(err, &gitErr) {
		return false
	}
	out := gitErr.Output
	return strings.Contains(out, "couldn't find remote ref") ||
		strings.Contains(out, "invalid refspec") ||
		strings.Contains(out, "unknown revision")
}

func (w *ShellWorkspace) networkRetriesValue() int {
	if w.NetworkRetries < 0 {
		return 0
	}
	if w.NetworkRetries == 0 {
		return defaultNetworkRetries
	}
	return w.NetworkRetries
}

func (w *ShellWorkspace) networkRetryDelayValue() time.Duration {
	if w.NetworkRetryDelay <= 0 {
		return defaultRetryDelay
	}
	return w.NetworkRetryDelay
}

func (w *ShellWorkspace) networkTimeoutValue() time.Duration {
	if w.NetworkTimeout <= 0 {
		return defaultNetworkTimeout
	}
	return w.NetworkTimeout
}

func (w *ShellWorkspace) applyNetworkTimeout(ctx context.Context, network bool) (context.Context, context.CancelFunc) {
	if !network {
		return ctx, func() {}
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, w.networkTimeoutValue())
}
