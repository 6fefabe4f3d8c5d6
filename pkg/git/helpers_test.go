package git_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// fixture is a working clone of a bare remote holding main and release-1.0.
type fixture struct {
	remote string
	work   string
}

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
}

// isolateGit keeps the caller's git configuration out of the tests.
func isolateGit(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", home)
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")
	t.Setenv("GIT_CONFIG_GLOBAL", filepath.Join(home, ".gitconfig"))
	t.Setenv("GIT_AUTHOR_NAME", "Test Author")
	t.Setenv("GIT_AUTHOR_EMAIL", "author@example.com")
	t.Setenv("GIT_COMMITTER_NAME", "Test Author")
	t.Setenv("GIT_COMMITTER_EMAIL", "author@example.com")
}

func gitRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %s: %s", strings.Join(args, " "), out)
	return strings.TrimSpace(string(out))
}

func gitFails(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	require.Error(t, cmd.Run(), "expected git %s to fail", strings.Join(args, " "))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func commitFile(t *testing.T, dir, name, content, message string) string {
	t.Helper()
	writeFile(t, dir, name, content)
	gitRun(t, dir, "add", name)
	gitRun(t, dir, "commit", "-q", "-m", message)
	return gitRun(t, dir, "rev-parse", "HEAD")
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	requireGit(t)
	isolateGit(t)

	root := t.TempDir()
	remote := filepath.Join(root, "remote.git")
	work := filepath.Join(root, "work")

	require.NoError(t, os.MkdirAll(work, 0o755))
	gitRun(t, root, "init", "-q", "--bare", remote)
	gitRun(t, work, "init", "-q")
	gitRun(t, work, "symbolic-ref", "HEAD", "refs/heads/main")
	gitRun(t, work, "remote", "add", "origin", remote)

	commitFile(t, work, "src/a.py", "line one\nline two\n", "initial")
	gitRun(t, work, "branch", "release-1.0")
	gitRun(t, work, "push", "-q", "origin", "main", "release-1.0")

	return &fixture{remote: remote, work: work}
}

func (f *fixture) remoteHasBranch(t *testing.T, branch string) bool {
	t.Helper()
	cmd := exec.Command("git", "--git-dir", f.remote, "rev-parse", "--verify", "-q", "refs/heads/"+branch)
	return cmd.Run() == nil
}

func (f *fixture) remoteBranchTip(t *testing.T, branch string) string {
	t.Helper()
	out, err := exec.Command("git", "--git-dir", f.remote, "rev-parse", "refs/heads/"+branch).CombinedOutput()
	require.NoError(t, err, string(out))
	return strings.TrimSpace(string(out))
}
