package git

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/sgaunet/bullets"
	"github.com/sgaunet/gitlab-backport/internal/logger"
)

const (
	httpSection       = "http"
	extraHeaderOption = "extraHeader"
	credentialUser    = "oauth2"
)

// Repository wraps the local checkout the backport runs in.
type Repository struct {
	repo *git.Repository
	root string
	log  *bullets.Logger

	// http.extraHeader values replaced by InjectCredentials, put back on removal.
	savedHeaders []string
	injected     bool
}

// OpenRepository opens the git repository containing path.
func OpenRepository(path string) (*Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}

	return &Repository{
		repo: repo,
		root: worktree.Filesystem.Root(),
		log:  logger.NoLogger(),
	}, nil
}

// SetLogger sets the logger for the repository.
func (r *Repository) SetLogger(logger *bullets.Logger) {
	r.log = logger
}

// Root returns the top-level directory of the working tree.
func (r *Repository) Root() string {
	return r.root
}

// Head returns the commit hash HEAD points to.
func (r *Repository) Head() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD reference: %w", err)
	}
	return head.Hash().String(), nil
}

// LocalBranchExists reports whether refs/heads/<name> exists.
func (r *Repository) LocalBranchExists(name string) (bool, error) {
	_, err := r.repo.Reference(plumbing.NewBranchReferenceName(name), true)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("failed to look up branch %s: %w", name, err)
}

// RemoteURL returns the first URL configured for remoteName.
func (r *Repository) RemoteURL(remoteName string) (string, error) {
	remote, err := r.repo.Remote(remoteName)
	if err != nil {
		return "", fmt.Errorf("failed to get remote %s: %w", remoteName, err)
	}

	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("%w %s", errNoRemoteURL, remoteName)
	}
	return urls[0], nil
}

// ConfigureIdentity writes user.name and user.email into the repository config.
func (r *Repository) ConfigureIdentity(name, email string) error {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" {
		return errIdentityRequired
	}

	cfg, err := r.repo.Config()
	if err != nil {
		return fmt.Errorf("failed to read repository config: %w", err)
	}

	cfg.User.Name = name
	cfg.User.Email = email

	if err := r.repo.SetConfig(cfg); err != nil {
		return fmt.Errorf("failed to write git identity: %w", err)
	}

	r.log.Debug(fmt.Sprintf("Git identity set to %s <%s>", name, email))
	return nil
}

// InjectCredentials stores an HTTP basic auth header for the token so that
// fetch and push over HTTPS authenticate without rewriting the remote URL.
// Headers already configured are set aside until RemoveCredentials.
func (r *Repository) InjectCredentials(token string) error {
	if token == "" {
		return errTokenEmpty
	}

	cfg, err := r.repo.Config()
	if err != nil {
		return fmt.Errorf("failed to read repository config: %w", err)
	}

	section := cfg.Raw.Section(httpSection)
	if !r.injected {
		r.savedHeaders = section.Options.GetAll(extraHeaderOption)
	}
	section.RemoveOption(extraHeaderOption)
	section.AddOption(extraHeaderOption, AuthorizationHeader(token))

	if err := r.repo.SetConfig(cfg); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}

	r.injected = true
	r.log.Debug("Git credentials injected into http.extraHeader")
	return nil
}

// RemoveCredentials deletes the header written by InjectCredentials and
// restores the headers it replaced. It is a no-op when nothing was injected.
func (r *Repository) RemoveCredentials() error {
	if !r.injected {
		return nil
	}

	cfg, err := r.repo.Config()
	if err != nil {
		return fmt.Errorf("failed to read repository config: %w", err)
	}

	section := cfg.Raw.Section(httpSection)
	section.RemoveOption(extraHeaderOption)
	for _, header := range r.savedHeaders {
		section.AddOption(extraHeaderOption, header)
	}
	if len(section.Options) == 0 && len(section.Subsections) == 0 {
		cfg.Raw.RemoveSection(httpSection)
	}

	if err := r.repo.SetConfig(cfg); err != nil {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}

	r.injected = false
	r.savedHeaders = nil
	r.log.Debug("Git credentials removed")
	return nil
}

// AuthorizationHeader builds the http.extraHeader value for token.
func AuthorizationHeader(token string) string {
	encoded := base64.StdEncoding.EncodeToString([]byte(credentialUser + ":" + token))
	return "Authorization: Basic " + encoded
}
