// Package urlutil derives GitLab coordinates from git remote URLs.
//
// It handles three URL formats:
//   - HTTPS: https://gitlab.example.com/group/project.git
//   - SSH colon: git@gitlab.example.com:group/project.git
//   - SSH protocol: ssh://git@gitlab.example.com:2222/group/project.git
//
// Credentials embedded in HTTPS remotes (CI clones use
// https://gitlab-ci-token:<token>@host/...) are never part of the result.
package urlutil

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const (
	// sshColonParts is the split of git@host:path into ["git@host", "path"].
	sshColonParts = 2
)

var errUnsupportedRemote = errors.New("unsupported remote URL")

// ErrUnsupportedRemote is returned for remotes that are not HTTP(S) or SSH.
var ErrUnsupportedRemote = errUnsupportedRemote

// Remote holds the GitLab instance and project path behind a git remote.
type Remote struct {
	// InstanceURL is the scheme and host of the GitLab instance, without a trailing slash.
	InstanceURL string
	// ProjectPath is the namespaced project path, usable as a project ID.
	ProjectPath string
}

// ParseRemote splits a git remote URL into its GitLab instance and project path.
// SSH remotes map to an https instance URL on the same host.
//
// Examples:
//
//	ParseRemote("git@gitlab.com:group/project.git") → {https://gitlab.com, group/project}
//	ParseRemote("https://ci:x@gitlab.com/a/b/c.git") → {https://gitlab.com, a/b/c}
func ParseRemote(remote string) (Remote, error) {
	remote = strings.TrimSpace(remote)

	if strings.HasPrefix(remote, "git@") {
		parts := strings.SplitN(strings.TrimPrefix(remote, "git@"), ":", sshColonParts)
		if len(parts) != sshColonParts {
			return Remote{}, fmt.Errorf("%w: %s", errUnsupportedRemote, remote)
		}
		return build("https", parts[0], parts[1], remote)
	}

	u, err := url.Parse(remote)
	if err != nil {
		return Remote{}, fmt.Errorf("%w: %s", errUnsupportedRemote, remote)
	}

	switch u.Scheme {
	case "http", "https":
		return build(u.Scheme, u.Host, u.Path, remote)
	case "ssh":
		return build("https", u.Hostname(), u.Path, remote)
	default:
		return Remote{}, fmt.Errorf("%w: %s", errUnsupportedRemote, remote)
	}
}

func build(scheme, host, path, original string) (Remote, error) {
	path = strings.TrimSuffix(strings.Trim(path, "/"), ".git")
	if host == "" || path == "" || !strings.Contains(path, "/") {
		return Remote{}, fmt.Errorf("%w: %s", errUnsupportedRemote, original)
	}
	return Remote{
		InstanceURL: scheme + "://" + host,
		ProjectPath: path,
	}, nil
}
