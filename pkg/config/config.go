// Package config loads the immutable run configuration for gitlab-backport.
//
// Values are layered: built-in defaults, an optional YAML file, then
// environment variables (the GitLab CI predefined variables plus BACKPORT_*).
// The result is validated once and passed by value to every component.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/sgaunet/gitlab-backport/internal/labels"
	"github.com/sgaunet/gitlab-backport/internal/security"
	"gopkg.in/yaml.v3"
)

// Defaults applied before the file and environment layers.
const (
	DefaultFailedLabel       = "failed-backport"
	DefaultAutoMergeAttempts = 10
	DefaultAutoMergeInterval = 2 * time.Second
	DefaultGitUserName       = "GitLab CI Bot"
	DefaultGitUserEmail      = "ci-bot@gitlab.local"
	DefaultRemote            = "origin"
	DefaultGitTimeout        = 2 * time.Minute
	DefaultLogLevel          = "info"
)

// EnvConfigPath names the variable that points at an optional YAML file.
const EnvConfigPath = "BACKPORT_CONFIG"

var (
	errConfigNotFound     = errors.New("config file not found")
	errGitLabURLRequired  = errors.New("CI_SERVER_URL is required")
	errGitLabURLInvalid   = errors.New("CI_SERVER_URL must be an http(s) URL")
	errTokenRequired      = errors.New("GITLAB_TOKEN is required")
	errProjectIDRequired  = errors.New("CI_PROJECT_ID is required")
	errLabelPrefixEmpty   = errors.New("backport label prefix cannot be empty")
	errFailedLabelEmpty   = errors.New("failed-backport label cannot be empty")
	errAttemptsInvalid    = errors.New("auto-merge attempts must be at least 1")
	errIntervalInvalid    = errors.New("auto-merge interval cannot be negative")
	errGitIdentityMissing = errors.New("git user name and email are required")
	errRemoteEmpty        = errors.New("git remote name cannot be empty")

	// Exported errors for testing and external use.
	ErrConfigNotFound     = errConfigNotFound
	ErrGitLabURLRequired  = errGitLabURLRequired
	ErrGitLabURLInvalid   = errGitLabURLInvalid
	ErrTokenRequired      = errTokenRequired
	ErrProjectIDRequired  = errProjectIDRequired
	ErrLabelPrefixEmpty   = errLabelPrefixEmpty
	ErrFailedLabelEmpty   = errFailedLabelEmpty
	ErrAttemptsInvalid    = errAttemptsInvalid
	ErrIntervalInvalid    = errIntervalInvalid
	ErrGitIdentityMissing = errGitIdentityMissing
	ErrRemoteEmpty        = errRemoteEmpty
)

// Config is the complete configuration for one backport run.
type Config struct {
	// GitLab connection.
	GitLabURL string               `yaml:"gitlab_url" envconfig:"CI_SERVER_URL"`
	Token     security.SecureToken `yaml:"-"          envconfig:"GITLAB_TOKEN"`
	ProjectID string               `yaml:"project_id" envconfig:"CI_PROJECT_ID"`

	// Trigger inputs; the merge request IID wins over the commit when set.
	CommitSHA       string `yaml:"-" envconfig:"CI_COMMIT_SHA"`
	MergeRequestIID int64  `yaml:"-" envconfig:"BACKPORT_MR_IID"`

	LabelPrefix        string        `yaml:"label_prefix"         envconfig:"BACKPORT_LABEL_PREFIX"`
	FailedLabel        string        `yaml:"failed_label"         envconfig:"BACKPORT_FAILED_LABEL"`
	AutoMerge          bool          `yaml:"auto_merge"           envconfig:"AUTO_MERGE_ENABLED"`
	RemoveSourceBranch bool          `yaml:"remove_source_branch" envconfig:"REMOVE_SOURCE_BRANCH_ENABLED"`
	ForcePush          bool          `yaml:"force_push"           envconfig:"BACKPORT_FORCE_PUSH"`
	AutoMergeAttempts  int           `yaml:"auto_merge_attempts"  envconfig:"BACKPORT_AUTO_MERGE_ATTEMPTS"`
	AutoMergeInterval  time.Duration `yaml:"auto_merge_interval"  envconfig:"BACKPORT_AUTO_MERGE_INTERVAL"`

	// Local repository.
	RepoPath     string        `yaml:"repo_path"      envconfig:"BACKPORT_REPO_PATH"`
	Remote       string        `yaml:"remote"         envconfig:"BACKPORT_REMOTE"`
	GitUserName  string        `yaml:"git_user_name"  envconfig:"BACKPORT_GIT_USER_NAME"`
	GitUserEmail string        `yaml:"git_user_email" envconfig:"BACKPORT_GIT_USER_EMAIL"`
	GitTimeout   time.Duration `yaml:"git_timeout"    envconfig:"BACKPORT_GIT_TIMEOUT"`

	LogLevel string `yaml:"log_level" envconfig:"BACKPORT_LOG_LEVEL"`
}

// Override mutates a freshly loaded Config before validation, typically to
// apply command line flags.
type Override func(*Config)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LabelPrefix:        labels.DefaultPrefix,
		FailedLabel:        DefaultFailedLabel,
		AutoMerge:          true,
		RemoveSourceBranch: true,
		AutoMergeAttempts:  DefaultAutoMergeAttempts,
		AutoMergeInterval:  DefaultAutoMergeInterval,
		RepoPath:           ".",
		Remote:             DefaultRemote,
		GitUserName:        DefaultGitUserName,
		GitUserEmail:       DefaultGitUserEmail,
		GitTimeout:         DefaultGitTimeout,
		LogLevel:           DefaultLogLevel,
	}
}

// Load builds the configuration from defaults, the optional YAML file at path
// and the environment, applies overrides and validates the result.
// An empty path skips the file layer.
func Load(path string, overrides ...Override) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read environment: %w", err)
	}

	for _, override := range overrides {
		override(&cfg)
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	// #nosec G304 - the path is an explicit operator input
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %s", errConfigNotFound, path)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func (c *Config) normalize() {
	c.GitLabURL = strings.TrimRight(strings.TrimSpace(c.GitLabURL), "/")
	c.ProjectID = strings.TrimSpace(c.ProjectID)
	c.CommitSHA = strings.TrimSpace(c.CommitSHA)
	c.FailedLabel = strings.TrimSpace(c.FailedLabel)
	c.Remote = strings.TrimSpace(c.Remote)
	if c.RepoPath == "" {
		c.RepoPath = "."
	}
}

// Validate checks that all required settings are present and coherent.
func (c Config) Validate() error {
	if c.GitLabURL == "" {
		return errGitLabURLRequired
	}

	u, err := url.Parse(c.GitLabURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", errGitLabURLInvalid, c.GitLabURL)
	}

	if c.Token.IsEmpty() {
		return errTokenRequired
	}

	if c.ProjectID == "" {
		return errProjectIDRequired
	}

	if c.LabelPrefix == "" {
		return errLabelPrefixEmpty
	}

	if c.FailedLabel == "" {
		return errFailedLabelEmpty
	}

	if c.AutoMergeAttempts < 1 {
		return errAttemptsInvalid
	}

	if c.AutoMergeInterval < 0 {
		return errIntervalInvalid
	}

	if strings.TrimSpace(c.GitUserName) == "" || strings.TrimSpace(c.GitUserEmail) == "" {
		return errGitIdentityMissing
	}

	if c.Remote == "" {
		return errRemoteEmpty
	}

	return nil
}
