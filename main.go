// Package main provides the entry point for the gitlab-backport CLI tool.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sgaunet/bullets"
	"github.com/sgaunet/gitlab-backport/internal/logger"
	"github.com/sgaunet/gitlab-backport/internal/security"
	"github.com/sgaunet/gitlab-backport/internal/timeutil"
	"github.com/sgaunet/gitlab-backport/internal/urlutil"
	"github.com/sgaunet/gitlab-backport/pkg/backport"
	"github.com/sgaunet/gitlab-backport/pkg/config"
	"github.com/sgaunet/gitlab-backport/pkg/git"
	"github.com/sgaunet/gitlab-backport/pkg/gitlab"
	"github.com/spf13/cobra"
)

var (
	logLevel   string
	configPath string
	commitSHA  string
	mrIID      int64
	log        *bullets.Logger
)

var rootCmd = &cobra.Command{
	Use:   "gitlab-backport",
	Short: "Backport merged GitLab merge requests to release branches",
	Long: `gitlab-backport runs in a GitLab CI job after a merge. It reads the
backport-<branch> labels of the merged merge request, cherry-picks the change
onto each branch and opens a merge request per branch. Conflicts are pushed as
a [CONFLICT] merge request; branches that cannot be prepared get the
failed-backport label on the original merge request.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runBackport(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "",
		"Set log level (debug, info, warn, error), overrides BACKPORT_LOG_LEVEL")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv(config.EnvConfigPath),
		"Path to an optional YAML configuration file")
	rootCmd.Flags().StringVar(&commitSHA, "commit", "",
		"Merged commit to resolve the merge request from, overrides CI_COMMIT_SHA")
	rootCmd.Flags().Int64Var(&mrIID, "mr-iid", 0,
		"Merge request IID to backport, skips the commit lookup")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", security.SanitizeString(err.Error(), os.Getenv("GITLAB_TOKEN")))
		os.Exit(1)
	}
}

func flagOverrides() []config.Override {
	return []config.Override{
		func(c *config.Config) {
			if logLevel != "" {
				c.LogLevel = logLevel
			}
			if commitSHA != "" {
				c.CommitSHA = commitSHA
			}
			if mrIID != 0 {
				c.MergeRequestIID = mrIID
			}
		},
		remoteDefaults,
	}
}

// remoteDefaults fills the GitLab instance and project from the git remote
// when the CI variables are absent, e.g. for a local run.
func remoteDefaults(c *config.Config) {
	if c.GitLabURL != "" && c.ProjectID != "" {
		return
	}

	repo, err := git.OpenRepository(c.RepoPath)
	if err != nil {
		return
	}
	remoteURL, err := repo.RemoteURL(strings.TrimSpace(c.Remote))
	if err != nil {
		return
	}
	remote, err := urlutil.ParseRemote(remoteURL)
	if err != nil {
		return
	}

	if c.GitLabURL == "" {
		c.GitLabURL = remote.InstanceURL
	}
	if c.ProjectID == "" {
		c.ProjectID = remote.ProjectPath
	}
}

func runBackport(ctx context.Context) (err error) {
	start := time.Now()

	cfg, err := config.Load(configPath, flagOverrides()...)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log = logger.NewLogger(cfg.LogLevel)
	log.Info("gitlab-backport starting...")
	log.Debugf("GitLab %s, project %s, token %s", cfg.GitLabURL, cfg.ProjectID, cfg.Token)

	repo, err := git.OpenRepository(cfg.RepoPath)
	if err != nil {
		return err
	}
	repo.SetLogger(log)

	originalHead, err := repo.Head()
	if err != nil {
		return err
	}

	if err := repo.ConfigureIdentity(cfg.GitUserName, cfg.GitUserEmail); err != nil {
		return err
	}
	if err := repo.InjectCredentials(cfg.Token.Value()); err != nil {
		return err
	}

	var report *backport.Report
	defer func() {
		teardown := repo.Teardown(originalHead, workingBranches(report))
		if !teardown.Success() && err == nil {
			err = teardown.FirstError()
		}
	}()

	client, err := gitlab.NewClient(cfg.GitLabURL, cfg.Token, cfg.ProjectID)
	if err != nil {
		return err
	}
	client.SetLogger(log)

	ws := git.NewShellWorkspace(repo.Root(), repo)
	ws.Remote = cfg.Remote
	ws.NetworkTimeout = cfg.GitTimeout
	ws.SetLogger(log)

	engine := backport.NewEngine(cfg, client, ws)
	engine.SetLogger(log)

	report, err = engine.Run(ctx, backport.Trigger{
		CommitSHA:       cfg.CommitSHA,
		MergeRequestIID: cfg.MergeRequestIID,
	})
	if err != nil {
		return err
	}

	for _, line := range report.Summary() {
		log.Info(line)
	}
	log.Info("Finished in " + timeutil.Since(start))
	return nil
}

func workingBranches(report *backport.Report) []string {
	if report == nil {
		return nil
	}
	return report.WorkingBranches()
}
