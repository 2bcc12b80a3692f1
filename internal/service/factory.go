package service

import (
	"fmt"
	"log/slog"

	"github.com/ahvar/team-activity-monitor/core/config"
	"github.com/ahvar/team-activity-monitor/internal/aggregator"
	"github.com/ahvar/team-activity-monitor/internal/cache"
	"github.com/ahvar/team-activity-monitor/internal/interpreter"
	"github.com/ahvar/team-activity-monitor/internal/service/code_host"
	"github.com/ahvar/team-activity-monitor/internal/service/issue_tracker"
)

type ServicesConfig struct {
	Config config.Config
	Cache  cache.Store // nil disables result caching
}

type Services struct {
	activity ActivityService
}

// NewServices wires collaborators for the configured providers. A provider
// without credentials is left out; questions that need it are then answered
// with an explanation instead of data.
func NewServices(cfg ServicesConfig) (*Services, error) {
	issues, err := NewIssueTracker(cfg.Config)
	if err != nil {
		return nil, err
	}
	code, err := NewCodeHost(cfg.Config)
	if err != nil {
		return nil, err
	}

	if cfg.Cache != nil && cfg.Config.Cache.TTL > 0 {
		if issues != nil {
			issues = cache.WrapIssueTracker(issues, cfg.Cache, cfg.Config.Cache.TTL)
		}
		if code != nil {
			code = cache.WrapCodeHost(code, cfg.Cache, cfg.Config.Cache.TTL)
		}
	}

	var interpOpts []interpreter.EntityResolverOption
	if cfg.Config.Interpreter.ContextExclusion {
		interpOpts = append(interpOpts, interpreter.WithQualifierExclusion())
	}

	roster := cfg.Config.Team.Roster
	return &Services{
		activity: NewActivityService(
			roster,
			interpreter.New(roster, interpOpts...),
			aggregator.New(issues, code, aggregator.WithCallTimeout(cfg.Config.Aggregator.CallTimeout)),
			issues,
			code,
		),
	}, nil
}

func (s *Services) Activity() ActivityService {
	return s.activity
}

// NewIssueTracker returns nil, without error, when the selected tracker has no credentials.
func NewIssueTracker(cfg config.Config) (issue_tracker.IssueTracker, error) {
	switch cfg.IssueTracker {
	case config.IssueTrackerJira:
		if !cfg.Jira.Enabled() {
			slog.Warn("jira is not configured; issue questions will fail", "required", "JIRA_BASE_URL, JIRA_EMAIL, JIRA_API_KEY")
			return nil, nil
		}
		return issue_tracker.NewJiraIssueTracker(issue_tracker.JiraConfig{
			BaseURL:  cfg.Jira.BaseURL,
			Email:    cfg.Jira.Email,
			APIToken: cfg.Jira.APIToken,
		}), nil
	case config.IssueTrackerGitLab:
		if !cfg.GitLab.Enabled() {
			slog.Warn("gitlab is not configured; issue questions will fail", "required", "GITLAB_TOKEN")
			return nil, nil
		}
		return issue_tracker.NewGitLabIssueTracker(issue_tracker.GitLabConfig{
			BaseURL: cfg.GitLab.BaseURL,
			Token:   cfg.GitLab.Token,
		})
	default:
		return nil, fmt.Errorf("unsupported issue tracker %q", cfg.IssueTracker)
	}
}

// NewCodeHost returns nil, without error, when the selected host has no credentials.
func NewCodeHost(cfg config.Config) (code_host.CodeHost, error) {
	switch cfg.CodeHost {
	case config.CodeHostGitHub:
		if !cfg.GitHub.Enabled() {
			slog.Warn("github is not configured; commit and pull request questions will fail", "required", "GITHUB_API_KEY")
			return nil, nil
		}
		return code_host.NewGitHubCodeHost(code_host.GitHubConfig{
			BaseURL: cfg.GitHub.BaseURL,
			Token:   cfg.GitHub.Token,
		}), nil
	case config.CodeHostGitLab:
		if !cfg.GitLab.Enabled() {
			slog.Warn("gitlab is not configured; commit and pull request questions will fail", "required", "GITLAB_TOKEN")
			return nil, nil
		}
		return code_host.NewGitLabCodeHost(code_host.GitLabConfig{
			BaseURL:  cfg.GitLab.BaseURL,
			Token:    cfg.GitLab.Token,
			Projects: cfg.GitLab.Projects,
		})
	default:
		return nil, fmt.Errorf("unsupported code host %q", cfg.CodeHost)
	}
}
