package code_host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/ahvar/team-activity-monitor/common/gitlabapi"
	"github.com/ahvar/team-activity-monitor/internal/model"
	gitlab "gitlab.com/gitlab-org/api/client-go"
)

const gitlabPerPage = 10

var ErrNoGitLabProjects = errors.New("no GitLab projects configured for commit search")

type GitLabConfig struct {
	BaseURL  string // instance URL without /api/v4; empty means gitlab.com
	Token    string
	Projects []string // project IDs or full paths searched for commits
}

type gitLabCodeHost struct {
	client   *gitlab.Client
	projects []string
	now      func() time.Time
}

func NewGitLabCodeHost(cfg GitLabConfig) (CodeHost, error) {
	client, err := gitlabapi.New(cfg.BaseURL, cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("creating gitlab client: %w", err)
	}
	return &gitLabCodeHost{
		client:   client,
		projects: cfg.Projects,
		now:      time.Now,
	}, nil
}

func (h *gitLabCodeHost) Name() string {
	return "GitLab"
}

// RecentCommits searches every configured project, since GitLab has no
// instance-wide commit search, and keeps the newest commits overall.
func (h *gitLabCodeHost) RecentCommits(ctx context.Context, author model.Member, timeRange model.TimeRange) ([]model.Commit, error) {
	if len(h.projects) == 0 {
		return nil, ErrNoGitLabProjects
	}

	since := timeRange.Since(h.now())
	var commits []model.Commit

	for _, project := range h.projects {
		opts := &gitlab.ListCommitsOptions{
			Author: gitlab.Ptr(author.CodeHostIdentity()),
			Since:  since,
			All:    gitlab.Ptr(true),
			ListOptions: gitlab.ListOptions{
				Page:    1,
				PerPage: gitlabPerPage,
			},
		}

		projectCommits, _, err := h.client.Commits.ListCommits(project, opts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to fetch commits from GitLab project %s: %w", project, err)
		}

		for _, c := range projectCommits {
			if c == nil {
				continue
			}
			commits = append(commits, model.Commit{
				SHA:        c.ID,
				Message:    c.Message,
				Repository: project,
				URL:        c.WebURL,
				Date:       c.CommittedDate,
			})
		}
	}

	sort.SliceStable(commits, func(i, j int) bool {
		return newer(commits[i].Date, commits[j].Date)
	})
	if len(commits) > gitlabPerPage {
		commits = commits[:gitlabPerPage]
	}

	slog.DebugContext(ctx, "fetched gitlab commits", "count", len(commits), "projects", len(h.projects))
	return commits, nil
}

func (h *gitLabCodeHost) RecentPullRequests(ctx context.Context, author model.Member, timeRange model.TimeRange) ([]model.PullRequest, error) {
	opts := &gitlab.ListMergeRequestsOptions{
		Scope:          gitlab.Ptr("all"),
		AuthorUsername: gitlab.Ptr(author.CodeHostIdentity()),
		UpdatedAfter:   timeRange.Since(h.now()),
		OrderBy:        gitlab.Ptr("updated_at"),
		Sort:           gitlab.Ptr("desc"),
		ListOptions: gitlab.ListOptions{
			Page:    1,
			PerPage: gitlabPerPage,
		},
	}

	mergeRequests, _, err := h.client.MergeRequests.ListMergeRequests(opts, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch merge requests from GitLab: %w", err)
	}

	prs := make([]model.PullRequest, 0, len(mergeRequests))
	for _, mr := range mergeRequests {
		if mr == nil {
			continue
		}
		prs = append(prs, model.PullRequest{
			Number:    int(mr.IID),
			Title:     mr.Title,
			State:     mergeRequestState(mr.State),
			URL:       mr.WebURL,
			CreatedAt: mr.CreatedAt,
			UpdatedAt: mr.UpdatedAt,
		})
	}

	slog.DebugContext(ctx, "fetched gitlab merge requests", "count", len(prs))
	return prs, nil
}

func (h *gitLabCodeHost) TestConnection(ctx context.Context) bool {
	if _, _, err := h.client.Users.CurrentUser(gitlab.WithContext(ctx)); err != nil {
		slog.ErrorContext(ctx, "gitlab connection test failed", "error", err)
		return false
	}
	return true
}

func mergeRequestState(state string) model.PullRequestState {
	switch state {
	case "opened", "locked":
		return model.PullRequestOpen
	case "merged":
		return model.PullRequestMerged
	default:
		return model.PullRequestClosed
	}
}

func newer(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return a.After(*b)
	}
}
