package issue_tracker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahvar/team-activity-monitor/common/gitlabapi"
	"github.com/ahvar/team-activity-monitor/internal/model"
	gitlab "gitlab.com/gitlab-org/api/client-go"
)

const gitlabIssuesPerPage = 20

type GitLabConfig struct {
	BaseURL string // instance URL without /api/v4; empty means gitlab.com
	Token   string
}

type gitLabIssueTracker struct {
	client *gitlab.Client
	now    func() time.Time
}

func NewGitLabIssueTracker(cfg GitLabConfig) (IssueTracker, error) {
	client, err := gitlabapi.New(cfg.BaseURL, cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("creating gitlab client: %w", err)
	}
	return &gitLabIssueTracker{
		client: client,
		now:    time.Now,
	}, nil
}

func (t *gitLabIssueTracker) Name() string {
	return "GitLab"
}

func (t *gitLabIssueTracker) AssignedIssues(ctx context.Context, assignee model.Member, timeRange model.TimeRange) ([]model.Issue, error) {
	opts := &gitlab.ListIssuesOptions{
		Scope:            gitlab.Ptr("all"),
		State:            gitlab.Ptr("opened"),
		AssigneeUsername: gitlab.Ptr(assignee.IssueTrackerIdentity()),
		OrderBy:          gitlab.Ptr("updated_at"),
		Sort:             gitlab.Ptr("desc"),
		UpdatedAfter:     timeRange.Since(t.now()),
		ListOptions: gitlab.ListOptions{
			Page:    1,
			PerPage: gitlabIssuesPerPage,
		},
	}

	gitlabIssues, _, err := t.client.Issues.ListIssues(opts, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch issues from GitLab: %w", err)
	}

	issues := make([]model.Issue, 0, len(gitlabIssues))
	for _, gi := range gitlabIssues {
		if gi == nil {
			continue
		}
		issues = append(issues, mapGitLabIssue(gi))
	}

	slog.DebugContext(ctx, "fetched gitlab issues", "count", len(issues))
	return issues, nil
}

func (t *gitLabIssueTracker) TestConnection(ctx context.Context) bool {
	if _, _, err := t.client.Users.CurrentUser(gitlab.WithContext(ctx)); err != nil {
		slog.ErrorContext(ctx, "gitlab connection test failed", "error", err)
		return false
	}
	return true
}

func mapGitLabIssue(gi *gitlab.Issue) model.Issue {
	key := fmt.Sprintf("#%d", gi.IID)
	if gi.References != nil && gi.References.Full != "" {
		key = gi.References.Full
	}

	issue := model.Issue{
		Key:       key,
		Summary:   gi.Title,
		Status:    gi.State,
		Assignee:  "Unassigned",
		Priority:  "None",
		URL:       gi.WebURL,
		UpdatedAt: gi.UpdatedAt,
	}
	if gi.Assignee != nil {
		issue.Assignee = gi.Assignee.Name
	}
	return issue
}
