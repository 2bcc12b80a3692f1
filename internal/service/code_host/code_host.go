package code_host

import (
	"context"

	"github.com/ahvar/team-activity-monitor/internal/model"
)

// CodeHost lists a member's recent commits and pull requests.
type CodeHost interface {
	Name() string
	RecentCommits(ctx context.Context, author model.Member, timeRange model.TimeRange) ([]model.Commit, error)
	RecentPullRequests(ctx context.Context, author model.Member, timeRange model.TimeRange) ([]model.PullRequest, error)
	TestConnection(ctx context.Context) bool
}
