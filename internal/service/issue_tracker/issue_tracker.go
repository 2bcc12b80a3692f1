package issue_tracker

import (
	"context"

	"github.com/ahvar/team-activity-monitor/internal/model"
)

// IssueTracker lists the open work assigned to a member. Errors carry a
// human-readable message; callers do not inspect them further.
type IssueTracker interface {
	Name() string
	AssignedIssues(ctx context.Context, assignee model.Member, timeRange model.TimeRange) ([]model.Issue, error)
	TestConnection(ctx context.Context) bool
}
