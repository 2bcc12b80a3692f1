package interpreter

import "github.com/ahvar/team-activity-monitor/internal/model"

// Most specific first. "pr " carries a trailing space so "print" and
// "project" stay out of the pull request rule.
var intentRules = NewPriorityMatcher(model.IntentActivitySummary,
	Rule[model.Intent]{
		Value:    model.IntentCommitsOnly,
		Patterns: []string{"commit", "committed", "commits", "pushed", "push", "code changes", "recent changes", "coding"},
	},
	Rule[model.Intent]{
		Value:    model.IntentPullRequestsOnly,
		Patterns: []string{"pull request", "pull requests", "prs", "pr ", "merge request", "merge requests", "reviews"},
	},
	Rule[model.Intent]{
		Value:    model.IntentIssuesOnly,
		Patterns: []string{"issue", "issues", "ticket", "tickets", "task", "tasks", "jira", "assigned", "current work"},
	},
	Rule[model.Intent]{
		Value:    model.IntentActivitySummary,
		Patterns: []string{"working on", "been doing", "activity", "up to", "busy with", "focused on", "progress"},
	},
)

// No rule yields AllTime; only callers building a StructuredQuery directly use it.
var timeRangeRules = NewPriorityMatcher(model.TimeRangeRecent,
	Rule[model.TimeRange]{
		Value:    model.TimeRangeThisWeek,
		Patterns: []string{"this week", "current week", "week", "past week", "last 7 days", "past 7 days", "weekly"},
	},
	Rule[model.TimeRange]{
		Value:    model.TimeRangeRecent,
		Patterns: []string{"recent", "recently", "these days", "lately", "current", "last few days", "past few days", "now", "currently"},
	},
)

func ClassifyIntent(text string) model.Intent {
	return intentRules.Match(text)
}

func ResolveTimeRange(text string) model.TimeRange {
	return timeRangeRules.Match(text)
}
