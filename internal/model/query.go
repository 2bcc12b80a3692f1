package model

import "time"

type (
	Intent    string
	TimeRange string
)

const (
	IntentActivitySummary  Intent = "activity_summary"
	IntentIssuesOnly       Intent = "issues_only"
	IntentCommitsOnly      Intent = "commits_only"
	IntentPullRequestsOnly Intent = "pull_requests_only"
)

const (
	TimeRangeRecent   TimeRange = "recent"
	TimeRangeThisWeek TimeRange = "this_week"
	TimeRangeAllTime  TimeRange = "all_time"
)

const (
	thisWeekLookback = 7 * 24 * time.Hour
	recentLookback   = 14 * 24 * time.Hour
)

// Since returns the lower time bound collaborators filter on.
// AllTime (and anything unrecognised) has no bound and returns nil.
func (t TimeRange) Since(now time.Time) *time.Time {
	var since time.Time
	switch t {
	case TimeRangeThisWeek:
		since = now.Add(-thisWeekLookback)
	case TimeRangeRecent:
		since = now.Add(-recentLookback)
	default:
		return nil
	}
	return &since
}

// StructuredQuery is the interpreted form of a question. Member is always
// an entry taken from the Roster, never free text.
type StructuredQuery struct {
	Member    Member
	Intent    Intent
	TimeRange TimeRange
}
