package model

type SectionKind string

const (
	SectionIssues       SectionKind = "issues"
	SectionCommits      SectionKind = "commits"
	SectionPullRequests SectionKind = "pull_requests"
)

// SectionsFor returns the minimal set of sections an intent needs, always in
// issues, commits, pull requests order. Unknown intents need nothing.
func SectionsFor(intent Intent) []SectionKind {
	switch intent {
	case IntentActivitySummary:
		return []SectionKind{SectionIssues, SectionCommits, SectionPullRequests}
	case IntentIssuesOnly:
		return []SectionKind{SectionIssues}
	case IntentCommitsOnly:
		return []SectionKind{SectionCommits}
	case IntentPullRequestsOnly:
		return []SectionKind{SectionPullRequests}
	default:
		return nil
	}
}

// Section holds either the fetched items or the message of the error that
// prevented fetching them. A failed section always has no items.
type Section[T any] struct {
	Items []T
	Err   string
}

func (s *Section[T]) Failed() bool {
	return s != nil && s.Err != ""
}

func (s *Section[T]) Empty() bool {
	return s == nil || len(s.Items) == 0
}

func (s *Section[T]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Items)
}

func Succeeded[T any](items []T) *Section[T] {
	if items == nil {
		items = []T{}
	}
	return &Section[T]{Items: items}
}

func Failed[T any](msg string) *Section[T] {
	return &Section[T]{Items: []T{}, Err: msg}
}

// AggregateResult is everything gathered for one question. Sections that the
// intent did not ask for are nil. Error is set only when the fan-out itself
// failed, in which case every requested section is empty.
type AggregateResult struct {
	Member       Member
	TimeRange    TimeRange
	Intent       Intent
	IssueSource  string
	CodeSource   string
	Issues       *Section[Issue]
	Commits      *Section[Commit]
	PullRequests *Section[PullRequest]
	Error        string
}

// FailedSections counts requested sections that carry an error.
func (r AggregateResult) FailedSections() int {
	n := 0
	if r.Issues.Failed() {
		n++
	}
	if r.Commits.Failed() {
		n++
	}
	if r.PullRequests.Failed() {
		n++
	}
	return n
}

// RequestedSections counts sections present in the result.
func (r AggregateResult) RequestedSections() int {
	n := 0
	if r.Issues != nil {
		n++
	}
	if r.Commits != nil {
		n++
	}
	if r.PullRequests != nil {
		n++
	}
	return n
}
