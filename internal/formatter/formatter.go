// Package formatter renders aggregate results as the plain-text answers users
// read. Every function here is pure and never fails.
package formatter

import (
	"fmt"
	"strings"

	"github.com/ahvar/team-activity-monitor/internal/model"
)

const (
	listLimit    = 5
	summaryLimit = 3
)

// Format renders r with the renderer for its intent.
func Format(r model.AggregateResult) string {
	name := r.Member.Name
	if r.Error != "" {
		return fmt.Sprintf("I ran into a problem gathering %s's activity: %s", name, r.Error)
	}

	switch r.Intent {
	case model.IntentIssuesOnly:
		return FormatIssues(name, r.IssueSource, r.Issues)
	case model.IntentCommitsOnly:
		return FormatCommits(name, r.Commits)
	case model.IntentPullRequestsOnly:
		return FormatPullRequests(name, r.PullRequests)
	default:
		return FormatActivitySummary(r)
	}
}

// EntityNotFound is the answer when no roster member appears in the question.
func EntityNotFound(names []string) string {
	return fmt.Sprintf("I couldn't identify a known team member in your question. Try asking about one of: %s.",
		strings.Join(names, ", "))
}

func FormatIssues(name, source string, s *model.Section[model.Issue]) string {
	if s.Failed() {
		return fmt.Sprintf("I couldn't access %s's %s tickets: %s", name, source, s.Err)
	}
	if s.Empty() {
		return fmt.Sprintf("%s doesn't have any active %s tickets right now.", name, source)
	}

	count := s.Len()
	lines := []string{fmt.Sprintf("%s is working on %s:", name, plural(count, source+" ticket")), ""}
	for i, issue := range head(s.Items, listLimit) {
		lines = append(lines,
			fmt.Sprintf("%d. %s - %s", i+1, issue.Key, issue.Summary),
			fmt.Sprintf("   Status: %s", issue.Status),
			"")
	}
	if count > listLimit {
		lines = append(lines, fmt.Sprintf("Plus %d more tickets.", count-listLimit))
	}
	return strings.Join(lines, "\n")
}

func FormatCommits(name string, s *model.Section[model.Commit]) string {
	if s.Failed() {
		return fmt.Sprintf("I couldn't get %s's recent commits: %s", name, s.Err)
	}
	if s.Empty() {
		return fmt.Sprintf("%s hasn't made any recent commits.", name)
	}

	count := s.Len()
	lines := []string{fmt.Sprintf("%s has %s:", name, plural(count, "recent commit")), ""}
	for i, c := range head(s.Items, listLimit) {
		lines = append(lines, fmt.Sprintf("%d. %s - %s", i+1, shortSHA(c.SHA), commitLine(c.Message, commitBudget)))
	}
	if count > listLimit {
		lines = append(lines, "", fmt.Sprintf("Plus %d more commits.", count-listLimit))
	}
	return strings.Join(lines, "\n")
}

func FormatPullRequests(name string, s *model.Section[model.PullRequest]) string {
	if s.Failed() {
		return fmt.Sprintf("I couldn't get %s's pull requests: %s", name, s.Err)
	}
	if s.Empty() {
		return fmt.Sprintf("%s doesn't have any recent pull requests.", name)
	}

	count := s.Len()
	lines := []string{fmt.Sprintf("%s has %s:", name, plural(count, "recent pull request")), ""}
	for i, pr := range head(s.Items, listLimit) {
		lines = append(lines,
			fmt.Sprintf("%d. #%d - %s", i+1, pr.Number, titleLine(pr.Title, pullRequestBudget)),
			fmt.Sprintf("   Status: %s", state(pr.State)),
			"")
	}
	if count > listLimit {
		lines = append(lines, fmt.Sprintf("Plus %d more pull requests.", count-listLimit))
	}
	return strings.Join(lines, "\n")
}

// FormatActivitySummary renders every requested section. When all of them
// failed the per-section errors collapse into one apology.
func FormatActivitySummary(r model.AggregateResult) string {
	name := r.Member.Name
	if r.Error != "" {
		return fmt.Sprintf("I ran into a problem gathering %s's activity: %s", name, r.Error)
	}

	requested := r.RequestedSections()
	if requested > 0 && r.FailedSections() == requested {
		return fmt.Sprintf("I'm having trouble accessing both %s and %s data for %s right now. Please try again later.",
			r.IssueSource, r.CodeSource, name)
	}
	if r.Issues.Empty() && r.Commits.Empty() && r.PullRequests.Empty() && r.FailedSections() == 0 {
		return fmt.Sprintf("%s appears to be having a quiet period - no recent %s tickets, commits, or pull requests found.",
			name, r.IssueSource)
	}

	lines := []string{fmt.Sprintf("Here's what %s has been working on:", name), ""}

	var sections [][]string
	if r.Issues != nil {
		sections = append(sections, summaryIssues(r.IssueSource, r.Issues))
	}
	if r.Commits != nil {
		sections = append(sections, summaryCommits(r.CodeSource, r.Commits))
	}
	if r.PullRequests != nil {
		sections = append(sections, summaryPullRequests(r.CodeSource, r.PullRequests))
	}
	for i, section := range sections {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, section...)
	}

	return strings.Join(lines, "\n")
}

func summaryIssues(source string, s *model.Section[model.Issue]) []string {
	lines := []string{strings.ToUpper(source) + " TICKETS:"}
	switch {
	case s.Failed():
		return append(lines, fmt.Sprintf("  Could not fetch %s data: %s", source, s.Err))
	case s.Empty():
		return append(lines, "  No active tickets")
	}

	lines = append(lines, "  "+plural(s.Len(), "active ticket"))
	for _, issue := range head(s.Items, summaryLimit) {
		lines = append(lines, fmt.Sprintf("  • %s: %s (%s)", issue.Key, issue.Summary, issue.Status))
	}
	if s.Len() > summaryLimit {
		lines = append(lines, fmt.Sprintf("  • Plus %d more tickets", s.Len()-summaryLimit))
	}
	return lines
}

func summaryCommits(source string, s *model.Section[model.Commit]) []string {
	lines := []string{"RECENT COMMITS:"}
	switch {
	case s.Failed():
		return append(lines, fmt.Sprintf("  Could not fetch %s data: %s", source, s.Err))
	case s.Empty():
		return append(lines, "  No recent commits")
	}

	lines = append(lines, "  "+plural(s.Len(), "recent commit"))
	for _, c := range head(s.Items, summaryLimit) {
		lines = append(lines, fmt.Sprintf("  • %s: %s", shortSHA(c.SHA), commitLine(c.Message, summaryCommitBudget)))
	}
	if s.Len() > summaryLimit {
		lines = append(lines, fmt.Sprintf("  • Plus %d more commits", s.Len()-summaryLimit))
	}
	return lines
}

func summaryPullRequests(source string, s *model.Section[model.PullRequest]) []string {
	lines := []string{"PULL REQUESTS:"}
	switch {
	case s.Failed():
		return append(lines, fmt.Sprintf("  Could not fetch %s data: %s", source, s.Err))
	case s.Empty():
		return append(lines, "  No recent pull requests")
	}

	open := 0
	for _, pr := range s.Items {
		if pr.State == model.PullRequestOpen {
			open++
		}
	}
	closed := s.Len() - open
	if open > 0 {
		lines = append(lines, fmt.Sprintf("  %d open, %d recently closed", open, closed))
	} else {
		lines = append(lines, fmt.Sprintf("  %d recently closed", closed))
	}

	for _, pr := range head(s.Items, summaryLimit) {
		lines = append(lines, fmt.Sprintf("  • #%d: %s (%s)", pr.Number, titleLine(pr.Title, summaryPRBudget), state(pr.State)))
	}
	if s.Len() > summaryLimit {
		lines = append(lines, fmt.Sprintf("  • Plus %d more pull requests", s.Len()-summaryLimit))
	}
	return lines
}

func state(s model.PullRequestState) string {
	if s == "" {
		return "unknown"
	}
	return string(s)
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
