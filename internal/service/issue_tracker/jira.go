package issue_tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ahvar/team-activity-monitor/internal/model"
)

const (
	jiraSearchPath   = "/rest/api/3/search"
	jiraMyselfPath   = "/rest/api/3/myself"
	jiraSearchFields = "key,summary,status,updated,assignee,priority"
	jiraTimeLayout   = "2006-01-02T15:04:05.000-0700"
)

var (
	ErrJiraAuthentication = errors.New("JIRA authentication failed - check email/API token")
	ErrJiraPermission     = errors.New("JIRA permission denied - insufficient access rights")
)

type JiraConfig struct {
	BaseURL    string
	Email      string
	APIToken   string
	MaxResults int
	HTTPClient *http.Client
}

type jiraIssueTracker struct {
	baseURL    string
	email      string
	apiToken   string
	maxResults int
	http       *http.Client
}

func NewJiraIssueTracker(cfg JiraConfig) IssueTracker {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}
	return &jiraIssueTracker{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		email:      cfg.Email,
		apiToken:   cfg.APIToken,
		maxResults: maxResults,
		http:       client,
	}
}

func (t *jiraIssueTracker) Name() string {
	return "Jira"
}

type jiraSearchResponse struct {
	Issues []struct {
		Key    string `json:"key"`
		Fields struct {
			Summary string `json:"summary"`
			Updated string `json:"updated"`
			Status  struct {
				Name string `json:"name"`
			} `json:"status"`
			Assignee *struct {
				DisplayName string `json:"displayName"`
			} `json:"assignee"`
			Priority *struct {
				Name string `json:"name"`
			} `json:"priority"`
		} `json:"fields"`
	} `json:"issues"`
}

func (t *jiraIssueTracker) AssignedIssues(ctx context.Context, assignee model.Member, timeRange model.TimeRange) ([]model.Issue, error) {
	params := url.Values{}
	params.Set("jql", BuildJQL(assignee.IssueTrackerIdentity(), timeRange))
	params.Set("maxResults", strconv.Itoa(t.maxResults))
	params.Set("fields", jiraSearchFields)

	req, err := t.newRequest(ctx, jiraSearchPath+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	resp, err := t.http.Do(req)
	if err != nil {
		slog.ErrorContext(ctx, "jira request failed", "error", err)
		return nil, fmt.Errorf("failed to fetch issues from JIRA: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return nil, ErrJiraAuthentication
	case http.StatusForbidden:
		return nil, ErrJiraPermission
	case http.StatusBadRequest:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("JIRA query error: %s", strings.TrimSpace(string(body)))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("JIRA request failed with status %d", resp.StatusCode)
	}

	var data jiraSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decoding JIRA search response: %w", err)
	}

	issues := make([]model.Issue, 0, len(data.Issues))
	for _, raw := range data.Issues {
		issue := model.Issue{
			Key:      raw.Key,
			Summary:  raw.Fields.Summary,
			Status:   raw.Fields.Status.Name,
			Assignee: "Unassigned",
			Priority: "None",
			URL:      t.baseURL + "/browse/" + raw.Key,
		}
		if raw.Fields.Assignee != nil {
			issue.Assignee = raw.Fields.Assignee.DisplayName
		}
		if raw.Fields.Priority != nil {
			issue.Priority = raw.Fields.Priority.Name
		}
		if updated, err := time.Parse(jiraTimeLayout, raw.Fields.Updated); err == nil {
			issue.UpdatedAt = &updated
		}
		issues = append(issues, issue)
	}

	slog.DebugContext(ctx, "fetched jira issues", "count", len(issues))
	return issues, nil
}

func (t *jiraIssueTracker) TestConnection(ctx context.Context) bool {
	req, err := t.newRequest(ctx, jiraMyselfPath)
	if err != nil {
		return false
	}
	resp, err := t.http.Do(req)
	if err != nil {
		slog.ErrorContext(ctx, "jira connection test failed", "error", err)
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (t *jiraIssueTracker) newRequest(ctx context.Context, path string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("building JIRA request: %w", err)
	}
	req.SetBasicAuth(t.email, t.apiToken)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// BuildJQL selects unfinished issues assigned to assignee, newest first.
func BuildJQL(assignee string, timeRange model.TimeRange) string {
	jql := fmt.Sprintf(`assignee = "%s" AND statusCategory != Done`, strings.ReplaceAll(assignee, `"`, `\"`))
	switch timeRange {
	case model.TimeRangeThisWeek:
		jql += " AND updated >= -7d"
	case model.TimeRangeRecent:
		jql += " AND updated >= -14d"
	}
	return jql + " ORDER BY updated DESC"
}
