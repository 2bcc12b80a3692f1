package model

import "time"

type Issue struct {
	Key       string     `json:"key"`
	Summary   string     `json:"summary"`
	Status    string     `json:"status"`
	Priority  string     `json:"priority,omitempty"`
	Assignee  string     `json:"assignee,omitempty"`
	URL       string     `json:"url,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type Commit struct {
	SHA        string     `json:"sha"`
	Message    string     `json:"message"`
	Repository string     `json:"repository,omitempty"`
	URL        string     `json:"url,omitempty"`
	Date       *time.Time `json:"date,omitempty"`
}

type PullRequestState string

const (
	PullRequestOpen   PullRequestState = "open"
	PullRequestClosed PullRequestState = "closed"
	PullRequestMerged PullRequestState = "merged"
)

type PullRequest struct {
	Number    int              `json:"number"`
	Title     string           `json:"title"`
	State     PullRequestState `json:"state"`
	URL       string           `json:"url,omitempty"`
	CreatedAt *time.Time       `json:"created_at,omitempty"`
	UpdatedAt *time.Time       `json:"updated_at,omitempty"`
}
