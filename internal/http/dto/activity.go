package dto

import (
	"github.com/ahvar/team-activity-monitor/internal/model"
	"github.com/ahvar/team-activity-monitor/internal/service"
)

type AskRequest struct {
	Question string `json:"question" binding:"required,min=1,max=1000"`
}

type ReportQuery struct {
	Intent    string `form:"intent" binding:"omitempty,oneof=activity_summary issues_only commits_only pull_requests_only"`
	TimeRange string `form:"time_range" binding:"omitempty,oneof=recent this_week all_time"`
}

type AnswerResponse struct {
	RequestID  int64             `json:"request_id,string"`
	Answer     string            `json:"answer"`
	Understood bool              `json:"understood"`
	Member     string            `json:"member,omitempty"`
	Intent     string            `json:"intent,omitempty"`
	TimeRange  string            `json:"time_range,omitempty"`
	Sections   *SectionsResponse `json:"sections,omitempty"`
	Error      string            `json:"error,omitempty"`
}

type SectionResponse[T any] struct {
	Items []T    `json:"items"`
	Error string `json:"error,omitempty"`
}

type SectionsResponse struct {
	IssueSource  string                              `json:"issue_source"`
	CodeSource   string                              `json:"code_source"`
	Issues       *SectionResponse[model.Issue]       `json:"issues,omitempty"`
	Commits      *SectionResponse[model.Commit]      `json:"commits,omitempty"`
	PullRequests *SectionResponse[model.PullRequest] `json:"pull_requests,omitempty"`
}

func ToAnswerResponse(a service.Answer) *AnswerResponse {
	resp := &AnswerResponse{
		RequestID:  a.RequestID,
		Answer:     a.Text,
		Understood: a.Understood,
	}
	if !a.Understood {
		return resp
	}

	resp.Member = a.Query.Member.Name
	resp.Intent = string(a.Query.Intent)
	resp.TimeRange = string(a.Query.TimeRange)

	if r := a.Result; r != nil {
		resp.Error = r.Error
		resp.Sections = &SectionsResponse{
			IssueSource:  r.IssueSource,
			CodeSource:   r.CodeSource,
			Issues:       toSection(r.Issues),
			Commits:      toSection(r.Commits),
			PullRequests: toSection(r.PullRequests),
		}
	}
	return resp
}

func toSection[T any](s *model.Section[T]) *SectionResponse[T] {
	if s == nil {
		return nil
	}
	items := s.Items
	if items == nil {
		items = []T{}
	}
	return &SectionResponse[T]{Items: items, Error: s.Err}
}

type MemberResponse struct {
	Name           string `json:"name"`
	IssueTrackerID string `json:"issue_tracker_id"`
	CodeHostID     string `json:"code_host_id"`
}

type MembersResponse struct {
	Members []MemberResponse `json:"members"`
}

func ToMembersResponse(members []model.Member) *MembersResponse {
	out := make([]MemberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, MemberResponse{
			Name:           m.Name,
			IssueTrackerID: m.IssueTrackerIdentity(),
			CodeHostID:     m.CodeHostIdentity(),
		})
	}
	return &MembersResponse{Members: out}
}

type ConnectionResponse struct {
	Name       string `json:"name"`
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
}

type IntegrationStatusResponse struct {
	IssueTracker ConnectionResponse `json:"issue_tracker"`
	CodeHost     ConnectionResponse `json:"code_host"`
}

func ToIntegrationStatusResponse(s service.IntegrationStatus) *IntegrationStatusResponse {
	return &IntegrationStatusResponse{
		IssueTracker: ConnectionResponse(s.IssueTracker),
		CodeHost:     ConnectionResponse(s.CodeHost),
	}
}
