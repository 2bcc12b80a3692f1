package issue_tracker

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/ahvar/team-activity-monitor/internal/model"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Jira issue tracker", func() {
	var (
		ctx     context.Context
		server  *httptest.Server
		status  int
		body    string
		lastReq *http.Request
		ada     = model.Member{Name: "Ada", IssueTrackerID: "ada@example.com"}
		tracker IssueTracker
	)

	BeforeEach(func() {
		ctx = context.Background()
		status = http.StatusOK
		body = `{"issues": []}`
		lastReq = nil

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lastReq = r
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		}))
		DeferCleanup(server.Close)

		tracker = NewJiraIssueTracker(JiraConfig{
			BaseURL:  server.URL + "/",
			Email:    "bot@example.com",
			APIToken: "secret",
		})
	})

	It("is named Jira", func() {
		Expect(tracker.Name()).To(Equal("Jira"))
	})

	It("searches with basic auth and the assignee JQL", func() {
		_, err := tracker.AssignedIssues(ctx, ada, model.TimeRangeThisWeek)
		Expect(err).NotTo(HaveOccurred())

		Expect(lastReq.URL.Path).To(Equal("/rest/api/3/search"))
		Expect(lastReq.URL.Query().Get("jql")).To(Equal(
			`assignee = "ada@example.com" AND statusCategory != Done AND updated >= -7d ORDER BY updated DESC`))
		Expect(lastReq.URL.Query().Get("maxResults")).To(Equal("20"))

		user, pass, ok := lastReq.BasicAuth()
		Expect(ok).To(BeTrue())
		Expect(user).To(Equal("bot@example.com"))
		Expect(pass).To(Equal("secret"))
	})

	It("maps issues and fills defaults for missing fields", func() {
		body = `{"issues": [
			{"key": "PROJ-1", "fields": {
				"summary": "Fix login", "updated": "2025-03-14T09:30:00.000+0000",
				"status": {"name": "In Progress"},
				"assignee": {"displayName": "Ada Lovelace"},
				"priority": {"name": "High"}}},
			{"key": "PROJ-2", "fields": {
				"summary": "Write docs", "updated": "garbage",
				"status": {"name": "To Do"}, "assignee": null, "priority": null}}
		]}`

		issues, err := tracker.AssignedIssues(ctx, ada, model.TimeRangeRecent)
		Expect(err).NotTo(HaveOccurred())
		Expect(issues).To(HaveLen(2))

		Expect(issues[0].Key).To(Equal("PROJ-1"))
		Expect(issues[0].Status).To(Equal("In Progress"))
		Expect(issues[0].Assignee).To(Equal("Ada Lovelace"))
		Expect(issues[0].Priority).To(Equal("High"))
		Expect(issues[0].URL).To(Equal(server.URL + "/browse/PROJ-1"))
		Expect(issues[0].UpdatedAt).NotTo(BeNil())
		Expect(issues[0].UpdatedAt.Day()).To(Equal(14))

		Expect(issues[1].Assignee).To(Equal("Unassigned"))
		Expect(issues[1].Priority).To(Equal("None"))
		Expect(issues[1].UpdatedAt).To(BeNil())
	})

	DescribeTable("reports failed requests with a readable message",
		func(code int, respBody, expected string) {
			status = code
			body = respBody

			issues, err := tracker.AssignedIssues(ctx, ada, model.TimeRangeRecent)
			Expect(issues).To(BeNil())
			Expect(err).To(MatchError(expected))
		},
		Entry("unauthorized", http.StatusUnauthorized, "", "JIRA authentication failed - check email/API token"),
		Entry("forbidden", http.StatusForbidden, "", "JIRA permission denied - insufficient access rights"),
		Entry("bad query", http.StatusBadRequest, "bad jql\n", "JIRA query error: bad jql"),
		Entry("not found", http.StatusNotFound, "", "JIRA request failed with status 404"),
	)

	DescribeTable("returns sentinel errors for credential problems",
		func(code int, expected error) {
			status = code

			_, err := tracker.AssignedIssues(ctx, ada, model.TimeRangeRecent)
			Expect(errors.Is(err, expected)).To(BeTrue())
		},
		Entry("unauthorized", http.StatusUnauthorized, ErrJiraAuthentication),
		Entry("forbidden", http.StatusForbidden, ErrJiraPermission),
	)

	It("wraps transport failures", func() {
		server.Close()

		_, err := tracker.AssignedIssues(ctx, ada, model.TimeRangeRecent)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(HavePrefix("failed to fetch issues from JIRA:"))
	})

	It("tests the connection against the current user", func() {
		Expect(tracker.TestConnection(ctx)).To(BeTrue())
		Expect(lastReq.URL.Path).To(Equal("/rest/api/3/myself"))

		status = http.StatusUnauthorized
		Expect(tracker.TestConnection(ctx)).To(BeFalse())
	})
})

var _ = Describe("BuildJQL", func() {
	DescribeTable("bounds the update window by time range",
		func(tr model.TimeRange, expected string) {
			Expect(BuildJQL("ada", tr)).To(Equal(expected))
		},
		Entry("this week", model.TimeRangeThisWeek,
			`assignee = "ada" AND statusCategory != Done AND updated >= -7d ORDER BY updated DESC`),
		Entry("recent", model.TimeRangeRecent,
			`assignee = "ada" AND statusCategory != Done AND updated >= -14d ORDER BY updated DESC`),
		Entry("all time", model.TimeRangeAllTime,
			`assignee = "ada" AND statusCategory != Done ORDER BY updated DESC`),
	)

	It("escapes quotes in the assignee", func() {
		Expect(BuildJQL(`a"b`, model.TimeRangeAllTime)).To(ContainSubstring(`assignee = "a\"b"`))
	})
})
