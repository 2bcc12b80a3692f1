package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ahvar/team-activity-monitor/internal/http/handler"
	"github.com/ahvar/team-activity-monitor/internal/model"
	"github.com/ahvar/team-activity-monitor/internal/service"
)

var _ = Describe("ActivityHandler", func() {
	var (
		router *gin.Engine
		svc    *mockActivityService
	)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	decode := func(w *httptest.ResponseRecorder) map[string]any {
		var resp map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		return resp
	}

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		svc = &mockActivityService{}
		h := handler.NewActivityHandler(svc)
		router.POST("/questions", h.Ask)
		router.GET("/members", h.Members)
		router.GET("/members/:name/activity", h.Report)
		router.GET("/integrations/status", h.IntegrationStatus)
	})

	Describe("Ask", func() {
		It("returns the answer with the interpreted query and sections", func() {
			svc.askFn = func(_ context.Context, question string) service.Answer {
				Expect(question).To(Equal("What is Ada working on?"))
				result := model.AggregateResult{
					IssueSource: "Jira",
					CodeSource:  "GitHub",
					Issues:      model.Succeeded([]model.Issue{{Key: "X-1", Summary: "Fix bug", Status: "In Progress"}}),
					Commits:     model.Failed[model.Commit]("rate limited"),
				}
				return service.Answer{
					RequestID:  12345,
					Text:       "Here's what Ada has been working on:",
					Understood: true,
					Query: model.StructuredQuery{
						Member:    model.Member{Name: "Ada"},
						Intent:    model.IntentActivitySummary,
						TimeRange: model.TimeRangeRecent,
					},
					Result: &result,
				}
			}

			w := do(http.MethodPost, "/questions", `{"question": "What is Ada working on?"}`)

			Expect(w.Code).To(Equal(http.StatusOK))
			resp := decode(w)
			Expect(resp["request_id"]).To(Equal("12345"))
			Expect(resp["answer"]).To(Equal("Here's what Ada has been working on:"))
			Expect(resp["understood"]).To(BeTrue())
			Expect(resp["member"]).To(Equal("Ada"))
			Expect(resp["intent"]).To(Equal("activity_summary"))
			Expect(resp["time_range"]).To(Equal("recent"))

			sections := resp["sections"].(map[string]any)
			Expect(sections["issue_source"]).To(Equal("Jira"))
			Expect(sections["issues"].(map[string]any)["items"]).To(HaveLen(1))
			Expect(sections["commits"].(map[string]any)["error"]).To(Equal("rate limited"))
			Expect(sections["commits"].(map[string]any)["items"]).To(BeEmpty())
			Expect(sections).NotTo(HaveKey("pull_requests"))
		})

		It("reports unrecognized questions as not understood", func() {
			svc.askFn = func(context.Context, string) service.Answer {
				return service.Answer{RequestID: 1, Text: "I couldn't identify a known team member in your question."}
			}

			w := do(http.MethodPost, "/questions", `{"question": "How is everyone?"}`)

			Expect(w.Code).To(Equal(http.StatusOK))
			resp := decode(w)
			Expect(resp["understood"]).To(BeFalse())
			Expect(resp).NotTo(HaveKey("member"))
			Expect(resp).NotTo(HaveKey("sections"))
		})

		DescribeTable("returns 400 on invalid request body",
			func(body string) {
				w := do(http.MethodPost, "/questions", body)
				Expect(w.Code).To(Equal(http.StatusBadRequest))
				Expect(decode(w)).To(HaveKey("error"))
			},
			Entry("malformed JSON", `{`),
			Entry("missing question", `{}`),
			Entry("empty question", `{"question": ""}`),
		)
	})

	Describe("Report", func() {
		It("defaults to a recent activity summary", func() {
			var gotIntent model.Intent
			var gotRange model.TimeRange
			svc.reportFn = func(_ context.Context, name string, intent model.Intent, tr model.TimeRange) (service.Answer, error) {
				gotIntent, gotRange = intent, tr
				return service.Answer{Text: name + " report", Understood: true}, nil
			}

			w := do(http.MethodGet, "/members/Ada/activity", "")

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(decode(w)["answer"]).To(Equal("Ada report"))
			Expect(gotIntent).To(Equal(model.IntentActivitySummary))
			Expect(gotRange).To(Equal(model.TimeRangeRecent))
		})

		It("passes intent and time range through", func() {
			svc.reportFn = func(_ context.Context, _ string, intent model.Intent, tr model.TimeRange) (service.Answer, error) {
				Expect(intent).To(Equal(model.IntentCommitsOnly))
				Expect(tr).To(Equal(model.TimeRangeAllTime))
				return service.Answer{}, nil
			}

			w := do(http.MethodGet, "/members/Ada/activity?intent=commits_only&time_range=all_time", "")
			Expect(w.Code).To(Equal(http.StatusOK))
		})

		It("returns 400 for an unknown intent", func() {
			w := do(http.MethodGet, "/members/Ada/activity?intent=gossip", "")
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 404 for an unknown member", func() {
			svc.reportFn = func(_ context.Context, name string, _ model.Intent, _ model.TimeRange) (service.Answer, error) {
				return service.Answer{}, fmt.Errorf("%w: %s", service.ErrUnknownMember, name)
			}

			w := do(http.MethodGet, "/members/Mallory/activity", "")
			Expect(w.Code).To(Equal(http.StatusNotFound))
			Expect(decode(w)["error"]).To(Equal("unknown team member: Mallory"))
		})
	})

	It("lists members with their identities", func() {
		svc.members = []model.Member{{Name: "Ada", CodeHostID: "adal"}, {Name: "Bob"}}

		w := do(http.MethodGet, "/members", "")

		Expect(w.Code).To(Equal(http.StatusOK))
		members := decode(w)["members"].([]any)
		Expect(members).To(HaveLen(2))
		Expect(members[0]).To(HaveKeyWithValue("code_host_id", "adal"))
		Expect(members[1]).To(HaveKeyWithValue("issue_tracker_id", "Bob"))
	})

	It("reports integration status under a deadline", func() {
		svc.status = service.IntegrationStatus{
			IssueTracker: service.ConnectionStatus{Name: "Jira", Configured: true, Connected: true},
			CodeHost:     service.ConnectionStatus{Name: "code host"},
		}

		w := do(http.MethodGet, "/integrations/status", "")

		Expect(w.Code).To(Equal(http.StatusOK))
		resp := decode(w)
		Expect(resp["issue_tracker"]).To(Equal(map[string]any{"name": "Jira", "configured": true, "connected": true}))
		Expect(resp["code_host"]).To(Equal(map[string]any{"name": "code host", "configured": false, "connected": false}))

		_, hasDeadline := svc.statusCtx.Deadline()
		Expect(hasDeadline).To(BeTrue())
	})
})
