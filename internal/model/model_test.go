package model_test

import (
	"time"

	"github.com/ahvar/team-activity-monitor/internal/model"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Roster", func() {
	It("keeps configured order and trims names", func() {
		roster, err := model.NewRoster([]model.Member{{Name: " Ada "}, {Name: "Bob"}})
		Expect(err).NotTo(HaveOccurred())
		Expect(roster.Names()).To(Equal([]string{"Ada", "Bob"}))
		Expect(roster.Len()).To(Equal(2))
	})

	It("rejects an empty roster", func() {
		_, err := model.NewRoster(nil)
		Expect(err).To(MatchError(model.ErrEmptyRoster))
	})

	It("rejects blank names", func() {
		_, err := model.NewRoster([]model.Member{{Name: "  "}})
		Expect(err).To(MatchError(model.ErrEmptyMemberName))
	})

	It("rejects names that differ only by case", func() {
		_, err := model.NewRoster([]model.Member{{Name: "Ada"}, {Name: "ada"}})
		Expect(err).To(MatchError(model.ErrDuplicateMember))
	})

	It("hands out copies of its members", func() {
		roster, err := model.NewRoster([]model.Member{{Name: "Ada"}})
		Expect(err).NotTo(HaveOccurred())

		members := roster.Members()
		members[0].Name = "Mallory"
		Expect(roster.Names()).To(Equal([]string{"Ada"}))
	})

	It("looks members up case-insensitively", func() {
		roster, err := model.NewRoster([]model.Member{{Name: "Ada", CodeHostID: "adal"}})
		Expect(err).NotTo(HaveOccurred())

		m, ok := roster.Lookup("ADA")
		Expect(ok).To(BeTrue())
		Expect(m.CodeHostID).To(Equal("adal"))

		_, ok = roster.Lookup("Bob")
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("Member identities", func() {
	It("falls back to the member name", func() {
		m := model.Member{Name: "Ada"}
		Expect(m.IssueTrackerIdentity()).To(Equal("Ada"))
		Expect(m.CodeHostIdentity()).To(Equal("Ada"))
	})

	It("uses the per-system identity when configured", func() {
		m := model.Member{Name: "Ada", IssueTrackerID: "ada@example.com", CodeHostID: "adal"}
		Expect(m.IssueTrackerIdentity()).To(Equal("ada@example.com"))
		Expect(m.CodeHostIdentity()).To(Equal("adal"))
	})
})

var _ = Describe("TimeRange.Since", func() {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

	It("looks back seven days for this week", func() {
		Expect(*model.TimeRangeThisWeek.Since(now)).To(Equal(now.AddDate(0, 0, -7)))
	})

	It("looks back fourteen days for recent", func() {
		Expect(*model.TimeRangeRecent.Since(now)).To(Equal(now.AddDate(0, 0, -14)))
	})

	It("has no bound for all time", func() {
		Expect(model.TimeRangeAllTime.Since(now)).To(BeNil())
	})
})

var _ = Describe("SectionsFor", func() {
	DescribeTable("selects the minimal sections per intent",
		func(intent model.Intent, expected []model.SectionKind) {
			Expect(model.SectionsFor(intent)).To(Equal(expected))
		},
		Entry("summary", model.IntentActivitySummary,
			[]model.SectionKind{model.SectionIssues, model.SectionCommits, model.SectionPullRequests}),
		Entry("issues", model.IntentIssuesOnly, []model.SectionKind{model.SectionIssues}),
		Entry("commits", model.IntentCommitsOnly, []model.SectionKind{model.SectionCommits}),
		Entry("pull requests", model.IntentPullRequestsOnly, []model.SectionKind{model.SectionPullRequests}),
		Entry("unknown", model.Intent("bogus"), nil),
	)
})

var _ = Describe("AggregateResult", func() {
	It("counts requested and failed sections", func() {
		r := model.AggregateResult{
			Issues:  model.Failed[model.Issue]("auth failed"),
			Commits: model.Succeeded([]model.Commit{{SHA: "abc"}}),
		}
		Expect(r.RequestedSections()).To(Equal(2))
		Expect(r.FailedSections()).To(Equal(1))
		Expect(r.Issues.Items).To(BeEmpty())
		Expect(r.PullRequests.Failed()).To(BeFalse())
		Expect(r.PullRequests.Empty()).To(BeTrue())
	})

	It("never stores a nil item list for a successful section", func() {
		Expect(model.Succeeded[model.Commit](nil).Items).NotTo(BeNil())
	})
})
