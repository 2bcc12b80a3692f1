package aggregator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ahvar/team-activity-monitor/common/logger"
	"github.com/ahvar/team-activity-monitor/internal/model"
	"github.com/ahvar/team-activity-monitor/internal/service/code_host"
	"github.com/ahvar/team-activity-monitor/internal/service/issue_tracker"
	"go.opentelemetry.io/otel/attribute"
)

const DefaultCallTimeout = 20 * time.Second

var errCallTimeout = errors.New("aggregator call timeout")

// Aggregator gathers the activity a query asks for from the issue tracker and
// the code host. Every selected call runs concurrently and fails on its own.
type Aggregator struct {
	issues      issue_tracker.IssueTracker
	code        code_host.CodeHost
	callTimeout time.Duration
}

type Option func(*Aggregator)

// WithCallTimeout bounds each collaborator call. Non-positive values keep the default.
func WithCallTimeout(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.callTimeout = d
		}
	}
}

func New(issues issue_tracker.IssueTracker, code code_host.CodeHost, opts ...Option) *Aggregator {
	a := &Aggregator{
		issues:      issues,
		code:        code,
		callTimeout: DefaultCallTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// outcome is what one call produced. Only the slice matching the call's
// section is used; err is the collaborator's message when the call failed.
type outcome struct {
	issues  []model.Issue
	commits []model.Commit
	prs     []model.PullRequest
	err     string
}

// Aggregate runs the calls q.Intent needs and waits for all of them. It never
// returns an error: call failures land in their section and fan-out failures
// in the result's Error field.
func (a *Aggregator) Aggregate(ctx context.Context, q model.StructuredQuery) (result model.AggregateResult) {
	kinds := model.SectionsFor(q.Intent)
	result = model.AggregateResult{
		Member:      q.Member,
		TimeRange:   q.TimeRange,
		Intent:      q.Intent,
		IssueSource: "issue tracker",
		CodeSource:  "code host",
	}
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "monitor.aggregator"})

	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "aggregation panicked", "panic", r)
			result = orchestrationFailure(result, kinds, fmt.Errorf("unexpected panic: %v", r))
		}
	}()

	if a.issues != nil {
		result.IssueSource = a.issues.Name()
	}
	if a.code != nil {
		result.CodeSource = a.code.Name()
	}

	if err := a.checkCollaborators(kinds); err != nil {
		slog.ErrorContext(ctx, "aggregation cannot start", "error", err)
		return orchestrationFailure(result, kinds, err)
	}
	if len(kinds) == 0 {
		return orchestrationFailure(result, kinds, fmt.Errorf("unknown intent %q", q.Intent))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	start := time.Now()
	outcomes := make([]outcome, len(kinds))
	var wg sync.WaitGroup

	for i, kind := range kinds {
		wg.Add(1)
		go func(idx int, kind model.SectionKind) {
			defer wg.Done()
			outcomes[idx] = a.fetch(ctx, kind, q)
		}(i, kind)
	}

	wg.Wait()

	for i, kind := range kinds {
		o := outcomes[i]
		switch kind {
		case model.SectionIssues:
			result.Issues = section(o.issues, o.err)
		case model.SectionCommits:
			result.Commits = section(o.commits, o.err)
		case model.SectionPullRequests:
			result.PullRequests = section(o.prs, o.err)
		}
	}

	slog.InfoContext(ctx, "aggregation completed",
		"sections", len(kinds),
		"failed", result.FailedSections(),
		"duration_ms", time.Since(start).Milliseconds())

	return result
}

func (a *Aggregator) checkCollaborators(kinds []model.SectionKind) error {
	for _, kind := range kinds {
		switch kind {
		case model.SectionIssues:
			if a.issues == nil {
				return errors.New("issue tracker is not configured")
			}
		case model.SectionCommits, model.SectionPullRequests:
			if a.code == nil {
				return errors.New("code host is not configured")
			}
		}
	}
	return nil
}

// fetch performs one collaborator call under its own deadline. Panics are
// confined to the call's section.
func (a *Aggregator) fetch(ctx context.Context, kind model.SectionKind, q model.StructuredQuery) (out outcome) {
	ctx, cancel := context.WithTimeoutCause(ctx, a.callTimeout, errCallTimeout)
	defer cancel()

	ctx = logger.WithLogFields(ctx, logger.LogFields{Section: logger.Ptr(string(kind))})
	sc := logger.StartSpan(ctx, "aggregator.fetch."+string(kind))
	defer sc.End()
	ctx = sc.Context()
	sc.SetAttributes(
		attribute.String("member", q.Member.Name),
		attribute.String("time_range", string(q.TimeRange)),
	)

	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "collaborator call panicked", "panic", r)
			out = outcome{err: fmt.Sprintf("unexpected error fetching %s: %v", kind, r)}
		}
	}()

	var err error
	switch kind {
	case model.SectionIssues:
		out.issues, err = a.issues.AssignedIssues(ctx, q.Member, q.TimeRange)
	case model.SectionCommits:
		out.commits, err = a.code.RecentCommits(ctx, q.Member, q.TimeRange)
	case model.SectionPullRequests:
		out.prs, err = a.code.RecentPullRequests(ctx, q.Member, q.TimeRange)
	}

	if err != nil {
		sc.RecordError(err)
		out = outcome{err: a.describe(ctx, err)}
		slog.WarnContext(ctx, "collaborator call failed",
			"error", err,
			"duration_ms", time.Since(start).Milliseconds())
		return out
	}

	slog.DebugContext(ctx, "collaborator call completed",
		"duration_ms", time.Since(start).Milliseconds())
	return out
}

// describe reports the call's own deadline as a timeout. A caller's deadline
// or cancellation keeps the collaborator's message.
func (a *Aggregator) describe(ctx context.Context, err error) string {
	if errors.Is(context.Cause(ctx), errCallTimeout) {
		return fmt.Sprintf("request timed out after %s", a.callTimeout)
	}
	return err.Error()
}

func section[T any](items []T, err string) *model.Section[T] {
	if err != "" {
		return model.Failed[T](err)
	}
	return model.Succeeded(items)
}

func orchestrationFailure(result model.AggregateResult, kinds []model.SectionKind, err error) model.AggregateResult {
	result.Issues, result.Commits, result.PullRequests = nil, nil, nil
	for _, kind := range kinds {
		switch kind {
		case model.SectionIssues:
			result.Issues = model.Succeeded[model.Issue](nil)
		case model.SectionCommits:
			result.Commits = model.Succeeded[model.Commit](nil)
		case model.SectionPullRequests:
			result.PullRequests = model.Succeeded[model.PullRequest](nil)
		}
	}
	result.Error = "failed to fetch data: " + err.Error()
	return result
}
