package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ahvar/team-activity-monitor/common/id"
	"github.com/ahvar/team-activity-monitor/common/logger"
	"github.com/ahvar/team-activity-monitor/internal/aggregator"
	"github.com/ahvar/team-activity-monitor/internal/formatter"
	"github.com/ahvar/team-activity-monitor/internal/interpreter"
	"github.com/ahvar/team-activity-monitor/internal/model"
	"github.com/ahvar/team-activity-monitor/internal/service/code_host"
	"github.com/ahvar/team-activity-monitor/internal/service/issue_tracker"
)

var (
	ErrUnknownMember    = errors.New("unknown team member")
	ErrUnknownIntent    = errors.New("unknown intent")
	ErrUnknownTimeRange = errors.New("unknown time range")
)

// Answer is the outcome of one question. Query and Result are only set when
// the question named a team member.
type Answer struct {
	RequestID  int64
	Text       string
	Understood bool
	Query      model.StructuredQuery
	Result     *model.AggregateResult
}

type ConnectionStatus struct {
	Name       string
	Configured bool
	Connected  bool
}

type IntegrationStatus struct {
	IssueTracker ConnectionStatus
	CodeHost     ConnectionStatus
}

type ActivityService interface {
	// Handle answers a free-text question with plain text.
	Handle(ctx context.Context, question string) string
	// Ask is Handle plus the interpreted query and gathered data.
	Ask(ctx context.Context, question string) Answer
	// Report skips interpretation and gathers activity for a named member.
	Report(ctx context.Context, memberName string, intent model.Intent, timeRange model.TimeRange) (Answer, error)
	Members() []model.Member
	TestConnections(ctx context.Context) IntegrationStatus
}

type activityService struct {
	roster      model.Roster
	interpreter *interpreter.Interpreter
	aggregator  *aggregator.Aggregator
	issues      issue_tracker.IssueTracker
	code        code_host.CodeHost
}

func NewActivityService(
	roster model.Roster,
	interp *interpreter.Interpreter,
	agg *aggregator.Aggregator,
	issues issue_tracker.IssueTracker,
	code code_host.CodeHost,
) ActivityService {
	return &activityService{
		roster:      roster,
		interpreter: interp,
		aggregator:  agg,
		issues:      issues,
		code:        code,
	}
}

func (s *activityService) Handle(ctx context.Context, question string) string {
	return s.Ask(ctx, question).Text
}

func (s *activityService) Ask(ctx context.Context, question string) Answer {
	requestID := requestIDFrom(ctx)
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		RequestID: logger.Ptr(requestID),
		Component: "monitor.service",
	})

	slog.InfoContext(ctx, "question received", "question", logger.Truncate(question, 120))

	query, ok := s.interpreter.Interpret(question)
	if !ok {
		slog.InfoContext(ctx, "no team member recognized in question")
		return Answer{
			RequestID: requestID,
			Text:      formatter.EntityNotFound(s.roster.Names()),
		}
	}

	return s.answer(ctx, requestID, query)
}

func (s *activityService) Report(ctx context.Context, memberName string, intent model.Intent, timeRange model.TimeRange) (Answer, error) {
	member, ok := s.roster.Lookup(memberName)
	if !ok {
		return Answer{}, fmt.Errorf("%w: %s", ErrUnknownMember, memberName)
	}
	if model.SectionsFor(intent) == nil {
		return Answer{}, fmt.Errorf("%w: %s", ErrUnknownIntent, intent)
	}
	switch timeRange {
	case model.TimeRangeRecent, model.TimeRangeThisWeek, model.TimeRangeAllTime:
	default:
		return Answer{}, fmt.Errorf("%w: %s", ErrUnknownTimeRange, timeRange)
	}

	requestID := requestIDFrom(ctx)
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		RequestID: logger.Ptr(requestID),
		Component: "monitor.service",
	})

	return s.answer(ctx, requestID, model.StructuredQuery{
		Member:    member,
		Intent:    intent,
		TimeRange: timeRange,
	}), nil
}

func (s *activityService) answer(ctx context.Context, requestID int64, query model.StructuredQuery) Answer {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Member:    logger.Ptr(query.Member.Name),
		Intent:    logger.Ptr(string(query.Intent)),
		TimeRange: logger.Ptr(string(query.TimeRange)),
	})

	result := s.aggregator.Aggregate(ctx, query)
	text := formatter.Format(result)

	slog.InfoContext(ctx, "question answered",
		"failed_sections", result.FailedSections(),
		"orchestration_error", result.Error != "")

	return Answer{
		RequestID:  requestID,
		Text:       text,
		Understood: true,
		Query:      query,
		Result:     &result,
	}
}

// requestIDFrom reuses the ID an HTTP middleware already assigned.
func requestIDFrom(ctx context.Context) int64 {
	if fields := logger.GetLogFields(ctx); fields.RequestID != nil {
		return *fields.RequestID
	}
	return id.New()
}

func (s *activityService) Members() []model.Member {
	return s.roster.Members()
}

// TestConnections probes both collaborators at the same time.
func (s *activityService) TestConnections(ctx context.Context) IntegrationStatus {
	status := IntegrationStatus{
		IssueTracker: ConnectionStatus{Name: "issue tracker"},
		CodeHost:     ConnectionStatus{Name: "code host"},
	}

	var wg sync.WaitGroup
	if s.issues != nil {
		status.IssueTracker = ConnectionStatus{Name: s.issues.Name(), Configured: true}
		wg.Add(1)
		go func() {
			defer wg.Done()
			status.IssueTracker.Connected = s.issues.TestConnection(ctx)
		}()
	}
	if s.code != nil {
		status.CodeHost = ConnectionStatus{Name: s.code.Name(), Configured: true}
		wg.Add(1)
		go func() {
			defer wg.Done()
			status.CodeHost.Connected = s.code.TestConnection(ctx)
		}()
	}
	wg.Wait()

	slog.InfoContext(ctx, "integration status checked",
		"issue_tracker", status.IssueTracker.Name,
		"issue_tracker_connected", status.IssueTracker.Connected,
		"code_host", status.CodeHost.Name,
		"code_host_connected", status.CodeHost.Connected)

	return status
}
