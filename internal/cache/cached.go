package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/ahvar/team-activity-monitor/internal/model"
	"github.com/ahvar/team-activity-monitor/internal/service/code_host"
	"github.com/ahvar/team-activity-monitor/internal/service/issue_tracker"
)

const keyPrefix = "tam"

// Key builds the cache key for one collaborator listing.
func Key(source string, kind model.SectionKind, identity string, timeRange model.TimeRange) string {
	return strings.Join([]string{
		keyPrefix,
		strings.ToLower(source),
		string(kind),
		strings.ToLower(identity),
		string(timeRange),
	}, ":")
}

// readThrough serves key from store when present, otherwise calls fetch and
// stores a successful result. Store failures are logged and never fail the call.
func readThrough[T any](ctx context.Context, store Store, ttl time.Duration, key string, fetch func() ([]T, error)) ([]T, error) {
	data, ok, err := store.Get(ctx, key)
	if err != nil {
		slog.WarnContext(ctx, "cache read failed", "key", key, "error", err)
	}
	if ok {
		var items []T
		if err := json.Unmarshal(data, &items); err == nil {
			slog.DebugContext(ctx, "cache hit", "key", key)
			return items, nil
		}
		slog.WarnContext(ctx, "discarding unreadable cache entry", "key", key)
	}

	items, err := fetch()
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(items); err == nil {
		if err := store.Set(ctx, key, data, ttl); err != nil {
			slog.WarnContext(ctx, "cache write failed", "key", key, "error", err)
		}
	}
	return items, nil
}

type issueTracker struct {
	issue_tracker.IssueTracker
	store Store
	ttl   time.Duration
}

// WrapIssueTracker caches successful issue listings for ttl.
func WrapIssueTracker(inner issue_tracker.IssueTracker, store Store, ttl time.Duration) issue_tracker.IssueTracker {
	return &issueTracker{IssueTracker: inner, store: store, ttl: ttl}
}

func (t *issueTracker) AssignedIssues(ctx context.Context, assignee model.Member, timeRange model.TimeRange) ([]model.Issue, error) {
	key := Key(t.Name(), model.SectionIssues, assignee.IssueTrackerIdentity(), timeRange)
	return readThrough(ctx, t.store, t.ttl, key, func() ([]model.Issue, error) {
		return t.IssueTracker.AssignedIssues(ctx, assignee, timeRange)
	})
}

type codeHost struct {
	code_host.CodeHost
	store Store
	ttl   time.Duration
}

// WrapCodeHost caches successful commit and pull request listings for ttl.
func WrapCodeHost(inner code_host.CodeHost, store Store, ttl time.Duration) code_host.CodeHost {
	return &codeHost{CodeHost: inner, store: store, ttl: ttl}
}

func (h *codeHost) RecentCommits(ctx context.Context, author model.Member, timeRange model.TimeRange) ([]model.Commit, error) {
	key := Key(h.Name(), model.SectionCommits, author.CodeHostIdentity(), timeRange)
	return readThrough(ctx, h.store, h.ttl, key, func() ([]model.Commit, error) {
		return h.CodeHost.RecentCommits(ctx, author, timeRange)
	})
}

func (h *codeHost) RecentPullRequests(ctx context.Context, author model.Member, timeRange model.TimeRange) ([]model.PullRequest, error) {
	key := Key(h.Name(), model.SectionPullRequests, author.CodeHostIdentity(), timeRange)
	return readThrough(ctx, h.store, h.ttl, key, func() ([]model.PullRequest, error) {
		return h.CodeHost.RecentPullRequests(ctx, author, timeRange)
	})
}
