package code_host

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ahvar/team-activity-monitor/internal/model"
)

const (
	defaultGitHubBaseURL = "https://api.github.com"
	githubAPIVersion     = "2022-11-28"
	githubDateLayout     = "2006-01-02"
)

var (
	ErrGitHubAuthentication = errors.New("GitHub authentication failed - check API key")
	ErrGitHubRateLimit      = errors.New("GitHub API rate limit exceeded")
)

type GitHubConfig struct {
	BaseURL    string
	Token      string
	PerPage    int
	HTTPClient *http.Client
}

type gitHubCodeHost struct {
	baseURL string
	token   string
	perPage int
	http    *http.Client
	now     func() time.Time
}

func NewGitHubCodeHost(cfg GitHubConfig) CodeHost {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultGitHubBaseURL
	}
	perPage := cfg.PerPage
	if perPage <= 0 {
		perPage = 10
	}
	return &gitHubCodeHost{
		baseURL: baseURL,
		token:   cfg.Token,
		perPage: perPage,
		http:    client,
		now:     time.Now,
	}
}

func (h *gitHubCodeHost) Name() string {
	return "GitHub"
}

type githubCommitSearch struct {
	Items []struct {
		SHA     string `json:"sha"`
		HTMLURL string `json:"html_url"`
		Commit  struct {
			Message string `json:"message"`
			Author  struct {
				Date *time.Time `json:"date"`
			} `json:"author"`
		} `json:"commit"`
		Repository *struct {
			Name string `json:"name"`
		} `json:"repository"`
	} `json:"items"`
}

type githubIssueSearch struct {
	Items []struct {
		Number    int        `json:"number"`
		Title     string     `json:"title"`
		State     string     `json:"state"`
		HTMLURL   string     `json:"html_url"`
		CreatedAt *time.Time `json:"created_at"`
		UpdatedAt *time.Time `json:"updated_at"`
	} `json:"items"`
}

func (h *gitHubCodeHost) RecentCommits(ctx context.Context, author model.Member, timeRange model.TimeRange) ([]model.Commit, error) {
	query := "author:" + author.CodeHostIdentity()
	if since := timeRange.Since(h.now()); since != nil {
		query += " committer-date:>=" + since.Format(githubDateLayout)
	}

	var data githubCommitSearch
	if err := h.search(ctx, "commits", "/search/commits", query, "committer-date", &data); err != nil {
		return nil, err
	}

	commits := make([]model.Commit, 0, len(data.Items))
	for _, item := range data.Items {
		repo := "unknown"
		if item.Repository != nil {
			repo = item.Repository.Name
		}
		commits = append(commits, model.Commit{
			SHA:        item.SHA,
			Message:    item.Commit.Message,
			Repository: repo,
			URL:        item.HTMLURL,
			Date:       item.Commit.Author.Date,
		})
	}

	slog.DebugContext(ctx, "fetched github commits", "count", len(commits))
	return commits, nil
}

func (h *gitHubCodeHost) RecentPullRequests(ctx context.Context, author model.Member, timeRange model.TimeRange) ([]model.PullRequest, error) {
	query := "author:" + author.CodeHostIdentity() + " is:pr"
	if since := timeRange.Since(h.now()); since != nil {
		query += " updated:>=" + since.Format(githubDateLayout)
	}

	var data githubIssueSearch
	if err := h.search(ctx, "pull requests", "/search/issues", query, "updated", &data); err != nil {
		return nil, err
	}

	prs := make([]model.PullRequest, 0, len(data.Items))
	for _, item := range data.Items {
		prs = append(prs, model.PullRequest{
			Number:    item.Number,
			Title:     item.Title,
			State:     model.PullRequestState(item.State),
			URL:       item.HTMLURL,
			CreatedAt: item.CreatedAt,
			UpdatedAt: item.UpdatedAt,
		})
	}

	slog.DebugContext(ctx, "fetched github pull requests", "count", len(prs))
	return prs, nil
}

func (h *gitHubCodeHost) TestConnection(ctx context.Context) bool {
	req, err := h.newRequest(ctx, "/user")
	if err != nil {
		return false
	}
	resp, err := h.http.Do(req)
	if err != nil {
		slog.ErrorContext(ctx, "github connection test failed", "error", err)
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// search runs a search API query. Status failures come back as the fixed
// messages users see; transport failures are wrapped with what was being fetched.
func (h *gitHubCodeHost) search(ctx context.Context, what, path, query, sort string, out any) error {
	params := url.Values{}
	params.Set("q", query)
	params.Set("sort", sort)
	params.Set("order", "desc")
	params.Set("per_page", strconv.Itoa(h.perPage))

	req, err := h.newRequest(ctx, path+"?"+params.Encode())
	if err != nil {
		return err
	}

	resp, err := h.http.Do(req)
	if err != nil {
		slog.ErrorContext(ctx, "github request failed", "path", path, "error", err)
		return fmt.Errorf("failed to fetch %s from GitHub: %w", what, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrGitHubAuthentication
	case resp.StatusCode == http.StatusForbidden:
		return ErrGitHubRateLimit
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("GitHub request failed with status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to fetch %s from GitHub: decoding response: %w", what, err)
	}
	return nil
}

func (h *gitHubCodeHost) newRequest(ctx context.Context, path string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("building GitHub request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+h.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", githubAPIVersion)
	return req, nil
}
