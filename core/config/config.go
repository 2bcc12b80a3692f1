package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ahvar/team-activity-monitor/internal/model"
)

type Config struct {
	OTel         OTelConfig
	Team         TeamConfig
	Jira         JiraConfig
	GitHub       GitHubConfig
	GitLab       GitLabConfig
	Cache        CacheConfig
	Aggregator   AggregatorConfig
	Interpreter  InterpreterConfig
	Env          string
	Port         string
	IssueTracker string // "jira" or "gitlab"
	CodeHost     string // "github" or "gitlab"
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

type TeamConfig struct {
	Members        []string
	IdentitiesFile string
	Roster         model.Roster
}

type JiraConfig struct {
	BaseURL  string
	Email    string
	APIToken string
}

type GitHubConfig struct {
	BaseURL string
	Token   string
}

type GitLabConfig struct {
	BaseURL  string
	Token    string
	Projects []string
}

type CacheConfig struct {
	RedisURL string
	TTL      time.Duration
}

type AggregatorConfig struct {
	CallTimeout time.Duration
}

type InterpreterConfig struct {
	ContextExclusion bool
}

type ServiceType string

const (
	ServiceTypeServer ServiceType = "server"
	ServiceTypeCLI    ServiceType = "cli"
)

const (
	IssueTrackerJira   = "jira"
	IssueTrackerGitLab = "gitlab"
	CodeHostGitHub     = "github"
	CodeHostGitLab     = "gitlab"
)

// Load loads configuration from environment variables.
// In development, it loads from service-specific .env files:
//   - .env.server for the API server
//   - .env.cli for the command line client
//
// Falls back to .env if service-specific file doesn't exist.
func Load(serviceType ServiceType) (Config, error) {
	if getEnv("MONITOR_ENV", "development") == "development" {
		envFile := fmt.Sprintf(".env.%s", serviceType)
		if err := godotenv.Load(envFile); err != nil {
			_ = godotenv.Load(".env")
		}
	}

	cfg := Config{
		Env:          getEnv("MONITOR_ENV", "development"),
		Port:         getEnv("PORT", "8080"),
		IssueTracker: strings.ToLower(getEnv("ISSUE_TRACKER", IssueTrackerJira)),
		CodeHost:     strings.ToLower(getEnv("CODE_HOST", CodeHostGitHub)),
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "team-activity-monitor"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
		},
		Team: TeamConfig{
			Members:        getEnvList("TEAM_MEMBERS"),
			IdentitiesFile: getEnv("TEAM_IDENTITIES_FILE", ""),
		},
		Jira: JiraConfig{
			BaseURL:  getEnv("JIRA_BASE_URL", ""),
			Email:    getEnv("JIRA_EMAIL", ""),
			APIToken: getEnv("JIRA_API_KEY", ""),
		},
		GitHub: GitHubConfig{
			BaseURL: getEnv("GITHUB_BASE_URL", "https://api.github.com"),
			Token:   getEnv("GITHUB_API_KEY", ""),
		},
		GitLab: GitLabConfig{
			BaseURL:  getEnv("GITLAB_URL", ""),
			Token:    getEnv("GITLAB_TOKEN", ""),
			Projects: getEnvList("GITLAB_PROJECT_IDS"),
		},
		Cache: CacheConfig{
			RedisURL: getEnv("REDIS_URL", ""),
			TTL:      getEnvDuration("CACHE_TTL", 5*time.Minute),
		},
		Aggregator: AggregatorConfig{
			CallTimeout: getEnvDuration("AGGREGATOR_CALL_TIMEOUT", 20*time.Second),
		},
		Interpreter: InterpreterConfig{
			ContextExclusion: getEnvBool("ENTITY_CONTEXT_EXCLUSION", false),
		},
	}

	roster, err := cfg.Team.buildRoster()
	if err != nil {
		return Config{}, err
	}
	cfg.Team.Roster = roster

	switch cfg.IssueTracker {
	case IssueTrackerJira, IssueTrackerGitLab:
	default:
		return Config{}, fmt.Errorf("ISSUE_TRACKER must be %q or %q, got %q", IssueTrackerJira, IssueTrackerGitLab, cfg.IssueTracker)
	}

	switch cfg.CodeHost {
	case CodeHostGitHub, CodeHostGitLab:
	default:
		return Config{}, fmt.Errorf("CODE_HOST must be %q or %q, got %q", CodeHostGitHub, CodeHostGitLab, cfg.CodeHost)
	}

	if cfg.Aggregator.CallTimeout <= 0 {
		return Config{}, errors.New("AGGREGATOR_CALL_TIMEOUT must be positive")
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func (c JiraConfig) Enabled() bool {
	return c.BaseURL != "" && c.Email != "" && c.APIToken != ""
}

func (c GitHubConfig) Enabled() bool {
	return c.Token != ""
}

func (c GitLabConfig) Enabled() bool {
	return c.Token != ""
}

func (c CacheConfig) Enabled() bool {
	return c.RedisURL != "" && c.TTL > 0
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
