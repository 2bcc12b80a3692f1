package config_test

import (
	"os"
	"path/filepath"
	"time"

	"github.com/ahvar/team-activity-monitor/core/config"
	"github.com/ahvar/team-activity-monitor/internal/model"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var managedVars = []string{
	"MONITOR_ENV", "PORT", "TEAM_MEMBERS", "TEAM_IDENTITIES_FILE",
	"ISSUE_TRACKER", "CODE_HOST", "JIRA_BASE_URL", "JIRA_EMAIL", "JIRA_API_KEY",
	"GITHUB_BASE_URL", "GITHUB_API_KEY", "GITLAB_URL", "GITLAB_TOKEN", "GITLAB_PROJECT_IDS",
	"REDIS_URL", "CACHE_TTL", "AGGREGATOR_CALL_TIMEOUT", "ENTITY_CONTEXT_EXCLUSION",
	"OTEL_EXPORTER_OTLP_ENDPOINT",
}

func setEnv(key, value string) {
	Expect(os.Setenv(key, value)).To(Succeed())
}

var _ = Describe("Load", func() {
	BeforeEach(func() {
		saved := map[string]*string{}
		for _, key := range managedVars {
			if v, ok := os.LookupEnv(key); ok {
				saved[key] = &v
			} else {
				saved[key] = nil
			}
			Expect(os.Unsetenv(key)).To(Succeed())
		}
		DeferCleanup(func() {
			for key, v := range saved {
				if v == nil {
					_ = os.Unsetenv(key)
				} else {
					_ = os.Setenv(key, *v)
				}
			}
		})

		setEnv("MONITOR_ENV", "test")
	})

	It("requires team members", func() {
		_, err := config.Load(config.ServiceTypeServer)
		Expect(err).To(MatchError("TEAM_MEMBERS environment variable is required"))
	})

	It("applies defaults", func() {
		setEnv("TEAM_MEMBERS", "Ada, Bob ,,Carol")

		cfg, err := config.Load(config.ServiceTypeServer)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Team.Roster.Names()).To(Equal([]string{"Ada", "Bob", "Carol"}))
		Expect(cfg.Port).To(Equal("8080"))
		Expect(cfg.IssueTracker).To(Equal(config.IssueTrackerJira))
		Expect(cfg.CodeHost).To(Equal(config.CodeHostGitHub))
		Expect(cfg.GitHub.BaseURL).To(Equal("https://api.github.com"))
		Expect(cfg.Aggregator.CallTimeout).To(Equal(20 * time.Second))
		Expect(cfg.Interpreter.ContextExclusion).To(BeFalse())
		Expect(cfg.Cache.Enabled()).To(BeFalse())
		Expect(cfg.OTel.Enabled()).To(BeFalse())
	})

	It("reads provider settings", func() {
		setEnv("TEAM_MEMBERS", "Ada")
		setEnv("ISSUE_TRACKER", "GitLab")
		setEnv("CODE_HOST", "gitlab")
		setEnv("GITLAB_TOKEN", "pat")
		setEnv("GITLAB_PROJECT_IDS", "12, group/app")
		setEnv("REDIS_URL", "redis://localhost:6379/1")
		setEnv("CACHE_TTL", "90s")
		setEnv("AGGREGATOR_CALL_TIMEOUT", "5s")
		setEnv("ENTITY_CONTEXT_EXCLUSION", "true")

		cfg, err := config.Load(config.ServiceTypeCLI)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.IssueTracker).To(Equal(config.IssueTrackerGitLab))
		Expect(cfg.CodeHost).To(Equal(config.CodeHostGitLab))
		Expect(cfg.GitLab.Enabled()).To(BeTrue())
		Expect(cfg.GitLab.Projects).To(Equal([]string{"12", "group/app"}))
		Expect(cfg.Cache.Enabled()).To(BeTrue())
		Expect(cfg.Cache.TTL).To(Equal(90 * time.Second))
		Expect(cfg.Aggregator.CallTimeout).To(Equal(5 * time.Second))
		Expect(cfg.Interpreter.ContextExclusion).To(BeTrue())
	})

	It("rejects unknown providers", func() {
		setEnv("TEAM_MEMBERS", "Ada")
		setEnv("CODE_HOST", "bitbucket")

		_, err := config.Load(config.ServiceTypeServer)
		Expect(err).To(MatchError(ContainSubstring("CODE_HOST must be")))
	})

	It("rejects duplicate members", func() {
		setEnv("TEAM_MEMBERS", "Ada,ada")

		_, err := config.Load(config.ServiceTypeServer)
		Expect(err).To(MatchError(model.ErrDuplicateMember))
	})

	Context("with an identities file", func() {
		var path string

		BeforeEach(func() {
			path = filepath.Join(GinkgoT().TempDir(), "team.yaml")
			Expect(os.WriteFile(path, []byte(`members:
  - name: Ada
    issue_tracker_id: ada@example.com
    code_host_id: adal
  - name: Bob
    code_host_id: bobby-b
`), 0o600)).To(Succeed())
			setEnv("TEAM_IDENTITIES_FILE", path)
		})

		It("overlays identities onto TEAM_MEMBERS in its order", func() {
			setEnv("TEAM_MEMBERS", "Carol,ada")

			cfg, err := config.Load(config.ServiceTypeServer)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Team.Roster.Names()).To(Equal([]string{"Carol", "Ada"}))

			ada, ok := cfg.Team.Roster.Lookup("Ada")
			Expect(ok).To(BeTrue())
			Expect(ada.IssueTrackerIdentity()).To(Equal("ada@example.com"))
			Expect(ada.CodeHostIdentity()).To(Equal("adal"))

			carol, _ := cfg.Team.Roster.Lookup("Carol")
			Expect(carol.CodeHostIdentity()).To(Equal("Carol"))
		})

		It("uses the file's members when TEAM_MEMBERS is unset", func() {
			cfg, err := config.Load(config.ServiceTypeServer)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Team.Roster.Names()).To(Equal([]string{"Ada", "Bob"}))
		})

		It("reports unreadable files", func() {
			setEnv("TEAM_IDENTITIES_FILE", filepath.Join(GinkgoT().TempDir(), "missing.yaml"))

			_, err := config.Load(config.ServiceTypeServer)
			Expect(err).To(MatchError(ContainSubstring("reading identities file")))
		})
	})
})
