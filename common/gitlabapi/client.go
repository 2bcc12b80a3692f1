package gitlabapi

import (
	"strings"

	gitlab "gitlab.com/gitlab-org/api/client-go"
)

// New builds an API client for a self-hosted instance, or gitlab.com when
// instanceURL is empty. instanceURL must not include the /api/v4 suffix.
func New(instanceURL, token string) (*gitlab.Client, error) {
	if instanceURL == "" {
		return gitlab.NewClient(token)
	}
	apiURL := strings.TrimSuffix(instanceURL, "/") + "/api/v4"
	return gitlab.NewClient(token, gitlab.WithBaseURL(apiURL))
}
