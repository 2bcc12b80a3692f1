package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ahvar/team-activity-monitor/internal/model"
)

type identitiesFile struct {
	Members []model.Member `yaml:"members"`
}

// buildRoster combines TEAM_MEMBERS with the optional identities file.
// TEAM_MEMBERS decides who is on the roster and in what order; the file only
// supplies tracker and host usernames. Without TEAM_MEMBERS the file's own
// member list is used.
func (c TeamConfig) buildRoster() (model.Roster, error) {
	var identities []model.Member
	if c.IdentitiesFile != "" {
		var err error
		identities, err = LoadIdentities(c.IdentitiesFile)
		if err != nil {
			return model.Roster{}, err
		}
	}

	if len(c.Members) == 0 && len(identities) == 0 {
		return model.Roster{}, errors.New("TEAM_MEMBERS environment variable is required")
	}

	members := identities
	if len(c.Members) > 0 {
		byName, err := model.NewRoster(identities)
		if err != nil && len(identities) > 0 {
			return model.Roster{}, fmt.Errorf("identities file %s: %w", c.IdentitiesFile, err)
		}

		members = make([]model.Member, 0, len(c.Members))
		for _, name := range c.Members {
			m, ok := byName.Lookup(name)
			if !ok {
				m = model.Member{Name: name}
			}
			members = append(members, m)
		}
	}

	roster, err := model.NewRoster(members)
	if err != nil {
		return model.Roster{}, fmt.Errorf("invalid team roster: %w", err)
	}
	return roster, nil
}

// LoadIdentities reads a YAML file of the form:
//
//	members:
//	  - name: Ada
//	    issue_tracker_id: ada@example.com
//	    code_host_id: adal
func LoadIdentities(path string) ([]model.Member, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading identities file: %w", err)
	}

	var f identitiesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing identities file %s: %w", path, err)
	}
	return f.Members, nil
}
