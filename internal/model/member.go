package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyRoster     = errors.New("roster must contain at least one member")
	ErrEmptyMemberName = errors.New("member name cannot be empty")
	ErrDuplicateMember = errors.New("duplicate member")
)

// Member is a known team member. The tracker and host IDs let one person go by
// different usernames in each external system.
type Member struct {
	Name           string `yaml:"name"`
	IssueTrackerID string `yaml:"issue_tracker_id"`
	CodeHostID     string `yaml:"code_host_id"`
}

func (m Member) IssueTrackerIdentity() string {
	if m.IssueTrackerID != "" {
		return m.IssueTrackerID
	}
	return m.Name
}

func (m Member) CodeHostIdentity() string {
	if m.CodeHostID != "" {
		return m.CodeHostID
	}
	return m.Name
}

// Roster is the ordered, immutable set of members questions can be about.
type Roster struct {
	members []Member
}

func NewRoster(members []Member) (Roster, error) {
	if len(members) == 0 {
		return Roster{}, ErrEmptyRoster
	}

	seen := make(map[string]struct{}, len(members))
	out := make([]Member, 0, len(members))
	for _, m := range members {
		m.Name = strings.TrimSpace(m.Name)
		if m.Name == "" {
			return Roster{}, ErrEmptyMemberName
		}
		key := strings.ToLower(m.Name)
		if _, ok := seen[key]; ok {
			return Roster{}, fmt.Errorf("%w: %s", ErrDuplicateMember, m.Name)
		}
		seen[key] = struct{}{}
		out = append(out, m)
	}

	return Roster{members: out}, nil
}

// Members returns a copy of the roster entries in configured order.
func (r Roster) Members() []Member {
	out := make([]Member, len(r.members))
	copy(out, r.members)
	return out
}

func (r Roster) Names() []string {
	names := make([]string, len(r.members))
	for i, m := range r.members {
		names[i] = m.Name
	}
	return names
}

func (r Roster) Len() int {
	return len(r.members)
}

// Lookup finds a member by name, ignoring case.
func (r Roster) Lookup(name string) (Member, bool) {
	for _, m := range r.members {
		if strings.EqualFold(m.Name, strings.TrimSpace(name)) {
			return m, true
		}
	}
	return Member{}, false
}
