package interpreter

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ahvar/team-activity-monitor/internal/model"
)

// Word boundaries are anything that is not a letter, digit or underscore, so
// "Alice's" matches Alice but "bobcat" never matches Bob.
const (
	leftBoundary  = `(?:^|[^\p{L}\p{N}_])`
	rightBoundary = `(?:[^\p{L}\p{N}_]|$)`
)

var (
	qualifierBefore = regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}_])(?:the|a|an)\s+$`)
	qualifierAfter  = regexp.MustCompile(`(?i)^\s+(?:project|team|repository|repo|branch|file|folder|directory)(?:[^\p{L}\p{N}_]|$)`)
)

type EntityResolverOption func(*EntityResolver)

// WithQualifierExclusion skips occurrences that read as a qualifier rather
// than a person, e.g. "the Ada project".
func WithQualifierExclusion() EntityResolverOption {
	return func(r *EntityResolver) {
		r.excludeQualifiers = true
	}
}

type memberPattern struct {
	member  model.Member
	pattern *regexp.Regexp
}

// EntityResolver finds which roster member a question is about. Patterns are
// compiled once; the resolver is safe for concurrent use.
type EntityResolver struct {
	patterns          []memberPattern
	excludeQualifiers bool
}

func NewEntityResolver(roster model.Roster, opts ...EntityResolverOption) *EntityResolver {
	r := &EntityResolver{}
	for _, opt := range opts {
		opt(r)
	}

	for _, m := range roster.Members() {
		r.patterns = append(r.patterns, memberPattern{
			member:  m,
			pattern: regexp.MustCompile(`(?i)` + leftBoundary + `(` + regexp.QuoteMeta(m.Name) + `)` + rightBoundary),
		})
	}
	return r
}

// Resolve returns the roster member named in text. When several names match,
// the longest wins; equal lengths keep roster order.
func (r *EntityResolver) Resolve(text string) (model.Member, bool) {
	var (
		best    model.Member
		bestLen int
		found   bool
	)

	for _, p := range r.patterns {
		if !r.occurs(p.pattern, text) {
			continue
		}
		n := utf8.RuneCountInString(p.member.Name)
		if !found || n > bestLen {
			best, bestLen, found = p.member, n, true
		}
	}

	return best, found
}

func (r *EntityResolver) occurs(pattern *regexp.Regexp, text string) bool {
	if !r.excludeQualifiers {
		return pattern.MatchString(text)
	}

	// Resume right after each name rather than after the whole match so that
	// a boundary character shared by two occurrences is not consumed.
	for offset := 0; offset < len(text); {
		loc := pattern.FindStringSubmatchIndex(text[offset:])
		if loc == nil {
			return false
		}
		start, end := offset+loc[2], offset+loc[3]
		if !qualifierBefore.MatchString(text[:start]) && !qualifierAfter.MatchString(text[end:]) {
			return true
		}
		offset = end
	}
	return false
}

func isBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}
