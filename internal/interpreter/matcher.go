package interpreter

import "strings"

// Rule maps a set of lowercase keywords to a value.
type Rule[T any] struct {
	Value    T
	Patterns []string
}

// PriorityMatcher evaluates rules in declaration order and returns the value
// of the first rule with a pattern contained in the lowercased text.
type PriorityMatcher[T any] struct {
	rules    []Rule[T]
	fallback T
}

func NewPriorityMatcher[T any](fallback T, rules ...Rule[T]) *PriorityMatcher[T] {
	return &PriorityMatcher[T]{rules: rules, fallback: fallback}
}

func (m *PriorityMatcher[T]) Match(text string) T {
	v, _ := m.MatchPattern(text)
	return v
}

// MatchPattern is Match that also reports the keyword which decided the result.
// The keyword is empty when the fallback was used.
func (m *PriorityMatcher[T]) MatchPattern(text string) (T, string) {
	lower := strings.ToLower(text)
	for _, rule := range m.rules {
		for _, p := range rule.Patterns {
			if strings.Contains(lower, p) {
				return rule.Value, p
			}
		}
	}
	return m.fallback, ""
}
