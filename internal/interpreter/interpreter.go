package interpreter

import (
	"github.com/ahvar/team-activity-monitor/internal/model"
)

// Interpreter turns a free-text question into a StructuredQuery.
type Interpreter struct {
	entities *EntityResolver
}

func New(roster model.Roster, opts ...EntityResolverOption) *Interpreter {
	return &Interpreter{entities: NewEntityResolver(roster, opts...)}
}

// Interpret returns false when the question names no roster member, even if
// an intent or time range could have been classified.
func (i *Interpreter) Interpret(text string) (model.StructuredQuery, bool) {
	if isBlank(text) {
		return model.StructuredQuery{}, false
	}

	member, ok := i.entities.Resolve(text)
	if !ok {
		return model.StructuredQuery{}, false
	}

	return model.StructuredQuery{
		Member:    member,
		Intent:    ClassifyIntent(text),
		TimeRange: ResolveTimeRange(text),
	}, true
}
