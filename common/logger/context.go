package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a context.
// A question's request ID and interpreted query travel with the context so that
// collaborator and aggregator logs can be tied back to the question that caused them.
type LogFields struct {
	RequestID *int64  // Snowflake ID assigned per question
	Member    *string // Resolved roster member
	Intent    *string // Classified intent (e.g., "commits_only")
	TimeRange *string // Classified time range (e.g., "this_week")
	Section   *string // Aggregate section being fetched (e.g., "pull_requests")
	Component string  // Component name (e.g., "monitor.aggregator")
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, new LogFields) LogFields {
	result := existing

	if new.RequestID != nil {
		result.RequestID = new.RequestID
	}
	if new.Member != nil {
		result.Member = new.Member
	}
	if new.Intent != nil {
		result.Intent = new.Intent
	}
	if new.TimeRange != nil {
		result.TimeRange = new.TimeRange
	}
	if new.Section != nil {
		result.Section = new.Section
	}
	if new.Component != "" {
		result.Component = new.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{Member: logger.Ptr(name)})
func Ptr[T any](v T) *T {
	return &v
}

// Truncate shortens s to at most maxLen runes, appending "..." if it was cut.
// Used for logging free-text questions.
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
