package auth

import (
	"context"
	"strings"
	"time"
)

// ActivityEventType enumerates supported audit categories.
type ActivityEventType string

const (
	ActivityEventLoginSuccess ActivityEventType = "login_success"
	ActivityEventLoginFailure ActivityEventType = "login_failure"
)

// Length caps applied before an audit row is persisted.
const (
	maxActivityUsernameLen  = 64
	maxActivitySourceLen    = 64
	maxActivityUserAgentLen = 256
	maxActivityDetailLen    = 512
)

// ActivityEvent captures audit-friendly information about a login attempt.
// Rows are append-only; this core never mutates or deletes them.
type ActivityEvent struct {
	EventType     ActivityEventType
	UserID        *int64
	Username      string
	SourceAddress string
	UserAgent     string
	Detail        string
	OccurredAt    time.Time
}

// ActivitySink consumes activity events for auditing purposes. Sinks are a
// pure logging boundary: they never gate authorization decisions, and a
// failed write must not fail the surrounding authentication.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}

// NormalizeActivityEvent coerces an event into its persistable shape:
// whitespace collapsed, free-text fields capped, the kind restricted to the
// two defined values (anything else becomes a failure), and a zero
// OccurredAt stamped with now.
func NormalizeActivityEvent(event ActivityEvent, now time.Time) ActivityEvent {
	if event.EventType != ActivityEventLoginSuccess {
		event.EventType = ActivityEventLoginFailure
	}

	event.Username = capString(collapseWhitespace(event.Username), maxActivityUsernameLen)
	event.SourceAddress = capString(collapseWhitespace(event.SourceAddress), maxActivitySourceLen)
	event.UserAgent = capString(collapseWhitespace(event.UserAgent), maxActivityUserAgentLen)
	event.Detail = capString(collapseWhitespace(event.Detail), maxActivityDetailLen)

	if event.OccurredAt.IsZero() {
		event.OccurredAt = now.UTC()
	}

	return event
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func capString(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
