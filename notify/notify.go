package notify

import (
	"context"
	"time"
)

// =============================================================================
// Notification Types
// =============================================================================

// EventType represents the type of workflow event.
type EventType string

// Event type constants.
const (
	EventRunStarted    EventType = "run_started"
	EventStepCompleted EventType = "step_completed"
	EventDraftReady    EventType = "draft_ready" // suspended for feedback
	EventRunResumed    EventType = "run_resumed"
	EventRunCompleted  EventType = "run_completed"
	EventRunFailed     EventType = "run_failed"
)

// Severity constants for notifications.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// Event describes a workflow event for notification.
type Event struct {
	Type      EventType      `json:"type"`
	RunID     string         `json:"run_id"`
	FlowID    string         `json:"flow_id"`
	Step      string         `json:"step,omitempty"`
	Message   string         `json:"message"`
	Severity  string         `json:"severity"` // SeverityInfo, SeverityWarning, SeverityError
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// =============================================================================
// Notifier Interface
// =============================================================================

// Notifier sends notifications about workflow events.
type Notifier interface {
	// Notify sends a notification. Implementations should not block the
	// workflow for long and should report, not panic on, delivery errors.
	Notify(ctx context.Context, event Event) error
}

// =============================================================================
// Context Injection
// =============================================================================

type serviceContextKey string

const notifierServiceKey serviceContextKey = "storyflow.notifier"

// WithNotifier adds a Notifier to the context.
func WithNotifier(ctx context.Context, n Notifier) context.Context {
	return context.WithValue(ctx, notifierServiceKey, n)
}

// NotifierFromContext extracts the Notifier from context.
// Returns nil if no notifier is configured.
func NotifierFromContext(ctx context.Context) Notifier {
	if n, ok := ctx.Value(notifierServiceKey).(Notifier); ok {
		return n
	}
	return nil
}
