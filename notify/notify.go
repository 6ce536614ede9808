package notify

import (
	"context"
	"time"
)

// EventType represents the type of run event.
type EventType string

// Event type constants.
const (
	EventRunStarted        EventType = "run_started"
	EventRunCompleted      EventType = "run_completed"
	EventRunPartial        EventType = "run_partial"
	EventRunFailed         EventType = "run_failed"
	EventCollectorDegraded EventType = "collector_degraded"
	EventArtifactPublished EventType = "artifact_published"
)

// Severity constants for notifications.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// Event describes one announcement run event.
type Event struct {
	Type      EventType      `json:"type"`
	RunID     string         `json:"run_id"`
	Release   string         `json:"release,omitempty"`
	Collector string         `json:"collector,omitempty"`
	Message   string         `json:"message"`
	Severity  string         `json:"severity"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Notifier sends notifications about run events.
type Notifier interface {
	// Notify sends a notification. Failures are reported, never fatal to
	// the run that emitted the event.
	Notify(ctx context.Context, event Event) error
}

// New builds the notifier for the configured endpoints: always a
// LogNotifier, plus webhook and Slack targets when their URLs are set.
func New(webhookURL, slackURL string) Notifier {
	notifiers := []Notifier{NewLogNotifier(nil)}
	if webhookURL != "" {
		notifiers = append(notifiers, NewWebhookNotifier(webhookURL, nil))
	}
	if slackURL != "" {
		notifiers = append(notifiers, NewSlackNotifier(slackURL))
	}
	if len(notifiers) == 1 {
		return notifiers[0]
	}
	return NewMultiNotifier(notifiers...)
}

type serviceContextKey string

const notifierServiceKey serviceContextKey = "announce.notifier"

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
