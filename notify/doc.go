// Package notify provides notification services for story run events.
//
// Core types:
//   - Notifier: Interface for sending notifications
//   - Event: Notification event with type, message, and metadata
//   - EventType: Type of event (draft ready, completed, failed, etc.)
//
// Implementations:
//   - WebhookNotifier: Posts events as JSON to a webhook, with retries
//   - LogNotifier: Logs notifications through slog
//   - MultiNotifier: Combines multiple notifiers
//   - NopNotifier: No-op notifier (for testing)
//
// Example usage:
//
//	notifier := notify.NewMultiNotifier(
//	    notify.NewLogNotifier(logger),
//	    notify.NewWebhookNotifier(url, map[string]string{"X-Token": token}),
//	)
//	err := notifier.Notify(ctx, notify.Event{
//	    Type:    notify.EventDraftReady,
//	    RunID:   state.RunID,
//	    Message: "Draft ready for feedback",
//	})
package notify
