// Package notify delivers announcement run events.
//
// A run emits run_started, then run_completed, run_partial or run_failed,
// plus collector_degraded for every collector that did not return ok and
// artifact_published once the file is written.
//
// Implementations:
//   - LogNotifier: slog output (always on)
//   - WebhookNotifier: JSON POST, optionally HMAC signed
//   - SlackNotifier: Slack incoming webhook
//   - MultiNotifier: fan-out, failures logged and not fatal
//   - NopNotifier: discards everything
//
// Example:
//
//	n := notify.New(cfg.NotifyWebhook, cfg.SlackWebhook)
//	_ = n.Notify(ctx, notify.Event{
//	    Type:     notify.EventRunCompleted,
//	    RunID:    report.RunID,
//	    Release:  report.Release.Tag,
//	    Message:  "announcement generated",
//	    Severity: notify.SeverityInfo,
//	})
package notify
