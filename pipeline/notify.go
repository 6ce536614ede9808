package pipeline

import (
	"context"
	"time"

	"github.com/randalmurphal/announce/collect"
	"github.com/randalmurphal/announce/notify"
)

// emit sends a run event. Notification failures never affect the run.
func (p *Pipeline) emit(ctx context.Context, n notify.Notifier, st *state, typ notify.EventType, severity, msg, collector string) {
	_ = n.Notify(context.WithoutCancel(ctx), notify.Event{
		Type:      typ,
		RunID:     st.report.RunID,
		Release:   releaseName(st),
		Collector: collector,
		Message:   msg,
		Severity:  severity,
		Timestamp: p.now()(),
	})
}

// finish sends the terminal event for the run's status.
func (p *Pipeline) finish(ctx context.Context, n notify.Notifier, st *state) {
	r := st.report
	event := notify.Event{
		RunID:     r.RunID,
		Release:   releaseName(st),
		Timestamp: p.now()(),
		Metadata:  buildMetadata(r),
	}

	switch r.Status {
	case StatusSuccess:
		event.Type, event.Severity, event.Message = notify.EventRunCompleted, notify.SeverityInfo, "announcement generated"
	case StatusPartial:
		event.Type, event.Severity, event.Message = notify.EventRunPartial, notify.SeverityWarning, r.Diagnostic
	default:
		event.Type, event.Severity, event.Message = notify.EventRunFailed, notify.SeverityError, r.Diagnostic
	}

	_ = n.Notify(context.WithoutCancel(ctx), event)
}

func releaseName(st *state) string {
	if st.report.Release.Tag != "" {
		return st.report.Release.Tag
	}
	return st.tag
}

func buildMetadata(r *Report) map[string]any {
	meta := map[string]any{
		"attempts":  r.Attempts,
		"truncated": r.Truncated,
	}
	degraded := 0
	for _, out := range r.Collectors {
		if out.Status != collect.StatusOK {
			degraded++
		}
	}
	meta["degraded_collectors"] = degraded
	if r.Duration > 0 {
		meta["duration"] = r.Duration.Round(time.Millisecond).String()
	}
	return meta
}
