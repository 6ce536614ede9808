package collect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/randalmurphal/announce/release"
)

// Status is the tri-state outcome of one collector.
type Status string

// Collector statuses.
const (
	StatusOK          Status = "ok"
	StatusDegraded    Status = "degraded"
	StatusUnavailable Status = "unavailable"
)

// Output is what one collector contributes to a run. A degraded output may
// still carry partial data; an unavailable output carries none.
type Output struct {
	Collector  string                 `json:"collector"`
	Status     Status                 `json:"status"`
	Reason     string                 `json:"reason,omitempty"`
	Changes    []release.ChangeItem   `json:"changes,omitempty"`
	APIChanges []release.APIDiffEntry `json:"api_changes,omitempty"`
}

// OK returns a successful output.
func OK(collector string, changes []release.ChangeItem, api []release.APIDiffEntry) Output {
	return Output{Collector: collector, Status: StatusOK, Changes: changes, APIChanges: api}
}

// Degraded returns an output that succeeded partially.
func Degraded(collector, reason string, changes []release.ChangeItem, api []release.APIDiffEntry) Output {
	return Output{Collector: collector, Status: StatusDegraded, Reason: reason, Changes: changes, APIChanges: api}
}

// Unavailable returns an output for a source that produced nothing.
func Unavailable(collector, reason string) Output {
	return Output{Collector: collector, Status: StatusUnavailable, Reason: reason}
}

// Err returns nil for ok outputs and an error wrapping
// release.ErrCollectorUnavailable otherwise.
func (o Output) Err() error {
	if o.Status == StatusOK {
		return nil
	}
	return fmt.Errorf("%w: %s %s: %s", release.ErrCollectorUnavailable, o.Collector, o.Status, o.Reason)
}

// Collector gathers one category of change signal for a release. Collect
// never fails: problems are reported through the Output status.
type Collector interface {
	Name() string
	Collect(ctx context.Context, ref release.Ref) Output
}

// Resolver turns a requested tag (or "latest") into a resolved release.
type Resolver interface {
	Resolve(ctx context.Context, tag string) (release.Ref, error)
}

// CollectorFunc adapts a function to the Collector interface.
type CollectorFunc struct {
	ID string
	Fn func(ctx context.Context, ref release.Ref) Output
}

// Name implements Collector.
func (f CollectorFunc) Name() string { return f.ID }

// Collect implements Collector.
func (f CollectorFunc) Collect(ctx context.Context, ref release.Ref) Output {
	return f.Fn(ctx, ref)
}

// Run executes collectors concurrently and returns their outputs in
// collector order. Each collector gets its own timeout; one that overruns
// or panics is reported unavailable without affecting the others.
func Run(ctx context.Context, ref release.Ref, timeout time.Duration, collectors ...Collector) []Output {
	outputs := make([]Output, len(collectors))

	var wg sync.WaitGroup
	for i, c := range collectors {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			outputs[i] = runOne(ctx, ref, timeout, c)

			out := outputs[i]
			if out.Status == StatusOK {
				slog.Debug("collector finished",
					"collector", out.Collector,
					"changes", len(out.Changes),
					"api_changes", len(out.APIChanges),
					"duration", time.Since(start))
			} else {
				slog.Warn("collector degraded",
					"collector", out.Collector,
					"status", out.Status,
					"reason", out.Reason)
			}
		}()
	}
	wg.Wait()

	return outputs
}

func runOne(ctx context.Context, ref release.Ref, timeout time.Duration, c Collector) Output {
	name := c.Name()

	cctx, cancel := ctx, context.CancelFunc(func() {})
	if timeout > 0 {
		cctx, cancel = context.WithTimeout(ctx, timeout)
	}
	defer cancel()

	done := make(chan Output, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- Unavailable(name, fmt.Sprintf("panic: %v", r))
			}
		}()
		done <- c.Collect(cctx, ref)
	}()

	select {
	case out := <-done:
		if out.Collector == "" {
			out.Collector = name
		}
		if out.Status != StatusOK && errors.Is(cctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return timedOut(name, timeout)
		}
		return out
	case <-cctx.Done():
		if ctx.Err() != nil {
			return Unavailable(name, "canceled: "+ctx.Err().Error())
		}
		return timedOut(name, timeout)
	}
}

func timedOut(name string, timeout time.Duration) Output {
	return Unavailable(name, fmt.Sprintf("timed out after %s", timeout))
}
