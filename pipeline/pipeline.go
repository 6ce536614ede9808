package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"

	"github.com/randalmurphal/announce/collect"
	devcontext "github.com/randalmurphal/announce/context"
	"github.com/randalmurphal/announce/generate"
	"github.com/randalmurphal/announce/notify"
	"github.com/randalmurphal/announce/prompt"
	"github.com/randalmurphal/announce/release"
)

// Defaults for Config.
const (
	DefaultCollectorTimeout = 20 * time.Second
	DefaultRunTimeout       = 300 * time.Second
)

// Config holds per-run settings.
type Config struct {
	Format           release.Format
	ModelID          string
	CollectorTimeout time.Duration
	RunTimeout       time.Duration

	// DryRun stops after prompt compilation.
	DryRun bool
}

// Pipeline runs resolve, collect, build, compile, generate and finalize for
// one release. Nil collaborators are taken from the services injected in
// the run context (see devcontext.Services) or built with defaults.
type Pipeline struct {
	Resolver   collect.Resolver
	Collectors []collect.Collector
	Builder    *devcontext.Builder
	Compiler   *prompt.Compiler
	Adapter    *generate.Adapter
	Notifier   notify.Notifier
	Config     Config

	// Now is the clock; tests pin it.
	Now func() time.Time
}

// Run executes one announcement run for tag ("latest" or a tag name). It
// never returns nil; failures are reported through the Report status.
func (p *Pipeline) Run(ctx context.Context, tag string) *Report {
	now := p.now()
	start := now()

	st := &state{
		tag:    tag,
		report: &Report{RunID: newRunID(), Status: StatusSuccess},
	}

	budget := p.Config.RunTimeout
	if budget <= 0 {
		budget = DefaultRunTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	log := slog.With("run", st.report.RunID, "tag", tag)
	notifier := p.notifier(ctx)
	p.emit(runCtx, notifier, st, notify.EventRunStarted, notify.SeverityInfo, "announcement run started", "")

	if err := p.prepare(runCtx); err != nil {
		st.report.fail(err)
	} else if err := p.runGraph(runCtx, notifier, st); err != nil && !st.done {
		st.report.fail(err)
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		st.report.fail(fmt.Errorf("%w (%s)", ErrRunTimeout, budget))
		st.report.Raw = ""
	}

	st.report.Duration = now().Sub(start)
	log.Info("announcement run finished", "status", st.report.Status, "attempts", st.report.Attempts, "duration", st.report.Duration)
	p.finish(runCtx, notifier, st)
	return st.report
}

// prepare fills nil collaborators from injected services.
func (p *Pipeline) prepare(ctx context.Context) error {
	if p.Resolver == nil {
		return errors.New("no release resolver configured")
	}
	if p.Builder == nil {
		p.Builder = devcontext.NewBuilder(devcontext.DefaultLimits())
	}
	if p.Compiler == nil {
		loader := devcontext.Prompt(ctx)
		if loader == nil {
			loader = prompt.NewLoader(".")
		}
		p.Compiler = prompt.NewCompiler(loader, prompt.CompilerConfig{})
	}
	if p.Adapter == nil && !p.Config.DryRun {
		provider := devcontext.Provider(ctx)
		if provider == nil {
			return devcontext.ErrNoProvider
		}
		p.Adapter = generate.NewAdapter(provider, generate.AdapterConfig{MaxRetries: -1})
	}
	if p.Config.Format == "" {
		p.Config.Format = release.FormatMarkdown
	}
	if p.Config.ModelID == "" {
		p.Config.ModelID = generate.DefaultModelID
	}
	return nil
}

func (p *Pipeline) notifier(ctx context.Context) notify.Notifier {
	if p.Notifier != nil {
		return p.Notifier
	}
	if n := notify.NotifierFromContext(ctx); n != nil {
		return n
	}
	return notify.NopNotifier{}
}

func (p *Pipeline) now() func() time.Time {
	if p.Now != nil {
		return p.Now
	}
	return time.Now
}

func newRunID() string {
	id, err := nanoid.New()
	if err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return "run-" + id
}
