package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/randalmurphal/flowgraph/pkg/flowgraph"

	"github.com/randalmurphal/announce/artifact"
	"github.com/randalmurphal/announce/collect"
	devcontext "github.com/randalmurphal/announce/context"
	"github.com/randalmurphal/announce/notify"
	"github.com/randalmurphal/announce/release"
)

// state flows through the graph. Nodes stop doing work once done is set,
// so an early failure skips the remaining stages.
type state struct {
	tag    string
	report *Report
	done   bool
}

func (s *state) stop(err error) *state {
	s.report.fail(err)
	s.done = true
	return s
}

// Node names.
const (
	nodeResolve  = "resolve"
	nodeCollect  = "collect"
	nodeBuild    = "build"
	nodeCompile  = "compile"
	nodeGenerate = "generate"
	nodeFinalize = "finalize"
)

type node = flowgraph.NodeFunc[*state]

// runGraph wires the stages into a linear graph and runs it.
func (p *Pipeline) runGraph(ctx context.Context, notifier notify.Notifier, st *state) error {
	stages := []struct {
		name string
		fn   node
	}{
		{nodeResolve, p.resolve},
		{nodeCollect, p.collect(notifier)},
		{nodeBuild, p.build},
		{nodeCompile, p.compile},
		{nodeGenerate, p.generate},
		{nodeFinalize, p.finalize},
	}

	g := flowgraph.NewGraph[*state]()
	for i, s := range stages {
		g.AddNode(s.name, skipWhenDone(s.name, s.fn))
		next := flowgraph.END
		if i+1 < len(stages) {
			next = stages[i+1].name
		}
		g.AddEdge(s.name, next)
	}
	g.SetEntry(stages[0].name)

	compiled, err := g.Compile()
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}
	_, err = compiled.Run(flowgraph.NewContext(ctx), st)
	return err
}

// skipWhenDone wraps a stage so it is a no-op after a terminal outcome and
// stops the run when the budget is spent.
func skipWhenDone(name string, fn node) node {
	return func(ctx flowgraph.Context, st *state) (*state, error) {
		if st.done {
			return st, nil
		}
		if err := ctx.Err(); err != nil {
			return st.stop(fmt.Errorf("%s: %w", name, err)), nil
		}
		return fn(ctx, st)
	}
}

func (p *Pipeline) resolve(ctx flowgraph.Context, st *state) (*state, error) {
	ref, err := p.Resolver.Resolve(ctx, st.tag)
	if err != nil {
		return st.stop(fmt.Errorf("resolve release %q: %w", st.tag, err)), nil
	}
	st.report.Release = ref
	slog.Info("release resolved", "tag", ref.Tag, "previous", ref.PreviousTag, "latest_fallback", ref.IsLatestFallback)
	return st, nil
}

func (p *Pipeline) collect(notifier notify.Notifier) node {
	return func(ctx flowgraph.Context, st *state) (*state, error) {
		timeout := p.Config.CollectorTimeout
		if timeout <= 0 {
			timeout = DefaultCollectorTimeout
		}

		outputs := collect.Run(ctx, st.report.Release, timeout, p.Collectors...)
		st.report.Collectors = outputs

		for _, out := range devcontext.Degraded(outputs) {
			slog.Warn("collector degraded", "collector", out.Collector, "status", out.Status, "reason", out.Reason)
			p.emit(ctx, notifier, st, notify.EventCollectorDegraded, notify.SeverityWarning,
				fmt.Sprintf("collector %s: %s", out.Status, out.Reason), out.Collector)
		}
		return st, nil
	}
}

func (p *Pipeline) build(_ flowgraph.Context, st *state) (*state, error) {
	rc, err := p.Builder.Build(st.report.Release, st.report.Collectors)
	if err != nil {
		return st.stop(fmt.Errorf("build context: %w", err)), nil
	}
	st.report.Context = rc
	st.report.Truncated = rc.Truncated
	return st, nil
}

func (p *Pipeline) compile(_ flowgraph.Context, st *state) (*state, error) {
	payload, err := p.Compiler.Compile(st.report.Context, p.Config.Format)
	if err != nil {
		return st.stop(fmt.Errorf("compile prompt: %w", err)), nil
	}
	st.report.Prompt = &payload
	if p.Config.DryRun {
		st.done = true
	}
	return st, nil
}

func (p *Pipeline) generate(ctx flowgraph.Context, st *state) (*state, error) {
	res := p.Adapter.Generate(ctx, *st.report.Prompt, p.Config.ModelID)
	st.report.Attempts = res.Attempts
	if res.Status == release.ResultFailed {
		return st.stop(fmt.Errorf("generate: %s", res.ErrorDetail)), nil
	}
	st.report.Raw = res.Text
	return st, nil
}

func (p *Pipeline) finalize(_ flowgraph.Context, st *state) (*state, error) {
	res := release.GenerationResult{Text: st.report.Raw, Status: release.ResultSuccess, Attempts: st.report.Attempts}
	art, err := artifact.Finalize(res, p.Config.Format, artifact.Options{Release: st.report.Release, Now: p.Now})

	var verr *artifact.ValidationError
	switch {
	case errors.As(err, &verr):
		st.report.Status = StatusPartial
		st.report.Diagnostic = diagnostic(verr.Error())
		st.report.Raw = verr.Raw
	case err != nil:
		return st.stop(fmt.Errorf("finalize: %w", err)), nil
	default:
		st.report.Artifact = art
		st.report.Raw = ""
	}
	st.done = true
	return st, nil
}
