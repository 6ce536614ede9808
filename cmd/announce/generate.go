package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/announce/config"
	devcontext "github.com/randalmurphal/announce/context"
	"github.com/randalmurphal/announce/generate"
	"github.com/randalmurphal/announce/pipeline"
	"github.com/randalmurphal/announce/prompt"
	"github.com/randalmurphal/announce/publish"
)

// flagKeys maps generate flags to config keys. Only flags set on the
// command line override lower layers.
var flagKeys = []struct {
	flag, key string
}{
	{"tag", config.KeyReleaseTag},
	{"format", config.KeyOutputFormat},
	{"model", config.KeyModelID},
	{"openapi", config.KeyOpenAPIFile},
	{"repo", config.KeyRepository},
	{"platform", config.KeyPlatform},
	{"max-context-tokens", config.KeyMaxContextTokens},
	{"max-retries", config.KeyMaxRetries},
	{"timeout", config.KeyTimeoutSeconds},
	{"out-dir", config.KeyOutputDir},
	{"encoding", config.KeyEncoding},
	{"commit", config.KeyCommit},
	{"event-path", config.KeyEventPath},
	{"log-level", config.KeyLogLevel},
}

type generateOptions struct {
	preview bool
	dryRun  bool
}

func newGenerateCmd(a *app) *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the announcement for a release",
		Long: `Generate resolves the release, collects its changes, asks the model for an
announcement and writes the validated result.

Exit codes:
  0  announcement written
  1  run failed, nothing written
  2  output failed validation; the raw text was written as a draft`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := map[string]string{}
			for _, fk := range flagKeys {
				if f := cmd.Flags().Lookup(fk.flag); f != nil && f.Changed {
					overrides[fk.key] = f.Value.String()
				}
			}
			return runGenerate(cmd.Context(), a, overrides, opts)
		},
	}

	f := cmd.Flags()
	f.String("tag", "", "Release tag, or \"latest\" (default latest)")
	f.String("format", "", "Output format: markdown, mkdocs or jekyll")
	f.String("model", "", "Model as provider/model, e.g. openai/gpt-4o-mini, ollama/llama3, claude/balanced")
	f.String("openapi", "", "Path to the OpenAPI schema (default openapi.yaml)")
	f.String("repo", "", "Repository as owner/name (GitLab: group/project)")
	f.String("platform", "", "Release source: github, gitlab, event or local")
	f.Int("max-context-tokens", 0, "Token budget for the change context")
	f.Int("max-retries", 0, "Retries after a transient model failure")
	f.Int("timeout", 0, "Per-attempt model timeout in seconds")
	f.String("out-dir", "", "Directory for announcements and drafts")
	f.String("encoding", "", "File encoding: raw or base64")
	f.Bool("commit", false, "Commit the announcement to the repository")
	f.String("event-path", "", "CI event file for the event platform")
	f.BoolVar(&opts.preview, "preview", false, "Render the announcement in the terminal")
	f.BoolVar(&opts.dryRun, "dry-run", false, "Print the compiled prompt without calling the model")

	return cmd
}

func runGenerate(ctx context.Context, a *app, overrides map[string]string, opts generateOptions) error {
	resolver := a.newResolver()
	settings, err := config.Load(resolver.ResolveWithFlags(overrides))
	if err != nil {
		return err
	}
	setupLogging(a.stderr, settings.LogLevel)

	root := a.root
	if root == "" {
		root = resolver.GitRoot()
	}
	if root == "" {
		if root, err = os.Getwd(); err != nil {
			return err
		}
	}

	svc, err := devcontext.NewServices(devcontext.Config{
		RepoPath: root,
		ModelID:  settings.ModelID,
		Provider: generate.ProviderOptions{
			APIKey:  settings.OpenAIAPIKey,
			BaseURL: settings.LLMURL,
			Timeout: 2 * settings.Timeout,
			Workdir: root,
		},
		PromptsDir:    settings.PromptsDir,
		NotifyWebhook: settings.NotifyWebhook,
		SlackWebhook:  settings.SlackWebhook,
	})
	if err != nil {
		return err
	}
	ctx = svc.InjectAll(ctx)

	src, err := buildSources(settings, svc.Git, root)
	if err != nil {
		return err
	}

	p := &pipeline.Pipeline{
		Resolver:   src.resolver,
		Collectors: src.collectors,
		Builder:    devcontext.NewBuilder(devcontext.Limits{MaxTokens: settings.MaxContextTokens}),
		Compiler: prompt.NewCompiler(svc.Prompts, prompt.CompilerConfig{
			MaxTokens: settings.MaxPromptTokens,
			DocsURL:   settings.DocsURL,
		}),
		Adapter: generate.NewAdapter(svc.Provider, generate.AdapterConfig{
			MaxRetries:       settings.MaxRetries,
			Timeout:          settings.Timeout,
			MaxResponseBytes: settings.MaxResponseBytes,
		}),
		Config: pipeline.Config{
			Format:           settings.Format,
			ModelID:          settings.ModelID,
			CollectorTimeout: settings.CollectorTimeout,
			RunTimeout:       settings.RunTimeout,
			DryRun:           opts.dryRun,
		},
	}

	out := newUI(a.stderr, settings.NoColor)
	stop := out.spin("Generating announcement for " + settings.ReleaseTag)
	report := p.Run(ctx, settings.ReleaseTag)
	stop()

	if opts.dryRun {
		return printPrompt(a, report)
	}

	pub := &publish.Publisher{
		Root:      root,
		Dir:       settings.OutputDir,
		Encoding:  settings.Encoding,
		Git:       svc.Git,
		Commit:    settings.Commit,
		Retention: ptr(publish.DefaultRetentionConfig()),
	}
	res, err := pub.Publish(report)
	if err != nil && !errors.Is(err, publish.ErrNothingToPublish) {
		// The text exists only in memory; a write failure fails the run.
		slog.Error("publish failed", "error", err)
		out.summary(report, res)
		publish.PrintStatus(a.stdout, &pipeline.Report{Status: pipeline.StatusError}, "")
		return &exitError{code: 1, err: err}
	}

	if err := publish.WriteStepOutputs(settings.StepOutput, publish.StepOutputs(report, res)); err != nil {
		slog.Warn("writing step outputs failed", "error", err)
	}
	publish.PrintStatus(a.stdout, report, res.Path)
	out.summary(report, res)

	if opts.preview && report.Artifact != nil {
		rendered, err := out.render(report.Artifact.Content)
		if err != nil {
			slog.Warn("preview failed", "error", err)
		} else {
			fmt.Fprint(a.stderr, rendered)
		}
	}

	switch report.Status {
	case pipeline.StatusSuccess:
		return nil
	case pipeline.StatusPartial:
		return &exitError{code: report.Status.ExitCode()}
	default:
		return &exitError{code: report.Status.ExitCode(), err: explain(report, settings.ReleaseTag, endpointFor(src, settings))}
	}
}

// printPrompt writes the compiled prompt of a dry run to stdout.
func printPrompt(a *app, report *pipeline.Report) error {
	if report.Prompt == nil {
		return &exitError{code: report.Status.ExitCode(), err: report.Err()}
	}
	fmt.Fprintf(a.stdout, "=== system ===\n%s\n\n=== user (%d tokens) ===\n%s\n", report.Prompt.System, report.Prompt.Tokens, report.Prompt.User)
	return nil
}

// endpointFor names the service a connection failure most likely concerns.
func endpointFor(src *sources, s *config.Settings) string {
	if s.LLMURL != "" {
		return s.LLMURL
	}
	if id, err := generate.ParseModelID(s.ModelID); err == nil {
		switch id.Provider {
		case generate.ProviderOpenAI:
			return generate.DefaultOpenAIURL
		case generate.ProviderOllama:
			return generate.DefaultOllamaURL
		}
	}
	return src.endpoint
}

func ptr[T any](v T) *T { return &v }
