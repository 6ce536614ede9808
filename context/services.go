package context

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/randalmurphal/announce/generate"
	"github.com/randalmurphal/announce/git"
	"github.com/randalmurphal/announce/notify"
	"github.com/randalmurphal/announce/prompt"
)

// Services wraps the collaborators a run needs.
type Services struct {
	Git      *git.Context      // Optional: set when running inside a repository
	Provider generate.Provider // Model backend
	Prompts  *prompt.Loader
	Notifier notify.Notifier // Optional notification service
}

// InjectAll adds all configured services to the context
func (s *Services) InjectAll(ctx context.Context) context.Context {
	if s.Provider != nil {
		ctx = WithProvider(ctx, s.Provider)
	}
	if s.Prompts != nil {
		ctx = WithPrompt(ctx, s.Prompts)
	}
	if s.Notifier != nil {
		ctx = notify.WithNotifier(ctx, s.Notifier)
	}
	return ctx
}

// Config configures NewServices
type Config struct {
	RepoPath string // Path to git repository; empty skips git
	ModelID  string // provider/model (default: generate.DefaultModelID)

	Provider generate.ProviderOptions

	// PromptsDir is searched for template overrides before the repository's
	// own prompt directories. Relative paths are taken from RepoPath.
	PromptsDir string

	NotifyWebhook string
	SlackWebhook  string
	Runner        git.CommandRunner // Runs git; defaults to ExecRunner
}

// NewServices creates Services with common defaults. A RepoPath that is not
// a git repository is not an error; Git stays nil.
func NewServices(cfg Config) (*Services, error) {
	s := &Services{}

	projectDir := "."
	if cfg.RepoPath != "" {
		projectDir = cfg.RepoPath
		var opts []git.Option
		if cfg.Runner != nil {
			opts = append(opts, git.WithRunner(cfg.Runner))
		}
		if gitCtx, err := git.NewContext(cfg.RepoPath, opts...); err == nil {
			s.Git = gitCtx
		}
	}

	modelID := cfg.ModelID
	if modelID == "" {
		modelID = generate.DefaultModelID
	}
	provider, err := generate.NewProvider(modelID, cfg.Provider)
	if err != nil {
		return nil, fmt.Errorf("create provider: %w", err)
	}
	s.Provider = provider

	s.Prompts = prompt.NewLoader(projectDir)
	if dir := cfg.PromptsDir; dir != "" {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(projectDir, dir)
		}
		s.Prompts.AddSearchDir(dir)
	}
	s.Notifier = notify.New(cfg.NotifyWebhook, cfg.SlackWebhook)

	return s, nil
}
