package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/randalmurphal/announce/release"
)

// ErrInvalidValue indicates a configuration value failed validation.
var ErrInvalidValue = errors.New("invalid config value")

// Configuration keys.
const (
	KeyModelID           = "model_id"
	KeyOutputFormat      = "output_format"
	KeyMaxContextTokens  = "max_context_tokens"
	KeyMaxPromptTokens   = "max_prompt_tokens"
	KeyMaxRetries        = "max_retries"
	KeyTimeoutSeconds    = "timeout_seconds"
	KeyCollectorTimeout  = "collector_timeout_seconds"
	KeyRunTimeout        = "run_timeout_seconds"
	KeyMaxResponseBytes  = "max_response_bytes"
	KeyReleaseTag        = "release_tag"
	KeyOpenAPIFile       = "openapi_file"
	KeyRepository        = "repository"
	KeyPlatform          = "platform"
	KeyOutputDir         = "output_dir"
	KeyEncoding          = "encoding"
	KeyCommit            = "commit"
	KeyDocsURL           = "docs_url"
	KeyPromptsDir        = "prompts_dir"
	KeyLLMURL            = "llm_url"
	KeyLogLevel          = "log_level"
	KeyNotifyWebhook     = "notify_webhook"
	KeySlackWebhook      = "slack_webhook"
	KeyGitLabURL         = "gitlab_url"
	KeyGitHubAppID       = "github_app_id"
	KeyGitHubInstallID   = "github_installation_id"
	KeyGitHubAppKeyFile  = "github_app_key_file"
	KeyGitHubToken       = "github_token"
	KeyGitLabToken       = "gitlab_token"
	KeyOpenAIAPIKey      = "openai_api_key"
	KeyEventPath         = "event_path"
	KeyStepOutput        = "step_output"
	KeyAct               = "act"
	KeyNoColor           = "no_color"
	defaultGlobalDirName = "announce"
)

// Platforms understood by the generate command.
const (
	PlatformGitHub = "github"
	PlatformGitLab = "gitlab"
	PlatformEvent  = "event"
	PlatformLocal  = "local"
)

// Artifact encodings for the persistence handoff.
const (
	EncodingRaw    = "raw"
	EncodingBase64 = "base64"
)

// Defaults returns the built-in default values.
func Defaults() map[string]string {
	return map[string]string{
		KeyModelID:          "openai/gpt-4o-mini",
		KeyOutputFormat:     string(release.FormatMarkdown),
		KeyMaxContextTokens: "8000",
		KeyMaxPromptTokens:  "12000",
		KeyMaxRetries:       "2",
		KeyTimeoutSeconds:   "60",
		KeyCollectorTimeout: "20",
		KeyRunTimeout:       "300",
		KeyMaxResponseBytes: "65536",
		KeyReleaseTag:       release.LatestTag,
		KeyOpenAPIFile:      "openapi.yaml",
		KeyPlatform:         PlatformGitHub,
		KeyOutputDir:        "announcements",
		KeyEncoding:         EncodingRaw,
		KeyCommit:           "false",
		KeyLogLevel:         "info",
	}
}

// EnvAliases are the unprefixed variables CI workflows already export.
func EnvAliases() map[string][]string {
	return map[string][]string{
		KeyReleaseTag:   {"RELEASE_TAG"},
		KeyOpenAPIFile:  {"OPENAPI_FILE"},
		KeyModelID:      {"LLM_MODEL"},
		KeyOutputFormat: {"OUTPUT_FORMAT"},
		KeyGitHubToken:  {"GITHUB_TOKEN"},
		KeyGitLabToken:  {"GITLAB_TOKEN"},
		KeyOpenAIAPIKey: {"OPENAI_API_KEY"},
		KeyLLMURL:       {"LLM_URL"},
		KeyRepository:   {"GITHUB_REPOSITORY"},
		KeyEventPath:    {"GITHUB_EVENT_PATH"},
		KeyStepOutput:   {"GITHUB_OUTPUT"},
		KeyAct:          {"ACT"},
	}
}

// secretKeys are never read from or written to config files.
var secretKeys = []string{KeyGitHubToken, KeyGitLabToken, KeyOpenAIAPIKey}

// FileKeys lists keys that may be set in config files.
func FileKeys() []string {
	keys := []string{
		KeyModelID, KeyOutputFormat, KeyMaxContextTokens, KeyMaxPromptTokens,
		KeyMaxRetries, KeyTimeoutSeconds, KeyCollectorTimeout, KeyRunTimeout,
		KeyMaxResponseBytes, KeyReleaseTag, KeyOpenAPIFile, KeyRepository,
		KeyPlatform, KeyOutputDir, KeyEncoding, KeyCommit, KeyDocsURL, KeyPromptsDir,
		KeyLLMURL, KeyLogLevel, KeyNotifyWebhook, KeySlackWebhook,
		KeyGitLabURL, KeyGitHubAppID, KeyGitHubInstallID, KeyGitHubAppKeyFile,
	}
	slices.Sort(keys)
	return keys
}

// IsSecret reports whether key holds a credential.
func IsSecret(key string) bool {
	return slices.Contains(secretKeys, key)
}

// Mask hides all but the last four characters of secret values.
func Mask(key, value string) string {
	if !IsSecret(key) || value == "" {
		return value
	}
	if len(value) <= 4 {
		return "****"
	}
	return "****" + value[len(value)-4:]
}

// NewAnnounceResolver returns a Resolver wired with announce's files,
// defaults and environment names.
func NewAnnounceResolver() *Resolver {
	return NewResolver(announceResolverConfig())
}

func announceResolverConfig() ResolverConfig {
	return ResolverConfig{
		EnvPrefix:        "ANNOUNCE_",
		EnvAliases:       EnvAliases(),
		GlobalConfigDir:  defaultGlobalDirName,
		LocalConfigNames: []string{".announce.yaml", ".announce.yml", ".announce.toml"},
		Defaults:         Defaults(),
		ValidKeys:        FileKeys(),
	}
}

// AnnounceSaveConfig returns the SaveConfig matching NewAnnounceResolver.
func AnnounceSaveConfig() SaveConfig {
	return SaveConfig{
		GlobalConfigDir: defaultGlobalDirName,
		LocalConfigName: ".announce.yaml",
		ValidKeys:       FileKeys(),
	}
}

// Settings is the typed, validated view of a Resolved configuration.
type Settings struct {
	ModelID          string
	Format           release.Format
	MaxContextTokens int
	MaxPromptTokens  int
	MaxRetries       int
	Timeout          time.Duration
	CollectorTimeout time.Duration
	RunTimeout       time.Duration
	MaxResponseBytes int

	ReleaseTag  string
	OpenAPIFile string
	Repository  string
	Platform    string
	GitLabURL   string

	OutputDir string
	Encoding  string
	Commit    bool
	DocsURL   string
	LLMURL    string
	LogLevel  slog.Level

	// PromptsDir holds template overrides searched before the repository's
	// .announce/prompts and prompts/ directories.
	PromptsDir string

	NotifyWebhook string
	SlackWebhook  string

	GitHubToken          string
	GitLabToken          string
	OpenAIAPIKey         string
	GitHubAppID          int64
	GitHubInstallationID int64
	GitHubAppKeyFile     string

	EventPath  string
	StepOutput string
	Act        bool
	NoColor    bool
}

// Load validates a Resolved configuration into Settings. Errors wrap
// ErrInvalidValue and name the offending key.
func Load(c *Resolved) (*Settings, error) {
	s := &Settings{
		ModelID:          c.Get(KeyModelID),
		ReleaseTag:       c.Get(KeyReleaseTag),
		OpenAPIFile:      c.Get(KeyOpenAPIFile),
		Repository:       c.Get(KeyRepository),
		GitLabURL:        c.Get(KeyGitLabURL),
		OutputDir:        c.Get(KeyOutputDir),
		DocsURL:          c.Get(KeyDocsURL),
		PromptsDir:       c.Get(KeyPromptsDir),
		LLMURL:           c.Get(KeyLLMURL),
		NotifyWebhook:    c.Get(KeyNotifyWebhook),
		SlackWebhook:     c.Get(KeySlackWebhook),
		GitHubToken:      c.Get(KeyGitHubToken),
		GitLabToken:      c.Get(KeyGitLabToken),
		OpenAIAPIKey:     c.Get(KeyOpenAIAPIKey),
		GitHubAppKeyFile: c.Get(KeyGitHubAppKeyFile),
		EventPath:        c.Get(KeyEventPath),
		StepOutput:       c.Get(KeyStepOutput),
	}

	var err error
	if s.ModelID == "" {
		return nil, invalid(KeyModelID, "", "must not be empty")
	}
	if s.ReleaseTag == "" {
		s.ReleaseTag = release.LatestTag
	}

	if s.Format, err = release.ParseFormat(c.Get(KeyOutputFormat)); err != nil {
		return nil, invalid(KeyOutputFormat, c.Get(KeyOutputFormat), "want markdown, mkdocs or jekyll")
	}

	ints := []struct {
		key string
		dst *int
		min int
	}{
		{KeyMaxContextTokens, &s.MaxContextTokens, 1},
		{KeyMaxPromptTokens, &s.MaxPromptTokens, 1},
		{KeyMaxRetries, &s.MaxRetries, 0},
		{KeyMaxResponseBytes, &s.MaxResponseBytes, 1},
	}
	for _, f := range ints {
		if *f.dst, err = parseInt(c, f.key, f.min); err != nil {
			return nil, err
		}
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{KeyTimeoutSeconds, &s.Timeout},
		{KeyCollectorTimeout, &s.CollectorTimeout},
		{KeyRunTimeout, &s.RunTimeout},
	}
	for _, f := range durations {
		n, err := parseInt(c, f.key, 1)
		if err != nil {
			return nil, err
		}
		*f.dst = time.Duration(n) * time.Second
	}

	if s.Commit, err = parseBool(c, KeyCommit); err != nil {
		return nil, err
	}
	if s.Act, err = parseBool(c, KeyAct); err != nil {
		return nil, err
	}
	if s.NoColor, err = parseBool(c, KeyNoColor); err != nil {
		return nil, err
	}

	s.Platform = strings.ToLower(c.Get(KeyPlatform))
	switch s.Platform {
	case PlatformGitHub, PlatformGitLab, PlatformEvent, PlatformLocal:
	case "":
		s.Platform = PlatformGitHub
	default:
		return nil, invalid(KeyPlatform, s.Platform, "want github, gitlab, event or local")
	}
	// A local act run has an event file but no API access.
	if s.Act && c.Source(KeyPlatform) == SourceDefault {
		s.Platform = PlatformEvent
	}

	s.Encoding = strings.ToLower(c.Get(KeyEncoding))
	switch s.Encoding {
	case EncodingRaw, EncodingBase64:
	case "":
		s.Encoding = EncodingRaw
	default:
		return nil, invalid(KeyEncoding, s.Encoding, "want raw or base64")
	}

	if err := s.LogLevel.UnmarshalText([]byte(orDefault(c.Get(KeyLogLevel), "info"))); err != nil {
		return nil, invalid(KeyLogLevel, c.Get(KeyLogLevel), "want debug, info, warn or error")
	}

	if v := c.Get(KeyGitHubAppID); v != "" {
		if s.GitHubAppID, err = strconv.ParseInt(v, 10, 64); err != nil {
			return nil, invalid(KeyGitHubAppID, v, "must be an integer")
		}
	}
	if v := c.Get(KeyGitHubInstallID); v != "" {
		if s.GitHubInstallationID, err = strconv.ParseInt(v, 10, 64); err != nil {
			return nil, invalid(KeyGitHubInstallID, v, "must be an integer")
		}
	}

	return s, nil
}

func parseInt(c *Resolved, key string, minimum int) (int, error) {
	v := c.Get(key)
	if v == "" {
		return 0, invalid(key, v, "must be set")
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, invalid(key, v, "must be an integer")
	}
	if n < minimum {
		return 0, invalid(key, v, fmt.Sprintf("must be >= %d", minimum))
	}
	return n, nil
}

func parseBool(c *Resolved, key string) (bool, error) {
	v := c.Get(key)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return false, invalid(key, v, "must be true or false")
	}
	return b, nil
}

func invalid(key, value, why string) error {
	return fmt.Errorf("%w: %s=%q: %s", ErrInvalidValue, key, value, why)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
