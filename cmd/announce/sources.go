package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2"

	"github.com/randalmurphal/announce/auth"
	"github.com/randalmurphal/announce/collect"
	"github.com/randalmurphal/announce/config"
	annerrors "github.com/randalmurphal/announce/errors"
	"github.com/randalmurphal/announce/git"
)

// sources is the resolver and collectors for one platform.
type sources struct {
	resolver   collect.Resolver
	collectors []collect.Collector

	// endpoint names the remote API for connection error messages.
	endpoint string
}

// buildSources wires the release resolver and change collectors for the
// configured platform. g is nil outside a git repository.
func buildSources(s *config.Settings, g *git.Context, root string) (*sources, error) {
	schemaPath := s.OpenAPIFile
	if !filepath.IsAbs(schemaPath) {
		schemaPath = filepath.Join(root, schemaPath)
	}
	current := collect.FileSnapshot(schemaPath)

	switch s.Platform {
	case config.PlatformGitHub:
		return githubSources(s, g, current)
	case config.PlatformGitLab:
		return gitlabSources(s, g, current)
	case config.PlatformEvent:
		if s.EventPath == "" {
			return nil, fmt.Errorf("%w: event platform needs GITHUB_EVENT_PATH or event_path", config.ErrInvalidValue)
		}
		ev, err := collect.NewEventSource(s.EventPath)
		if err != nil {
			return nil, err
		}
		return &sources{
			resolver: ev,
			collectors: []collect.Collector{
				ev.PullRequests(),
				&collect.APIDiffCollector{Path: s.OpenAPIFile, Current: current},
			},
		}, nil
	case config.PlatformLocal:
		if g == nil {
			return nil, annerrors.NewNotInGitRepoError(withMessenger)
		}
		repo := s.Repository
		if repo == "" {
			repo, _ = repositoryFromRemote(g)
		}
		local := collect.NewGitSource(g, repo)
		return &sources{
			resolver: local,
			collectors: []collect.Collector{
				local.Commits(),
				&collect.APIDiffCollector{Path: s.OpenAPIFile, Current: current, Previous: local.Snapshot(s.OpenAPIFile)},
			},
		}, nil
	default:
		return nil, fmt.Errorf("%w: platform %q", config.ErrInvalidValue, s.Platform)
	}
}

func githubSources(s *config.Settings, g *git.Context, current collect.SnapshotFunc) (*sources, error) {
	repo := s.Repository
	var remote string
	if g != nil {
		remote, _ = g.GetRemoteURL("origin")
	}
	if repo == "" && remote != "" {
		repo, _ = repositoryFromRemote(g)
	}
	if repo == "" {
		return nil, annerrors.NewNoRepositoryError(withMessenger)
	}

	baseURL := collect.BaseURL(remote)
	ts, err := githubTokenSource(s, baseURL)
	if err != nil {
		return nil, err
	}
	client, err := collect.NewGitHubClient(ts, baseURL)
	if err != nil {
		return nil, err
	}
	gh, err := collect.NewGitHubSource(client, repo)
	if err != nil {
		return nil, err
	}

	endpoint := auth.DefaultGitHubAPIURL
	if baseURL != "" {
		endpoint = baseURL
	}
	return &sources{
		resolver: gh,
		collectors: []collect.Collector{
			gh.PullRequests(),
			gh.Commits(),
			&collect.APIDiffCollector{Path: s.OpenAPIFile, Current: current, Previous: gh.Snapshot(s.OpenAPIFile)},
		},
		endpoint: endpoint,
	}, nil
}

// githubTokenSource prefers GitHub App credentials over a static token.
// With neither, requests are anonymous.
func githubTokenSource(s *config.Settings, baseURL string) (oauth2.TokenSource, error) {
	if s.GitHubAppID != 0 {
		key, err := auth.LoadAppKey(s.GitHubAppKeyFile)
		if err != nil {
			return nil, err
		}
		apiURL := ""
		if baseURL != "" {
			apiURL = strings.TrimSuffix(baseURL, "/") + "/api/v3"
		}
		app, err := auth.NewAppTokenSource(auth.AppConfig{
			AppID:          s.GitHubAppID,
			InstallationID: s.GitHubInstallationID,
			PrivateKey:     key,
			BaseURL:        apiURL,
		})
		if err != nil {
			return nil, err
		}
		return app.Reusable(), nil
	}
	if s.GitHubToken != "" {
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: s.GitHubToken}), nil
	}
	return nil, nil
}

func gitlabSources(s *config.Settings, g *git.Context, current collect.SnapshotFunc) (*sources, error) {
	project := s.Repository
	baseURL := s.GitLabURL
	if g != nil {
		if remote, err := g.GetRemoteURL("origin"); err == nil {
			if project == "" {
				project, _ = repositoryFromRemote(g)
			}
			if baseURL == "" {
				if host := collect.BaseURL(remote); host != "" {
					baseURL = host + "/api/v4"
				}
			}
		}
	}
	if project == "" {
		return nil, annerrors.NewNoRepositoryError(withMessenger)
	}

	client, err := collect.NewGitLabClient(s.GitLabToken, baseURL)
	if err != nil {
		return nil, err
	}
	gl, err := collect.NewGitLabSource(client, project)
	if err != nil {
		return nil, err
	}

	api := &collect.APIDiffCollector{Path: s.OpenAPIFile, Current: current}
	if g != nil {
		api.Previous = collect.GitSnapshot(g, s.OpenAPIFile)
	}

	endpoint := "https://gitlab.com"
	if baseURL != "" {
		endpoint = baseURL
	}
	return &sources{
		resolver:   gl,
		collectors: []collect.Collector{gl.MergeRequests(), api},
		endpoint:   endpoint,
	}, nil
}

func repositoryFromRemote(g *git.Context) (string, error) {
	remote, err := g.GetRemoteURL("origin")
	if err != nil {
		return "", err
	}
	owner, repo, err := collect.ParseRepoFromURL(remote)
	if err != nil {
		return "", err
	}
	return owner + "/" + repo, nil
}
