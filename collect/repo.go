package collect

import (
	"fmt"
	"strings"
)

// Platforms recognized from remote URLs.
const (
	PlatformGitHub = "github"
	PlatformGitLab = "gitlab"
)

// DetectPlatform reports the hosting platform of a git remote URL.
func DetectPlatform(remoteURL string) (string, error) {
	lower := strings.ToLower(remoteURL)

	switch {
	case strings.Contains(lower, "github.com"):
		return PlatformGitHub, nil
	case strings.Contains(lower, "gitlab"):
		return PlatformGitLab, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownPlatform, remoteURL)
	}
}

// ParseRepoFromURL extracts owner and repo from a git remote URL. GitLab
// subgroups are kept in owner ("group/sub").
func ParseRepoFromURL(remoteURL string) (owner, repo string, err error) {
	path := ""
	switch {
	case strings.HasPrefix(remoteURL, "git@"):
		// git@github.com:owner/repo.git
		_, after, ok := strings.Cut(remoteURL, ":")
		if !ok {
			return "", "", fmt.Errorf("%w: invalid SSH URL %q", ErrInvalidRepository, remoteURL)
		}
		path = after
	case strings.HasPrefix(remoteURL, "ssh://"):
		// ssh://git@host[:port]/owner/repo.git
		rest := strings.TrimPrefix(remoteURL, "ssh://")
		_, after, ok := strings.Cut(rest, "/")
		if !ok {
			return "", "", fmt.Errorf("%w: invalid SSH URL %q", ErrInvalidRepository, remoteURL)
		}
		path = after
	default:
		rest := strings.TrimPrefix(strings.TrimPrefix(remoteURL, "https://"), "http://")
		_, after, ok := strings.Cut(rest, "/")
		if !ok {
			return "", "", fmt.Errorf("%w: invalid URL %q", ErrInvalidRepository, remoteURL)
		}
		path = after
	}

	return SplitRepository(strings.TrimSuffix(strings.TrimSuffix(path, "/"), ".git"))
}

// SplitRepository splits "owner/name" (or "group/sub/name").
func SplitRepository(full string) (owner, repo string, err error) {
	full = strings.Trim(full, "/")
	i := strings.LastIndex(full, "/")
	if i <= 0 || i == len(full)-1 {
		return "", "", fmt.Errorf("%w: %q (want owner/name)", ErrInvalidRepository, full)
	}
	return full[:i], full[i+1:], nil
}

// BaseURL returns the scheme and host of an HTTPS remote for self-hosted
// instances, or "" for the public hosts and SSH remotes.
func BaseURL(remoteURL string) string {
	if !strings.HasPrefix(remoteURL, "https://") && !strings.HasPrefix(remoteURL, "http://") {
		return ""
	}
	scheme, rest, _ := strings.Cut(remoteURL, "://")
	host, _, _ := strings.Cut(rest, "/")
	if host == "github.com" || host == "gitlab.com" {
		return ""
	}
	return scheme + "://" + host
}
