package collect

import (
	"errors"
	"testing"
)

func TestParseRepoFromURL(t *testing.T) {
	tests := []struct {
		url       string
		wantOwner string
		wantRepo  string
		wantErr   bool
	}{
		{"https://github.com/acme/widgets.git", "acme", "widgets", false},
		{"https://github.com/acme/widgets", "acme", "widgets", false},
		{"git@github.com:acme/widgets.git", "acme", "widgets", false},
		{"ssh://git@gitlab.example.com:2222/group/sub/project.git", "group/sub", "project", false},
		{"https://gitlab.com/group/project/", "group", "project", false},
		{"git@github.com", "", "", true},
		{"https://github.com/acme", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			owner, repo, err := ParseRepoFromURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRepoFromURL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidRepository) {
					t.Errorf("error = %v, want ErrInvalidRepository", err)
				}
				return
			}
			if owner != tt.wantOwner || repo != tt.wantRepo {
				t.Errorf("got %s/%s, want %s/%s", owner, repo, tt.wantOwner, tt.wantRepo)
			}
		})
	}
}

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"git@github.com:acme/widgets.git", PlatformGitHub},
		{"https://gitlab.example.com/acme/widgets.git", PlatformGitLab},
	}
	for _, tt := range tests {
		if got, err := DetectPlatform(tt.url); err != nil || got != tt.want {
			t.Errorf("DetectPlatform(%q) = %q, %v", tt.url, got, err)
		}
	}
	if _, err := DetectPlatform("https://bitbucket.org/acme/widgets"); !errors.Is(err, ErrUnknownPlatform) {
		t.Errorf("error = %v, want ErrUnknownPlatform", err)
	}
}

func TestBaseURL(t *testing.T) {
	tests := map[string]string{
		"https://gitlab.example.com/acme/widgets.git": "https://gitlab.example.com",
		"https://github.com/acme/widgets":             "",
		"git@gitlab.example.com:acme/widgets.git":     "",
	}
	for in, want := range tests {
		if got := BaseURL(in); got != want {
			t.Errorf("BaseURL(%q) = %q, want %q", in, got, want)
		}
	}
}
