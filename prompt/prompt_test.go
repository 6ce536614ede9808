package prompt

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLoader(t *testing.T) {
	loader := NewLoader("/tmp/project")

	if len(loader.dirs) != 2 || loader.dirs[0] != filepath.Join("/tmp/project", ".announce", "prompts") {
		t.Errorf("dirs = %v", loader.dirs)
	}
	if loader.cache == nil || loader.funcMap == nil {
		t.Error("cache and funcMap should be initialized")
	}
}

func TestLoader_LoadEmbedded(t *testing.T) {
	loader := NewLoader("/nonexistent")

	content, err := loader.Load("format_markdown")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !strings.Contains(content, "GitHub Flavored") {
		t.Errorf("content = %q", content)
	}

	for _, name := range []string{"announcement", "format_jekyll", "format_markdown", "format_mkdocs", "system"} {
		if _, err := loader.loadRaw(name); err != nil {
			t.Errorf("embedded prompt %s: %v", name, err)
		}
	}
}

func TestLoader_Override(t *testing.T) {
	dir := t.TempDir()
	promptsDir := filepath.Join(dir, ".announce", "prompts")
	if err := os.MkdirAll(promptsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(promptsDir, "format_markdown.txt"), []byte("Plain text for {{.release_tag}}."), 0o644); err != nil {
		t.Fatal(err)
	}

	loader := NewLoader(dir)
	content, err := loader.LoadWithVars("format_markdown", map[string]any{"release_tag": "v1.2.0"})
	if err != nil {
		t.Fatalf("LoadWithVars: %v", err)
	}
	if content != "Plain text for v1.2.0." {
		t.Errorf("content = %q", content)
	}
}

func TestLoader_AddSearchDir(t *testing.T) {
	extra := t.TempDir()
	if err := os.WriteFile(filepath.Join(extra, "custom.txt"), []byte("custom"), 0o644); err != nil {
		t.Fatal(err)
	}
	loader := NewLoader(t.TempDir())
	if _, err := loader.Load("custom"); !errors.Is(err, ErrPromptNotFound) {
		t.Fatalf("Load(custom) before AddSearchDir error = %v", err)
	}
	loader.AddSearchDir(extra)
	if content, err := loader.Load("custom"); err != nil || content != "custom" {
		t.Errorf("Load(custom) = %q, %v", content, err)
	}
}

func TestLoader_Errors(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "prompts"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "prompts", "broken.txt"), []byte("{{.unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "prompts", "strict.txt"), []byte("{{.missing}}"), 0o644); err != nil {
		t.Fatal(err)
	}
	loader := NewLoader(dir)

	if _, err := loader.Load("nonexistent"); !errors.Is(err, ErrPromptNotFound) {
		t.Errorf("error = %v, want ErrPromptNotFound", err)
	}
	if _, err := loader.Load("broken"); err == nil {
		t.Error("expected parse error")
	}
	if _, err := loader.LoadWithVars("strict", map[string]any{}); err == nil {
		t.Error("expected error for missing variable")
	}
}

func TestFuncMap(t *testing.T) {
	loader := NewLoader(t.TempDir())

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "funcs.txt"), []byte(`{{title "added"}}|{{indent 2 "a\nb"}}|{{default "N/A" ""}}|{{upper "hi"}}|{{quote "x"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	loader.AddSearchDir(dir)

	got, err := loader.Load("funcs")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if want := "Added|  a\n  b|N/A|HI|\"x\""; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
