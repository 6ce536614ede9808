package artifact

import (
	"fmt"
	"time"

	"github.com/randalmurphal/announce/release"
)

// Artifact is a validated, formatted announcement.
type Artifact struct {
	Content string
	Format  release.Format

	// Title is the text of the first heading.
	Title string
}

// Options carries release identity for front matter and links.
type Options struct {
	Release release.Ref

	// Now dates the front matter when the release has no creation time.
	Now func() time.Time
}

func (o Options) date() string {
	t := o.Release.CreatedAt
	if t.IsZero() {
		now := o.Now
		if now == nil {
			now = time.Now
		}
		t = now()
	}
	return t.UTC().Format(time.DateOnly)
}

// Finalize validates generated text and renders it for format. It is
// idempotent: finalizing an artifact's Content again yields the same
// Content. On rejection it returns a *ValidationError carrying the raw text.
func Finalize(res release.GenerationResult, format release.Format, opts Options) (*Artifact, error) {
	if format == "" {
		format = release.FormatMarkdown
	}

	text := Normalize(unwrapFence(Normalize(res.Text)))
	if reasons := Validate(text); len(reasons) > 0 {
		return nil, &ValidationError{Reasons: reasons, Raw: res.Text}
	}

	var (
		content string
		title   string
		err     error
	)
	switch format {
	case release.FormatMarkdown:
		content, title = text, firstHeading(text)
	case release.FormatMkDocs:
		content, title, err = formatMkDocs(text, opts)
	case release.FormatJekyll:
		content, title, err = formatJekyll(text, opts)
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
	if err != nil {
		return nil, &ValidationError{Reasons: []string{err.Error()}, Raw: res.Text}
	}

	return &Artifact{Content: content, Format: format, Title: title}, nil
}

func firstHeading(text string) string {
	_, body, _ := ParseFrontMatter(text)
	if hs := headings(body); len(hs) > 0 {
		return hs[0].text
	}
	return ""
}

// formatMkDocs sets heading levels for a docs page and writes title, date
// and tags front matter.
func formatMkDocs(text string, opts Options) (string, string, error) {
	fm, body, err := ParseFrontMatter(text)
	if err != nil {
		return "", "", err
	}
	if fm == nil {
		fm = NewFrontMatter()
	}

	body, title := adjustHeadings(body)
	body = CanonicalizeReleaseLinks(body, opts.Release.Repository, opts.Release.Tag)

	fm.SetString("title", title, true)
	fm.SetString("date", opts.date(), false)
	if err := fm.Set("tags", []string{"release"}); err != nil {
		return "", "", err
	}

	out, err := WriteFrontMatter(fm, Normalize(body))
	return out, title, err
}

// formatJekyll writes the blog post front matter. Keys the model supplied
// are kept unless they conflict with release identity.
func formatJekyll(text string, opts Options) (string, string, error) {
	fm, body, err := ParseFrontMatter(text)
	if err != nil {
		return "", "", err
	}
	if fm == nil {
		fm = NewFrontMatter()
	}

	body = CanonicalizeReleaseLinks(body, opts.Release.Repository, opts.Release.Tag)
	title := fmt.Sprintf("Release %s - Highlights", opts.Release.Tag)

	fm.SetString("layout", "post", false)
	fm.SetString("title", title, true)
	fm.SetString("date", opts.date(), false)
	fm.SetString("categories", "release", false)

	out, err := WriteFrontMatter(fm, Normalize(body))
	return out, title, err
}
