package publish

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/randalmurphal/announce/git"
	"github.com/randalmurphal/announce/pipeline"
	"github.com/randalmurphal/announce/release"
)

// Encodings for the written file.
const (
	EncodingRaw    = "raw"
	EncodingBase64 = "base64"
)

// Defaults.
const (
	DefaultDir = "announcements"
	DraftsDir  = "drafts"
)

// Publisher persists run output. Successful artifacts go to their final
// path; text that failed validation goes to a drafts directory for review.
type Publisher struct {
	// Root anchors relative paths, normally the repository root.
	Root string

	// Dir holds announcements and drafts. A relative Dir is under Root.
	Dir string

	Encoding string

	// Git and Commit enable committing published artifacts. Drafts are
	// never committed.
	Git    *git.Context
	Commit bool

	// Retention prunes old drafts after a draft is written.
	Retention *RetentionConfig

	Now func() time.Time
}

// Result describes what Publish wrote.
type Result struct {
	Path      string
	Draft     bool
	Committed bool
	Encoding  string
}

// Publish writes the report's artifact, or its raw text as a draft for a
// partial run. A failed run returns ErrNothingToPublish.
func (p *Publisher) Publish(report *pipeline.Report) (Result, error) {
	encoding := p.Encoding
	if encoding == "" {
		encoding = EncodingRaw
	}
	if encoding != EncodingRaw && encoding != EncodingBase64 {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownEncoding, encoding)
	}

	var (
		content string
		path    string
		draft   bool
	)
	switch {
	case report.Status == pipeline.StatusSuccess && report.Artifact != nil:
		content = report.Artifact.Content
		path = p.ArtifactPath(report.Release.Tag, report.Artifact.Format)
	case report.Status == pipeline.StatusPartial && report.Raw != "":
		content = report.Raw
		path = p.DraftPath(report.Release.Tag)
		draft = true
	default:
		return Result{}, ErrNothingToPublish
	}

	data := []byte(content)
	if encoding == EncodingBase64 {
		data = []byte(base64.StdEncoding.EncodeToString(data))
		path += ".b64"
	}

	if err := AtomicWriteFile(path, data, 0o644); err != nil {
		return Result{}, fmt.Errorf("write %s: %w", path, err)
	}
	res := Result{Path: path, Draft: draft, Encoding: encoding}
	slog.Info("announcement written", "path", path, "draft", draft, "encoding", encoding)

	if draft {
		if p.Retention != nil {
			if _, err := PruneDrafts(filepath.Dir(path), *p.Retention, p.now()(), false); err != nil {
				slog.Warn("draft pruning failed", "error", err)
			}
		}
		return res, nil
	}

	if p.Commit && p.Git != nil {
		committed, err := p.commit(path, report.Release)
		if err != nil {
			return res, err
		}
		res.Committed = committed
	}
	return res, nil
}

// ArtifactPath is where a successful artifact for tag is written.
// MkDocs pages live in the docs tree; everything else is dated.
func (p *Publisher) ArtifactPath(tag string, format release.Format) string {
	name := safeTag(tag)
	if format == release.FormatMkDocs {
		return filepath.Join(p.Root, "docs", "releases", name+".md")
	}
	return filepath.Join(p.base(), p.date()+"-"+name+".md")
}

// DraftPath is where rejected text for tag is written.
func (p *Publisher) DraftPath(tag string) string {
	return filepath.Join(p.base(), DraftsDir, p.date()+"-"+safeTag(tag)+".draft.md")
}

func (p *Publisher) commit(path string, ref release.Ref) (bool, error) {
	if err := p.Git.Stage(path); err != nil {
		return false, fmt.Errorf("stage announcement: %w", err)
	}

	msg := git.NewCommitMessage(git.CommitTypeDocs, "announce "+ref.Tag).
		WithScope("release").
		WithRef(ref.URL)
	if err := msg.Validate(); err != nil {
		return false, err
	}

	if err := p.Git.Commit(msg.String()); err != nil {
		if errors.Is(err, git.ErrNothingToCommit) {
			return false, nil
		}
		return false, fmt.Errorf("commit announcement: %w", err)
	}
	return true, nil
}

func (p *Publisher) base() string {
	dir := p.Dir
	if dir == "" {
		dir = DefaultDir
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(p.Root, dir)
}

func (p *Publisher) date() string {
	return p.now()().UTC().Format(time.DateOnly)
}

func (p *Publisher) now() func() time.Time {
	if p.Now != nil {
		return p.Now
	}
	return time.Now
}

// safeTag makes a tag usable as a file name.
func safeTag(tag string) string {
	return strings.NewReplacer("/", "-", "\\", "-", " ", "-").Replace(tag)
}
