package git

import (
	"fmt"
	"strings"
	"time"
)

const (
	fieldSep  = "\x1f"
	recordSep = "\x1e"
)

// Commit is one entry of the commit log.
type Commit struct {
	SHA     string
	Subject string
	Body    string
	When    time.Time
}

// Tags returns tags newest first by creation date.
func (g *Context) Tags() ([]string, error) {
	out, err := g.runGit("tag", "--list", "--sort=-creatordate")
	if err != nil {
		return nil, &Error{Op: "list tags", Err: err}
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

// TagExists reports whether refs/tags/<tag> exists.
func (g *Context) TagExists(tag string) bool {
	_, err := g.runGit("rev-parse", "--verify", "--quiet", "refs/tags/"+tag)
	return err == nil
}

// LatestTag returns the most recent tag reachable from HEAD.
func (g *Context) LatestTag() (string, error) {
	tag, err := g.runGit("describe", "--tags", "--abbrev=0")
	if err != nil {
		return "", ErrNoTags
	}
	return tag, nil
}

// PreviousTag returns the tag before tag in its ancestry. It returns
// ErrNoPreviousTag for the first tagged release.
func (g *Context) PreviousTag(tag string) (string, error) {
	prev, err := g.runGit("describe", "--tags", "--abbrev=0", tag+"^")
	if err != nil {
		return "", ErrNoPreviousTag
	}
	return prev, nil
}

// RefTime returns the committer date of the commit ref points at.
func (g *Context) RefTime(ref string) (time.Time, error) {
	out, err := g.runGit("log", "-1", "--format=%cI", ref)
	if err != nil {
		return time.Time{}, &Error{Op: "read ref time", Err: err}
	}
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(out))
	if err != nil {
		return time.Time{}, &Error{Op: "parse ref time", Output: out, Err: err}
	}
	return t, nil
}

// Log returns commits in from..to, newest first. An empty from lists all
// ancestors of to.
func (g *Context) Log(from, to string) ([]Commit, error) {
	rangeSpec := to
	if from != "" {
		rangeSpec = from + ".." + to
	}
	format := "--format=%H" + fieldSep + "%s" + fieldSep + "%b" + fieldSep + "%cI" + recordSep
	out, err := g.runGit("log", "--no-merges", format, rangeSpec)
	if err != nil {
		return nil, &Error{Op: "log", Cmd: "git log " + rangeSpec, Err: err}
	}
	return parseLog(out)
}

// Show returns the content of path at ref. It returns ErrPathNotFound when
// the path does not exist at that ref.
func (g *Context) Show(ref, path string) (string, error) {
	out, err := g.runGit("show", ref+":"+path)
	if err != nil {
		msg := err.Error()
		if strings.Contains(msg, "does not exist") || strings.Contains(msg, "exists on disk, but not in") {
			return "", fmt.Errorf("%w: %s at %s", ErrPathNotFound, path, ref)
		}
		return "", &Error{Op: "show", Cmd: "git show " + ref + ":" + path, Err: err}
	}
	return out, nil
}

func parseLog(out string) ([]Commit, error) {
	var commits []Commit
	for _, record := range strings.Split(out, recordSep) {
		record = strings.TrimLeft(record, "\n")
		if strings.TrimSpace(record) == "" {
			continue
		}
		fields := strings.Split(record, fieldSep)
		if len(fields) != 4 {
			return nil, &Error{Op: "parse log", Output: record, Err: fmt.Errorf("expected 4 fields, got %d", len(fields))}
		}
		when, err := time.Parse(time.RFC3339, strings.TrimSpace(fields[3]))
		if err != nil {
			return nil, &Error{Op: "parse log", Output: record, Err: err}
		}
		commits = append(commits, Commit{
			SHA:     fields[0],
			Subject: fields[1],
			Body:    strings.TrimSpace(fields[2]),
			When:    when,
		})
	}
	return commits, nil
}
