package artifact

import (
	"regexp"
	"strings"
)

var (
	blankRuns        = regexp.MustCompile(`\n{3,}`)
	releaseLinkRegex = regexp.MustCompile(`https://github\.com/[^/\s]+/[^/\s]+/releases/tag/[^\s)\]>"']+`)
	wrapperFence     = regexp.MustCompile("^(```|~~~)(markdown|md)?[ \t]*$")
)

// Normalize fixes whitespace only: a leading byte order mark, CRLF line
// endings, trailing spaces, runs of blank lines, and leading or trailing
// blank lines. The result ends in exactly one newline, or is empty.
func Normalize(text string) string {
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	text = blankRuns.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")

	text = strings.Trim(text, "\n")
	if text == "" {
		return ""
	}
	return text + "\n"
}

// unwrapFence removes a code fence wrapped around the whole document, as
// chat models tend to add.
func unwrapFence(text string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) < 2 {
		return text
	}
	first, last := strings.TrimSpace(lines[0]), strings.TrimSpace(lines[len(lines)-1])
	m := wrapperFence.FindStringSubmatch(first)
	if m == nil || last != m[1] {
		return text
	}
	inner := lines[1 : len(lines)-1]
	for _, line := range inner {
		if fenceMarker(line) != "" {
			// Inner fences mean the outer pair is not a simple wrapper.
			return text
		}
	}
	return strings.Join(inner, "\n") + "\n"
}

// adjustHeadings promotes the first heading to level 1 and shifts the rest by
// the same amount, keeping every later heading at level 2 or deeper.
func adjustHeadings(body string) (string, string) {
	hs := headings(body)
	if len(hs) == 0 {
		return body, ""
	}

	lines := strings.Split(body, "\n")
	delta := hs[0].level - 1
	for i, h := range hs {
		level := h.level - delta
		if i > 0 && level < 2 {
			level = 2
		}
		lines[h.line] = strings.Repeat("#", level) + " " + h.text
	}
	return strings.Join(lines, "\n"), hs[0].text
}

// CanonicalizeReleaseLinks rewrites every GitHub release-tag URL to point at
// repo's release for tag.
func CanonicalizeReleaseLinks(text, repo, tag string) string {
	if repo == "" || tag == "" {
		return text
	}
	canonical := "https://github.com/" + repo + "/releases/tag/" + tag
	return releaseLinkRegex.ReplaceAllLiteralString(text, canonical)
}
