package artifact

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/randalmurphal/announce/prompt"
)

var (
	headingPattern      = regexp.MustCompile(`^(#{1,6})[ \t]+(.*?)[ \t#]*$`)
	templateActionRegex = regexp.MustCompile(`\{\{[^{}]*\}\}`)
	bracketPlaceholder  = regexp.MustCompile(`(?i)\[(insert|your|placeholder|tbd)\b[^\]]*\]`)
)

// slotMarkers are the single-brace forms of prompt slot names, which a
// model sometimes copies from format examples.
var slotMarkers = func() []string {
	var out []string
	for _, name := range prompt.SlotNames() {
		out = append(out, "{"+name+"}")
	}
	return out
}()

// Validate returns the reasons text is not publishable. A nil result means
// the text passes.
func Validate(text string) []string {
	if strings.TrimSpace(text) == "" {
		return []string{"output is empty"}
	}

	var reasons []string
	_, body, err := ParseFrontMatter(text)
	if err != nil {
		reasons = append(reasons, err.Error())
		body = text
	}

	prose, unterminated := outsideFences(body)
	if unterminated {
		reasons = append(reasons, "unterminated code block (output looks truncated)")
	}
	if len(headings(body)) == 0 {
		reasons = append(reasons, "no heading found")
	}
	if found := placeholders(prose); len(found) > 0 {
		reasons = append(reasons, fmt.Sprintf("unresolved placeholder %s", strings.Join(found, ", ")))
	}
	return reasons
}

func placeholders(prose string) []string {
	seen := make(map[string]bool)
	var found []string
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			found = append(found, s)
		}
	}

	for _, m := range templateActionRegex.FindAllString(prose, -1) {
		add(m)
	}
	for _, marker := range slotMarkers {
		if strings.Contains(prose, marker) {
			add(marker)
		}
	}
	for _, m := range bracketPlaceholder.FindAllString(prose, -1) {
		add(m)
	}
	if strings.Contains(prose, "<no value>") {
		add("<no value>")
	}
	return found
}

// outsideFences returns the lines of text that are not inside fenced code
// blocks, and whether a fence was left open.
func outsideFences(text string) (string, bool) {
	var b strings.Builder
	fence := ""
	for _, line := range strings.Split(text, "\n") {
		if f := fenceMarker(line); f != "" {
			switch {
			case fence == "":
				fence = f
				continue
			case strings.HasPrefix(f, fence):
				fence = ""
				continue
			}
		}
		if fence == "" {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return b.String(), fence != ""
}

func fenceMarker(line string) string {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 {
		return ""
	}
	for _, ch := range []string{"`", "~"} {
		n := len(trimmed) - len(strings.TrimLeft(trimmed, ch))
		if n >= 3 {
			return strings.Repeat(ch, n)
		}
	}
	return ""
}

type heading struct {
	line  int
	level int
	text  string
}

// headings lists ATX headings outside code fences.
func headings(text string) []heading {
	var out []heading
	fence := ""
	for i, line := range strings.Split(text, "\n") {
		if f := fenceMarker(line); f != "" {
			if fence == "" {
				fence = f
			} else if strings.HasPrefix(f, fence) {
				fence = ""
			}
			continue
		}
		if fence != "" {
			continue
		}
		if m := headingPattern.FindStringSubmatch(line); m != nil {
			out = append(out, heading{line: i, level: len(m[1]), text: m[2]})
		}
	}
	return out
}
