package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/announce/collect"
	"github.com/randalmurphal/announce/pipeline"
	"github.com/randalmurphal/announce/publish"
	"github.com/randalmurphal/announce/release"
)

func TestUI_NotATerminal(t *testing.T) {
	var buf bytes.Buffer
	u := newUI(&buf, false)

	assert.False(t, u.tty)
	assert.False(t, u.color)
	assert.Equal(t, defaultWidth, u.width)

	u.spin("working")()
	assert.Empty(t, buf.String(), "no spinner off a terminal")
}

func TestUI_Summary(t *testing.T) {
	var buf bytes.Buffer
	u := newUI(&buf, true)

	u.summary(&pipeline.Report{
		RunID:      "run-1",
		Status:     pipeline.StatusPartial,
		Release:    release.Ref{Tag: "v1.2.0"},
		Truncated:  true,
		Duration:   1500 * time.Millisecond,
		Diagnostic: "validation failure: " + strings.Repeat("unresolved placeholder {{x}}; ", 10),
		Collectors: []collect.Output{
			collect.OK(collect.NameEvent, nil, nil),
			collect.Unavailable(collect.NameAPIDiff, "schema openapi.yaml not found"),
		},
	}, publish.Result{Path: "announcements/drafts/x.draft.md", Draft: true})

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "partial v1.2.0 [run-1, 1.5s]\n"), out)
	assert.Contains(t, out, "  draft announcements/drafts/x.draft.md\n")
	assert.Contains(t, out, "context truncated")
	assert.Contains(t, out, "unavailable api_diff: schema openapi.yaml not found")
	assert.NotContains(t, out, "ok event")
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		assert.LessOrEqual(t, len(line), defaultWidth, "line not wrapped: %q", line)
	}
}

func TestUI_Render(t *testing.T) {
	u := newUI(&bytes.Buffer{}, true)
	out, err := u.render("# Widgets 1.2\n\nBulk **export**.\n")
	require.NoError(t, err)
	assert.Contains(t, out, "Widgets 1.2")
	assert.Contains(t, out, "export")
}
