package git

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/muesli/reflow/wordwrap"
)

// CommitType represents the type of change in a conventional commit.
type CommitType string

const (
	CommitTypeFeat     CommitType = "feat"
	CommitTypeFix      CommitType = "fix"
	CommitTypeDocs     CommitType = "docs"
	CommitTypeStyle    CommitType = "style"
	CommitTypeRefactor CommitType = "refactor"
	CommitTypePerf     CommitType = "perf"
	CommitTypeTest     CommitType = "test"
	CommitTypeBuild    CommitType = "build"
	CommitTypeCI       CommitType = "ci"
	CommitTypeChore    CommitType = "chore"
	CommitTypeRevert   CommitType = "revert"
)

// UserFacing reports whether changes of this type are worth announcing.
func (t CommitType) UserFacing() bool {
	switch t {
	case CommitTypeFeat, CommitTypeFix, CommitTypePerf, CommitTypeRevert:
		return true
	default:
		return false
	}
}

// CommitMessage represents a structured commit message following conventional commits.
type CommitMessage struct {
	Type        CommitType // Required: type of change (feat, fix, etc.)
	Scope       string     // Optional: area of codebase affected
	Subject     string     // Required: short description (imperative mood)
	Body        string     // Optional: detailed explanation
	Refs        []string   // Optional: references (release URLs, issues)
	GeneratedBy string     // Optional: tool that generated the commit
	Breaking    bool       // Whether this is a breaking change
}

// NewCommitMessage creates a commit message with the announce marker.
func NewCommitMessage(typ CommitType, subject string) *CommitMessage {
	return &CommitMessage{
		Type:        typ,
		Subject:     subject,
		GeneratedBy: "announce",
	}
}

// WithScope adds a scope to the commit message.
func (c *CommitMessage) WithScope(scope string) *CommitMessage {
	c.Scope = scope
	return c
}

// WithBody adds a body to the commit message.
func (c *CommitMessage) WithBody(body string) *CommitMessage {
	c.Body = body
	return c
}

// WithRef adds a reference footer.
func (c *CommitMessage) WithRef(ref string) *CommitMessage {
	if ref != "" {
		c.Refs = append(c.Refs, ref)
	}
	return c
}

// String formats the commit message following conventional commit format.
func (c *CommitMessage) String() string {
	var b strings.Builder

	// Subject line: type(scope)!: subject
	b.WriteString(string(c.Type))
	if c.Scope != "" {
		b.WriteString("(")
		b.WriteString(c.Scope)
		b.WriteString(")")
	}
	if c.Breaking {
		b.WriteString("!")
	}
	b.WriteString(": ")
	b.WriteString(c.Subject)

	if c.Body != "" {
		b.WriteString("\n\n")
		b.WriteString(wordwrap.String(c.Body, 72))
	}

	var footer []string
	for _, ref := range c.Refs {
		footer = append(footer, fmt.Sprintf("Refs: %s", ref))
	}
	if c.GeneratedBy != "" {
		footer = append(footer, fmt.Sprintf("Generated-By: %s", c.GeneratedBy))
	}
	if len(footer) > 0 {
		b.WriteString("\n\n")
		b.WriteString(strings.Join(footer, "\n"))
	}

	return b.String()
}

// Validate checks if the commit message is valid.
func (c *CommitMessage) Validate() error {
	if c.Type == "" {
		return fmt.Errorf("commit type is required")
	}
	if c.Subject == "" {
		return fmt.Errorf("commit subject is required")
	}
	if len(c.Subject) > 100 {
		return fmt.Errorf("commit subject too long (max 100 characters)")
	}
	return nil
}

var conventionalPattern = regexp.MustCompile(`^(\w+)(?:\(([^)]*)\))?(!)?:\s*(.+)$`)

// ParsedSubject is a commit subject split into conventional commit parts.
type ParsedSubject struct {
	Type        CommitType
	Scope       string
	Description string
	Breaking    bool
}

// ParseSubject splits a conventional commit subject. ok is false when the
// subject does not follow the convention.
func ParseSubject(subject string) (ParsedSubject, bool) {
	m := conventionalPattern.FindStringSubmatch(strings.TrimSpace(subject))
	if m == nil {
		return ParsedSubject{}, false
	}
	return ParsedSubject{
		Type:        CommitType(strings.ToLower(m[1])),
		Scope:       m[2],
		Breaking:    m[3] == "!",
		Description: m[4],
	}, true
}
