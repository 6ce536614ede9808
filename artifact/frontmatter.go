package artifact

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const fmDelim = "---"

// FrontMatter is an ordered YAML mapping. Key order is preserved from the
// parsed source; new keys are appended.
type FrontMatter struct {
	node *yaml.Node
}

// NewFrontMatter returns an empty mapping.
func NewFrontMatter() *FrontMatter {
	return &FrontMatter{node: &yaml.Node{Kind: yaml.MappingNode}}
}

// ParseFrontMatter splits a leading "---" delimited YAML block from content.
// Content without front matter returns a nil FrontMatter and the content
// unchanged.
func ParseFrontMatter(content string) (*FrontMatter, string, error) {
	if !strings.HasPrefix(content, fmDelim+"\n") {
		return nil, content, nil
	}
	rest := content[len(fmDelim)+1:]

	var block, body string
	switch {
	case strings.HasPrefix(rest, fmDelim+"\n"):
		body = rest[len(fmDelim)+1:]
	case rest == fmDelim:
	default:
		idx := strings.Index(rest, "\n"+fmDelim+"\n")
		if idx < 0 {
			if !strings.HasSuffix(rest, "\n"+fmDelim) {
				return nil, content, nil
			}
			idx = len(rest) - len(fmDelim) - 1
			block = rest[:idx]
		} else {
			block = rest[:idx]
			body = rest[idx+len(fmDelim)+2:]
		}
	}

	fm := NewFrontMatter()
	if strings.TrimSpace(block) != "" {
		var doc yaml.Node
		if err := yaml.Unmarshal([]byte(block), &doc); err != nil {
			return nil, content, fmt.Errorf("%w: %v", ErrMalformedFrontMatter, err)
		}
		if len(doc.Content) != 1 || doc.Content[0].Kind != yaml.MappingNode {
			return nil, content, fmt.Errorf("%w: not a mapping", ErrMalformedFrontMatter)
		}
		fm.node = doc.Content[0]
		fm.node.Style = 0
	}
	return fm, strings.TrimLeft(body, "\n"), nil
}

// Keys returns the keys in order.
func (f *FrontMatter) Keys() []string {
	var keys []string
	for i := 0; i+1 < len(f.node.Content); i += 2 {
		keys = append(keys, f.node.Content[i].Value)
	}
	return keys
}

// Get returns the scalar value of key.
func (f *FrontMatter) Get(key string) (string, bool) {
	v := f.value(key)
	if v == nil || v.Kind != yaml.ScalarNode {
		return "", false
	}
	return v.Value, true
}

// SetString sets key to a scalar. Quoted values are written double-quoted;
// others are written plain and keep their implicit YAML type (dates stay
// dates).
func (f *FrontMatter) SetString(key, value string, quoted bool) {
	n := &yaml.Node{Kind: yaml.ScalarNode, Value: value}
	if quoted {
		n.Style = yaml.DoubleQuotedStyle
	}
	f.set(key, n)
}

// Set sets key to any YAML-encodable value.
func (f *FrontMatter) Set(key string, value any) error {
	var n yaml.Node
	if err := n.Encode(value); err != nil {
		return fmt.Errorf("encode front matter %s: %w", key, err)
	}
	f.set(key, &n)
	return nil
}

func (f *FrontMatter) set(key string, v *yaml.Node) {
	for i := 0; i+1 < len(f.node.Content); i += 2 {
		if f.node.Content[i].Value == key {
			f.node.Content[i+1] = v
			return
		}
	}
	f.node.Content = append(f.node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, v)
}

func (f *FrontMatter) value(key string) *yaml.Node {
	for i := 0; i+1 < len(f.node.Content); i += 2 {
		if f.node.Content[i].Value == key {
			return f.node.Content[i+1]
		}
	}
	return nil
}

// WriteFrontMatter renders fm above body. A nil or empty fm returns body.
func WriteFrontMatter(fm *FrontMatter, body string) (string, error) {
	if fm == nil || len(fm.node.Content) == 0 {
		return body, nil
	}

	var buf bytes.Buffer
	buf.WriteString(fmDelim + "\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fm.node); err != nil {
		return "", fmt.Errorf("encode front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode front matter: %w", err)
	}
	buf.WriteString(fmDelim + "\n")
	if body != "" {
		buf.WriteString("\n" + body)
	}
	return buf.String(), nil
}
