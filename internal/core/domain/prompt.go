package domain

import (
	"fmt"
	"strings"
)

// Placeholder names shared by the chain and its default prompts.
const (
	PlaceholderQuestion    = "question"
	PlaceholderChatHistory = "chat_history"
	PlaceholderContext     = "context"
)

// PromptTemplate is prompt text with named {placeholder} slots.
// Use {{ and }} for literal braces. Templates are immutable values.
type PromptTemplate struct {
	name         string
	text         string
	segments     []promptSegment
	placeholders []string
}

// promptSegment is either literal text or a placeholder reference.
type promptSegment struct {
	literal     string
	placeholder string
}

// NewPromptTemplate parses text into a template.
// Returns ErrInvalidPrompt for empty, unterminated, or malformed placeholders.
func NewPromptTemplate(name, text string) (PromptTemplate, error) {
	t := PromptTemplate{name: name, text: text}
	seen := make(map[string]bool)

	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			t.segments = append(t.segments, promptSegment{literal: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '{' && i+1 < len(text) && text[i+1] == '{':
			lit.WriteByte('{')
			i++
		case c == '}' && i+1 < len(text) && text[i+1] == '}':
			lit.WriteByte('}')
			i++
		case c == '{':
			end := strings.IndexByte(text[i+1:], '}')
			if end < 0 {
				return PromptTemplate{}, fmt.Errorf("%w: %s: unterminated placeholder at offset %d", ErrInvalidPrompt, name, i)
			}
			key := text[i+1 : i+1+end]
			if !validPlaceholder(key) {
				return PromptTemplate{}, fmt.Errorf("%w: %s: invalid placeholder %q at offset %d", ErrInvalidPrompt, name, key, i)
			}
			flush()
			t.segments = append(t.segments, promptSegment{placeholder: key})
			if !seen[key] {
				seen[key] = true
				t.placeholders = append(t.placeholders, key)
			}
			i += end + 1
		case c == '}':
			return PromptTemplate{}, fmt.Errorf("%w: %s: unmatched '}' at offset %d", ErrInvalidPrompt, name, i)
		default:
			lit.WriteByte(c)
		}
	}
	flush()

	return t, nil
}

// MustPromptTemplate is like NewPromptTemplate but panics on error.
// Intended for built-in defaults only.
func MustPromptTemplate(name, text string) PromptTemplate {
	t, err := NewPromptTemplate(name, text)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the template name.
func (t PromptTemplate) Name() string {
	return t.name
}

// Text returns the raw template text.
func (t PromptTemplate) Text() string {
	return t.text
}

// IsZero reports whether the template was never initialised.
func (t PromptTemplate) IsZero() bool {
	return t.name == "" && t.text == "" && len(t.segments) == 0
}

// Placeholders returns the distinct placeholder names in order of first use.
func (t PromptTemplate) Placeholders() []string {
	out := make([]string, len(t.placeholders))
	copy(out, t.placeholders)
	return out
}

// Has reports whether the template references the named placeholder.
func (t PromptTemplate) Has(name string) bool {
	for _, p := range t.placeholders {
		if p == name {
			return true
		}
	}
	return false
}

// Require returns ErrInvalidPrompt unless every name is referenced by the template.
func (t PromptTemplate) Require(names ...string) error {
	for _, name := range names {
		if !t.Has(name) {
			return fmt.Errorf("%w: %s: missing placeholder {%s}", ErrInvalidPrompt, t.name, name)
		}
	}
	return nil
}

// Render substitutes values into the template.
// Every referenced placeholder must be bound; extra values are ignored.
func (t PromptTemplate) Render(values map[string]string) (string, error) {
	var b strings.Builder
	b.Grow(len(t.text))
	for _, seg := range t.segments {
		if seg.placeholder == "" {
			b.WriteString(seg.literal)
			continue
		}
		v, ok := values[seg.placeholder]
		if !ok {
			return "", fmt.Errorf("%w: {%s} in prompt %q", ErrMissingPromptValue, seg.placeholder, t.name)
		}
		b.WriteString(v)
	}
	return b.String(), nil
}

func validPlaceholder(key string) bool {
	if key == "" {
		return false
	}
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
