package content

import (
	"fmt"
	"strings"
)

// node is either a run of markdown text or a component element.
type node struct {
	text     string
	name     string
	attrs    map[string]string
	children []node
}

func (n node) isText() bool {
	return n.name == ""
}

func (n node) attr(key, def string) string {
	if v, ok := n.attrs[key]; ok && v != "" {
		return v
	}
	return def
}

// plainText concatenates the text below n with tags dropped.
func plainText(nodes []node) string {
	var b strings.Builder
	for _, n := range nodes {
		if n.isText() {
			b.WriteString(n.text)
			continue
		}
		b.WriteString(plainText(n.children))
	}
	return strings.TrimSpace(b.String())
}

// parseComponents splits a markdown body into text runs and component
// elements. Components are tags starting with an upper-case letter, e.g.
// <Callout type="warn">...</Callout> or <Figure src="a.png" />. Code
// fences and code spans are never scanned for tags.
func parseComponents(src string) ([]node, error) {
	s := &scanner{src: src}
	return s.parseUntil("")
}

type scanner struct {
	src string
	pos int
}

func (s *scanner) parseUntil(closing string) ([]node, error) {
	var nodes []node
	var text strings.Builder
	flush := func() {
		if text.Len() > 0 {
			nodes = append(nodes, node{text: text.String()})
			text.Reset()
		}
	}

	for s.pos < len(s.src) {
		if s.atLineStart() {
			if fence := s.fenceMarker(); fence != "" {
				text.WriteString(s.consumeFence(fence))
				continue
			}
		}

		c := s.src[s.pos]
		switch {
		case c == '`':
			text.WriteString(s.consumeCodeSpan())
			continue
		case c == '<' && closing != "" && strings.HasPrefix(s.src[s.pos:], "</"+closing+">"):
			s.pos += len(closing) + 3
			flush()
			return nodes, nil
		case c == '<' && s.pos+1 < len(s.src) && isUpper(s.src[s.pos+1]):
			flush()
			el, err := s.parseElement()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, el)
			continue
		}
		text.WriteByte(c)
		s.pos++
	}

	if closing != "" {
		return nil, fmt.Errorf("%w: missing </%s>", ErrMalformed, closing)
	}
	flush()
	return nodes, nil
}

func (s *scanner) parseElement() (node, error) {
	start := s.pos
	s.pos++ // '<'
	nameStart := s.pos
	for s.pos < len(s.src) && isNameByte(s.src[s.pos]) {
		s.pos++
	}
	el := node{name: s.src[nameStart:s.pos], attrs: make(map[string]string)}

	for {
		s.skipSpace()
		if s.pos >= len(s.src) {
			return node{}, fmt.Errorf("%w: unterminated <%s> at offset %d", ErrMalformed, el.name, start)
		}
		if strings.HasPrefix(s.src[s.pos:], "/>") {
			s.pos += 2
			return el, nil
		}
		if s.src[s.pos] == '>' {
			s.pos++
			children, err := s.parseUntil(el.name)
			if err != nil {
				return node{}, err
			}
			el.children = children
			return el, nil
		}

		key, val, err := s.parseAttr()
		if err != nil {
			return node{}, fmt.Errorf("<%s>: %w", el.name, err)
		}
		el.attrs[key] = val
	}
}

func (s *scanner) parseAttr() (string, string, error) {
	keyStart := s.pos
	for s.pos < len(s.src) && isNameByte(s.src[s.pos]) {
		s.pos++
	}
	key := s.src[keyStart:s.pos]
	if key == "" {
		return "", "", fmt.Errorf("%w: unexpected %q at offset %d", ErrMalformed, s.src[s.pos], s.pos)
	}

	s.skipSpace()
	if s.pos >= len(s.src) || s.src[s.pos] != '=' {
		return key, "true", nil
	}
	s.pos++
	s.skipSpace()
	if s.pos >= len(s.src) {
		return "", "", fmt.Errorf("%w: missing value for %s", ErrMalformed, key)
	}

	switch q := s.src[s.pos]; q {
	case '"', '\'':
		end := strings.IndexByte(s.src[s.pos+1:], q)
		if end < 0 {
			return "", "", fmt.Errorf("%w: unterminated value for %s", ErrMalformed, key)
		}
		val := s.src[s.pos+1 : s.pos+1+end]
		s.pos += end + 2
		return key, val, nil
	case '{':
		depth := 0
		for i := s.pos; i < len(s.src); i++ {
			switch s.src[i] {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					val := strings.TrimSpace(s.src[s.pos+1 : i])
					s.pos = i + 1
					return key, unquote(val), nil
				}
			}
		}
		return "", "", fmt.Errorf("%w: unbalanced braces for %s", ErrMalformed, key)
	default:
		valStart := s.pos
		for s.pos < len(s.src) && !isSpace(s.src[s.pos]) && s.src[s.pos] != '>' && !strings.HasPrefix(s.src[s.pos:], "/>") {
			s.pos++
		}
		return key, s.src[valStart:s.pos], nil
	}
}

func (s *scanner) atLineStart() bool {
	return s.pos == 0 || s.src[s.pos-1] == '\n'
}

// fenceMarker returns the fence opening the current line, if any.
func (s *scanner) fenceMarker() string {
	line := strings.TrimLeft(s.src[s.pos:], " ")
	if len(s.src)-s.pos-len(line) > 3 {
		return ""
	}
	for _, f := range []string{"```", "~~~"} {
		if strings.HasPrefix(line, f) {
			return f
		}
	}
	return ""
}

// consumeFence returns the fenced block starting at the current line,
// closing fence included, or the rest of the input if it is unclosed.
func (s *scanner) consumeFence(fence string) string {
	start := s.pos
	nl := strings.IndexByte(s.src[s.pos:], '\n')
	if nl < 0 {
		s.pos = len(s.src)
		return s.src[start:]
	}
	s.pos += nl + 1

	for s.pos < len(s.src) {
		end := strings.IndexByte(s.src[s.pos:], '\n')
		line := s.src[s.pos:]
		if end >= 0 {
			line = s.src[s.pos : s.pos+end]
		}
		closed := strings.HasPrefix(strings.TrimSpace(line), fence)
		if end < 0 {
			s.pos = len(s.src)
		} else {
			s.pos += end + 1
		}
		if closed {
			break
		}
	}
	return s.src[start:s.pos]
}

func (s *scanner) consumeCodeSpan() string {
	start := s.pos
	for s.pos < len(s.src) && s.src[s.pos] == '`' {
		s.pos++
	}
	ticks := s.src[start:s.pos]
	end := strings.Index(s.src[s.pos:], ticks)
	if end < 0 {
		return ticks
	}
	s.pos += end + len(ticks)
	return s.src[start:s.pos]
}

func (s *scanner) skipSpace() {
	for s.pos < len(s.src) && isSpace(s.src[s.pos]) {
		s.pos++
	}
}

func unquote(v string) string {
	if len(v) >= 2 {
		if (v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '\'' && v[len(v)-1] == '\'') {
			return v[1 : len(v)-1]
		}
	}
	return v
}

func isUpper(c byte) bool {
	return c >= 'A' && c <= 'Z'
}

func isNameByte(c byte) bool {
	return c == '.' || c == '_' || c == '-' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
